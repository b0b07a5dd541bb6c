// Package service is the matching core: normalization, similarity scoring and
// the best-candidate policy. It does no I/O and knows nothing about tables.
package service

import (
	"context"
	"fmt"
	"math"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"match-service/internal/match/model"
)

// Matcher applies one validated set of options to queries.
type Matcher struct {
	threshold float64
	score     ScoreFunc
	workers   int
}

// New validates opts. Threshold must lie in [0,100].
func New(opts model.Options) (*Matcher, error) {
	if math.IsNaN(opts.Threshold) || opts.Threshold < 0 || opts.Threshold > 100 {
		return nil, configErr("threshold", "must be within [0,100], got %v", opts.Threshold)
	}
	if opts.Workers < 0 {
		return nil, configErr("workers", "must not be negative, got %d", opts.Workers)
	}
	score, err := ScorerByName(opts.Scorer)
	if err != nil {
		return nil, err
	}
	return &Matcher{threshold: opts.Threshold, score: score, workers: opts.Workers}, nil
}

// SelectBest scores query against every candidate and returns the index of the
// highest score. Ties go to the earliest candidate. ok is false when there are
// no candidates.
func SelectBest(query string, candidates []string, score ScoreFunc) (idx int, best float64, ok bool) {
	idx = -1
	for i, c := range candidates {
		s := score(query, c)
		if idx < 0 || s > best {
			idx, best = i, s
		}
	}
	return idx, best, idx >= 0
}

// Match runs the per-query decision. Non-matches are results, not errors.
func (m *Matcher) Match(q model.Query, ref *ReferenceSet) model.Result {
	// 1) пустое значение — ничего не ищем
	if !q.Valid {
		return model.Result{}
	}

	// 2) нормализация и скоринг всех кандидатов
	qn := Normalize(q.Text)
	cands := ref.Candidates()
	i, best, ok := SelectBest(qn, cands, m.score)
	if !ok {
		return model.Result{}
	}

	name := cands[i]
	res := model.Result{Score: &best, MatchedName: &name}

	// 3) порог включительный
	if best < m.threshold {
		return res
	}

	// 4) код по имени; промах возможен, если кандидаты и эталон разошлись
	if code, found := ref.Lookup(name); found {
		res.Code = &code
	}
	return res
}

// MatchBatch returns one result per query, in input order. Queries are
// validated before any matching starts. With more than one worker the batch is
// split into contiguous chunks; output does not depend on the worker count.
func (m *Matcher) MatchBatch(ctx context.Context, queries []model.Query, ref *ReferenceSet) ([]model.Result, error) {
	for i, q := range queries {
		if q.Valid && !utf8.ValidString(q.Text) {
			return nil, configErr(fmt.Sprintf("queries[%d]", i), "not valid UTF-8")
		}
	}

	out := make([]model.Result, len(queries))
	workers := min(m.workers, len(queries))
	if workers <= 1 {
		for i, q := range queries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out[i] = m.Match(q, ref)
		}
		return out, nil
	}

	chunk := (len(queries) + workers - 1) / workers
	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < len(queries); lo += chunk {
		lo := lo
		hi := min(lo+chunk, len(queries))
		g.Go(func() error {
			// каждый воркер пишет только в свой диапазон out
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				out[i] = m.Match(queries[i], ref)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// MatchBatch validates opts and matches queries against ref.
func MatchBatch(ctx context.Context, queries []model.Query, ref *ReferenceSet, opts model.Options) ([]model.Result, error) {
	m, err := New(opts)
	if err != nil {
		return nil, err
	}
	return m.MatchBatch(ctx, queries, ref)
}

// Tally counts outcomes for a finished batch.
func Tally(queries []model.Query, results []model.Result) model.Stats {
	st := model.Stats{Queries: len(queries)}
	for i, r := range results {
		switch {
		case i < len(queries) && !queries[i].Valid:
			st.Absent++
		case r.Code != nil:
			st.Matched++
		case r.Score != nil:
			st.BelowThreshold++
		}
	}
	return st
}
