package service

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/adrg/strutil/metrics"
	"github.com/agnivade/levenshtein"
	"github.com/antzucaro/matchr"
)

// ScoreFunc returns similarity of a and b in [0,100].
type ScoreFunc func(a, b string) float64

const DefaultScorer = "token_set"

var scorers = map[string]ScoreFunc{
	"token_set":    TokenSetRatio,
	"token_sort":   TokenSortRatio,
	"ratio":        Ratio,
	"levenshtein":  levenshteinRatio,
	"jaro_winkler": jaroWinklerRatio,
}

// ScorerByName resolves a scorer; "" means DefaultScorer.
func ScorerByName(name string) (ScoreFunc, error) {
	if name == "" {
		name = DefaultScorer
	}
	f, ok := scorers[name]
	if !ok {
		return nil, configErr("scorer", "unknown scorer %q", name)
	}
	return f, nil
}

// Scorers lists the registered scorer names in sorted order.
func Scorers() []string {
	out := make([]string, 0, len(scorers))
	for k := range scorers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Indel distance: Levenshtein where a substitution costs a delete plus an insert.
var indel = &metrics.Levenshtein{
	CaseSensitive: true,
	InsertCost:    1,
	DeleteCost:    1,
	ReplaceCost:   2,
}

// Ratio is round(200*M/(len(a)+len(b))) where M is the number of runes in the
// longest common subsequence of a and b. Two empty strings are identical.
func Ratio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 100
	}
	// indel = total - 2*M
	d := indel.Distance(a, b)
	return roundScore(100 * float64(total-d) / float64(total))
}

// TokenSortRatio compares the strings with their whitespace tokens sorted.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

// TokenSetRatio scores on shared vs unique tokens, so a string whose tokens are
// a subset of the other's scores 100 regardless of the length difference.
func TokenSetRatio(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var sect, diffAB, diffBA []string
	for t := range ta {
		if _, ok := tb[t]; ok {
			sect = append(sect, t)
		} else {
			diffAB = append(diffAB, t)
		}
	}
	for t := range tb {
		if _, ok := ta[t]; !ok {
			diffBA = append(diffBA, t)
		}
	}
	if len(sect) > 0 && (len(diffAB) == 0 || len(diffBA) == 0) {
		return 100
	}
	sort.Strings(sect)
	sort.Strings(diffAB)
	sort.Strings(diffBA)

	t0 := strings.Join(sect, " ")
	t1 := strings.TrimSpace(t0 + " " + strings.Join(diffAB, " "))
	t2 := strings.TrimSpace(t0 + " " + strings.Join(diffBA, " "))

	best := Ratio(t1, t2)
	if len(sect) == 0 {
		return best
	}
	return max(best, Ratio(t0, t1), Ratio(t0, t2))
}

func levenshteinRatio(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	m := max(la, lb)
	if m == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return roundScore(100 * (1 - float64(d)/float64(m)))
}

func jaroWinklerRatio(a, b string) float64 {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	return roundScore(100 * matchr.JaroWinkler(a, b, false))
}

// Half-even, same as the reference scores were produced with.
func roundScore(v float64) float64 {
	return math.RoundToEven(v)
}

func tokenSet(s string) map[string]struct{} {
	f := strings.Fields(s)
	m := make(map[string]struct{}, len(f))
	for _, t := range f {
		m[t] = struct{}{}
	}
	return m
}

func sortedTokens(s string) string {
	f := strings.Fields(s)
	sort.Strings(f)
	return strings.Join(f, " ")
}
