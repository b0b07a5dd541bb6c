package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"match-service/internal/match/model"
)

// ReferenceSet is the normalized reference list. Built once, read-only after.
type ReferenceSet struct {
	entries    []model.ReferenceEntry
	candidates []string          // уникальные имена в порядке первого появления
	byName     map[string]string // имя -> код, побеждает первое вхождение
}

// BuildReference normalizes every name and keeps input order. For duplicate
// normalized names the first entry's code is the one returned by Lookup.
func BuildReference(entries []model.ReferenceEntry) (*ReferenceSet, error) {
	ref := &ReferenceSet{
		entries:    make([]model.ReferenceEntry, 0, len(entries)),
		candidates: make([]string, 0, len(entries)),
		byName:     make(map[string]string, len(entries)),
	}
	for i, e := range entries {
		if !utf8.ValidString(e.Name) {
			return nil, configErr(fmt.Sprintf("reference[%d].name", i), "not valid UTF-8")
		}
		if strings.TrimSpace(e.Code) == "" {
			return nil, configErr(fmt.Sprintf("reference[%d].code", i), "code is required")
		}

		nn := Normalize(e.Name)
		ref.entries = append(ref.entries, model.ReferenceEntry{Name: nn, Code: e.Code})
		if _, ok := ref.byName[nn]; ok {
			continue
		}
		ref.byName[nn] = e.Code
		ref.candidates = append(ref.candidates, nn)
	}
	return ref, nil
}

// Lookup returns the code of the first entry with this normalized name.
func (r *ReferenceSet) Lookup(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	code, ok := r.byName[name]
	return code, ok
}

// Candidates returns distinct normalized names in input order.
// Duplicates would score identically and lose the tie, so they are dropped.
func (r *ReferenceSet) Candidates() []string {
	if r == nil {
		return nil
	}
	return r.candidates
}

// Entries returns the normalized entries in input order, duplicates included.
func (r *ReferenceSet) Entries() []model.ReferenceEntry {
	if r == nil {
		return nil
	}
	return r.entries
}

func (r *ReferenceSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}
