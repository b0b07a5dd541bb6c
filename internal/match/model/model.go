package model

// Mapping описывает, какие колонки таблицы читать.
// Ключи допускают альтернативы через "|" ("Description|Описание").
type Mapping struct {
	NameKey   string `json:"nameKey"`           // колонка с наименованием (эталон) или описанием (вход)
	CodeKey   string `json:"codeKey,omitempty"` // колонка с кодом, только для эталона
	HeaderRow int    `json:"headerRow"`         // строка заголовков (1-based)
}

type Options struct {
	Threshold float64 `json:"threshold"` // порог 0..100, включительно
	Scorer    string  `json:"scorer"`    // token_set | token_sort | ratio | levenshtein | jaro_winkler
	Workers   int     `json:"workers"`   // <=1 — последовательно
}

// ReferenceEntry is one canonical (name, code) pair.
// Name is stored normalized once the entry is part of a reference set.
type ReferenceEntry struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Query is a raw description; Valid=false means the value is absent.
type Query struct {
	Text  string
	Valid bool
}

func NewQuery(s string) Query { return Query{Text: s, Valid: true} }

// NullQuery is an absent description (empty cell, null).
var NullQuery = Query{}

// Result is the outcome for one query. Nil fields mean "none".
type Result struct {
	Code        *string  `json:"code"`
	Score       *float64 `json:"score"`
	MatchedName *string  `json:"matched_name"`
}

// Matched reports whether a code was assigned.
func (r Result) Matched() bool { return r.Code != nil }

type Stats struct {
	Queries        int   `json:"queries"`
	Matched        int   `json:"matched"`
	BelowThreshold int   `json:"below_threshold"`
	Absent         int   `json:"absent"`
	ElapsedMS      int64 `json:"elapsed_ms"`
}

// Report — JSON-ответ: исходная таблица + результаты построчно.
type Report struct {
	Header   []string   `json:"header"`
	Rows     [][]string `json:"rows"`
	Results  []Result   `json:"results"`
	Stats    Stats      `json:"stats"`
	Opts     Options    `json:"opts"`
	MapRef   Mapping    `json:"mapRef"`
	MapInput Mapping    `json:"mapInput"`
}
