package handler

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"match-service/internal/fileio"
	"match-service/internal/match/model"
)

var rxHeaderJunk = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// нормализуем имя колонки: нижний регистр, служебные символы и пробелы схлопываем
func normHeaderKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = rxHeaderJunk.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// resolveColumn ищет индекс колонки по желаемому имени; -1, если не нашли.
// Альтернативы через "|" (например: "Description|Item Description").
func resolveColumn(header []string, want string) int {
	want = strings.TrimSpace(want)
	if want == "" {
		return -1
	}
	alts := strings.Split(want, "|")
	for i := range alts {
		alts[i] = strings.TrimSpace(alts[i])
	}

	// 1) точное совпадение, в порядке альтернатив
	for _, a := range alts {
		for i, h := range header {
			if h == a {
				return i
			}
		}
	}

	// 2) совпадение после нормализации ("item_name" == "Item Name")
	for _, a := range alts {
		na := normHeaderKey(a)
		if na == "" {
			continue
		}
		for i, h := range header {
			if normHeaderKey(h) == na {
				return i
			}
		}
	}

	// 3) составные заголовки: want ⊂ key, берём самое длинное вхождение
	best, bestScore := -1, 0
	for i, h := range header {
		nh := normHeaderKey(h)
		for _, a := range alts {
			na := normHeaderKey(a)
			if na != "" && strings.Contains(nh, na) && len(na) > bestScore {
				best, bestScore = i, len(na)
			}
		}
	}
	return best
}

func toEntries(t *fileio.Table, nameCol, codeCol int) []model.ReferenceEntry {
	out := make([]model.ReferenceEntry, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, model.ReferenceEntry{
			Name: row[nameCol],
			Code: strings.TrimSpace(row[codeCol]),
		})
	}
	return out
}

// пустая ячейка — отсутствующее значение; пробелы считаются значением
func toQueries(t *fileio.Table, col int) []model.Query {
	out := make([]model.Query, len(t.Rows))
	for i, row := range t.Rows {
		if row[col] == "" {
			out[i] = model.NullQuery
			continue
		}
		out[i] = model.NewQuery(row[col])
	}
	return out
}

const (
	colScore       = "Match Score"
	colMatchedName = "Matched Item Name"
)

// annotate добавляет к входной таблице три колонки результата.
// Уже существующие колонки с теми же именами перезаписываются.
func annotate(t *fileio.Table, results []model.Result, codeHeader string) *fileio.Table {
	header := append([]string{}, t.Header...)
	slots := make([]int, 0, 3)
	for _, name := range []string{"Matched " + codeHeader, colScore, colMatchedName} {
		idx := slices.Index(header, name)
		if idx < 0 {
			idx = len(header)
			header = append(header, name)
		}
		slots = append(slots, idx)
	}

	out := &fileio.Table{Header: header, Rows: make([][]string, len(t.Rows))}
	for i, row := range t.Rows {
		r := results[i]
		ext := make([]string, len(header))
		copy(ext, row)
		for j, v := range []string{deref(r.Code), formatScore(r.Score), deref(r.MatchedName)} {
			ext[slots[j]] = v
		}
		out.Rows[i] = ext
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatScore(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return i
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
