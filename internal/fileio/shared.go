package fileio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Table — таблица с упорядоченной шапкой; каждая строка выровнена по ширине шапки.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadAny выберет парсер по расширению. headerRow — номер строки заголовков (1-based),
// значения < 1 для всех форматов означают первую строку.
func ReadAny(r io.Reader, filename string, headerRow int) (*Table, error) {
	if headerRow < 1 {
		headerRow = 1
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		return readXLSX(r, headerRow)
	case ".xls":
		return readXLS(r, headerRow)
	case ".csv":
		return readCSV(r, headerRow)
	default:
		return nil, fmt.Errorf("unsupported file: %s", filename)
	}
}

// pickHeader — берёт строку заголовков и подставляет Column N для пустых.
func pickHeader(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(rows) {
		idx = 0
	}
	h := rows[idx]
	out := make([]string, len(h))
	for i, v := range h {
		v = strings.TrimSpace(strings.TrimPrefix(v, "\ufeff"))
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		out[i] = v
	}
	return out
}

// toTable выравнивает строки после шапки по её ширине, пропуская полностью пустые.
func toTable(rows [][]string, headerRow int) *Table {
	if len(rows) == 0 {
		return &Table{}
	}
	h := pickHeader(rows, headerRow)
	start := headerRow // первая строка после заголовков
	if start < 1 || start > len(rows) {
		start = 1
	}
	t := &Table{Header: h}
	for r := start; r < len(rows); r++ {
		rec := rows[r]
		row := make([]string, len(h))
		empty := true
		for c := range h {
			if c < len(rec) {
				row[c] = rec[c]
			}
			if strings.TrimSpace(row[c]) != "" {
				empty = false
			}
		}
		if !empty {
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

// normalizeCell убирает неразрывные пробелы по краям ячейки.
func normalizeCell(s string) string {
	return strings.TrimSpace(strings.NewReplacer("\u00A0", " ", "\u202F", " ").Replace(s))
}
