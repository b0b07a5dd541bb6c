package service

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize folds case and trims edge whitespace. Internal spacing and
// punctuation are kept as is. Absent values never reach it.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	// cases.Caser хранит состояние, поэтому новый на каждый вызов
	return strings.TrimSpace(cases.Lower(language.Und).String(s))
}
