package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var rxNumber = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)$`)

var spaceAndComma = strings.NewReplacer("\u00A0", "", "\u202F", "", " ", "", "\t", "", ",", ".")

// ParseNumber парсит числа из форм и ячеек: "85", "85,5", "85 %", "1 234,50" (NBSP/NNBSP).
// Бесконечности и NaN не принимаются.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = spaceAndComma.Replace(s)
	// допускаем только хвостовой "%"; буквы и экспоненту не принимаем
	s = strings.TrimSuffix(s, "%")
	if !rxNumber.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
