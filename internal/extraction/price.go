package extraction

import (
	"regexp"
	"strconv"
	"strings"
)

var reNonNumeral = regexp.MustCompile(`[^0-9.,]`)

// ParsePrice converts an IDR formatted numeral to its value.
// A single kind of separator is a thousands mark ("59.000", "59,000").
// When both appear, the one occurring last is the decimal separator ("1.190,50", "1,190.50").
// Unparseable input yields 0.
func ParsePrice(raw string) float64 {
	clean := reNonNumeral.ReplaceAllString(raw, "")

	lastComma := strings.LastIndex(clean, ",")
	lastDot := strings.LastIndex(clean, ".")

	switch {
	case lastComma == -1 && lastDot == -1:
		// plain digits
	case lastDot == -1:
		clean = strings.ReplaceAll(clean, ",", "")
	case lastComma == -1:
		clean = strings.ReplaceAll(clean, ".", "")
	case lastComma > lastDot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	default:
		clean = strings.ReplaceAll(clean, ",", "")
	}

	value, err := strconv.ParseFloat(clean, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}
