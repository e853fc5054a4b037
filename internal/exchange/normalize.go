package exchange

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	alphaPattern   = regexp.MustCompile(`^[A-Za-z]+$`)
	numericPattern = regexp.MustCompile(`^[0-9]+$`)
	controlChars   = strings.NewReplacer("\t", "", "\r", "", "\n", "")
)

// Clean trims s, strips tabs and line breaks, and collapses runs of spaces.
func Clean(s string) string {
	s = controlChars.Replace(strings.TrimSpace(s))
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return strings.TrimSpace(s)
}

// CleanCode normalizes identifier-like values: no spaces, upper case.
func CleanCode(s string) string {
	return strings.ToUpper(strings.ReplaceAll(Clean(s), " ", ""))
}

// TitleCase cleans s and capitalizes the first letter of each word.
func TitleCase(s string) string {
	// Casers are stateful; one per call.
	return cases.Title(language.Und).String(strings.ToLower(Clean(s)))
}

// ValidateAlpha reports whether s is only ASCII letters with a length in
// [min, max].
func ValidateAlpha(s string, min, max int) bool {
	return inLength(s, min, max) && alphaPattern.MatchString(s)
}

// ValidateNumeric reports whether s is only ASCII digits with a length in
// [min, max].
func ValidateNumeric(s string, min, max int) bool {
	return inLength(s, min, max) && numericPattern.MatchString(s)
}

// ValidateIntRange checks v against [min, max]. A nil v passes only when
// allowNull is set.
func ValidateIntRange(v *int, min, max int, allowNull bool) bool {
	if v == nil {
		return allowNull
	}
	return *v >= min && *v <= max
}

// ValidateDecimalRange checks v against [min, max]. A nil v passes only when
// allowNull is set.
func ValidateDecimalRange(v *float64, min, max float64, allowNull bool) bool {
	if v == nil {
		return allowNull
	}
	return *v >= min && *v <= max
}

func inLength(s string, min, max int) bool {
	return len(s) >= min && len(s) <= max
}
