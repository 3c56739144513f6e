package evaluator

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// applyCase implements CSL's text-case attribute, delegating actual
// Unicode-aware casing to golang.org/x/text/cases rather than a
// byte-wise strings.ToUpper/ToLower (SPEC_FULL.md domain-stack wiring:
// locale-aware casing is exactly what that package is for).
func applyCase(s, textCase string) string {
	switch textCase {
	case "uppercase":
		return cases.Upper(language.Und).String(s)
	case "lowercase":
		return cases.Lower(language.Und).String(s)
	case "title":
		return cases.Title(language.Und).String(s)
	case "capitalize-first":
		return capitalizeFirst(s)
	case "sentence":
		return capitalizeFirst(cases.Lower(language.Und).String(s))
	default:
		return s
	}
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	head := cases.Title(language.Und).String(string(r[0]))
	return head + strings.ToLower(string(r[1:]))
}
