package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// words splits a display name or API name into identifier words. Any rune
// that cannot appear in an identifier separates words.
func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r))
	})
}

// UpperCamel turns "multi_select" into "MultiSelect" and "days till due"
// into "DaysTillDue".
func UpperCamel(s string) string {
	// A Caser keeps state, so each call gets its own.
	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, w := range words(s) {
		b.WriteString(title.String(w))
	}
	return b.String()
}

// LowerCamel turns a display name into a DSL identifier: "Days Till Due"
// becomes "daysTillDue", "Done" becomes "done". Names starting with a digit
// get a leading underscore.
func LowerCamel(s string) string {
	upper := UpperCamel(s)
	if upper == "" {
		return "_"
	}
	runes := []rune(upper)
	runes[0] = unicode.ToLower(runes[0])
	if unicode.IsDigit(runes[0]) {
		return "_" + string(runes)
	}
	return string(runes)
}
