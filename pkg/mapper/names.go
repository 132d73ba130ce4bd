package mapper

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// camelCase splits name on '-' and '_' and upper-cases the first letter of
// every word: "first-name" and "first_name" both become "FirstName".
func camelCase(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_'
	})
	var b strings.Builder
	for _, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(w[size:])
	}
	return b.String()
}

// safeName camel-cases keys that contain hyphens and leaves others untouched.
func safeName(name string) string {
	if strings.Contains(name, "-") {
		return camelCase(name)
	}
	return name
}
