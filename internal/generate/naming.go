package generate

import (
	"strings"
	"unicode"

	"github.com/serenize/snaker"
)

// identifier maps s onto [A-Za-z0-9_], prefixing '_' when s would start with
// a digit.
func identifier(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r) && r < unicode.MaxASCII:
			b.WriteRune(r)
		case unicode.IsDigit(r) && r < unicode.MaxASCII:
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Identifier is identifier for callers outside the package.
func Identifier(s string) string {
	return identifier(s)
}

// UpperSnake spells a declaration path as one SCREAMING_SNAKE name:
// ["Order", "LineItem"] becomes ORDER_LINE_ITEM.
func UpperSnake(path ...string) string {
	parts := make([]string, 0, len(path))
	for _, p := range path {
		if p == "" {
			continue
		}
		id := identifier(p)
		if strings.ToUpper(id) == id {
			parts = append(parts, id)
			continue
		}
		parts = append(parts, strings.ToUpper(snaker.CamelToSnake(id)))
	}
	return strings.Join(parts, "_")
}

// Camel spells a channel or option name ("orders.audit") as an exported
// CamelCase identifier ("OrdersAudit").
func Camel(name string) string {
	return snaker.SnakeToCamel(strings.ToLower(strings.Trim(identifier(name), "_")))
}

// Title upper-cases the first rune of s.
func Title(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
