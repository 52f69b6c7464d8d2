package parser

import (
	"strconv"
	"strings"

	"github.com/jptrs93/dmxproto/internal/ast"
)

// Statements starting with one of these are never fields.
var constructKeywords = []string{
	"message", "service", "enum", "option", "rpc",
	"oneof", "extend", "channel", "reserved", "extensions",
	"import", "syntax", "package",
}

// hasKeyword reports whether s starts with kw as a whole word. A '.'
// continues the word, so "service.Config" is a type name, not a keyword.
func hasKeyword(s, kw string) bool {
	if !strings.HasPrefix(s, kw) {
		return false
	}
	return len(s) == len(kw) || !isIdentByte(s[len(kw)]) && s[len(kw)] != '.'
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// isFieldLine reports whether a statement looks like a field declaration:
// at least three whitespace-separated tokens with '=' in the number
// position, which is token 2, or token 3 when a label keyword leads.
func isFieldLine(s string) bool {
	for _, kw := range constructKeywords {
		if hasKeyword(s, kw) {
			return false
		}
	}
	parts := strings.Fields(collapseAngles(s))
	if len(parts) < 3 {
		return false
	}
	if strings.Contains(parts[2], "=") {
		return true
	}
	if _, ok := ast.ParseLabel(parts[0]); ok {
		return len(parts) > 3 && strings.Contains(parts[3], "=")
	}
	return false
}

// collapseAngles drops whitespace inside <...> so "map<string, int32>"
// counts as a single token.
func collapseAngles(s string) string {
	var b strings.Builder
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '<':
			depth++
		case c == '>' && depth > 0:
			depth--
		case depth > 0 && (c == ' ' || c == '\t'):
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// extractLiteral finds "key = value;" or "(key) = value;" in s and returns
// value with the trailing ';' and surrounding quotes removed. key must be
// followed by '=' (after an optional ')'), so a key that is a prefix of a
// longer name does not match it.
func extractLiteral(s, key string) (string, bool) {
	raw, ok := rawLiteral(s, key)
	if !ok {
		return "", false
	}
	return unquote(raw), true
}

func rawLiteral(s, key string) (string, bool) {
	if key == "" {
		return "", false
	}
	from := 0
	for {
		idx := strings.Index(s[from:], key)
		if idx == -1 {
			return "", false
		}
		rest := strings.TrimLeft(s[from+idx+len(key):], " \t")
		rest = strings.TrimPrefix(rest, ")")
		rest = strings.TrimLeft(rest, " \t")
		if strings.HasPrefix(rest, "=") {
			return strings.TrimSpace(cutStatement(rest[1:])), true
		}
		from += idx + len(key)
	}
}

// cutStatement returns s up to the first ';' outside a string literal and
// outside an aggregate "{ ... }" value.
func cutStatement(s string) string {
	var quote byte
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0 && c == '\\':
			i++
		case quote != 0 && c == quote:
			quote = 0
		case quote != 0:
		case c == '"' || c == '\'':
			quote = c
		case c == '{':
			depth++
		case c == '}' && depth > 0:
			depth--
		case c == ';' && depth == 0:
			return s[:i]
		}
	}
	return s
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return strings.Trim(s, `"`)
}

func extractBool(s, key string) (bool, bool) {
	lit, ok := extractLiteral(s, key)
	if !ok {
		return false, false
	}
	return parseBoolLiteral(lit)
}

func extractUint32(s, key string) (uint32, bool) {
	lit, ok := extractLiteral(s, key)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(lit, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

func parseBoolLiteral(s string) (bool, bool) {
	switch s {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// literalValue classifies a raw option literal, quotes included.
func literalValue(raw string) ast.Value {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') {
		return ast.Value{Kind: ast.ValueString, Text: unquote(raw)}
	}
	if b, ok := parseBoolLiteral(raw); ok {
		return ast.Value{Kind: ast.ValueBool, Text: raw, Bool: b}
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return ast.Value{Kind: ast.ValueNumber, Text: raw, Number: n}
	}
	return ast.Value{Kind: ast.ValueIdent, Text: raw}
}
