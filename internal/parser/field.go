package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jptrs93/dmxproto/internal/ast"
)

// tokenizeField splits a field statement into identifiers, type names
// (map<K, V> kept whole, whitespace removed), quoted literals and the
// punctuation = ; [ ] ,
func tokenizeField(s string) []string {
	var toks []string
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case strings.IndexByte("=;[],", c) != -1:
			toks = append(toks, string(c))
			i++
		case c == '"' || c == '\'':
			j := i + 1
			for j < len(s) && s[j] != c {
				if s[j] == '\\' {
					j++
				}
				j++
			}
			if j < len(s) {
				j++
			}
			toks = append(toks, s[i:min(j, len(s))])
			i = j
		default:
			var b strings.Builder
			depth := 0
			for i < len(s) {
				c = s[i]
				if depth == 0 && (c == ' ' || c == '\t' || strings.IndexByte("=;[],\"'", c) != -1) {
					break
				}
				switch c {
				case '<':
					depth++
				case '>':
					depth--
				}
				if c != ' ' && c != '\t' {
					b.WriteByte(c)
				}
				i++
			}
			toks = append(toks, b.String())
		}
	}
	return toks
}

// parseField reads "[label] <type> <name> = <number> [options];".
func parseField(ln line) (ast.Field, error) {
	toks := tokenizeField(ln.text)
	fail := func(detail string, args ...any) (ast.Field, error) {
		return ast.Field{}, &SyntaxError{Line: ln.num, Text: ln.text, Err: ErrMalformedField, Detail: fmt.Sprintf(detail, args...)}
	}

	i := 0
	label := ast.LabelOptional
	if len(toks) > 0 {
		if l, ok := ast.ParseLabel(toks[0]); ok {
			label = l
			i = 1
		}
	}
	if len(toks) < i+3 {
		return fail("too few tokens for %s field layout", label)
	}
	typeTok, name := toks[i], toks[i+1]
	if toks[i+2] != "=" {
		return fail("expected '=' after field name %q", name)
	}
	numTok := ""
	if len(toks) > i+3 {
		numTok = strings.TrimSuffix(toks[i+3], ";")
	}
	if numTok == "" || numTok == "[" {
		return fail("empty field number")
	}
	number, err := strconv.ParseInt(numTok, 10, 32)
	if err != nil {
		return fail("invalid field number %q", numTok)
	}
	if number <= 0 {
		return fail("field number %d is not positive", number)
	}
	typ, err := parseFieldType(typeTok)
	if err != nil {
		return fail("%v", err)
	}

	field := ast.Field{
		Name:   name,
		Type:   typ,
		Number: int32(number),
		Label:  label,
	}
	if rest := toks[i+4:]; len(rest) > 0 && rest[0] == "[" {
		field.Options = parseInlineOptions(rest[1:])
		for _, opt := range field.Options {
			if opt.Name == "default" {
				v := opt.Value
				field.Default = &v
			}
		}
	}
	return field, nil
}

func parseFieldType(tok string) (ast.FieldType, error) {
	if k, ok := ast.ScalarKind(tok); ok {
		return ast.Scalar(k), nil
	}
	if strings.HasPrefix(tok, "map<") {
		if !strings.HasSuffix(tok, ">") {
			return ast.FieldType{}, fmt.Errorf("unterminated map type %q", tok)
		}
		inner := tok[len("map<") : len(tok)-1]
		keyTok, valueTok, ok := splitTopLevel(inner)
		if !ok {
			return ast.FieldType{}, fmt.Errorf("map type %q needs a key and a value", tok)
		}
		key, err := parseFieldType(keyTok)
		if err != nil {
			return ast.FieldType{}, err
		}
		value, err := parseFieldType(valueTok)
		if err != nil {
			return ast.FieldType{}, err
		}
		return ast.MapOf(key, value), nil
	}
	return ast.Named(strings.TrimPrefix(tok, ".")), nil
}

// splitTopLevel splits "K,V" at the first comma not nested in <>.
func splitTopLevel(s string) (string, string, bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				k, v := s[:i], s[i+1:]
				return k, v, k != "" && v != ""
			}
		}
	}
	return "", "", false
}

// parseInlineOptions reads "name = value, ... ]" from field tokens.
// Malformed entries are skipped.
func parseInlineOptions(toks []string) []ast.Option {
	var opts []ast.Option
	for i := 0; i < len(toks); {
		if toks[i] == "]" {
			break
		}
		if toks[i] == "," {
			i++
			continue
		}
		if i+2 < len(toks) && toks[i+1] == "=" {
			name := strings.Trim(toks[i], "()")
			opts = append(opts, ast.Option{Name: name, Value: literalValue(toks[i+2])})
			i += 3
			continue
		}
		i++
	}
	return opts
}
