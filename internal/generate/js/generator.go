package jsg

import (
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"github.com/serenize/snaker"

	"github.com/jptrs93/dmxproto/internal/ast"
	"github.com/jptrs93/dmxproto/internal/generate"
)

func init() {
	generate.Register(Generator{})
}

type Generator struct{}

func (g Generator) Name() string {
	return "js"
}

func (g Generator) Extension() string {
	return ".dmxp.js"
}

func (g Generator) Generate(file *ast.File, options generate.Options) ([]byte, error) {
	model := generate.BuildModel(file, Table{}, options.WithDefaults(file))
	return generate.Render("js_file.tmpl", funcs, model)
}

var funcs = template.FuncMap{
	"jsMethod": jsMethod,
}

// Table spells schema types as JSDoc. 64-bit integers and bytes follow the
// JSON mapping and travel as strings.
type Table struct{}

func (Table) ScalarType(kind ast.Kind) string {
	switch kind {
	case ast.KindBool:
		return "boolean"
	case ast.KindString, ast.KindBytes:
		return "string"
	case ast.KindInt64, ast.KindUint64, ast.KindSint64, ast.KindFixed64, ast.KindSfixed64:
		return "string"
	}
	return "number"
}

func (Table) MapType(key, value string) string {
	return "Object<" + key + ", " + value + ">"
}

func (Table) LabelWrapper(label ast.Label) (string, string) {
	switch label {
	case ast.LabelOptional:
		return "", "|undefined"
	case ast.LabelRepeated:
		return "Array<", ">"
	}
	return "", ""
}

func (Table) FieldIdentifier(name string) string {
	return snaker.SnakeToCamelLower(name)
}

func (Table) TypeIdentifier(path []string) string {
	return strings.Join(path, "_")
}

func jsMethod(m generate.MethodModel) string {
	in, out := m.Input, "Promise<"+m.Output+">"
	if m.ClientStreaming {
		in = "AsyncIterable<" + in + ">"
	}
	if m.ServerStreaming {
		out = "AsyncIterable<" + m.Output + ">"
	}
	return fmt.Sprintf("{function(%s): %s} %s", in, out, lowerFirst(m.Name))
}

func lowerFirst(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
