package gogen

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"
	"text/template"

	"github.com/serenize/snaker"

	"github.com/jptrs93/dmxproto/internal/ast"
	"github.com/jptrs93/dmxproto/internal/generate"
)

func init() {
	generate.Register(Generator{})
}

type Generator struct{}

func (g Generator) Name() string {
	return "go"
}

func (g Generator) Extension() string {
	return ".dmxp.go"
}

func (g Generator) Generate(file *ast.File, options generate.Options) ([]byte, error) {
	model := generate.BuildModel(file, Table{}, options.WithDefaults(file))
	return generate.Render("go_file.tmpl", funcs, model)
}

var funcs = template.FuncMap{
	"importBlock":     importBlock,
	"enumConsts":      enumConsts,
	"structFields":    structFields,
	"methodSignature": methodSignature,
}

// Table spells schema types the Go way: optional members are pointers,
// repeated members are slices, nested declarations are joined with '_'.
type Table struct{}

var scalars = map[ast.Kind]string{
	ast.KindDouble:   "float64",
	ast.KindFloat:    "float32",
	ast.KindInt32:    "int32",
	ast.KindInt64:    "int64",
	ast.KindUint32:   "uint32",
	ast.KindUint64:   "uint64",
	ast.KindSint32:   "int32",
	ast.KindSint64:   "int64",
	ast.KindFixed32:  "uint32",
	ast.KindFixed64:  "uint64",
	ast.KindSfixed32: "int32",
	ast.KindSfixed64: "int64",
	ast.KindBool:     "bool",
	ast.KindString:   "string",
	ast.KindBytes:    "[]byte",
}

func (Table) ScalarType(kind ast.Kind) string {
	return scalars[kind]
}

func (Table) MapType(key, value string) string {
	return "map[" + key + "]" + value
}

func (Table) LabelWrapper(label ast.Label) (string, string) {
	switch label {
	case ast.LabelOptional:
		return "*", ""
	case ast.LabelRepeated:
		return "[]", ""
	}
	return "", ""
}

func (Table) FieldIdentifier(name string) string {
	return snaker.SnakeToCamel(name)
}

func (Table) TypeIdentifier(path []string) string {
	return strings.Join(path, "_")
}

func importBlock(m *generate.Model) string {
	var std, ext []string
	if m.HasChannels() || m.HasServices() {
		std = append(std, `"context"`)
	}
	if m.HasChannels() {
		std = append(std, `"encoding/json"`)
		ext = append(ext, fmt.Sprintf("dmxp %q", m.Options.MessagingImport))
	}
	switch {
	case len(std)+len(ext) == 0:
		return ""
	case len(std) == 1 && len(ext) == 0:
		return "import " + std[0]
	}
	var b strings.Builder
	b.WriteString("import (\n")
	for _, imp := range std {
		b.WriteString("\t" + imp + "\n")
	}
	if len(std) > 0 && len(ext) > 0 {
		b.WriteString("\n")
	}
	for _, imp := range ext {
		b.WriteString("\t" + imp + "\n")
	}
	b.WriteString(")")
	return b.String()
}

func enumConsts(e generate.EnumModel) []string {
	rows := make([][]string, 0, len(e.Values))
	for _, v := range e.Values {
		rows = append(rows, []string{e.Ident + "_" + v.Name, fmt.Sprintf("%s = %d", e.Ident, v.Number)})
	}
	return align(rows)
}

// channelMethods are generated on every channel message and cannot be
// field names there.
var channelMethods = map[string]bool{"Publish": true}

func structFields(m generate.MessageModel) []string {
	rows := make([][]string, 0, len(m.Fields))
	for _, f := range m.Fields {
		ident := f.Ident
		if m.Channel != "" && channelMethods[ident] {
			ident += "_"
		}
		rows = append(rows, []string{ident, f.Type, fmt.Sprintf("`json:\"%s,omitempty\"`", f.Name)})
	}
	return align(rows)
}

func methodSignature(m generate.MethodModel) string {
	in := "req *" + m.Input
	if m.ClientStreaming {
		in = "req <-chan *" + m.Input
	}
	out := "(*" + m.Output + ", error)"
	if m.ServerStreaming {
		out = "(<-chan *" + m.Output + ", error)"
	}
	return fmt.Sprintf("%s(ctx context.Context, %s) %s", generate.Title(m.Name), in, out)
}

// align lays rows out in columns separated by at least one space, the way
// gofmt aligns struct fields and const specs.
func align(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 1, ' ', 0)
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
	return strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
}
