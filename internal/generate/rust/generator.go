package rustgen

import (
	"fmt"
	"strings"
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
	return "rust"
}

func (g Generator) Extension() string {
	return "_dmxp.rs"
}

func (g Generator) Generate(file *ast.File, options generate.Options) ([]byte, error) {
	model := generate.BuildModel(file, Table{}, options.WithDefaults(file))
	return generate.Render("rust_file.tmpl", funcs, model)
}

var funcs = template.FuncMap{
	"variant":    variant,
	"rustMethod": rustMethod,
	"enumBody":   splitAliases,
}

// Table spells schema types the Rust way: Option and Vec wrappers, field
// names as declared, nested declarations concatenated.
type Table struct{}

var scalars = map[ast.Kind]string{
	ast.KindDouble:   "f64",
	ast.KindFloat:    "f32",
	ast.KindInt32:    "i32",
	ast.KindInt64:    "i64",
	ast.KindUint32:   "u32",
	ast.KindUint64:   "u64",
	ast.KindSint32:   "i32",
	ast.KindSint64:   "i64",
	ast.KindFixed32:  "u32",
	ast.KindFixed64:  "u64",
	ast.KindSfixed32: "i32",
	ast.KindSfixed64: "i64",
	ast.KindBool:     "bool",
	ast.KindString:   "String",
	ast.KindBytes:    "Vec<u8>",
}

func (Table) ScalarType(kind ast.Kind) string {
	return scalars[kind]
}

func (Table) MapType(key, value string) string {
	return "HashMap<" + key + ", " + value + ">"
}

func (Table) LabelWrapper(label ast.Label) (string, string) {
	switch label {
	case ast.LabelOptional:
		return "Option<", ">"
	case ast.LabelRepeated:
		return "Vec<", ">"
	}
	return "", ""
}

func (Table) FieldIdentifier(name string) string {
	return rawIdent(name)
}

func (Table) TypeIdentifier(path []string) string {
	return strings.Join(path, "")
}

// Box puts a singular message member on the heap, which lets a message
// contain itself.
func (Table) Box(typ string) string {
	return "Box<" + typ + ">"
}

var keywords = map[string]bool{
	"as": true, "async": true, "await": true, "break": true, "const": true,
	"continue": true, "dyn": true, "else": true, "enum": true, "extern": true,
	"false": true, "fn": true, "for": true, "if": true, "impl": true,
	"in": true, "let": true, "loop": true, "match": true, "mod": true,
	"move": true, "mut": true, "pub": true, "ref": true, "return": true,
	"static": true, "struct": true, "trait": true, "true": true, "type": true,
	"unsafe": true, "use": true, "where": true, "while": true, "abstract": true,
	"become": true, "box": true, "do": true, "final": true, "macro": true,
	"override": true, "priv": true, "try": true, "typeof": true, "unsized": true,
	"virtual": true, "yield": true,
}

// rawIdent escapes Rust keywords. self, super, crate and Self cannot be
// raw identifiers and get a trailing underscore instead.
func rawIdent(name string) string {
	switch {
	case keywords[name]:
		return "r#" + name
	case name == "self" || name == "super" || name == "crate" || name == "Self":
		return name + "_"
	}
	return name
}

// variant turns an enum value name such as IN_PROGRESS into InProgress.
func variant(name string) string {
	return snaker.SnakeToCamel(strings.ToLower(name))
}

type enumAlias struct {
	Name   string
	Target string
}

type enumBody struct {
	Variants []ast.EnumValue
	Aliases  []enumAlias
}

// splitAliases keeps the first value declared for each number as a variant.
// Later values with the same number become associated consts, since a
// repr(i32) enum cannot repeat a discriminant.
func splitAliases(e generate.EnumModel) enumBody {
	var body enumBody
	first := make(map[int32]string, len(e.Values))
	for _, v := range e.Values {
		if name, ok := first[v.Number]; ok {
			body.Aliases = append(body.Aliases, enumAlias{Name: generate.UpperSnake(v.Name), Target: variant(name)})
			continue
		}
		first[v.Number] = v.Name
		body.Variants = append(body.Variants, v)
	}
	return body
}

func rustMethod(crate string, m generate.MethodModel) string {
	in := m.Input
	if m.ClientStreaming {
		in = crate + "::Stream<" + in + ">"
	}
	out := m.Output
	if m.ServerStreaming {
		out = crate + "::Stream<" + out + ">"
	}
	return fmt.Sprintf("async fn %s(&self, request: %s) -> Result<%s, %s::Error>;",
		rawIdent(snaker.CamelToSnake(m.Name)), in, out, crate)
}
