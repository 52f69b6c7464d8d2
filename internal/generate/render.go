package generate

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/jptrs93/dmxproto/internal/generate/templates"
)

// baseFuncs are available to every target template.
var baseFuncs = template.FuncMap{
	"upperSnake":     UpperSnake,
	"upperSnakePath": func(path []string) string { return UpperSnake(path...) },
	"camel":          Camel,
	"title":          Title,
	"join":           strings.Join,
	"quote":          func(s string) string { return fmt.Sprintf("%q", s) },
}

// Render executes the named template from the embedded set with the
// target's own funcs layered over the shared ones.
func Render(name string, funcs template.FuncMap, data any) ([]byte, error) {
	tmpl := template.New(name).Funcs(baseFuncs).Funcs(funcs)
	tmpl, err := tmpl.ParseFS(templates.FS, name)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
