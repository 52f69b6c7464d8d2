package protogen

import (
	"github.com/jptrs93/dmxproto/internal/ast"
	"github.com/jptrs93/dmxproto/internal/generate"
)

func init() {
	generate.Register(Generator{})
}

// Generator emits the canonical schema text.
type Generator struct{}

func (g Generator) Name() string {
	return "proto"
}

func (g Generator) Extension() string {
	return ".dmxp.proto"
}

func (g Generator) Generate(file *ast.File, _ generate.Options) ([]byte, error) {
	return Render(file, Canonical), nil
}
