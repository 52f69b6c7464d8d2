package generate

import (
	"slices"
	"strings"

	"github.com/jptrs93/dmxproto/internal/ast"
)

// Scope resolves type references against the declarations of one file,
// searching from the innermost enclosing message outwards.
type Scope struct {
	file *ast.File
	path []string
}

func NewScope(file *ast.File) Scope {
	return Scope{file: file}
}

// Enter returns the scope inside the named nested message.
func (s Scope) Enter(name string) Scope {
	return Scope{file: s.file, path: append(slices.Clone(s.path), name)}
}

func (s Scope) Path() []string {
	return slices.Clone(s.path)
}

// Resolve returns the declaration path of ref, or false when ref names
// nothing declared in the file.
func (s Scope) Resolve(ref string) ([]string, bool) {
	path, _, ok := s.ResolveKind(ref)
	return path, ok
}

// ResolveKind is Resolve that also reports whether ref names a message or
// an enum.
func (s Scope) ResolveKind(ref string) ([]string, ast.Kind, bool) {
	ref = strings.TrimPrefix(ref, ".")
	if pkg := s.file.Package; pkg != "" && strings.HasPrefix(ref, pkg+".") {
		ref = ref[len(pkg)+1:]
	}
	if ref == "" {
		return nil, 0, false
	}
	parts := strings.Split(ref, ".")
	for i := len(s.path); i >= 0; i-- {
		candidate := append(slices.Clone(s.path[:i]), parts...)
		if kind, ok := declared(s.file, candidate); ok {
			return candidate, kind, true
		}
	}
	return nil, 0, false
}

func declared(file *ast.File, path []string) (ast.Kind, bool) {
	messages, enums := file.Messages, file.Enums
	for i, name := range path {
		last := i == len(path)-1
		if last {
			for _, e := range enums {
				if e.Name == name {
					return ast.KindEnum, true
				}
			}
		}
		idx := slices.IndexFunc(messages, func(m ast.Message) bool { return m.Name == name })
		if idx == -1 {
			return 0, false
		}
		if last {
			return ast.KindMessage, true
		}
		messages, enums = messages[idx].Messages, messages[idx].Enums
	}
	return 0, false
}
