package generate

import (
	"github.com/jptrs93/dmxproto/internal/ast"
)

// Table is the per-target conversion table: how schema types, labels and
// names are spelled in the target language. Adding a target means
// supplying one Table and one template.
type Table interface {
	ScalarType(kind ast.Kind) string
	MapType(key, value string) string
	// LabelWrapper returns the text placed around a member's type for the
	// given label.
	LabelWrapper(label ast.Label) (prefix, suffix string)
	FieldIdentifier(name string) string
	// TypeIdentifier spells a declaration given its path from the outermost
	// enclosing message.
	TypeIdentifier(path []string) string
}

// Boxer is implemented by tables whose targets need an explicit
// indirection for singular message members, so a message can refer to
// itself.
type Boxer interface {
	Box(typ string) string
}

// TypeName spells t in the target language. References resolvable from
// scope are rewritten to the target's spelling of the declaration; the
// rest are emitted as written.
func TypeName(table Table, scope Scope, t ast.FieldType) string {
	switch t.Kind {
	case ast.KindMap:
		if t.Key == nil || t.Value == nil {
			return table.MapType("", "")
		}
		return table.MapType(TypeName(table, scope, *t.Key), TypeName(table, scope, *t.Value))
	case ast.KindMessage, ast.KindEnum:
		if path, ok := scope.Resolve(t.Name); ok {
			return table.TypeIdentifier(path)
		}
		return t.Name
	default:
		return table.ScalarType(t.Kind)
	}
}

// MemberType is the declared type of a field: its type name wrapped for its
// label. Map fields are never wrapped. A singular message member is boxed
// first when the table is a Boxer.
func MemberType(table Table, scope Scope, f ast.Field) string {
	name := TypeName(table, scope, f.Type)
	if f.Type.Kind == ast.KindMap {
		return name
	}
	if b, ok := table.(Boxer); ok && f.Label != ast.LabelRepeated && isMessageRef(scope, f.Type) {
		name = b.Box(name)
	}
	prefix, suffix := table.LabelWrapper(f.Label)
	return prefix + name + suffix
}

// isMessageRef reports whether t names a message. Unresolved references
// keep the kind the parser gave them.
func isMessageRef(scope Scope, t ast.FieldType) bool {
	if t.Kind != ast.KindMessage && t.Kind != ast.KindEnum {
		return false
	}
	if _, kind, ok := scope.ResolveKind(t.Name); ok {
		return kind == ast.KindMessage
	}
	return t.Kind == ast.KindMessage
}
