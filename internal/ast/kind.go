package ast

import "fmt"

var scalarKeywords = [...]string{
	KindDouble:   "double",
	KindFloat:    "float",
	KindInt32:    "int32",
	KindInt64:    "int64",
	KindUint32:   "uint32",
	KindUint64:   "uint64",
	KindSint32:   "sint32",
	KindSint64:   "sint64",
	KindFixed32:  "fixed32",
	KindFixed64:  "fixed64",
	KindSfixed32: "sfixed32",
	KindSfixed64: "sfixed64",
	KindBool:     "bool",
	KindString:   "string",
	KindBytes:    "bytes",
}

var scalarByKeyword = func() map[string]Kind {
	m := make(map[string]Kind, len(scalarKeywords))
	for k, kw := range scalarKeywords {
		m[kw] = Kind(k)
	}
	return m
}()

// ScalarKind maps a scalar type keyword to its kind.
func ScalarKind(keyword string) (Kind, bool) {
	k, ok := scalarByKeyword[keyword]
	return k, ok
}

func (k Kind) IsScalar() bool {
	return k >= KindDouble && k <= KindBytes
}

func (k Kind) String() string {
	if k.IsScalar() {
		return scalarKeywords[k]
	}
	switch k {
	case KindMessage:
		return "message"
	case KindEnum:
		return "enum"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Scalar returns the field type for a scalar kind.
func Scalar(k Kind) FieldType {
	return FieldType{Kind: k}
}

// Named returns a bare reference to a user-defined type.
func Named(name string) FieldType {
	return FieldType{Kind: KindMessage, Name: name}
}

func MapOf(key, value FieldType) FieldType {
	return FieldType{Kind: KindMap, Key: &key, Value: &value}
}

// String spells the type the way the schema language does.
func (t FieldType) String() string {
	switch {
	case t.Kind == KindMap && t.Key != nil && t.Value != nil:
		return "map<" + t.Key.String() + ", " + t.Value.String() + ">"
	case t.Kind == KindMessage || t.Kind == KindEnum:
		return t.Name
	default:
		return t.Kind.String()
	}
}

func (l Label) String() string {
	switch l {
	case LabelOptional:
		return "optional"
	case LabelRequired:
		return "required"
	case LabelRepeated:
		return "repeated"
	default:
		return fmt.Sprintf("Label(%d)", int(l))
	}
}

// ParseLabel maps a label keyword to its label.
func ParseLabel(keyword string) (Label, bool) {
	switch keyword {
	case "optional":
		return LabelOptional, true
	case "required":
		return LabelRequired, true
	case "repeated":
		return LabelRepeated, true
	}
	return 0, false
}

func (d Direction) String() string {
	switch d {
	case Publish:
		return "publish"
	case Subscribe:
		return "subscribe"
	case Bidirectional:
		return "bidirectional"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

func ParseDirection(keyword string) (Direction, bool) {
	switch keyword {
	case "publish":
		return Publish, true
	case "subscribe":
		return Subscribe, true
	case "bidirectional":
		return Bidirectional, true
	}
	return 0, false
}

func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	case ValueNumber:
		return "number"
	case ValueBool:
		return "bool"
	case ValueIdent:
		return "identifier"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

func (k Kind) MarshalText() ([]byte, error)      { return []byte(k.String()), nil }
func (l Label) MarshalText() ([]byte, error)     { return []byte(l.String()), nil }
func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }
func (k ValueKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Literal spells the value as it would appear on the right of an option.
func (v Value) Literal() string {
	if v.Kind == ValueString {
		return `"` + v.Text + `"`
	}
	return v.Text
}
