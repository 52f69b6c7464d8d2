// Package ast holds the declaration tree produced by parsing one schema.
//
// Nodes reference each other by name only. A Field whose type names a
// message carries the name, never a pointer, so the tree has no cycles and
// can be copied with Clone.
package ast

const DefaultSyntax = "proto3"

type File struct {
	Syntax     string
	Package    string
	Imports    []string
	Options    []Option
	Messages   []Message
	Services   []Service
	Enums      []Enum
	Extensions []Extension
	Channels   []Channel
}

type Option struct {
	Name  string
	Value Value
}

type ValueKind int

const (
	ValueString ValueKind = iota
	ValueNumber
	ValueBool
	ValueIdent
)

// Value is an option literal. Only the member matching Kind is meaningful;
// Text always holds the literal as written, without quotes.
type Value struct {
	Kind   ValueKind
	Text   string
	Number float64
	Bool   bool
}

type Message struct {
	Name     string
	Fields   []Field
	Messages []Message
	Enums    []Enum
	Options  []Option
	Channel  *ChannelBinding
}

type Field struct {
	Name    string
	Type    FieldType
	Number  int32
	Label   Label
	Oneof   string
	Options []Option
	Default *Value
}

type FieldType struct {
	Kind  Kind
	Name  string
	Key   *FieldType
	Value *FieldType
}

type Kind int

const (
	KindDouble Kind = iota
	KindFloat
	KindInt32
	KindInt64
	KindUint32
	KindUint64
	KindSint32
	KindSint64
	KindFixed32
	KindFixed64
	KindSfixed32
	KindSfixed64
	KindBool
	KindString
	KindBytes
	// KindMessage is a bare reference to a user-defined type. The parser
	// cannot tell messages from enums, so an enum reference also lands here
	// until the link pass rewrites it to KindEnum.
	KindMessage
	KindEnum
	KindMap
)

type Label int

const (
	LabelOptional Label = iota
	LabelRequired
	LabelRepeated
)

type Service struct {
	Name    string
	Methods []Method
	Options []Option
	Channel *ServiceChannelBinding
}

type Method struct {
	Name            string
	Input           string
	Output          string
	ClientStreaming bool
	ServerStreaming bool
	Options         []Option
	Channel         *MethodChannelBinding
}

type Enum struct {
	Name    string
	Values  []EnumValue
	Options []Option
}

type EnumValue struct {
	Name    string
	Number  int32
	Options []Option
}

type Extension struct {
	Name     string
	Extendee string
	Type     FieldType
	Number   int32
	Label    Label
	Options  []Option
}

// ChannelBinding attaches a message to a publish/subscribe channel. Every
// member is optional and option lines merge into it one at a time.
type ChannelBinding struct {
	Channel     *string
	Persistent  *bool
	BufferSize  *uint32
	WALEnabled  *bool
	SwapEnabled *bool
	Priority    *uint32
}

type ServiceChannelBinding struct {
	Channels   []string
	TimeoutMs  *uint32
	RetryCount *uint32
}

type MethodChannelBinding struct {
	Channel   *string
	TimeoutMs *uint32
	Async     *bool
}

type Direction int

const (
	Bidirectional Direction = iota
	Publish
	Subscribe
)

type Channel struct {
	Name        string
	MessageType string
	Direction   Direction
	Options     ChannelOptions
}

type ChannelOptions struct {
	BufferSize  *uint32
	Persistent  *bool
	WALEnabled  *bool
	SwapEnabled *bool
	Priority    *uint32
	TimeoutMs   *uint32
}
