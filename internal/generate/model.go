package generate

import (
	"fmt"

	"github.com/jptrs93/dmxproto/internal/ast"
)

// Model is a file flattened for templates: nested declarations are hoisted
// to the top level under their target identifiers, and every type and name
// is already spelled through a Table.
type Model struct {
	Package  string
	Options  Options
	Messages []MessageModel
	Enums    []EnumModel
	Services []ServiceModel
	Channels []ChannelModel
}

type MessageModel struct {
	Path   []string
	Ident  string
	Fields []FieldModel
	// Channel is the bound channel name; empty when the message is not
	// bound.
	Channel string
	Knobs   []string
}

type FieldModel struct {
	Name   string
	Ident  string
	Type   string
	Number int32
	Label  ast.Label
	Oneof  string
	IsMap  bool
}

type EnumModel struct {
	Ident  string
	Values []ast.EnumValue
}

type ServiceModel struct {
	Name     string
	Ident    string
	Methods  []MethodModel
	Channels []string
	Knobs    []string
}

type MethodModel struct {
	Name            string
	Input           string
	Output          string
	ClientStreaming bool
	ServerStreaming bool
	Channel         string
	Knobs           []string
}

type ChannelModel struct {
	Name        string
	MessageType string
	Direction   string
	Knobs       []string
}

// HasChannels reports whether any message is bound to a channel.
func (m *Model) HasChannels() bool {
	for _, msg := range m.Messages {
		if msg.Channel != "" {
			return true
		}
	}
	return false
}

func (m *Model) HasServices() bool {
	return len(m.Services) > 0
}

// HasMaps reports whether any message has a map member.
func (m *Model) HasMaps() bool {
	for _, msg := range m.Messages {
		for _, f := range msg.Fields {
			if f.IsMap {
				return true
			}
		}
	}
	return false
}

func BuildModel(file *ast.File, table Table, options Options) *Model {
	m := &Model{
		Package: file.Package,
		Options: options,
	}
	root := NewScope(file)
	for i := range file.Enums {
		m.addEnum(table, nil, &file.Enums[i])
	}
	for i := range file.Messages {
		m.addMessage(table, root, &file.Messages[i])
	}
	for _, svc := range file.Services {
		m.Services = append(m.Services, buildService(table, root, svc))
	}
	for _, ch := range file.Channels {
		m.Channels = append(m.Channels, ChannelModel{
			Name:        ch.Name,
			MessageType: TypeName(table, root, ast.Named(ch.MessageType)),
			Direction:   ch.Direction.String(),
			Knobs:       channelKnobs(ch.Options),
		})
	}
	return m
}

// addMessage appends msg and then its nested declarations, parents first.
func (m *Model) addMessage(table Table, parent Scope, msg *ast.Message) {
	scope := parent.Enter(msg.Name)
	path := scope.Path()
	mm := MessageModel{
		Path:  path,
		Ident: table.TypeIdentifier(path),
		Knobs: messageKnobs(msg.Channel),
	}
	if name, ok := msg.ChannelName(); ok {
		mm.Channel = name
	}
	for _, f := range msg.Fields {
		mm.Fields = append(mm.Fields, FieldModel{
			Name:   f.Name,
			Ident:  table.FieldIdentifier(f.Name),
			Type:   MemberType(table, scope, f),
			Number: f.Number,
			Label:  f.Label,
			Oneof:  f.Oneof,
			IsMap:  f.Type.Kind == ast.KindMap,
		})
	}
	m.Messages = append(m.Messages, mm)
	for i := range msg.Enums {
		m.addEnum(table, path, &msg.Enums[i])
	}
	for i := range msg.Messages {
		m.addMessage(table, scope, &msg.Messages[i])
	}
}

func (m *Model) addEnum(table Table, parent []string, e *ast.Enum) {
	path := append(append([]string(nil), parent...), e.Name)
	m.Enums = append(m.Enums, EnumModel{
		Ident:  table.TypeIdentifier(path),
		Values: e.Values,
	})
}

func buildService(table Table, scope Scope, svc ast.Service) ServiceModel {
	sm := ServiceModel{
		Name:  svc.Name,
		Ident: table.TypeIdentifier([]string{svc.Name}),
	}
	if b := svc.Channel; b != nil {
		sm.Channels = b.Channels
		sm.Knobs = knobs(
			knob{"timeout_ms", b.TimeoutMs},
			knob{"retry_count", b.RetryCount},
		)
	}
	for _, method := range svc.Methods {
		mm := MethodModel{
			Name:            method.Name,
			Input:           TypeName(table, scope, ast.Named(method.Input)),
			Output:          TypeName(table, scope, ast.Named(method.Output)),
			ClientStreaming: method.ClientStreaming,
			ServerStreaming: method.ServerStreaming,
		}
		if b := method.Channel; b != nil {
			if b.Channel != nil {
				mm.Channel = *b.Channel
			}
			mm.Knobs = knobs(
				knob{"timeout_ms", b.TimeoutMs},
				knob{"async", b.Async},
			)
		}
		sm.Methods = append(sm.Methods, mm)
	}
	return sm
}

type knob struct {
	name  string
	value any
}

// knobs formats the set members of a binding as "name: value", in order.
func knobs(ks ...knob) []string {
	var out []string
	for _, k := range ks {
		switch v := k.value.(type) {
		case *bool:
			if v != nil {
				out = append(out, fmt.Sprintf("%s: %t", k.name, *v))
			}
		case *uint32:
			if v != nil {
				out = append(out, fmt.Sprintf("%s: %d", k.name, *v))
			}
		}
	}
	return out
}

func messageKnobs(b *ast.ChannelBinding) []string {
	if b == nil {
		return nil
	}
	return knobs(
		knob{"persistent", b.Persistent},
		knob{"buffer_size", b.BufferSize},
		knob{"wal_enabled", b.WALEnabled},
		knob{"swap_enabled", b.SwapEnabled},
		knob{"priority", b.Priority},
	)
}

func channelKnobs(o ast.ChannelOptions) []string {
	return knobs(
		knob{"persistent", o.Persistent},
		knob{"buffer_size", o.BufferSize},
		knob{"wal_enabled", o.WALEnabled},
		knob{"swap_enabled", o.SwapEnabled},
		knob{"priority", o.Priority},
		knob{"timeout_ms", o.TimeoutMs},
	)
}
