// Package descriptorgen converts a parsed file to a protobuf
// FileDescriptorProto. DMXP settings become extensions on the message,
// service and method options; channel declarations have no descriptor
// counterpart and are left out.
package descriptorgen

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/jptrs93/dmxproto/internal/ast"
	"github.com/jptrs93/dmxproto/internal/dmxpopt"
	"github.com/jptrs93/dmxproto/internal/generate"
)

func init() {
	generate.Register(Generator{})
}

type Generator struct{}

func (g Generator) Name() string {
	return "descriptor"
}

func (g Generator) Extension() string {
	return ".descriptor.json"
}

func (g Generator) Generate(file *ast.File, options generate.Options) ([]byte, error) {
	options = options.WithDefaults(file)
	fd := Build(file, options.BaseName+".proto")
	out, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(fd)
	if err != nil {
		return nil, fmt.Errorf("marshal descriptor: %w", err)
	}
	return append(out, '\n'), nil
}

// Build converts file. name becomes the descriptor's file name.
func Build(file *ast.File, name string) *descriptorpb.FileDescriptorProto {
	b := builder{file: file}
	fd := &descriptorpb.FileDescriptorProto{
		Name:       proto.String(name),
		Dependency: append([]string(nil), file.Imports...),
	}
	if file.Package != "" {
		fd.Package = proto.String(file.Package)
	}
	if file.Syntax == "proto2" || file.Syntax == "proto3" {
		fd.Syntax = proto.String(file.Syntax)
	}
	root := generate.NewScope(file)
	for _, e := range file.Enums {
		fd.EnumType = append(fd.EnumType, buildEnum(e))
	}
	for _, m := range file.Messages {
		fd.MessageType = append(fd.MessageType, b.message(root, m))
	}
	for _, s := range file.Services {
		fd.Service = append(fd.Service, b.service(root, s))
	}
	for _, x := range file.Extensions {
		f := b.field(root, ast.Field{Name: x.Name, Type: x.Type, Number: x.Number, Label: x.Label})
		f.Extendee = proto.String(b.typeName(root, x.Extendee))
		fd.Extension = append(fd.Extension, f)
	}
	return fd
}

type builder struct {
	file *ast.File
}

func (b builder) message(parent generate.Scope, m ast.Message) *descriptorpb.DescriptorProto {
	scope := parent.Enter(m.Name)
	dp := &descriptorpb.DescriptorProto{Name: proto.String(m.Name)}
	oneofs := map[string]int32{}
	for _, f := range m.Fields {
		fp := b.field(scope, f)
		if f.Type.Kind == ast.KindMap {
			entry := b.mapEntry(scope, f)
			dp.NestedType = append(dp.NestedType, entry)
			fp.TypeName = proto.String(b.qualify(append(scope.Path(), entry.GetName())))
		}
		if f.Oneof != "" {
			idx, ok := oneofs[f.Oneof]
			if !ok {
				idx = int32(len(dp.OneofDecl))
				oneofs[f.Oneof] = idx
				dp.OneofDecl = append(dp.OneofDecl, &descriptorpb.OneofDescriptorProto{Name: proto.String(f.Oneof)})
			}
			fp.OneofIndex = proto.Int32(idx)
		}
		dp.Field = append(dp.Field, fp)
	}
	for _, e := range m.Enums {
		dp.EnumType = append(dp.EnumType, buildEnum(e))
	}
	for _, n := range m.Messages {
		dp.NestedType = append(dp.NestedType, b.message(scope, n))
	}
	if opts := messageOptions(m.Channel); opts != nil {
		dp.Options = opts
	}
	return dp
}

// mapEntry is the synthetic nested message protoc generates for a map field.
func (b builder) mapEntry(scope generate.Scope, f ast.Field) *descriptorpb.DescriptorProto {
	key := b.field(scope, ast.Field{Name: "key", Type: *f.Type.Key, Number: 1})
	value := b.field(scope, ast.Field{Name: "value", Type: *f.Type.Value, Number: 2})
	return &descriptorpb.DescriptorProto{
		Name:    proto.String(generate.Title(jsonName(f.Name)) + "Entry"),
		Field:   []*descriptorpb.FieldDescriptorProto{key, value},
		Options: &descriptorpb.MessageOptions{MapEntry: proto.Bool(true)},
	}
}

var scalarTypes = map[ast.Kind]descriptorpb.FieldDescriptorProto_Type{
	ast.KindDouble:   descriptorpb.FieldDescriptorProto_TYPE_DOUBLE,
	ast.KindFloat:    descriptorpb.FieldDescriptorProto_TYPE_FLOAT,
	ast.KindInt32:    descriptorpb.FieldDescriptorProto_TYPE_INT32,
	ast.KindInt64:    descriptorpb.FieldDescriptorProto_TYPE_INT64,
	ast.KindUint32:   descriptorpb.FieldDescriptorProto_TYPE_UINT32,
	ast.KindUint64:   descriptorpb.FieldDescriptorProto_TYPE_UINT64,
	ast.KindSint32:   descriptorpb.FieldDescriptorProto_TYPE_SINT32,
	ast.KindSint64:   descriptorpb.FieldDescriptorProto_TYPE_SINT64,
	ast.KindFixed32:  descriptorpb.FieldDescriptorProto_TYPE_FIXED32,
	ast.KindFixed64:  descriptorpb.FieldDescriptorProto_TYPE_FIXED64,
	ast.KindSfixed32: descriptorpb.FieldDescriptorProto_TYPE_SFIXED32,
	ast.KindSfixed64: descriptorpb.FieldDescriptorProto_TYPE_SFIXED64,
	ast.KindBool:     descriptorpb.FieldDescriptorProto_TYPE_BOOL,
	ast.KindString:   descriptorpb.FieldDescriptorProto_TYPE_STRING,
	ast.KindBytes:    descriptorpb.FieldDescriptorProto_TYPE_BYTES,
}

var labels = map[ast.Label]descriptorpb.FieldDescriptorProto_Label{
	ast.LabelOptional: descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL,
	ast.LabelRequired: descriptorpb.FieldDescriptorProto_LABEL_REQUIRED,
	ast.LabelRepeated: descriptorpb.FieldDescriptorProto_LABEL_REPEATED,
}

func (b builder) field(scope generate.Scope, f ast.Field) *descriptorpb.FieldDescriptorProto {
	fp := &descriptorpb.FieldDescriptorProto{
		Name:     proto.String(f.Name),
		Number:   proto.Int32(f.Number),
		Label:    labels[f.Label].Enum(),
		JsonName: proto.String(jsonName(f.Name)),
	}
	switch f.Type.Kind {
	case ast.KindMap:
		fp.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
		fp.Type = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum()
	case ast.KindMessage, ast.KindEnum:
		fp.Type = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum()
		if path, kind, ok := scope.ResolveKind(f.Type.Name); ok {
			if kind == ast.KindEnum {
				fp.Type = descriptorpb.FieldDescriptorProto_TYPE_ENUM.Enum()
			}
			fp.TypeName = proto.String(b.qualify(path))
		} else {
			if f.Type.Kind == ast.KindEnum {
				fp.Type = descriptorpb.FieldDescriptorProto_TYPE_ENUM.Enum()
			}
			fp.TypeName = proto.String(f.Type.Name)
		}
	default:
		fp.Type = scalarTypes[f.Type.Kind].Enum()
	}
	if f.Default != nil && b.file.Syntax == "proto2" {
		fp.DefaultValue = proto.String(f.Default.Text)
	}
	return fp
}

// typeName is the fully qualified name of ref when it is declared in the
// file, ref itself otherwise.
func (b builder) typeName(scope generate.Scope, ref string) string {
	if path, ok := scope.Resolve(ref); ok {
		return b.qualify(path)
	}
	return ref
}

func (b builder) qualify(path []string) string {
	name := strings.Join(path, ".")
	if b.file.Package != "" {
		name = b.file.Package + "." + name
	}
	return "." + name
}

func buildEnum(e ast.Enum) *descriptorpb.EnumDescriptorProto {
	ep := &descriptorpb.EnumDescriptorProto{Name: proto.String(e.Name)}
	for _, v := range e.Values {
		ep.Value = append(ep.Value, &descriptorpb.EnumValueDescriptorProto{
			Name:   proto.String(v.Name),
			Number: proto.Int32(v.Number),
		})
	}
	return ep
}

func (b builder) service(scope generate.Scope, s ast.Service) *descriptorpb.ServiceDescriptorProto {
	sp := &descriptorpb.ServiceDescriptorProto{Name: proto.String(s.Name)}
	if c := s.Channel; c != nil {
		opts := &descriptorpb.ServiceOptions{}
		if len(c.Channels) > 0 {
			proto.SetExtension(opts, dmxpopt.E_ServiceChannels, append([]string(nil), c.Channels...))
		}
		if c.TimeoutMs != nil {
			proto.SetExtension(opts, dmxpopt.E_ServiceTimeoutMs, *c.TimeoutMs)
		}
		if c.RetryCount != nil {
			proto.SetExtension(opts, dmxpopt.E_ServiceRetryCount, *c.RetryCount)
		}
		sp.Options = opts
	}
	for _, m := range s.Methods {
		mp := &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(m.Name),
			InputType:  proto.String(b.typeName(scope, m.Input)),
			OutputType: proto.String(b.typeName(scope, m.Output)),
		}
		if m.ClientStreaming {
			mp.ClientStreaming = proto.Bool(true)
		}
		if m.ServerStreaming {
			mp.ServerStreaming = proto.Bool(true)
		}
		if c := m.Channel; c != nil {
			opts := &descriptorpb.MethodOptions{}
			if c.Channel != nil {
				proto.SetExtension(opts, dmxpopt.E_MethodChannel, *c.Channel)
			}
			if c.TimeoutMs != nil {
				proto.SetExtension(opts, dmxpopt.E_MethodTimeoutMs, *c.TimeoutMs)
			}
			if c.Async != nil {
				proto.SetExtension(opts, dmxpopt.E_MethodAsync, *c.Async)
			}
			mp.Options = opts
		}
		sp.Method = append(sp.Method, mp)
	}
	return sp
}

func messageOptions(c *ast.ChannelBinding) *descriptorpb.MessageOptions {
	if c == nil {
		return nil
	}
	opts := &descriptorpb.MessageOptions{}
	if c.Channel != nil {
		proto.SetExtension(opts, dmxpopt.E_MessageChannel, *c.Channel)
	}
	if c.Persistent != nil {
		proto.SetExtension(opts, dmxpopt.E_MessagePersistent, *c.Persistent)
	}
	if c.BufferSize != nil {
		proto.SetExtension(opts, dmxpopt.E_MessageBufferSize, *c.BufferSize)
	}
	if c.WALEnabled != nil {
		proto.SetExtension(opts, dmxpopt.E_MessageWALEnabled, *c.WALEnabled)
	}
	if c.SwapEnabled != nil {
		proto.SetExtension(opts, dmxpopt.E_MessageSwapEnabled, *c.SwapEnabled)
	}
	if c.Priority != nil {
		proto.SetExtension(opts, dmxpopt.E_MessagePriority, *c.Priority)
	}
	return opts
}

// jsonName is protoc's default JSON name: underscores dropped and the
// letter after each one upper-cased.
func jsonName(name string) string {
	var sb strings.Builder
	upper := false
	for _, r := range name {
		if r == '_' {
			upper = true
			continue
		}
		if upper && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		upper = false
		sb.WriteRune(r)
	}
	return sb.String()
}
