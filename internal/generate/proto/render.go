// Package protogen renders a parsed file back to schema text.
//
// Canonical output is the dialect the parser reads, channel declarations and
// every option included; parsing it yields an equal tree. Protoc output is
// the subset a standard protobuf compiler accepts: DMXP settings are spelled
// as extensions from dmxp/options.proto and everything else that protoc
// would reject is left out.
package protogen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jptrs93/dmxproto/internal/ast"
	"github.com/jptrs93/dmxproto/internal/dmxpopt"
)

type Mode int

const (
	Canonical Mode = iota
	Protoc
)

func Render(file *ast.File, mode Mode) []byte {
	p := &printer{mode: mode, proto2: file.Syntax == "proto2"}
	p.file(file)
	return []byte(p.b.String())
}

type printer struct {
	b      strings.Builder
	indent int
	mode   Mode
	proto2 bool
}

func (p *printer) line(format string, args ...any) {
	if format == "" {
		p.b.WriteString("\n")
		return
	}
	p.b.WriteString(strings.Repeat("  ", p.indent))
	fmt.Fprintf(&p.b, format, args...)
	p.b.WriteString("\n")
}

func (p *printer) open(format string, args ...any) {
	p.line(format+" {", args...)
	p.indent++
}

func (p *printer) close() {
	p.indent--
	p.line("}")
}

func (p *printer) file(f *ast.File) {
	syntax := f.Syntax
	if syntax == "" {
		syntax = ast.DefaultSyntax
	}
	p.line("syntax = \"%s\";", syntax)
	if f.Package != "" {
		p.line("")
		p.line("package %s;", f.Package)
	}

	imports := f.Imports
	if p.mode == Protoc && !slices.Contains(imports, dmxpopt.ProtoPath) {
		imports = append(slices.Clone(imports), dmxpopt.ProtoPath)
	}
	if len(imports) > 0 {
		p.line("")
		for _, imp := range imports {
			p.line("import \"%s\";", imp)
		}
	}

	if p.mode == Canonical && len(f.Options) > 0 {
		p.line("")
		p.options(f.Options)
	}
	for _, e := range f.Enums {
		p.line("")
		p.enum(e)
	}
	for _, m := range f.Messages {
		p.line("")
		p.message(m)
	}
	for _, s := range f.Services {
		p.line("")
		p.service(s)
	}
	p.extensions(f.Extensions)
	if p.mode == Canonical {
		for _, ch := range f.Channels {
			p.line("")
			p.channel(ch)
		}
	}
}

// optionName spells a stored option name. Custom options get their
// parentheses back; the parser strips them either way.
func optionName(name string) string {
	if _, ok := dmxpopt.Lookup(name); ok || strings.Contains(name, ".") {
		return "(" + name + ")"
	}
	return name
}

func (p *printer) options(opts []ast.Option) {
	for _, opt := range opts {
		p.line("option %s = %s;", optionName(opt.Name), opt.Value.Literal())
	}
}

func inlineOptions(opts []ast.Option) string {
	if len(opts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(opts))
	for _, opt := range opts {
		parts = append(parts, optionName(opt.Name)+" = "+opt.Value.Literal())
	}
	return " [" + strings.Join(parts, ", ") + "]"
}

func (p *printer) message(m ast.Message) {
	p.open("message %s", m.Name)
	if p.mode == Canonical {
		p.options(m.Options)
	} else {
		p.messageBinding(m.Channel)
	}
	for i := 0; i < len(m.Fields); {
		f := m.Fields[i]
		if f.Oneof == "" {
			p.field(f, false)
			i++
			continue
		}
		p.open("oneof %s", f.Oneof)
		for ; i < len(m.Fields) && m.Fields[i].Oneof == f.Oneof; i++ {
			p.field(m.Fields[i], true)
		}
		p.close()
	}
	for _, e := range m.Enums {
		p.enum(e)
	}
	for _, n := range m.Messages {
		p.message(n)
	}
	p.close()
}

func (p *printer) label(l ast.Label, t ast.FieldType, inOneof bool) string {
	if t.Kind == ast.KindMap || inOneof {
		return ""
	}
	switch {
	case l == ast.LabelRepeated:
		return "repeated "
	case l == ast.LabelRequired && (p.mode == Canonical || p.proto2):
		return "required "
	case l == ast.LabelOptional && p.mode == Protoc && p.proto2:
		return "optional "
	}
	return ""
}

func (p *printer) field(f ast.Field, inOneof bool) {
	opts := ""
	if p.mode == Canonical {
		opts = inlineOptions(f.Options)
	}
	p.line("%s%s %s = %d%s;", p.label(f.Label, f.Type, inOneof), f.Type, f.Name, f.Number, opts)
}

func (p *printer) enum(e ast.Enum) {
	p.open("enum %s", e.Name)
	if p.mode == Canonical {
		p.options(e.Options)
	}
	for _, v := range e.Values {
		opts := ""
		if p.mode == Canonical {
			opts = inlineOptions(v.Options)
		}
		p.line("%s = %d%s;", v.Name, v.Number, opts)
	}
	p.close()
}

func (p *printer) service(s ast.Service) {
	p.open("service %s", s.Name)
	if p.mode == Canonical {
		p.options(s.Options)
	} else if b := s.Channel; b != nil {
		for _, ch := range b.Channels {
			p.line("option %s = \"%s\";", dmxpopt.ProtoName(dmxpopt.KeyChannels, dmxpopt.ScopeService), ch)
		}
		p.uint32Option(dmxpopt.KeyTimeoutMs, dmxpopt.ScopeService, b.TimeoutMs)
		p.uint32Option(dmxpopt.KeyRetryCount, dmxpopt.ScopeService, b.RetryCount)
	}
	for _, m := range s.Methods {
		p.method(m)
	}
	p.close()
}

func (p *printer) method(m ast.Method) {
	in, out := m.Input, m.Output
	if m.ClientStreaming {
		in = "stream " + in
	}
	if m.ServerStreaming {
		out = "stream " + out
	}
	sig := fmt.Sprintf("rpc %s(%s) returns (%s)", m.Name, in, out)

	hasBody := len(m.Options) > 0
	if p.mode == Protoc {
		hasBody = m.Channel != nil
	}
	if !hasBody {
		p.line("%s;", sig)
		return
	}
	p.open("%s", sig)
	if p.mode == Canonical {
		p.options(m.Options)
	} else {
		b := m.Channel
		p.stringOption(dmxpopt.KeyChannel, dmxpopt.ScopeMethod, b.Channel)
		p.uint32Option(dmxpopt.KeyTimeoutMs, dmxpopt.ScopeMethod, b.TimeoutMs)
		p.boolOption(dmxpopt.KeyAsync, dmxpopt.ScopeMethod, b.Async)
	}
	p.close()
}

// extensions groups consecutive extensions of the same type into one
// extend block.
func (p *printer) extensions(exts []ast.Extension) {
	for i := 0; i < len(exts); {
		extendee := exts[i].Extendee
		p.line("")
		p.open("extend %s", extendee)
		for ; i < len(exts) && exts[i].Extendee == extendee; i++ {
			x := exts[i]
			p.field(ast.Field{Name: x.Name, Type: x.Type, Number: x.Number, Label: x.Label, Options: x.Options}, false)
		}
		p.close()
	}
}

func (p *printer) channel(ch ast.Channel) {
	head := fmt.Sprintf("channel %s (%s) %s", ch.Name, ch.MessageType, ch.Direction)
	o := ch.Options
	if o == (ast.ChannelOptions{}) {
		p.line("%s;", head)
		return
	}
	p.open("%s", head)
	p.boolOption(dmxpopt.KeyPersistent, dmxpopt.ScopeChannel, o.Persistent)
	p.uint32Option(dmxpopt.KeyBufferSize, dmxpopt.ScopeChannel, o.BufferSize)
	p.boolOption(dmxpopt.KeyWALEnabled, dmxpopt.ScopeChannel, o.WALEnabled)
	p.boolOption(dmxpopt.KeySwapEnabled, dmxpopt.ScopeChannel, o.SwapEnabled)
	p.uint32Option(dmxpopt.KeyPriority, dmxpopt.ScopeChannel, o.Priority)
	p.uint32Option(dmxpopt.KeyTimeoutMs, dmxpopt.ScopeChannel, o.TimeoutMs)
	p.close()
}

func (p *printer) messageBinding(b *ast.ChannelBinding) {
	if b == nil {
		return
	}
	p.stringOption(dmxpopt.KeyChannel, dmxpopt.ScopeMessage, b.Channel)
	p.boolOption(dmxpopt.KeyPersistent, dmxpopt.ScopeMessage, b.Persistent)
	p.uint32Option(dmxpopt.KeyBufferSize, dmxpopt.ScopeMessage, b.BufferSize)
	p.boolOption(dmxpopt.KeyWALEnabled, dmxpopt.ScopeMessage, b.WALEnabled)
	p.boolOption(dmxpopt.KeySwapEnabled, dmxpopt.ScopeMessage, b.SwapEnabled)
	p.uint32Option(dmxpopt.KeyPriority, dmxpopt.ScopeMessage, b.Priority)
}

// settingName is the option name for key: the extension spelling in protoc
// output, the bare key on channel declarations.
func (p *printer) settingName(key dmxpopt.Key, scope dmxpopt.Scope) string {
	if scope == dmxpopt.ScopeChannel {
		return key.String()
	}
	return dmxpopt.ProtoName(key, scope)
}

func (p *printer) stringOption(key dmxpopt.Key, scope dmxpopt.Scope, v *string) {
	if v != nil {
		p.line("option %s = \"%s\";", p.settingName(key, scope), *v)
	}
}

func (p *printer) boolOption(key dmxpopt.Key, scope dmxpopt.Scope, v *bool) {
	if v != nil {
		p.line("option %s = %t;", p.settingName(key, scope), *v)
	}
}

func (p *printer) uint32Option(key dmxpopt.Key, scope dmxpopt.Scope, v *uint32) {
	if v != nil {
		p.line("option %s = %d;", p.settingName(key, scope), *v)
	}
}
