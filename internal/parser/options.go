package parser

import (
	"strings"

	"github.com/jptrs93/dmxproto/internal/ast"
	"github.com/jptrs93/dmxproto/internal/dmxpopt"
)

// setting is one decoded DMXP option. Only the member matching spec.Type
// is set.
type setting struct {
	spec dmxpopt.Spec
	str  string
	flag bool
	num  uint32
}

// parseOption reads "option <name> = <value>;" into a generic option.
func parseOption(s string) (ast.Option, bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(s, "option"))
	eq := strings.Index(rest, "=")
	if eq == -1 {
		return ast.Option{}, false
	}
	name := strings.TrimSpace(rest[:eq])
	if name == "" {
		return ast.Option{}, false
	}
	raw := strings.TrimSpace(cutStatement(rest[eq+1:]))
	return ast.Option{Name: strings.Trim(name, "()"), Value: literalValue(raw)}, true
}

// decodeSetting maps an option statement to a typed DMXP setting. It
// reports false for unrecognized names and for literals that do not parse
// as the key's type.
func decodeSetting(s string, opt ast.Option) (setting, bool) {
	spec, ok := dmxpopt.Lookup(opt.Name)
	if !ok {
		return setting{}, false
	}
	out := setting{spec: spec}
	switch spec.Type {
	case dmxpopt.String:
		out.str, ok = extractLiteral(s, opt.Name)
	case dmxpopt.Bool:
		out.flag, ok = extractBool(s, opt.Name)
	case dmxpopt.Uint32:
		out.num, ok = extractUint32(s, opt.Name)
	}
	return out, ok
}

func applyMessageSetting(b *ast.ChannelBinding, set setting) {
	switch set.spec.Key {
	case dmxpopt.KeyChannel:
		b.Channel = ast.Ptr(set.str)
	case dmxpopt.KeyPersistent:
		b.Persistent = ast.Ptr(set.flag)
	case dmxpopt.KeyBufferSize:
		b.BufferSize = ast.Ptr(set.num)
	case dmxpopt.KeyWALEnabled:
		b.WALEnabled = ast.Ptr(set.flag)
	case dmxpopt.KeySwapEnabled:
		b.SwapEnabled = ast.Ptr(set.flag)
	case dmxpopt.KeyPriority:
		b.Priority = ast.Ptr(set.num)
	}
}

// applyServiceSetting appends channels rather than replacing them: a
// service may list several channels over several option lines.
func applyServiceSetting(b *ast.ServiceChannelBinding, set setting) {
	switch set.spec.Key {
	case dmxpopt.KeyChannels:
		b.Channels = append(b.Channels, set.str)
	case dmxpopt.KeyTimeoutMs:
		b.TimeoutMs = ast.Ptr(set.num)
	case dmxpopt.KeyRetryCount:
		b.RetryCount = ast.Ptr(set.num)
	}
}

func applyMethodSetting(b *ast.MethodChannelBinding, set setting) {
	switch set.spec.Key {
	case dmxpopt.KeyChannel:
		b.Channel = ast.Ptr(set.str)
	case dmxpopt.KeyTimeoutMs:
		b.TimeoutMs = ast.Ptr(set.num)
	case dmxpopt.KeyAsync:
		b.Async = ast.Ptr(set.flag)
	}
}

func applyChannelSetting(o *ast.ChannelOptions, set setting) {
	switch set.spec.Key {
	case dmxpopt.KeyPersistent:
		o.Persistent = ast.Ptr(set.flag)
	case dmxpopt.KeyBufferSize:
		o.BufferSize = ast.Ptr(set.num)
	case dmxpopt.KeyWALEnabled:
		o.WALEnabled = ast.Ptr(set.flag)
	case dmxpopt.KeySwapEnabled:
		o.SwapEnabled = ast.Ptr(set.flag)
	case dmxpopt.KeyPriority:
		o.Priority = ast.Ptr(set.num)
	case dmxpopt.KeyTimeoutMs:
		o.TimeoutMs = ast.Ptr(set.num)
	}
}
