package parser

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jptrs93/dmxproto/internal/ast"
	"github.com/jptrs93/dmxproto/internal/dmxpopt"
)

var (
	headerRe  = regexp.MustCompile(`^(message|enum|service|oneof|extend)\s+([A-Za-z_][\w.]*)\s*\{$`)
	rpcRe     = regexp.MustCompile(`^rpc\s+([A-Za-z_]\w*)\s*\(\s*(stream\s+)?(\.?[A-Za-z_][\w.]*)\s*\)\s*returns\s*\(\s*(stream\s+)?(\.?[A-Za-z_][\w.]*)\s*\)\s*(;|\{)?\s*(//.*)?$`)
	channelRe = regexp.MustCompile(`^channel\s+([A-Za-z_][\w.-]*)\s*\(\s*(\.?[A-Za-z_][\w.]*)\s*\)\s*([A-Za-z_]\w*)?\s*(;|\{)$`)
)

type Parser struct {
	Loader Loader
	Logger logrus.FieldLogger
}

// Parse loads and parses every path. It stops at the first failure; no
// partial result is returned.
func (p *Parser) Parse(ctx context.Context, paths []string) ([]*ast.File, error) {
	loader := p.Loader
	if loader == nil {
		loader = OSLoader()
	}
	logger := p.Logger
	if logger == nil {
		logger = discardLogger()
	}
	var result []*ast.File
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := loader.Load(path)
		if err != nil {
			return nil, err
		}
		file, err := parse(string(content), logger.WithField("file", path))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		result = append(result, file)
	}
	return result, nil
}

// ParseString parses one schema held in memory.
func ParseString(src string) (*ast.File, error) {
	return parse(src, discardLogger())
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type parser struct {
	lines  []line
	pos    int
	b      *ast.Builder
	logger logrus.FieldLogger
}

func parse(src string, logger logrus.FieldLogger) (*ast.File, error) {
	p := &parser{
		lines:  splitStatements(src),
		b:      ast.NewBuilder(),
		logger: logger,
	}
	if err := p.parseFile(); err != nil {
		return nil, err
	}
	return p.b.Build(), nil
}

func (p *parser) skip(ln line, reason string) {
	p.logger.WithField("line", ln.num).Debugf("skipping %s: %s", reason, ln.text)
}

func (p *parser) parseFile() error {
	for ; p.pos < len(p.lines); p.pos++ {
		ln := p.lines[p.pos]
		var err error
		switch text := ln.text; {
		case hasKeyword(text, "syntax"):
			if syntax, ok := extractLiteral(text, "syntax"); ok && syntax != "" {
				p.b.SetSyntax(syntax)
			}
		case hasKeyword(text, "package"):
			pkg := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(text, "package"), ";"))
			if pkg != "" {
				p.b.SetPackage(pkg)
			}
		case hasKeyword(text, "import"):
			p.parseImport(ln)
		case hasKeyword(text, "option"):
			if opt, ok := parseOption(text); ok {
				p.b.AddFileOption(opt)
			} else {
				p.skip(ln, "malformed file option")
			}
		case hasKeyword(text, "channel"):
			err = p.parseChannel(ln)
		default:
			kind, name, ok := header(text)
			switch {
			case !ok:
				p.skip(ln, "unrecognized top-level statement")
			case kind == "message":
				err = p.parseMessage(name)
			case kind == "service":
				err = p.parseService(name)
			case kind == "enum":
				err = p.parseEnum(name)
			case kind == "extend":
				err = p.parseExtend(name)
			default:
				err = p.skipBlock()
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func header(s string) (kind, name string, ok bool) {
	m := headerRe.FindStringSubmatch(s)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// body calls fn for every statement between the header at p.pos and its
// closing brace. On return p.pos is at the closing brace. fn may consume
// nested blocks by advancing p.pos itself.
func (p *parser) body(fn func(ln line) error) error {
	head := p.lines[p.pos]
	for p.pos++; p.pos < len(p.lines); p.pos++ {
		ln := p.lines[p.pos]
		if ln.text == "}" {
			return nil
		}
		if err := fn(ln); err != nil {
			return err
		}
	}
	return &SyntaxError{Line: head.num, Text: head.text, Err: ErrUnterminatedBlock}
}

// skipBlock consumes a block whose contents are not interpreted.
func (p *parser) skipBlock() error {
	p.skip(p.lines[p.pos], "unsupported block")
	return p.body(func(ln line) error {
		if strings.HasSuffix(ln.text, "{") {
			return p.skipBlock()
		}
		return nil
	})
}

func (p *parser) parseImport(ln line) {
	rest := strings.TrimSpace(strings.TrimPrefix(ln.text, "import"))
	rest = strings.TrimPrefix(rest, "public ")
	rest = strings.TrimPrefix(rest, "weak ")
	path := unquote(cutStatement(rest))
	if path == "" {
		p.skip(ln, "empty import")
		return
	}
	p.b.AddImport(path)
}

func (p *parser) parseMessage(name string) error {
	p.b.StartMessage(name)
	if err := p.body(p.messageStatement); err != nil {
		return err
	}
	p.b.EndMessage()
	return nil
}

func (p *parser) messageStatement(ln line) error {
	text := ln.text
	switch {
	case hasKeyword(text, "option"):
		p.messageOption(ln)
		return nil
	case isFieldLine(text):
		field, err := parseField(ln)
		if err != nil {
			return err
		}
		p.b.AddField(field)
		return nil
	}
	kind, name, ok := header(text)
	switch {
	case ok && kind == "message":
		return p.parseMessage(name)
	case ok && kind == "enum":
		return p.parseEnum(name)
	case ok && kind == "oneof":
		return p.parseOneof(name)
	case ok && kind == "extend":
		return p.parseExtend(name)
	case strings.HasSuffix(text, "{"):
		return p.skipBlock()
	}
	p.skip(ln, "unrecognized message statement")
	return nil
}

func (p *parser) messageOption(ln line) {
	opt, ok := parseOption(ln.text)
	if !ok {
		p.skip(ln, "malformed option")
		return
	}
	p.b.AddMessageOption(opt)
	if set, ok := p.setting(ln, opt, dmxpopt.ScopeMessage); ok {
		applyMessageSetting(p.b.MessageChannel(), set)
	}
}

// setting decodes a DMXP option valid for scope. Anything else is a soft
// omission.
func (p *parser) setting(ln line, opt ast.Option, scope dmxpopt.Scope) (setting, bool) {
	set, ok := decodeSetting(ln.text, opt)
	if !ok {
		if _, known := dmxpopt.Lookup(opt.Name); known {
			p.skip(ln, "option value of the wrong type")
		}
		return setting{}, false
	}
	if !set.spec.Allows(scope) {
		p.skip(ln, "option not valid here")
		return setting{}, false
	}
	return set, true
}

// parseOneof adds the oneof's fields to the enclosing message.
func (p *parser) parseOneof(name string) error {
	return p.body(func(ln line) error {
		switch {
		case isFieldLine(ln.text):
			field, err := parseField(ln)
			if err != nil {
				return err
			}
			field.Oneof = name
			p.b.AddField(field)
		case strings.HasSuffix(ln.text, "{"):
			return p.skipBlock()
		default:
			p.skip(ln, "unrecognized oneof statement")
		}
		return nil
	})
}

func (p *parser) parseEnum(name string) error {
	p.b.StartEnum(name)
	err := p.body(func(ln line) error {
		text := ln.text
		switch {
		case hasKeyword(text, "option"):
			if opt, ok := parseOption(text); ok {
				p.b.AddEnumOption(opt)
			}
		case strings.Contains(text, "="):
			value, err := parseEnumValue(ln)
			if err != nil {
				return err
			}
			p.b.AddEnumValue(value)
		case strings.HasSuffix(text, "{"):
			return p.skipBlock()
		default:
			p.skip(ln, "unrecognized enum statement")
		}
		return nil
	})
	if err != nil {
		return err
	}
	p.b.EndEnum()
	return nil
}

func parseEnumValue(ln line) (ast.EnumValue, error) {
	name, rhs, _ := strings.Cut(ln.text, "=")
	name = strings.TrimSpace(name)
	rhs = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rhs), ";"))
	var opts []ast.Option
	if idx := strings.Index(rhs, "["); idx != -1 {
		opts = parseInlineOptions(tokenizeField(rhs[idx+1:]))
		rhs = strings.TrimSpace(rhs[:idx])
	}
	number, err := strconv.ParseInt(rhs, 10, 32)
	if err != nil || name == "" {
		return ast.EnumValue{}, &SyntaxError{
			Line:   ln.num,
			Text:   ln.text,
			Err:    ErrMalformedEnumValue,
			Detail: fmt.Sprintf("invalid number %q", rhs),
		}
	}
	return ast.EnumValue{Name: name, Number: int32(number), Options: opts}, nil
}

func (p *parser) parseService(name string) error {
	p.b.StartService(name)
	err := p.body(func(ln line) error {
		text := ln.text
		switch {
		case hasKeyword(text, "option"):
			opt, ok := parseOption(text)
			if !ok {
				p.skip(ln, "malformed option")
				return nil
			}
			p.b.AddServiceOption(opt)
			if set, ok := p.setting(ln, opt, dmxpopt.ScopeService); ok {
				applyServiceSetting(p.b.ServiceChannel(), set)
			}
		case hasKeyword(text, "rpc"):
			return p.parseMethod(ln)
		case strings.HasSuffix(text, "{"):
			return p.skipBlock()
		default:
			p.skip(ln, "unrecognized service statement")
		}
		return nil
	})
	if err != nil {
		return err
	}
	p.b.EndService()
	return nil
}

// parseMethod reads "rpc Name(In) returns (Out)" followed by ';', an option
// body, or nothing.
func (p *parser) parseMethod(ln line) error {
	m := rpcRe.FindStringSubmatch(ln.text)
	if m == nil {
		return &SyntaxError{
			Line:   ln.num,
			Text:   ln.text,
			Err:    ErrMalformedRPC,
			Detail: "expected rpc <Name>(<Input>) returns (<Output>)",
		}
	}
	p.b.AddMethod(ast.Method{
		Name:            m[1],
		Input:           strings.TrimPrefix(m[3], "."),
		Output:          strings.TrimPrefix(m[5], "."),
		ClientStreaming: m[2] != "",
		ServerStreaming: m[4] != "",
	})
	if m[6] != "{" {
		return nil
	}
	return p.body(func(ln line) error {
		switch {
		case hasKeyword(ln.text, "option"):
			opt, ok := parseOption(ln.text)
			if !ok {
				p.skip(ln, "malformed option")
				return nil
			}
			p.b.AddMethodOption(opt)
			if set, ok := p.setting(ln, opt, dmxpopt.ScopeMethod); ok {
				applyMethodSetting(p.b.MethodChannel(), set)
			}
		case strings.HasSuffix(ln.text, "{"):
			return p.skipBlock()
		default:
			p.skip(ln, "unrecognized rpc statement")
		}
		return nil
	})
}

// parseExtend records each field of an extend block as a file-level
// extension of extendee.
func (p *parser) parseExtend(extendee string) error {
	return p.body(func(ln line) error {
		switch {
		case isFieldLine(ln.text):
			field, err := parseField(ln)
			if err != nil {
				return err
			}
			p.b.AddExtension(ast.Extension{
				Name:     field.Name,
				Extendee: extendee,
				Type:     field.Type,
				Number:   field.Number,
				Label:    field.Label,
				Options:  field.Options,
			})
		case strings.HasSuffix(ln.text, "{"):
			return p.skipBlock()
		default:
			p.skip(ln, "unrecognized extend statement")
		}
		return nil
	})
}

// parseChannel reads "channel <name> (<Message>) [direction]" followed by
// ';' or a body of option lines.
func (p *parser) parseChannel(ln line) error {
	m := channelRe.FindStringSubmatch(ln.text)
	if m == nil {
		return &SyntaxError{
			Line:   ln.num,
			Text:   ln.text,
			Err:    ErrMalformedChannel,
			Detail: "expected channel <name> (<MessageType>) [publish|subscribe|bidirectional]",
		}
	}
	ch := ast.Channel{Name: m[1], MessageType: strings.TrimPrefix(m[2], "."), Direction: ast.Bidirectional}
	if m[3] != "" {
		dir, ok := ast.ParseDirection(m[3])
		if !ok {
			return &SyntaxError{Line: ln.num, Text: ln.text, Err: ErrMalformedChannel, Detail: fmt.Sprintf("unknown direction %q", m[3])}
		}
		ch.Direction = dir
	}
	if m[4] == "{" {
		err := p.body(func(ln line) error {
			opt, ok := parseOption(ln.text)
			if !hasKeyword(ln.text, "option") || !ok {
				if strings.HasSuffix(ln.text, "{") {
					return p.skipBlock()
				}
				p.skip(ln, "unrecognized channel statement")
				return nil
			}
			if set, ok := p.setting(ln, opt, dmxpopt.ScopeChannel); ok {
				applyChannelSetting(&ch.Options, set)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	p.b.AddChannel(ch)
	return nil
}
