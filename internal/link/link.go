// Package link resolves the bare type references the parser leaves behind.
//
// The parser cannot tell a message reference from an enum reference, so it
// records both as KindMessage. Link compiles the file with protocompile and
// rewrites every reference that names an enum to KindEnum.
package link

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bufbuild/protocompile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/jptrs93/dmxproto/internal/ast"
	"github.com/jptrs93/dmxproto/internal/dmxpopt"
	protogen "github.com/jptrs93/dmxproto/internal/generate/proto"
)

// SchemaPath is the name the file being linked is compiled under.
const SchemaPath = "dmxp_schema.proto"

// Linker compiles schemas. Imports other than the standard protobuf files
// and dmxp/options.proto are read from Fs, relative to ImportPaths.
type Linker struct {
	Fs          afero.Fs
	ImportPaths []string
	Logger      logrus.FieldLogger
}

// Link returns a copy of file with enum references marked KindEnum. file
// itself is left untouched.
func (l Linker) Link(ctx context.Context, file *ast.File) (*ast.File, error) {
	logger := l.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	fs := l.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	source := protogen.Render(file, protogen.Protoc)
	resolver := &protocompile.SourceResolver{
		ImportPaths: l.ImportPaths,
		Accessor: func(path string) (io.ReadCloser, error) {
			switch {
			case path == SchemaPath:
				return io.NopCloser(bytes.NewReader(source)), nil
			case path == dmxpopt.ProtoPath || strings.HasSuffix(path, "/"+dmxpopt.ProtoPath):
				return io.NopCloser(strings.NewReader(dmxpopt.ProtoSource)), nil
			}
			return fs.Open(path)
		},
	}
	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(resolver),
	}
	files, err := compiler.Compile(ctx, SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("link schema: %w", err)
	}

	out := file.Clone()
	fd := files[0]
	n := markMessages(out.Messages, fd.Messages())
	for i := range out.Extensions {
		if xd := fd.Extensions().ByName(protoreflect.Name(out.Extensions[i].Name)); xd != nil {
			n += markField(&out.Extensions[i].Type, xd)
		}
	}
	logger.WithField("enums", n).Debug("Linked schema")
	return out, nil
}

func markMessages(messages []ast.Message, descs protoreflect.MessageDescriptors) int {
	n := 0
	for i := range messages {
		m := &messages[i]
		md := descs.ByName(protoreflect.Name(m.Name))
		if md == nil {
			continue
		}
		for j := range m.Fields {
			if fd := md.Fields().ByName(protoreflect.Name(m.Fields[j].Name)); fd != nil {
				n += markField(&m.Fields[j].Type, fd)
			}
		}
		n += markMessages(m.Messages, md.Messages())
	}
	return n
}

// markField rewrites t in place and reports how many references it turned
// into enum references.
func markField(t *ast.FieldType, fd protoreflect.FieldDescriptor) int {
	if fd.IsMap() && t.Kind == ast.KindMap && t.Value != nil {
		return markField(t.Value, fd.MapValue())
	}
	if t.Kind == ast.KindMessage && fd.Kind() == protoreflect.EnumKind {
		t.Kind = ast.KindEnum
		return 1
	}
	return 0
}
