package generate

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jptrs93/dmxproto/internal/ast"
)

var ErrUnknownTarget = errors.New("unknown target")

type OutputFile struct {
	Target  string
	Path    string
	Content []byte
}

type Options struct {
	// GoPackage is the package clause of Go output. Defaults to the
	// go_package file option, then the last segment of the schema package.
	GoPackage string
	// MessagingImport is the Go import path of the dmxp client package.
	MessagingImport string
	// RustCrate is the crate path Rust stubs call into.
	RustCrate string
	// JSModule is the module specifier JS stubs take the client type from.
	JSModule string
	// BaseName names output files, without directory or extension.
	BaseName string
}

const (
	DefaultMessagingImport = "github.com/dmxp/dmxp-go/dmxp"
	DefaultRustCrate       = "dmxp"
	DefaultJSModule        = "dmxp"
	DefaultBaseName        = "schema"
)

// WithDefaults fills every unset option for the given file.
func (o Options) WithDefaults(file *ast.File) Options {
	if o.GoPackage == "" {
		o.GoPackage = goPackageName(file)
	}
	if o.MessagingImport == "" {
		o.MessagingImport = DefaultMessagingImport
	}
	if o.RustCrate == "" {
		o.RustCrate = DefaultRustCrate
	}
	if o.JSModule == "" {
		o.JSModule = DefaultJSModule
	}
	if o.BaseName == "" {
		o.BaseName = DefaultBaseName
	}
	return o
}

func goPackageName(file *ast.File) string {
	for _, opt := range file.Options {
		if opt.Name != "go_package" || opt.Value.Text == "" {
			continue
		}
		path, name, ok := strings.Cut(opt.Value.Text, ";")
		if ok && name != "" {
			return name
		}
		return identifier(path[strings.LastIndex(path, "/")+1:])
	}
	if file.Package != "" {
		return identifier(file.Package[strings.LastIndex(file.Package, ".")+1:])
	}
	return DefaultBaseName
}

// Generator renders one target from a parsed file. Implementations only
// read the file, so one tree may be shared by generators running in
// parallel.
type Generator interface {
	Name() string
	// Extension is appended to Options.BaseName to name the output file.
	Extension() string
	Generate(file *ast.File, options Options) ([]byte, error)
}

var (
	mu       sync.RWMutex
	registry = map[string]Generator{}
)

// Register makes a generator available under its name. It panics when the
// name is taken.
func Register(g Generator) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := registry[g.Name()]; ok {
		panic(fmt.Sprintf("generate: target %q registered twice", g.Name()))
	}
	registry[g.Name()] = g
}

func Lookup(target string) (Generator, error) {
	mu.RLock()
	defer mu.RUnlock()
	g, ok := registry[target]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownTarget, target, strings.Join(targetsLocked(), ", "))
	}
	return g, nil
}

// Targets lists the registered target names in sorted order.
func Targets() []string {
	mu.RLock()
	defer mu.RUnlock()
	return targetsLocked()
}

func targetsLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Generate renders file for one registered target.
func Generate(file *ast.File, target string, options Options) ([]byte, error) {
	g, err := Lookup(target)
	if err != nil {
		return nil, err
	}
	return g.Generate(file, options.WithDefaults(file))
}
