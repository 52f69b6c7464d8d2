// Package config holds the settings of a generation run. Values are layered:
// built-in defaults, then a YAML file, then DMXPROTO_* environment
// variables. Command-line flags are applied on top by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/mstoykov/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/jptrs93/dmxproto/internal/generate"
)

// DefaultFile is read when it exists and no other file is named.
const DefaultFile = "dmxproto.yaml"

type Config struct {
	Targets         []string `yaml:"targets" envconfig:"DMXPROTO_TARGETS"`
	Out             string   `yaml:"out" envconfig:"DMXPROTO_OUT"`
	BaseName        string   `yaml:"base_name" envconfig:"DMXPROTO_BASE_NAME"`
	GoPackage       string   `yaml:"go_package" envconfig:"DMXPROTO_GO_PACKAGE"`
	MessagingImport string   `yaml:"messaging_import" envconfig:"DMXPROTO_MESSAGING_IMPORT"`
	RustCrate       string   `yaml:"rust_crate" envconfig:"DMXPROTO_RUST_CRATE"`
	JSModule        string   `yaml:"js_module" envconfig:"DMXPROTO_JS_MODULE"`
	Link            bool     `yaml:"link" envconfig:"DMXPROTO_LINK"`
	ImportPaths     []string `yaml:"import_paths" envconfig:"DMXPROTO_IMPORT_PATHS"`
	LogLevel        string   `yaml:"log_level" envconfig:"DMXPROTO_LOG_LEVEL"`
}

func NewConfig() Config {
	return Config{
		Targets:  []string{"go", "rust", "js"},
		Out:      ".",
		LogLevel: logrus.InfoLevel.String(),
	}
}

// Load returns the consolidated configuration. path may be empty, in which
// case only defaults and env apply. env is looked up instead of the process
// environment so callers and tests control it.
func Load(fs afero.Fs, path string, env map[string]string) (Config, error) {
	result := NewConfig()
	if path != "" {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return result, fmt.Errorf("read config: %w", err)
		}
		if err := decodeYAML(data, &result); err != nil {
			return result, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := envconfig.Process("", &result, func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}); err != nil {
		return result, fmt.Errorf("read environment: %w", err)
	}
	if _, err := result.Level(); err != nil {
		return result, err
	}
	return result, nil
}

func decodeYAML(data []byte, out *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c Config) Level() (logrus.Level, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return level, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}

// Options converts the generator settings. Empty values are left for
// generate.Options.WithDefaults to fill in.
func (c Config) Options() generate.Options {
	return generate.Options{
		GoPackage:       c.GoPackage,
		MessagingImport: c.MessagingImport,
		RustCrate:       c.RustCrate,
		JSModule:        c.JSModule,
		BaseName:        c.BaseName,
	}
}
