// Package cmd implements the dmxproto command line.
package cmd

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jptrs93/dmxproto/internal/config"

	// Targets register themselves on import.
	_ "github.com/jptrs93/dmxproto/internal/generate/descriptor"
	_ "github.com/jptrs93/dmxproto/internal/generate/go"
	_ "github.com/jptrs93/dmxproto/internal/generate/js"
	_ "github.com/jptrs93/dmxproto/internal/generate/proto"
	_ "github.com/jptrs93/dmxproto/internal/generate/rust"
)

var summaryColor = color.New(color.FgGreen, color.Bold)

// globalState is what every command shares. Tests build one over an
// in-memory filesystem and a fixed environment.
type globalState struct {
	ctx    context.Context
	fs     afero.Fs
	env    map[string]string
	stdout io.Writer
	logger *logrus.Logger
}

type rootCommand struct {
	gs         *globalState
	cmd        *cobra.Command
	configPath string
	verbose    bool
}

func newRootCommand(gs *globalState) *rootCommand {
	c := &rootCommand{gs: gs}
	c.cmd = &cobra.Command{
		Use:               "dmxproto",
		Short:             "generate pub/sub bindings from DMXP schemas",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
	}
	c.cmd.PersistentFlags().AddFlagSet(c.persistentFlagSet())
	c.cmd.SetOut(gs.stdout)
	c.cmd.AddCommand(getGenerateCmd(c), getParseCmd(c))
	return c
}

func (c *rootCommand) persistentFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.StringVarP(&c.configPath, "config", "c", "", "config file (default "+config.DefaultFile+" when present)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	return flags
}

func (c *rootCommand) persistentPreRunE(cmd *cobra.Command, _ []string) error {
	if c.verbose {
		c.gs.logger.SetLevel(logrus.DebugLevel)
	}
	return nil
}

// loadConfig consolidates defaults, the config file and the environment,
// then applies the logging level unless --verbose already raised it.
func (c *rootCommand) loadConfig() (config.Config, error) {
	path := c.configPath
	if path == "" {
		if ok, _ := afero.Exists(c.gs.fs, config.DefaultFile); ok {
			path = config.DefaultFile
		}
	}
	cfg, err := config.Load(c.gs.fs, path, c.gs.env)
	if err != nil {
		return cfg, err
	}
	if !c.verbose {
		level, _ := cfg.Level()
		c.gs.logger.SetLevel(level)
	}
	if path != "" {
		c.gs.logger.WithField("path", path).Debug("Loaded config file")
	}
	return cfg, nil
}

func buildEnvMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, _ := strings.Cut(kv, "=")
		env[k] = v
	}
	return env
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger := &logrus.Logger{
		Out:       os.Stderr,
		Formatter: new(logrus.TextFormatter),
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.InfoLevel,
	}
	gs := &globalState{
		ctx:    ctx,
		fs:     afero.NewOsFs(),
		env:    buildEnvMap(os.Environ()),
		stdout: os.Stdout,
		logger: logger,
	}
	if err := newRootCommand(gs).cmd.ExecuteContext(ctx); err != nil {
		logger.Error(err)
		cancel()
		os.Exit(1)
	}
}
