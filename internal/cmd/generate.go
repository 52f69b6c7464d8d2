package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jptrs93/dmxproto/internal/ast"
	"github.com/jptrs93/dmxproto/internal/config"
	"github.com/jptrs93/dmxproto/internal/generate"
	"github.com/jptrs93/dmxproto/internal/link"
	"github.com/jptrs93/dmxproto/internal/parser"
)

type cmdGenerate struct {
	root *rootCommand

	targets     []string
	out         string
	baseName    string
	goPackage   string
	link        bool
	importPaths []string
}

func getGenerateCmd(root *rootCommand) *cobra.Command {
	c := &cmdGenerate{root: root}
	cmd := &cobra.Command{
		Use:   "generate [flags] schema...",
		Short: "Generate code for one or more schemas",
		Long: `Generate code for one or more schemas.

Each schema is parsed, optionally linked, and rendered for every target.
Output files are named after the schema unless --base-name is given.

Targets: ` + strings.Join(generate.Targets(), ", "),
		Args: cobra.MinimumNArgs(1),
		RunE: c.run,
	}
	cmd.Flags().AddFlagSet(c.flagSet())
	return cmd
}

func (c *cmdGenerate) flagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.StringSliceVarP(&c.targets, "target", "t", nil, "targets to generate (default go,rust,js)")
	flags.StringVarP(&c.out, "out", "o", "", "output directory")
	flags.StringVar(&c.baseName, "base-name", "", "output file name without extension")
	flags.StringVar(&c.goPackage, "go-package", "", "package clause of Go output")
	flags.BoolVar(&c.link, "link", false, "resolve enum references with protocompile before generating")
	flags.StringSliceVarP(&c.importPaths, "import-path", "I", nil, "directories searched for imports when linking")
	return flags
}

// applyFlags overrides cfg with every flag set on the command line.
func (c *cmdGenerate) applyFlags(flags *pflag.FlagSet, cfg config.Config) config.Config {
	if flags.Changed("target") {
		cfg.Targets = c.targets
	}
	if flags.Changed("out") {
		cfg.Out = c.out
	}
	if flags.Changed("base-name") {
		cfg.BaseName = c.baseName
	}
	if flags.Changed("go-package") {
		cfg.GoPackage = c.goPackage
	}
	if flags.Changed("link") {
		cfg.Link = c.link
	}
	if flags.Changed("import-path") {
		cfg.ImportPaths = c.importPaths
	}
	return cfg
}

func (c *cmdGenerate) run(cmd *cobra.Command, args []string) error {
	gs := c.root.gs
	cfg, err := c.root.loadConfig()
	if err != nil {
		return err
	}
	cfg = c.applyFlags(cmd.Flags(), cfg)
	if cfg.BaseName != "" && len(args) > 1 {
		return fmt.Errorf("base name %q given for %d schemas", cfg.BaseName, len(args))
	}

	start := time.Now()
	p := parser.Parser{Loader: &parser.FSLoader{Fs: gs.fs}, Logger: gs.logger}
	files, err := p.Parse(cmd.Context(), args)
	if err != nil {
		return err
	}

	persister := &generate.FSPersister{Fs: gs.fs}
	written := 0
	for i, file := range files {
		if cfg.Link {
			l := link.Linker{Fs: gs.fs, ImportPaths: cfg.ImportPaths, Logger: gs.logger}
			if file, err = l.Link(cmd.Context(), file); err != nil {
				return fmt.Errorf("%s: %w", args[i], err)
			}
		}
		options := cfg.Options()
		if options.BaseName == "" {
			options.BaseName = schemaBaseName(args[i])
		}
		outputs, err := generate.Run(cmd.Context(), gs.logger, file, cfg.Targets, options)
		if err != nil {
			return fmt.Errorf("%s: %w", args[i], err)
		}
		if err := generate.WriteFiles(persister, cfg.Out, outputs); err != nil {
			return err
		}
		written += len(outputs)
		logSchema(c.root, args[i], file, len(outputs))
	}

	summaryColor.Fprintf(gs.stdout, "generated %d files for %d schemas in %s\n",
		written, len(files), time.Since(start).Round(time.Millisecond))
	return nil
}

func logSchema(root *rootCommand, path string, file *ast.File, outputs int) {
	root.gs.logger.WithFields(logrus.Fields{
		"schema":   path,
		"messages": len(file.Messages),
		"channels": len(file.Channels),
		"outputs":  outputs,
	}).Debug("Generated schema")
}

func schemaBaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
