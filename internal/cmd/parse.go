package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jptrs93/dmxproto/internal/link"
	"github.com/jptrs93/dmxproto/internal/parser"
)

func getParseCmd(root *rootCommand) *cobra.Command {
	var linkFlag bool
	cmd := &cobra.Command{
		Use:   "parse [flags] schema",
		Short: "Print the declaration tree of a schema as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gs := root.gs
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			p := parser.Parser{Loader: &parser.FSLoader{Fs: gs.fs}, Logger: gs.logger}
			files, err := p.Parse(cmd.Context(), args)
			if err != nil {
				return err
			}
			file := files[0]
			if linkFlag || (!cmd.Flags().Changed("link") && cfg.Link) {
				l := link.Linker{Fs: gs.fs, ImportPaths: cfg.ImportPaths, Logger: gs.logger}
				if file, err = l.Link(cmd.Context(), file); err != nil {
					return err
				}
			}
			enc := yaml.NewEncoder(gs.stdout)
			enc.SetIndent(2)
			if err := enc.Encode(file); err != nil {
				return fmt.Errorf("encode tree: %w", err)
			}
			return enc.Close()
		},
	}
	cmd.Flags().BoolVar(&linkFlag, "link", false, "resolve enum references before printing")
	return cmd
}
