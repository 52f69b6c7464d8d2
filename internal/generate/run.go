package generate

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jptrs93/dmxproto/internal/ast"
)

// Run renders file for every target in parallel. Outputs come back in
// target order; the first failure cancels the rest.
func Run(ctx context.Context, logger logrus.FieldLogger, file *ast.File, targets []string, options Options) ([]OutputFile, error) {
	gens := make([]Generator, len(targets))
	for i, target := range targets {
		g, err := Lookup(target)
		if err != nil {
			return nil, err
		}
		gens[i] = g
	}
	options = options.WithDefaults(file)

	outputs := make([]OutputFile, len(gens))
	eg, ctx := errgroup.WithContext(ctx)
	for i, g := range gens {
		i, g := i, g
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			content, err := g.Generate(file, options)
			if err != nil {
				return fmt.Errorf("generate %s: %w", g.Name(), err)
			}
			outputs[i] = OutputFile{
				Target:  g.Name(),
				Path:    options.BaseName + g.Extension(),
				Content: content,
			}
			logger.WithFields(logrus.Fields{
				"target":  g.Name(),
				"path":    outputs[i].Path,
				"bytes":   len(content),
				"elapsed": time.Since(start),
			}).Debug("Generated target")
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}
