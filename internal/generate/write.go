package generate

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Persister stores one generated file.
type Persister interface {
	Persist(path string, content []byte) error
}

type FSPersister struct {
	Fs afero.Fs
}

func (p *FSPersister) Persist(path string, content []byte) error {
	if err := p.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", filepath.Dir(path), err)
	}
	if err := afero.WriteFile(p.Fs, path, content, 0o644); err != nil {
		return fmt.Errorf("write file %s: %w", path, err)
	}
	return nil
}

// WriteFiles persists every output under dir.
func WriteFiles(p Persister, dir string, outputs []OutputFile) error {
	for _, file := range outputs {
		if err := p.Persist(filepath.Join(dir, file.Path), file.Content); err != nil {
			return err
		}
	}
	return nil
}
