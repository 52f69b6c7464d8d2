package parser

import (
	"fmt"

	"github.com/spf13/afero"
)

// Loader returns the content of a schema file.
type Loader interface {
	Load(path string) ([]byte, error)
}

type FSLoader struct {
	Fs afero.Fs
}

func OSLoader() *FSLoader {
	return &FSLoader{Fs: afero.NewOsFs()}
}

func (l *FSLoader) Load(path string) ([]byte, error) {
	content, err := afero.ReadFile(l.Fs, path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return content, nil
}
