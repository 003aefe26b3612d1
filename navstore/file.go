package navstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/katalvlaran/terranav/navgrid"
)

// WriteFile encodes g into path. The file is written next to its final
// name and renamed into place, so readers never see a partial grid.
func WriteFile(path string, g *navgrid.Grid, opts ...Option) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("navstore: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, g, opts...); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("navstore: close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("navstore: rename: %w", err)
	}
	return nil
}

// ReadFile decodes the grid stored at path.
func ReadFile(path string) (*navgrid.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("navstore: open: %w", err)
	}
	defer f.Close()
	g, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("navstore: read %s: %w", path, err)
	}
	return g, nil
}
