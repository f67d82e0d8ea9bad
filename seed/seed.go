// Package seed embeds the bundled fraud-detection demo fixture set
// (edge_taxonomy.yaml, graph.yaml) so the CLI's seed command can write a
// working starter fixture directory without a network fetch.
package seed

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed edge_taxonomy.yaml graph.yaml
var files embed.FS

var fileNames = []string{"edge_taxonomy.yaml", "graph.yaml"}

// WriteTo writes the bundled fixture files into dir, creating it if
// necessary. It refuses to overwrite files that already exist unless
// force is true.
func WriteTo(dir string, force bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	var written []string
	for _, name := range fileNames {
		dest := filepath.Join(dir, name)
		if !force {
			if _, err := os.Stat(dest); err == nil {
				return nil, fmt.Errorf("%s already exists (use --force to overwrite)", dest)
			}
		}

		data, err := files.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("reading embedded %s: %w", name, err)
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", dest, err)
		}
		written = append(written, dest)
	}

	return written, nil
}
