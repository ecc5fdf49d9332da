package input

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tuannvm/fileaudit/internal/types"
)

// Manifest lists descriptors directly, for audits of files that are not on
// the local disk. JSON manifests parse as YAML.
type Manifest struct {
	Files []ManifestEntry `yaml:"files"`
}

// ManifestEntry is one file in a manifest. lastModified is accepted as an
// alias of last_modified; a missing time means the manifest's own
// modification time.
type ManifestEntry struct {
	Name              string     `yaml:"name"`
	Size              int64      `yaml:"size"`
	LastModified      *time.Time `yaml:"last_modified"`
	LastModifiedCamel *time.Time `yaml:"lastModified"`
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) ([]types.FileDescriptor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ParseManifest(data, info.ModTime())
}

// ParseManifest decodes manifest data. fallback fills missing timestamps
// and must be stable across loads for resume to reuse reports.
func ParseManifest(data []byte, fallback time.Time) ([]types.FileDescriptor, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if len(m.Files) == 0 {
		return nil, types.InvalidInput("manifest", "no files listed")
	}

	files := make([]types.FileDescriptor, 0, len(m.Files))
	for i, e := range m.Files {
		modified := fallback
		switch {
		case e.LastModified != nil:
			modified = *e.LastModified
		case e.LastModifiedCamel != nil:
			modified = *e.LastModifiedCamel
		}
		fd, err := types.NewFileDescriptor(e.Name, e.Size, modified)
		if err != nil {
			return nil, fmt.Errorf("manifest entry %d: %w", i, err)
		}
		files = append(files, fd)
	}
	return files, nil
}
