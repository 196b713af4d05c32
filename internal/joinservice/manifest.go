package joinservice

import (
	"fmt"
	"os"

	"github.com/starford/vaultjoin/internal/codec"
)

// Manifest lists the notes a batch join should produce.
type Manifest struct {
	Joins []JoinRequest `json:"joins" yaml:"joins"`
}

// LoadManifest reads a YAML or JSON manifest, choosing the codec from the file
// extension.
func LoadManifest(path string) (*Manifest, error) {
	c, err := codec.ForPath(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	var m Manifest
	if err := c.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", path, err)
	}
	for i, j := range m.Joins {
		if j.Key == "" {
			return nil, fmt.Errorf("manifest: entry %d: key is required", i)
		}
	}
	return &m, nil
}
