package resolve

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadProfile reads the optional alias/domain vocabulary from a YAML
// file. Resolution works without one; a configured path that cannot be
// read is still an error so typos surface.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("resolve: read profile %q: %w", path, err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("resolve: parse profile %q: %w", path, err)
	}
	return &p, nil
}
