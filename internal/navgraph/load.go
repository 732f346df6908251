package navgraph

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// edgeFile is the on-disk shape of a navigation edge list.
type edgeFile struct {
	Edges []Edge `yaml:"edges"`
}

// LoadEdges reads a YAML edge list. A missing file is a fatal
// precondition for graph-dependent operations, so the error carries the
// path.
func LoadEdges(path string) ([]Edge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("navgraph: read edge list %q: %w", path, err)
	}
	var f edgeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("navgraph: parse edge list %q: %w", path, err)
	}
	for i, e := range f.Edges {
		if e.From == "" || e.To == "" {
			return nil, fmt.Errorf("navgraph: edge list %q: edge %d missing from/to", path, i)
		}
	}
	return f.Edges, nil
}

// Load reads a YAML edge list and builds the graph in one step.
func Load(path string, opts ...Option) (*Graph, error) {
	edges, err := LoadEdges(path)
	if err != nil {
		return nil, err
	}
	return New(edges, opts...), nil
}
