// Package config loads the optional waypoint.yaml. Every field has a
// default; a missing file means defaults across the board.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"waypoint/internal/rank"
	"waypoint/internal/resolve"
)

// DefaultPath is where the CLI looks when --config is not given.
const DefaultPath = "waypoint.yaml"

// Config is the full on-disk configuration.
type Config struct {
	// ArtifactDir receives the mining outputs.
	ArtifactDir string `yaml:"artifact_dir"`
	// LedgerPath is the NDJSON feedback log.
	LedgerPath string `yaml:"ledger_path"`
	// StorePath is the run-history SQLite database.
	StorePath string `yaml:"store_path"`
	// EdgesPath is the navigation edge list.
	EdgesPath string `yaml:"edges_path"`
	// PagesPath is the page/control registry.
	PagesPath string `yaml:"pages_path"`
	// ProfilePath is the optional alias/domain vocabulary.
	ProfilePath string `yaml:"profile_path"`

	// InvocationPatterns overrides the built-in composite recognizers.
	InvocationPatterns []string `yaml:"invocation_patterns,omitempty"`
	// PatternMinCount prunes step patterns seen fewer times.
	PatternMinCount int `yaml:"pattern_min_count"`
	// GraphMaxDepth bounds BFS traversal.
	GraphMaxDepth int `yaml:"graph_max_depth"`
	// FeedbackMaxWeight caps the feedback boost contribution.
	FeedbackMaxWeight float64 `yaml:"feedback_max_weight"`
	// RankLimit truncates ranked output.
	RankLimit int `yaml:"rank_limit"`

	ResolveWeights *resolve.Weights `yaml:"resolve_weights,omitempty"`
	RankWeights    *rank.Weights    `yaml:"rank_weights,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ArtifactDir: ".waypoint/artifacts",
		LedgerPath:  ".waypoint/feedback.ndjson",
		StorePath:   ".waypoint/waypoint.db",
		EdgesPath:   "navigation.yaml",
		PagesPath:   "pages.yaml",
	}
}

// Load reads path, or returns defaults when path is empty or the default
// file does not exist. An explicit path that cannot be read is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}
