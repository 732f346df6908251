package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Empty path with no waypoint.yaml in cwd falls back to defaults.
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ArtifactDir != ".waypoint/artifacts" {
		t.Errorf("ArtifactDir = %q", cfg.ArtifactDir)
	}
	if cfg.EdgesPath != "navigation.yaml" || cfg.PagesPath != "pages.yaml" {
		t.Errorf("paths = %q, %q", cfg.EdgesPath, cfg.PagesPath)
	}
}

func TestLoadExplicitMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("explicit missing config must be an error")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waypoint.yaml")
	src := `artifact_dir: out/artifacts
ledger_path: out/feedback.ndjson
graph_max_depth: 5
rank_limit: 20
invocation_patterns:
  - '(?i)^runs "([^"]+)"'
resolve_weights:
  alias: 0.5
  lexical: 0.5
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ArtifactDir != "out/artifacts" {
		t.Errorf("ArtifactDir = %q", cfg.ArtifactDir)
	}
	if cfg.GraphMaxDepth != 5 || cfg.RankLimit != 20 {
		t.Errorf("depth/limit = %d/%d", cfg.GraphMaxDepth, cfg.RankLimit)
	}
	// Unset fields keep their defaults.
	if cfg.PagesPath != "pages.yaml" {
		t.Errorf("PagesPath = %q, want default", cfg.PagesPath)
	}
	if cfg.ResolveWeights == nil || cfg.ResolveWeights.Alias != 0.5 {
		t.Errorf("ResolveWeights = %+v", cfg.ResolveWeights)
	}
	if len(cfg.InvocationPatterns) != 1 {
		t.Errorf("InvocationPatterns = %v", cfg.InvocationPatterns)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(":\n  - ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
