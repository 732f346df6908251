package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"waypoint/internal/artifact"
	"waypoint/internal/mining"
)

// execute runs the root command in-process with a workspace-local config.
func execute(t *testing.T, configPath string, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append([]string{"--config", configPath}, args...))
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("waypoint %s: %v\n%s", strings.Join(args, " "), err, buf.String())
	}
	return buf.String()
}

func testWorkspace(t *testing.T) (configPath, corpusDir, artifactDir string) {
	t.Helper()
	dir := t.TempDir()
	corpusDir = filepath.Join(dir, "corpus")
	artifactDir = filepath.Join(dir, "artifacts")
	if err := os.MkdirAll(corpusDir, 0o755); err != nil {
		t.Fatal(err)
	}

	features := map[string]string{
		"base.feature": "Scenario: Shared login\n" +
			"  Given the user enters \"bob\" into \"username-field\"\n" +
			"  And the user clicks \"submit-button\"\n",
		"orders.feature": "Scenario: Open orders\n" +
			"  Given the user performs \"Shared login\"\n" +
			"  When the user clicks \"orders-tile\"\n",
	}
	for name, src := range features {
		if err := os.WriteFile(filepath.Join(corpusDir, name), []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	edgesPath := filepath.Join(dir, "navigation.yaml")
	if err := os.WriteFile(edgesPath, []byte("edges:\n  - from: login\n    to: dashboard\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	pagesPath := filepath.Join(dir, "pages.yaml")
	pagesSrc := `pages:
  - id: login
    controls:
      - key: username-field
      - key: submit-button
  - id: dashboard
    controls:
      - key: orders-tile
`
	if err := os.WriteFile(pagesPath, []byte(pagesSrc), 0o644); err != nil {
		t.Fatal(err)
	}

	configPath = filepath.Join(dir, "waypoint.yaml")
	cfgSrc := "artifact_dir: " + artifactDir + "\n" +
		"ledger_path: " + filepath.Join(dir, "feedback.ndjson") + "\n" +
		"store_path: " + filepath.Join(dir, "waypoint.db") + "\n" +
		"edges_path: " + edgesPath + "\n" +
		"pages_path: " + pagesPath + "\n"
	if err := os.WriteFile(configPath, []byte(cfgSrc), 0o644); err != nil {
		t.Fatal(err)
	}
	return configPath, corpusDir, artifactDir
}

func TestMineRankFeedbackFlow(t *testing.T) {
	configPath, corpusDir, artifactDir := testWorkspace(t)

	out := execute(t, configPath, "mine", corpusDir)
	if !strings.Contains(out, "Artifacts written to") {
		t.Errorf("mine output missing artifact note:\n%s", out)
	}

	var reg mining.Registry
	if err := artifact.Load(filepath.Join(artifactDir, artifact.RegistryFile), &reg); err != nil {
		t.Fatalf("registry artifact: %v", err)
	}
	if reg.BaseCount != 1 || reg.Entries[0].Name != "Shared login" {
		t.Errorf("registry = %+v", reg)
	}

	out = execute(t, configPath, "rank", "login")
	if !strings.Contains(out, "Shared login") {
		t.Errorf("rank output missing base scenario:\n%s", out)
	}
	if !strings.Contains(out, "Reuse as-is") {
		t.Errorf("rank output missing case label:\n%s", out)
	}

	execute(t, configPath, "feedback", "log", "route", "base.feature:1", "approve", "--tag", "solid")
	out = execute(t, configPath, "feedback", "summary")
	if !strings.Contains(out, "route:base.feature:1") || !strings.Contains(out, "solid") {
		t.Errorf("feedback summary:\n%s", out)
	}

	out = execute(t, configPath, "status")
	if !strings.Contains(out, corpusDir) {
		t.Errorf("status output missing run:\n%s", out)
	}
}

func TestGraphCommands(t *testing.T) {
	configPath, _, _ := testWorkspace(t)

	out := execute(t, configPath, "graph", "distance", "login", "dashboard")
	if strings.TrimSpace(out) != "1" {
		t.Errorf("distance = %q, want 1", strings.TrimSpace(out))
	}
	out = execute(t, configPath, "graph", "distance", "dashboard", "login")
	if strings.TrimSpace(out) != "unreachable" {
		t.Errorf("reverse distance = %q, want unreachable", strings.TrimSpace(out))
	}
	out = execute(t, configPath, "graph", "path", "login", "dashboard")
	if !strings.Contains(out, "login -> dashboard") {
		t.Errorf("path output:\n%s", out)
	}
}

func TestResolveCommand(t *testing.T) {
	configPath, corpusDir, _ := testWorkspace(t)
	execute(t, configPath, "mine", corpusDir)

	out := execute(t, configPath, "resolve", "the", "user", "checks", "open", "orders")
	if !strings.Contains(out, "dashboard") || !strings.Contains(out, "login") {
		t.Errorf("resolve output missing pages:\n%s", out)
	}
}
