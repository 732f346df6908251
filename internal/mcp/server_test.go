package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"waypoint/internal/artifact"
	"waypoint/internal/config"
	"waypoint/internal/corpus"
	"waypoint/internal/mining"
)

// testConfig builds a workspace on disk: one mined registry artifact, a
// navigation graph, and a page registry.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	reg := &mining.Registry{
		SchemaVersion: 1,
		BaseCount:     1,
		Entries: []mining.BaseEntry{{
			Name: "Open orders",
			Definitions: []corpus.Definition{{
				ID: "orders.feature:1", File: "orders.feature", Line: 1,
				Name: "Open orders", Kind: corpus.KindScenario,
				Steps: []corpus.Step{
					{Keyword: "When", Text: `the user clicks "orders-tile"`, Line: 2},
				},
				ReferencedBy: []string{"caller.feature:1"},
			}},
		}},
	}
	artifactDir := filepath.Join(dir, "artifacts")
	if err := artifact.Save(filepath.Join(artifactDir, artifact.RegistryFile), reg); err != nil {
		t.Fatal(err)
	}

	edgesPath := filepath.Join(dir, "navigation.yaml")
	edges := `edges:
  - from: login
    to: dashboard
`
	if err := os.WriteFile(edgesPath, []byte(edges), 0o644); err != nil {
		t.Fatal(err)
	}

	pagesPath := filepath.Join(dir, "pages.yaml")
	pagesSrc := `pages:
  - id: login
    title: Login
    controls:
      - key: submit-button
  - id: dashboard
    title: Dashboard
    controls:
      - key: orders-tile
`
	if err := os.WriteFile(pagesPath, []byte(pagesSrc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.ArtifactDir = artifactDir
	cfg.EdgesPath = edgesPath
	cfg.PagesPath = pagesPath
	cfg.LedgerPath = filepath.Join(dir, "feedback.ndjson")
	cfg.StorePath = filepath.Join(dir, "waypoint.db")
	return cfg
}

func TestNewServer(t *testing.T) {
	s := NewServer(testConfig(t))
	if s.MCPServer == nil {
		t.Fatal("MCPServer is nil")
	}
}

func TestLoadWorkspaceMissingRegistry(t *testing.T) {
	cfg := testConfig(t)
	cfg.ArtifactDir = t.TempDir()
	s := NewServer(cfg)
	_, err := s.loadWorkspace()
	if err == nil {
		t.Fatal("expected error without a mined registry")
	}
	if !strings.Contains(err.Error(), "waypoint mine") {
		t.Errorf("error should point at the mine command: %v", err)
	}
}

func TestHandleResolveTarget(t *testing.T) {
	s := NewServer(testConfig(t))
	_, out, err := s.handleResolveTarget(context.Background(), nil, resolveTargetInput{
		Text: "user opens the dashboard",
	})
	if err != nil {
		t.Fatalf("handleResolveTarget: %v", err)
	}
	if len(out.Candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(out.Candidates))
	}

	if _, _, err := s.handleResolveTarget(context.Background(), nil, resolveTargetInput{}); err == nil {
		t.Error("empty text must error")
	}
}

func TestHandleRankCandidates(t *testing.T) {
	s := NewServer(testConfig(t))
	_, out, err := s.handleRankCandidates(context.Background(), nil, rankCandidatesInput{
		Target: "dashboard",
	})
	if err != nil {
		t.Fatalf("handleRankCandidates: %v", err)
	}
	if len(out.Candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(out.Candidates))
	}
	c := out.Candidates[0]
	if c.ID != "orders.feature:1" || c.Distance != 0 {
		t.Errorf("candidate = %+v", c)
	}

	if _, _, err := s.handleRankCandidates(context.Background(), nil, rankCandidatesInput{}); err == nil {
		t.Error("empty target must error")
	}
}

func TestFeedbackRoundTripOverMCP(t *testing.T) {
	s := NewServer(testConfig(t))

	_, _, err := s.handleRecordFeedback(context.Background(), nil, recordFeedbackInput{
		Kind: "route", EntityID: "orders.feature:1", Verdict: "approve", User: "alice",
	})
	if err != nil {
		t.Fatalf("handleRecordFeedback: %v", err)
	}

	_, out, err := s.handleFeedbackSummary(context.Background(), nil, feedbackSummaryInput{Kind: "route"})
	if err != nil {
		t.Fatalf("handleFeedbackSummary: %v", err)
	}
	st, ok := out.Stats["route:orders.feature:1"]
	if !ok || st.Approvals != 1 {
		t.Errorf("stats = %+v", out.Stats)
	}

	if _, _, err := s.handleRecordFeedback(context.Background(), nil, recordFeedbackInput{
		Kind: "bogus", EntityID: "x", Verdict: "approve",
	}); err == nil {
		t.Error("invalid kind must error")
	}
}
