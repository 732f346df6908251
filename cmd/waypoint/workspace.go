package main

import (
	"fmt"
	"path/filepath"
	"time"

	"waypoint/internal/artifact"
	"waypoint/internal/corpus"
	"waypoint/internal/feedback"
	"waypoint/internal/mining"
	"waypoint/internal/navgraph"
	"waypoint/internal/pages"
)

// workspace bundles the loaded artifacts a scoring command needs.
type workspace struct {
	registry *mining.Registry
	graph    *navgraph.Graph
	pages    *pages.Registry
	defs     []corpus.Definition
	stats    map[string]feedback.Stats
}

// loadWorkspace reads the last mine run's registry plus the graph, page
// registry, and folded feedback stats.
func loadWorkspace() (*workspace, error) {
	ws := &workspace{}

	var reg mining.Registry
	regPath := filepath.Join(cfg.ArtifactDir, artifact.RegistryFile)
	if err := artifact.Load(regPath, &reg); err != nil {
		return nil, fmt.Errorf("no mined registry (run `waypoint mine` first): %w", err)
	}
	ws.registry = &reg
	for _, entry := range reg.Entries {
		ws.defs = append(ws.defs, entry.Definitions...)
	}

	g, err := navgraph.Load(cfg.EdgesPath, navgraph.WithMaxDepth(cfg.GraphMaxDepth))
	if err != nil {
		return nil, err
	}
	ws.graph = g

	pr, err := pages.Load(cfg.PagesPath)
	if err != nil {
		return nil, err
	}
	ws.pages = pr

	ledger, err := feedback.OpenLedger(cfg.LedgerPath)
	if err != nil {
		return nil, err
	}
	ws.stats, err = ledger.SummarizeAll(time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return ws, nil
}
