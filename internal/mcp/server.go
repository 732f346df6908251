// Package mcp serves the ranking pipeline over the Model Context
// Protocol so editor agents can resolve targets, rank candidates, and
// record verdicts without shelling out to the CLI.
package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"waypoint/internal/artifact"
	"waypoint/internal/config"
	"waypoint/internal/corpus"
	"waypoint/internal/feedback"
	"waypoint/internal/mining"
	"waypoint/internal/navgraph"
	"waypoint/internal/pages"
	"waypoint/internal/rank"
	"waypoint/internal/resolve"
)

// Server wraps the MCP SDK server around one workspace configuration.
type Server struct {
	MCPServer   *sdkmcp.Server
	ProjectRoot string

	cfg *config.Config
}

// NewServer creates an MCP server exposing the resolve/rank/feedback
// tools. It captures the current working directory as the project root
// so relative artifact and config paths resolve correctly.
func NewServer(cfg *config.Config) *Server {
	cwd, _ := os.Getwd()
	s := &Server{ProjectRoot: cwd, cfg: cfg}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "waypoint", Version: "dev"},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "resolve_target",
		Description: "Resolve which application page a requirement targets. Returns scored candidates with reasons.",
	}, s.handleResolveTarget)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "rank_candidates",
		Description: "Rank mined base scenarios by how well they reach a target page. Returns candidates with score, distance, case label, and reasons.",
	}, s.handleRankCandidates)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "record_feedback",
		Description: "Append an approve/reject/note verdict for an entity to the feedback ledger.",
	}, s.handleRecordFeedback)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "feedback_summary",
		Description: "Fold the full feedback history into per-entity stats (score, boost, blacklist).",
	}, s.handleFeedbackSummary)
}

// workspace is the set of artifacts a scoring tool call needs.
type workspace struct {
	registry *mining.Registry
	graph    *navgraph.Graph
	pages    *pages.Registry
	defs     []corpus.Definition
	stats    map[string]feedback.Stats
}

// loadWorkspace reads the mining artifacts, graph, page registry, and
// feedback stats fresh per call. Artifacts are small; reloading keeps
// tool calls consistent with whatever the last mine run wrote.
func (s *Server) loadWorkspace() (*workspace, error) {
	ws := &workspace{}

	var reg mining.Registry
	regPath := filepath.Join(s.cfg.ArtifactDir, artifact.RegistryFile)
	if err := artifact.Load(regPath, &reg); err != nil {
		return nil, fmt.Errorf("mcp: no mined registry (run `waypoint mine` first): %w", err)
	}
	ws.registry = &reg
	for _, entry := range reg.Entries {
		ws.defs = append(ws.defs, entry.Definitions...)
	}

	g, err := navgraph.Load(s.cfg.EdgesPath, navgraph.WithMaxDepth(s.cfg.GraphMaxDepth))
	if err != nil {
		return nil, err
	}
	ws.graph = g

	pr, err := pages.Load(s.cfg.PagesPath)
	if err != nil {
		return nil, err
	}
	ws.pages = pr

	ledger, err := feedback.OpenLedger(s.cfg.LedgerPath)
	if err != nil {
		return nil, err
	}
	stats, err := ledger.SummarizeAll(time.Now().UTC())
	if err != nil {
		return nil, err
	}
	ws.stats = stats
	return ws, nil
}

// --- Tool input/output types ---

type resolveTargetInput struct {
	Text     string   `json:"text" jsonschema:"requirement free text"`
	Keywords []string `json:"keywords,omitempty" jsonschema:"extra keywords"`
	Limit    int      `json:"limit,omitempty" jsonschema:"max candidates to return (default 10)"`
}

type resolveTargetOutput struct {
	Candidates []resolve.Candidate `json:"candidates"`
}

type rankCandidatesInput struct {
	Target   string   `json:"target" jsonschema:"resolved target page id"`
	Controls []string `json:"controls,omitempty" jsonschema:"required control keys"`
	Verbs    []string `json:"verbs,omitempty" jsonschema:"required step verbs"`
	Keywords []string `json:"keywords,omitempty" jsonschema:"acceptance-criteria keywords"`
	Limit    int      `json:"limit,omitempty" jsonschema:"max candidates to return (default 50)"`
}

type rankCandidatesOutput struct {
	Candidates []rank.Candidate `json:"candidates"`
}

type recordFeedbackInput struct {
	Kind     string   `json:"kind" jsonschema:"entity kind (route, target, delta, validation, plan)"`
	EntityID string   `json:"entity_id" jsonschema:"entity id the verdict applies to"`
	Verdict  string   `json:"verdict" jsonschema:"approve, reject, or note"`
	User     string   `json:"user,omitempty" jsonschema:"who issued the verdict"`
	Tags     []string `json:"tags,omitempty" jsonschema:"optional tags"`
	Note     string   `json:"note,omitempty" jsonschema:"optional free-text note"`
}

type recordFeedbackOutput struct {
	OK string `json:"ok"`
}

type feedbackSummaryInput struct {
	Kind     string `json:"kind,omitempty" jsonschema:"filter to one entity kind"`
	EntityID string `json:"entity_id,omitempty" jsonschema:"filter to one entity id (requires kind)"`
}

type feedbackSummaryOutput struct {
	Stats map[string]feedback.Stats `json:"stats"`
}

// --- Tool handlers ---

func (s *Server) handleResolveTarget(_ context.Context, _ *sdkmcp.CallToolRequest, input resolveTargetInput) (*sdkmcp.CallToolResult, resolveTargetOutput, error) {
	if input.Text == "" {
		return nil, resolveTargetOutput{}, fmt.Errorf("text is required")
	}
	ws, err := s.loadWorkspace()
	if err != nil {
		return nil, resolveTargetOutput{}, err
	}

	var profile *resolve.Profile
	if s.cfg.ProfilePath != "" {
		profile, err = resolve.LoadProfile(s.cfg.ProfilePath)
		if err != nil {
			return nil, resolveTargetOutput{}, err
		}
	}

	cands := resolve.ResolveTarget(resolve.Input{
		Text:     input.Text,
		Keywords: input.Keywords,
		Profile:  profile,
		Registry: ws.pages,
		Graph:    ws.graph,
		Lexicon:   resolve.BuildLexicon(ws.pages, ws.defs),
		Stats:     ws.stats,
		Weights:   s.cfg.ResolveWeights,
		MaxWeight: s.cfg.FeedbackMaxWeight,
	})
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}
	if len(cands) > limit {
		cands = cands[:limit]
	}
	return nil, resolveTargetOutput{Candidates: cands}, nil
}

func (s *Server) handleRankCandidates(_ context.Context, _ *sdkmcp.CallToolRequest, input rankCandidatesInput) (*sdkmcp.CallToolResult, rankCandidatesOutput, error) {
	if input.Target == "" {
		return nil, rankCandidatesOutput{}, fmt.Errorf("target is required")
	}
	ws, err := s.loadWorkspace()
	if err != nil {
		return nil, rankCandidatesOutput{}, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = s.cfg.RankLimit
	}
	cands := rank.Rank(rank.Input{
		Registry: ws.registry,
		Graph:    ws.graph,
		Pages:    ws.pages,
		Target:   input.Target,
		Req: rank.Requirement{
			Controls: input.Controls,
			Verbs:    input.Verbs,
			Keywords: input.Keywords,
		},
		Stats:     ws.stats,
		Weights:   s.cfg.RankWeights,
		MaxWeight: s.cfg.FeedbackMaxWeight,
		Limit:     limit,
	})
	return nil, rankCandidatesOutput{Candidates: cands}, nil
}

func (s *Server) handleRecordFeedback(_ context.Context, _ *sdkmcp.CallToolRequest, input recordFeedbackInput) (*sdkmcp.CallToolResult, recordFeedbackOutput, error) {
	ledger, err := feedback.OpenLedger(s.cfg.LedgerPath)
	if err != nil {
		return nil, recordFeedbackOutput{}, err
	}
	ev := feedback.Event{
		Timestamp: time.Now().UTC(),
		User:      input.User,
		Kind:      feedback.EntityKind(input.Kind),
		EntityID:  input.EntityID,
		Verdict:   feedback.Verdict(input.Verdict),
		Tags:      input.Tags,
		Note:      input.Note,
	}
	if err := ledger.Append(ev); err != nil {
		return nil, recordFeedbackOutput{}, err
	}
	return nil, recordFeedbackOutput{OK: "appended"}, nil
}

func (s *Server) handleFeedbackSummary(_ context.Context, _ *sdkmcp.CallToolRequest, input feedbackSummaryInput) (*sdkmcp.CallToolResult, feedbackSummaryOutput, error) {
	ledger, err := feedback.OpenLedger(s.cfg.LedgerPath)
	if err != nil {
		return nil, feedbackSummaryOutput{}, err
	}
	stats, err := ledger.SummarizeAll(time.Now().UTC())
	if err != nil {
		return nil, feedbackSummaryOutput{}, err
	}
	if input.Kind != "" {
		filtered := make(map[string]feedback.Stats)
		prefix := input.Kind + ":"
		for key, st := range stats {
			if input.EntityID != "" {
				if key == feedback.EntityKey(feedback.EntityKind(input.Kind), input.EntityID) {
					filtered[key] = st
				}
				continue
			}
			if len(key) > len(prefix) && key[:len(prefix)] == prefix {
				filtered[key] = st
			}
		}
		stats = filtered
	}
	return nil, feedbackSummaryOutput{Stats: stats}, nil
}
