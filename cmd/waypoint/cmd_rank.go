package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"waypoint/internal/display"
	"waypoint/internal/format"
	"waypoint/internal/navgraph"
	"waypoint/internal/rank"
)

var rankFlags struct {
	controls []string
	verbs    []string
	keywords []string
	limit    int
	jsonOut  bool
}

var rankCmd = &cobra.Command{
	Use:   "rank <target-page>",
	Short: "Rank base scenarios by how well they reach a target page",
	Long: `Scores every base-registry scenario against the target page: graph
reach from the scenario's inferred end node, control/verb/keyword
coverage against the requirement, and reuse popularity. Candidates
carry a case label — reuse (ends on target), extend (finite hops), or
explore (no known route).`,
	Args: cobra.ExactArgs(1),
	RunE: runRank,
}

func init() {
	f := rankCmd.Flags()
	f.StringSliceVar(&rankFlags.controls, "control", nil, "Required control key (repeatable)")
	f.StringSliceVar(&rankFlags.verbs, "verb", nil, "Required step verb (repeatable)")
	f.StringSliceVarP(&rankFlags.keywords, "keyword", "k", nil, "Acceptance-criteria keyword (repeatable)")
	f.IntVarP(&rankFlags.limit, "limit", "n", 0, "Max candidates to show (default from config)")
	f.BoolVar(&rankFlags.jsonOut, "json", false, "Emit JSON instead of a table")
}

func runRank(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	limit := rankFlags.limit
	if limit <= 0 {
		limit = cfg.RankLimit
	}
	cands := rank.Rank(rank.Input{
		Registry: ws.registry,
		Graph:    ws.graph,
		Pages:    ws.pages,
		Target:   args[0],
		Req: rank.Requirement{
			Controls: rankFlags.controls,
			Verbs:    rankFlags.verbs,
			Keywords: rankFlags.keywords,
		},
		Stats:     ws.stats,
		Weights:   cfg.RankWeights,
		MaxWeight: cfg.FeedbackMaxWeight,
		Limit:     limit,
	})

	out := cmd.OutOrStdout()
	if rankFlags.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(cands)
	}

	t := format.NewTable(format.ASCII)
	t.Header("Scenario", "Score", "Dist", "Case", "Reasons")
	t.LimitColumn(5, 60)
	for _, c := range cands {
		score := format.Score(c.Score)
		if c.Banned {
			score = "banned"
		}
		t.Row(
			fmt.Sprintf("%s (%s)", c.Name, c.ID),
			score,
			display.Distance(c.Distance, navgraph.Unreachable),
			display.CaseLabel(string(c.CaseLabel)),
			strings.Join(c.Reasons, "; "),
		)
	}
	fmt.Fprintln(out, t.String())
	return nil
}
