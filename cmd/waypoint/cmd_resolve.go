package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"waypoint/internal/format"
	"waypoint/internal/resolve"
)

var resolveFlags struct {
	keywords []string
	limit    int
	jsonOut  bool
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <requirement text>",
	Short: "Resolve which application page a requirement targets",
	Long: `Scores every registered page against the requirement text and returns
candidates with confidence and reasons. Confidence never drops below
0.2 on missing evidence alone; only feedback blacklisting zeroes it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	f := resolveCmd.Flags()
	f.StringSliceVarP(&resolveFlags.keywords, "keyword", "k", nil, "Extra keywords (repeatable)")
	f.IntVarP(&resolveFlags.limit, "limit", "n", 10, "Max candidates to show")
	f.BoolVar(&resolveFlags.jsonOut, "json", false, "Emit JSON instead of a table")
}

func runResolve(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	var profile *resolve.Profile
	if cfg.ProfilePath != "" {
		profile, err = resolve.LoadProfile(cfg.ProfilePath)
		if err != nil {
			return err
		}
	}

	cands := resolve.ResolveTarget(resolve.Input{
		Text:     strings.Join(args, " "),
		Keywords: resolveFlags.keywords,
		Profile:  profile,
		Registry: ws.pages,
		Graph:    ws.graph,
		Lexicon:  resolve.BuildLexicon(ws.pages, ws.defs),
		Stats:     ws.stats,
		Weights:   cfg.ResolveWeights,
		MaxWeight: cfg.FeedbackMaxWeight,
	})
	if resolveFlags.limit > 0 && len(cands) > resolveFlags.limit {
		cands = cands[:resolveFlags.limit]
	}

	out := cmd.OutOrStdout()
	if resolveFlags.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(cands)
	}

	t := format.NewTable(format.ASCII)
	t.Header("Page", "Confidence", "Reasons")
	t.LimitColumn(3, 60)
	for _, c := range cands {
		conf := format.Score(c.Confidence)
		if c.Banned {
			conf = "banned"
		}
		t.Row(c.Page, conf, strings.Join(c.Reasons, "; "))
	}
	fmt.Fprintln(out, t.String())
	return nil
}
