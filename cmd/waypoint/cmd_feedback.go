package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"waypoint/internal/display"
	"waypoint/internal/feedback"
	"waypoint/internal/format"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Record and summarize approve/reject verdicts",
	Long: `The feedback ledger is an append-only NDJSON log. Verdicts are never
edited or deleted; every summary is recomputed from the full history.`,
}

var feedbackLogFlags struct {
	user string
	tags []string
	note string
}

var feedbackLogCmd = &cobra.Command{
	Use:   "log <kind> <entity-id> <verdict>",
	Short: "Append one verdict to the ledger",
	Long: `Appends a verdict for an entity. Kind is one of route, target, delta,
validation, plan; verdict is approve, reject, or note.

Example:
  waypoint feedback log route corpus/login.feature:12 approve --tag solid`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ledger, err := feedback.OpenLedger(cfg.LedgerPath)
		if err != nil {
			return err
		}
		ev := feedback.Event{
			User:     feedbackLogFlags.user,
			Kind:     feedback.EntityKind(args[0]),
			EntityID: args[1],
			Verdict:  feedback.Verdict(args[2]),
			Tags:     feedbackLogFlags.tags,
			Note:     feedbackLogFlags.note,
		}
		if err := ledger.Append(ev); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s\n",
			display.Verdict(args[2]), display.EntityKind(args[0]), args[1])
		return nil
	},
}

var feedbackSummaryFlags struct {
	kind string
}

var feedbackSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Fold the full ledger into per-entity stats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ledger, err := feedback.OpenLedger(cfg.LedgerPath)
		if err != nil {
			return err
		}
		stats, err := ledger.SummarizeAll(time.Now().UTC())
		if err != nil {
			return err
		}

		keys := make([]string, 0, len(stats))
		prefix := ""
		if feedbackSummaryFlags.kind != "" {
			prefix = feedbackSummaryFlags.kind + ":"
		}
		for key := range stats {
			if prefix != "" && !strings.HasPrefix(key, prefix) {
				continue
			}
			keys = append(keys, key)
		}
		sort.Strings(keys)

		out := cmd.OutOrStdout()
		if len(keys) == 0 {
			fmt.Fprintln(out, "no feedback recorded")
			return nil
		}

		t := format.NewTable(format.ASCII)
		t.Header("Entity", "Approve", "Reject", "Note", "Score", "Boost", "Blacklisted", "Top tags")
		for _, key := range keys {
			st := stats[key]
			bl := ""
			if st.Blacklisted {
				bl = "yes"
			}
			t.Row(key, st.Approvals, st.Rejections, st.Notes, st.Score,
				format.Score(st.Boost), bl, strings.Join(st.TopTags, ", "))
		}
		fmt.Fprintln(out, t.String())
		return nil
	},
}

func init() {
	lf := feedbackLogCmd.Flags()
	lf.StringVarP(&feedbackLogFlags.user, "user", "u", "", "Who issued the verdict")
	lf.StringSliceVarP(&feedbackLogFlags.tags, "tag", "t", nil, "Tag (repeatable)")
	lf.StringVarP(&feedbackLogFlags.note, "note", "m", "", "Free-text note")

	feedbackSummaryCmd.Flags().StringVar(&feedbackSummaryFlags.kind, "kind", "", "Filter to one entity kind")

	feedbackCmd.AddCommand(feedbackLogCmd)
	feedbackCmd.AddCommand(feedbackSummaryCmd)
}
