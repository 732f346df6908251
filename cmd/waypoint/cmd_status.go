package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"waypoint/internal/format"
	"waypoint/internal/store"
)

var statusFlags struct {
	limit int
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent mining runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := store.Open(cfg.StorePath)
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.ListRuns(statusFlags.limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "no runs recorded (run `waypoint mine` first)")
			return nil
		}

		t := format.NewTable(format.ASCII)
		t.Header("Run", "Started", "Corpus", "Files", "Defs", "Base", "Patterns", "Ambiguous")
		for _, r := range runs {
			t.Row(r.ID, r.StartedAt.Format("2006-01-02 15:04"), r.CorpusRoot,
				r.FilesParsed, r.Definitions, r.BaseEntries, r.Patterns, r.Ambiguous)
		}
		fmt.Fprintln(out, t.String())
		return nil
	},
}

func init() {
	statusCmd.Flags().IntVarP(&statusFlags.limit, "limit", "n", 10, "Max runs to show (0 = all)")
}
