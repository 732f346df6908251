package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"waypoint/internal/display"
	"waypoint/internal/format"
	"waypoint/internal/navgraph"
)

var graphFlags struct {
	edgesPath string
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Query the navigation graph",
	Long: `Loads the navigation edge list and answers distance, shortest-path,
and neighbor queries. Distances are directed hop counts; unreachable or
unknown endpoints report "unreachable".`,
}

var graphDistanceCmd = &cobra.Command{
	Use:   "distance <from> <to>",
	Short: "Minimum hop count between two pages",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph()
		if err != nil {
			return err
		}
		d := g.Distance(args[0], args[1])
		fmt.Fprintln(cmd.OutOrStdout(), display.Distance(d, navgraph.Unreachable))
		return nil
	},
}

var graphPathCmd = &cobra.Command{
	Use:   "path <from> <to>",
	Short: "One shortest path between two pages",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph()
		if err != nil {
			return err
		}
		p := g.ShortestPath(args[0], args[1])
		out := cmd.OutOrStdout()
		if p.Distance == navgraph.Unreachable {
			fmt.Fprintln(out, "unreachable")
			return nil
		}
		fmt.Fprintf(out, "%s  (%d hops)\n", strings.Join(p.Nodes, " -> "), p.Distance)
		return nil
	},
}

var graphNeighborsCmd = &cobra.Command{
	Use:   "neighbors <page>",
	Short: "Direct successors of a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph()
		if err != nil {
			return err
		}
		if !g.Knows(args[0]) {
			return fmt.Errorf("unknown page %q", args[0])
		}
		for _, n := range g.NeighborsOf(args[0]) {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
		return nil
	},
}

var graphShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List every edge",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		g, err := loadGraph()
		if err != nil {
			return err
		}
		t := format.NewTable(format.ASCII)
		t.Header("From", "To", "Label")
		for _, e := range g.Edges() {
			t.Row(e.From, e.To, e.Label)
		}
		t.Footer(fmt.Sprintf("%d nodes", g.Nodes()), fmt.Sprintf("%d edges", len(g.Edges())), "")
		fmt.Fprintln(cmd.OutOrStdout(), t.String())
		return nil
	},
}

func init() {
	graphCmd.PersistentFlags().StringVar(&graphFlags.edgesPath, "edges", "", "Edge list YAML (default from config)")
	graphCmd.AddCommand(graphDistanceCmd)
	graphCmd.AddCommand(graphPathCmd)
	graphCmd.AddCommand(graphNeighborsCmd)
	graphCmd.AddCommand(graphShowCmd)
}

func loadGraph() (*navgraph.Graph, error) {
	path := graphFlags.edgesPath
	if path == "" {
		path = cfg.EdgesPath
	}
	return navgraph.Load(path, navgraph.WithMaxDepth(cfg.GraphMaxDepth))
}
