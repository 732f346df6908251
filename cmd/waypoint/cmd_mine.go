package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"waypoint/internal/artifact"
	"waypoint/internal/corpus"
	"waypoint/internal/format"
	"waypoint/internal/logging"
	"waypoint/internal/mining"
	"waypoint/internal/store"
)

var mineFlags struct {
	artifactDir string
	minCount    int
	report      bool
	noStore     bool
}

var mineCmd = &cobra.Command{
	Use:   "mine <corpus-dir>",
	Short: "Mine a spec corpus into the base-scenario registry and step-pattern catalog",
	Long: `Scans every specification file under the corpus directory, resolves
composite invocations into a call graph, deduplicates definitions, and
promotes referenced scenarios into the base registry. Artifacts are
written atomically to the artifact directory; a previous run's artifact
is never partially overwritten.

Malformed files are skipped with a diagnostic — a single bad file never
aborts the run.`,
	Args: cobra.ExactArgs(1),
	RunE: runMine,
}

func init() {
	f := mineCmd.Flags()
	f.StringVarP(&mineFlags.artifactDir, "output", "o", "", "Artifact directory (default from config)")
	f.IntVar(&mineFlags.minCount, "min-pattern-count", 0, "Prune step patterns seen fewer times (default from config)")
	f.BoolVar(&mineFlags.report, "report", false, "Write a Markdown mining report alongside the JSON artifacts")
	f.BoolVar(&mineFlags.noStore, "no-store", false, "Skip recording the run in the history store")
}

// mineDiagnostics is the never-reused / skipped-file artifact.
type mineDiagnostics struct {
	SchemaVersion int                  `json:"schema_version"`
	GeneratedAt   time.Time            `json:"generated_at"`
	SkippedFiles  []corpus.Diagnostic  `json:"skipped_files,omitempty"`
	NeverReused   []mining.NeverReused `json:"never_reused,omitempty"`
}

func runMine(cmd *cobra.Command, args []string) error {
	log := logging.New("mine")
	started := time.Now().UTC()
	root := args[0]

	artifactDir := mineFlags.artifactDir
	if artifactDir == "" {
		artifactDir = cfg.ArtifactDir
	}

	scan, err := corpus.Scan(cmd.Context(), root, corpus.ScanOptions{})
	if err != nil {
		return err
	}
	log.Info("corpus scanned", "files", scan.FilesParsed, "definitions", len(scan.Definitions), "skipped", len(scan.Diagnostics))

	patterns, err := mining.CompilePatterns(cfg.InvocationPatterns)
	if err != nil {
		return err
	}

	defs := scan.Definitions
	callGraph := mining.Resolve(defs, patterns)
	registry := mining.BuildRegistry(defs)

	minCount := mineFlags.minCount
	if minCount <= 0 {
		minCount = cfg.PatternMinCount
	}
	catalog := mining.BuildCatalog(defs, patterns, mining.CatalogOptions{MinCount: minCount})

	diags := &mineDiagnostics{
		SchemaVersion: mining.SchemaVersion,
		GeneratedAt:   started,
		SkippedFiles:  scan.Diagnostics,
		NeverReused:   registry.NeverReused,
	}

	for name, v := range map[string]any{
		artifact.CallGraphFile:   callGraph,
		artifact.RegistryFile:    registry,
		artifact.CatalogFile:     catalog,
		artifact.DiagnosticsFile: diags,
	} {
		if err := artifact.Save(filepath.Join(artifactDir, name), v); err != nil {
			return err
		}
	}

	run := &store.Run{
		StartedAt:   started,
		FinishedAt:  time.Now().UTC(),
		CorpusRoot:  root,
		FilesParsed: scan.FilesParsed,
		FilesFailed: len(scan.Diagnostics),
		Definitions: len(defs),
		BaseEntries: registry.BaseCount,
		NonBase:     registry.NonBaseCount,
		Patterns:    len(catalog.Patterns),
		Resolved:    callGraph.Resolved,
		Unresolved:  callGraph.Unresolved,
		Ambiguous:   callGraph.Ambiguous,
		ArtifactDir: artifactDir,
	}
	if !mineFlags.noStore {
		st, err := store.Open(cfg.StorePath)
		if err != nil {
			return err
		}
		defer st.Close()
		if _, err := st.SaveRun(run); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	t := format.NewTable(format.ASCII)
	t.Header("Metric", "Count")
	t.Row("Files parsed", scan.FilesParsed)
	t.Row("Files skipped", len(scan.Diagnostics))
	t.Row("Definitions", len(defs))
	t.Row("Base scenarios", registry.BaseCount)
	t.Row("Never reused", registry.NonBaseCount)
	t.Row("Step patterns", len(catalog.Patterns))
	t.Row("Invocations resolved", callGraph.Resolved)
	t.Row("Invocations unresolved", callGraph.Unresolved)
	t.Row("Invocations ambiguous", callGraph.Ambiguous)
	fmt.Fprintln(out, t.String())
	fmt.Fprintf(out, "Artifacts written to: %s\n", artifactDir)

	if mineFlags.report {
		mdPath := filepath.Join(artifactDir, "mine-report.md")
		if err := writeMiningReport(mdPath, run, registry, callGraph, diags); err != nil {
			return err
		}
		fmt.Fprintf(out, "Human-readable report: %s\n", mdPath)
	}
	return nil
}
