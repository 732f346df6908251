package main

import (
	"fmt"
	"os"
	"strings"

	"waypoint/internal/format"
	"waypoint/internal/mining"
	"waypoint/internal/store"
)

// writeMiningReport renders a human-readable Markdown summary of one
// mine run next to the JSON artifacts.
func writeMiningReport(path string, run *store.Run, reg *mining.Registry, cg *mining.CallGraph, diags *mineDiagnostics) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Mining Report\n\n")
	fmt.Fprintf(&b, "- Corpus: `%s`\n", run.CorpusRoot)
	fmt.Fprintf(&b, "- Started: %s\n", run.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- Duration: %s\n\n", run.FinishedAt.Sub(run.StartedAt).Round(1e6))

	t := format.NewTable(format.Markdown)
	t.Header("Metric", "Count")
	t.Row("Files parsed", run.FilesParsed)
	t.Row("Files skipped", run.FilesFailed)
	t.Row("Definitions", run.Definitions)
	t.Row("Base scenarios", run.BaseEntries)
	t.Row("Never reused", run.NonBase)
	t.Row("Step patterns", run.Patterns)
	b.WriteString(t.String())
	b.WriteString("\n\n## Call graph\n\n")

	ct := format.NewTable(format.Markdown)
	ct.Header("Resolution", "Count")
	ct.Row("Resolved", cg.Resolved)
	ct.Row("Unresolved", cg.Unresolved)
	ct.Row("Ambiguous", cg.Ambiguous)
	b.WriteString(ct.String())
	b.WriteString("\n")

	if cg.Ambiguous > 0 {
		b.WriteString("\n### Ambiguous invocations\n\n")
		at := format.NewTable(format.Markdown)
		at.Header("Caller", "Callee name", "Candidates")
		for _, inv := range cg.Invocations {
			if len(inv.Candidates) > 1 {
				at.Row(inv.CallerID, inv.CalleeName, strings.Join(inv.Candidates, ", "))
			}
		}
		b.WriteString(at.String())
		b.WriteString("\n")
	}

	if len(reg.NeverReused) > 0 {
		b.WriteString("\n## Never-reused definitions\n\n")
		nt := format.NewTable(format.Markdown)
		nt.Header("ID", "Name")
		for _, nr := range reg.NeverReused {
			nt.Row(nr.ID, nr.Name)
		}
		b.WriteString(nt.String())
		b.WriteString("\n")
	}

	if len(diags.SkippedFiles) > 0 {
		b.WriteString("\n## Skipped files\n\n")
		st := format.NewTable(format.Markdown)
		st.Header("File", "Reason")
		for _, d := range diags.SkippedFiles {
			st.Row(d.File, format.Truncate(d.Reason, 120))
		}
		b.WriteString(st.String())
		b.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write report %q: %w", path, err)
	}
	return nil
}
