// Package corpus parses plaintext behavior-specification files
// (Given/When/Then scenarios) into structured records for mining.
//
// The scanner is deliberately not a full Gherkin parser: no keyword
// internationalization, no Rule or Background blocks. It recognizes the
// subset the mining pipeline consumes and skips anything it cannot parse.
package corpus

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind discriminates plain scenarios from outlines.
type Kind string

const (
	KindScenario Kind = "scenario"
	KindOutline  Kind = "outline"
)

// Step is one keyword-prefixed line inside a scenario, with any attached
// data table or fenced doc-string.
type Step struct {
	Keyword   string     `json:"keyword"`
	Text      string     `json:"text"`
	Line      int        `json:"line"`
	Table     [][]string `json:"table,omitempty"`
	DocString string     `json:"doc_string,omitempty"`
}

// ExamplesTable holds an outline's Examples block.
type ExamplesTable struct {
	Tags   []string   `json:"tags,omitempty"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Definition is one parsed Scenario or Scenario Outline.
//
// ID is unique per run (file path + line). ReferencedBy starts empty and
// is populated by the resolver's second pass.
type Definition struct {
	ID             string         `json:"id"`
	File           string         `json:"file"`
	Line           int            `json:"line"`
	Name           string         `json:"name"`
	Kind           Kind           `json:"kind"`
	Tags           []string       `json:"tags,omitempty"`
	Steps          []Step         `json:"steps"`
	Examples       *ExamplesTable `json:"examples,omitempty"`
	NameExpansions []string       `json:"name_expansions,omitempty"`
	ReferencedBy   []string       `json:"referenced_by,omitempty"`
}

// DefID builds the run-unique definition ID from file and line.
func DefID(file string, line int) string {
	return fmt.Sprintf("%s:%d", file, line)
}

var placeholderRe = regexp.MustCompile(`<([^<>]+)>`)

// Placeholders returns the `<token>` names present in s, in order of
// first appearance.
func Placeholders(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range placeholderRe.FindAllStringSubmatch(s, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// BindName substitutes `<key>` tokens in name with values from one
// examples row. Keys absent from the header are left untouched.
func BindName(name string, header []string, row []string) string {
	bound := name
	for i, key := range header {
		if i >= len(row) {
			break
		}
		bound = strings.ReplaceAll(bound, "<"+key+">", row[i])
	}
	return bound
}

// ContentKey returns the dedup key for a definition: kind, steps, and
// examples — everything except identity and callers. Two definitions with
// equal keys are considered structurally identical.
func (d *Definition) ContentKey() string {
	var b strings.Builder
	b.WriteString(string(d.Kind))
	for _, s := range d.Steps {
		b.WriteString("\x1f")
		b.WriteString(s.Keyword)
		b.WriteString(" ")
		b.WriteString(s.Text)
		for _, row := range s.Table {
			b.WriteString("\x1e")
			b.WriteString(strings.Join(row, "\x1d"))
		}
		if s.DocString != "" {
			b.WriteString("\x1c")
			b.WriteString(s.DocString)
		}
	}
	if d.Examples != nil {
		b.WriteString("\x1fEX:")
		b.WriteString(strings.Join(d.Examples.Header, "\x1d"))
		for _, row := range d.Examples.Rows {
			b.WriteString("\x1e")
			b.WriteString(strings.Join(row, "\x1d"))
		}
	}
	return b.String()
}

// NormalizeName lowercases and collapses whitespace for name-keyed lookup.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
