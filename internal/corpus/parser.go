package corpus

import (
	"fmt"
	"strings"
)

// Step keywords recognized by the parser. "*" bullets and localized
// keywords are not supported.
var stepKeywords = []string{"Given", "When", "Then", "And", "But"}

// ParseFile parses one specification file into definitions. Files are
// parsed independently of each other; a structural error anywhere in the
// file fails the whole file so the scanner can skip it with a diagnostic.
func ParseFile(path string, data []byte) ([]Definition, error) {
	p := &fileParser{path: path}
	lines := strings.Split(string(data), "\n")
	for i, raw := range lines {
		if err := p.feed(i+1, raw); err != nil {
			return nil, fmt.Errorf("corpus: %s:%d: %w", path, i+1, err)
		}
	}
	if p.inDocString {
		return nil, fmt.Errorf("corpus: %s: unterminated doc-string", path)
	}
	if err := p.flush(); err != nil {
		return nil, fmt.Errorf("corpus: %s: %w", path, err)
	}
	return p.defs, nil
}

type fileParser struct {
	path string
	defs []Definition

	cur         *Definition
	pendingTags []string
	inExamples  bool
	inDocString bool
	docFence    string
	docLines    []string
}

func (p *fileParser) feed(line int, raw string) error {
	trimmed := strings.TrimSpace(raw)

	if p.inDocString {
		if trimmed == p.docFence {
			step := p.lastStep()
			step.DocString = strings.Join(p.docLines, "\n")
			p.inDocString = false
			p.docLines = nil
			return nil
		}
		p.docLines = append(p.docLines, strings.TrimRight(raw, " \t\r"))
		return nil
	}

	switch {
	case trimmed == "" || strings.HasPrefix(trimmed, "#"):
		return nil

	case strings.HasPrefix(trimmed, "@"):
		p.pendingTags = append(p.pendingTags, strings.Fields(trimmed)...)
		return nil

	case strings.HasPrefix(trimmed, "Feature:"):
		// Feature headers delimit files, nothing more. Tags attached to
		// the feature are not inherited by scenarios.
		p.pendingTags = nil
		return nil

	case strings.HasPrefix(trimmed, "Scenario Outline:"):
		return p.startDefinition(line, KindOutline, strings.TrimSpace(trimmed[len("Scenario Outline:"):]))

	case strings.HasPrefix(trimmed, "Scenario:"):
		return p.startDefinition(line, KindScenario, strings.TrimSpace(trimmed[len("Scenario:"):]))

	case strings.HasPrefix(trimmed, "Examples:"):
		if p.cur == nil || p.cur.Kind != KindOutline {
			return fmt.Errorf("examples block outside a scenario outline")
		}
		p.cur.Examples = &ExamplesTable{Tags: p.pendingTags}
		p.pendingTags = nil
		p.inExamples = true
		return nil

	case trimmed == `"""` || trimmed == "```":
		if p.lastStep() == nil {
			return fmt.Errorf("doc-string without a preceding step")
		}
		p.inDocString = true
		p.docFence = trimmed
		return nil

	case strings.HasPrefix(trimmed, "|"):
		return p.feedTableRow(trimmed)
	}

	for _, kw := range stepKeywords {
		if strings.HasPrefix(trimmed, kw+" ") {
			if p.cur == nil {
				return fmt.Errorf("step before any scenario header")
			}
			p.inExamples = false
			p.cur.Steps = append(p.cur.Steps, Step{
				Keyword: kw,
				Text:    strings.TrimSpace(trimmed[len(kw):]),
				Line:    line,
			})
			return nil
		}
	}

	// Unknown free text between blocks (descriptions) is tolerated.
	return nil
}

func (p *fileParser) startDefinition(line int, kind Kind, name string) error {
	if err := p.flush(); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("scenario header without a name")
	}
	p.cur = &Definition{
		ID:   DefID(p.path, line),
		File: p.path,
		Line: line,
		Name: name,
		Kind: kind,
		Tags: p.pendingTags,
	}
	p.pendingTags = nil
	p.inExamples = false
	return nil
}

func (p *fileParser) feedTableRow(trimmed string) error {
	cells := splitTableRow(trimmed)
	if p.inExamples {
		ex := p.cur.Examples
		if ex.Header == nil {
			ex.Header = cells
			return nil
		}
		if len(cells) != len(ex.Header) {
			return fmt.Errorf("examples row has %d cells, header has %d", len(cells), len(ex.Header))
		}
		ex.Rows = append(ex.Rows, cells)
		return nil
	}
	step := p.lastStep()
	if step == nil {
		return fmt.Errorf("data table without a preceding step")
	}
	step.Table = append(step.Table, cells)
	return nil
}

// flush finalizes the current definition, expanding outline names per
// examples row, and appends it to the output.
func (p *fileParser) flush() error {
	if p.cur == nil {
		return nil
	}
	d := p.cur
	p.cur = nil
	p.inExamples = false

	if d.Kind == KindOutline && d.Examples != nil {
		if d.Examples.Header == nil {
			return fmt.Errorf("scenario outline %q: examples block without a header row", d.Name)
		}
		for _, row := range d.Examples.Rows {
			bound := BindName(d.Name, d.Examples.Header, row)
			if bound != d.Name {
				d.NameExpansions = append(d.NameExpansions, bound)
			}
		}
	}
	p.defs = append(p.defs, *d)
	return nil
}

func (p *fileParser) lastStep() *Step {
	if p.cur == nil || len(p.cur.Steps) == 0 || p.inExamples {
		return nil
	}
	return &p.cur.Steps[len(p.cur.Steps)-1]
}

func splitTableRow(row string) []string {
	inner := strings.Trim(row, "|")
	parts := strings.Split(inner, "|")
	cells := make([]string, len(parts))
	for i, part := range parts {
		cells[i] = strings.TrimSpace(part)
	}
	return cells
}
