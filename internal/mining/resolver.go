// Package mining turns parsed scenario records into the reusable-library
// artifacts: the scenario call graph, the deduplicated base-scenario
// registry, and the step-pattern catalog.
package mining

import (
	"fmt"
	"regexp"
	"sort"

	"waypoint/internal/corpus"
)

// Built-in composite-invocation recognizers, tried in order. A step
// matching one of these invokes the named scenario rather than acting on
// the application directly.
var defaultPatternSources = []string{
	`(?i)^(?:the\s+)?user\s+(?:performs|calls|executes|runs|invokes)\s+"([^"]+)"`,
	`(?i)^(?:performs|calls|executes|runs|invokes)\s+(?:scenario\s+)?"([^"]+)"`,
}

// CompilePatterns compiles an ordered recognizer list. Each pattern must
// capture the callee name in its first group. An empty list yields the
// two built-in defaults.
func CompilePatterns(sources []string) ([]*regexp.Regexp, error) {
	if len(sources) == 0 {
		sources = defaultPatternSources
	}
	out := make([]*regexp.Regexp, 0, len(sources))
	for _, src := range sources {
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, fmt.Errorf("mining: invocation pattern %q: %w", src, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("mining: invocation pattern %q has no capture group", src)
		}
		out = append(out, re)
	}
	return out, nil
}

// MatchInvocation checks a step text against the ordered recognizer list
// and extracts the literal callee name. Pure: text in, token out.
func MatchInvocation(text string, patterns []*regexp.Regexp) (callee string, ok bool) {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// Invocation is one composite call site. Candidates holds every
// definition whose name (or outline name expansion) matches the literal
// callee text: zero means unresolved, one unambiguous, more than one
// ambiguous. Ambiguity is surfaced, never collapsed to a best guess.
type Invocation struct {
	CallerID   string   `json:"caller_id"`
	StepLine   int      `json:"step_line"`
	CalleeName string   `json:"callee_name"`
	Candidates []string `json:"candidates,omitempty"`
}

// CallGraph is the resolver output: every invocation with its resolution
// state, plus aggregate counts.
type CallGraph struct {
	SchemaVersion int          `json:"schema_version"`
	Invocations   []Invocation `json:"invocations"`
	Resolved      int          `json:"resolved"`
	Unresolved    int          `json:"unresolved"`
	Ambiguous     int          `json:"ambiguous"`
}

// Resolve runs the two-pass ledger build. Pass 1 indexes every definition
// by normalized name, including outline name expansions. Pass 2 matches
// each step against the recognizers and resolves callee names against the
// complete index — no speculative resolution against a partial one.
//
// As a side effect of pass 2, every candidate callee's ReferencedBy set
// is unioned with the caller id. defs is mutated in place.
func Resolve(defs []corpus.Definition, patterns []*regexp.Regexp) *CallGraph {
	byName := make(map[string][]int)
	addName := func(name string, idx int) {
		key := corpus.NormalizeName(name)
		for _, existing := range byName[key] {
			if existing == idx {
				return
			}
		}
		byName[key] = append(byName[key], idx)
	}
	for i := range defs {
		addName(defs[i].Name, i)
		for _, exp := range defs[i].NameExpansions {
			addName(exp, i)
		}
	}

	cg := &CallGraph{SchemaVersion: SchemaVersion}
	for i := range defs {
		caller := &defs[i]
		for _, step := range caller.Steps {
			callee, ok := MatchInvocation(step.Text, patterns)
			if !ok {
				continue
			}
			inv := Invocation{
				CallerID:   caller.ID,
				StepLine:   step.Line,
				CalleeName: callee,
			}
			for _, idx := range byName[corpus.NormalizeName(callee)] {
				if defs[idx].ID == caller.ID {
					continue // self-reference does not count as reuse
				}
				inv.Candidates = append(inv.Candidates, defs[idx].ID)
				addReference(&defs[idx], caller.ID)
			}
			sort.Strings(inv.Candidates)
			switch len(inv.Candidates) {
			case 0:
				cg.Unresolved++
			case 1:
				cg.Resolved++
			default:
				cg.Ambiguous++
			}
			cg.Invocations = append(cg.Invocations, inv)
		}
	}
	return cg
}

func addReference(d *corpus.Definition, callerID string) {
	for _, ref := range d.ReferencedBy {
		if ref == callerID {
			return
		}
	}
	d.ReferencedBy = append(d.ReferencedBy, callerID)
}
