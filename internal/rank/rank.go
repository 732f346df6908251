// Package rank orders base scenarios by how well they reach a resolved
// target page, blending graph distance with requirement coverage and
// accumulated human feedback.
package rank

import (
	"fmt"
	"sort"
	"strings"

	"waypoint/internal/corpus"
	"waypoint/internal/feedback"
	"waypoint/internal/mining"
	"waypoint/internal/navgraph"
	"waypoint/internal/pages"
	"waypoint/internal/resolve"
)

// CaseLabel tiers a candidate's relationship to the target: zero-hop,
// finite-hop, or unknown/unreachable.
type CaseLabel string

const (
	CaseReuse   CaseLabel = "reuse"
	CaseExtend  CaseLabel = "extend"
	CaseExplore CaseLabel = "explore"
)

// DefaultLimit truncates ranked output.
const DefaultLimit = 50

// Requirement is the new requirement's spec: controls it must bind,
// verbs it must perform, and acceptance-criteria keywords.
type Requirement struct {
	Controls []string `yaml:"controls,omitempty" json:"controls,omitempty"`
	Verbs    []string `yaml:"verbs,omitempty" json:"verbs,omitempty"`
	Keywords []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
}

// Weights for the ranking signals.
type Weights struct {
	Reach      float64 `yaml:"reach"`
	Bind       float64 `yaml:"bind"`
	Verbs      float64 `yaml:"verbs"`
	AC         float64 `yaml:"ac"`
	Popularity float64 `yaml:"popularity"`
}

// DefaultWeights per the ranking contract: reach dominates.
func DefaultWeights() Weights {
	return Weights{Reach: 0.45, Bind: 0.20, Verbs: 0.15, AC: 0.10, Popularity: 0.10}
}

// Candidate is one ranked scenario with its reason trail.
type Candidate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	File      string    `json:"file"`
	Score     float64   `json:"score"`
	Distance  int       `json:"distance"`
	EndNode   string    `json:"end_node,omitempty"`
	CaseLabel CaseLabel `json:"case"`
	Reasons   []string  `json:"reasons"`
	Banned    bool      `json:"banned,omitempty"`
}

// Input bundles everything ranking consumes. Stats and Weights are
// optional; missing pieces contribute neutral signals.
type Input struct {
	Registry *mining.Registry
	Graph    *navgraph.Graph
	Pages    *pages.Registry
	Target   string
	Req      Requirement
	Stats    map[string]feedback.Stats
	Weights  *Weights
	// MaxWeight caps the feedback boost; DefaultMaxWeight when <= 0.
	MaxWeight float64
	Limit     int
}

// InferEndNode returns the page owning the last control referenced by
// step order: each quoted literal is looked up as a control key and the
// last one that maps to a known page wins. Empty when nothing maps.
func InferEndNode(def *corpus.Definition, reg *pages.Registry) string {
	end := ""
	for _, step := range def.Steps {
		_, literals := mining.Templatize(step.Text)
		for _, lit := range literals {
			if pageID, ok := reg.PageForControl(lit); ok {
				end = pageID
			}
		}
	}
	return end
}

// Rank scores every base-registry definition against the target and
// requirement, applies feedback, and returns the top candidates sorted
// by descending score (id breaks ties).
func Rank(in Input) []Candidate {
	if in.Registry == nil || in.Pages == nil {
		return nil
	}
	w := DefaultWeights()
	if in.Weights != nil {
		w = *in.Weights
	}
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	targetKnown := in.Target != "" && in.Graph != nil && in.Graph.Knows(in.Target)

	var out []Candidate
	for ei := range in.Registry.Entries {
		entry := &in.Registry.Entries[ei]
		for di := range entry.Definitions {
			def := &entry.Definitions[di]
			out = append(out, scoreOne(def, entry.Name, in, w, targetKnown))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func scoreOne(def *corpus.Definition, name string, in Input, w Weights, targetKnown bool) Candidate {
	c := Candidate{
		ID:       def.ID,
		Name:     name,
		File:     def.File,
		Distance: navgraph.Unreachable,
	}

	c.EndNode = InferEndNode(def, in.Pages)
	if c.EndNode == "" {
		c.Reasons = append(c.Reasons, "end node unresolved: no step control maps to a known page")
	} else if in.Graph != nil {
		c.Distance = in.Graph.Distance(c.EndNode, in.Target)
	}

	var reach float64
	switch {
	case c.Distance == 0:
		reach = 1
		c.Reasons = append(c.Reasons, fmt.Sprintf("ends on target %s", in.Target))
	case c.Distance < navgraph.Unreachable:
		reach = 1 / float64(1+c.Distance)
		c.Reasons = append(c.Reasons, fmt.Sprintf("ends at %s, %d hops from target", c.EndNode, c.Distance))
	default:
		if c.EndNode != "" {
			c.Reasons = append(c.Reasons, fmt.Sprintf("ends at %s, target unreachable", c.EndNode))
		}
	}

	bind := controlCoverage(def, in.Req.Controls, in.Pages)
	if len(in.Req.Controls) > 0 {
		c.Reasons = append(c.Reasons, fmt.Sprintf("binds %.0f%% of required controls", bind*100))
	}
	verbs := verbCoverage(def, in.Req.Verbs)
	if len(in.Req.Verbs) > 0 {
		c.Reasons = append(c.Reasons, fmt.Sprintf("covers %.0f%% of required verbs", verbs*100))
	}
	ac := keywordOverlap(def, name, in.Req.Keywords)
	if len(in.Req.Keywords) > 0 {
		c.Reasons = append(c.Reasons, fmt.Sprintf("matches %.0f%% of acceptance keywords", ac*100))
	}
	pop := resolve.Squash(float64(len(def.ReferencedBy)))
	if len(def.ReferencedBy) > 0 {
		c.Reasons = append(c.Reasons, fmt.Sprintf("reused by %d caller(s)", len(def.ReferencedBy)))
	}

	c.Score = w.Reach*reach + w.Bind*bind + w.Verbs*verbs + w.AC*ac + w.Popularity*pop

	switch {
	case c.Distance == 0:
		c.CaseLabel = CaseReuse
	case targetKnown && c.Distance < navgraph.Unreachable:
		c.CaseLabel = CaseExtend
	default:
		c.CaseLabel = CaseExplore
	}

	if in.Stats != nil {
		key := feedback.EntityKey(feedback.KindRoute, def.ID)
		if st, ok := in.Stats[key]; ok {
			score, banned := feedback.Apply(c.Score, st, in.MaxWeight)
			if banned {
				c.Score = 0
				c.Banned = true
				c.Reasons = append(c.Reasons, "blacklisted by recent feedback")
			} else if score != c.Score {
				c.Reasons = append(c.Reasons, fmt.Sprintf("feedback boost %+.2f", score-c.Score))
				c.Score = score
			}
		}
	}
	return c
}

// controlCoverage is the fraction of required controls the scenario
// binds: a control counts when any step's quoted literal resolves to it.
func controlCoverage(def *corpus.Definition, required []string, reg *pages.Registry) float64 {
	if len(required) == 0 {
		return 0
	}
	bound := make(map[string]bool)
	for _, step := range def.Steps {
		_, literals := mining.Templatize(step.Text)
		for _, lit := range literals {
			bound[pages.NormalizeKey(lit)] = true
		}
	}
	hits := 0
	for _, want := range required {
		if bound[pages.NormalizeKey(want)] {
			hits++
		}
	}
	return float64(hits) / float64(len(required))
}

// verbCoverage is the fraction of required verbs appearing as the first
// token of any step text, case-insensitive.
func verbCoverage(def *corpus.Definition, verbs []string) float64 {
	if len(verbs) == 0 {
		return 0
	}
	firstTokens := make(map[string]bool)
	for _, step := range def.Steps {
		fields := strings.Fields(step.Text)
		if len(fields) > 0 {
			firstTokens[strings.ToLower(fields[0])] = true
		}
	}
	hits := 0
	for _, v := range verbs {
		if firstTokens[strings.ToLower(v)] {
			hits++
		}
	}
	return float64(hits) / float64(len(verbs))
}

// keywordOverlap is the fraction of acceptance-criteria keywords found
// as substrings of the scenario name or any step text.
func keywordOverlap(def *corpus.Definition, name string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(name))
	for _, step := range def.Steps {
		b.WriteString(" ")
		b.WriteString(strings.ToLower(step.Text))
	}
	haystack := b.String()
	hits := 0
	for _, kw := range keywords {
		if kw != "" && strings.Contains(haystack, strings.ToLower(kw)) {
			hits++
		}
	}
	return float64(hits) / float64(len(keywords))
}
