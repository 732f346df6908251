// Package resolve scores which application page a free-text requirement
// targets. Five weighted signals per page — alias hits, domain hits,
// lexical similarity, popularity, reach — produce a confidence in
// [0.2,1.0]. Absence of evidence is a weak prior, not zero.
package resolve

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"waypoint/internal/corpus"
	"waypoint/internal/feedback"
	"waypoint/internal/mining"
	"waypoint/internal/navgraph"
	"waypoint/internal/pages"
)

const (
	// ConfidenceFloor is the weak prior for pages with no evidence.
	ConfidenceFloor = 0.2
	// ConfidenceCeil caps the final confidence.
	ConfidenceCeil = 1.0
)

// Squash is the monotonic transform v/(1+v), bounding unbounded counts
// to [0,1) so no single repeated keyword dominates a weighted sum.
func Squash(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return v / (1 + v)
}

// Weights for the five target-resolution signals.
type Weights struct {
	Alias      float64 `yaml:"alias"`
	Domain     float64 `yaml:"domain"`
	Lexical    float64 `yaml:"lexical"`
	Popularity float64 `yaml:"popularity"`
	Reach      float64 `yaml:"reach"`
}

// DefaultWeights favors explicit alias/domain vocabulary over corpus
// statistics.
func DefaultWeights() Weights {
	return Weights{Alias: 0.30, Domain: 0.25, Lexical: 0.25, Popularity: 0.10, Reach: 0.10}
}

// Profile carries optional curated vocabulary: per-page alias keywords
// and broader domain keywords.
type Profile struct {
	Aliases map[string][]string `yaml:"aliases,omitempty"`
	Domains map[string][]string `yaml:"domains,omitempty"`
}

// Lexicon is the per-page term-frequency index: page id -> term -> count.
type Lexicon map[string]map[string]float64

// BuildLexicon folds page metadata (titles, display names, control-key
// tokens) and scenario usage text into the lexicon. A scenario step
// whose quoted literal resolves to a control contributes its full token
// stream to the owning page.
func BuildLexicon(reg *pages.Registry, defs []corpus.Definition) Lexicon {
	lex := make(Lexicon, len(reg.Pages))
	add := func(pageID string, terms []string) {
		if len(terms) == 0 {
			return
		}
		m := lex[pageID]
		if m == nil {
			m = make(map[string]float64)
			lex[pageID] = m
		}
		for _, t := range terms {
			m[t]++
		}
	}

	for i := range reg.Pages {
		p := &reg.Pages[i]
		add(p.ID, p.Terms())
	}
	for i := range defs {
		for _, step := range defs[i].Steps {
			_, literals := mining.Templatize(step.Text)
			for _, lit := range literals {
				if pageID, ok := reg.PageForControl(lit); ok {
					add(pageID, pages.Tokenize(step.Text))
				}
			}
		}
	}
	return lex
}

// Candidate is one scored target page.
type Candidate struct {
	Page       string   `json:"page"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons"`
	Aliases    []string `json:"aliases,omitempty"`
	Banned     bool     `json:"banned,omitempty"`
}

// Input bundles everything target resolution consumes. Profile, Lexicon,
// Stats, and Weights are all optional: missing inputs contribute neutral
// signals, never errors.
type Input struct {
	Text     string
	Keywords []string
	Profile  *Profile
	Registry *pages.Registry
	Graph    *navgraph.Graph
	Lexicon  Lexicon
	Stats    map[string]feedback.Stats
	Weights  *Weights
	// MaxWeight caps the feedback boost; DefaultMaxWeight when <= 0.
	MaxWeight float64
	Now       time.Time
}

// ResolveTarget scores every registry page against the requirement text
// and keyword list, applies feedback, and returns candidates sorted by
// descending confidence (page id breaks ties).
func ResolveTarget(in Input) []Candidate {
	if in.Registry == nil {
		return nil
	}
	w := DefaultWeights()
	if in.Weights != nil {
		w = *in.Weights
	}

	queryTokens := append(pages.Tokenize(in.Text), normalizeKeywords(in.Keywords)...)
	queryFreq := termFreq(queryTokens)

	out := make([]Candidate, 0, len(in.Registry.Pages))
	for i := range in.Registry.Pages {
		p := &in.Registry.Pages[i]
		c := Candidate{Page: p.ID}
		var sum float64

		if in.Profile != nil {
			hits, matched := keywordHits(queryTokens, in.Profile.Aliases[p.ID])
			if hits > 0 {
				sum += w.Alias * Squash(float64(hits))
				c.Reasons = append(c.Reasons, fmt.Sprintf("alias hits: %d", hits))
				c.Aliases = matched
			}
			if hits, _ := keywordHits(queryTokens, in.Profile.Domains[p.ID]); hits > 0 {
				sum += w.Domain * Squash(float64(hits))
				c.Reasons = append(c.Reasons, fmt.Sprintf("domain hits: %d", hits))
			}
		}

		if in.Lexicon != nil {
			if cos := cosine(queryFreq, in.Lexicon[p.ID]); cos > 0 {
				sum += w.Lexical * cos
				c.Reasons = append(c.Reasons, fmt.Sprintf("lexical similarity %.2f", cos))
			}
		}

		if in.Graph != nil {
			if deg := in.Graph.InDegree(p.ID); deg > 0 {
				sum += w.Popularity * Squash(float64(deg))
				c.Reasons = append(c.Reasons, fmt.Sprintf("popularity: %d inbound edges", deg))
			}
		}

		// Reach is neutral absent a fixed downstream target.

		c.Confidence = clamp(sum, ConfidenceFloor, ConfidenceCeil)

		if in.Stats != nil {
			key := feedback.EntityKey(feedback.KindTarget, p.ID)
			if st, ok := in.Stats[key]; ok {
				score, banned := feedback.Apply(c.Confidence, st, in.MaxWeight)
				if banned {
					c.Confidence = 0
					c.Banned = true
					c.Reasons = append(c.Reasons, "blacklisted by recent feedback")
				} else if score != c.Confidence {
					c.Reasons = append(c.Reasons, fmt.Sprintf("feedback boost %+.2f", score-c.Confidence))
					c.Confidence = score
				}
			}
		}

		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Page < out[j].Page
	})
	return out
}

func normalizeKeywords(keywords []string) []string {
	var out []string
	for _, k := range keywords {
		out = append(out, pages.Tokenize(k)...)
	}
	return out
}

func keywordHits(queryTokens []string, vocab []string) (int, []string) {
	if len(vocab) == 0 {
		return 0, nil
	}
	vocabSet := make(map[string]bool, len(vocab))
	for _, v := range vocab {
		vocabSet[strings.ToLower(strings.TrimSpace(v))] = true
	}
	hits := 0
	var matched []string
	seen := make(map[string]bool)
	for _, tok := range queryTokens {
		if vocabSet[tok] {
			hits++
			if !seen[tok] {
				seen[tok] = true
				matched = append(matched, tok)
			}
		}
	}
	sort.Strings(matched)
	return hits, matched
}

func termFreq(tokens []string) map[string]float64 {
	m := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		m[t]++
	}
	return m
}

// cosine is the standard cosine similarity over sparse term-frequency
// vectors. Either side empty yields 0.
func cosine(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for t, av := range a {
		normA += av * av
		if bv, ok := b[t]; ok {
			dot += av * bv
		}
	}
	for _, bv := range b {
		normB += bv * bv
	}
	if dot == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
