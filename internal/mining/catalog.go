package mining

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"strings"

	"waypoint/internal/corpus"
)

const (
	// ReservoirCap bounds the per-slot example sample.
	ReservoirCap = 10
	// reservoirReplaceP is the replacement probability once the
	// reservoir is full.
	reservoirReplaceP = 0.1
	// DefaultMinPatternCount prunes patterns seen fewer times.
	DefaultMinPatternCount = 2
	// DefaultCatalogSeed keeps reservoir sampling reproducible when no
	// randomness source is injected, so unchanged corpora produce
	// identical catalogs.
	DefaultCatalogSeed = 1
)

var quotedLiteralRe = regexp.MustCompile(`"([^"]*)"`)

// Templatize replaces quoted literals left-to-right with positional
// placeholders and returns the extracted literal values.
// `user enters "bob" into "login"` -> `user enters {0} into {1}`.
func Templatize(text string) (template string, args []string) {
	i := 0
	template = quotedLiteralRe.ReplaceAllStringFunc(text, func(m string) string {
		args = append(args, strings.Trim(m, `"`))
		ph := fmt.Sprintf("{%d}", i)
		i++
		return ph
	})
	return template, args
}

// Signature returns the content hash keying a pattern bucket.
func Signature(template string) string {
	sum := sha256.Sum256([]byte(template))
	return hex.EncodeToString(sum[:])[:12]
}

// SlotStats accumulates per-argument-slot observations. Types and regex
// candidates are additive sets: a guess once made is never retracted.
type SlotStats struct {
	Examples []string `json:"examples"`
	MinLen   int      `json:"min_len"`
	MaxLen   int      `json:"max_len"`
	Types    []string `json:"types,omitempty"`
	Regexes  []string `json:"regexes,omitempty"`

	seen int
}

// StepPattern is one catalog bucket: the canonical template for every
// step sharing its quoted-literal shape.
type StepPattern struct {
	Signature  string       `json:"signature"`
	Template   string       `json:"template"`
	Count      int          `json:"count"`
	Slots      []*SlotStats `json:"slots,omitempty"`
	Sample     string       `json:"sample"`
	SampleFile string       `json:"sample_file"`
}

// Catalog is the step-pattern artifact for one run.
type Catalog struct {
	SchemaVersion int            `json:"schema_version"`
	MinCount      int            `json:"min_count"`
	Patterns      []*StepPattern `json:"patterns"`
}

// CatalogOptions configures catalog construction.
type CatalogOptions struct {
	MinCount int        // prune threshold; DefaultMinPatternCount if <= 0
	Rand     *rand.Rand // reservoir randomness; seeded DefaultCatalogSeed if nil
}

// Shape recognizers for slot type inference.
var slotShapes = []struct {
	name  string
	re    *regexp.Regexp
	regex string
}{
	{"iso-date", regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), `\d{4}-\d{2}-\d{2}`},
	{"integer", regexp.MustCompile(`^-?\d+$`), `-?\d+`},
	{"boolean", regexp.MustCompile(`(?i)^(true|false|yes|no)$`), ``},
}

// BuildCatalog templates every atomic step (steps matching an invocation
// recognizer are composite, not atomic, and are excluded) and accumulates
// per-slot statistics. Patterns below MinCount are pruned; the remainder
// sort by descending count, then template.
func BuildCatalog(defs []corpus.Definition, invocationPatterns []*regexp.Regexp, opts CatalogOptions) *Catalog {
	minCount := opts.MinCount
	if minCount <= 0 {
		minCount = DefaultMinPatternCount
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(DefaultCatalogSeed))
	}

	buckets := make(map[string]*StepPattern)
	for i := range defs {
		for _, step := range defs[i].Steps {
			if _, ok := MatchInvocation(step.Text, invocationPatterns); ok {
				continue
			}
			template, args := Templatize(step.Text)
			sig := Signature(template)
			p := buckets[sig]
			if p == nil {
				p = &StepPattern{
					Signature:  sig,
					Template:   template,
					Sample:     step.Text,
					SampleFile: defs[i].File,
					Slots:      make([]*SlotStats, len(args)),
				}
				for s := range p.Slots {
					p.Slots[s] = &SlotStats{}
				}
				buckets[sig] = p
			}
			p.Count++
			for s, arg := range args {
				if s < len(p.Slots) {
					p.Slots[s].observe(arg, rnd)
				}
			}
		}
	}

	cat := &Catalog{SchemaVersion: SchemaVersion, MinCount: minCount}
	for _, p := range buckets {
		if p.Count < minCount {
			continue
		}
		cat.Patterns = append(cat.Patterns, p)
	}
	sort.Slice(cat.Patterns, func(i, j int) bool {
		if cat.Patterns[i].Count != cat.Patterns[j].Count {
			return cat.Patterns[i].Count > cat.Patterns[j].Count
		}
		return cat.Patterns[i].Template < cat.Patterns[j].Template
	})
	return cat
}

func (s *SlotStats) observe(value string, rnd *rand.Rand) {
	if s.seen == 0 || len(value) < s.MinLen {
		s.MinLen = len(value)
	}
	if len(value) > s.MaxLen {
		s.MaxLen = len(value)
	}
	s.seen++

	if len(s.Examples) < ReservoirCap {
		s.Examples = append(s.Examples, value)
	} else if rnd.Float64() < reservoirReplaceP {
		s.Examples[rnd.Intn(ReservoirCap)] = value
	}

	for _, shape := range slotShapes {
		if !shape.re.MatchString(value) {
			continue
		}
		s.addType(shape.name)
		if shape.regex != "" {
			s.addRegex(shape.regex)
		}
	}
}

func (s *SlotStats) addType(name string) {
	for _, t := range s.Types {
		if t == name {
			return
		}
	}
	s.Types = append(s.Types, name)
	sort.Strings(s.Types)
}

func (s *SlotStats) addRegex(re string) {
	for _, r := range s.Regexes {
		if r == re {
			return
		}
	}
	s.Regexes = append(s.Regexes, re)
	sort.Strings(s.Regexes)
}
