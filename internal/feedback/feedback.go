// Package feedback is the append-only verdict ledger and the fold that
// turns its history into per-entity score modifiers for ranking and
// target resolution. Events are immutable once appended; every derived
// stat is recomputed from the full log on demand.
package feedback

import (
	"fmt"
	"sort"
	"time"
)

// Verdict is a human judgment on a ranked entity.
type Verdict string

const (
	VerdictApprove Verdict = "approve"
	VerdictReject  Verdict = "reject"
	VerdictNote    Verdict = "note"
)

// EntityKind partitions the feedback namespace.
type EntityKind string

const (
	KindRoute      EntityKind = "route"
	KindTarget     EntityKind = "target"
	KindDelta      EntityKind = "delta"
	KindValidation EntityKind = "validation"
	KindPlan       EntityKind = "plan"
)

// Event is one appended verdict. Immutable after append.
type Event struct {
	Timestamp time.Time         `json:"ts"`
	User      string            `json:"user,omitempty"`
	Kind      EntityKind        `json:"kind"`
	EntityID  string            `json:"entity_id"`
	Verdict   Verdict           `json:"verdict"`
	Tags      []string          `json:"tags,omitempty"`
	Note      string            `json:"note,omitempty"`
	Context   map[string]string `json:"context,omitempty"`
}

// Validate checks the closed enums and required fields before append.
func (e *Event) Validate() error {
	switch e.Kind {
	case KindRoute, KindTarget, KindDelta, KindValidation, KindPlan:
	default:
		return fmt.Errorf("feedback: unknown entity kind %q", e.Kind)
	}
	switch e.Verdict {
	case VerdictApprove, VerdictReject, VerdictNote:
	default:
		return fmt.Errorf("feedback: unknown verdict %q", e.Verdict)
	}
	if e.EntityID == "" {
		return fmt.Errorf("feedback: event has no entity id")
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("feedback: event has no timestamp")
	}
	return nil
}

// EntityKey joins kind and id into the ledger's per-entity key.
func EntityKey(kind EntityKind, id string) string {
	return string(kind) + ":" + id
}

const (
	// ScoreMin/ScoreMax clamp the all-time net score.
	ScoreMin = -5
	ScoreMax = 5
	// BlacklistWindow is the trailing window for the recency veto.
	BlacklistWindow = 14 * 24 * time.Hour
	// BlacklistRejections is the minimum rejection count inside the
	// window, with zero approvals, that triggers the veto.
	BlacklistRejections = 2
	// DefaultMaxWeight caps how much positive feedback can add to a
	// base score.
	DefaultMaxWeight = 0.15
	// topTagLimit bounds Stats.TopTags.
	topTagLimit = 3
)

// Stats is the fold of one entity's full history.
type Stats struct {
	Approvals   int      `json:"approvals"`
	Rejections  int      `json:"rejections"`
	Notes       int      `json:"notes"`
	Score       int      `json:"score"`
	Boost       float64  `json:"boost"`
	Blacklisted bool     `json:"blacklisted"`
	TopTags     []string `json:"top_tags,omitempty"`
}

// Summarize folds the full event history into per-entity stats as of
// now. Score is approvals minus rejections clamped to [ScoreMin,
// ScoreMax]; boost is score/ScoreMax for positive net sentiment and 0
// otherwise. The blacklist looks only at the trailing window: at least
// BlacklistRejections rejections and zero approvals there veto the
// entity regardless of its all-time score.
func Summarize(events []Event, now time.Time) map[string]Stats {
	type acc struct {
		Stats
		recentRejects  int
		recentApproves int
		tagCounts      map[string]int
	}
	accs := make(map[string]*acc)
	cutoff := now.Add(-BlacklistWindow)

	for _, e := range events {
		key := EntityKey(e.Kind, e.EntityID)
		a := accs[key]
		if a == nil {
			a = &acc{tagCounts: make(map[string]int)}
			accs[key] = a
		}
		switch e.Verdict {
		case VerdictApprove:
			a.Approvals++
			if !e.Timestamp.Before(cutoff) {
				a.recentApproves++
			}
		case VerdictReject:
			a.Rejections++
			if !e.Timestamp.Before(cutoff) {
				a.recentRejects++
			}
		case VerdictNote:
			a.Notes++
		}
		for _, tag := range e.Tags {
			a.tagCounts[tag]++
		}
	}

	out := make(map[string]Stats, len(accs))
	for key, a := range accs {
		score := a.Approvals - a.Rejections
		if score > ScoreMax {
			score = ScoreMax
		}
		if score < ScoreMin {
			score = ScoreMin
		}
		a.Score = score
		if score > 0 {
			a.Boost = float64(score) / float64(ScoreMax)
		}
		a.Blacklisted = a.recentRejects >= BlacklistRejections && a.recentApproves == 0
		a.TopTags = topTags(a.tagCounts)
		out[key] = a.Stats
	}
	return out
}

func topTags(counts map[string]int) []string {
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > topTagLimit {
		tags = tags[:topTagLimit]
	}
	return tags
}

// Apply folds an entity's stats into a base score. A blacklisted entity
// is forced to zero and flagged banned; otherwise the boost scaled by
// maxWeight (DefaultMaxWeight when <= 0) is added and the result clamped
// to [0,1]. This is the sole coupling between human curation and future
// rankings.
func Apply(baseScore float64, stats Stats, maxWeight float64) (score float64, banned bool) {
	if stats.Blacklisted {
		return 0, true
	}
	if maxWeight <= 0 {
		maxWeight = DefaultMaxWeight
	}
	score = baseScore + stats.Boost*maxWeight
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, false
}
