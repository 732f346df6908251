package mining

import (
	"sort"
	"strings"

	"waypoint/internal/corpus"
)

// SchemaVersion stamps every mining artifact so downstream readers can
// reject layouts they do not understand.
const SchemaVersion = 1

// Dedup merges structurally identical definitions: same normalized name,
// kind, steps, and examples. Caller sets union; the surviving record is
// the first encountered in (file, line) order, keeping output stable
// across runs. Name participates in the merge key so the registry's
// display-name grouping stays unambiguous.
func Dedup(defs []corpus.Definition) []corpus.Definition {
	var out []corpus.Definition
	index := make(map[string]int)
	for i := range defs {
		key := corpus.NormalizeName(defs[i].Name) + "\x00" + defs[i].ContentKey()
		if at, ok := index[key]; ok {
			for _, ref := range defs[i].ReferencedBy {
				addReference(&out[at], ref)
			}
			continue
		}
		index[key] = len(out)
		out = append(out, defs[i])
	}
	for i := range out {
		sort.Strings(out[i].ReferencedBy)
	}
	return out
}

// BaseEntry groups the deduplicated definitions sharing one display name.
// Every member is referenced by at least one caller.
type BaseEntry struct {
	Name        string              `json:"name"`
	Definitions []corpus.Definition `json:"definitions"`
}

// NeverReused is a diagnostic record for a definition that no caller
// references and which therefore stays out of the base registry.
type NeverReused struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	File string `json:"file"`
}

// Registry is the canonical base-scenario library for one run. Library
// material is, by construction, reused material: only definitions with at
// least one referencing caller are promoted.
type Registry struct {
	SchemaVersion int           `json:"schema_version"`
	Entries       []BaseEntry   `json:"entries"`
	BaseCount     int           `json:"base_count"`
	NonBaseCount  int           `json:"non_base_count"`
	NeverReused   []NeverReused `json:"never_reused,omitempty"`
}

// BuildRegistry deduplicates definitions and promotes the referenced
// survivors into name-grouped entries, sorted deterministically. The
// base/non-base split doubles as a reuse-adoption diagnostic.
func BuildRegistry(defs []corpus.Definition) *Registry {
	deduped := Dedup(defs)

	reg := &Registry{SchemaVersion: SchemaVersion}
	groups := make(map[string][]corpus.Definition)
	for _, d := range deduped {
		if len(d.ReferencedBy) == 0 {
			reg.NonBaseCount++
			reg.NeverReused = append(reg.NeverReused, NeverReused{ID: d.ID, Name: d.Name, File: d.File})
			continue
		}
		reg.BaseCount++
		groups[d.Name] = append(groups[d.Name], d)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	for _, name := range names {
		members := groups[name]
		sort.Slice(members, func(i, j int) bool {
			if members[i].File != members[j].File {
				return members[i].File < members[j].File
			}
			return members[i].Line < members[j].Line
		})
		reg.Entries = append(reg.Entries, BaseEntry{Name: name, Definitions: members})
	}
	sort.Slice(reg.NeverReused, func(i, j int) bool {
		return reg.NeverReused[i].ID < reg.NeverReused[j].ID
	})
	return reg
}

// Lookup returns the entry whose display name matches name after
// normalization, or nil.
func (r *Registry) Lookup(name string) *BaseEntry {
	want := corpus.NormalizeName(name)
	for i := range r.Entries {
		if corpus.NormalizeName(r.Entries[i].Name) == want {
			return &r.Entries[i]
		}
	}
	return nil
}
