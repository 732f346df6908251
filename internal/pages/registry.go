// Package pages models the application's page/control registry: page ids
// with display metadata and the controls that live on each page. The
// registry is the single control-indexing scheme used across resolution
// and ranking.
package pages

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Control is one interactable element on a page. Required fields are
// explicit; anything else a source wants to attach goes in Attrs.
type Control struct {
	Key      string            `yaml:"key" json:"key"`
	Kind     string            `yaml:"kind,omitempty" json:"kind,omitempty"`
	Label    string            `yaml:"label,omitempty" json:"label,omitempty"`
	Selector string            `yaml:"selector,omitempty" json:"selector,omitempty"`
	Attrs    map[string]string `yaml:"attrs,omitempty" json:"attrs,omitempty"`
}

// Page is one application page or state.
type Page struct {
	ID          string    `yaml:"id" json:"id"`
	Title       string    `yaml:"title,omitempty" json:"title,omitempty"`
	DisplayName string    `yaml:"display_name,omitempty" json:"display_name,omitempty"`
	Controls    []Control `yaml:"controls,omitempty" json:"controls,omitempty"`
}

// Registry indexes pages by id and controls by key.
type Registry struct {
	Pages []Page

	byID      map[string]*Page
	byControl map[string]string // normalized control key -> page id
}

type registryFile struct {
	Pages []Page `yaml:"pages"`
}

// Load reads a YAML page registry.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pages: read registry %q: %w", path, err)
	}
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("pages: parse registry %q: %w", path, err)
	}
	return New(f.Pages)
}

// New builds a registry from pages, validating ids and control keys.
func New(ps []Page) (*Registry, error) {
	r := &Registry{
		Pages:     ps,
		byID:      make(map[string]*Page, len(ps)),
		byControl: make(map[string]string),
	}
	for i := range r.Pages {
		p := &r.Pages[i]
		if p.ID == "" {
			return nil, fmt.Errorf("pages: page %d has no id", i)
		}
		if _, dup := r.byID[p.ID]; dup {
			return nil, fmt.Errorf("pages: duplicate page id %q", p.ID)
		}
		r.byID[p.ID] = p
		for _, c := range p.Controls {
			if c.Key == "" {
				return nil, fmt.Errorf("pages: page %q has a control without a key", p.ID)
			}
			key := NormalizeKey(c.Key)
			if owner, dup := r.byControl[key]; dup && owner != p.ID {
				return nil, fmt.Errorf("pages: control %q claimed by pages %q and %q", c.Key, owner, p.ID)
			}
			r.byControl[key] = p.ID
		}
	}
	return r, nil
}

// NormalizeKey canonicalizes a control key for lookup.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// PageByID returns the page with the given id, or nil.
func (r *Registry) PageByID(id string) *Page { return r.byID[id] }

// PageForControl maps a control key (usually a quoted literal from a
// step) to its owning page id. ok is false when no page claims the key.
func (r *Registry) PageForControl(key string) (pageID string, ok bool) {
	pageID, ok = r.byControl[NormalizeKey(key)]
	return pageID, ok
}

// HasControl reports whether page owns the control key.
func (r *Registry) HasControl(pageID, key string) bool {
	owner, ok := r.byControl[NormalizeKey(key)]
	return ok && owner == pageID
}

// Terms returns the lexicon tokens contributed by a page's own metadata:
// title words, display-name words, and control-key tokens split on
// non-alphanumerics.
func (p *Page) Terms() []string {
	var out []string
	out = append(out, Tokenize(p.Title)...)
	out = append(out, Tokenize(p.DisplayName)...)
	for _, c := range p.Controls {
		out = append(out, Tokenize(c.Key)...)
		out = append(out, Tokenize(c.Label)...)
	}
	return out
}

// Tokenize lowercases and splits text on any non-alphanumeric rune.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}
