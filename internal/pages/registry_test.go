package pages

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testPages() []Page {
	return []Page{
		{
			ID: "login", Title: "Login Page",
			Controls: []Control{
				{Key: "username-field", Kind: "input"},
				{Key: "submit-button", Kind: "button", Label: "Sign In"},
			},
		},
		{
			ID: "dashboard", DisplayName: "Main Dashboard",
			Controls: []Control{{Key: "logout-link"}},
		},
	}
}

func TestNew(t *testing.T) {
	r, err := New(testPages())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p := r.PageByID("login"); p == nil || p.Title != "Login Page" {
		t.Errorf("PageByID(login) = %+v", p)
	}
	if r.PageByID("missing") != nil {
		t.Error("PageByID(missing) should be nil")
	}

	if pageID, ok := r.PageForControl("  Submit-Button "); !ok || pageID != "login" {
		t.Errorf("PageForControl = %q, %v", pageID, ok)
	}
	if _, ok := r.PageForControl("no-such-control"); ok {
		t.Error("unknown control should not resolve")
	}
	if !r.HasControl("login", "username-field") || r.HasControl("dashboard", "username-field") {
		t.Error("HasControl ownership check failed")
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name  string
		pages []Page
	}{
		{"missing id", []Page{{Title: "No ID"}}},
		{"duplicate id", []Page{{ID: "p"}, {ID: "p"}}},
		{"keyless control", []Page{{ID: "p", Controls: []Control{{Label: "x"}}}}},
		{"cross-page claim", []Page{
			{ID: "a", Controls: []Control{{Key: "shared"}}},
			{ID: "b", Controls: []Control{{Key: "shared"}}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.pages); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pages.yaml")
	src := `pages:
  - id: login
    title: Login
    controls:
      - key: submit-button
        kind: button
  - id: dashboard
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(r.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(r.Pages))
	}
	if pageID, ok := r.PageForControl("submit-button"); !ok || pageID != "login" {
		t.Errorf("PageForControl = %q, %v", pageID, ok)
	}
}

func TestTerms(t *testing.T) {
	p := Page{ID: "login", Title: "Login Page", Controls: []Control{
		{Key: "username-field", Label: "User Name"},
	}}
	got := p.Terms()
	want := []string{"login", "page", "username", "field", "user", "name"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Terms mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("The User-logs_in 2x!")
	want := []string{"the", "user", "logs", "in", "2x"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokenize mismatch (-want +got):\n%s", diff)
	}
}
