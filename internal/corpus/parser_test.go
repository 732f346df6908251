package corpus

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const loginFeature = `@auth @smoke
Feature: Login

  Some free-text description that the parser tolerates.

  @happy
  Scenario: Successful login
    Given the user is on "login-page"
    When the user enters "bob" into "username-field"
    And the user clicks "submit-button"
    Then the user sees "dashboard"

  Scenario: Login payload
    Given the user submits the form
      | field    | value |
      | username | bob   |
    Then the response body is
      """
      {"status": "ok"}
      """
`

func TestParseFileScenarios(t *testing.T) {
	defs, err := ParseFile("login.feature", []byte(loginFeature))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("got %d definitions, want 2", len(defs))
	}

	first := defs[0]
	if first.ID != "login.feature:7" {
		t.Errorf("ID = %q, want login.feature:7", first.ID)
	}
	if first.Kind != KindScenario {
		t.Errorf("Kind = %q, want scenario", first.Kind)
	}
	if diff := cmp.Diff([]string{"@happy"}, first.Tags); diff != "" {
		t.Errorf("Tags mismatch (-want +got):\n%s", diff)
	}
	wantSteps := []Step{
		{Keyword: "Given", Text: `the user is on "login-page"`, Line: 8},
		{Keyword: "When", Text: `the user enters "bob" into "username-field"`, Line: 9},
		{Keyword: "And", Text: `the user clicks "submit-button"`, Line: 10},
		{Keyword: "Then", Text: `the user sees "dashboard"`, Line: 11},
	}
	if diff := cmp.Diff(wantSteps, first.Steps); diff != "" {
		t.Errorf("Steps mismatch (-want +got):\n%s", diff)
	}

	second := defs[1]
	wantTable := [][]string{
		{"field", "value"},
		{"username", "bob"},
	}
	if diff := cmp.Diff(wantTable, second.Steps[0].Table); diff != "" {
		t.Errorf("Table mismatch (-want +got):\n%s", diff)
	}
	if got, want := strings.TrimSpace(second.Steps[1].DocString), `{"status": "ok"}`; got != want {
		t.Errorf("DocString = %q, want %q", got, want)
	}
}

func TestParseFileOutline(t *testing.T) {
	src := `Feature: Roles

  Scenario Outline: Login as <role>
    Given the user logs in as "<role>"
    Then the user sees "<landing>"

    Examples:
      | role    | landing   |
      | admin   | dashboard |
      | auditor | reports   |
`
	defs, err := ParseFile("roles.feature", []byte(src))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("got %d definitions, want 1", len(defs))
	}
	d := defs[0]
	if d.Kind != KindOutline {
		t.Fatalf("Kind = %q, want outline", d.Kind)
	}
	if d.Examples == nil {
		t.Fatal("Examples is nil")
	}
	if diff := cmp.Diff([]string{"role", "landing"}, d.Examples.Header); diff != "" {
		t.Errorf("Header mismatch (-want +got):\n%s", diff)
	}
	wantExp := []string{"Login as admin", "Login as auditor"}
	if diff := cmp.Diff(wantExp, d.NameExpansions); diff != "" {
		t.Errorf("NameExpansions mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "examples outside outline",
			src:  "Scenario: S\n  Given a step\n  Examples:\n",
			want: "examples block outside",
		},
		{
			name: "step before header",
			src:  "Given a step\n",
			want: "step before any scenario",
		},
		{
			name: "table without step",
			src:  "Scenario: S\n  | a | b |\n",
			want: "data table without",
		},
		{
			name: "unterminated doc-string",
			src:  "Scenario: S\n  Given a step\n  \"\"\"\n  body\n",
			want: "unterminated doc-string",
		},
		{
			name: "examples without header",
			src:  "Scenario Outline: O <x>\n  Given <x>\n  Examples:\n",
			want: "without a header row",
		},
		{
			name: "nameless scenario",
			src:  "Scenario:\n  Given a step\n",
			want: "without a name",
		},
		{
			name: "ragged examples row",
			src: "Scenario Outline: O <x>\n  Given <x>\n  Examples:\n" +
				"    | x | y |\n    | 1 |\n",
			want: "cells",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFile("bad.feature", []byte(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders("Login as <role> on <page> with <role>")
	want := []string{"role", "page"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Placeholders mismatch (-want +got):\n%s", diff)
	}
	if Placeholders("no tokens here") != nil {
		t.Error("expected nil for token-free string")
	}
}

func TestBindName(t *testing.T) {
	got := BindName("Login as <role> via <channel>", []string{"role"}, []string{"admin"})
	if want := "Login as admin via <channel>"; got != want {
		t.Errorf("BindName = %q, want %q", got, want)
	}
}

func TestBindNameResolvesEveryHeaderKey(t *testing.T) {
	header := []string{"role", "page", "count"}
	rows := [][]string{
		{"admin", "dashboard", "3"},
		{"auditor", "reports", "0"},
	}
	name := "As <role> open <page> <count> times on <channel>"
	for _, row := range rows {
		bound := BindName(name, header, row)
		left := Placeholders(bound)
		for _, key := range header {
			for _, unresolved := range left {
				if unresolved == key {
					t.Errorf("row %v: header key %q still unresolved in %q", row, key, bound)
				}
			}
		}
		// Keys outside the header survive untouched.
		if len(left) != 1 || left[0] != "channel" {
			t.Errorf("row %v: leftover placeholders = %v, want [channel]", row, left)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("  Successful   LOGIN "); got != "successful login" {
		t.Errorf("NormalizeName = %q", got)
	}
}

func TestContentKeyIgnoresIdentity(t *testing.T) {
	a := Definition{ID: "a.feature:1", File: "a.feature", Line: 1, Name: "S", Kind: KindScenario,
		Steps: []Step{{Keyword: "Given", Text: "a step", Line: 2}}}
	b := Definition{ID: "b.feature:9", File: "b.feature", Line: 9, Name: "S", Kind: KindScenario,
		Steps:        []Step{{Keyword: "Given", Text: "a step", Line: 10}},
		ReferencedBy: []string{"c.feature:3"}}
	if a.ContentKey() != b.ContentKey() {
		t.Error("identical content should produce equal keys regardless of identity")
	}

	c := a
	c.Steps = []Step{{Keyword: "Given", Text: "a different step", Line: 2}}
	if a.ContentKey() == c.ContentKey() {
		t.Error("different steps should produce different keys")
	}
}
