package mining

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"waypoint/internal/corpus"
)

func TestDedup(t *testing.T) {
	a := def("a.feature", 1, "Login", "the user logs in")
	a.ReferencedBy = []string{"x.feature:1"}
	dup := def("b.feature", 5, "Login", "the user logs in")
	dup.ReferencedBy = []string{"y.feature:1"}
	other := def("c.feature", 1, "Logout", "the user logs out")

	out := Dedup([]corpus.Definition{a, dup, other})
	if len(out) != 2 {
		t.Fatalf("got %d definitions, want 2", len(out))
	}
	// First-in-order survivor keeps its identity, unions callers.
	if out[0].ID != "a.feature:1" {
		t.Errorf("survivor = %q, want a.feature:1", out[0].ID)
	}
	want := []string{"x.feature:1", "y.feature:1"}
	if diff := cmp.Diff(want, out[0].ReferencedBy); diff != "" {
		t.Errorf("ReferencedBy mismatch (-want +got):\n%s", diff)
	}
}

func TestDedupKeepsDifferentContentApart(t *testing.T) {
	a := def("a.feature", 1, "Login", "the user logs in")
	b := def("b.feature", 1, "Login", "the user logs in differently")
	out := Dedup([]corpus.Definition{a, b})
	if len(out) != 2 {
		t.Fatalf("same name, different steps must not merge: got %d", len(out))
	}
}

func TestBuildRegistry(t *testing.T) {
	login := def("a.feature", 1, "Login", "the user logs in")
	login.ReferencedBy = []string{"c.feature:1"}
	orphan := def("b.feature", 1, "Never called", "a step")
	checkout := def("c.feature", 1, "Checkout", `the user performs "Login"`)
	checkout.ReferencedBy = []string{"d.feature:1"}

	reg := BuildRegistry([]corpus.Definition{login, orphan, checkout})

	if reg.BaseCount != 2 || reg.NonBaseCount != 1 {
		t.Fatalf("base/non-base = %d/%d, want 2/1", reg.BaseCount, reg.NonBaseCount)
	}
	// Entries sort case-insensitively by name.
	if reg.Entries[0].Name != "Checkout" || reg.Entries[1].Name != "Login" {
		t.Errorf("entry order: %q, %q", reg.Entries[0].Name, reg.Entries[1].Name)
	}
	if len(reg.NeverReused) != 1 || reg.NeverReused[0].ID != "b.feature:1" {
		t.Errorf("NeverReused = %+v", reg.NeverReused)
	}

	if e := reg.Lookup("  LOGIN "); e == nil || e.Name != "Login" {
		t.Errorf("Lookup(normalized) = %+v", e)
	}
	if reg.Lookup("missing") != nil {
		t.Error("Lookup of unknown name should be nil")
	}
}

func TestBuildRegistryFromResolve(t *testing.T) {
	// End-to-end: resolver populates ReferencedBy, registry promotes.
	ps, err := CompilePatterns(nil)
	if err != nil {
		t.Fatal(err)
	}
	defs := []corpus.Definition{
		def("base.feature", 1, "Shared setup", "the database is seeded"),
		def("one.feature", 1, "Flow one", `the user performs "Shared setup"`),
		def("two.feature", 1, "Flow two", `the user performs "Shared setup"`),
	}
	Resolve(defs, ps)
	reg := BuildRegistry(defs)

	if reg.BaseCount != 1 {
		t.Fatalf("BaseCount = %d, want 1 (only the shared setup is reused)", reg.BaseCount)
	}
	e := reg.Lookup("Shared setup")
	if e == nil {
		t.Fatal("shared setup missing from registry")
	}
	want := []string{"one.feature:1", "two.feature:1"}
	if diff := cmp.Diff(want, e.Definitions[0].ReferencedBy); diff != "" {
		t.Errorf("ReferencedBy mismatch (-want +got):\n%s", diff)
	}
}
