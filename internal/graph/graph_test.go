package graph

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sourceModule(name string, extra ArgList, deps ...ModuleID) *Module {
	return &Module{
		ID:                 Source(name),
		Path:               name + ".swiftmodule",
		DirectDependencies: deps,
		Details:            Details{Source: &SourceDetails{ExtraArgs: extra}},
	}
}

func clangModule(name string, captured ArgSet, deps ...ModuleID) *Module {
	return &Module{
		ID:                 Clang(name),
		Path:               name + ".pcm",
		DirectDependencies: deps,
		Details: Details{Clang: &ClangDetails{
			ModuleMapPath:          "/include/" + name + "/module.modulemap",
			ContextHash:            "ctx-" + name,
			CapturedConfigurations: captured,
		}},
	}
}

func TestParseModuleID(t *testing.T) {
	id, err := ParseModuleID("clang:SwiftShims")
	if err != nil {
		t.Fatalf("ParseModuleID: %v", err)
	}
	if id != Clang("SwiftShims") {
		t.Errorf("got %v, want clang:SwiftShims", id)
	}
	if id.String() != "clang:SwiftShims" {
		t.Errorf("String() = %q", id.String())
	}

	for _, bad := range []string{"SwiftShims", "clang:", "framework:Foo"} {
		if _, err := ParseModuleID(bad); err == nil {
			t.Errorf("ParseModuleID(%q): expected error", bad)
		}
	}
}

func TestInsertLookupUpdate(t *testing.T) {
	g := New("App")
	if err := g.Insert(sourceModule("App", nil)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := g.Insert(sourceModule("App", nil)); err == nil {
		t.Fatal("expected error inserting duplicate module")
	}

	m, err := g.Lookup(Source("App"))
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if m.DirectDependencies == nil || m.SourceFiles == nil {
		t.Error("inserted module should have non-nil containers")
	}
	if m.Details.Source.ExtraArgs == nil {
		t.Error("inserted source module should have non-nil extra args")
	}

	_, err = g.Lookup(Clang("Missing"))
	var missing *MissingModuleError
	if !errors.As(err, &missing) {
		t.Fatalf("Lookup of absent module: got %v, want *MissingModuleError", err)
	}
	if missing.Module != Clang("Missing") {
		t.Errorf("missing module = %v", missing.Module)
	}

	updated := sourceModule("App", ArgList{"-target", "arm64"})
	if err := g.Update(updated); err != nil {
		t.Fatalf("Update: %v", err)
	}
	m, _ = g.Lookup(Source("App"))
	if !m.Details.Source.ExtraArgs.Equal(ArgList{"-target", "arm64"}) {
		t.Errorf("extra args = %v", m.Details.Source.ExtraArgs)
	}

	if err := g.Update(clangModule("Nope", nil)); err == nil {
		t.Fatal("expected error updating absent module")
	}
}

func TestIDsSorted(t *testing.T) {
	g := New("App")
	_ = g.Insert(sourceModule("App", nil))
	_ = g.Insert(clangModule("Zlib", nil))
	_ = g.Insert(clangModule("Darwin", nil))
	_ = g.Insert(sourceModule("Darwin", nil))

	want := []ModuleID{Source("App"), Clang("Darwin"), Source("Darwin"), Clang("Zlib")}
	if diff := cmp.Diff(want, g.IDs()); diff != "" {
		t.Errorf("IDs mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	g := New("App")
	_ = g.Insert(sourceModule("App", nil, Clang("A"), Clang("Gone"), Placeholder("P")))
	_ = g.Insert(clangModule("A", nil))
	_ = g.Insert(&Module{ID: Clang("Bad"), Details: Details{Source: &SourceDetails{}}})

	errs := g.Validate()
	joined := strings.Join(errs, "\n")
	for _, want := range []string{
		"dependency clang:Gone is missing",
		"depends on unresolved placeholder placeholder:P",
		"clang:Bad: details do not match",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("Validate() missing %q in:\n%s", want, joined)
		}
	}

	if errs := New("").Validate(); len(errs) == 0 {
		t.Error("graph without main module name should be invalid")
	}
}

func TestCloneIsDeep(t *testing.T) {
	g := New("App")
	_ = g.Insert(sourceModule("App", nil, Clang("A")))
	_ = g.Insert(clangModule("A", NewArgSet(ArgList{"-x"})))

	c := g.Clone()
	cm, _ := c.Lookup(Clang("A"))
	cm.Details.Clang.CapturedConfigurations.Add(ArgList{"-y"})
	cm.AddDependencies(Clang("B"))

	orig, _ := g.Lookup(Clang("A"))
	if orig.Details.Clang.CapturedConfigurations.Len() != 1 {
		t.Error("clone shares captured configurations with original")
	}
	if len(orig.DirectDependencies) != 0 {
		t.Error("clone shares dependency list with original")
	}
}

func TestArgSetOperations(t *testing.T) {
	s := NewArgSet(ArgList{"-target", "x86_64"}, ArgList{"-target", "x86_64"}, ArgList{"-O"})
	if s.Len() != 2 {
		t.Fatalf("duplicates should collapse, len = %d", s.Len())
	}
	if s.Add(ArgList{"-O"}) {
		t.Error("Add of present list should report false")
	}
	// Order is significant.
	if s.Has(ArgList{"x86_64", "-target"}) {
		t.Error("reordered list must not match")
	}

	other := NewArgSet(ArgList{"-O"}, ArgList{"-g"})
	diff := s.Difference(other)
	if diff.Len() != 1 || !diff.Has(ArgList{"-target", "x86_64"}) {
		t.Errorf("Difference = %v", diff.Lists())
	}

	if added := s.Union(other); added != 1 {
		t.Errorf("Union added %d, want 1", added)
	}
	want := []ArgList{{"-O"}, {"-g"}, {"-target", "x86_64"}}
	if d := cmp.Diff(want, s.Lists()); d != "" {
		t.Errorf("Lists mismatch (-want +got):\n%s", d)
	}
}

func TestArgListKeyIsUnambiguous(t *testing.T) {
	a := ArgList{"a;b"}
	b := ArgList{"a", "b"}
	if a.Key() == b.Key() {
		t.Fatal("distinct lists produced the same key")
	}
	if a.Hash() == b.Hash() {
		t.Fatal("distinct lists produced the same hash")
	}
	if (ArgList{"a", "b"}).Hash() != b.Hash() {
		t.Fatal("hash is not stable")
	}
}
