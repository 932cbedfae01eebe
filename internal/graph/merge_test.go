package graph

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustViolate(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected invariant violation panic")
		}
		err, ok := r.(error)
		var iv *InvariantViolation
		if !ok || !errors.As(err, &iv) {
			t.Fatalf("panic value = %v, want *InvariantViolation", r)
		}
	}()
	fn()
}

func TestMergeFastPathReturnsFirst(t *testing.T) {
	a := clangModule("D", NewArgSet(ArgList{"-x"}), Clang("X"), Clang("Y"))
	a.SourceFiles = []string{"d.h"}
	b := clangModule("D", NewArgSet(ArgList{"-x"}), Clang("Y"), Clang("X"))
	b.SourceFiles = []string{"d.h"}
	b.Details.Clang.ContextHash = "other"

	got := MergeClangModules(a, b)
	if got != a {
		t.Fatal("fast path should return the first argument itself")
	}
	if got.Details.Clang.ContextHash != "ctx-D" {
		t.Errorf("context hash changed to %q", got.Details.Clang.ContextHash)
	}
}

func TestMergeUnionsDependencies(t *testing.T) {
	a := clangModule("D", NewArgSet(ArgList{"-x"}), Clang("X"), Clang("Y"))
	a.SourceFiles = []string{"a.h", "b.h"}
	b := clangModule("D", NewArgSet(ArgList{"-y"}), Clang("Y"), Clang("Z"))
	b.SourceFiles = []string{"b.h", "c.h"}
	b.Details.Clang.ModuleMapPath = "/elsewhere/module.modulemap"

	got := MergeClangModules(a, b)
	if got == a || got == b {
		t.Fatal("merge of differing modules should allocate a new description")
	}

	if diff := cmp.Diff([]ModuleID{Clang("X"), Clang("Y"), Clang("Z")}, got.DirectDependencies); diff != "" {
		t.Errorf("dependencies mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a.h", "b.h", "c.h"}, got.SourceFiles); diff != "" {
		t.Errorf("source files mismatch (-want +got):\n%s", diff)
	}
	if !got.Details.Clang.CapturedConfigurations.Equal(NewArgSet(ArgList{"-x"}, ArgList{"-y"})) {
		t.Errorf("captured = %v", got.Details.Clang.CapturedConfigurations.Lists())
	}
	if got.Details.Clang.ModuleMapPath != a.Details.Clang.ModuleMapPath {
		t.Errorf("module map path should come from first argument, got %q", got.Details.Clang.ModuleMapPath)
	}

	// Inputs are untouched.
	if len(a.DirectDependencies) != 2 || a.Details.Clang.CapturedConfigurations.Len() != 1 {
		t.Error("first argument was modified")
	}
}

func TestMergeConflicts(t *testing.T) {
	a := clangModule("D", nil)
	b := clangModule("D", nil)
	if got := MergeConflicts(a, b); len(got) != 0 {
		t.Errorf("expected no conflicts, got %v", got)
	}
	b.Details.Clang.ContextHash = "different"
	b.Details.Clang.CommandLine = []string{"-fmodules"}
	if got := MergeConflicts(a, b); len(got) != 2 {
		t.Errorf("expected 2 conflicts, got %v", got)
	}
}

func TestMergeRejectsNonClang(t *testing.T) {
	a := clangModule("D", nil)
	s := sourceModule("D", nil)
	mustViolate(t, func() { MergeClangModules(a, s) })
	mustViolate(t, func() { MergeClangModules(s, a) })
}

func TestCombine(t *testing.T) {
	dst := New("App")
	_ = dst.Insert(sourceModule("App", nil, Clang("D")))
	_ = dst.Insert(clangModule("D", NewArgSet(ArgList{"-x"}), Clang("X")))
	_ = dst.Insert(clangModule("X", nil))

	src := New("App")
	_ = src.Insert(sourceModule("App", nil, Clang("D"), Clang("Q")))
	_ = src.Insert(clangModule("D", NewArgSet(ArgList{"-y"}), Clang("F")))
	_ = src.Insert(clangModule("F", nil))
	_ = src.Insert(clangModule("Q", nil))

	res := Combine(dst, src)

	if diff := cmp.Diff([]ModuleID{Clang("F"), Clang("Q")}, res.Inserted); diff != "" {
		t.Errorf("inserted mismatch (-want +got):\n%s", diff)
	}
	d, _ := dst.Lookup(Clang("D"))
	if !d.HasDependency(Clang("X")) || !d.HasDependency(Clang("F")) {
		t.Errorf("D dependencies = %v", d.DirectDependencies)
	}
	if d.Details.Clang.CapturedConfigurations.Len() != 2 {
		t.Errorf("D captured = %v", d.Details.Clang.CapturedConfigurations.Lists())
	}
	app, _ := dst.Lookup(Source("App"))
	if !app.HasDependency(Clang("Q")) {
		t.Error("App should gain Q")
	}
	if errs := dst.Validate(); len(errs) != 0 {
		t.Errorf("combined graph invalid: %v", errs)
	}
}
