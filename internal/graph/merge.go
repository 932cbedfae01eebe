package graph

import (
	"fmt"
	"slices"
)

// MergeClangModules combines two descriptions of the same binary-interface
// module built under different configurations.
//
// When source files, direct dependencies and captured configurations agree
// (as sets) the first argument is returned as is. Otherwise the result holds
// the union of those three fields; every other field comes from first.
// Neither argument is modified.
//
// Both arguments must be clang modules; anything else panics with an
// *InvariantViolation.
func MergeClangModules(first, second *Module) *Module {
	if first.ID.Kind != KindClang || first.Details.Clang == nil {
		Violate("cannot merge %s: not a binary-interface module", first.ID)
	}
	if second.ID.Kind != KindClang || second.Details.Clang == nil {
		Violate("cannot merge %s: not a binary-interface module", second.ID)
	}

	a, b := first.Details.Clang, second.Details.Clang
	if sameElements(first.SourceFiles, second.SourceFiles) &&
		sameElements(first.DirectDependencies, second.DirectDependencies) &&
		a.CapturedConfigurations.Equal(b.CapturedConfigurations) {
		return first
	}

	merged := first.Clone()
	merged.SourceFiles = unionInOrder(merged.SourceFiles, second.SourceFiles)
	merged.DirectDependencies = unionInOrder(merged.DirectDependencies, second.DirectDependencies)
	merged.Details.Clang.CapturedConfigurations.Union(b.CapturedConfigurations)
	return merged
}

// MergeConflicts describes the fields MergeClangModules silently takes from
// its first argument when the two descriptions disagree on them.
func MergeConflicts(first, second *Module) []string {
	a, b := first.Details.Clang, second.Details.Clang
	if a == nil || b == nil {
		return nil
	}
	var out []string
	if a.ModuleMapPath != b.ModuleMapPath {
		out = append(out, fmt.Sprintf("%s: module map path differs (%q vs %q)", first.ID, a.ModuleMapPath, b.ModuleMapPath))
	}
	if a.ContextHash != b.ContextHash {
		out = append(out, fmt.Sprintf("%s: context hash differs (%q vs %q)", first.ID, a.ContextHash, b.ContextHash))
	}
	if !slices.Equal(a.CommandLine, b.CommandLine) {
		out = append(out, fmt.Sprintf("%s: command line differs", first.ID))
	}
	return out
}

func sameElements[T comparable](a, b []T) bool {
	as := make(map[T]struct{}, len(a))
	for _, v := range a {
		as[v] = struct{}{}
	}
	bs := make(map[T]struct{}, len(b))
	for _, v := range b {
		if _, ok := as[v]; !ok {
			return false
		}
		bs[v] = struct{}{}
	}
	return len(as) == len(bs)
}

// unionInOrder returns dst's distinct elements followed by the elements of
// src not yet seen.
func unionInOrder[T comparable](dst, src []T) []T {
	seen := make(map[T]struct{}, len(dst)+len(src))
	out := make([]T, 0, len(dst)+len(src))
	for _, list := range [][]T{dst, src} {
		for _, v := range list {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
