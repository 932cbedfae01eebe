// Package graph holds the module dependency graph produced by a dependency
// scan: module identifiers, per-module descriptions, configuration-argument
// sets, and the store that maps one to the other.
package graph

import (
	"fmt"
	"strings"
)

// Kind tags a ModuleID. The set of kinds is closed.
type Kind string

const (
	// KindSource is a module compiled from source in the current language.
	KindSource Kind = "source"
	// KindClang is a binary-interface module built from a module map and
	// parameterized by configuration arguments.
	KindClang Kind = "clang"
	// KindPrebuilt is a source-language module whose binary form already exists.
	KindPrebuilt Kind = "prebuilt"
	// KindPlaceholder is an unresolved reference. It must be gone by the
	// time a graph reaches this package's consumers.
	KindPlaceholder Kind = "placeholder"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSource, KindClang, KindPrebuilt, KindPlaceholder:
		return true
	}
	return false
}

// ModuleID names a module within a graph. IDs compare by (Kind, Name).
type ModuleID struct {
	Kind Kind
	Name string
}

// Source returns the ID of a source module.
func Source(name string) ModuleID { return ModuleID{Kind: KindSource, Name: name} }

// Clang returns the ID of a binary-interface module.
func Clang(name string) ModuleID { return ModuleID{Kind: KindClang, Name: name} }

// Prebuilt returns the ID of a prebuilt external module.
func Prebuilt(name string) ModuleID { return ModuleID{Kind: KindPrebuilt, Name: name} }

// Placeholder returns the ID of an unresolved placeholder.
func Placeholder(name string) ModuleID { return ModuleID{Kind: KindPlaceholder, Name: name} }

func (id ModuleID) String() string {
	return string(id.Kind) + ":" + id.Name
}

// Less orders IDs by name, then kind.
func (id ModuleID) Less(other ModuleID) bool {
	if id.Name != other.Name {
		return id.Name < other.Name
	}
	return id.Kind < other.Kind
}

// CompareIDs is a three-way form of Less for slices.SortFunc.
func CompareIDs(a, b ModuleID) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	}
	return 0
}

// ParseModuleID parses the "kind:name" form produced by String.
func ParseModuleID(s string) (ModuleID, error) {
	kind, name, ok := strings.Cut(s, ":")
	if !ok || name == "" {
		return ModuleID{}, fmt.Errorf("invalid module id %q — expected 'kind:name'", s)
	}
	id := ModuleID{Kind: Kind(kind), Name: name}
	if !id.Kind.Valid() {
		return ModuleID{}, fmt.Errorf("invalid module id %q — unknown kind '%s' (must be one of: source, clang, prebuilt, placeholder)", s, kind)
	}
	return id, nil
}

// MarshalText implements encoding.TextMarshaler.
func (id ModuleID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ModuleID) UnmarshalText(text []byte) error {
	parsed, err := ParseModuleID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
