package graph

import (
	"fmt"
	"slices"
)

// Graph maps module identifiers to module descriptions. It holds at most one
// description per identifier. A Graph is not safe for concurrent mutation.
type Graph struct {
	MainModuleName string
	modules        map[ModuleID]*Module
}

// Versioned maps a binary-interface module to the graphs obtained by
// rescanning it under each newly required configuration.
type Versioned map[ModuleID][]*Graph

// New creates an empty graph for the given main module.
func New(mainModuleName string) *Graph {
	return &Graph{
		MainModuleName: mainModuleName,
		modules:        make(map[ModuleID]*Module),
	}
}

// MainModuleID returns the identifier of the main (source) module.
func (g *Graph) MainModuleID() ModuleID {
	return Source(g.MainModuleName)
}

// Has reports whether the graph describes id.
func (g *Graph) Has(id ModuleID) bool {
	_, ok := g.modules[id]
	return ok
}

// Lookup returns the description of id, or a *MissingModuleError.
func (g *Graph) Lookup(id ModuleID) (*Module, error) {
	m, ok := g.modules[id]
	if !ok {
		return nil, &MissingModuleError{Module: id}
	}
	return m, nil
}

// Insert adds m to the graph. It fails if the graph already describes m.ID.
func (g *Graph) Insert(m *Module) error {
	if _, ok := g.modules[m.ID]; ok {
		return fmt.Errorf("module %s is already in the dependency graph", m.ID)
	}
	m.normalize()
	g.modules[m.ID] = m
	return nil
}

// Update replaces the description of m.ID. It fails if the graph does not
// describe m.ID yet.
func (g *Graph) Update(m *Module) error {
	if _, ok := g.modules[m.ID]; !ok {
		return &MissingModuleError{Module: m.ID}
	}
	m.normalize()
	g.modules[m.ID] = m
	return nil
}

// Len returns the number of described modules.
func (g *Graph) Len() int { return len(g.modules) }

// IDs returns every described identifier in sorted order.
func (g *Graph) IDs() []ModuleID {
	ids := make([]ModuleID, 0, len(g.modules))
	for id := range g.modules {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, CompareIDs)
	return ids
}

// Modules returns every description in identifier order.
func (g *Graph) Modules() []*Module {
	ids := g.IDs()
	out := make([]*Module, len(ids))
	for i, id := range ids {
		out[i] = g.modules[id]
	}
	return out
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	out := New(g.MainModuleName)
	for id, m := range g.modules {
		out.modules[id] = m.Clone()
	}
	return out
}

// Validate checks the graph for structural problems. It returns a list of
// messages, empty when the graph is valid.
func (g *Graph) Validate() []string {
	var errs []string

	if g.MainModuleName == "" {
		errs = append(errs, "main module name is required")
	} else if !g.Has(g.MainModuleID()) {
		errs = append(errs, fmt.Sprintf("main module %s is not described in the graph", g.MainModuleID()))
	}

	for _, m := range g.Modules() {
		if !m.ID.Kind.Valid() {
			errs = append(errs, fmt.Sprintf("module %s: unknown kind '%s'", m.ID, m.ID.Kind))
			continue
		}
		if m.ID.Kind == KindPlaceholder {
			errs = append(errs, fmt.Sprintf("module %s: unresolved placeholder — placeholders must be resolved before dependency resolution", m.ID))
		}
		if !m.detailsMatchKind() {
			errs = append(errs, fmt.Sprintf("module %s: details do not match module kind '%s'", m.ID, m.ID.Kind))
		}
		for _, dep := range m.DirectDependencies {
			if dep.Kind == KindPlaceholder {
				errs = append(errs, fmt.Sprintf("module %s: depends on unresolved placeholder %s", m.ID, dep))
				continue
			}
			if !g.Has(dep) {
				errs = append(errs, fmt.Sprintf("module %s: dependency %s is missing from the graph", m.ID, dep))
			}
		}
	}

	return errs
}
