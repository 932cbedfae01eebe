// Package resolve refines a module dependency graph so that it covers every
// configuration its binary-interface modules are compiled under. A pass
// collects the configurations that reach each binary-interface module,
// rescans the ones not yet captured, folds the results back into the graph,
// and records the new coverage.
package resolve

import (
	"fmt"

	"github.com/bianoble/modresolve/internal/graph"
)

// Needed maps a binary-interface module to the configurations it still has
// to be scanned under.
type Needed map[graph.ModuleID]graph.ArgSet

// Requests returns the total number of (module, configuration) pairs.
func (n Needed) Requests() int {
	total := 0
	for _, set := range n {
		total += set.Len()
	}
	return total
}

// Collect walks the graph depth-first from its main module and returns,
// for every reachable binary-interface module, the configurations that reach
// it along some path and are not yet captured.
//
// Each path carries its own accumulated set: a source module adds its extra
// arguments for its own subtree only. Traversal stops at binary-interface
// modules and passes through prebuilt modules unchanged. A placeholder
// anywhere on the walk panics with *graph.InvariantViolation.
func Collect(g *graph.Graph) (Needed, error) {
	c := &collector{
		g:       g,
		needed:  make(Needed),
		visited: make(map[visitKey]bool),
	}
	if err := c.visit(g.MainModuleID(), nil, graph.NewArgSet()); err != nil {
		return nil, err
	}
	return c.needed, nil
}

type visitKey struct {
	id    graph.ModuleID
	state string
}

type collector struct {
	g      *graph.Graph
	needed Needed
	// visited memoizes (module, accumulated set) states. A repeated state
	// cannot contribute anything new.
	visited map[visitKey]bool
}

// visit processes id reached with path. The callee never mutates path.
func (c *collector) visit(id graph.ModuleID, from *graph.ModuleID, path graph.ArgSet) error {
	if id.Kind == graph.KindPlaceholder {
		graph.Violate("unresolved placeholder %s reached during dependency resolution", id)
	}

	key := visitKey{id: id, state: path.StateKey()}
	if c.visited[key] {
		return nil
	}
	c.visited[key] = true

	m, err := c.g.Lookup(id)
	if err != nil {
		return &graph.MissingModuleError{Module: id, Dependent: from}
	}

	switch id.Kind {
	case graph.KindSource:
		if m.Details.Source == nil {
			return fmt.Errorf("module %s has no source details", id)
		}
		next := path.Clone()
		next.Add(m.Details.Source.ExtraArgs)
		return c.visitDependencies(m, next)

	case graph.KindClang:
		if m.Details.Clang == nil {
			return fmt.Errorf("module %s has no binary-interface details", id)
		}
		pending := path.Difference(m.Details.Clang.CapturedConfigurations)
		if pending.Len() == 0 {
			return nil
		}
		if existing, ok := c.needed[id]; ok {
			existing.Union(pending)
		} else {
			c.needed[id] = pending
		}
		return nil

	case graph.KindPrebuilt:
		return c.visitDependencies(m, path)
	}

	graph.Violate("module %s has unknown kind '%s'", id, id.Kind)
	return nil
}

func (c *collector) visitDependencies(m *graph.Module, path graph.ArgSet) error {
	for _, dep := range m.DirectDependencies {
		if err := c.visit(dep, &m.ID, path); err != nil {
			return err
		}
	}
	return nil
}
