package resolve

import (
	"slices"

	"github.com/bianoble/modresolve/internal/graph"
)

// ReconcileResult summarizes what a reconciliation changed.
type ReconcileResult struct {
	// Inserted lists modules that were new to the graph, in sorted order.
	Inserted []graph.ModuleID
	// EdgesAdded counts dependency edges added to existing modules.
	EdgesAdded int
}

// Changed reports whether the graph was modified.
func (r *ReconcileResult) Changed() bool {
	return len(r.Inserted) > 0 || r.EdgesAdded > 0
}

// Reconcile folds every versioned graph into g. A module g already describes
// gains the versioned description's direct dependencies; a module g does not
// describe is inserted as a copy. Nothing else about existing modules
// changes, so reconciling the same input twice is a no-op the second time.
//
// Every versioned graph must describe the module it was produced for;
// otherwise Reconcile returns a *graph.MissingModuleError and leaves g
// untouched. A placeholder in a versioned graph panics.
func Reconcile(g *graph.Graph, versioned graph.Versioned) (*ReconcileResult, error) {
	origins := make([]graph.ModuleID, 0, len(versioned))
	for id := range versioned {
		origins = append(origins, id)
	}
	slices.SortFunc(origins, graph.CompareIDs)

	for _, origin := range origins {
		for _, vg := range versioned[origin] {
			if !vg.Has(origin) {
				return nil, &graph.MissingModuleError{Module: origin}
			}
		}
	}

	res := &ReconcileResult{}
	for _, origin := range origins {
		for _, vg := range versioned[origin] {
			for _, m := range vg.Modules() {
				if m.ID.Kind == graph.KindPlaceholder {
					graph.Violate("placeholder %s in the rescanned graph of %s", m.ID, origin)
				}
				existing, err := g.Lookup(m.ID)
				if err != nil {
					if err := g.Insert(m.Clone()); err != nil {
						return nil, err
					}
					res.Inserted = append(res.Inserted, m.ID)
					continue
				}
				res.EdgesAdded += existing.AddDependencies(m.DirectDependencies...)
			}
		}
	}
	slices.SortFunc(res.Inserted, graph.CompareIDs)
	return res, nil
}
