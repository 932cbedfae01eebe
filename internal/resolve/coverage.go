package resolve

import (
	"slices"

	"github.com/bianoble/modresolve/internal/graph"
)

// RecordCoverage adds every needed configuration to the captured set of its
// module and returns how many were new. Call it only after the rescanned
// graphs have been reconciled into g.
func RecordCoverage(g *graph.Graph, needed Needed) (int, error) {
	ids := make([]graph.ModuleID, 0, len(needed))
	for id := range needed {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, graph.CompareIDs)

	added := 0
	for _, id := range ids {
		m, err := g.Lookup(id)
		if err != nil {
			return added, err
		}
		if m.Details.Clang == nil {
			graph.Violate("cannot record configurations for non-clang module %s", id)
		}
		added += m.Details.Clang.CapturedConfigurations.Union(needed[id])
	}
	return added, nil
}
