package graph

// CombineResult summarizes what Combine changed.
type CombineResult struct {
	Inserted  []ModuleID
	Merged    []ModuleID
	Conflicts []string
}

// Combine folds src into dst. Modules only src describes are inserted as
// copies. Clang modules both describe are combined with MergeClangModules;
// any other shared module gains src's direct dependencies.
func Combine(dst, src *Graph) CombineResult {
	var res CombineResult
	for _, m := range src.Modules() {
		existing, ok := dst.modules[m.ID]
		if !ok {
			dst.modules[m.ID] = m.Clone()
			res.Inserted = append(res.Inserted, m.ID)
			continue
		}

		if m.ID.Kind == KindClang {
			res.Conflicts = append(res.Conflicts, MergeConflicts(existing, m)...)
			if merged := MergeClangModules(existing, m); merged != existing {
				dst.modules[m.ID] = merged
				res.Merged = append(res.Merged, m.ID)
			}
			continue
		}

		if existing.AddDependencies(m.DirectDependencies...) > 0 {
			res.Merged = append(res.Merged, m.ID)
		}
	}
	return res
}
