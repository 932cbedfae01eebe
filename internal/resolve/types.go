package resolve

import (
	"github.com/bianoble/modresolve/internal/graph"
	"github.com/bianoble/modresolve/internal/scan"
)

// Options configures a resolution pass.
type Options struct {
	// DryRun stops after the rescan requests are built. The graph is not
	// modified and no scanner runs.
	DryRun bool
}

// Result holds the outcome of a resolution pass.
type Result struct {
	Needed     Needed
	Requests   []scan.Request
	Inserted   []graph.ModuleID
	EdgesAdded int
	// Captured counts configurations newly recorded as captured.
	Captured int
	DryRun   bool
}

// UpToDate reports whether the pass found nothing to rescan.
func (r *Result) UpToDate() bool {
	return len(r.Requests) == 0
}

// CheckResult holds the outcome of a check.
type CheckResult struct {
	Clean    bool
	Problems []string
	Pending  Needed
}
