package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-multierror"

	"github.com/bianoble/modresolve/internal/graph"
	"github.com/bianoble/modresolve/internal/scan"
	"github.com/bianoble/modresolve/internal/staging"
)

// Engine runs resolution passes.
type Engine struct {
	Scanner scan.Scanner
	// StagingDir receives scanner outputs. Empty means staging.DefaultDir().
	StagingDir string
	Logger     *log.Logger
	Metrics    *Metrics
}

// Resolve runs one pass over g: it collects the configurations each
// binary-interface module is still missing, rescans them, reconciles the
// results into g and records the new coverage.
//
// If any rescan fails the pass stops before g is modified, and the error
// names every failed (module, configuration) pair.
func (e *Engine) Resolve(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	start := time.Now()
	res, err := e.resolve(ctx, g, opts)
	e.Metrics.observePass(time.Since(start).Seconds(), err)
	return res, err
}

func (e *Engine) resolve(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	logger := e.logger()

	needed, err := Collect(g)
	if err != nil {
		return nil, fmt.Errorf("collecting configurations: %w", err)
	}

	dir := e.StagingDir
	if dir == "" {
		dir = staging.DefaultDir()
	}
	reqs := scan.BuildRequests(needed, dir)
	result := &Result{Needed: needed, Requests: reqs, DryRun: opts.DryRun}

	if len(reqs) == 0 {
		logger.Info("dependency graph is up to date", "modules", g.Len())
		return result, nil
	}
	logger.Info("rescans required", "modules", len(needed), "requests", len(reqs))
	if opts.DryRun {
		return result, nil
	}
	if e.Scanner == nil {
		return nil, errors.New("no scanner configured")
	}

	if _, err := staging.Prepare(dir); err != nil {
		return nil, err
	}
	results, scanErr := e.Scanner.Scan(ctx, reqs)
	if scanErr == nil {
		scanErr = checkResults(reqs, results)
	}
	e.Metrics.observeScan(len(reqs), countErrors(scanErr))
	if scanErr != nil {
		return nil, fmt.Errorf("rescanning binary-interface modules: %w", scanErr)
	}

	rec, err := Reconcile(g, scan.Group(results))
	if err != nil {
		return nil, fmt.Errorf("reconciling rescanned graphs: %w", err)
	}
	captured, err := RecordCoverage(g, needed)
	if err != nil {
		return nil, fmt.Errorf("recording captured configurations: %w", err)
	}
	e.Metrics.observeReconcile(rec, captured)

	result.Inserted = rec.Inserted
	result.EdgesAdded = rec.EdgesAdded
	result.Captured = captured
	logger.Info("dependency graph updated",
		"inserted", len(rec.Inserted),
		"edges", rec.EdgesAdded,
		"captured", captured)
	return result, nil
}

// checkResults verifies that every request produced exactly one result and
// that no result answers a request that was never made.
func checkResults(reqs []scan.Request, results []scan.Result) error {
	pending := make(map[string]scan.Request, len(reqs))
	for _, req := range reqs {
		pending[req.Key()] = req
	}

	var errs *multierror.Error
	for _, r := range results {
		key := r.Request.Key()
		if _, ok := pending[key]; !ok {
			errs = multierror.Append(errs, &scan.RequestError{
				Module:      r.Request.Module,
				CommandLine: r.Request.CommandLine,
				Err:         errors.New("unexpected or duplicate scan result"),
			})
			continue
		}
		delete(pending, key)
	}
	for _, req := range reqs {
		if _, ok := pending[req.Key()]; ok {
			errs = multierror.Append(errs, &scan.RequestError{
				Module:      req.Module,
				CommandLine: req.CommandLine,
				Err:         errors.New("scanner produced no result"),
			})
		}
	}
	return errs.ErrorOrNil()
}

func countErrors(err error) int {
	if err == nil {
		return 0
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		return len(merr.Errors)
	}
	return 1
}

// Check validates g and reports the configurations still awaiting a rescan
// without running a scanner.
func (e *Engine) Check(g *graph.Graph) (*CheckResult, error) {
	result := &CheckResult{Clean: true}
	if problems := g.Validate(); len(problems) > 0 {
		result.Clean = false
		result.Problems = problems
		return result, nil
	}

	needed, err := Collect(g)
	if err != nil {
		return nil, err
	}
	result.Pending = needed
	if len(needed) > 0 {
		result.Clean = false
	}
	return result, nil
}

func (e *Engine) logger() *log.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return log.New(io.Discard)
}
