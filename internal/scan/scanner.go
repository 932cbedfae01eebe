package scan

import (
	"context"
	"fmt"
	"sort"

	"github.com/bianoble/modresolve/internal/graph"
)

// Scanner executes a batch of scan requests. Every request that succeeds
// yields exactly one Result; every request that fails is reported in the
// returned error as a *RequestError. Requests are independent and may run
// in any order or in parallel.
type Scanner interface {
	Scan(ctx context.Context, reqs []Request) ([]Result, error)
}

// Result is the graph discovered by one request.
type Result struct {
	Request Request
	Graph   *graph.Graph
}

// Group builds the versioned graph map keyed by originating module.
func Group(results []Result) graph.Versioned {
	out := make(graph.Versioned)
	for _, r := range results {
		out[r.Request.Module] = append(out[r.Request.Module], r.Graph)
	}
	return out
}

// RequestError reports a failed (module, configuration) scan.
type RequestError struct {
	Module      graph.ModuleID
	CommandLine string
	Err         error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("scanning %s with [%s]: %s", e.Module, e.CommandLine, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func requestError(req Request, err error) *RequestError {
	return &RequestError{Module: req.Module, CommandLine: req.CommandLine, Err: err}
}

// Registry maps scanner mode names to Scanner implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry creates a new empty scanner registry.
func NewRegistry() *Registry {
	return &Registry{scanners: make(map[string]Scanner)}
}

// Register adds a scanner for the given mode.
func (r *Registry) Register(mode string, s Scanner) {
	r.scanners[mode] = s
}

// Get returns the scanner for the given mode.
func (r *Registry) Get(mode string) (Scanner, error) {
	s, ok := r.scanners[mode]
	if !ok {
		return nil, fmt.Errorf("unknown scanner mode '%s' — supported modes: %s", mode, r.supportedModes())
	}
	return s, nil
}

func (r *Registry) supportedModes() string {
	modes := make([]string, 0, len(r.scanners))
	for m := range r.scanners {
		modes = append(modes, m)
	}
	if len(modes) == 0 {
		return "(none registered)"
	}
	sort.Strings(modes)
	return fmt.Sprintf("%v", modes)
}
