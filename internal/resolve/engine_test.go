package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bianoble/modresolve/internal/graph"
	"github.com/bianoble/modresolve/internal/scan"
)

// fakeScanner answers requests from an in-memory function.
type fakeScanner struct {
	calls [][]scan.Request
	build func(req scan.Request) (*graph.Graph, error)
}

func (f *fakeScanner) Scan(ctx context.Context, reqs []scan.Request) ([]scan.Result, error) {
	f.calls = append(f.calls, reqs)
	var (
		results []scan.Result
		errs    *multierror.Error
	)
	for _, req := range reqs {
		g, err := f.build(req)
		if err != nil {
			errs = multierror.Append(errs, &scan.RequestError{Module: req.Module, CommandLine: req.CommandLine, Err: err})
			continue
		}
		if g != nil {
			results = append(results, scan.Result{Request: req, Graph: g})
		}
	}
	return results, errs.ErrorOrNil()
}

// rescanWithExtraDependency answers every request for module M with a graph
// where M gains a dependency on a new clang module named M_<first arg>.
func rescanWithExtraDependency(t *testing.T) func(req scan.Request) (*graph.Graph, error) {
	return func(req scan.Request) (*graph.Graph, error) {
		name := req.Module.Name
		extra := name + "_" + strings.TrimPrefix(req.Args[0], "-")
		return newGraph(t, name,
			clang(name, nil, graph.Clang(extra)),
			clang(extra, nil),
		), nil
	}
}

func engineGraph(t *testing.T) *graph.Graph {
	return newGraph(t, "A",
		src("A", argsA, graph.Source("B"), graph.Source("C")),
		src("B", argsX, graph.Clang("D")),
		src("C", argsY, graph.Clang("D"), graph.Clang("E")),
		clang("D", graph.NewArgSet(argsA)),
		clang("E", nil),
	)
}

func metricValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		m := mf.GetMetric()[0]
		if c := m.GetCounter(); c != nil {
			return c.GetValue()
		}
		return float64(m.GetHistogram().GetSampleCount())
	}
	t.Fatalf("metric %s not registered", name)
	return 0
}

func TestEngineResolve(t *testing.T) {
	g := engineGraph(t)
	scanner := &fakeScanner{build: rescanWithExtraDependency(t)}
	reg := prometheus.NewRegistry()
	eng := &Engine{Scanner: scanner, StagingDir: t.TempDir(), Metrics: NewMetrics(reg)}

	res, err := eng.Resolve(context.Background(), g, Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// D: x and y (a already captured). E: a and y.
	if len(res.Requests) != 4 {
		t.Fatalf("got %d requests, want 4", len(res.Requests))
	}
	if res.Captured != 4 {
		t.Errorf("Captured = %d, want 4", res.Captured)
	}
	for _, name := range []string{"D_x", "D_y", "E_y"} {
		if !g.Has(graph.Clang(name)) {
			t.Errorf("rescanned dependency %s not inserted", name)
		}
	}
	d, _ := g.Lookup(graph.Clang("D"))
	if d.Details.Clang.CapturedConfigurations.Len() != 3 {
		t.Errorf("D captured %v, want a, x and y", d.Details.Clang.CapturedConfigurations.Lists())
	}

	if got := metricValue(t, reg, "modresolve_scan_requests_total"); got != 4 {
		t.Errorf("scan requests metric = %v, want 4", got)
	}
	if got := metricValue(t, reg, "modresolve_modules_inserted_total"); got != float64(len(res.Inserted)) {
		t.Errorf("modules inserted metric = %v, want %d", got, len(res.Inserted))
	}
}

func TestEngineSecondPassRequestsNothing(t *testing.T) {
	g := engineGraph(t)
	scanner := &fakeScanner{build: rescanWithExtraDependency(t)}
	eng := &Engine{Scanner: scanner, StagingDir: t.TempDir()}

	if _, err := eng.Resolve(context.Background(), g, Options{}); err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	res, err := eng.Resolve(context.Background(), g, Options{})
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if !res.UpToDate() {
		t.Errorf("second pass requested %d rescans", len(res.Requests))
	}
	if len(scanner.calls) != 1 {
		t.Errorf("scanner called %d times, want 1", len(scanner.calls))
	}
}

func TestEngineScanFailureAbortsPass(t *testing.T) {
	g := engineGraph(t)
	before := encodeGraph(t, g)
	ok := rescanWithExtraDependency(t)
	scanner := &fakeScanner{build: func(req scan.Request) (*graph.Graph, error) {
		if req.Module == graph.Clang("E") && req.Args.Equal(argsY) {
			return nil, errors.New("exit status 1")
		}
		return ok(req)
	}}
	reg := prometheus.NewRegistry()
	eng := &Engine{Scanner: scanner, StagingDir: t.TempDir(), Metrics: NewMetrics(reg)}

	_, err := eng.Resolve(context.Background(), g, Options{})
	var re *scan.RequestError
	if !errors.As(err, &re) {
		t.Fatalf("got %v, want *scan.RequestError", err)
	}
	if re.Module != graph.Clang("E") || re.CommandLine != scan.RenderCommandLine(argsY) {
		t.Errorf("failure names %s [%s], want clang:E [y]", re.Module, re.CommandLine)
	}
	if encodeGraph(t, g) != before {
		t.Error("graph modified by a failed pass")
	}
	if got := metricValue(t, reg, "modresolve_pass_errors_total"); got != 1 {
		t.Errorf("pass errors metric = %v, want 1", got)
	}
	if got := metricValue(t, reg, "modresolve_scan_failures_total"); got != 1 {
		t.Errorf("scan failures metric = %v, want 1", got)
	}
}

func TestEngineMissingResultIsAFailure(t *testing.T) {
	g := engineGraph(t)
	before := encodeGraph(t, g)
	ok := rescanWithExtraDependency(t)
	scanner := &fakeScanner{build: func(req scan.Request) (*graph.Graph, error) {
		if req.Module == graph.Clang("D") && req.Args.Equal(argsX) {
			return nil, nil
		}
		return ok(req)
	}}
	eng := &Engine{Scanner: scanner, StagingDir: t.TempDir()}

	_, err := eng.Resolve(context.Background(), g, Options{})
	var re *scan.RequestError
	if !errors.As(err, &re) || re.Module != graph.Clang("D") || re.CommandLine != scan.RenderCommandLine(argsX) {
		t.Fatalf("got %v, want request error for clang:D [x]", err)
	}
	if !strings.Contains(err.Error(), "no result") {
		t.Errorf("error %q does not mention the missing result", err)
	}
	if encodeGraph(t, g) != before {
		t.Error("graph modified by a failed pass")
	}
}

func TestEngineDryRun(t *testing.T) {
	g := engineGraph(t)
	before := encodeGraph(t, g)
	scanner := &fakeScanner{build: func(req scan.Request) (*graph.Graph, error) {
		return nil, fmt.Errorf("scanner must not run")
	}}
	eng := &Engine{Scanner: scanner, StagingDir: t.TempDir()}

	res, err := eng.Resolve(context.Background(), g, Options{DryRun: true})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.DryRun || len(res.Requests) != 4 {
		t.Errorf("DryRun = %v, requests = %d", res.DryRun, len(res.Requests))
	}
	if len(scanner.calls) != 0 {
		t.Errorf("scanner called during dry run")
	}
	if encodeGraph(t, g) != before {
		t.Error("dry run modified the graph")
	}
}

func TestEngineCheck(t *testing.T) {
	eng := &Engine{}

	res, err := eng.Check(engineGraph(t))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Clean || res.Pending.Requests() != 4 {
		t.Errorf("Clean = %v, pending = %d, want false and 4", res.Clean, res.Pending.Requests())
	}

	invalid := newGraph(t, "A", src("A", argsA, graph.Clang("Missing")))
	res, err = eng.Check(invalid)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Clean || len(res.Problems) == 0 {
		t.Errorf("invalid graph reported clean: %+v", res)
	}

	clean := newGraph(t, "A", src("A", argsA, graph.Clang("D")), clang("D", graph.NewArgSet(argsA)))
	res, err = eng.Check(clean)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !res.Clean {
		t.Errorf("fully captured graph reported pending: %+v", res)
	}
}
