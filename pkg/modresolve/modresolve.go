// Package modresolve provides the public Go library API for modresolve.
//
// modresolve refines a module dependency graph so that every
// binary-interface module is scanned under each configuration it is
// compiled with. This package exposes a Client for embedding resolution
// passes in other Go programs.
//
// # Basic Usage
//
//	client, err := modresolve.New(modresolve.Options{
//	    ConfigPath: "modresolve.yaml",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Run one pass over a graph file and write the result back
//	result, err := client.ResolveFile(ctx, "deps.json", "", modresolve.ResolveOptions{})
//
//	// Report what is still missing without scanning
//	checkResult, err := client.Check(g)
package modresolve

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bianoble/modresolve/internal/config"
	"github.com/bianoble/modresolve/internal/graph"
	"github.com/bianoble/modresolve/internal/resolve"
)

// Resolver runs resolution passes over a graph.
type Resolver interface {
	Resolve(ctx context.Context, g *Graph, opts ResolveOptions) (*Result, error)
}

// Checker reports structural problems and uncovered configurations.
type Checker interface {
	Check(g *Graph) (*CheckResult, error)
}

// Options configures a modresolve client.
type Options struct {
	// ConfigPath is the project config file. Default: "modresolve.yaml".
	ConfigPath string

	// SystemConfigPath overrides the system-level config path (for testing).
	SystemConfigPath string

	// UserConfigPath overrides the user-level config path (for testing).
	UserConfigPath string

	// NoInherit disables system and user config inheritance.
	NoInherit bool

	// Scanner replaces the scanner the config would select.
	Scanner Scanner

	// Logger receives diagnostics. Nil discards them.
	Logger *log.Logger

	// Registerer, when set, receives the resolution metrics.
	Registerer prometheus.Registerer
}

// Client is the main entry point for the modresolve library.
// It implements Resolver and Checker.
type Client struct {
	engine *resolve.Engine
	config *config.Config
	layers []config.ConfigLayerInfo
}

// New creates a new modresolve Client from the layered configuration.
func New(opts Options) (*Client, error) {
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.ConfigFileName
	}

	hr, err := config.LoadHierarchical(config.HierarchicalOptions{
		ProjectPath:      opts.ConfigPath,
		SystemConfigPath: opts.SystemConfigPath,
		UserConfigPath:   opts.UserConfigPath,
		NoInherit:        opts.NoInherit,
	})
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", opts.ConfigPath, err)
	}
	cfg := hr.Config

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := opts.Scanner
	if s == nil {
		if s, err = config.NewScanner(cfg, logger); err != nil {
			return nil, err
		}
	}

	var metrics *resolve.Metrics
	if opts.Registerer != nil {
		metrics = resolve.NewMetrics(opts.Registerer)
	}

	return &Client{
		engine: &resolve.Engine{
			Scanner:    s,
			StagingDir: cfg.StagingDirectory(),
			Logger:     logger,
			Metrics:    metrics,
		},
		config: cfg,
		layers: hr.Layers,
	}, nil
}

// Config returns the effective configuration.
func (c *Client) Config() config.Config {
	return *c.config
}

// Layers reports which config files were consulted.
func (c *Client) Layers() []config.ConfigLayerInfo {
	return c.layers
}

// Resolve runs one resolution pass over g, modifying it in place.
func (c *Client) Resolve(ctx context.Context, g *Graph, opts ResolveOptions) (*Result, error) {
	return c.engine.Resolve(ctx, g, opts)
}

// ResolveFile loads the graph at path, runs one pass, and writes the graph
// to out (or back to path when out is empty). Nothing is written on a dry
// run or when the pass fails.
func (c *Client) ResolveFile(ctx context.Context, path, out string, opts ResolveOptions) (*Result, error) {
	g, err := graph.Load(path)
	if err != nil {
		return nil, err
	}

	result, err := c.engine.Resolve(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	if opts.DryRun {
		return result, nil
	}

	if out == "" {
		out = path
	}
	if err := graph.Save(out, g); err != nil {
		return nil, fmt.Errorf("saving dependency graph: %w", err)
	}
	return result, nil
}

// Check reports structural problems in g and the configurations a
// resolution pass would still rescan. g is not modified.
func (c *Client) Check(g *Graph) (*CheckResult, error) {
	return c.engine.Check(g)
}
