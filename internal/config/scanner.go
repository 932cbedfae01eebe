package config

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/bianoble/modresolve/internal/cache"
	"github.com/bianoble/modresolve/internal/scan"
	"github.com/bianoble/modresolve/internal/staging"
)

// StagingDirectory returns the configured staging directory, or the default
// when none is set.
func (c *Config) StagingDirectory() string {
	if c.StagingDir != "" {
		return c.StagingDir
	}
	return staging.DefaultDir()
}

// CacheDirectory returns the configured cache directory, or the default when
// none is set.
func (c *Config) CacheDirectory() string {
	if c.CacheDir != "" {
		return c.CacheDir
	}
	return cache.DefaultDir()
}

// NewScanner builds the scanner selected by Scanner.Mode. An unknown mode is
// an error naming the supported ones.
func NewScanner(cfg *Config, logger *log.Logger) (scan.Scanner, error) {
	var c *cache.Cache
	if cfg.Reuse() {
		var err error
		if c, err = cache.New(cfg.CacheDirectory()); err != nil {
			return nil, fmt.Errorf("initializing cache: %w", err)
		}
	}

	sc := cfg.Scanner
	reg := scan.NewRegistry()
	reg.Register(ModeExec, &scan.ExecScanner{
		Command:     sc.Command,
		Parallelism: sc.Parallelism,
		Timeout:     sc.TimeoutDuration(),
		Env:         sc.Env,
		Cache:       c,
		Logger:      logger,
	})
	reg.Register(ModeBatch, &scan.BatchScanner{
		Command:    sc.Command,
		StagingDir: cfg.StagingDirectory(),
		Timeout:    sc.TimeoutDuration(),
		Env:        sc.Env,
		Logger:     logger,
	})
	return reg.Get(sc.Mode)
}
