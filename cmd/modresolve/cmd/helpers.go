package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/bianoble/modresolve/internal/config"
	"github.com/bianoble/modresolve/internal/graph"
	"github.com/bianoble/modresolve/internal/scan"
)

// overrides carries MODRESOLVE_* environment variables and bound flags.
var overrides *viper.Viper

// loadConfig loads the layered configuration and applies overrides.
func loadConfig() (*config.HierarchicalResult, error) {
	res, err := config.LoadHierarchical(config.HierarchicalOptions{
		ProjectPath: configPath,
		NoInherit:   config.EnvNoInherit(),
	})
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", configPath, err)
	}
	if err := config.ApplyOverrides(res.Config, overrides); err != nil {
		return nil, err
	}
	return res, nil
}

// newLogger builds the diagnostic logger. --verbose and --quiet win over the
// configured level.
func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "modresolve",
	})
	lvl := log.WarnLevel
	if parsed, err := log.ParseLevel(level); err == nil && level != "" {
		lvl = parsed
	}
	switch {
	case verbose:
		lvl = log.DebugLevel
	case quiet:
		lvl = log.ErrorLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// commandLogger builds a logger for commands that run without a config file.
func commandLogger() *log.Logger {
	return newLogger(overrides.GetString(config.KeyLogLevel))
}

// stagingDir returns the configured staging directory.
func stagingDir(cfg *config.Config) string {
	return cfg.StagingDirectory()
}

// cacheDir returns the configured cache directory.
func cacheDir(cfg *config.Config) string {
	return cfg.CacheDirectory()
}

// newScanner creates the scanner selected by the config.
func newScanner(cfg *config.Config, logger *log.Logger) (scan.Scanner, error) {
	return config.NewScanner(cfg, logger)
}

// loadGraph reads a dependency graph file.
func loadGraph(path string) (*graph.Graph, error) {
	g, err := graph.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading dependency graph %s: %w", path, err)
	}
	return g, nil
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbose {
		fmt.Printf("  "+format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}

func humanSize(bytes int64) string {
	if bytes == 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	size := float64(bytes)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d B", bytes)
	}
	return fmt.Sprintf("%.1f %s", size, units[i])
}
