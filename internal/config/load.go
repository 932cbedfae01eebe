package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/bianoble/modresolve/internal/scan"
)

// Load reads, defaults and validates a configuration file.
func Load(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	if errs := Validate(cfg); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return cfg, nil
}

// read parses a configuration file without defaulting or validating it.
func read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := Parse(data, isTOML(path))
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a configuration document, TOML if asTOML is set and YAML
// otherwise.
func Parse(data []byte, asTOML bool) (*Config, error) {
	var cfg Config
	if asTOML {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// ApplyDefaults fills in unset fields.
func ApplyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Scanner.Mode == "" {
		cfg.Scanner.Mode = ModeExec
	}
	if cfg.Scanner.Parallelism == 0 {
		cfg.Scanner.Parallelism = runtime.NumCPU()
	}
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a Config for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(cfg *Config) []string {
	var errs []string

	if cfg.Version != 1 {
		errs = append(errs, fmt.Sprintf("unsupported version %d — only version 1 is supported", cfg.Version))
	}

	if cfg.LogLevel != "" {
		if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
			errs = append(errs, fmt.Sprintf("invalid log_level '%s' — must be one of: debug, info, warn, error, fatal", cfg.LogLevel))
		}
	}

	return append(errs, validateScanner(cfg.Scanner)...)
}

func validateScanner(s Scanner) []string {
	var errs []string
	const prefix = "scanner"

	switch s.Mode {
	case ModeExec:
		if s.Command != "" && !strings.Contains(s.Command, ".Output") {
			errs = append(errs, fmt.Sprintf("%s: mode 'exec' requires the command to reference {{ .Output }}", prefix))
		}
	case ModeBatch:
		if s.Command != "" && !strings.Contains(s.Command, ".Batch") {
			errs = append(errs, fmt.Sprintf("%s: mode 'batch' requires the command to reference {{ .Batch }}", prefix))
		}
	case "":
		errs = append(errs, fmt.Sprintf("%s: 'mode' is required — must be one of: exec, batch", prefix))
	default:
		errs = append(errs, fmt.Sprintf("%s: unknown mode '%s' — must be one of: exec, batch", prefix, s.Mode))
	}

	if s.Command == "" {
		errs = append(errs, fmt.Sprintf("%s: 'command' is required — add 'command: <scanner invocation>' to the scanner section", prefix))
	} else if _, err := scan.ParseCommand(s.Command); err != nil {
		errs = append(errs, fmt.Sprintf("%s: %s", prefix, err))
	}

	if s.Parallelism < 0 {
		errs = append(errs, fmt.Sprintf("%s: 'parallelism' must not be negative, got %d", prefix, s.Parallelism))
	}

	if s.Timeout != "" {
		if d, err := time.ParseDuration(s.Timeout); err != nil || d < 0 {
			errs = append(errs, fmt.Sprintf("%s: invalid timeout '%s' — use a duration such as '90s' or '2m'", prefix, s.Timeout))
		}
	}

	keys := make([]string, 0, len(s.Env))
	for k := range s.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == "" || strings.Contains(k, "=") {
			errs = append(errs, fmt.Sprintf("%s: invalid environment variable name '%s'", prefix, k))
		}
	}

	return errs
}

// TimeoutDuration returns the parsed scanner timeout, zero when unset.
func (s Scanner) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(s.Timeout)
	return d
}
