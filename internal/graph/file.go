package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a file encoding for dependency graphs.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding from a file extension. Anything that is not
// YAML is treated as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

type fileGraph struct {
	MainModuleName string    `json:"mainModuleName" yaml:"main_module_name"`
	Modules        []*Module `json:"modules" yaml:"modules"`
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("dependency graph validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Load reads and validates a dependency graph file.
func Load(path string) (*Graph, error) {
	g, err := Read(path)
	if err != nil {
		return nil, err
	}

	if errs := g.Validate(); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return g, nil
}

// Read reads a dependency graph file without validating it.
func Read(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dependency graph %s: %w", path, err)
	}

	g, err := Decode(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("parsing dependency graph %s: %w", path, err)
	}
	return g, nil
}

// Decode parses an encoded graph without validating it. Duplicate module
// identifiers are rejected.
func Decode(data []byte, format Format) (*Graph, error) {
	var fg fileGraph
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &fg); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &fg); err != nil {
			return nil, err
		}
	}

	g := New(fg.MainModuleName)
	for i, m := range fg.Modules {
		if m == nil {
			return nil, fmt.Errorf("modules[%d]: empty module entry", i)
		}
		if err := g.Insert(m); err != nil {
			return nil, fmt.Errorf("modules[%d]: %w", i, err)
		}
	}
	return g, nil
}

// Encode renders g in the given format with modules in identifier order.
func Encode(g *Graph, format Format) ([]byte, error) {
	fg := fileGraph{MainModuleName: g.MainModuleName, Modules: g.Modules()}
	if format == FormatYAML {
		return yaml.Marshal(&fg)
	}
	data, err := json.MarshalIndent(&fg, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Save writes a graph atomically using a temp file and rename.
func Save(path string, g *Graph) error {
	data, err := Encode(g, FormatFor(path))
	if err != nil {
		return fmt.Errorf("marshaling dependency graph: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing temp dependency graph %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming temp dependency graph to %s: %w", path, err)
	}

	return nil
}
