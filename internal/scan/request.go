// Package scan turns pending configurations into dependency-scan requests
// and runs them through an external scanner.
package scan

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"slices"
	"strings"

	"github.com/apparentlymart/go-shquot/shquot"

	"github.com/bianoble/modresolve/internal/graph"
)

// Request asks the scanner to rescan one binary-interface module under one
// configuration.
type Request struct {
	Module graph.ModuleID
	Args   graph.ArgList
	// CommandLine is Args rendered as a POSIX shell command line.
	CommandLine string
	// OutputPath is where the scanner writes the resulting graph. It is
	// unique per (module, configuration) and stable across runs.
	OutputPath string
}

// Key identifies the (module, configuration) pair.
func (r Request) Key() string {
	return requestKey(r.Module, r.Args)
}

// requestKey is a readable name prefix followed by a digest of the full
// module identity and argument list. The prefix alone is lossy.
func requestKey(module graph.ModuleID, args graph.ArgList) string {
	sum := sha256.Sum256([]byte(module.String() + "\x00" + args.Key()))
	return fileSafe(module.Name) + "-" + hex.EncodeToString(sum[:16])
}

// RenderCommandLine quotes args for a POSIX shell.
func RenderCommandLine(args graph.ArgList) string {
	if len(args) == 0 {
		return ""
	}
	return shquot.POSIXShell(args)
}

// OutputPath returns the output location for module under args.
func OutputPath(stagingDir string, module graph.ModuleID, args graph.ArgList) string {
	return filepath.Join(stagingDir, requestKey(module, args)+".json")
}

// BuildRequests flattens the pending configurations into one request per
// (module, configuration), ordered by module then command line.
func BuildRequests(needed map[graph.ModuleID]graph.ArgSet, stagingDir string) []Request {
	var reqs []Request
	for id, set := range needed {
		for _, args := range set.Lists() {
			reqs = append(reqs, Request{
				Module:      id,
				Args:        args,
				CommandLine: RenderCommandLine(args),
				OutputPath:  OutputPath(stagingDir, id, args),
			})
		}
	}
	slices.SortFunc(reqs, func(a, b Request) int {
		if c := strings.Compare(a.Module.Name, b.Module.Name); c != 0 {
			return c
		}
		return strings.Compare(a.CommandLine, b.CommandLine)
	})
	return reqs
}

func fileSafe(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, name)
}
