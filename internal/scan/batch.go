package scan

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-multierror"

	"github.com/bianoble/modresolve/internal/staging"
)

// BatchInput is the file handed to a batch scanner. It lists every request
// of the pass.
type BatchInput struct {
	Modules []BatchEntry `json:"modules"`
}

// BatchEntry is one request in a BatchInput.
type BatchEntry struct {
	ModuleName string `json:"clangModuleName"`
	Arguments  string `json:"arguments"`
	Output     string `json:"output"`
}

// BatchScanner hands every request to a single scanner process through a
// batch input file, then collects each request's output.
type BatchScanner struct {
	// Command is the command template; it must reference {{ .Batch }}.
	Command    string
	StagingDir string
	Timeout    time.Duration
	Env        map[string]string
	Runner     Runner
	Logger     *log.Logger
}

// Scan writes the batch input, runs the scanner once, and reads every
// output. A request whose output is missing or invalid fails on its own;
// if the process itself fails, every request fails.
func (s *BatchScanner) Scan(ctx context.Context, reqs []Request) ([]Result, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	tmpl, err := ParseCommand(s.Command)
	if err != nil {
		return nil, err
	}

	input := BatchInput{Modules: make([]BatchEntry, len(reqs))}
	for i, req := range reqs {
		input.Modules[i] = BatchEntry{
			ModuleName: req.Module.Name,
			Arguments:  req.CommandLine,
			Output:     req.OutputPath,
		}
		if err := os.Remove(req.OutputPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("removing stale scan output: %w", err)
		}
	}
	data, err := json.MarshalIndent(&input, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling batch input: %w", err)
	}

	root, err := staging.Prepare(s.StagingDir)
	if err != nil {
		return nil, err
	}
	batchPath, err := staging.ValidatePath(root, batchFileName(reqs))
	if err != nil {
		return nil, err
	}
	if err := staging.SafeWrite(root, batchPath, data, 0644); err != nil {
		return nil, fmt.Errorf("writing batch input: %w", err)
	}

	argv, err := tmpl.Argv(CommandData{Batch: quote(batchPath)})
	if err != nil {
		return nil, err
	}

	runCtx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	logger := s.logger()
	logger.Debug("running batch scanner", "argv", argv, "requests", len(reqs))
	var errs *multierror.Error
	if runErr := s.runner().Run(runCtx, argv, envList(s.Env)); runErr != nil {
		for _, req := range reqs {
			errs = multierror.Append(errs, requestError(req, runErr))
		}
		return nil, errs.ErrorOrNil()
	}

	results := make([]Result, 0, len(reqs))
	for _, req := range reqs {
		g, _, err := readOutput(req)
		if err != nil {
			errs = multierror.Append(errs, requestError(req, err))
			continue
		}
		results = append(results, Result{Request: req, Graph: g})
	}
	return results, errs.ErrorOrNil()
}

// batchFileName derives the batch input name from the request keys so that
// distinct batches never overwrite each other.
func batchFileName(reqs []Request) string {
	h := sha256.New()
	for _, req := range reqs {
		io.WriteString(h, req.Key())
		h.Write([]byte{0})
	}
	return "batch-" + hex.EncodeToString(h.Sum(nil)[:8]) + ".json"
}

func (s *BatchScanner) runner() Runner {
	if s.Runner != nil {
		return s.Runner
	}
	return ExecRunner{}
}

func (s *BatchScanner) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.New(io.Discard)
}
