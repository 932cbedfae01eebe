package scan

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/bianoble/modresolve/internal/cache"
)

// ExecScanner runs one scanner process per request, several at a time.
type ExecScanner struct {
	// Command is the command template; see CommandTemplate.
	Command string
	// Parallelism bounds concurrent processes. Zero or less means one.
	Parallelism int
	// Timeout bounds each process. Zero means no timeout.
	Timeout time.Duration
	Env     map[string]string
	Runner  Runner
	// Cache, when set, serves outputs of earlier runs and stores new ones.
	Cache  *cache.Cache
	Logger *log.Logger
}

// Scan runs every request. A failed request does not stop the others.
func (s *ExecScanner) Scan(ctx context.Context, reqs []Request) ([]Result, error) {
	tmpl, err := ParseCommand(s.Command)
	if err != nil {
		return nil, err
	}

	limit := s.Parallelism
	if limit <= 0 {
		limit = 1
	}

	var (
		g       errgroup.Group
		mu      sync.Mutex
		errs    *multierror.Error
		results = make([]*Result, len(reqs))
	)
	g.SetLimit(limit)

	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			res, err := s.scanOne(ctx, tmpl, req)
			if err != nil {
				mu.Lock()
				errs = multierror.Append(errs, requestError(req, err))
				mu.Unlock()
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Result, 0, len(reqs))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, errs.ErrorOrNil()
}

func (s *ExecScanner) scanOne(ctx context.Context, tmpl *CommandTemplate, req Request) (*Result, error) {
	logger := s.logger().With("module", req.Module.Name, "args", req.CommandLine)
	key := s.cacheKey(req)

	if s.Cache != nil {
		data, found, err := s.Cache.Get(key)
		if err != nil {
			logger.Warn("ignoring unreadable cache entry", "key", key, "error", err)
		} else if found {
			g, err := decodeOutput(req, data)
			if err == nil {
				logger.Debug("reusing cached scan output", "key", key)
				return &Result{Request: req, Graph: g}, nil
			}
			logger.Warn("ignoring invalid cache entry", "key", key, "error", err)
		}
	}

	argv, err := tmpl.Argv(requestData(req))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	// A leftover output must not pass for this run's result.
	if err := os.Remove(req.OutputPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("removing stale scan output: %w", err)
	}

	runCtx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	logger.Debug("running scanner", "argv", argv)
	start := time.Now()
	if err := s.runner().Run(runCtx, argv, envList(s.Env)); err != nil {
		return nil, err
	}

	g, data, err := readOutput(req)
	if err != nil {
		return nil, err
	}
	logger.Debug("scan complete", "modules", g.Len(), "elapsed", time.Since(start))

	if s.Cache != nil {
		if err := s.Cache.Put(key, data); err != nil {
			logger.Warn("caching scan output failed", "key", key, "error", err)
		}
	}
	return &Result{Request: req, Graph: g}, nil
}

// cacheKey extends the request key with a digest of the command template
// and environment, so a reconfigured scanner never reuses older outputs.
func (s *ExecScanner) cacheKey(req Request) string {
	h := sha256.New()
	io.WriteString(h, s.Command)
	for _, kv := range envList(s.Env) {
		h.Write([]byte{0})
		io.WriteString(h, kv)
	}
	return req.Key() + "-" + hex.EncodeToString(h.Sum(nil)[:8])
}

func (s *ExecScanner) runner() Runner {
	if s.Runner != nil {
		return s.Runner
	}
	return ExecRunner{}
}

func (s *ExecScanner) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.New(io.Discard)
}
