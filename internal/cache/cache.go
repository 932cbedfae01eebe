// Package cache stores dependency-scan outputs across runs. Entries are
// keyed by scan request (module plus configuration hash), written once, and
// verified against a recorded SHA256 digest before use.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const sumSuffix = ".sha256"

// Cache provides write-once storage for scan outputs.
type Cache struct {
	dir string
}

// New creates a Cache at the given directory.
// The directory is created if it does not exist.
func New(dir string) (*Cache, error) {
	objDir := filepath.Join(dir, "objects")
	if err := os.MkdirAll(objDir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory %s: %w", objDir, err)
	}
	return &Cache{dir: dir}, nil
}

// DefaultDir returns the default cache directory.
// Uses XDG_CACHE_HOME if set, otherwise ~/.cache/modresolve.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "modresolve")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		if runtime.GOOS == "windows" {
			return filepath.Join(os.TempDir(), "modresolve-cache")
		}
		return filepath.Join("/tmp", "modresolve-cache")
	}
	return filepath.Join(home, ".cache", "modresolve")
}

// Get retrieves the entry stored under key.
// Returns the content and true if found and verified.
// Returns nil, false if not cached, or if the entry failed verification
// (the corrupt entry is removed).
func (c *Cache) Get(key string) ([]byte, bool, error) {
	path := c.objectPath(key)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry %s: %w", key, err)
	}

	sum, err := os.ReadFile(path + sumSuffix)
	if err != nil || strings.TrimSpace(string(sum)) != ComputeHash(data) {
		// Self-healing: remove corrupt entry.
		_ = os.Remove(path)
		_ = os.Remove(path + sumSuffix)
		return nil, false, nil
	}

	return data, true, nil
}

// Put stores content under key. Entries are immutable: a second Put for the
// same key is a no-op.
func (c *Cache) Put(key string, content []byte) error {
	if key == "" {
		return fmt.Errorf("cache put: empty key")
	}
	path := c.objectPath(key)

	if c.Has(key) {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating cache subdirectory: %w", err)
	}

	// The digest goes first so a visible object always has one.
	if err := writeAtomic(dir, path+sumSuffix, []byte(ComputeHash(content)+"\n")); err != nil {
		return err
	}
	return writeAtomic(dir, path, content)
}

// Has checks if key exists in the cache without reading content.
func (c *Cache) Has(key string) bool {
	_, err := os.Stat(c.objectPath(key))
	return err == nil
}

// Size returns the total size of the cache in bytes.
func (c *Cache) Size() (int64, error) {
	var total int64
	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total, err
}

// Path returns the cache directory path.
func (c *Cache) Path() string {
	return c.dir
}

func (c *Cache) objectPath(key string) string {
	if len(key) < 2 {
		return filepath.Join(c.dir, "objects", key)
	}
	return filepath.Join(c.dir, "objects", key[:2], key)
}

func writeAtomic(dir, path string, content []byte) error {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating cache temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("writing cache temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing cache temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing cache temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming cache temp file: %w", err)
	}

	success = true
	return nil
}

// ComputeHash computes the SHA256 hash of content and returns the hex string.
func ComputeHash(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}
