// Package staging manages the directory that per-configuration scan outputs
// and batch inputs are written to. The directory is always supplied by the
// caller; nothing here discovers it globally.
package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Prepare creates dir if needed and returns its absolute, symlink-free path.
func Prepare(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("staging directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating staging directory %s: %w", dir, err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving staging directory: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolving staging directory symlinks: %w", err)
	}
	return resolved, nil
}

// DefaultDir returns the staging directory used when none is configured.
func DefaultDir() string {
	return filepath.Join(os.TempDir(), "modresolve")
}

// ValidatePath checks if targetPath is safely within root.
// It resolves symlinks, normalizes paths, and verifies containment.
// Returns the resolved absolute path or an error.
func ValidatePath(root, targetPath string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving staging directory: %w", err)
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", fmt.Errorf("resolving staging directory symlinks: %w", err)
	}

	candidate := targetPath
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(realRoot, targetPath)
	}
	candidate = filepath.Clean(candidate)

	// The path may not exist yet, so resolve as much as we can.
	resolved, err := resolveExistingPath(candidate)
	if err != nil {
		return "", fmt.Errorf("resolving staged path: %w", err)
	}

	// Trailing separator avoids prefix matching "staging2" for "staging".
	rootPrefix := realRoot + string(filepath.Separator)
	if resolved != realRoot && !strings.HasPrefix(resolved, rootPrefix) {
		return "", fmt.Errorf("path '%s' resolves to '%s' which is outside the staging directory '%s'", targetPath, resolved, realRoot)
	}

	return resolved, nil
}

// resolveExistingPath resolves symlinks for the longest existing prefix of the path,
// then appends the non-existing suffix.
func resolveExistingPath(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)

	if dir == path {
		return path, nil
	}

	resolvedDir, err := resolveExistingPath(dir)
	if err != nil {
		return "", err
	}

	return filepath.Join(resolvedDir, base), nil
}

// SafeWrite atomically writes content to a path within root.
func SafeWrite(root, path string, content []byte, perm os.FileMode) error {
	resolved, err := ValidatePath(root, path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	// Same directory keeps the rename on one filesystem.
	tmp, err := os.CreateTemp(dir, ".modresolve-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
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
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpPath, resolved); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", resolved, err)
	}

	success = true
	return nil
}
