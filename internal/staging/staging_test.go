package staging

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestPrepareCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	got, err := Prepare(dir)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("Prepare returned relative path %q", got)
	}
	info, err := os.Stat(got)
	if err != nil || !info.IsDir() {
		t.Fatalf("staging directory not created: %v", err)
	}
}

func TestPrepareRequiresDirectory(t *testing.T) {
	if _, err := Prepare(""); err == nil {
		t.Fatal("expected error for empty staging directory")
	}
}

func TestValidatePathWithinRoot(t *testing.T) {
	root := t.TempDir()

	resolved, err := ValidatePath(root, "outputs/SwiftShims-abc.json")
	if err != nil {
		t.Fatalf("ValidatePath: %v", err)
	}

	realRoot, _ := filepath.EvalSymlinks(root)
	expected := filepath.Join(realRoot, "outputs/SwiftShims-abc.json")
	if resolved != expected {
		t.Errorf("got %q, want %q", resolved, expected)
	}
}

func TestValidatePathAcceptsAbsoluteInside(t *testing.T) {
	root, _ := Prepare(t.TempDir())

	if _, err := ValidatePath(root, filepath.Join(root, "x.json")); err != nil {
		t.Fatalf("ValidatePath: %v", err)
	}
}

func TestValidatePathRejectsDotDot(t *testing.T) {
	root := t.TempDir()

	_, err := ValidatePath(root, "a/b/../../../escape.json")
	if err == nil {
		t.Fatal("expected error for .. escape")
	}
	if !strings.Contains(err.Error(), "outside the staging directory") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidatePathRejectsSymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink test not reliable on Windows")
	}

	root := t.TempDir()
	outsideDir := t.TempDir()

	symlink := filepath.Join(root, "escape-link")
	if err := os.Symlink(outsideDir, symlink); err != nil {
		t.Fatalf("creating symlink: %v", err)
	}

	_, err := ValidatePath(root, "escape-link/out.json")
	if err == nil {
		t.Fatal("expected error for symlink escape")
	}
}

func TestSafeWriteCreatesFile(t *testing.T) {
	root := t.TempDir()

	if err := SafeWrite(root, "batch/input.json", []byte(`{"modules":[]}`), 0644); err != nil {
		t.Fatalf("SafeWrite: %v", err)
	}

	realRoot, _ := filepath.EvalSymlinks(root)
	written, err := os.ReadFile(filepath.Join(realRoot, "batch/input.json"))
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if string(written) != `{"modules":[]}` {
		t.Errorf("content = %q", string(written))
	}
}

func TestSafeWriteRejectsEscape(t *testing.T) {
	root := t.TempDir()
	if err := SafeWrite(root, "../escape.json", []byte("bad"), 0644); err == nil {
		t.Fatal("expected error for escape attempt")
	}
}
