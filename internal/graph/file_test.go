package graph

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleGraph() *Graph {
	g := New("App")
	_ = g.Insert(sourceModule("App", ArgList{"-target", "arm64-apple-macos13"}, Clang("Darwin"), Prebuilt("Foundation")))
	_ = g.Insert(clangModule("Darwin", NewArgSet(ArgList{"-target", "arm64-apple-macos11"})))
	_ = g.Insert(&Module{
		ID:                 Prebuilt("Foundation"),
		Path:               "/sdk/Foundation.swiftmodule",
		DirectDependencies: []ModuleID{Clang("Darwin")},
		Details:            Details{Prebuilt: &PrebuiltDetails{CompiledModulePath: "/sdk/Foundation.swiftmodule"}},
	})
	return g
}

func TestSaveAndLoad(t *testing.T) {
	for _, name := range []string{"deps.json", "deps.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			g := sampleGraph()

			if err := Save(path, g); err != nil {
				t.Fatalf("Save: %v", err)
			}
			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}

			if loaded.MainModuleName != "App" {
				t.Errorf("main module = %q", loaded.MainModuleName)
			}
			if diff := cmp.Diff(g.Modules(), loaded.Modules()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}

			if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
				t.Error("temp file left behind")
			}
		})
	}
}

func TestDecodeJSONShape(t *testing.T) {
	data := []byte(`{
  "mainModuleName": "App",
  "modules": [
    {"id": "source:App", "modulePath": "App.swiftmodule",
     "directDependencies": ["clang:D"],
     "details": {"source": {"extraArgs": ["-target", "x86_64"]}}},
    {"id": "clang:D", "modulePath": "D.pcm",
     "details": {"clang": {"moduleMapPath": "module.modulemap", "contextHash": "abc",
                           "capturedConfigurations": [["-target", "x86_64"], ["-target", "x86_64"]]}}}
  ]
}`)
	g, err := Decode(data, FormatJSON)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	d, err := g.Lookup(Clang("D"))
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if d.DirectDependencies == nil {
		t.Error("absent dependency list should decode as empty, not nil")
	}
	if d.Details.Clang.CapturedConfigurations.Len() != 1 {
		t.Errorf("captured = %v", d.Details.Clang.CapturedConfigurations.Lists())
	}
}

func TestDecodeRejectsDuplicates(t *testing.T) {
	data := []byte(`{"mainModuleName": "App", "modules": [
  {"id": "source:App", "details": {"source": {}}},
  {"id": "source:App", "details": {"source": {}}}]}`)
	if _, err := Decode(data, FormatJSON); err == nil {
		t.Fatal("expected error for duplicate module")
	}
}

func TestLoadValidationError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deps.json")
	data := `{"mainModuleName": "App", "modules": [
  {"id": "source:App", "directDependencies": ["clang:Gone"], "details": {"source": {}}}]}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("got %v, want *ValidationError", err)
	}
	if !strings.Contains(ve.Error(), "clang:Gone") {
		t.Errorf("error should name the missing module: %v", ve)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("got %v, want not-exist error", err)
	}
}
