package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	wantExts := []string{".bat", ".cmd", ".pl"}
	if len(cfg.Scan.Extensions) != len(wantExts) {
		t.Fatalf("Extensions = %v, want %v", cfg.Scan.Extensions, wantExts)
	}
	for i, ext := range wantExts {
		if cfg.Scan.Extensions[i] != ext {
			t.Errorf("Extensions[%d] = %q, want %q", i, cfg.Scan.Extensions[i], ext)
		}
	}
	if cfg.Scan.MaxWarnings != 10 {
		t.Errorf("MaxWarnings = %d, want 10", cfg.Scan.MaxWarnings)
	}
	if cfg.Output.TreeFile != "calltree.txt" {
		t.Errorf("TreeFile = %q, want calltree.txt", cfg.Output.TreeFile)
	}
	if cfg.Output.GraphFile != "callgraph.gv" {
		t.Errorf("GraphFile = %q, want callgraph.gv", cfg.Output.GraphFile)
	}
	if cfg.Graph.DedupeEdges {
		t.Error("DedupeEdges should default to false")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Output.TreeFile != "calltree.txt" {
		t.Errorf("TreeFile = %q, want default", cfg.Output.TreeFile)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
scan:
  extensions: [".bat"]
  max_warnings: 3
output:
  tree_file: out/tree.txt
graph:
  dedupe_edges: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cfg.Scan.Extensions) != 1 || cfg.Scan.Extensions[0] != ".bat" {
		t.Errorf("Extensions = %v, want [.bat]", cfg.Scan.Extensions)
	}
	if cfg.Scan.MaxWarnings != 3 {
		t.Errorf("MaxWarnings = %d, want 3", cfg.Scan.MaxWarnings)
	}
	if cfg.Output.TreeFile != "out/tree.txt" {
		t.Errorf("TreeFile = %q, want out/tree.txt", cfg.Output.TreeFile)
	}
	if !cfg.Graph.DedupeEdges {
		t.Error("DedupeEdges = false, want true")
	}
	// Untouched sections keep their defaults.
	if cfg.Output.GraphFile != "callgraph.gv" {
		t.Errorf("GraphFile = %q, want default", cfg.Output.GraphFile)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("scan: [not: a: map"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestFindConfigFileWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfgDir := filepath.Join(root, ".scriptscope")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfgPath := filepath.Join(cfgDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if got := FindConfigFile(nested); got != cfgPath {
		t.Errorf("FindConfigFile = %q, want %q", got, cfgPath)
	}
}

func TestFindConfigFileAbsent(t *testing.T) {
	if got := FindConfigFile(t.TempDir()); got != "" {
		t.Errorf("FindConfigFile = %q, want empty", got)
	}
}

func TestRootSlug(t *testing.T) {
	slug := RootSlug("/srv/ops/batch")
	if slug != "ops_batch" {
		t.Errorf("RootSlug = %q, want ops_batch", slug)
	}
	if strings.ContainsAny(slug, `/\`) {
		t.Errorf("slug %q contains path separators", slug)
	}
}
