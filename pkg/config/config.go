// Package config handles loading and managing scriptscope configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for scriptscope.
type Config struct {
	Scan   ScanConfig   `yaml:"scan"`
	Output OutputConfig `yaml:"output"`
	Graph  GraphConfig  `yaml:"graph"`
}

// ScanConfig controls discovery behavior.
type ScanConfig struct {
	Extensions  []string `yaml:"extensions"`   // script types to discover
	Callable    []string `yaml:"callable"`     // extensions recognized as call targets
	MaxWarnings int      `yaml:"max_warnings"` // scan warnings printed before summarizing
}

// OutputConfig controls where the emitters write.
type OutputConfig struct {
	TreeFile  string `yaml:"tree_file"`
	GraphFile string `yaml:"graph_file"`
}

// GraphConfig controls graph emission behavior.
type GraphConfig struct {
	DedupeEdges bool `yaml:"dedupe_edges"` // collapse repeated parent/child/kind edges
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Extensions:  []string{".bat", ".cmd", ".pl"},
			Callable:    []string{".bat", ".cmd", ".exe", ".com", ".pl", ".vbs"},
			MaxWarnings: 10,
		},
		Output: OutputConfig{
			TreeFile:  "calltree.txt",
			GraphFile: "callgraph.gv",
		},
	}
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// FindConfigFile looks for .scriptscope/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".scriptscope", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// CacheDir returns the cache directory for a given scan root.
// Uses ~/.cache/scriptscope/<root-slug>/ to avoid polluting the tree.
func CacheDir(root string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to temp dir if HOME isn't available
		home = os.TempDir()
	}
	return filepath.Join(home, ".cache", "scriptscope", RootSlug(root))
}

// SnapshotDir returns the snapshot storage directory for a scan root.
func SnapshotDir(root string) string {
	return filepath.Join(CacheDir(root), "snapshots")
}

// RootSlug creates a filesystem-safe identifier from a scan root path.
// Uses the last two path components (e.g., "ops_batch" from "/srv/ops/batch").
func RootSlug(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	dir := filepath.Base(filepath.Dir(abs))
	base := filepath.Base(abs)
	return dir + "_" + base
}
