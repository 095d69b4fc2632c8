// Package scan discovers candidate scripts under a root directory and
// builds the filename index the walker resolves calls against.
package scan

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// ScriptRecord identifies one discovered script file.
// Records are created at discovery time and immutable thereafter.
type ScriptRecord struct {
	Name string // filename, lowercased (case-insensitive key)
	Ext  string // extension including the dot, lowercased
	Path string // full path
}

// ScanError records one path that could not be enumerated.
type ScanError struct {
	Path string
	Err  error
}

// Result holds the outcome of one discovery pass. Scripts that were
// enumerated successfully are always usable, whatever Errors contains.
type Result struct {
	Scripts []ScriptRecord
	Errors  []ScanError

	index map[string]*ScriptRecord
}

// Lookup resolves a bare filename (case-insensitive) to its record.
func (r *Result) Lookup(name string) (*ScriptRecord, bool) {
	rec, ok := r.index[strings.ToLower(name)]
	return rec, ok
}

// Known reports whether a filename resolves within the scanned set.
func (r *Result) Known(name string) bool {
	_, ok := r.index[strings.ToLower(name)]
	return ok
}

// Discover walks root recursively and collects every file whose extension
// is in the allow-list. Individual path failures (permissions, broken
// links) are recorded and skipped; they never abort the walk. A root that
// cannot be read at all yields an empty result with the failure recorded,
// so callers degrade to "entry script not found" instead of crashing.
func Discover(root string, extensions []string) *Result {
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = true
	}

	res := &Result{index: make(map[string]*ScriptRecord)}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			res.Errors = append(res.Errors, ScanError{Path: path, Err: err})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !allowed[ext] {
			return nil
		}
		res.Scripts = append(res.Scripts, ScriptRecord{
			Name: strings.ToLower(filepath.Base(path)),
			Ext:  ext,
			Path: path,
		})
		return nil
	})
	if err != nil {
		// WalkDir only returns an error we produced; the per-path callback
		// swallows everything, so this is unreachable in practice.
		res.Errors = append(res.Errors, ScanError{Path: root, Err: err})
	}

	// Stable order regardless of filesystem enumeration quirks, so two
	// runs over an unchanged tree produce identical output.
	sort.Slice(res.Scripts, func(i, j int) bool {
		return res.Scripts[i].Path < res.Scripts[j].Path
	})

	// Filename-keyed index for O(1) resolution during traversal. On
	// duplicate basenames the first path in sorted order wins.
	for i := range res.Scripts {
		rec := &res.Scripts[i]
		if _, exists := res.index[rec.Name]; !exists {
			res.index[rec.Name] = rec
		}
	}

	return res
}
