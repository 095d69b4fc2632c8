// Package walk performs the depth-first call-graph traversal. All
// traversal state lives in an explicit value owned by a single Walk call;
// nothing here is shared or package-global.
package walk

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scriptscope/scriptscope/pkg/extract"
	"github.com/scriptscope/scriptscope/pkg/graph"
	"github.com/scriptscope/scriptscope/pkg/scan"
)

// Tree-line annotations.
const (
	markerExternal = " (external)"
	markerLoop     = " (LOOP/ALREADY VISITED)"
)

// Walker runs traversals over one discovery result.
type Walker struct {
	Scripts *scan.Result
	Extract *extract.Extractor

	// DedupeEdges collapses repeated (parent, child, kind) triples into a
	// single edge. Off by default: one edge per distinct call statement.
	DedupeEdges bool
}

// Result accumulates the traversal output: the pre-order tree log, the
// edge list in discovery order, and the visited records in first-visit
// order (the graph emitter styles nodes from it).
type Result struct {
	Entry   string
	Tree    []string
	Edges   []graph.Edge
	Visited []scan.ScriptRecord
}

type state struct {
	w         *Walker
	res       *Result
	visited   map[string]bool
	seenEdges map[string]bool
}

// Walk traverses the call graph from the entry script. The entry must
// resolve within the scanned set; anything else is a fatal precondition
// and no traversal output is produced. Termination is guaranteed on
// cyclic graphs: the visited set strictly grows and is checked before
// every recursive step.
func (w *Walker) Walk(entry string) (*Result, error) {
	name := normalizeEntry(entry)
	if name == "" {
		return nil, fmt.Errorf("entry script name is empty")
	}
	if !w.Scripts.Known(name) {
		return nil, fmt.Errorf("entry script %q not found under the scan root", entry)
	}

	st := &state{
		w:         w,
		res:       &Result{Entry: name},
		visited:   make(map[string]bool),
		seenEdges: make(map[string]bool),
	}
	st.visit(name, 0)
	return st.res, nil
}

func (s *state) visit(name string, depth int) {
	indent := strings.Repeat("  ", depth)

	if s.visited[name] {
		// Second reach of an expanded node: log the loop marker, do not
		// re-expand. The edge into it was recorded by the caller.
		s.res.Tree = append(s.res.Tree, indent+name+markerLoop)
		return
	}

	s.res.Tree = append(s.res.Tree, indent+name)
	s.visited[name] = true

	rec, ok := s.w.Scripts.Lookup(name)
	if !ok {
		// A name classified internal must have a record. End the branch
		// silently if it somehow doesn't.
		return
	}
	s.res.Visited = append(s.res.Visited, *rec)

	for _, child := range s.w.Extract.Calls(rec.Path, rec.Ext) {
		if s.w.Scripts.Known(child) {
			s.addEdge(name, child, graph.KindInternal)
			s.visit(child, depth+1)
		} else {
			s.addEdge(name, child, graph.KindExternal)
			s.res.Tree = append(s.res.Tree, indent+"  "+child+markerExternal)
		}
	}
}

func (s *state) addEdge(from, to, kind string) {
	e := graph.Edge{From: from, To: to, Kind: kind}
	if s.w.DedupeEdges {
		key := e.EdgeKey()
		if s.seenEdges[key] {
			return
		}
		s.seenEdges[key] = true
	}
	s.res.Edges = append(s.res.Edges, e)
}

// normalizeEntry reduces a user-supplied entry argument to the bare
// lowercased filename the index is keyed by.
func normalizeEntry(entry string) string {
	entry = strings.TrimSpace(strings.Trim(strings.TrimSpace(entry), `"`))
	if idx := strings.LastIndexAny(entry, `\/`); idx >= 0 {
		entry = entry[idx+1:]
	}
	return strings.ToLower(entry)
}

// Snapshot assembles an immutable graph.Snapshot from a finished
// traversal.
func (r *Result) Snapshot(root string, scanned *scan.Result, elapsed time.Duration) *graph.Snapshot {
	nodes := make(map[string]*graph.Node, len(r.Visited))
	for _, rec := range r.Visited {
		nodes[rec.Name] = &graph.Node{Name: rec.Name, Ext: rec.Ext, Path: rec.Path}
	}

	external := 0
	for _, e := range r.Edges {
		if e.Kind == graph.KindExternal {
			external++
		}
	}

	return &graph.Snapshot{
		ID:    uuid.New().String(),
		Root:  root,
		Entry: r.Entry,
		Nodes: nodes,
		Edges: r.Edges,
		Tree:  r.Tree,
		Stats: graph.SnapshotStats{
			ScriptCount:   len(scanned.Scripts),
			VisitedCount:  len(r.Visited),
			EdgeCount:     len(r.Edges),
			ExternalCount: external,
			ScanErrors:    len(scanned.Errors),
			AnalysisMs:    int(elapsed.Milliseconds()),
		},
		AnalyzedAt: time.Now(),
	}
}
