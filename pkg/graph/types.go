// Package graph defines the core data model for scriptscope.
// These types are the shared vocabulary across all modules.
package graph

import "time"

// Edge kinds. Internal edges point at scripts discovered under the scan
// root; external edges point at anything else (system utilities, absent
// files).
const (
	KindInternal = "INTERNAL"
	KindExternal = "EXTERNAL"
)

// Snapshot represents one complete analysis run over a script tree.
// Snapshots are immutable once created.
type Snapshot struct {
	ID         string           `json:"id"`
	Root       string           `json:"root"`  // scan root directory
	Entry      string           `json:"entry"` // entry script filename (lowercased)
	Nodes      map[string]*Node `json:"nodes"` // visited internal scripts, keyed by lowercased filename
	Edges      []Edge           `json:"edges"`
	Tree       []string         `json:"tree"` // pre-order indented call tree lines
	Stats      SnapshotStats    `json:"stats"`
	AnalyzedAt time.Time        `json:"analyzed_at"`
}

// Node represents one script visited by the traversal.
type Node struct {
	Name string `json:"name"` // lowercased filename, e.g. "nightly.bat"
	Ext  string `json:"ext"`  // lowercased extension including the dot
	Path string `json:"path"` // full path under the scan root
}

// Edge represents one call from a parent script to a child target.
type Edge struct {
	From string `json:"from"` // parent filename
	To   string `json:"to"`   // child filename
	Kind string `json:"kind"` // KindInternal or KindExternal
}

// EdgeKey returns a stable string key for deduplication and set operations.
func (e Edge) EdgeKey() string {
	return e.From + "|" + e.To + "|" + e.Kind
}

// SnapshotStats holds summary statistics for a snapshot.
type SnapshotStats struct {
	ScriptCount   int `json:"script_count"`   // scripts discovered under the root
	VisitedCount  int `json:"visited_count"`  // scripts reached from the entry
	EdgeCount     int `json:"edge_count"`
	ExternalCount int `json:"external_count"` // edges classified external
	ScanErrors    int `json:"scan_errors"`
	AnalysisMs    int `json:"analysis_ms"`
}

// Delta represents the difference between two analysis runs.
// Deltas are immutable once computed.
type Delta struct {
	ID             string     `json:"id"`
	BaseSnapshotID string     `json:"base_snapshot_id"`
	HeadSnapshotID string     `json:"head_snapshot_id"`
	AddedNodes     []Node     `json:"added_nodes"`
	RemovedNodes   []Node     `json:"removed_nodes"`
	AddedEdges     []Edge     `json:"added_edges"`
	RemovedEdges   []Edge     `json:"removed_edges"`
	Stats          DeltaStats `json:"stats"`
}

// DeltaStats holds summary statistics for a delta.
type DeltaStats struct {
	AddedNodeCount   int `json:"added_node_count"`
	RemovedNodeCount int `json:"removed_node_count"`
	AddedEdgeCount   int `json:"added_edge_count"`
	RemovedEdgeCount int `json:"removed_edge_count"`
}

// ExternalTargets returns the set of edge targets classified external.
// These appear as edge endpoints in the graph output but are never nodes
// of the snapshot.
func (s *Snapshot) ExternalTargets() map[string]bool {
	ext := make(map[string]bool)
	for _, e := range s.Edges {
		if e.Kind == KindExternal {
			ext[e.To] = true
		}
	}
	return ext
}

// CalleeMap maps each parent filename to the targets it calls.
func (s *Snapshot) CalleeMap() map[string][]string {
	callees := make(map[string][]string)
	for _, e := range s.Edges {
		callees[e.From] = append(callees[e.From], e.To)
	}
	return callees
}
