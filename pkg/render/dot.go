package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/scriptscope/scriptscope/pkg/graph"
	"github.com/scriptscope/scriptscope/pkg/scan"
	"github.com/scriptscope/scriptscope/pkg/walk"
)

// Node styles by script type. Batch-style scripts and the Perl scripts
// get distinct shapes and fills so the two populations are readable at a
// glance in the rendered graph.
const (
	dotStyleBatch = `shape=box, style=filled, fillcolor=khaki`
	dotStylePerl  = `shape=ellipse, style=filled, fillcolor=lightblue`
)

// DOT builds the directed-graph description for a finished traversal.
// Output is deterministic: nodes in first-visit order, edges in the order
// the walker recorded them. External targets appear only as edge
// endpoints and receive no style declaration, since they were never
// visited.
func DOT(res *walk.Result) []byte {
	var b strings.Builder

	b.WriteString("digraph callgraph {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [fontname=\"Arial\"];\n")

	for _, rec := range res.Visited {
		fmt.Fprintf(&b, "  %q [%s];\n", rec.Name, nodeStyle(rec))
	}

	for _, e := range res.Edges {
		if e.Kind == graph.KindExternal {
			fmt.Fprintf(&b, "  %q -> %q [style=dashed, color=grey];\n", e.From, e.To)
		} else {
			fmt.Fprintf(&b, "  %q -> %q;\n", e.From, e.To)
		}
	}

	b.WriteString("}\n")
	return []byte(b.String())
}

// WriteDOTFile writes the graph description to path.
func WriteDOTFile(path string, res *walk.Result) error {
	if err := os.WriteFile(path, DOT(res), 0o644); err != nil {
		return fmt.Errorf("writing graph file: %w", err)
	}
	return nil
}

func nodeStyle(rec scan.ScriptRecord) string {
	switch rec.Ext {
	case ".pl":
		return dotStylePerl
	default:
		return dotStyleBatch
	}
}
