// Package render turns a finished traversal into its output forms: the
// indented call-tree file, the Graphviz graph description, and a colored
// terminal summary.
package render

import (
	"io"

	"github.com/scriptscope/scriptscope/pkg/graph"
)

// Renderer produces formatted output from a snapshot.
type Renderer interface {
	// Render writes the formatted snapshot to the writer.
	Render(w io.Writer, snap *graph.Snapshot) error
}
