package render

import (
	"fmt"
	"io"
	"os"

	"github.com/scriptscope/scriptscope/pkg/graph"
	"github.com/scriptscope/scriptscope/pkg/scan"
)

// TerminalRenderer renders a run summary as colored terminal output.
type TerminalRenderer struct {
	// MaxWarnings limits how many scan warnings are listed before the
	// remainder collapses into a count. Zero means the default of 10.
	MaxWarnings int
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func bold(s string) string {
	if noColor() {
		return s
	}
	return colorBold + s + colorReset
}

func dim(s string) string {
	if noColor() {
		return s
	}
	return colorDim + s + colorReset
}

func colored(s, color string) string {
	if noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

// Render writes the run summary for a finished analysis.
func (r *TerminalRenderer) Render(w io.Writer, snap *graph.Snapshot) error {
	fmt.Fprintf(w, "%s\n\n", bold(fmt.Sprintf("scriptscope: %s", snap.Entry)))

	fmt.Fprintf(w, "Discovered: %d scripts under %s\n", snap.Stats.ScriptCount, snap.Root)
	fmt.Fprintf(w, "Reached:    %d scripts / %d calls (%d external)\n",
		snap.Stats.VisitedCount, snap.Stats.EdgeCount, snap.Stats.ExternalCount)
	fmt.Fprintf(w, "Duration:   %dms\n", snap.Stats.AnalysisMs)

	if snap.Stats.ScanErrors > 0 {
		fmt.Fprintf(w, "%s\n", colored(fmt.Sprintf("Warnings:   %d paths could not be scanned", snap.Stats.ScanErrors), colorYellow))
	}
	fmt.Fprintln(w)

	return nil
}

// Warnings lists scan errors, first MaxWarnings shown, remainder counted.
// Non-fatal by contract: callers print these and continue.
func (r *TerminalRenderer) Warnings(w io.Writer, errs []scan.ScanError) {
	if len(errs) == 0 {
		return
	}
	max := r.MaxWarnings
	if max <= 0 {
		max = 10
	}
	shown := len(errs)
	if shown > max {
		shown = max
	}
	for _, se := range errs[:shown] {
		fmt.Fprintf(w, "%s %s: %v\n", colored("warning:", colorYellow), se.Path, se.Err)
	}
	if rest := len(errs) - shown; rest > 0 {
		fmt.Fprintf(w, "%s\n", dim(fmt.Sprintf("... and %d more scan warnings", rest)))
	}
}

// RenderDelta writes a human-readable summary of the difference between
// two runs.
func RenderDelta(w io.Writer, delta *graph.Delta) {
	fmt.Fprintf(w, "%s\n\n", bold("scriptscope diff"))
	fmt.Fprintf(w, "Scripts: %s added / %s removed\n",
		colored(fmt.Sprintf("%d", delta.Stats.AddedNodeCount), colorYellow),
		colored(fmt.Sprintf("%d", delta.Stats.RemovedNodeCount), colorRed))
	fmt.Fprintf(w, "Calls:   %s added / %s removed\n\n",
		colored(fmt.Sprintf("%d", delta.Stats.AddedEdgeCount), colorYellow),
		colored(fmt.Sprintf("%d", delta.Stats.RemovedEdgeCount), colorRed))

	for _, n := range delta.AddedNodes {
		fmt.Fprintf(w, "  + %s\n", n.Name)
	}
	for _, n := range delta.RemovedNodes {
		fmt.Fprintf(w, "  - %s\n", n.Name)
	}
	for _, e := range delta.AddedEdges {
		fmt.Fprintf(w, "  + %s -> %s (%s)\n", e.From, e.To, e.Kind)
	}
	for _, e := range delta.RemovedEdges {
		fmt.Fprintf(w, "  - %s -> %s (%s)\n", e.From, e.To, e.Kind)
	}
}
