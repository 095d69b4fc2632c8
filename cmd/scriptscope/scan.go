package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/scriptscope/scriptscope/pkg/config"
	"github.com/scriptscope/scriptscope/pkg/extract"
	"github.com/scriptscope/scriptscope/pkg/graph"
	"github.com/scriptscope/scriptscope/pkg/render"
	"github.com/scriptscope/scriptscope/pkg/scan"
	"github.com/scriptscope/scriptscope/pkg/walk"
)

func newScanCmd() *cobra.Command {
	var (
		root        string
		entry       string
		treeFile    string
		graphFile   string
		snapshot    bool
		snapshotOut string
		dedupeEdges bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Analyze a script tree and emit the call tree and graph",
		Long:  `Discovers scripts under the root, walks the call graph from the entry script, and writes the tree and graph files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(scanOpts{
				root:        root,
				entry:       entry,
				treeFile:    treeFile,
				graphFile:   graphFile,
				snapshot:    snapshot,
				snapshotOut: snapshotOut,
				dedupeEdges: dedupeEdges,
			})
		},
	}

	cmd.Flags().StringVar(&root, "root", ".", "Root directory to scan")
	cmd.Flags().StringVar(&entry, "entry", "", "Entry script filename (required)")
	cmd.Flags().StringVar(&treeFile, "tree", "", "Tree output path (default from config, else calltree.txt)")
	cmd.Flags().StringVar(&graphFile, "graph", "", "Graph output path (default from config, else callgraph.gv)")
	cmd.Flags().BoolVar(&snapshot, "snapshot", false, "Also save a JSON snapshot to the cache directory")
	cmd.Flags().StringVar(&snapshotOut, "snapshot-out", "", "Snapshot output path (implies --snapshot)")
	cmd.Flags().BoolVar(&dedupeEdges, "dedupe-edges", false, "Collapse repeated parent/child edges in the graph")
	_ = cmd.MarkFlagRequired("entry")

	return cmd
}

type scanOpts struct {
	root        string
	entry       string
	treeFile    string
	graphFile   string
	snapshot    bool
	snapshotOut string
	dedupeEdges bool
}

func runScan(opts scanOpts) error {
	start := time.Now()

	root, err := filepath.Abs(opts.root)
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}

	cfg := loadConfig(root)
	treeFile := firstNonEmpty(opts.treeFile, cfg.Output.TreeFile, "calltree.txt")
	graphFile := firstNonEmpty(opts.graphFile, cfg.Output.GraphFile, "callgraph.gv")

	term := &render.TerminalRenderer{MaxWarnings: cfg.Scan.MaxWarnings}

	scanned := scan.Discover(root, cfg.Scan.Extensions)
	term.Warnings(os.Stderr, scanned.Errors)

	walker := &walk.Walker{
		Scripts:     scanned,
		Extract:     extract.New(cfg.Scan.Callable),
		DedupeEdges: opts.dedupeEdges || cfg.Graph.DedupeEdges,
	}

	// Fatal precondition: nothing is written when the entry is unknown.
	res, err := walker.Walk(opts.entry)
	if err != nil {
		return err
	}

	if err := render.WriteTreeFile(treeFile, res.Tree); err != nil {
		return err
	}
	if err := render.WriteDOTFile(graphFile, res); err != nil {
		return err
	}

	snap := res.Snapshot(root, scanned, time.Since(start))

	if opts.snapshot || opts.snapshotOut != "" {
		outPath := opts.snapshotOut
		if outPath == "" {
			outPath = filepath.Join(config.SnapshotDir(root), snap.ID+".json")
		}
		if err := graph.SaveSnapshot(outPath, snap); err != nil {
			return fmt.Errorf("saving snapshot: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Snapshot saved to %s\n", outPath)
	}

	fmt.Fprintf(os.Stderr, "Tree written to %s\n", treeFile)
	fmt.Fprintf(os.Stderr, "Graph written to %s\n", graphFile)

	return term.Render(os.Stderr, snap)
}

func loadConfig(root string) *config.Config {
	cfgFile := config.FindConfigFile(root)
	if cfgFile == "" {
		return config.DefaultConfig()
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		return config.DefaultConfig()
	}
	return cfg
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
