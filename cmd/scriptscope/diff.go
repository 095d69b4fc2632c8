package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scriptscope/scriptscope/pkg/graph"
	"github.com/scriptscope/scriptscope/pkg/render"
)

func newDiffCmd() *cobra.Command {
	var (
		basePath string
		headPath string
		outPath  string
	)

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare two snapshots of the same script tree",
		Long:  `Loads two saved snapshots and reports which scripts and calls appeared or disappeared between them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(basePath, headPath, outPath)
		},
	}

	cmd.Flags().StringVar(&basePath, "base", "", "Base snapshot file (required)")
	cmd.Flags().StringVar(&headPath, "head", "", "Head snapshot file (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "Optional path to save the delta as JSON")
	_ = cmd.MarkFlagRequired("base")
	_ = cmd.MarkFlagRequired("head")

	return cmd
}

func runDiff(basePath, headPath, outPath string) error {
	base, err := graph.LoadSnapshot(basePath)
	if err != nil {
		return fmt.Errorf("loading base snapshot: %w", err)
	}
	head, err := graph.LoadSnapshot(headPath)
	if err != nil {
		return fmt.Errorf("loading head snapshot: %w", err)
	}

	delta := graph.ComputeDelta(base, head)
	render.RenderDelta(os.Stdout, delta)

	if outPath != "" {
		if err := graph.SaveDelta(outPath, delta); err != nil {
			return fmt.Errorf("saving delta: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Delta saved to %s\n", outPath)
	}

	return nil
}
