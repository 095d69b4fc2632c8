// Package main provides the scriptscope CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "scriptscope",
		Short: "Call-graph analysis for legacy automation scripts",
		Long: `Scriptscope scans a directory tree of batch, command and Perl scripts,
reconstructs which scripts invoke which others, and emits an indented
call tree plus a Graphviz graph description.`,
		Version: version,
	}

	rootCmd.AddCommand(
		newScanCmd(),
		newDiffCmd(),
		newArchiveCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
