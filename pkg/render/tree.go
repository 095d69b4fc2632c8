package render

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// WriteTreeFile serializes the traversal's tree lines to path, one per
// line, UTF-8, in traversal order.
func WriteTreeFile(path string, lines []string) error {
	var b strings.Builder
	if err := WriteTree(&b, lines); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing tree file: %w", err)
	}
	return nil
}

// WriteTree writes tree lines to w, one per line.
func WriteTree(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
