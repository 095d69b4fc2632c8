// Package extract locates script-to-script invocations inside legacy
// automation scripts. Matching is purely lexical: per-extension regular
// expressions applied line by line after comment stripping. Computed or
// interpolated targets are not resolved.
package extract

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
)

// Extractor holds the compiled pattern table. One Extractor is built per
// run from the configured callable-target extensions and is safe for
// reuse across files.
type Extractor struct {
	batch *regexp.Regexp
	perl  *regexp.Regexp
}

// batchTrailing matches a trailing comment clause on a batch line
// ("& rem ..." or "&:: ..."). Full-line comments are handled separately.
var batchTrailing = regexp.MustCompile(`(?i)&\s*(?:rem\b|::).*$`)

// New compiles the pattern table. callable lists the extensions that are
// recognized as invocation targets (with or without leading dots).
func New(callable []string) *Extractor {
	alt := extAlternation(callable)

	// call/start, optional quoted window title, then a quoted or bare
	// path ending in a callable extension.
	batch := regexp.MustCompile(
		`(?i)\b(?:call|start)\b(?:\s+"[^"]*")?\s+("[^"]+\.(?:` + alt + `)"|[^\s"&|<>]+\.(?:` + alt + `))`)

	// system/qx with optional paren and quote (group 1), or a
	// backtick-delimited command (group 2). The whole backtick span is
	// consumed so a closing backtick never starts a fresh match.
	perl := regexp.MustCompile(
		"(?i)(?:\\b(?:system|qx)\\s*\\(?\\s*[\"']?([^\"'`\\s,;(){}]+)|`([^`]+)`)")

	return &Extractor{batch: batch, perl: perl}
}

// Calls reads the script behind rec and returns the distinct, sorted set
// of filenames it appears to invoke. An unreadable file yields an empty
// set; extraction never fails a run.
func (e *Extractor) Calls(path, ext string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	return e.CallsFromReader(ext, f)
}

// CallsFromReader extracts calls from already-open script source. ext
// selects the pattern and comment syntax (".bat", ".cmd", or ".pl").
func (e *Extractor) CallsFromReader(ext string, r io.Reader) []string {
	ext = strings.ToLower(ext)

	var (
		pat     *regexp.Regexp
		strip   func(string) string
		isBatch bool
	)
	switch ext {
	case ".bat", ".cmd":
		pat, strip, isBatch = e.batch, stripBatchComments, true
	case ".pl":
		pat, strip, isBatch = e.perl, stripPerlComments, false
	default:
		return nil
	}

	seen := make(map[string]bool)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strip(scanner.Text())
		if strings.TrimSpace(line) == "" {
			continue
		}
		// A single line may hold several invocations ("call a.bat & call b.bat").
		for _, m := range pat.FindAllStringSubmatch(line, -1) {
			target := m[1]
			if !isBatch && target == "" {
				// Backtick form: the target is the first token of the
				// backtick capture group, not the primary group.
				fields := strings.Fields(m[2])
				if len(fields) == 0 {
					continue
				}
				target = fields[0]
			}
			if name := normalizeTarget(target); name != "" {
				seen[name] = true
			}
		}
	}

	if len(seen) == 0 {
		return nil
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// stripBatchComments drops rem/:: comments. A commented-out invocation
// must never be reported, so full-line comments empty the line entirely.
func stripBatchComments(line string) string {
	trimmed := strings.TrimSpace(line)
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "::") || lower == "rem" || strings.HasPrefix(lower, "rem ") || strings.HasPrefix(lower, "rem\t") {
		return ""
	}
	return batchTrailing.ReplaceAllString(line, "")
}

// stripPerlComments cuts the line at the first '#'. This can clip a '#'
// inside a string literal; acceptable for a fixed-pattern matcher.
func stripPerlComments(line string) string {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		return line[:idx]
	}
	return line
}

// normalizeTarget reduces a matched invocation target to its lowercased
// base filename: quotes and whitespace stripped, directory components
// (either separator style) discarded. Quoted and unquoted targets
// normalize identically.
func normalizeTarget(target string) string {
	target = strings.TrimSpace(target)
	target = strings.Trim(target, `"'`)
	if idx := strings.LastIndexAny(target, `\/`); idx >= 0 {
		target = target[idx+1:]
	}
	return strings.ToLower(strings.TrimSpace(target))
}

// extAlternation turns an extension allow-list into a regex alternation
// ("bat|cmd|exe"). Leading dots are optional in the input.
func extAlternation(exts []string) string {
	parts := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			parts = append(parts, regexp.QuoteMeta(ext))
		}
	}
	return strings.Join(parts, "|")
}
