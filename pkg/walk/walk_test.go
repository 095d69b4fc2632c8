package walk

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/scriptscope/scriptscope/pkg/extract"
	"github.com/scriptscope/scriptscope/pkg/graph"
	"github.com/scriptscope/scriptscope/pkg/scan"
)

var (
	testExtensions = []string{".bat", ".cmd", ".pl"}
	testCallable   = []string{".bat", ".cmd", ".exe", ".com", ".pl", ".vbs"}
)

// newTestWalker lays out a script tree in a temp dir and returns a
// walker over it.
func newTestWalker(t *testing.T, files map[string]string) (*Walker, *scan.Result) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	res := scan.Discover(dir, testExtensions)
	return &Walker{Scripts: res, Extract: extract.New(testCallable)}, res
}

func TestWalkCycleScenario(t *testing.T) {
	w, _ := newTestWalker(t, map[string]string{
		"main.bat": "call a.bat\ncall missing.exe\n",
		"a.bat":    "call main.bat\n",
	})

	res, err := w.Walk("main.bat")
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	wantTree := []string{
		"main.bat",
		"  a.bat",
		"    main.bat (LOOP/ALREADY VISITED)",
		"  missing.exe (external)",
	}
	if !reflect.DeepEqual(res.Tree, wantTree) {
		t.Errorf("Tree = %#v, want %#v", res.Tree, wantTree)
	}

	wantEdges := []graph.Edge{
		{From: "main.bat", To: "a.bat", Kind: graph.KindInternal},
		{From: "a.bat", To: "main.bat", Kind: graph.KindInternal},
		{From: "main.bat", To: "missing.exe", Kind: graph.KindExternal},
	}
	if !reflect.DeepEqual(res.Edges, wantEdges) {
		t.Errorf("Edges = %#v, want %#v", res.Edges, wantEdges)
	}
}

func TestWalkTerminatesOnCycleVisitingEachNodeOnce(t *testing.T) {
	w, _ := newTestWalker(t, map[string]string{
		"a.bat": "call b.bat\n",
		"b.bat": "call a.bat\n",
	})

	res, err := w.Walk("a.bat")
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	counts := make(map[string]int)
	for _, rec := range res.Visited {
		counts[rec.Name]++
	}
	for name, n := range counts {
		if n != 1 {
			t.Errorf("node %s visited %d times, want 1", name, n)
		}
	}
	if len(counts) != 2 {
		t.Errorf("visited %d nodes, want 2", len(counts))
	}
}

func TestWalkUnknownEntryIsFatal(t *testing.T) {
	w, _ := newTestWalker(t, map[string]string{
		"a.bat": "call b.bat\n",
	})

	if _, err := w.Walk("nope.bat"); err == nil {
		t.Error("expected error for unknown entry script")
	}
}

func TestWalkEntryNormalization(t *testing.T) {
	w, _ := newTestWalker(t, map[string]string{
		"main.bat": "@echo off\n",
	})

	res, err := w.Walk(`C:\anywhere\MAIN.BAT`)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if res.Entry != "main.bat" {
		t.Errorf("Entry = %q, want %q", res.Entry, "main.bat")
	}
}

func TestWalkExternalNeverRecursed(t *testing.T) {
	// other.bat exists on disk but outside the scan root, so the call to
	// it is external and its own calls must never be explored.
	outside := t.TempDir()
	if err := os.WriteFile(filepath.Join(outside, "other.bat"), []byte("call deep.bat\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	w, _ := newTestWalker(t, map[string]string{
		"main.bat": "call other.bat\n",
	})

	res, err := w.Walk("main.bat")
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	if len(res.Edges) != 1 || res.Edges[0].Kind != graph.KindExternal {
		t.Fatalf("Edges = %#v, want one external edge", res.Edges)
	}
	wantTree := []string{"main.bat", "  other.bat (external)"}
	if !reflect.DeepEqual(res.Tree, wantTree) {
		t.Errorf("Tree = %#v, want %#v", res.Tree, wantTree)
	}
}

func TestWalkDiamondKeepsDistinctParentEdges(t *testing.T) {
	files := map[string]string{
		"a.bat": "call b.bat\ncall c.bat\n",
		"b.bat": "call d.bat\n",
		"c.bat": "call d.bat\n",
		"d.bat": "@echo off\n",
	}

	for _, dedupe := range []bool{false, true} {
		w, _ := newTestWalker(t, files)
		w.DedupeEdges = dedupe

		res, err := w.Walk("a.bat")
		if err != nil {
			t.Fatalf("Walk: %v", err)
		}

		// b->d and c->d are distinct pairs; neither mode may drop them.
		if len(res.Edges) != 4 {
			t.Errorf("dedupe=%v: %d edges, want 4", dedupe, len(res.Edges))
		}

		wantTree := []string{
			"a.bat",
			"  b.bat",
			"    d.bat",
			"  c.bat",
			"    d.bat (LOOP/ALREADY VISITED)",
		}
		if !reflect.DeepEqual(res.Tree, wantTree) {
			t.Errorf("dedupe=%v: Tree = %#v, want %#v", dedupe, res.Tree, wantTree)
		}
	}
}

func TestWalkDeterministic(t *testing.T) {
	files := map[string]string{
		"top.bat":          "call z.bat\ncall m.pl\ncall a.bat\n",
		"a.bat":            "call tool.exe\n",
		"z.bat":            "@echo off\n",
		"m.pl":             "system(\"a.bat\");\n",
		"nested/deep.bat":  "call top.bat\n",
		"nested/other.cmd": "call deep.bat\n",
	}

	w1, _ := newTestWalker(t, files)
	r1, err := w1.Walk("top.bat")
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	w2, _ := newTestWalker(t, files)
	r2, err := w2.Walk("top.bat")
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	if !reflect.DeepEqual(r1.Tree, r2.Tree) {
		t.Errorf("tree output differs between identical runs")
	}
	if !reflect.DeepEqual(r1.Edges, r2.Edges) {
		t.Errorf("edge output differs between identical runs")
	}
}

func TestSnapshotStats(t *testing.T) {
	w, scanned := newTestWalker(t, map[string]string{
		"main.bat":   "call a.bat\ncall missing.exe\n",
		"a.bat":      "@echo off\n",
		"unused.bat": "call nothing.exe\n",
	})

	res, err := w.Walk("main.bat")
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	snap := res.Snapshot("/tmp/root", scanned, 0)
	if snap.Stats.ScriptCount != 3 {
		t.Errorf("ScriptCount = %d, want 3", snap.Stats.ScriptCount)
	}
	if snap.Stats.VisitedCount != 2 {
		t.Errorf("VisitedCount = %d, want 2", snap.Stats.VisitedCount)
	}
	if snap.Stats.EdgeCount != 2 {
		t.Errorf("EdgeCount = %d, want 2", snap.Stats.EdgeCount)
	}
	if snap.Stats.ExternalCount != 1 {
		t.Errorf("ExternalCount = %d, want 1", snap.Stats.ExternalCount)
	}
	if snap.Entry != "main.bat" {
		t.Errorf("Entry = %q, want main.bat", snap.Entry)
	}
	if _, ok := snap.Nodes["unused.bat"]; ok {
		t.Error("unreached script must not appear among visited nodes")
	}
}
