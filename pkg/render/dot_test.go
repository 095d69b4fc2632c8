package render

import (
	"strings"
	"testing"

	"github.com/scriptscope/scriptscope/pkg/graph"
	"github.com/scriptscope/scriptscope/pkg/scan"
	"github.com/scriptscope/scriptscope/pkg/walk"
)

func testResult() *walk.Result {
	return &walk.Result{
		Entry: "main.bat",
		Visited: []scan.ScriptRecord{
			{Name: "main.bat", Ext: ".bat", Path: "/x/main.bat"},
			{Name: "report.pl", Ext: ".pl", Path: "/x/report.pl"},
		},
		Edges: []graph.Edge{
			{From: "main.bat", To: "report.pl", Kind: graph.KindInternal},
			{From: "main.bat", To: "robocopy.exe", Kind: graph.KindExternal},
		},
	}
}

func TestDOTPreamble(t *testing.T) {
	out := string(DOT(testResult()))

	for _, want := range []string{
		"digraph callgraph {",
		"rankdir=LR;",
		`node [fontname="Arial"];`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Errorf("output not closed:\n%s", out)
	}
}

func TestDOTNodeStylesByScriptType(t *testing.T) {
	out := string(DOT(testResult()))

	if !strings.Contains(out, `"main.bat" [shape=box, style=filled, fillcolor=khaki];`) {
		t.Errorf("missing batch node style:\n%s", out)
	}
	if !strings.Contains(out, `"report.pl" [shape=ellipse, style=filled, fillcolor=lightblue];`) {
		t.Errorf("missing perl node style:\n%s", out)
	}
}

func TestDOTEdgeStylesByKind(t *testing.T) {
	out := string(DOT(testResult()))

	if !strings.Contains(out, `"main.bat" -> "report.pl";`) {
		t.Errorf("missing solid internal edge:\n%s", out)
	}
	if !strings.Contains(out, `"main.bat" -> "robocopy.exe" [style=dashed, color=grey];`) {
		t.Errorf("missing dashed external edge:\n%s", out)
	}
}

func TestDOTExternalTargetsGetNoStyleDeclaration(t *testing.T) {
	out := string(DOT(testResult()))

	// A node declaration line starts with the quoted name; the external
	// edge line starts with its source node and must not trip this.
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), `"robocopy.exe" [`) {
			t.Errorf("external target must not receive a node declaration:\n%s", out)
		}
	}
}

func TestDOTDeterministic(t *testing.T) {
	a := string(DOT(testResult()))
	b := string(DOT(testResult()))
	if a != b {
		t.Error("DOT output differs between identical inputs")
	}
}
