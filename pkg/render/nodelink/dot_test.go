package nodelink

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/lineagescope/pkg/lineage"
	"github.com/matzehuels/lineagescope/pkg/report"
)

func sampleGraph(mode lineage.ViewMode) lineage.Graph {
	r := &report.Report{
		Target: &report.Target{Table: "ORDERS", Column: "STATUS"},
		Packages: []report.PackageEntry{
			{
				Name:      "SALES.PKG_ORDERS",
				RiskScore: 120,
				Direct: []report.ReferenceGroup{
					{Procedure: "PROC_A", StepID: "P-1", References: []report.SQLReference{{Text: "q"}}},
					{Procedure: "PROC_A", StepID: "P-2", References: []report.SQLReference{{Text: "q"}}},
				},
			},
			{Name: "LOW.PKG", RiskScore: 5},
		},
	}
	return lineage.Build(r, lineage.Options{
		ExpandedPackages:   lineage.NewSet("package-0"),
		ExpandedProcedures: lineage.NewSet("procedure-0-0"),
		ViewMode:           mode,
	})
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleGraph(lineage.ViewSimplified), Options{})

	for _, want := range []string{
		"digraph G {",
		"layout=neato;",
		`"source" [label="ORDERS.STATUS", pos="400.00,-300.00!", shape=cylinder`,
		`"package-0" [label="PKG_ORDERS", pos="700.00,-300.00!", shape=box, style="rounded,filled", fillcolor="#fecaca", penwidth=2]`,
		`fillcolor="#d1fae5"`,
		`"procedure-0-0" [label="PROC_A"`,
		`"source" -> "package-0" [color="#dc2626", penwidth=2.5]`,
		`"source" -> "package-1" [color="#94a3b8"]`,
		`"step-0-0-0" -> "step-0-0-1" [color="#6366f1", style=bold]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q in:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "label=\"1\"") {
		t.Error("simplified graph should have no edge labels")
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(sampleGraph(lineage.ViewDetailed), Options{})
	if !strings.Contains(dot, `"procedure-0-0" -> "step-0-0-0" [color="#94a3b8", label="1"]`) {
		t.Errorf("detailed graph should label edges:\n%s", dot)
	}
	if !strings.Contains(dot, `label="PKG_ORDERS\nD:2 I:0 R:120"`) {
		t.Errorf("detailed graph should carry captions:\n%s", dot)
	}
}

func TestToDOT_DetailedOption(t *testing.T) {
	dot := ToDOT(sampleGraph(lineage.ViewSimplified), Options{Detailed: true, Scale: 0.5})
	if !strings.Contains(dot, `label="PKG_ORDERS\ndirect: 2  indirect: 0  risk: 120"`) {
		t.Errorf("Detailed option should add metrics:\n%s", dot)
	}
	if !strings.Contains(dot, `pos="200.00,-150.00!"`) {
		t.Errorf("Scale should multiply positions:\n%s", dot)
	}
}

func TestToDOT_Empty(t *testing.T) {
	dot := ToDOT(lineage.Graph{}, Options{})
	if !strings.HasPrefix(dot, "digraph G {") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("ToDOT(empty) = %q", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if out != want {
		t.Errorf("normalizeViewBox() = %q, want %q", out, want)
	}

	noBox := []byte(`<svg><g/></svg>`)
	if got := normalizeViewBox(noBox); !bytes.Equal(got, noBox) {
		t.Errorf("normalizeViewBox() without viewBox = %q", got)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(sampleGraph(lineage.ViewDetailed), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte("PKG_ORDERS")) {
		t.Error("RenderSVG() output should be an SVG containing node labels")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("RenderSVG() should fail on malformed DOT")
	}
}
