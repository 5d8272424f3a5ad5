package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/lineagescope/pkg/lineage"
	"github.com/matzehuels/lineagescope/pkg/render"
	"github.com/matzehuels/lineagescope/pkg/report"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed appends reference counts and risk to node labels.
	Detailed bool

	// Scale multiplies node positions. Zero means 1.
	Scale float64
}

// Fill colours by node kind and risk level.
const (
	colorSource    = "#dbeafe"
	colorProcedure = "#e0e7ff"
	colorStep      = "#ffffff"
	colorRiskHigh  = "#fecaca"
	colorRiskMed   = "#fde68a"
	colorRiskLow   = "#d1fae5"

	colorEdge     = "#94a3b8"
	colorCritical = "#dc2626"
	colorChain    = "#6366f1"
)

// ToDOT converts a lineage graph to Graphviz DOT format with pinned node
// positions. The resulting DOT string can be rendered using [RenderSVG],
// [RenderPDF], or [RenderPNG].
func ToDOT(g lineage.Graph, opts Options) string {
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=\"filled\", fontname=\"Helvetica\", fontsize=12, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=10, arrowsize=0.7];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		attrs := fmtNodeAttrs(n, opts.Detailed, scale)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(fmtEdgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n lineage.Node, detailed bool) string {
	lines := []string{n.Label}
	if n.Caption != "" {
		lines = append(lines, n.Caption)
	}
	if detailed && n.Caption == "" && n.Kind != lineage.KindSource {
		m := n.Metrics
		line := fmt.Sprintf("direct: %d  indirect: %d", m.DirectRefs, m.IndirectRefs)
		if n.Kind == lineage.KindPackage {
			line += fmt.Sprintf("  risk: %g", m.RiskScore)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func fmtNodeAttrs(n lineage.Node, detailed bool, scale float64) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, detailed)),
		fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(n.Position.X*scale), fmtFloat(-n.Position.Y*scale)),
	}

	switch n.Kind {
	case lineage.KindSource:
		attrs = append(attrs, "shape=cylinder", "fillcolor=\""+colorSource+"\"", "fontsize=14")
	case lineage.KindPackage:
		attrs = append(attrs, "shape=box", "style=\"rounded,filled\"", "fillcolor=\""+riskColor(n.Metrics.RiskScore)+"\"")
	case lineage.KindProcedure:
		attrs = append(attrs, "shape=ellipse", "fillcolor=\""+colorProcedure+"\"")
	case lineage.KindStep:
		attrs = append(attrs, "shape=box", "fillcolor=\""+colorStep+"\"", "fontsize=10")
	}
	if n.Expanded {
		attrs = append(attrs, "penwidth=2")
	}
	return attrs
}

func fmtEdgeAttrs(e lineage.Edge) []string {
	attrs := []string{}
	switch {
	case e.Chain:
		attrs = append(attrs, "color=\""+colorChain+"\"", "style=bold")
	case e.Emphasized:
		attrs = append(attrs, "color=\""+colorCritical+"\"", "penwidth=2.5")
	default:
		attrs = append(attrs, "color=\""+colorEdge+"\"")
	}
	if e.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
	}
	return attrs
}

func riskColor(score float64) string {
	switch report.RiskLevel(score) {
	case report.RiskHigh:
		return colorRiskHigh
	case report.RiskMedium:
		return colorRiskMed
	default:
		return colorRiskLow
	}
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// RenderSVG renders a DOT graph to SVG using Graphviz's neato engine, which
// honours pinned positions.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="(-?[0-9.]+)\s+(-?[0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's fixed-size svg tag with one that
// scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
