// Package nodelink renders lineage graphs as Graphviz node-link diagrams.
//
// # Overview
//
// Nodes keep the positions computed by the graph builder (or dragged by the
// user): [ToDOT] pins every node with pos="x,y!" and the neato engine lays
// out only the edges. Screen coordinates grow downward while Graphviz
// coordinates grow upward, so y is negated.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Styling
//
//   - source: cylinder
//   - package: rounded box filled by risk level
//   - procedure: ellipse
//   - step: small box
//
// Expanded nodes get a heavier outline. Emphasized edges (high-risk
// packages and step chains) are drawn bold and coloured. Edge labels appear
// when the graph was built in detailed view.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
