// Package pkg provides the core libraries for lineagescope, an interactive
// explorer for column impact analysis reports.
//
// # Overview
//
// lineagescope turns a lineage report (which database packages, procedures
// and steps reference one target column) into a node-link graph that users
// expand, drag and inspect one node at a time. The pkg directory is organized
// into three areas:
//
//  1. Domain: [report], [lineage], [interact], [detail]
//  2. Orchestration: [pipeline], [render]
//  3. Infrastructure: [cache], [session], [config], [errors], [observability]
//
// # Architecture
//
// The typical data flow:
//
//	report JSON
//	     ↓
//	[report] package (parse + normalize)
//	     ↓
//	[interact] package (expansion, position overrides, view settings)
//	     ↓
//	[lineage] package (positioned nodes and edges)
//	     ↓
//	[render/nodelink] package (DOT, SVG, PNG, PDF)
//
// [detail] presents the node a user clicked.
//
// # Quick Start
//
//	r, _ := report.ReadFile("report.json")
//
//	ctrl := interact.NewController(interact.DefaultConfig())
//	ctrl.Load(ctx, r)
//	res, _ := ctrl.OnNodeClick(ctx, "package-0") // expand
//	fmt.Println(res.Detail.Lines())
//
//	g := ctrl.Graph()
//	out, _ := pipeline.Render(ctx, g, pipeline.Options{Formats: []string{pipeline.FormatSVG}})
//	os.WriteFile("lineage.svg", out[pipeline.FormatSVG], 0o644)
//
// # Main Packages
//
// [report] - The report model: target column, summary and the packages
// with their direct and indirect SQL references. Risk scores arrive as
// numbers or numeric strings and are normalized on load.
//
// [lineage] - The graph builder. Pure function of a report plus expansion
// sets, position overrides, view mode and risk filter.
//
// [interact] - Per-session interaction state and the controller that maps
// clicks, drags and toggles onto graph rebuilds.
//
// [detail] - Display-ready detail views for source, package, procedure and
// step nodes.
//
// [pipeline] - Build and render with content-addressed caching. Used by the
// CLI and the HTTP server alike.
//
// [cache] - Null, file and Redis caches plus key derivation.
//
// [session] - Memory, file, Redis and MongoDB stores for interaction
// sessions.
//
// [report]: https://pkg.go.dev/github.com/matzehuels/lineagescope/pkg/report
// [lineage]: https://pkg.go.dev/github.com/matzehuels/lineagescope/pkg/lineage
// [interact]: https://pkg.go.dev/github.com/matzehuels/lineagescope/pkg/interact
// [detail]: https://pkg.go.dev/github.com/matzehuels/lineagescope/pkg/detail
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/lineagescope/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/matzehuels/lineagescope/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/lineagescope/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/lineagescope/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/lineagescope/pkg/session
// [config]: https://pkg.go.dev/github.com/matzehuels/lineagescope/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/lineagescope/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/lineagescope/pkg/observability
package pkg
