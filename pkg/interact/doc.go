// Package interact holds the per-session interaction state of a lineage
// graph and binds user events to state transitions.
//
// # State
//
// Three pieces of state feed [lineage.Build]:
//
//   - [Expansion]: which packages and procedures are open. Collapsing a
//     package also collapses every procedure beneath it.
//   - [Positions]: user-dragged node positions. They survive expand/collapse
//     cycles and view changes and are cleared only by an explicit reset or by
//     loading a new report.
//   - View mode and risk filter.
//
// [State] is the serializable snapshot of all of them, used by session stores.
//
// # Controller
//
// [Controller] owns one report and its state. Every event rebuilds the graph
// synchronously, so [Controller.Graph] always equals a fresh build of the
// current state:
//
//	c := interact.NewController(interact.DefaultConfig())
//	c.Load(ctx, r)
//	res, err := c.OnNodeClick(ctx, "package-0")   // expand
//	res, err = c.OnNodeClick(ctx, "step-0-0-0")   // detail, graph unchanged
//
// A Controller is not safe for concurrent use. Adapters that share one
// across goroutines must serialize access.
package interact
