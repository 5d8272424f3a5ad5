// Package lineage turns a lineage report into a renderable node-link graph.
//
// # Hierarchy
//
// A report is drawn as four levels of nodes:
//
//	source ─→ package ─→ procedure ─→ step ─→ step ...
//
// Only the source and package levels are always visible. A package's
// procedures appear once the package id is in [Options.ExpandedPackages];
// a procedure's steps appear once its id is in [Options.ExpandedProcedures].
// Steps that share a prefix ("P1-2", "P1-10") are chained in numeric order
// rather than all hanging off the procedure.
//
// # Node IDs
//
// IDs are derived from positions in the hierarchy, so rebuilding the same
// report yields the same ids:
//
//	source
//	package-{i}
//	procedure-{i}-{j}
//	step-{i}-{j}-{k}
//
// i is the package index, j the procedure index within its package, and k the
// step index within its procedure in layout order. With [Options.StableIDs]
// i is the index in the unfiltered report; otherwise it is the index after the
// risk filter has been applied.
//
// # Layout
//
// Packages sit on a circle around the source anchor, procedures on a smaller
// circle around their package, and steps on horizontal rows below their
// procedure, one row per step prefix. Any position found in
// [Options.Overrides] replaces the computed one, and children are placed
// relative to the parent's actual position.
//
// # Purity
//
// [Build] has no side effects and no hidden state: calling it twice with the
// same arguments returns structurally identical graphs, which lets a renderer
// diff successive builds.
package lineage
