package lineage

import (
	"slices"

	"github.com/matzehuels/lineagescope/pkg/errors"
	"github.com/matzehuels/lineagescope/pkg/report"
)

// =============================================================================
// Constants
// =============================================================================

// Kind is the hierarchy level of a node.
type Kind string

// Node kinds.
const (
	KindSource    Kind = "source"
	KindPackage   Kind = "package"
	KindProcedure Kind = "procedure"
	KindStep      Kind = "step"
)

// Expandable reports whether nodes of this kind carry expansion state.
func (k Kind) Expandable() bool {
	return k == KindPackage || k == KindProcedure
}

// ViewMode selects how much annotation the graph carries.
type ViewMode string

// View modes.
const (
	ViewSimplified ViewMode = "simplified"
	ViewDetailed   ViewMode = "detailed"
)

// ParseViewMode parses a view mode name. The empty string means simplified.
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(s) {
	case "", ViewSimplified:
		return ViewSimplified, nil
	case ViewDetailed:
		return ViewDetailed, nil
	}
	return "", errors.New(errors.ErrCodeInvalidViewMode, "unknown view mode %q (want simplified or detailed)", s)
}

// Reference scopes for [Reference.Scope].
const (
	ScopeDirect   = "direct"
	ScopeIndirect = "indirect"
)

// =============================================================================
// Graph
// =============================================================================

// Graph is the output of [Build]: an ordered node list and edge list.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Position is a point in layout space.
type Position struct {
	X float64 `json:"x" bson:"x" toml:"x"`
	Y float64 `json:"y" bson:"y" toml:"y"`
}

// Metrics are the reference counts shown on a node.
// RiskScore is only ever non-zero on package nodes.
type Metrics struct {
	DirectRefs   int     `json:"directRefs"`
	IndirectRefs int     `json:"indirectRefs"`
	RiskScore    float64 `json:"riskScore"`
	StepCount    *int    `json:"stepCount,omitempty"`
}

// Total returns direct plus indirect references.
func (m Metrics) Total() int { return m.DirectRefs + m.IndirectRefs }

// Node is one rendered vertex.
type Node struct {
	ID       string   `json:"id"`
	Kind     Kind     `json:"kind"`
	Label    string   `json:"label"`
	Name     string   `json:"name"`
	Caption  string   `json:"caption,omitempty"` // detailed view only
	Position Position `json:"position"`
	Metrics  Metrics  `json:"metrics"`
	Expanded bool     `json:"expanded"`

	// Detail holds the full reference lists of a step node; nil elsewhere.
	Detail *StepDetail `json:"detail,omitempty"`
}

// StepDetail is the payload carried by step nodes.
type StepDetail struct {
	Procedure string      `json:"procedure"`
	StepID    string      `json:"stepId"`
	StepLine  *int        `json:"stepLine,omitempty"`
	Direct    []Reference `json:"direct"`
	Indirect  []Reference `json:"indirect"`
}

// Reference is a SQL reference tagged with where it was found.
type Reference struct {
	Text     string `json:"text,omitempty"`
	StepID   string `json:"stepId,omitempty"`
	Line     *int   `json:"line,omitempty"`
	Type     string `json:"type,omitempty"`
	Scope    string `json:"scope"`
	StepLine *int   `json:"stepLine,omitempty"` // step line of the owning group
}

func newReference(ref report.SQLReference, scope string, stepLine *int) Reference {
	return Reference{
		Text:     ref.Text,
		StepID:   ref.StepID,
		Line:     ref.Line,
		Type:     ref.Type,
		Scope:    scope,
		StepLine: stepLine,
	}
}

// Edge is one rendered connection.
type Edge struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	Target     string `json:"target"`
	Weight     int    `json:"weight"`
	Label      string `json:"label,omitempty"` // detailed view only
	Emphasized bool   `json:"emphasized"`
	Chain      bool   `json:"chain,omitempty"`
}

// Node returns the node with the given id, or nil.
func (g Graph) Node(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// Edge returns the edge between source and target, or nil.
func (g Graph) Edge(source, target string) *Edge {
	for i := range g.Edges {
		if g.Edges[i].Source == source && g.Edges[i].Target == target {
			return &g.Edges[i]
		}
	}
	return nil
}

// NodesOfKind returns the nodes of kind k in graph order.
func (g Graph) NodesOfKind(k Kind) []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.Kind == k {
			out = append(out, n)
		}
	}
	return out
}

// Stats summarizes a graph.
type Stats struct {
	Nodes  int          `json:"nodes"`
	Edges  int          `json:"edges"`
	ByKind map[Kind]int `json:"byKind"`
}

// Stats counts nodes and edges.
func (g Graph) Stats() Stats {
	s := Stats{Nodes: len(g.Nodes), Edges: len(g.Edges), ByKind: map[Kind]int{}}
	for _, n := range g.Nodes {
		s.ByKind[n.Kind]++
	}
	return s
}

// =============================================================================
// Sets and lookups
// =============================================================================

// Set is a set of node ids.
type Set map[string]struct{}

// NewSet returns a set holding ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set. A nil set is empty.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id.
func (s Set) Add(id string) { s[id] = struct{}{} }

// Remove deletes id.
func (s Set) Remove(id string) { delete(s, id) }

// Sorted returns the ids in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// PositionLookup resolves user-chosen positions by node id.
type PositionLookup interface {
	Lookup(id string) (Position, bool)
}

// PositionMap is a plain map implementation of [PositionLookup].
type PositionMap map[string]Position

// Lookup implements [PositionLookup].
func (m PositionMap) Lookup(id string) (Position, bool) {
	p, ok := m[id]
	return p, ok
}
