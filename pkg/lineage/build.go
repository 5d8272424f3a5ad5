package lineage

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/lineagescope/pkg/report"
)

// Options is the interaction state a build depends on. The zero value builds
// a collapsed, simplified, unfiltered graph with the default layout.
type Options struct {
	// ExpandedPackages holds the package ids whose procedures are shown.
	ExpandedPackages Set

	// ExpandedProcedures holds the procedure ids whose steps are shown.
	// Ids whose package is collapsed are ignored.
	ExpandedProcedures Set

	// ViewMode controls edge labels and node captions.
	ViewMode ViewMode

	// RiskFilter hides packages scoring below RiskThreshold.
	RiskFilter bool

	// RiskThreshold is the minimum score kept by the risk filter. Nil means
	// report.RiskFilterThreshold; a zero threshold keeps every package.
	RiskThreshold *float64

	// StableIDs numbers packages by their index in the report rather than
	// their index after filtering, so toggling the filter keeps ids intact.
	StableIDs bool

	// Overrides supplies user-chosen positions. May be nil.
	Overrides PositionLookup

	// Layout defaults to DefaultLayout() when zero.
	Layout LayoutConfig
}

func (o Options) layout() LayoutConfig {
	if o.Layout.IsZero() {
		return DefaultLayout()
	}
	return o.Layout
}

func (o Options) threshold() float64 {
	if o.RiskThreshold == nil {
		return report.RiskFilterThreshold
	}
	return *o.RiskThreshold
}

func (o Options) detailed() bool { return o.ViewMode == ViewDetailed }

// Retained reports which report indices survive the risk filter.
func (o Options) Retained(r *report.Report) []int {
	if r.Empty() {
		return nil
	}
	out := make([]int, 0, len(r.Packages))
	for i, p := range r.Packages {
		if o.RiskFilter && p.RiskScore < o.threshold() {
			continue
		}
		out = append(out, i)
	}
	return out
}

// Build converts a report into a graph. It never fails: a nil report, one
// without a target or one without packages yields an empty graph.
func Build(r *report.Report, opts Options) Graph {
	g := Graph{Nodes: []Node{}, Edges: []Edge{}}
	if r.Empty() || r.Target == nil {
		return g
	}

	b := &builder{opts: opts, layout: opts.layout(), graph: &g}
	retained := opts.Retained(r)

	source := b.addSource(r, retained)
	for fi, ri := range retained {
		idx := fi
		if opts.StableIDs {
			idx = ri
		}
		b.addPackage(&r.Packages[ri], idx, fi, len(retained), source)
	}
	return g
}

// builder accumulates nodes and edges for one Build call.
type builder struct {
	opts   Options
	layout LayoutConfig
	graph  *Graph
}

// place returns the override for id if present, else def.
func (b *builder) place(id string, def Position) Position {
	if b.opts.Overrides != nil {
		if p, ok := b.opts.Overrides.Lookup(id); ok {
			return p
		}
	}
	return def
}

func (b *builder) addNode(n Node) Position {
	b.graph.Nodes = append(b.graph.Nodes, n)
	return n.Position
}

func (b *builder) addEdge(source, target string, weight int, emphasized, chain bool) {
	e := Edge{
		ID:         EdgeID(source, target),
		Source:     source,
		Target:     target,
		Weight:     weight,
		Emphasized: emphasized,
		Chain:      chain,
	}
	if b.opts.detailed() {
		e.Label = strconv.Itoa(weight)
	}
	b.graph.Edges = append(b.graph.Edges, e)
}

func (b *builder) addSource(r *report.Report, retained []int) Position {
	var m Metrics
	for _, i := range retained {
		m.DirectRefs += r.Packages[i].DirectCount()
		m.IndirectRefs += r.Packages[i].IndirectCount()
	}

	label := r.Target.QualifiedName()
	if label == "" {
		label = "source"
	}
	n := Node{
		ID:       SourceID,
		Kind:     KindSource,
		Label:    label,
		Name:     label,
		Position: b.place(SourceID, b.layout.Anchor),
		Metrics:  m,
	}
	if b.opts.detailed() {
		n.Caption = fmt.Sprintf("%d packages", len(retained))
	}
	return b.addNode(n)
}

func (b *builder) addPackage(pkg *report.PackageEntry, idx, slot, count int, source Position) {
	id := PackageID(idx)
	expanded := b.opts.ExpandedPackages.Has(id)

	m := Metrics{
		DirectRefs:   pkg.DirectCount(),
		IndirectRefs: pkg.IndirectCount(),
		RiskScore:    pkg.RiskScore,
	}
	n := Node{
		ID:       id,
		Kind:     KindPackage,
		Label:    pkg.DisplayName(),
		Name:     pkg.Name,
		Position: b.place(id, circlePoint(b.layout.Anchor, b.layout.PackageRadius, slot, count)),
		Metrics:  m,
		Expanded: expanded,
	}
	if b.opts.detailed() {
		n.Caption = fmt.Sprintf("D:%d I:%d R:%g", m.DirectRefs, m.IndirectRefs, m.RiskScore)
	}
	pos := b.addNode(n)
	b.addEdge(SourceID, id, m.Total(), pkg.RiskScore > report.RiskCritical, false)

	if !expanded {
		return
	}
	procs := groupProcedures(pkg)
	for j, proc := range procs {
		b.addProcedure(proc, idx, j, len(procs), id, pos)
	}
}

func (b *builder) addProcedure(proc *procedureGroup, i, j, count int, pkgID string, pkgPos Position) {
	id := ProcedureID(i, j)
	expanded := b.opts.ExpandedProcedures.Has(id)

	direct, indirect := proc.counts()
	steps := len(proc.steps)
	m := Metrics{DirectRefs: direct, IndirectRefs: indirect, StepCount: &steps}
	n := Node{
		ID:       id,
		Kind:     KindProcedure,
		Label:    proc.name,
		Name:     proc.name,
		Position: b.place(id, circlePoint(pkgPos, b.layout.ProcedureRadius, j, count)),
		Metrics:  m,
		Expanded: expanded,
	}
	if b.opts.detailed() {
		n.Caption = fmt.Sprintf("D:%d I:%d steps:%d", direct, indirect, steps)
	}
	pos := b.addNode(n)
	b.addEdge(pkgID, id, m.Total(), false, false)

	if !expanded {
		return
	}

	k := 0
	for row, chain := range chainSteps(proc.steps) {
		prev := ""
		for col, step := range chain.steps {
			stepID := StepID(i, j, k)
			k++
			b.addStep(step, proc.name, stepID, stepPoint(b.layout, pos, row, col, len(chain.steps)))
			if prev == "" {
				b.addEdge(id, stepID, step.total(), false, false)
			} else {
				b.addEdge(prev, stepID, step.total(), true, true)
			}
			prev = stepID
		}
	}
}

func (b *builder) addStep(step *stepGroup, procedure, id string, def Position) {
	n := Node{
		ID:       id,
		Kind:     KindStep,
		Label:    step.id,
		Name:     step.id,
		Position: b.place(id, def),
		Metrics:  Metrics{DirectRefs: len(step.direct), IndirectRefs: len(step.indirect)},
		Detail: &StepDetail{
			Procedure: procedure,
			StepID:    step.id,
			StepLine:  step.stepLine,
			Direct:    nonNil(step.direct),
			Indirect:  nonNil(step.indirect),
		},
	}
	if b.opts.detailed() {
		n.Caption = fmt.Sprintf("D:%d I:%d", n.Metrics.DirectRefs, n.Metrics.IndirectRefs)
	}
	b.addNode(n)
}

func nonNil(refs []Reference) []Reference {
	if refs == nil {
		return []Reference{}
	}
	return refs
}
