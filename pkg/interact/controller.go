package interact

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lineagescope/pkg/detail"
	"github.com/matzehuels/lineagescope/pkg/errors"
	"github.com/matzehuels/lineagescope/pkg/lineage"
	"github.com/matzehuels/lineagescope/pkg/observability"
	"github.com/matzehuels/lineagescope/pkg/report"
)

// Config holds the settings a controller builds with.
type Config struct {
	// Layout is the node geometry. Zero means lineage.DefaultLayout().
	Layout lineage.LayoutConfig

	// RiskThreshold is the minimum score kept by the risk filter. It is used
	// as given; DefaultConfig sets report.RiskFilterThreshold.
	RiskThreshold float64

	// StableIDs keeps package ids tied to report order when filtering.
	StableIDs bool

	// ViewMode and RiskFilter are the initial view settings.
	ViewMode   lineage.ViewMode
	RiskFilter bool

	Logger *log.Logger
}

// DefaultConfig returns the default controller settings.
func DefaultConfig() Config {
	return Config{
		Layout:        lineage.DefaultLayout(),
		RiskThreshold: report.RiskFilterThreshold,
		StableIDs:     true,
		ViewMode:      lineage.ViewSimplified,
	}
}

// ClickResult describes what a node click did.
type ClickResult struct {
	NodeID string       `json:"nodeId"`
	Kind   lineage.Kind `json:"kind"`
	Action Action       `json:"action"`

	// Detail is the clicked node's detail view.
	Detail detail.View `json:"detail"`

	// Graph is the rebuilt graph when the click changed expansion.
	Graph *lineage.Graph `json:"graph,omitempty"`
}

// Changed reports whether the click changed the graph.
func (r ClickResult) Changed() bool { return r.Graph != nil }

// Controller binds user events to state transitions over one report.
type Controller struct {
	cfg    Config
	logger *log.Logger

	report    *report.Report
	expansion Expansion
	positions *Positions
	view      lineage.ViewMode
	filter    bool
	selected  string
	graph     lineage.Graph
}

// NewController creates a controller with no report loaded.
func NewController(cfg Config) *Controller {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.ViewMode == "" {
		cfg.ViewMode = lineage.ViewSimplified
	}
	return &Controller{
		cfg:       cfg,
		logger:    cfg.Logger,
		expansion: NewExpansion(),
		positions: NewPositions(),
		view:      cfg.ViewMode,
		filter:    cfg.RiskFilter,
		graph:     lineage.Graph{Nodes: []lineage.Node{}, Edges: []lineage.Edge{}},
	}
}

// Load replaces the report and resets expansion, positions and selection.
// View mode and risk filter carry over.
func (c *Controller) Load(ctx context.Context, r *report.Report) {
	c.report = r
	c.expansion.Reset()
	c.positions.Clear()
	c.selected = ""
	if r != nil {
		c.logger.Debug("report loaded", "target", r.Target.QualifiedName(), "packages", len(r.Packages))
	}
	c.rebuild(ctx)
}

// Report returns the loaded report, or nil.
func (c *Controller) Report() *report.Report { return c.report }

// Graph returns the current graph.
func (c *Controller) Graph() lineage.Graph { return c.graph }

// Selected returns the id of the last clicked node.
func (c *Controller) Selected() string { return c.selected }

// ViewMode returns the current view mode.
func (c *Controller) ViewMode() lineage.ViewMode { return c.view }

// RiskFilter reports whether the risk filter is on.
func (c *Controller) RiskFilter() bool { return c.filter }

// Positions returns the override store.
func (c *Controller) Positions() *Positions { return c.positions }

// Node returns the node with id in the current graph.
func (c *Controller) Node(id string) (*lineage.Node, error) {
	if err := errors.ValidateNodeID(id); err != nil {
		return nil, err
	}
	n := c.graph.Node(id)
	if n == nil {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "node %q is not in the graph", id)
	}
	return n, nil
}

// Detail returns the detail view of a node in the current graph.
func (c *Controller) Detail(id string) (detail.View, error) {
	n, err := c.Node(id)
	if err != nil {
		return detail.View{}, err
	}
	return detail.Present(n, c.report), nil
}

// OnNodeClick handles a click. Packages and procedures toggle their
// expansion and the graph is rebuilt. Steps and the source only select.
func (c *Controller) OnNodeClick(ctx context.Context, id string) (ClickResult, error) {
	n, err := c.Node(id)
	if err != nil {
		return ClickResult{}, err
	}
	c.selected = id

	res := ClickResult{NodeID: id, Kind: n.Kind, Action: ActionNone}
	switch {
	case n.Kind.Expandable():
		res.Action = c.expansion.Toggle(id)
		c.rebuild(ctx)
		g := c.graph
		res.Graph = &g
		n = c.graph.Node(id)
	case n.Kind == lineage.KindStep:
		res.Action = ActionDetail
	}
	res.Detail = detail.Present(n, c.report)

	observability.Interaction().OnClick(ctx, id, string(res.Action))
	c.logger.Debug("node clicked", "node", id, "action", res.Action)
	return res, nil
}

// OnNodePositionChange records a dragged position. Any non-empty id is
// accepted: it need not be in the current graph or follow the builder's id
// scheme, so positions for collapsed nodes can be restored.
func (c *Controller) OnNodePositionChange(ctx context.Context, id string, pos lineage.Position) error {
	if id == "" {
		return errors.New(errors.ErrCodeInvalidNodeID, "node id cannot be empty")
	}
	c.positions.Set(id, pos)
	observability.Interaction().OnDrag(ctx, id)
	c.logger.Debug("node moved", "node", id, "x", pos.X, "y", pos.Y)
	c.rebuild(ctx)
	return nil
}

// ResetPositions drops every override and returns how many were dropped.
func (c *Controller) ResetPositions(ctx context.Context) int {
	n := c.positions.Clear()
	observability.Interaction().OnReset(ctx, n)
	c.logger.Debug("positions reset", "cleared", n)
	c.rebuild(ctx)
	return n
}

// SetViewMode switches between simplified and detailed views.
func (c *Controller) SetViewMode(ctx context.Context, mode lineage.ViewMode) error {
	m, err := lineage.ParseViewMode(string(mode))
	if err != nil {
		return err
	}
	c.view = m
	c.rebuild(ctx)
	return nil
}

// SetRiskFilter turns the risk filter on or off.
func (c *Controller) SetRiskFilter(ctx context.Context, on bool) {
	c.filter = on
	c.rebuild(ctx)
}

// ToggleRiskFilter flips the risk filter and returns its new value.
func (c *Controller) ToggleRiskFilter(ctx context.Context) bool {
	c.SetRiskFilter(ctx, !c.filter)
	return c.filter
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	return State{
		ExpandedPackages:   c.expansion.Packages.Sorted(),
		ExpandedProcedures: c.expansion.Procedures.Sorted(),
		Positions:          c.positions.Map(),
		ViewMode:           c.view,
		RiskFilter:         c.filter,
		Selected:           c.selected,
	}
}

// Restore replaces the current state with s and rebuilds. An unknown view
// mode falls back to simplified.
func (c *Controller) Restore(ctx context.Context, s State) {
	c.expansion = s.Expansion()
	c.positions = s.Overrides()
	c.view = lineage.ViewSimplified
	if m, err := lineage.ParseViewMode(string(s.ViewMode)); err == nil {
		c.view = m
	}
	c.filter = s.RiskFilter
	c.selected = s.Selected
	c.rebuild(ctx)
}

// Options returns the build options for the current state.
func (c *Controller) Options() lineage.Options {
	threshold := c.cfg.RiskThreshold
	return lineage.Options{
		ExpandedPackages:   c.expansion.Packages,
		ExpandedProcedures: c.expansion.Procedures,
		ViewMode:           c.view,
		RiskFilter:         c.filter,
		RiskThreshold:      &threshold,
		StableIDs:          c.cfg.StableIDs,
		Overrides:          c.positions,
		Layout:             c.cfg.Layout,
	}
}

func (c *Controller) rebuild(ctx context.Context) {
	packages := 0
	if c.report != nil {
		packages = len(c.report.Packages)
	}
	observability.Build().OnBuildStart(ctx, packages)
	start := time.Now()

	c.graph = lineage.Build(c.report, c.Options())

	observability.Build().OnBuildComplete(ctx, len(c.graph.Nodes), len(c.graph.Edges), time.Since(start))
}
