package interact

import (
	"context"
	"encoding/json"
	"io"
	"reflect"
	"strconv"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lineagescope/pkg/errors"
	"github.com/matzehuels/lineagescope/pkg/lineage"
	"github.com/matzehuels/lineagescope/pkg/observability"
	"github.com/matzehuels/lineagescope/pkg/report"
)

func testReport() *report.Report {
	refs := func(texts ...string) []report.SQLReference {
		out := []report.SQLReference{}
		for _, t := range texts {
			out = append(out, report.SQLReference{Text: t})
		}
		return out
	}
	return &report.Report{
		Target: &report.Target{Table: "ORDERS", Column: "STATUS"},
		Packages: []report.PackageEntry{
			{
				Name:      "LOW.PKG",
				RiskScore: 10,
				Direct:    []report.ReferenceGroup{{Procedure: "P", StepID: "S-1", References: refs("q")}},
			},
			{
				Name:      "SALES.PKG_ORDERS",
				RiskScore: 120,
				Direct: []report.ReferenceGroup{
					{Procedure: "PROC_A", StepID: "P1-10", References: refs("q1")},
					{Procedure: "PROC_A", StepID: "P1-10", References: refs("q2")},
					{Procedure: "PROC_B", StepID: "X", References: refs("q3")},
				},
			},
		},
	}
}

func newTestController(t *testing.T) *Controller {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Logger = log.New(io.Discard)
	c := NewController(cfg)
	c.Load(context.Background(), testReport())
	return c
}

func TestController_Load(t *testing.T) {
	ctx := context.Background()
	c := newTestController(t)

	if got := len(c.Graph().Nodes); got != 3 {
		t.Fatalf("nodes after load = %d, want 3", got)
	}

	mustClick(t, c, "package-1")
	if err := c.OnNodePositionChange(ctx, "package-1", lineage.Position{X: 1, Y: 2}); err != nil {
		t.Fatal(err)
	}
	if err := c.SetViewMode(ctx, lineage.ViewDetailed); err != nil {
		t.Fatal(err)
	}

	c.Load(ctx, testReport())
	s := c.Snapshot()
	if len(s.ExpandedPackages) != 0 || len(s.Positions) != 0 || s.Selected != "" {
		t.Errorf("Load() should reset expansion, positions and selection, got %+v", s)
	}
	if s.ViewMode != lineage.ViewDetailed {
		t.Errorf("Load() should keep the view mode, got %q", s.ViewMode)
	}
}

func TestController_ExampleScenario(t *testing.T) {
	c := newTestController(t)

	res := mustClick(t, c, "package-1")
	if res.Action != ActionExpand || !res.Changed() {
		t.Fatalf("click package = %+v, want expand", res)
	}
	proc := c.Graph().Node("procedure-1-0")
	if proc == nil || proc.Label != "PROC_A" || proc.Metrics.DirectRefs != 2 {
		t.Fatalf("procedure-1-0 = %+v, want PROC_A with 2 direct refs", proc)
	}

	mustClick(t, c, "procedure-1-0")
	step := c.Graph().Node("step-1-0-0")
	if step == nil || step.Label != "P1-10" || step.Metrics.DirectRefs != 2 {
		t.Fatalf("step-1-0-0 = %+v", step)
	}
	if e := c.Graph().Edge("procedure-1-0", "step-1-0-0"); e == nil || e.Weight != 2 {
		t.Errorf("procedure→step edge = %+v, want weight 2", e)
	}
	if !c.Graph().Edge(lineage.SourceID, "package-1").Emphasized {
		t.Error("source→package-1 should be emphasized")
	}

	before := c.Graph()
	res = mustClick(t, c, "step-1-0-0")
	if res.Action != ActionDetail || res.Changed() {
		t.Errorf("click step = %+v, want detail without rebuild", res)
	}
	if res.Detail.Step == nil || len(res.Detail.Step.Direct) != 2 {
		t.Errorf("step detail = %+v, want 2 direct rows", res.Detail)
	}
	if !reflect.DeepEqual(before, c.Graph()) {
		t.Error("clicking a step should not change the graph")
	}
	if c.Selected() != "step-1-0-0" {
		t.Errorf("Selected() = %q", c.Selected())
	}
}

func TestController_ClickSource(t *testing.T) {
	c := newTestController(t)
	res := mustClick(t, c, lineage.SourceID)
	if res.Action != ActionNone || res.Changed() {
		t.Errorf("click source = %+v, want no-op", res)
	}
	if res.Detail.Source == nil || res.Detail.Source.Column != "STATUS" {
		t.Errorf("source detail = %+v", res.Detail)
	}
}

func TestController_ClickErrors(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	tests := []struct {
		id   string
		code errors.Code
	}{
		{"procedure-1-0", errors.ErrCodeNodeNotFound}, // package collapsed
		{"package-7", errors.ErrCodeNodeNotFound},
		{"../etc", errors.ErrCodeInvalidNodeID},
		{"", errors.ErrCodeInvalidNodeID},
	}
	for _, tt := range tests {
		_, err := c.OnNodeClick(ctx, tt.id)
		if got := errors.GetCode(err); got != tt.code {
			t.Errorf("OnNodeClick(%q) code = %q, want %q", tt.id, got, tt.code)
		}
	}
}

func TestController_CascadeCollapse(t *testing.T) {
	c := newTestController(t)
	mustClick(t, c, "package-1")
	mustClick(t, c, "procedure-1-0")
	mustClick(t, c, "package-1")
	mustClick(t, c, "package-1")

	if c.Graph().Node("step-1-0-0") != nil {
		t.Error("re-expanding a package should not restore its procedures' expansion")
	}
}

func TestController_OverridesSurviveCollapse(t *testing.T) {
	ctx := context.Background()
	c := newTestController(t)
	moved := lineage.Position{X: -40, Y: 75}

	mustClick(t, c, "package-1")
	if err := c.OnNodePositionChange(ctx, "procedure-1-1", moved); err != nil {
		t.Fatal(err)
	}
	mustClick(t, c, "package-1")
	if c.Graph().Node("procedure-1-1") != nil {
		t.Fatal("procedure should be hidden after collapse")
	}
	if err := c.SetViewMode(ctx, lineage.ViewDetailed); err != nil {
		t.Fatal(err)
	}
	mustClick(t, c, "package-1")

	if got := c.Graph().Node("procedure-1-1").Position; got != moved {
		t.Errorf("position after collapse/expand = %+v, want %+v", got, moved)
	}

	if n := c.ResetPositions(ctx); n != 1 {
		t.Errorf("ResetPositions() = %d, want 1", n)
	}
	if got := c.Graph().Node("procedure-1-1").Position; got == moved {
		t.Error("ResetPositions() should restore the computed position")
	}
}

func TestController_PositionChangeAnyID(t *testing.T) {
	ctx := context.Background()
	c := newTestController(t)

	tests := []struct {
		id  string
		pos lineage.Position
	}{
		{"custom-node", lineage.Position{X: 1, Y: 2}},
		{"not a node", lineage.Position{X: -5, Y: 0}},
		{"step-9-9-9", lineage.Position{X: 3, Y: 4}},
	}
	for _, tt := range tests {
		if err := c.OnNodePositionChange(ctx, tt.id, tt.pos); err != nil {
			t.Errorf("OnNodePositionChange(%q) error = %v", tt.id, err)
		}
		if got, ok := c.Positions().Get(tt.id); !ok || got != tt.pos {
			t.Errorf("Positions().Get(%q) = %v, %v, want %v", tt.id, got, ok, tt.pos)
		}
	}
	if n := c.Positions().Len(); n != len(tests) {
		t.Errorf("Positions().Len() = %d, want %d", n, len(tests))
	}

	err := c.OnNodePositionChange(ctx, "", lineage.Position{})
	if !errors.Is(err, errors.ErrCodeInvalidNodeID) {
		t.Errorf("OnNodePositionChange(\"\") error = %v, want invalid node id", err)
	}
	if n := c.Positions().Len(); n != len(tests) {
		t.Error("empty id should not be stored")
	}
}

func TestController_RiskFilter(t *testing.T) {
	ctx := context.Background()
	c := newTestController(t)

	if on := c.ToggleRiskFilter(ctx); !on {
		t.Fatal("ToggleRiskFilter() should turn the filter on")
	}
	pkgs := c.Graph().NodesOfKind(lineage.KindPackage)
	if len(pkgs) != 1 || pkgs[0].ID != "package-1" {
		t.Errorf("filtered packages = %+v, want only package-1 (stable id)", pkgs)
	}
	if c.Report().Summary != testReport().Summary {
		t.Error("filter should not modify the report")
	}

	c.SetRiskFilter(ctx, false)
	if n := len(c.Graph().NodesOfKind(lineage.KindPackage)); n != 2 {
		t.Errorf("packages after filter off = %d, want 2", n)
	}
}

func TestController_SetViewMode(t *testing.T) {
	ctx := context.Background()
	c := newTestController(t)

	if err := c.SetViewMode(ctx, "fancy"); !errors.Is(err, errors.ErrCodeInvalidViewMode) {
		t.Errorf("SetViewMode(fancy) error = %v", err)
	}
	if err := c.SetViewMode(ctx, lineage.ViewDetailed); err != nil {
		t.Fatal(err)
	}
	if got := c.Graph().Edge(lineage.SourceID, "package-1").Label; got != "3" {
		t.Errorf("detailed edge label = %q, want 3", got)
	}
}

func TestController_SnapshotRestore(t *testing.T) {
	ctx := context.Background()
	c := newTestController(t)
	mustClick(t, c, "package-1")
	mustClick(t, c, "procedure-1-0")
	if err := c.OnNodePositionChange(ctx, "package-1", lineage.Position{X: 3, Y: 4}); err != nil {
		t.Fatal(err)
	}
	c.SetRiskFilter(ctx, true)

	data, err := json.Marshal(c.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatal(err)
	}

	other := NewController(Config{
		RiskThreshold: report.RiskFilterThreshold,
		StableIDs:     true,
		Logger:        log.New(io.Discard),
	})
	other.Load(ctx, testReport())
	other.Restore(ctx, s)

	if !reflect.DeepEqual(c.Graph(), other.Graph()) {
		t.Error("restored controller should build the same graph")
	}
	if !reflect.DeepEqual(c.Snapshot(), other.Snapshot()) {
		t.Errorf("Snapshot() = %+v, want %+v", other.Snapshot(), c.Snapshot())
	}
}

func TestController_EmptyReport(t *testing.T) {
	ctx := context.Background()
	c := NewController(Config{Logger: log.New(io.Discard)})
	c.Load(ctx, nil)

	g := c.Graph()
	if g.Nodes == nil || len(g.Nodes) != 0 {
		t.Errorf("Graph() = %+v, want empty", g)
	}
	if _, err := c.OnNodeClick(ctx, lineage.SourceID); !errors.IsNotFound(err) {
		t.Errorf("click on empty graph error = %v, want not found", err)
	}
	if v, err := c.Detail("source"); err == nil || v.Status != "" {
		t.Errorf("Detail() = %+v, %v", v, err)
	}
}

func TestController_Hooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetInteractionHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	c := newTestController(t)
	mustClick(t, c, "package-1")
	mustClick(t, c, "package-1")
	_ = c.OnNodePositionChange(ctx, "package-0", lineage.Position{})
	c.ResetPositions(ctx)

	want := []string{"click package-1 expand", "click package-1 collapse", "drag package-0", "reset 1"}
	if !reflect.DeepEqual(hooks.events, want) {
		t.Errorf("events = %v, want %v", hooks.events, want)
	}
}

func mustClick(t *testing.T, c *Controller, id string) ClickResult {
	t.Helper()
	res, err := c.OnNodeClick(context.Background(), id)
	if err != nil {
		t.Fatalf("OnNodeClick(%q) error: %v", id, err)
	}
	return res
}

type recordingHooks struct {
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(s string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, s)
}

func (h *recordingHooks) OnClick(_ context.Context, id, action string) {
	h.record("click " + id + " " + action)
}
func (h *recordingHooks) OnDrag(_ context.Context, id string) { h.record("drag " + id) }
func (h *recordingHooks) OnReset(_ context.Context, n int) {
	h.record("reset " + strconv.Itoa(n))
}
