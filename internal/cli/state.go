package cli

import (
	"context"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineagescope/pkg/errors"
	"github.com/matzehuels/lineagescope/pkg/interact"
	"github.com/matzehuels/lineagescope/pkg/lineage"
	"github.com/matzehuels/lineagescope/pkg/report"
)

// stateFlags are the interaction flags shared by build, render and detail.
type stateFlags struct {
	expand     []string // package and procedure ids to expand
	expandAll  bool     // expand every package and procedure
	view       string   // simplified or detailed
	riskFilter bool     // hide low-risk packages
}

func (f *stateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.expand, "expand", "e", nil, "node ids to expand, e.g. package-0,procedure-0-1 (comma-separated)")
	cmd.Flags().BoolVar(&f.expandAll, "expand-all", false, "expand every package and procedure")
	cmd.Flags().StringVar(&f.view, "view", string(lineage.ViewSimplified), "view mode: simplified (default), detailed")
	cmd.Flags().BoolVar(&f.riskFilter, "risk-filter", false, "hide packages below the risk threshold")
}

// controller loads r into a controller and replays the flags as clicks, so
// the result is exactly what an interactive user would reach.
func (f *stateFlags) controller(ctx context.Context, c *CLI, r *report.Report) (*interact.Controller, error) {
	ctrl := interact.NewController(c.controllerConfig())
	ctrl.Load(ctx, r)

	if err := ctrl.SetViewMode(ctx, lineage.ViewMode(f.view)); err != nil {
		return nil, err
	}
	ctrl.SetRiskFilter(ctx, f.riskFilter)

	if f.expandAll {
		if err := expandKind(ctx, ctrl, lineage.KindPackage); err != nil {
			return nil, err
		}
		if err := expandKind(ctx, ctrl, lineage.KindProcedure); err != nil {
			return nil, err
		}
	}

	// Packages before procedures so a procedure's parent is already open.
	ids := slices.Clone(f.expand)
	slices.SortStableFunc(ids, func(a, b string) int {
		return kindRank(lineage.ParseKind(a)) - kindRank(lineage.ParseKind(b))
	})
	for _, id := range ids {
		if !lineage.ParseKind(id).Expandable() {
			return nil, errors.New(errors.ErrCodeInvalidNodeID, "%s cannot be expanded (want a package or procedure id)", id)
		}
		if err := expand(ctx, ctrl, id); err != nil {
			return nil, err
		}
	}
	return ctrl, nil
}

// state returns the interaction state the flags describe.
func (f *stateFlags) state(ctx context.Context, c *CLI, r *report.Report) (interact.State, error) {
	ctrl, err := f.controller(ctx, c, r)
	if err != nil {
		return interact.State{}, err
	}
	s := ctrl.Snapshot()
	s.Selected = ""
	return s, nil
}

func expandKind(ctx context.Context, ctrl *interact.Controller, kind lineage.Kind) error {
	for _, n := range ctrl.Graph().NodesOfKind(kind) {
		if err := expand(ctx, ctrl, n.ID); err != nil {
			return err
		}
	}
	return nil
}

// expand clicks id unless it is already expanded.
func expand(ctx context.Context, ctrl *interact.Controller, id string) error {
	n, err := ctrl.Node(id)
	if err != nil {
		return err
	}
	if n.Expanded {
		return nil
	}
	_, err = ctrl.OnNodeClick(ctx, id)
	return err
}

func kindRank(k lineage.Kind) int {
	switch k {
	case lineage.KindPackage:
		return 0
	case lineage.KindProcedure:
		return 1
	}
	return 2
}
