package interact

import (
	"maps"

	"github.com/matzehuels/lineagescope/pkg/lineage"
)

// State is a serializable snapshot of a controller's interaction state.
type State struct {
	ExpandedPackages   []string                    `json:"expandedPackages" bson:"expanded_packages"`
	ExpandedProcedures []string                    `json:"expandedProcedures" bson:"expanded_procedures"`
	Positions          map[string]lineage.Position `json:"positions" bson:"positions"`
	ViewMode           lineage.ViewMode            `json:"viewMode" bson:"view_mode"`
	RiskFilter         bool                        `json:"riskFilter" bson:"risk_filter"`
	Selected           string                      `json:"selected,omitempty" bson:"selected,omitempty"`
}

// NewState returns the state of a freshly loaded report.
func NewState() State {
	return State{
		ExpandedPackages:   []string{},
		ExpandedProcedures: []string{},
		Positions:          map[string]lineage.Position{},
		ViewMode:           lineage.ViewSimplified,
	}
}

// Expansion returns the expansion sets held by s.
func (s State) Expansion() Expansion {
	return Expansion{
		Packages:   lineage.NewSet(s.ExpandedPackages...),
		Procedures: lineage.NewSet(s.ExpandedProcedures...),
	}
}

// Overrides returns a position store holding s's positions.
func (s State) Overrides() *Positions {
	p := NewPositions()
	maps.Copy(p.m, s.Positions)
	return p
}

// Options returns the build options for s on top of base, which supplies
// layout and id settings.
func (s State) Options(base lineage.Options) lineage.Options {
	e := s.Expansion()
	base.ExpandedPackages = e.Packages
	base.ExpandedProcedures = e.Procedures
	base.ViewMode = s.ViewMode
	base.RiskFilter = s.RiskFilter
	base.Overrides = lineage.PositionMap(s.Positions)
	return base
}
