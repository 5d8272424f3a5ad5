package lineage

import "math"

// LayoutConfig holds the geometry used to place nodes.
type LayoutConfig struct {
	// Anchor is the source node position.
	Anchor Position `json:"anchor" toml:"anchor"`

	// PackageRadius is the circle radius for packages around the anchor.
	PackageRadius float64 `json:"packageRadius" toml:"package_radius"`

	// ProcedureRadius is the circle radius for procedures around their package.
	ProcedureRadius float64 `json:"procedureRadius" toml:"procedure_radius"`

	// StepSpacing is the horizontal distance between consecutive steps.
	StepSpacing float64 `json:"stepSpacing" toml:"step_spacing"`

	// StepOffset is the vertical distance from a procedure to its first step row.
	StepOffset float64 `json:"stepOffset" toml:"step_offset"`

	// StepRowSpacing is the vertical distance between step prefix rows.
	StepRowSpacing float64 `json:"stepRowSpacing" toml:"step_row_spacing"`
}

// DefaultLayout returns the geometry used when none is configured.
func DefaultLayout() LayoutConfig {
	return LayoutConfig{
		Anchor:          Position{X: 400, Y: 300},
		PackageRadius:   300,
		ProcedureRadius: 150,
		StepSpacing:     180,
		StepOffset:      120,
		StepRowSpacing:  80,
	}
}

// IsZero reports whether no field is set.
func (c LayoutConfig) IsZero() bool { return c == LayoutConfig{} }

// circlePoint returns the position of item i of n spaced evenly on a circle.
// Item 0 sits to the right of the center; angles grow clockwise in screen
// coordinates.
func circlePoint(center Position, radius float64, i, n int) Position {
	if n <= 0 {
		return center
	}
	angle := float64(i) * 2 * math.Pi / float64(n)
	return Position{
		X: center.X + radius*math.Cos(angle),
		Y: center.Y + radius*math.Sin(angle),
	}
}

// stepPoint returns the position of step k in a row of n steps, row index
// row, centered horizontally under the procedure.
func stepPoint(c LayoutConfig, proc Position, row, k, n int) Position {
	offset := (float64(k) - float64(n-1)/2) * c.StepSpacing
	return Position{
		X: proc.X + offset,
		Y: proc.Y + c.StepOffset + float64(row)*c.StepRowSpacing,
	}
}
