package report

import (
	"strings"
	"time"

	"github.com/matzehuels/lineagescope/pkg/errors"
)

// UnknownProcedure is the procedure name used when a reference group has none.
const UnknownProcedure = "Unknown"

// Risk score thresholds shared by filtering, emphasis and display.
const (
	// RiskFilterThreshold is the minimum score kept by the risk filter.
	RiskFilterThreshold = 50.0

	// RiskElevated marks scores that render as medium risk.
	RiskElevated = 50.0

	// RiskCritical marks scores that render as high risk and emphasize edges.
	RiskCritical = 100.0
)

// Risk levels returned by [RiskLevel].
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Report is one lineage analysis for a single target column.
type Report struct {
	Target    *Target        `json:"target,omitempty"`
	Timestamp time.Time      `json:"timestamp,omitzero"`
	Summary   Summary        `json:"summary"`
	Packages  []PackageEntry `json:"packageAnalysis"`
}

// Target identifies the analysed column.
type Target struct {
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Column string `json:"column"`
}

// QualifiedName returns "schema.table.column", skipping empty parts.
func (t *Target) QualifiedName() string {
	if t == nil {
		return ""
	}
	var parts []string
	for _, p := range []string{t.Schema, t.Table, t.Column} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// Summary holds the analyzer's counts. The graph builder never changes them,
// even when a filter hides packages.
type Summary struct {
	TotalPackages    int `json:"totalPackages"`
	ImpactedPackages int `json:"impactedPackages"`
	TotalImpact      int `json:"totalImpact"`
}

// PackageEntry is one package that references the target.
type PackageEntry struct {
	Name      string           `json:"packageName"`
	RiskScore float64          `json:"riskScore"`
	Direct    []ReferenceGroup `json:"directReferences"`
	Indirect  []ReferenceGroup `json:"indirectReferences"`
}

// DisplayName returns the last dotted segment of the package name.
func (p *PackageEntry) DisplayName() string {
	return LastSegment(p.Name)
}

// DirectCount returns the number of direct SQL references across all groups.
func (p *PackageEntry) DirectCount() int { return countRefs(p.Direct) }

// IndirectCount returns the number of indirect SQL references across all groups.
func (p *PackageEntry) IndirectCount() int { return countRefs(p.Indirect) }

// ReferenceGroup collects the SQL references found in one procedure step.
type ReferenceGroup struct {
	Procedure  string         `json:"procedure"`
	StepID     string         `json:"stepId"`
	StepLine   *int           `json:"stepLine,omitempty"`
	References []SQLReference `json:"references"`

	// Flat is set when the group had no references array and was decoded
	// as a single reference built from its own fields.
	Flat bool `json:"-"`
}

// SQLReference is one SQL fragment touching the target. Every field is optional.
type SQLReference struct {
	Text   string `json:"text,omitempty"`
	StepID string `json:"stepId,omitempty"`
	Line   *int   `json:"line,omitempty"`
	Type   string `json:"type,omitempty"`
}

// Empty reports whether the report has nothing to draw.
func (r *Report) Empty() bool {
	return r == nil || len(r.Packages) == 0
}

// Validate reports structural problems. Callers that only need a graph can
// skip it: the builder treats the same problems as an empty graph.
func (r *Report) Validate() error {
	if r == nil {
		return errors.New(errors.ErrCodeInvalidReport, "report is empty")
	}
	if r.Target == nil {
		return errors.New(errors.ErrCodeInvalidReport, "report has no target")
	}
	if len(r.Packages) == 0 {
		return errors.New(errors.ErrCodeInvalidReport, "report has no package analysis")
	}
	for i, p := range r.Packages {
		if p.RiskScore < 0 {
			return errors.New(errors.ErrCodeInvalidReport, "package %d (%s) has negative risk score", i, p.Name)
		}
	}
	return nil
}

// RiskLevel buckets a risk score for display.
func RiskLevel(score float64) string {
	switch {
	case score > RiskCritical:
		return RiskHigh
	case score > RiskElevated:
		return RiskMedium
	default:
		return RiskLow
	}
}

// LastSegment extracts the name from a dotted path like "sales.orders" -> "orders".
func LastSegment(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i+1:]
		}
	}
	return path
}

func countRefs(groups []ReferenceGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.References)
	}
	return n
}
