// Package detail turns a selected graph node into a display-ready view.
//
// [Present] never fails. A step node without its reference payload yields a
// view with [StatusNoDetail]; a node of an unrecognized kind yields
// [StatusUnknownKind]. Reference rows apply the same fallbacks everywhere:
// missing text shows as "N/A", a missing line falls back to the step's line
// and then "N/A", and a missing type falls back to the scope's default
// reference type.
package detail

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/lineagescope/pkg/lineage"
	"github.com/matzehuels/lineagescope/pkg/report"
)

// Status tells a renderer which shape a [View] has.
type Status string

const (
	StatusOK          Status = "ok"
	StatusNoDetail    Status = "no_detail"
	StatusUnknownKind Status = "unknown_kind"
)

// Fallback values shown for missing reference fields.
const (
	NotAvailable          = "N/A"
	DirectReferenceType   = "DIRECT_TABLE_REFERENCE"
	IndirectReferenceType = "INDIRECT_TABLE_REFERENCE"
)

// View is the detail for one node. Exactly one of the kind-specific fields is
// set when Status is StatusOK.
type View struct {
	Status  Status       `json:"status"`
	NodeID  string       `json:"nodeId,omitempty"`
	Kind    lineage.Kind `json:"kind,omitempty"`
	Title   string       `json:"title"`
	Message string       `json:"message,omitempty"`

	Source    *SourceView    `json:"source,omitempty"`
	Package   *PackageView   `json:"package,omitempty"`
	Procedure *ProcedureView `json:"procedure,omitempty"`
	Step      *StepView      `json:"step,omitempty"`
}

// SourceView identifies the analyzed column.
type SourceView struct {
	Schema string `json:"schema,omitempty"`
	Table  string `json:"table,omitempty"`
	Column string `json:"column,omitempty"`
}

// PackageView summarizes one package.
type PackageView struct {
	Name         string  `json:"name"`
	DisplayName  string  `json:"displayName"`
	DirectRefs   int     `json:"directRefs"`
	IndirectRefs int     `json:"indirectRefs"`
	RiskScore    float64 `json:"riskScore"`
	RiskLevel    string  `json:"riskLevel"`
}

// ProcedureView summarizes one procedure.
type ProcedureView struct {
	Name         string `json:"name"`
	DirectRefs   int    `json:"directRefs"`
	IndirectRefs int    `json:"indirectRefs"`
	StepCount    int    `json:"stepCount"`
}

// StepView lists every reference made at one step.
type StepView struct {
	Procedure string `json:"procedure"`
	StepID    string `json:"stepId"`
	Direct    []Row  `json:"direct"`
	Indirect  []Row  `json:"indirect"`
}

// Row is one reference with fallbacks applied.
type Row struct {
	Text string `json:"text"`
	Line string `json:"line"`
	Type string `json:"type"`
}

// Present builds the view for n. The report supplies the target columns for
// the source node and may be nil.
func Present(n *lineage.Node, r *report.Report) View {
	if n == nil {
		return unknown("", "")
	}

	v := View{Status: StatusOK, NodeID: n.ID, Kind: n.Kind, Title: n.Label}
	switch n.Kind {
	case lineage.KindSource:
		v.Source = &SourceView{}
		if r != nil && r.Target != nil {
			*v.Source = SourceView{Schema: r.Target.Schema, Table: r.Target.Table, Column: r.Target.Column}
		}

	case lineage.KindPackage:
		v.Package = &PackageView{
			Name:         n.Name,
			DisplayName:  n.Label,
			DirectRefs:   n.Metrics.DirectRefs,
			IndirectRefs: n.Metrics.IndirectRefs,
			RiskScore:    n.Metrics.RiskScore,
			RiskLevel:    report.RiskLevel(n.Metrics.RiskScore),
		}

	case lineage.KindProcedure:
		steps := 0
		if n.Metrics.StepCount != nil {
			steps = *n.Metrics.StepCount
		}
		v.Procedure = &ProcedureView{
			Name:         n.Name,
			DirectRefs:   n.Metrics.DirectRefs,
			IndirectRefs: n.Metrics.IndirectRefs,
			StepCount:    steps,
		}

	case lineage.KindStep:
		if n.Detail == nil {
			v.Status = StatusNoDetail
			v.Message = "No detail available"
			return v
		}
		v.Step = &StepView{
			Procedure: n.Detail.Procedure,
			StepID:    n.Detail.StepID,
			Direct:    rows(n.Detail.Direct, n.Detail.StepLine, DirectReferenceType),
			Indirect:  rows(n.Detail.Indirect, n.Detail.StepLine, IndirectReferenceType),
		}

	default:
		return unknown(n.ID, n.Label)
	}
	return v
}

func unknown(id, title string) View {
	return View{Status: StatusUnknownKind, NodeID: id, Title: title, Message: "Unknown node type"}
}

func rows(refs []lineage.Reference, stepLine *int, defaultType string) []Row {
	out := make([]Row, 0, len(refs))
	for _, ref := range refs {
		out = append(out, RowOf(ref, stepLine, defaultType))
	}
	return out
}

// RowOf applies the display fallbacks to one reference. stepLine is the
// owning step's line, used when neither the reference nor its group has one.
func RowOf(ref lineage.Reference, stepLine *int, defaultType string) Row {
	row := Row{Text: ref.Text, Line: NotAvailable, Type: ref.Type}
	if row.Text == "" {
		row.Text = NotAvailable
	}
	switch {
	case ref.Line != nil:
		row.Line = strconv.Itoa(*ref.Line)
	case ref.StepLine != nil:
		row.Line = strconv.Itoa(*ref.StepLine)
	case stepLine != nil:
		row.Line = strconv.Itoa(*stepLine)
	}
	if row.Type == "" {
		row.Type = defaultType
	}
	return row
}

// Lines renders the view as plain text, one line per entry.
func (v View) Lines() []string {
	lines := []string{v.Title}
	if v.Status != StatusOK {
		return append(lines, v.Message)
	}

	switch {
	case v.Source != nil:
		lines = append(lines,
			"Schema: "+orNA(v.Source.Schema),
			"Table:  "+orNA(v.Source.Table),
			"Column: "+orNA(v.Source.Column),
		)
	case v.Package != nil:
		p := v.Package
		lines = append(lines,
			"Package:  "+p.Name,
			fmt.Sprintf("Direct:   %d", p.DirectRefs),
			fmt.Sprintf("Indirect: %d", p.IndirectRefs),
			fmt.Sprintf("Risk:     %g (%s)", p.RiskScore, p.RiskLevel),
		)
	case v.Procedure != nil:
		p := v.Procedure
		lines = append(lines,
			"Procedure: "+p.Name,
			fmt.Sprintf("Direct:    %d", p.DirectRefs),
			fmt.Sprintf("Indirect:  %d", p.IndirectRefs),
			fmt.Sprintf("Steps:     %d", p.StepCount),
		)
	case v.Step != nil:
		s := v.Step
		lines = append(lines, "Procedure: "+s.Procedure, "Step:      "+s.StepID)
		lines = appendRows(lines, "Direct references", s.Direct)
		lines = appendRows(lines, "Indirect references", s.Indirect)
	}
	return lines
}

func appendRows(lines []string, heading string, rows []Row) []string {
	lines = append(lines, fmt.Sprintf("%s (%d)", heading, len(rows)))
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("  [line %s] %s  %s", r.Line, r.Type, r.Text))
	}
	return lines
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
