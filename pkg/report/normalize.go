package report

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// Report
// =============================================================================

type wireReport struct {
	Target    *Target         `json:"target"`
	Timestamp json.RawMessage `json:"timestamp"`
	Summary   wireSummary     `json:"summary"`
	Packages  json.RawMessage `json:"packageAnalysis"`
}

type wireSummary struct {
	TotalPackages    number `json:"totalPackages"`
	ImpactedPackages number `json:"impactedPackages"`
	TotalImpact      number `json:"totalImpact"`
}

// UnmarshalJSON decodes a report, accepting the loose shapes described in
// the package documentation.
func (r *Report) UnmarshalJSON(data []byte) error {
	var w wireReport
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*r = Report{
		Target:    w.Target,
		Timestamp: parseTimestamp(w.Timestamp),
		Summary: Summary{
			TotalPackages:    w.Summary.TotalPackages.Int(),
			ImpactedPackages: w.Summary.ImpactedPackages.Int(),
			TotalImpact:      w.Summary.TotalImpact.Int(),
		},
	}

	if isArray(w.Packages) {
		if err := json.Unmarshal(w.Packages, &r.Packages); err != nil {
			return err
		}
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp accepts RFC 3339 and a few common variants, or epoch
// milliseconds. Anything else yields the zero time.
func parseTimestamp(raw json.RawMessage) time.Time {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == 'n' {
		return time.Time{}
	}
	if raw[0] != '"' {
		var ms int64
		if err := json.Unmarshal(raw, &ms); err == nil {
			return time.UnixMilli(ms).UTC()
		}
		return time.Time{}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// =============================================================================
// PackageEntry
// =============================================================================

type wirePackage struct {
	Name      text            `json:"packageName"`
	RiskScore number          `json:"riskScore"`
	Direct    json.RawMessage `json:"directReferences"`
	Indirect  json.RawMessage `json:"indirectReferences"`
}

// UnmarshalJSON decodes a package entry. Reference lists that are missing or
// not arrays decode as empty.
func (p *PackageEntry) UnmarshalJSON(data []byte) error {
	var w wirePackage
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*p = PackageEntry{
		Name:      string(w.Name),
		RiskScore: w.RiskScore.Float(),
	}
	if p.RiskScore < 0 {
		p.RiskScore = 0
	}

	var err error
	if p.Direct, err = decodeGroups(w.Direct); err != nil {
		return err
	}
	if p.Indirect, err = decodeGroups(w.Indirect); err != nil {
		return err
	}
	return nil
}

func decodeGroups(raw json.RawMessage) ([]ReferenceGroup, error) {
	if !isArray(raw) {
		return nil, nil
	}
	var groups []ReferenceGroup
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// =============================================================================
// ReferenceGroup
// =============================================================================

type wireGroup struct {
	Procedure  text            `json:"procedure"`
	StepID     text            `json:"stepId"`
	StepLine   number          `json:"stepLine"`
	References json.RawMessage `json:"references"`

	// Flat-shape fields, used when References is absent.
	Text          text   `json:"text"`
	SQLText       text   `json:"sqlText"`
	Line          number `json:"line"`
	Type          text   `json:"type"`
	ReferenceType text   `json:"referenceType"`
}

// UnmarshalJSON decodes a reference group. A group without a references
// array becomes a single reference built from its own fields.
func (g *ReferenceGroup) UnmarshalJSON(data []byte) error {
	var w wireGroup
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*g = ReferenceGroup{
		Procedure: strings.TrimSpace(string(w.Procedure)),
		StepID:    strings.TrimSpace(string(w.StepID)),
		StepLine:  w.StepLine.IntPtr(),
	}
	if g.Procedure == "" {
		g.Procedure = UnknownProcedure
	}

	if isArray(w.References) {
		var refs []SQLReference
		if err := json.Unmarshal(w.References, &refs); err != nil {
			return err
		}
		g.References = refs
	} else {
		g.Flat = true
		ref := SQLReference{
			Text: firstNonEmpty(string(w.Text), string(w.SQLText)),
			Line: w.Line.IntPtr(),
			Type: firstNonEmpty(string(w.Type), string(w.ReferenceType)),
		}
		if ref.Line == nil {
			ref.Line = g.StepLine
		}
		g.References = []SQLReference{ref}
	}

	// Non-nil so canonical output always carries an array.
	if g.References == nil {
		g.References = []SQLReference{}
	}
	for i := range g.References {
		if g.References[i].StepID == "" {
			g.References[i].StepID = g.StepID
		}
	}
	return nil
}

// =============================================================================
// SQLReference
// =============================================================================

type wireReference struct {
	Text          text   `json:"text"`
	SQLText       text   `json:"sqlText"`
	StepID        text   `json:"stepId"`
	Line          number `json:"line"`
	StepLine      number `json:"stepLine"`
	Type          text   `json:"type"`
	ReferenceType text   `json:"referenceType"`
}

// UnmarshalJSON decodes a reference given either as a bare SQL string or as
// an object using any of the accepted field aliases.
func (s *SQLReference) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] == 'n' {
		*s = SQLReference{}
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = SQLReference{Text: str}
		return nil
	}

	var w wireReference
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	line := w.Line.IntPtr()
	if line == nil {
		line = w.StepLine.IntPtr()
	}
	*s = SQLReference{
		Text:   firstNonEmpty(string(w.Text), string(w.SQLText)),
		StepID: strings.TrimSpace(string(w.StepID)),
		Line:   line,
		Type:   firstNonEmpty(string(w.Type), string(w.ReferenceType)),
	}
	return nil
}

// =============================================================================
// Lenient scalars
// =============================================================================

// number accepts a JSON number, a numeric string, or null.
type number struct {
	val float64
	ok  bool
}

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*n = number{}
	if len(data) == 0 || data[0] == 'n' {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*n = number{val: f, ok: true}
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	*n = number{val: f, ok: true}
	return nil
}

func (n number) Float() float64 { return n.val }

func (n number) Int() int { return int(n.val) }

func (n number) IntPtr() *int {
	if !n.ok {
		return nil
	}
	v := int(n.val)
	return &v
}

// text accepts a JSON string, number or boolean and keeps its textual form.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*t = ""
	if len(data) == 0 || data[0] == 'n' {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	if data[0] == '{' || data[0] == '[' {
		return nil
	}
	*t = text(data)
	return nil
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
