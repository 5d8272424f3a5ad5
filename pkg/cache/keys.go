package cache

import "slices"

// Keyer derives cache keys.
type Keyer interface {
	// GraphKey returns the key of a graph built from a report.
	GraphKey(reportHash string, opts GraphKeyOpts) string

	// ArtifactKey returns the key of a rendered graph.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// GraphKeyOpts holds the build settings that change a graph.
type GraphKeyOpts struct {
	ExpandedPackages   []string `json:"packages"`
	ExpandedProcedures []string `json:"procedures"`
	ViewMode           string   `json:"view"`
	RiskFilter         bool     `json:"risk"`
	RiskThreshold      float64  `json:"threshold"`
	StableIDs          bool     `json:"stable"`
	PositionsHash      string   `json:"positions"`
	LayoutHash         string   `json:"layout"`
}

// ArtifactKeyOpts holds the render settings that change an artifact.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Detailed bool    `json:"detailed"`
	Scale    float64 `json:"scale,omitempty"`
}

// DefaultKeyer hashes key options with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// GraphKey implements [Keyer]. Expansion sets are order-insensitive.
func (DefaultKeyer) GraphKey(reportHash string, opts GraphKeyOpts) string {
	opts.ExpandedPackages = sorted(opts.ExpandedPackages)
	opts.ExpandedProcedures = sorted(opts.ExpandedProcedures)
	return hashKey("graph", reportHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphHash, opts)
}

func sorted(ids []string) []string {
	out := slices.Clone(ids)
	if out == nil {
		out = []string{}
	}
	slices.Sort(out)
	return out
}

var _ Keyer = DefaultKeyer{}
