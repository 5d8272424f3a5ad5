// Package pipeline provides the report → graph → artifact pipeline.
//
// This package implements the build and render stages shared by the CLI and
// the HTTP server. By centralizing this logic, both entry points cache and
// render identically.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Build: Turn a report plus interaction state into a positioned graph
//  2. Render: Generate output in various formats (JSON, DOT, SVG, PNG, PDF)
//
// Each stage can be run independently or as part of the complete pipeline.
// Both stages are cached by content hash; multiple formats render
// concurrently.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    State:   interact.NewState(),
//	    Formats: []string{"svg", "png"},
//	}
//	result, err := runner.Execute(ctx, r, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	g, err := runner.Build(ctx, r, opts)
//	artifacts, err := runner.Render(ctx, g, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lineagescope/pkg/cache"
	"github.com/matzehuels/lineagescope/pkg/errors"
	"github.com/matzehuels/lineagescope/pkg/interact"
	"github.com/matzehuels/lineagescope/pkg/lineage"
	"github.com/matzehuels/lineagescope/pkg/report"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultPNGScale is the default PNG resolution multiplier.
const DefaultPNGScale = 2.0

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// ContentTypes maps formats to MIME types.
var ContentTypes = map[string]string{
	FormatJSON: "application/json",
	FormatDOT:  "text/vnd.graphviz",
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Build options
	State         interact.State       `json:"state"`
	Layout        lineage.LayoutConfig `json:"layout,omitzero"`
	RiskThreshold *float64             `json:"risk_threshold,omitempty"` // nil means report.RiskFilterThreshold
	StableIDs     bool                 `json:"stable_ids,omitempty"`
	Refresh       bool                 `json:"refresh,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // Add metrics to node labels
	Scale    float64  `json:"scale,omitempty"`    // PNG scale factor

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the built lineage graph.
	Graph lineage.Graph

	// ReportHash is the content hash of the normalized report.
	ReportHash string

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool // Whether the graph came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	return errors.ValidateFormat(format, ValidFormats)
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills unset fields. It is idempotent.
func (o *Options) SetDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultPNGScale
	}
	if o.Layout.IsZero() {
		o.Layout = lineage.DefaultLayout()
	}
	if o.RiskThreshold == nil {
		threshold := report.RiskFilterThreshold
		o.RiskThreshold = &threshold
	}
	if o.State.ViewMode == "" {
		o.State.ViewMode = lineage.ViewSimplified
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateAndSetDefaults applies defaults and checks formats and view mode.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	if _, err := lineage.ParseViewMode(string(o.State.ViewMode)); err != nil {
		return err
	}
	return ValidateFormats(o.Formats)
}

// BuildOptions returns the graph builder options.
func (o *Options) BuildOptions() lineage.Options {
	return o.State.Options(lineage.Options{
		RiskThreshold: o.RiskThreshold,
		StableIDs:     o.StableIDs,
		Layout:        o.Layout,
	})
}

func (o *Options) threshold() float64 {
	if o.RiskThreshold == nil {
		return report.RiskFilterThreshold
	}
	return *o.RiskThreshold
}

// GraphKeyOpts returns cache key options for graph building.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		ExpandedPackages:   o.State.ExpandedPackages,
		ExpandedProcedures: o.State.ExpandedProcedures,
		ViewMode:           string(o.State.ViewMode),
		RiskFilter:         o.State.RiskFilter,
		RiskThreshold:      o.threshold(),
		StableIDs:          o.StableIDs,
		PositionsHash:      hashJSON(o.State.Positions),
		LayoutHash:         hashJSON(o.Layout),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format, Detailed: o.Detailed}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}
