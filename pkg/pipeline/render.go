package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/lineagescope/pkg/cache"
	"github.com/matzehuels/lineagescope/pkg/lineage"
	"github.com/matzehuels/lineagescope/pkg/render"
	"github.com/matzehuels/lineagescope/pkg/render/nodelink"
)

// Render generates output artifacts in the requested formats. Formats render
// concurrently; SVG is produced once and shared by the PNG and PDF
// conversions.
func Render(ctx context.Context, g lineage.Graph, opts Options) (map[string][]byte, error) {
	opts.SetDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}

	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Detailed})
	svg := sync.OnceValues(func() ([]byte, error) {
		return nodelink.RenderSVG(ctx, dot)
	})

	var mu sync.Mutex
	artifacts := make(map[string][]byte, len(opts.Formats))

	eg, ctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		eg.Go(func() error {
			data, err := renderFormat(ctx, format, g, dot, svg, opts.Scale)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, format string, g lineage.Graph, dot string, svg func() ([]byte, error), scale float64) ([]byte, error) {
	switch format {
	case FormatJSON:
		return MarshalGraph(g)
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return svg()
	case FormatPNG:
		data, err := svg()
		if err != nil {
			return nil, err
		}
		return render.ToPNG(ctx, data, scale)
	case FormatPDF:
		data, err := svg()
		if err != nil {
			return nil, err
		}
		return render.ToPDF(ctx, data)
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}

// MarshalGraph serializes a graph as indented JSON.
func MarshalGraph(g lineage.Graph) ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// UnmarshalGraph parses a graph serialized by MarshalGraph.
func UnmarshalGraph(data []byte) (lineage.Graph, error) {
	var g lineage.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return lineage.Graph{}, err
	}
	if g.Nodes == nil {
		g.Nodes = []lineage.Node{}
	}
	if g.Edges == nil {
		g.Edges = []lineage.Edge{}
	}
	return g, nil
}

// GraphHash returns the content hash of a graph.
func GraphHash(g lineage.Graph) string {
	data, _ := json.Marshal(g)
	return cache.Hash(data)
}

func hashJSON(v any) string {
	data, _ := json.Marshal(v)
	return cache.Hash(data)
}
