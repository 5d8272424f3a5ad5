package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineagescope/pkg/lineage"
	"github.com/matzehuels/lineagescope/pkg/pipeline"
)

// renderCommand creates the render command for generating images of a report's graph.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		scale      float64
		flags      stateFlags
	)

	cmd := &cobra.Command{
		Use:   "render [report.json]",
		Short: "Render the lineage graph of a report",
		Long: `Render the lineage graph of a report.

The render command builds the graph the same way as 'build' and renders it
to SVG, PNG, PDF, DOT or JSON. Node positions are pinned, so the image
matches the interactive layout. PNG and PDF need rsvg-convert on PATH.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &flags, renderParams{
				formats: formats,
				output:  output,
				noCache: noCache,
				scale:   scale,
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json (comma-separated)")
	cmd.Flags().Float64Var(&scale, "scale", pipeline.DefaultPNGScale, "PNG resolution multiplier")
	flags.register(cmd)

	return cmd
}

type renderParams struct {
	formats []string
	output  string
	noCache bool
	scale   float64
}

// runRender loads the report, runs the pipeline, and writes every artifact.
func (c *CLI) runRender(ctx context.Context, input string, flags *stateFlags, p renderParams) error {
	r, err := loadReport(input)
	if err != nil {
		return err
	}
	state, err := flags.state(ctx, c, r)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(p.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.pipelineOptions(state)
	opts.Formats = p.formats
	opts.Scale = p.scale
	opts.Detailed = state.ViewMode == lineage.ViewDetailed

	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	spinner := newSpinnerWithContext(ctx, "Rendering graph...")
	spinner.Start()

	result, err := runner.Execute(ctx, r, opts)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return ctx.Err()
		}
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   p.formats,
		input:     input,
		output:    p.output,
		cacheHit:  result.CacheInfo.BuildHit && result.CacheInfo.RenderHit,
		stats:     result.Graph.Stats(),
	})
}

// =============================================================================
// Artifact Output
// =============================================================================

type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	cacheHit  bool
	stats     lineage.Stats
}

// writeArtifacts writes each format to its own file and prints a summary.
func writeArtifacts(p artifactWriteParams) error {
	var paths []string
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return fmt.Errorf("missing %s output", format)
		}
		path := outputPath(p.output, p.input, format, len(p.formats) > 1)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	printSuccess("Rendered %s", strings.Join(p.formats, ", "))
	for _, path := range paths {
		printFile(path)
	}
	printStats(p.stats, p.cacheHit)
	return nil
}

// outputPath picks the file for one format. A single format uses output
// as-is when set; several formats share output as a base path.
func outputPath(output, input, format string, multiple bool) string {
	if output != "" && !multiple {
		return output
	}
	return basePath(output, input) + "." + format
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

