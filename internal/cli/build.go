package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineagescope/pkg/pipeline"
)

// buildCommand creates the build command for turning a report into graph JSON.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		flags   stateFlags
	)

	cmd := &cobra.Command{
		Use:   "build [report.json]",
		Short: "Build the lineage graph of a report",
		Long: `Build the lineage graph of a report.

The build command reads a lineage report and writes the positioned graph
(nodes and edges) as JSON. Packages and procedures start collapsed; use
--expand or --expand-all to open them. Use '-o -' to write to stdout.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args[0], &flags, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.graph.json, - for stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}

// runBuild loads the report, builds the graph, and writes it.
func (c *CLI) runBuild(ctx context.Context, input string, flags *stateFlags, output string, noCache bool) error {
	prog := newProgress(loggerFromContext(ctx))
	r, err := loadReport(input)
	if err != nil {
		return err
	}
	state, err := flags.state(ctx, c, r)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, cacheHit, err := runner.BuildWithCacheInfo(ctx, r, c.pipelineOptions(state))
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	prog.done(fmt.Sprintf("Built %d nodes, %d edges", len(g.Nodes), len(g.Edges)))

	data, err := pipeline.MarshalGraph(g)
	if err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}

	if output == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".graph.json"
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Graph built")
	printFile(outputPath)
	printStats(g.Stats(), cacheHit)
	printNewline()
	printNextStep("Render", appName+" render "+input)

	return nil
}
