package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineagescope/pkg/detail"
	"github.com/matzehuels/lineagescope/pkg/lineage"
)

// detailCommand creates the detail command for printing one node's detail.
func (c *CLI) detailCommand() *cobra.Command {
	var flags stateFlags

	cmd := &cobra.Command{
		Use:   "detail [report.json] [node-id]",
		Short: "Print the detail of one graph node",
		Long: `Print the detail of one graph node.

The node is addressed by its graph id: source, package-<i>,
procedure-<i>-<j> or step-<i>-<j>-<k>. The packages and procedures
above the node are expanded automatically.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDetail(cmd.Context(), args[0], args[1], &flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func (c *CLI) runDetail(ctx context.Context, input, nodeID string, flags *stateFlags) error {
	r, err := loadReport(input)
	if err != nil {
		return err
	}

	f := *flags
	f.expand = append(lineage.Ancestors(nodeID), f.expand...)
	ctrl, err := f.controller(ctx, c, r)
	if err != nil {
		return err
	}

	view, err := ctrl.Detail(nodeID)
	if err != nil {
		return err
	}
	fmt.Println(renderDetail(view))
	return nil
}

// =============================================================================
// Detail Rendering
// =============================================================================

var (
	styleDetailHeading = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleDetailBox     = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// renderDetail formats a detail view for the terminal.
func renderDetail(v detail.View) string {
	lines := v.Lines()
	if len(lines) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render(lines[0]))
	for _, line := range lines[1:] {
		b.WriteString("\n")
		switch {
		case v.Status != detail.StatusOK:
			b.WriteString(StyleWarning.Render(line))
		case strings.HasPrefix(line, "  "):
			b.WriteString(StyleValue.Render(line))
		case strings.HasSuffix(line, ")") && strings.Contains(line, "references ("):
			b.WriteString(styleDetailHeading.Render(line))
		default:
			b.WriteString(line)
		}
	}
	return styleDetailBox.Render(b.String())
}
