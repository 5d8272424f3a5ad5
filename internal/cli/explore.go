package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineagescope/pkg/detail"
	"github.com/matzehuels/lineagescope/pkg/interact"
	"github.com/matzehuels/lineagescope/pkg/lineage"
	"github.com/matzehuels/lineagescope/pkg/report"
	"github.com/matzehuels/lineagescope/pkg/session"
)

// nudgeStep is how far h/j/k/l move the selected node.
const nudgeStep = 20.0

// exploreCommand creates the interactive explorer command.
func (c *CLI) exploreCommand() *cobra.Command {
	var resume bool

	cmd := &cobra.Command{
		Use:   "explore [report.json]",
		Short: "Explore a report's lineage graph interactively",
		Long: `Explore a report's lineage graph interactively.

Keys:
  ↑/↓       select a node
  enter     click: expand or collapse, show detail
  d         toggle the detail panel
  f         toggle the risk filter
  v         switch simplified/detailed view
  h/j/k/l   move the selected node
  r         reset moved nodes
  q         quit

With --resume the state is saved on exit and restored the next time the
same report is explored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args[0], resume)
		},
	}

	cmd.Flags().BoolVar(&resume, "resume", false, "restore and save the exploration state for this report")
	return cmd
}

func (c *CLI) runExplore(ctx context.Context, input string, resume bool) error {
	r, err := loadReport(input)
	if err != nil {
		return err
	}

	ctrl := interact.NewController(c.controllerConfig())
	ctrl.Load(ctx, r)

	var saved *savedState
	if resume {
		saved, err = c.openSavedState(ctx, r)
		if err != nil {
			return err
		}
		defer saved.store.Close()
		if saved.sess.State.ViewMode != "" {
			ctrl.Restore(ctx, saved.sess.State)
			c.Logger.Debug("restored exploration state", "session", saved.sess.ID)
		}
	}

	m := newExploreModel(ctx, ctrl)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("explore: %w", err)
	}

	if saved != nil {
		fm := final.(exploreModel)
		if err := saved.save(ctx, fm.ctrl.Snapshot()); err != nil {
			return err
		}
		printSuccess("Saved exploration state")
		printDetail("Session: %s", saved.sess.ID)
	}
	return nil
}

// =============================================================================
// Saved State
// =============================================================================

// savedState is the explorer session of one report, keyed by report hash.
type savedState struct {
	store *session.FileStore
	sess  *session.Session
	ttl   time.Duration
}

func (c *CLI) openSavedState(ctx context.Context, r *report.Report) (*savedState, error) {
	store, err := session.NewFileStore(c.Config.Server.SessionDir)
	if err != nil {
		return nil, err
	}
	data, err := report.Marshal(r)
	if err != nil {
		return nil, err
	}
	ttl := c.Config.Server.SessionTTL.Duration
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}
	fresh, err := session.New(data, ttl)
	if err != nil {
		return nil, err
	}
	fresh.ID = fresh.ReportHash

	sess, err := store.Get(ctx, fresh.ID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		sess = fresh
		sess.State = interact.State{}
	}
	return &savedState{store: store, sess: sess, ttl: ttl}, nil
}

func (s *savedState) save(ctx context.Context, state interact.State) error {
	state.Selected = ""
	s.sess.State = state
	s.sess.Touch(s.ttl)
	return s.store.Set(ctx, s.sess)
}

// =============================================================================
// exploreModel - Interactive graph exploration
// =============================================================================

// exploreModel is the bubbletea model for the explorer.
type exploreModel struct {
	ctx  context.Context
	ctrl *interact.Controller

	Cursor     int
	Offset     int
	Height     int
	ShowDetail bool
	Status     string
}

func newExploreModel(ctx context.Context, ctrl *interact.Controller) exploreModel {
	return exploreModel{ctx: ctx, ctrl: ctrl, Height: 15}
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) nodes() []lineage.Node { return m.ctrl.Graph().Nodes }

func (m exploreModel) selected() (lineage.Node, bool) {
	nodes := m.nodes()
	if m.Cursor < 0 || m.Cursor >= len(nodes) {
		return lineage.Node{}, false
	}
	return nodes[m.Cursor], true
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up":
			m.move(-1)
		case "down":
			m.move(1)
		case "enter":
			m.click()
		case "d":
			m.ShowDetail = !m.ShowDetail
		case "f":
			on := m.ctrl.ToggleRiskFilter(m.ctx)
			m.Status = "risk filter " + onOff(on)
			m.clamp()
		case "v":
			mode := lineage.ViewDetailed
			if m.ctrl.ViewMode() == lineage.ViewDetailed {
				mode = lineage.ViewSimplified
			}
			_ = m.ctrl.SetViewMode(m.ctx, mode)
			m.Status = string(mode) + " view"
		case "h":
			m.nudge(-nudgeStep, 0)
		case "l":
			m.nudge(nudgeStep, 0)
		case "k":
			m.nudge(0, -nudgeStep)
		case "j":
			m.nudge(0, nudgeStep)
		case "r":
			n := m.ctrl.ResetPositions(m.ctx)
			m.Status = fmt.Sprintf("reset %d position(s)", n)
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 16
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m *exploreModel) move(delta int) {
	m.Cursor += delta
	m.clamp()
}

func (m *exploreModel) clamp() {
	n := len(m.nodes())
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// click sends a click to the selected node and keeps the cursor on it.
func (m *exploreModel) click() {
	n, ok := m.selected()
	if !ok {
		return
	}
	res, err := m.ctrl.OnNodeClick(m.ctx, n.ID)
	if err != nil {
		m.Status = err.Error()
		return
	}
	m.ShowDetail = true
	m.Status = string(res.Action) + " " + n.ID
	m.focus(n.ID)
}

func (m *exploreModel) nudge(dx, dy float64) {
	n, ok := m.selected()
	if !ok {
		return
	}
	pos := lineage.Position{X: n.Position.X + dx, Y: n.Position.Y + dy}
	if err := m.ctrl.OnNodePositionChange(m.ctx, n.ID, pos); err != nil {
		m.Status = err.Error()
		return
	}
	m.Status = fmt.Sprintf("moved %s to (%s, %s)", n.ID, fmtCoord(pos.X), fmtCoord(pos.Y))
}

func (m *exploreModel) focus(id string) {
	for i, n := range m.nodes() {
		if n.ID == id {
			m.Cursor = i
			break
		}
	}
	m.clamp()
}

func (m exploreModel) View() string {
	var b strings.Builder

	title := "Lineage"
	if r := m.ctrl.Report(); r != nil && r.Target != nil {
		title += " of " + r.Target.QualifiedName()
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%s view · risk filter %s · %d nodes",
		m.ctrl.ViewMode(), onOff(m.ctrl.RiskFilter()), len(m.nodes()))))
	b.WriteString("\n\n")

	nodes := m.nodes()
	if len(nodes) == 0 {
		b.WriteString(StyleWarning.Render("Nothing to show: the report has no packages."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.table(nodes))
		b.WriteString("\n")
	}

	if m.ShowDetail {
		if n, ok := m.selected(); ok {
			b.WriteString(renderDetail(detail.Present(&n, m.ctrl.Report())))
			b.WriteString("\n")
		}
	}

	if m.Status != "" {
		b.WriteString(StyleHighlight.Render(m.Status))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render("↑/↓ select  ⏎ click  d detail  f filter  v view  h/j/k/l move  r reset  q quit"))
	return b.String()
}

func (m exploreModel) table(nodes []lineage.Node) string {
	end := min(m.Offset+m.Height, len(nodes))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		risk := ""
		if n.Kind == lineage.KindPackage {
			risk = strconv.FormatFloat(n.Metrics.RiskScore, 'g', -1, 64)
		}
		rows = append(rows, []string{
			cursor,
			indent(n) + expander(n) + n.Label,
			string(n.Kind),
			strconv.Itoa(n.Metrics.DirectRefs),
			strconv.Itoa(n.Metrics.IndirectRefs),
			risk,
			fmtCoord(n.Position.X) + ", " + fmtCoord(n.Position.Y),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Kind", "Direct", "Indirect", "Risk", "Position").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(nodes) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col == 5 && nodes[idx].Kind == lineage.KindPackage {
				base = base.Foreground(riskColor(nodes[idx].Metrics.RiskScore))
			}
			if idx == m.Cursor {
				return base.Foreground(colorCyan).Bold(true)
			}
			return base
		})

	return t.Render() + "\n" + listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(nodes)))
}

// =============================================================================
// Helpers
// =============================================================================

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

func indent(n lineage.Node) string {
	switch n.Kind {
	case lineage.KindPackage:
		return "  "
	case lineage.KindProcedure:
		return "    "
	case lineage.KindStep:
		return "      "
	}
	return ""
}

func expander(n lineage.Node) string {
	if !n.Kind.Expandable() {
		return ""
	}
	if n.Expanded {
		return "▾ "
	}
	return "▸ "
}

func riskColor(score float64) lipgloss.Color {
	switch report.RiskLevel(score) {
	case report.RiskHigh:
		return colorRed
	case report.RiskMedium:
		return colorYellow
	}
	return colorGreen
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}
