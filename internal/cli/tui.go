package cli

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/topochart/pkg/chart"
	"github.com/matzehuels/topochart/pkg/store"
	"github.com/matzehuels/topochart/pkg/topology"
)

// Canvas styles
var (
	canvasLinkStyle = lipgloss.NewStyle().Foreground(colorDim)
	canvasBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// Canvas bounds in terminal cells.
const (
	defaultCanvasCols = 72
	defaultCanvasRows = 20
	minCanvasCols     = 20
	minCanvasRows     = 6
)

// glyphs marks each node type on the canvas.
var glyphs = map[topology.NodeType]rune{
	topology.NodeTypeRouter:  'R',
	topology.NodeTypeNetwork: 'N',
	topology.NodeTypePort:    'o',
	topology.NodeTypeNC:      'C',
	topology.NodeTypeNCEP:    'e',
	topology.NodeTypeNCPool:  'P',
}

func glyphFor(t topology.NodeType) rune {
	if g, ok := glyphs[t]; ok {
		return g
	}
	return '?'
}

// =============================================================================
// SimulationModel - Live view of a cooling layout
// =============================================================================

type stepMsg time.Time

// SimulationModel is the bubbletea model for the simulate command. It
// advances the chart one step per frame until the layout settles.
type SimulationModel struct {
	Chart    *chart.Chart
	Title    string
	Interval time.Duration
	Ticks    int
	Settled  bool
	Cols     int
	Rows     int
}

// NewSimulationModel creates a model that steps c every interval.
func NewSimulationModel(c *chart.Chart, title string, interval time.Duration) SimulationModel {
	return SimulationModel{
		Chart:    c,
		Title:    title,
		Interval: interval,
		Cols:     defaultCanvasCols,
		Rows:     defaultCanvasRows,
	}
}

func (m SimulationModel) step() tea.Cmd {
	return tea.Tick(m.Interval, func(t time.Time) tea.Msg { return stepMsg(t) })
}

func (m SimulationModel) Init() tea.Cmd {
	return m.step()
}

func (m SimulationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.Chart.Reheat()
			if m.Settled {
				m.Settled = false
				return m, m.step()
			}
		}
	case tea.WindowSizeMsg:
		m.Cols = max(msg.Width-4, minCanvasCols)
		m.Rows = max(msg.Height-8, minCanvasRows)
	case stepMsg:
		if m.Settled {
			return m, nil
		}
		m.Ticks++
		if !m.Chart.Step() {
			m.Settled = true
			return m, nil
		}
		return m, m.step()
	}
	return m, nil
}

func (m SimulationModel) View() string {
	var b strings.Builder
	l := m.Chart.Layout()

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	status := StyleHighlight.Render("cooling")
	if m.Settled {
		status = StyleSuccess.Render("settled")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%d nodes · %d links · tick %d · alpha %.3f · ",
		len(l.Nodes), len(l.Links), m.Ticks, l.Alpha)))
	b.WriteString(status)
	b.WriteString("\n")
	b.WriteString(canvasBoxStyle.Render(renderCanvas(l, m.Cols, m.Rows)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("r reheat  q quit"))
	b.WriteString("\n")
	return b.String()
}

// renderCanvas plots the layout on a cols x rows character grid. Links are
// dotted lines; nodes are drawn over them with their type glyph in the
// type color. Positions outside the inner chart area are clamped to the
// border.
func renderCanvas(l chart.Layout, cols, rows int) string {
	cols = max(cols, 1)
	rows = max(rows, 1)
	w := l.Width - l.Margin.Left - l.Margin.Right
	h := l.Height - l.Margin.Top - l.Margin.Bottom
	if w <= 0 || h <= 0 {
		w, h = l.Width, l.Height
	}

	cell := func(x, y float64) (int, int) {
		cx := int(math.Round(x / w * float64(cols-1)))
		cy := int(math.Round(y / h * float64(rows-1)))
		return min(max(cx, 0), cols-1), min(max(cy, 0), rows-1)
	}

	grid := make([][]string, rows)
	for i := range grid {
		grid[i] = slices.Repeat([]string{" "}, cols)
	}

	dot := canvasLinkStyle.Render("·")
	for _, ln := range l.Links {
		x1, y1 := cell(ln.X1, ln.Y1)
		x2, y2 := cell(ln.X2, ln.Y2)
		steps := max(abs(x2-x1), abs(y2-y1))
		for s := 1; s < steps; s++ {
			t := float64(s) / float64(steps)
			x := x1 + int(math.Round(t*float64(x2-x1)))
			y := y1 + int(math.Round(t*float64(y2-y1)))
			grid[y][x] = dot
		}
	}

	for _, n := range l.Nodes {
		x, y := cell(n.X, n.Y)
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(topology.StyleFor(n.Type).Color())).Bold(true)
		grid[y][x] = style.Render(string(glyphFor(n.Type)))
	}

	lines := make([]string, rows)
	for i, row := range grid {
		lines[i] = strings.Join(row, "")
	}
	return strings.Join(lines, "\n")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// =============================================================================
// Tables
// =============================================================================

var tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// legendTable counts the nodes of each type with its glyph.
func legendTable(d *topology.Dataset) string {
	counts := d.CountByType()
	t := newTable("Glyph", "Type", "Nodes")
	for _, typ := range slices.Sorted(maps.Keys(counts)) {
		t.Row(string(glyphFor(typ)), string(typ), fmt.Sprint(counts[typ]))
	}
	return t.Render()
}

// chartsTable lists stored charts, newest first.
func chartsTable(summaries []store.Summary, now time.Time) string {
	t := newTable("ID", "Name", "Nodes", "Updated")
	for _, s := range summaries {
		name := s.Name
		if name == "" {
			name = "—"
		}
		t.Row(s.ID, name, fmt.Sprint(s.Nodes), formatRelativeTime(s.UpdatedAt, now))
	}
	return t.Render()
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
