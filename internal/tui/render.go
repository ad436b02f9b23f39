package tui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/taptempo/internal/model"
	"github.com/verte-zerg/taptempo/internal/stats"
	"github.com/verte-zerg/taptempo/internal/tempo"
)

const minPlotHeight = 3

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#73D13D"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.status != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	settings := padLines(m.renderSettings(), m.width)
	return tabs + "\n" + settings
}

func (m *Model) renderSettings() string {
	summary := fmt.Sprintf("Window: %d  Mode: %s  Taps: %d  Elapsed: %s",
		int(m.est.WindowSize()), m.est.DisplayMode(), m.est.TapCount(), m.elapsed())
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) elapsed() string {
	labels := m.est.Labels()
	if len(labels) == 0 {
		return tempo.FormatElapsed(0)
	}
	return labels[len(labels)-1]
}

func (m *Model) renderFooter() string {
	help := footerStyle.Render(truncateLine("Tap: space/enter  Reset: r  Mode: m  Window: -/=  Export: e  Tabs: tab  Quit: q", m.width))
	if m.status == "" {
		return help
	}
	if m.statusErr {
		return help + "\n" + errorStyle.Render(m.status)
	}
	return help + "\n" + okStyle.Render(m.status)
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabTempoMap {
		if m.mapRows == 0 {
			return "Tap at least twice to build a tempo map."
		}
		return tableMutedStyle.Render(m.mapTable.View())
	}
	cards := m.renderCards()
	chartHeight := height - lipgloss.Height(cards) - 1
	return strings.TrimRight(cards+"\n"+m.renderChart(chartHeight), "\n")
}

func (m *Model) renderCards() string {
	last := "-"
	if raw := m.est.RawSeries(); len(raw) > 0 {
		last = fmt.Sprintf("%.2f", raw[len(raw)-1])
	}
	cards := []string{
		metricCard("Average BPM", fmt.Sprintf("%.2f", m.est.RunningAverage())),
		metricCard("Last BPM", last),
		metricCard("Taps", fmt.Sprintf("%d", m.est.TapCount())),
		metricCard("Elapsed", m.elapsed()),
	}
	if m.width < 60 {
		return lipgloss.JoinVertical(lipgloss.Left, cards[0], cards[1])
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func (m *Model) renderChart(height int) string {
	values := m.est.DisplayedSeries()
	if len(values) == 0 {
		return headerStyle.Render("Press space to tap along. The second tap gives the first BPM reading.")
	}
	// Title, legend, and time axis take three lines.
	plotHeight := maxInt(minPlotHeight, height-3)
	var buf bytes.Buffer
	series := []stats.Series{{Name: seriesName(m.est), Values: values}}
	if err := stats.RenderBPMChart(&buf, "", series, m.width, plotHeight, true); err != nil {
		return errorStyle.Render(fmt.Sprintf("Failed to render chart: %v", err))
	}
	labels := m.est.Labels()
	axis := timeAxis(labels[1], labels[len(labels)-1], m.width)
	return strings.TrimRight(buf.String(), "\n") + "\n" + headerStyle.Render(axis)
}

func seriesName(est *tempo.Estimator) string {
	if est.DisplayMode() == model.DisplayAverage {
		return "Running avg"
	}
	return fmt.Sprintf("Smoothed (window %d)", int(est.WindowSize()))
}

// timeAxis labels the first and last plotted taps under the chart.
func timeAxis(first, last string, width int) string {
	offset := width - stats.PlotWidthFor(width)
	if offset < 0 {
		offset = 0
	}
	inner := stats.PlotWidthFor(width)
	gap := inner - len(first) - len(last)
	if gap < 1 {
		gap = 1
	}
	return strings.Repeat(" ", offset) + first + strings.Repeat(" ", gap) + last
}

func (m *Model) renderExportModal() string {
	title := cardValueStyle.Render("Export Tempo Map")
	body := []string{
		title,
		m.exportInput.View(),
		headerStyle.Render(fmt.Sprintf("Window %d, %d count-in beats, %d ticks per quarter", int(m.est.WindowSize()), tempo.CountInBeats, tempo.TicksPerQuarter)),
		headerStyle.Render("Enter to write / Esc to cancel"),
	}
	if m.exportError != "" {
		body = append(body, errorStyle.Render(m.exportError))
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func buildTempoMapTable(entries []model.TempoMapEntry, width, height int) table.Model {
	cols, rows := buildTempoMapTableData(entries)
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(tempoMapTableStyles())
	return t
}

func applyTempoMapTable(t *table.Model, entries []model.TempoMapEntry, width, height int) {
	cols, rows := buildTempoMapTableData(entries)
	t.SetRows(nil)
	t.SetColumns(cols)
	t.SetRows(rows)
	t.SetWidth(width)
	t.SetHeight(maxInt(1, height-1))
}

func buildTempoMapTableData(entries []model.TempoMapEntry) ([]table.Column, []table.Row) {
	headers, cells := stats.TempoMapRows(entries)
	widths := []int{4, 9, 7, 8, 9}
	columns := make([]table.Column, len(headers))
	for i, h := range headers {
		columns[i] = table.Column{Title: h, Width: widths[i]}
	}
	rows := make([]table.Row, len(cells))
	for i, c := range cells {
		rows[i] = table.Row(c)
	}
	return columns, rows
}

func tempoMapTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func modalWidth(width int) int {
	return maxInt(40, minInt(width-4, 80))
}

func modalInnerWidth(width int) int {
	w := modalWidth(width)
	w -= 6 // 2 border + 4 padding
	if w < 10 {
		return 10
	}
	return w
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
