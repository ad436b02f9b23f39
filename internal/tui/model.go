// Package tui provides the Bubble Tea tap session interface.
package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/taptempo/internal/midiexport"
	"github.com/verte-zerg/taptempo/internal/model"
	"github.com/verte-zerg/taptempo/internal/tempo"
)

const (
	tabTap = iota
	tabTempoMap
)

// Model implements the Bubble Tea tap session UI.
type Model struct {
	cfg        model.Config
	exportOpts midiexport.Options
	est        *tempo.Estimator
	now        func() time.Time

	tabs      []string
	activeTab int
	mapTable  table.Model
	mapRows   int

	width  int
	height int

	exportMode  bool
	exportInput textinput.Model
	exportError string

	status    string
	statusErr bool
}

// NewModel constructs a tap session model. An invalid window in cfg falls
// back to the default window.
func NewModel(cfg model.Config, opts midiexport.Options) *Model {
	est := tempo.NewEstimator()
	if w := tempo.WindowSize(cfg.Window); w.Valid() {
		est.SetWindowSize(w)
	}
	est.SetDisplayMode(cfg.Display)
	m := &Model{
		cfg:        cfg,
		exportOpts: opts,
		est:        est,
		now:        time.Now,
		tabs:       []string{"Tap", "Tempo Map"},
	}
	m.initExportInput()
	m.mapTable = buildTempoMapTable(nil, 0, 1)
	return m
}

// Estimator exposes the session state, e.g. for a summary after the program exits.
func (m *Model) Estimator() *tempo.Estimator {
	return m.est
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.exportMode {
			return m.updateExport(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case " ", "enter":
			m.tap()
			return m, nil
		case "r", "esc":
			m.reset()
			return m, nil
		case "m":
			m.est.SetDisplayMode(m.est.DisplayMode().Toggle())
			slog.Debug("display mode changed", "mode", m.est.DisplayMode().String())
			return m, nil
		case "=", "+":
			m.setWindow(m.est.WindowSize().Next())
			return m, nil
		case "-", "_":
			m.setWindow(m.est.WindowSize().Prev())
			return m, nil
		case "e":
			return m.startExport()
		case "tab", "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "shift+tab", "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		default:
			if m.activeTab == tabTempoMap {
				var cmd tea.Cmd
				m.mapTable, cmd = m.mapTable.Update(msg)
				return m, cmd
			}
			return m, nil
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.exportMode {
		return fitLines(m.renderExportModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) tap() {
	ts := m.now().UnixMilli()
	if err := m.est.RecordTap(ts); err != nil {
		slog.Warn("tap rejected", "err", err)
		m.setError(err)
		return
	}
	m.clearStatus()
	slog.Debug("tap recorded", "taps", m.est.TapCount(), "average", m.est.RunningAverage())
	m.refreshTempoMap()
}

func (m *Model) reset() {
	m.est.Reset()
	m.clearStatus()
	m.refreshTempoMap()
	slog.Debug("session reset")
}

func (m *Model) setWindow(w tempo.WindowSize) {
	m.est.SetWindowSize(w)
	m.refreshTempoMap()
	slog.Debug("window changed", "window", int(w))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabTempoMap {
		m.mapTable.Focus()
	} else {
		m.mapTable.Blur()
	}
}

func (m *Model) initExportInput() {
	input := textinput.New()
	input.Prompt = "File: "
	input.Placeholder = "bpm.mid"
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	m.exportInput = input
}

func (m *Model) startExport() (tea.Model, tea.Cmd) {
	if _, err := m.est.TempoMap(); err != nil {
		m.setError(err)
		return m, nil
	}
	m.exportMode = true
	m.exportError = ""
	m.exportInput.SetValue(m.cfg.ExportPath)
	m.exportInput.CursorEnd()
	return m, m.exportInput.Focus()
}

func (m *Model) updateExport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.exportMode = false
		m.exportError = ""
		m.exportInput.Blur()
		return m, nil
	case tea.KeyEnter:
		path := strings.TrimSpace(m.exportInput.Value())
		if path == "" {
			m.exportError = "file path must not be empty"
			return m, nil
		}
		m.exportMode = false
		m.exportError = ""
		m.exportInput.Blur()
		m.export(path)
		return m, nil
	}
	var cmd tea.Cmd
	m.exportInput, cmd = m.exportInput.Update(msg)
	return m, cmd
}

func (m *Model) export(path string) {
	entries, err := m.est.TempoMap()
	if err != nil {
		m.setError(err)
		return
	}
	if err := midiexport.WriteFile(path, entries, m.exportOpts); err != nil {
		slog.Error("export failed", "path", path, "err", err)
		m.setError(err)
		return
	}
	m.cfg.ExportPath = path
	m.status = fmt.Sprintf("Exported %d tempo events to %s", len(entries), path)
	m.statusErr = false
	slog.Info("tempo map exported", "path", path, "entries", len(entries), "window", int(m.est.WindowSize()))
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusErr = false
}

func (m *Model) refreshTempoMap() {
	entries, err := m.est.TempoMap()
	if err != nil {
		entries = nil
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.mapRows = len(entries)
	applyTempoMapTable(&m.mapTable, entries, maxInt(m.width, 40), bodyHeight)
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.refreshTempoMap()
	promptWidth := len(m.exportInput.Prompt)
	m.exportInput.Width = maxInt(10, modalInnerWidth(m.width)-promptWidth)
}
