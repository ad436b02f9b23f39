package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/taptempo/internal/midiexport"
	"github.com/verte-zerg/taptempo/internal/model"
	"github.com/verte-zerg/taptempo/internal/tempo"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(ms int) {
	c.now = c.now.Add(time.Duration(ms) * time.Millisecond)
}

func newTestModel(t *testing.T) (*Model, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.UnixMilli(1_000_000)}
	m := NewModel(model.Config{Window: 1, ExportPath: "bpm.mid"}, midiexport.DefaultOptions())
	m.now = clock.Now
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, clock
}

func press(m *Model, key string) tea.Cmd {
	var msg tea.KeyMsg
	switch key {
	case "space":
		msg = tea.KeyMsg{Type: tea.KeySpace}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func tapEvery(m *Model, clock *fakeClock, gapMs, count int) {
	for i := 0; i < count; i++ {
		if i > 0 {
			clock.Advance(gapMs)
		}
		press(m, "space")
	}
}

func TestTapsUpdateAverage(t *testing.T) {
	m, clock := newTestModel(t)
	tapEvery(m, clock, 500, 4)
	if got := m.Estimator().TapCount(); got != 4 {
		t.Fatalf("expected 4 taps, got %d", got)
	}
	if got := m.Estimator().RunningAverage(); got != 120 {
		t.Fatalf("expected average 120, got %.2f", got)
	}
	view := m.View()
	if !containsAll(view, []string{"Average BPM", "120.00", "Taps: 4", "Elapsed: 00:01"}) {
		t.Fatalf("view missing expected content:\n%s", view)
	}
}

func TestEnterAlsoTaps(t *testing.T) {
	m, clock := newTestModel(t)
	press(m, "enter")
	clock.Advance(1000)
	press(m, "enter")
	if got := m.Estimator().RawSeries(); len(got) != 1 || got[0] != 60 {
		t.Fatalf("expected raw series [60], got %v", got)
	}
}

func TestDuplicateTapShowsError(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "space")
	press(m, "space")
	if got := m.Estimator().TapCount(); got != 1 {
		t.Fatalf("expected duplicate tap to be rejected, got %d taps", got)
	}
	if !m.statusErr || m.status == "" {
		t.Fatalf("expected error status after duplicate tap")
	}
}

func TestResetKeepsWindow(t *testing.T) {
	m, clock := newTestModel(t)
	press(m, "=")
	tapEvery(m, clock, 400, 3)
	press(m, "r")
	if m.Estimator().TapCount() != 0 || m.Estimator().RunningAverage() != 0 {
		t.Fatalf("expected empty session after reset")
	}
	if got := m.Estimator().WindowSize(); got != 2 {
		t.Fatalf("expected window 2 to survive reset, got %d", got)
	}
}

func TestWindowKeysClamp(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "-")
	if got := m.Estimator().WindowSize(); got != 1 {
		t.Fatalf("expected window to stay at 1, got %d", got)
	}
	for i := 0; i < 10; i++ {
		press(m, "=")
	}
	if got := m.Estimator().WindowSize(); got != 10 {
		t.Fatalf("expected window to stop at 10, got %d", got)
	}
}

func TestToggleDisplayMode(t *testing.T) {
	m, clock := newTestModel(t)
	tapEvery(m, clock, 500, 3)
	press(m, "m")
	if m.Estimator().DisplayMode() != model.DisplayAverage {
		t.Fatalf("expected average mode")
	}
	if !strings.Contains(m.View(), "Running avg") {
		t.Fatalf("expected running average chart")
	}
	press(m, "m")
	if m.Estimator().DisplayMode() != model.DisplayExact {
		t.Fatalf("expected exact mode")
	}
}

func TestTempoMapTab(t *testing.T) {
	m, clock := newTestModel(t)
	press(m, "tab")
	if !strings.Contains(m.View(), "Tap at least twice") {
		t.Fatalf("expected empty tempo map hint")
	}
	tapEvery(m, clock, 500, 3)
	if m.mapRows != tempo.CountInBeats+2 {
		t.Fatalf("expected %d tempo map rows, got %d", tempo.CountInBeats+2, m.mapRows)
	}
	if !strings.Contains(m.View(), "count-in") {
		t.Fatalf("expected count-in rows in tempo map view")
	}
	press(m, "tab")
	if m.activeTab != tabTap {
		t.Fatalf("expected tabs to wrap around")
	}
}

func TestExportWritesMidi(t *testing.T) {
	m, clock := newTestModel(t)
	tapEvery(m, clock, 500, 5)
	path := filepath.Join(t.TempDir(), "take.mid")

	press(m, "e")
	if !m.exportMode {
		t.Fatalf("expected export prompt")
	}
	if m.exportInput.Value() != "bpm.mid" {
		t.Fatalf("expected configured default path, got %q", m.exportInput.Value())
	}
	m.exportInput.SetValue(path)
	press(m, "enter")
	if m.exportMode {
		t.Fatalf("expected prompt to close")
	}
	if m.statusErr {
		t.Fatalf("unexpected export error: %s", m.status)
	}
	entries, err := midiexport.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(entries) != tempo.CountInBeats+4 {
		t.Fatalf("expected %d entries, got %d", tempo.CountInBeats+4, len(entries))
	}
	if m.cfg.ExportPath != path {
		t.Fatalf("expected export path to be remembered")
	}
}

func TestExportPromptIgnoresSessionKeys(t *testing.T) {
	m, clock := newTestModel(t)
	tapEvery(m, clock, 500, 3)
	press(m, "e")
	press(m, "r")
	if m.Estimator().TapCount() != 3 {
		t.Fatalf("expected typing in prompt not to reset the session")
	}
	press(m, "esc")
	if m.exportMode {
		t.Fatalf("expected esc to cancel export")
	}
	if m.Estimator().TapCount() != 3 {
		t.Fatalf("expected esc in prompt not to reset the session")
	}
}

func TestExportNeedsTwoTaps(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "space")
	press(m, "e")
	if m.exportMode {
		t.Fatalf("expected export to be refused")
	}
	if !m.statusErr {
		t.Fatalf("expected error status")
	}
}

func TestQuitKeys(t *testing.T) {
	m, _ := newTestModel(t)
	for _, key := range []string{"q", "ctrl+c"} {
		cmd := press(m, key)
		if cmd == nil {
			t.Fatalf("expected quit command for %s", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("expected tea.QuitMsg for %s", key)
		}
	}
}
