package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/taptempo/internal/model"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestAnalyzeStdin(t *testing.T) {
	isolateConfig(t)
	out, err := runCLI(t, "# steady\n0\n500\n1000\n1500\n", "analyze", "--width", "40")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if !containsAll(out, []string{"Taps: 4", "Avg BPM: 120.00", "Per-Tap", "Running Avg"}) {
		t.Fatalf("unexpected analyze output:\n%s", out)
	}
}

func TestAnalyzeRejectsDuplicateTap(t *testing.T) {
	isolateConfig(t)
	_, err := runCLI(t, "0\n500\n500\n", "analyze")
	if err == nil || !strings.Contains(err.Error(), "tap 3") {
		t.Fatalf("expected error naming tap 3, got %v", err)
	}
}

func TestAnalyzeWindowFromConfig(t *testing.T) {
	dir := isolateConfig(t)
	cfgDir := filepath.Join(dir, "taptempo")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte("[tap]\nwindow = 8\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	args := []string{"analyze", "--simulate-bpm", "90", "--jitter", "0", "--width", "40"}
	out, err := runCLI(t, "", args...)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if !strings.Contains(out, "Smoothed (window 8)") {
		t.Fatalf("expected config window 8, got:\n%s", out)
	}
	out, err = runCLI(t, "", append(args, "--window", "2")...)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if !strings.Contains(out, "Smoothed (window 2)") {
		t.Fatalf("expected flag to override config, got:\n%s", out)
	}
}

func TestExportAndInspect(t *testing.T) {
	isolateConfig(t)
	path := filepath.Join(t.TempDir(), "tempo.mid")
	out, err := runCLI(t, "", "export", "--simulate-bpm", "100", "--simulate-count", "5", "--jitter", "0", "--window", "1", "-o", path, "--print")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !containsAll(out, []string{"Tempo Map", "count-in", "100.00"}) {
		t.Fatalf("unexpected export output:\n%s", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected midi file: %v", err)
	}

	out, err = runCLI(t, "", "inspect", path)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	// 8 count-in quarters plus four 600ms gaps at 288 ticks each.
	if !strings.Contains(out, "Total: 4992 ticks") {
		t.Fatalf("unexpected inspect output:\n%s", out)
	}
}

func TestExportNeedsTwoTaps(t *testing.T) {
	isolateConfig(t)
	path := filepath.Join(t.TempDir(), "tempo.mid")
	if _, err := runCLI(t, "1000\n", "export", "-o", path); err == nil {
		t.Fatalf("expected error for single tap")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file to be written")
	}
}

func TestValidateConfig(t *testing.T) {
	valid := model.Config{Window: 4, ExportPath: "bpm.mid", Pitch: 60, CountInPitch: 76, Velocity: 100, Channel: 9}
	if err := validateConfig(valid); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	cases := map[string]func(*model.Config){
		"window":   func(c *model.Config) { c.Window = 3 },
		"output":   func(c *model.Config) { c.ExportPath = "" },
		"pitch":    func(c *model.Config) { c.Pitch = 128 },
		"count-in": func(c *model.Config) { c.CountInPitch = -1 },
		"velocity": func(c *model.Config) { c.Velocity = 0 },
		"channel":  func(c *model.Config) { c.Channel = 16 },
	}
	for name, mutate := range cases {
		cfg := valid
		mutate(&cfg)
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestUnknownDisplayMode(t *testing.T) {
	isolateConfig(t)
	if _, err := runCLI(t, "0\n500\n", "analyze", "--display", "fancy"); err == nil {
		t.Fatalf("expected error for unknown display mode")
	}
}

func TestWriteTapLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taps.txt")
	if err := writeTapLog(path, []int64{0, 500, 1000}); err != nil {
		t.Fatalf("writeTapLog failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "0\n500\n1000\n" {
		t.Fatalf("unexpected tap log %q", string(data))
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	tmpl := defaultConfigTemplate()
	if !containsAll(tmpl, []string{"[tap]", "[export]", "# window = 4", "# count-in-pitch = 60"}) {
		t.Fatalf("unexpected template:\n%s", tmpl)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
