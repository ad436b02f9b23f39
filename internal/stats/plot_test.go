package stats

import (
	"bytes"
	"strings"
	"testing"
)

func TestPlotSeries(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "BPM Over Time", []Series{
		{Name: "BPM", Values: []float64{118, 120, 124, 121, 119}},
		{Name: "Smoothed", Values: []float64{118, 119, 120.67, 120.75, 121}},
	}, 10, 4)
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "BPM Over Time") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "BPM: min=118.00 max=124.00 last=119.00") {
		t.Fatalf("expected series range line, got:\n%s", out)
	}
	if !strings.Contains(out, "Legend:") {
		t.Fatalf("expected legend in output")
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	expectedMin := 1 + 2 + 4 + 1
	if len(lines) < expectedMin {
		t.Fatalf("expected at least %d lines of output, got %d", expectedMin, len(lines))
	}
	if !strings.HasPrefix(lines[3], " 124.0") {
		t.Fatalf("expected top axis label to be the max BPM, got %q", lines[3])
	}
	if !strings.HasPrefix(lines[6], " 118.0") {
		t.Fatalf("expected bottom axis label to be the min BPM, got %q", lines[6])
	}
}

func TestPlotSeriesFlatLine(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotSeries(&buf, "", []Series{{Name: "BPM", Values: []float64{120, 120, 120}}}, 10, 3); err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, " 121.0") || !strings.Contains(out, " 119.0") {
		t.Fatalf("expected padded axis around flat series, got:\n%s", out)
	}
}

func TestPlotSeriesSkipsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotSeries(&buf, "Empty", []Series{{Name: "BPM"}}, 10, 4); err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output for empty series, got %q", buf.String())
	}
}
