// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/taptempo/internal/model"
	"github.com/verte-zerg/taptempo/internal/tempo"
)

const sparkChars = " .:-=+*#%@"

// StdDev returns the population standard deviation of values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := tempo.Mean(values)
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Summarize builds a session summary from the tap log and its raw BPM series.
func Summarize(taps []int64, raw []float64) model.Summary {
	s := model.Summary{Taps: len(taps)}
	if len(taps) > 1 {
		s.ElapsedMs = taps[len(taps)-1] - taps[0]
	}
	if len(raw) == 0 {
		return s
	}
	s.Average = tempo.Mean(raw)
	s.Min = raw[0]
	s.Max = raw[0]
	for _, v := range raw[1:] {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.StdDev = StdDev(raw)
	s.Last = raw[len(raw)-1]
	s.Trend = append([]float64(nil), raw...)
	return s
}

// RenderSummary prints a summary block for a tap session.
func RenderSummary(w io.Writer, s model.Summary) error {
	if s.Taps < 2 {
		_, err := fmt.Fprintln(w, "Not enough taps recorded.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Taps: %d\n", s.Taps); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Elapsed: %s\n", tempo.FormatElapsed(s.ElapsedMs)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg BPM: %.2f\n", s.Average); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Min/Max BPM: %.2f / %.2f\n", s.Min, s.Max); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Std Dev: %.2f\n", s.StdDev); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Last BPM: %.2f\n", s.Last); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Trend: [%s]\n", Sparkline(s.Trend)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderBPMChart prints a BPM line plot sized to a given total width.
func RenderBPMChart(w io.Writer, title string, series []Series, totalWidth, height int, useColor bool) error {
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, title, series, width, height, useColor)
}

// RenderSeriesTable prints one row per tap.
func RenderSeriesTable(w io.Writer, rows []model.SeriesRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No taps recorded.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Tap"); err != nil {
		return err
	}
	headers := []string{"#", "Time", "BPM", "Smoothed", "Running Avg"}
	tableRows := make([][]string, 0, len(rows))
	for i, r := range rows {
		raw, smoothed, avg := "-", "-", "-"
		if r.HasBPM {
			raw = fmt.Sprintf("%.2f", r.Raw)
			smoothed = fmt.Sprintf("%.2f", r.Smoothed)
			avg = fmt.Sprintf("%.2f", r.Average)
		}
		tableRows = append(tableRows, []string{
			fmt.Sprintf("%d", i+1),
			r.Elapsed,
			raw,
			smoothed,
			avg,
		})
	}
	rightAlign := map[int]bool{0: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderTempoMap prints a tempo map as a table.
func RenderTempoMap(w io.Writer, entries []model.TempoMapEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "Tempo map is empty.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Tempo Map"); err != nil {
		return err
	}
	headers, rows := TempoMapRows(entries)
	rightAlign := map[int]bool{0: true, 1: true, 2: true, 3: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// TempoMapRows formats tempo map entries as table cells.
func TempoMapRows(entries []model.TempoMapEntry) ([]string, [][]string) {
	headers := []string{"#", "Tempo", "Ticks", "Start", "Kind"}
	rows := make([][]string, 0, len(entries))
	start := 0
	for i, e := range entries {
		kind := "tap"
		if e.CountIn {
			kind = "count-in"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%.2f", e.TempoBPM),
			fmt.Sprintf("%d", e.DurationTicks),
			fmt.Sprintf("%d", start),
			kind,
		})
		start += e.DurationTicks
	}
	return headers, rows
}
