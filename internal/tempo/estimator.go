// Package tempo turns tap timestamps into BPM series and tempo maps.
//
// An Estimator owns one tap session. It is not safe for concurrent use; the
// caller delivers events one at a time.
package tempo

import "github.com/verte-zerg/taptempo/internal/model"

// Estimator records taps and derives BPM series from them.
type Estimator struct {
	taps      []int64
	raw       []float64
	avgSeries []float64
	sum       float64
	avg       float64

	window WindowSize
	mode   model.DisplayMode
}

// NewEstimator returns an empty session with the default window and exact display.
func NewEstimator() *Estimator {
	return &Estimator{window: DefaultWindowSize, mode: model.DisplayExact}
}

// RecordTap appends a tap at ts milliseconds. The first tap only starts the
// session. A tap not strictly after the previous one is rejected with a
// *DegenerateIntervalError and the estimator is left unchanged.
func (e *Estimator) RecordTap(ts int64) error {
	if len(e.taps) == 0 {
		e.taps = append(e.taps, ts)
		return nil
	}
	last := e.taps[len(e.taps)-1]
	if ts-last <= 0 {
		return &DegenerateIntervalError{Previous: last, Timestamp: ts}
	}
	bpm := BPMFromInterval(ts - last)
	e.raw = append(e.raw, bpm)
	// The series records the average before this tap is folded in.
	e.avgSeries = append(e.avgSeries, e.avg)
	e.sum += bpm
	e.avg = e.sum / float64(len(e.raw))
	e.taps = append(e.taps, ts)
	return nil
}

// Reset clears all taps and derived series. Window and display mode are kept.
func (e *Estimator) Reset() {
	e.taps = nil
	e.raw = nil
	e.avgSeries = nil
	e.sum = 0
	e.avg = 0
}

// Taps returns a copy of the tap log.
func (e *Estimator) Taps() []int64 {
	return append([]int64{}, e.taps...)
}

// TapCount returns the number of recorded taps.
func (e *Estimator) TapCount() int {
	return len(e.taps)
}

// SessionStart returns the first tap timestamp and whether one exists.
func (e *Estimator) SessionStart() (int64, bool) {
	if len(e.taps) == 0 {
		return 0, false
	}
	return e.taps[0], true
}

// RawSeries returns a copy of the instantaneous BPM series.
func (e *Estimator) RawSeries() []float64 {
	return append([]float64{}, e.raw...)
}

// SmoothedSeries returns the raw series smoothed over window samples.
func (e *Estimator) SmoothedSeries(window int) []float64 {
	return Smooth(e.raw, window)
}

// RunningAverage returns the mean of the raw series rounded to two decimals.
func (e *Estimator) RunningAverage() float64 {
	return Round2(e.avg)
}

// RunningAverageExact returns the unrounded running average.
func (e *Estimator) RunningAverageExact() float64 {
	return e.avg
}

// RunningAverageSeries returns the running average as it stood before each
// BPM-producing tap, so it trails RunningAverage by one tap.
func (e *Estimator) RunningAverageSeries() []float64 {
	return append([]float64{}, e.avgSeries...)
}

// WindowSize returns the current smoothing window.
func (e *Estimator) WindowSize() WindowSize {
	return e.window
}

// SetWindowSize changes the smoothing window. Stored taps are not touched.
func (e *Estimator) SetWindowSize(w WindowSize) {
	e.window = w
}

// DisplayMode returns the current display mode.
func (e *Estimator) DisplayMode() model.DisplayMode {
	return e.mode
}

// SetDisplayMode selects the series returned by DisplayedSeries.
func (e *Estimator) SetDisplayMode(m model.DisplayMode) {
	e.mode = m
}

// DisplayedSeries returns the series selected by the display mode.
func (e *Estimator) DisplayedSeries() []float64 {
	if e.mode == model.DisplayAverage {
		return e.RunningAverageSeries()
	}
	return e.SmoothedSeries(int(e.window))
}

// ElapsedLabel formats the time from session start to ts as MM:SS.
func (e *Estimator) ElapsedLabel(ts int64) string {
	start, ok := e.SessionStart()
	if !ok {
		return FormatElapsed(0)
	}
	return FormatElapsed(ts - start)
}

// Labels returns the elapsed label of every recorded tap.
func (e *Estimator) Labels() []string {
	labels := make([]string, len(e.taps))
	for i, ts := range e.taps {
		labels[i] = e.ElapsedLabel(ts)
	}
	return labels
}

// SeriesRows returns one row per tap for tabular output.
func (e *Estimator) SeriesRows() []model.SeriesRow {
	smoothed := e.SmoothedSeries(int(e.window))
	rows := make([]model.SeriesRow, len(e.taps))
	for i, ts := range e.taps {
		rows[i].Elapsed = e.ElapsedLabel(ts)
		if i == 0 {
			continue
		}
		rows[i].HasBPM = true
		rows[i].Raw = e.raw[i-1]
		rows[i].Smoothed = smoothed[i-1]
		rows[i].Average = e.avgSeries[i-1]
	}
	return rows
}

// TempoMap builds a tempo map from the session at the current window.
func (e *Estimator) TempoMap() ([]model.TempoMapEntry, error) {
	return BuildTempoMap(e.taps, int(e.window))
}
