// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
)

// DisplayMode selects which BPM series the renderer shows.
type DisplayMode int

const (
	// DisplayExact shows the smoothed per-tap BPM series.
	DisplayExact DisplayMode = iota
	// DisplayAverage shows the running-average series.
	DisplayAverage
)

// String returns the config/flag spelling of the mode.
func (m DisplayMode) String() string {
	switch m {
	case DisplayAverage:
		return "average"
	default:
		return "exact"
	}
}

// Toggle returns the other display mode.
func (m DisplayMode) Toggle() DisplayMode {
	if m == DisplayExact {
		return DisplayAverage
	}
	return DisplayExact
}

// ParseDisplayMode parses "exact" or "average" (case-insensitive).
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exact":
		return DisplayExact, nil
	case "average", "avg":
		return DisplayAverage, nil
	default:
		return DisplayExact, fmt.Errorf("unknown display mode %q (use exact or average)", s)
	}
}

// Config defines tap session and export settings.
type Config struct {
	Window       int
	Display      DisplayMode
	ExportPath   string
	Pitch        int
	CountInPitch int
	Velocity     int
	Channel      int
	TrackName    string
}

// TempoMapEntry is one tempo segment of an exported tempo map.
type TempoMapEntry struct {
	TempoBPM      float64
	DurationTicks int
	CountIn       bool
}

// Summary describes a tap session for reporting.
type Summary struct {
	Taps      int
	ElapsedMs int64
	Average   float64
	Min       float64
	Max       float64
	StdDev    float64
	Last      float64
	Trend     []float64
}

// SeriesRow is one per-tap row of the series table.
type SeriesRow struct {
	Elapsed  string
	Raw      float64
	Smoothed float64
	Average  float64
	// First tap has no BPM values.
	HasBPM bool
}
