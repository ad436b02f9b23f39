package tempo

import (
	"math"

	"github.com/verte-zerg/taptempo/internal/model"
)

const (
	// TicksPerQuarter is the MIDI resolution used for tick conversion.
	TicksPerQuarter = 480
	// CountInBeats is the number of quarter notes played before the taps.
	CountInBeats = 8
	// InitialTempoSamples is how many leading smoothed values set the count-in tempo.
	InitialTempoSamples = 4
)

// BuildTempoMap converts a tap log into a tempo map: CountInBeats quarter
// notes at the initial tempo followed by one entry per smoothed BPM value.
// It fails with *InsufficientDataError when taps holds fewer than two taps.
func BuildTempoMap(taps []int64, window int) ([]model.TempoMapEntry, error) {
	raw, err := RawSeriesFromTaps(taps)
	if err != nil {
		return nil, err
	}
	smoothed := Smooth(raw, window)
	if len(smoothed) == 0 {
		return nil, &InsufficientDataError{Taps: len(taps)}
	}

	initial := Mean(smoothed[:min(InitialTempoSamples, len(smoothed))])
	entries := make([]model.TempoMapEntry, 0, CountInBeats+len(smoothed))
	for i := 0; i < CountInBeats; i++ {
		entries = append(entries, model.TempoMapEntry{
			TempoBPM:      initial,
			DurationTicks: TicksPerQuarter,
			CountIn:       true,
		})
	}
	for i, bpm := range smoothed {
		// Entry 0 and entry 1 share the first gap; the last gap is not emitted.
		gap := taps[1] - taps[0]
		if i > 0 {
			gap = taps[i] - taps[i-1]
		}
		entries = append(entries, model.TempoMapEntry{
			TempoBPM:      bpm,
			DurationTicks: MillisToTicks(gap),
		})
	}
	return entries, nil
}

// MillisToTicks converts a gap to ticks at TicksPerQuarter per second,
// rounded to the nearest tick and never below one tick.
func MillisToTicks(ms int64) int {
	ticks := int(math.Round(float64(ms) / 1000 * TicksPerQuarter))
	if ticks < 1 {
		return 1
	}
	return ticks
}

// TotalTicks sums the durations of a tempo map.
func TotalTicks(entries []model.TempoMapEntry) int {
	total := 0
	for _, e := range entries {
		total += e.DurationTicks
	}
	return total
}
