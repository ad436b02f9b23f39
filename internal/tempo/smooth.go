package tempo

// BPMFromInterval converts an inter-tap gap in milliseconds to beats per minute.
func BPMFromInterval(ms int64) float64 {
	return 60 / (float64(ms) / 1000)
}

// RawSeriesFromTaps derives one BPM value per consecutive tap pair.
func RawSeriesFromTaps(taps []int64) ([]float64, error) {
	if len(taps) < 2 {
		return []float64{}, nil
	}
	raw := make([]float64, 0, len(taps)-1)
	for i := 1; i < len(taps); i++ {
		gap := taps[i] - taps[i-1]
		if gap <= 0 {
			return nil, &DegenerateIntervalError{Previous: taps[i-1], Timestamp: taps[i]}
		}
		raw = append(raw, BPMFromInterval(gap))
	}
	return raw, nil
}

// Smooth returns the trailing-window mean of raw. A series shorter than the
// window is returned unchanged, without partial-window averaging.
func Smooth(raw []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	if len(raw) < window {
		out := make([]float64, len(raw))
		copy(out, raw)
		return out
	}
	return MovingAverage(raw, window)
}
