package taplog

// Rebase shifts taps so the first one sits at zero.
func Rebase(taps []int64) []int64 {
	out := make([]int64, len(taps))
	if len(taps) == 0 {
		return out
	}
	for i, ts := range taps {
		out[i] = ts - taps[0]
	}
	return out
}
