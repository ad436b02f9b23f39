package tempo

import (
	"fmt"
	"strconv"
	"strings"
)

// WindowSize is the number of trailing raw BPM samples averaged per smoothed sample.
type WindowSize int

// DefaultWindowSize is the smoothing window of a fresh session.
const DefaultWindowSize WindowSize = 4

// WindowSizes lists the selectable smoothing windows in ascending order.
var WindowSizes = []WindowSize{1, 2, 4, 6, 8, 10}

// ParseWindowSize validates n against WindowSizes.
func ParseWindowSize(n int) (WindowSize, error) {
	for _, w := range WindowSizes {
		if int(w) == n {
			return w, nil
		}
	}
	return 0, fmt.Errorf("invalid window size %d (choose one of %s)", n, windowSizeList())
}

// Valid reports whether w is one of WindowSizes.
func (w WindowSize) Valid() bool {
	_, err := ParseWindowSize(int(w))
	return err == nil
}

// Next returns the next larger window, or w when already at the largest.
func (w WindowSize) Next() WindowSize {
	for _, candidate := range WindowSizes {
		if candidate > w {
			return candidate
		}
	}
	return WindowSizes[len(WindowSizes)-1]
}

// Prev returns the next smaller window, or the smallest one.
func (w WindowSize) Prev() WindowSize {
	for i := len(WindowSizes) - 1; i >= 0; i-- {
		if WindowSizes[i] < w {
			return WindowSizes[i]
		}
	}
	return WindowSizes[0]
}

func windowSizeList() string {
	parts := make([]string, len(WindowSizes))
	for i, w := range WindowSizes {
		parts[i] = strconv.Itoa(int(w))
	}
	return strings.Join(parts, ", ")
}
