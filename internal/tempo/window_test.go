package tempo

import "testing"

func TestParseWindowSize(t *testing.T) {
	for _, n := range []int{1, 2, 4, 6, 8, 10} {
		w, err := ParseWindowSize(n)
		if err != nil || int(w) != n {
			t.Fatalf("expected %d to be valid, got %d (%v)", n, w, err)
		}
	}
	for _, n := range []int{0, 3, 5, 11, -4} {
		if _, err := ParseWindowSize(n); err == nil {
			t.Fatalf("expected %d to be rejected", n)
		}
	}
}

func TestWindowSizeCycling(t *testing.T) {
	if got := WindowSize(4).Next(); got != 6 {
		t.Fatalf("expected 6, got %d", got)
	}
	if got := WindowSize(10).Next(); got != 10 {
		t.Fatalf("expected clamp at 10, got %d", got)
	}
	if got := WindowSize(4).Prev(); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := WindowSize(1).Prev(); got != 1 {
		t.Fatalf("expected clamp at 1, got %d", got)
	}
	if WindowSize(5).Valid() {
		t.Fatalf("expected 5 to be invalid")
	}
}
