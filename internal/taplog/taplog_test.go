package taplog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadSkipsCommentsAndBlanks(t *testing.T) {
	input := "# session 1\n1000\n\n  1500  \n# mid comment\n2000\n"
	taps, err := Load(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := []int64{1000, 1500, 2000}
	if len(taps) != len(want) {
		t.Fatalf("expected %v, got %v", want, taps)
	}
	for i := range want {
		if taps[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, taps)
		}
	}
}

func TestLoadReportsLineNumber(t *testing.T) {
	_, err := Load(strings.NewReader("100\n\n12.5\n"))
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("expected line number in error, got %v", err)
	}
}

func TestLoadEmpty(t *testing.T) {
	if _, err := Load(strings.NewReader("# nothing\n\n")); err == nil {
		t.Fatalf("expected error for empty tap log")
	}
}

func TestWriteThenLoadFile(t *testing.T) {
	var buf bytes.Buffer
	taps := []int64{0, 480, 990}
	if err := Write(&buf, taps); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if buf.String() != "0\n480\n990\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
	path := filepath.Join(t.TempDir(), "taps.txt")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(got) != 3 || got[2] != 990 {
		t.Fatalf("unexpected taps %v", got)
	}
}

func TestRebase(t *testing.T) {
	got := Rebase([]int64{1700000000000, 1700000000500, 1700000001010})
	if got[0] != 0 || got[1] != 500 || got[2] != 1010 {
		t.Fatalf("unexpected rebased taps %v", got)
	}
	if len(Rebase(nil)) != 0 {
		t.Fatalf("expected empty result")
	}
}
