package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"#", "Tempo", "Kind"}
	rows := [][]string{
		{"1", "120.00", "count-in"},
		{"10", "98.50", "tap"},
	}
	rightAlign := map[int]bool{0: true, 1: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != " #  Tempo Kind" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != " 1 120.00 count-in" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "10  98.50 tap" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Name", "N"}, [][]string{{"テンポ", "1"}}, map[int]bool{1: true})
	if lines[0] != "Name   N" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "テンポ 1" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
}
