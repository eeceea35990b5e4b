package stats

import (
	"bytes"
	"testing"
)

func TestTableLinesAlignColumns(t *testing.T) {
	headers := []string{"Word", "Pass Rate", "Failed"}
	rows := [][]string{
		{"cat", "97.50%", "12"},
		{"squirrel", "8.00%", "3"},
	}
	lines := tableLines(headers, rows, []int{1, 2})
	want := []string{
		"Word     Pass Rate Failed",
		"cat         97.50%     12",
		"squirrel     8.00%      3",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(lines))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestTableLinesWideRunes(t *testing.T) {
	lines := tableLines([]string{"Word", "N"}, [][]string{{"日本", "1"}}, nil)
	if lines[1] != "日本 1" {
		t.Fatalf("unexpected wide row: %q", lines[1])
	}
}

func TestWriteTableShortRows(t *testing.T) {
	var buf bytes.Buffer
	if err := writeTable(&buf, []string{"A", "B"}, [][]string{{"x"}}, 1); err != nil {
		t.Fatalf("writeTable: %v", err)
	}
	if got := buf.String(); got != "A B\nx  \n" {
		t.Fatalf("unexpected output: %q", got)
	}
}
