package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/speakup/internal/model"
)

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{1, 2, 3, 4}, 2)
	want := []float64{1, 1.5, 2.5, 3.5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("MovingAverage = %v, want %v", got, want)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 1}); got != " @" {
		t.Fatalf("Sparkline = %q", got)
	}
	if got := Sparkline([]float64{2, 2, 2}); got != "+++" {
		t.Fatalf("flat Sparkline = %q", got)
	}
	if Sparkline(nil) != "" {
		t.Fatal("expected empty sparkline")
	}
}

func TestSessionMetrics(t *testing.T) {
	rate, sim, done := SessionMetrics(model.SessionAggregate{Attempts: 4, Passed: 3, SimilaritySum: 3.2, Score: 3, Total: 3})
	if rate != 0.75 || done != 1 {
		t.Fatalf("rate=%v done=%v", rate, done)
	}
	if sim < 0.799 || sim > 0.801 {
		t.Fatalf("similarity = %v", sim)
	}
	if r, s, d := SessionMetrics(model.SessionAggregate{}); r != 0 || s != 0 || d != 0 {
		t.Fatalf("empty session metrics should be zero")
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	sessions := []model.SessionAggregate{
		{SessionID: "a", Attempts: 2, Passed: 1, SimilaritySum: 1.5, Score: 1, Total: 3},
		{SessionID: "b", Attempts: 2, Passed: 2, SimilaritySum: 2, Score: 3, Total: 3},
	}
	if err := RenderSummary(&buf, sessions); err != nil {
		t.Fatalf("RenderSummary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Sessions: 2 (1 completed)", "Attempts: 4", "Pass Rate: 75.00%", "Best Score: 3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := RenderSummary(&buf, nil); err != nil || !strings.Contains(buf.String(), "No sessions") {
		t.Fatalf("unexpected empty summary: %q %v", buf.String(), err)
	}
}

func TestRenderCurvesKeepsTail(t *testing.T) {
	var buf bytes.Buffer
	sessions := make([]model.SessionAggregate, 10)
	for i := range sessions {
		sessions[i] = model.SessionAggregate{Attempts: 2, Passed: i % 3, SimilaritySum: float64(i%3) * 0.9}
	}
	if err := RenderCurves(&buf, sessions, 1, 4); err != nil {
		t.Fatalf("RenderCurves: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if !strings.HasPrefix(lines[0], "Learning Curves") || !strings.HasPrefix(lines[2], "Pass Rate") {
		t.Fatalf("unexpected curves output:\n%s", buf.String())
	}
}

func TestRenderWordTable(t *testing.T) {
	var buf bytes.Buffer
	aggs := []model.WordAggregate{
		{Word: "cat", Passed: 2, SimilaritySum: 2},
		{Word: "rhythm", Failed: 2, SimilaritySum: 0.5},
	}
	if err := RenderWordTable(&buf, aggs); err != nil {
		t.Fatalf("RenderWordTable: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if !strings.HasPrefix(lines[2], "rhythm") || !strings.HasPrefix(lines[3], "cat") {
		t.Fatalf("expected weakest word first:\n%s", buf.String())
	}
}
