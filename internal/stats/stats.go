// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/speakup/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes the pass rate, mean similarity and score ratio for a session.
func SessionMetrics(s model.SessionAggregate) (passRate, similarity, completion float64) {
	if s.Attempts > 0 {
		passRate = float64(s.Passed) / float64(s.Attempts)
		similarity = s.SimilaritySum / float64(s.Attempts)
	}
	if s.Total > 0 {
		completion = float64(s.Score) / float64(s.Total)
	}
	return passRate, similarity, completion
}

// WordMetrics computes the pass rate and mean similarity for a word.
func WordMetrics(agg model.WordAggregate) (passRate, similarity float64) {
	total := agg.Passed + agg.Failed
	if total == 0 {
		return 1, 0
	}
	return float64(agg.Passed) / float64(total), agg.SimilaritySum / float64(total)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary block for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var attempts, passed, completed, bestScore int
	var simSum float64
	for _, s := range sessions {
		attempts += s.Attempts
		passed += s.Passed
		simSum += s.SimilaritySum
		if s.Total > 0 && s.Score >= s.Total {
			completed++
		}
		bestScore = max(bestScore, s.Score)
	}
	passRate, avgSim := 0.0, 0.0
	if attempts > 0 {
		passRate = float64(passed) / float64(attempts)
		avgSim = simSum / float64(attempts)
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d (%d completed)", len(sessions), completed),
		fmt.Sprintf("Attempts: %d", attempts),
		fmt.Sprintf("Pass Rate: %.2f%%", passRate*100),
		fmt.Sprintf("Avg Similarity: %.2f", avgSim),
		fmt.Sprintf("Best Score: %d", bestScore),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints moving-average sparklines of pass rate and similarity,
// keeping the most recent width sessions when width is positive.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window, width int) error {
	if len(sessions) == 0 {
		return nil
	}
	rates := make([]float64, len(sessions))
	sims := make([]float64, len(sessions))
	for i, s := range sessions {
		rates[i], sims[i], _ = SessionMetrics(s)
	}
	rates = tail(MovingAverage(rates, window), width)
	sims = tail(MovingAverage(sims, window), width)

	headers := []string{"Curve", "Trend", "Latest"}
	rows := [][]string{
		{"Pass Rate", Sparkline(rates), fmt.Sprintf("%.0f%%", rates[len(rates)-1]*100)},
		{"Similarity", Sparkline(sims), fmt.Sprintf("%.2f", sims[len(sims)-1])},
	}
	if _, err := fmt.Fprintf(w, "Learning Curves (window %d)\n", max(window, 1)); err != nil {
		return err
	}
	if err := writeTable(w, headers, rows, 2); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func tail(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

// RenderWordTable prints per-word aggregates, weakest first.
func RenderWordTable(w io.Writer, aggs []model.WordAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No word stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Word (Windowed)"); err != nil {
		return err
	}
	headers, rows := WordRows(aggs)
	if err := writeTable(w, headers, rows, 1, 2, 3, 4); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// WordRows formats aggregates as table cells sorted by lowest pass rate.
func WordRows(aggs []model.WordAggregate) ([]string, [][]string) {
	sorted := sortByWeakness(aggs)
	headers := []string{"Word", "Pass Rate", "Similarity", "Passed", "Failed"}
	rows := make([][]string, 0, len(sorted))
	for _, agg := range sorted {
		rate, sim := WordMetrics(agg)
		rows = append(rows, []string{
			agg.Word,
			fmt.Sprintf("%.2f%%", rate*100),
			fmt.Sprintf("%.2f", sim),
			fmt.Sprintf("%d", agg.Passed),
			fmt.Sprintf("%d", agg.Failed),
		})
	}
	return headers, rows
}

func sortByWeakness(aggs []model.WordAggregate) []model.WordAggregate {
	out := make([]model.WordAggregate, len(aggs))
	copy(out, aggs)
	sort.SliceStable(out, func(i, j int) bool {
		ri, si := WordMetrics(out[i])
		rj, sj := WordMetrics(out[j])
		if ri != rj {
			return ri < rj
		}
		if si != sj {
			return si < sj
		}
		return out[i].Word < out[j].Word
	})
	return out
}
