// Package stats contains statistics calculations and reporting.
package stats

import (
	"sort"

	"github.com/verte-zerg/speakup/internal/model"
)

// TopWordsByFrequency returns the n most attempted words.
func TopWordsByFrequency(aggs []model.WordAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	items := make([]model.WordAggregate, len(aggs))
	copy(items, aggs)
	sort.Slice(items, func(i, j int) bool {
		ti := items[i].Passed + items[i].Failed
		tj := items[j].Passed + items[j].Failed
		if ti == tj {
			return items[i].Word < items[j].Word
		}
		return ti > tj
	})
	n = min(n, len(items))
	out := make([]string, 0, n)
	for _, agg := range items[:n] {
		out = append(out, agg.Word)
	}
	return out
}
