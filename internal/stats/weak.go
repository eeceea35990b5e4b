package stats

import "github.com/verte-zerg/speakup/internal/model"

// SelectWeakWords returns up to top words with at least one failure, weakest first.
func SelectWeakWords(aggs []model.WordAggregate, top int) []string {
	var weak []string
	for _, agg := range sortByWeakness(aggs) {
		if agg.Failed == 0 {
			continue
		}
		weak = append(weak, agg.Word)
		if top > 0 && len(weak) == top {
			break
		}
	}
	return weak
}
