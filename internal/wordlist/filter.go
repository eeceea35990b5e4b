// Package wordlist provides word list filtering helpers.
package wordlist

import (
	"strings"

	"github.com/verte-zerg/speakup/internal/model"
)

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// FilterForLang returns a language-specific filter for word lists.
func FilterForLang(lang string) FilterFunc {
	switch strings.ToLower(lang) {
	case "en", "":
		return filterEnglishASCII
	default:
		return func(string) bool { return true }
	}
}

func filterEnglishASCII(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		ch := word[i]
		if ch < 'a' || ch > 'z' {
			return false
		}
	}
	return true
}

// hardClusters are letter groups whose spelling rarely matches the sound.
var hardClusters = []string{"th", "ough", "augh", "rh", "ps", "gn", "kn", "wr", "sch", "tch", "dge", "eigh", "mn", "ph"}

// Classify assigns a difficulty from word length and spelling clusters.
// Short words without tricky clusters are easy; long or cluster-heavy words are hard.
func Classify(word string) model.Difficulty {
	clusters := 0
	for _, c := range hardClusters {
		if strings.Contains(word, c) {
			clusters++
		}
	}
	n := len(word)
	switch {
	case n >= 9 || (n >= 7 && clusters > 0) || clusters >= 2:
		return model.Hard
	case n >= 6 || clusters > 0:
		return model.Medium
	default:
		return model.Easy
	}
}

// Bands groups words by Classify, keeping their input order.
func Bands(words []string) map[model.Difficulty][]string {
	bands := make(map[model.Difficulty][]string, len(model.Difficulties))
	for _, w := range words {
		d := Classify(w)
		bands[d] = append(bands[d], w)
	}
	return bands
}
