package phonetic

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// Metaphone produces Double Metaphone sound codes. Codes keep consonant
// skeletons only, so they can rule a pair out but never pass one on their own.
type Metaphone struct{}

// Code returns the primary code of every token in phrase, concatenated.
func (Metaphone) Code(phrase string) string {
	var b strings.Builder
	for _, tok := range strings.Fields(phrase) {
		primary, _ := matchr.DoubleMetaphone(tok)
		b.WriteString(primary)
	}
	return b.String()
}
