// Package phonetic scores how closely a spoken word matches a reference word.
//
// Words are compared as phoneme sequences when a Lookup knows both of them,
// and by spelling otherwise. An attempt passes when its score is strictly
// greater than PassThreshold.
package phonetic

import (
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
)

// PassThreshold is the minimum similarity (exclusive) for a passing attempt.
const PassThreshold = 0.8

// Lookup converts a word into its phoneme sequence.
type Lookup interface {
	ToPhonemes(word string) ([]string, bool)
}

// Result describes one comparison.
type Result struct {
	Score      float64
	Passed     bool
	Reference  []string
	Candidate  []string
	ByPhonemes bool
}

// Comparator compares words using the first lookup that knows both of them.
// It is read-only after construction.
type Comparator struct {
	lookups []Lookup
}

// New returns a Comparator. Lookups are consulted in order; nil entries are skipped.
func New(lookups ...Lookup) *Comparator {
	c := &Comparator{}
	for _, l := range lookups {
		if l != nil {
			c.lookups = append(c.lookups, l)
		}
	}
	return c
}

// Compare returns the similarity score in [0,1] and whether it passes.
func (c *Comparator) Compare(reference, candidate string) (float64, bool) {
	r := c.Evaluate(reference, candidate)
	return r.Score, r.Passed
}

// Evaluate compares reference with candidate and reports the phonemes used.
// A blank candidate scores 0 without running any similarity function.
func (c *Comparator) Evaluate(reference, candidate string) Result {
	ref := Normalize(reference)
	cand := Normalize(candidate)
	if cand == "" {
		return Result{}
	}

	best := c.score(ref, cand)
	// Recognizers often wrap the word ("a cup", "cup please"). Only short
	// answers get their tokens scored; a list of guesses is scored whole.
	tokens := strings.Fields(cand)
	words := trimFillers(tokens)
	if len(words) > 0 && len(words) <= maxAnswerTokens {
		if len(words) < len(tokens) {
			if r := c.score(ref, strings.Join(words, " ")); r.Score > best.Score {
				best = r
			}
		}
		if len(words) > 1 {
			for _, tok := range words {
				if r := c.score(ref, tok); r.Score > best.Score {
					best = r
				}
			}
		}
	}
	best.Passed = best.Score > PassThreshold
	return best
}

// maxAnswerTokens is the longest transcript, after leading fillers, whose
// tokens are scored one by one.
const maxAnswerTokens = 2

var fillers = map[string]bool{
	"a": true, "an": true, "the": true,
	"uh": true, "um": true, "uhm": true, "er": true, "erm": true, "hmm": true, "oh": true,
	"it": true, "it's": true, "its": true, "is": true,
	"this": true, "that": true, "that's": true,
}

// trimFillers drops leading articles and hesitations.
func trimFillers(tokens []string) []string {
	for len(tokens) > 0 && fillers[tokens[0]] {
		tokens = tokens[1:]
	}
	return tokens
}

func (c *Comparator) score(ref, cand string) Result {
	for _, l := range c.lookups {
		rp, ok := phrasePhonemes(l, ref)
		if !ok {
			continue
		}
		cp, ok := phrasePhonemes(l, cand)
		if !ok {
			continue
		}
		return Result{
			Score:      SequenceSimilarity(rp, cp),
			Reference:  rp,
			Candidate:  cp,
			ByPhonemes: true,
		}
	}
	return Result{Score: spellingScore(ref, cand)}
}

// spellingScore is the lowest of Jaro-Winkler, the letter edit similarity and
// the edit similarity of the Metaphone codes.
func spellingScore(ref, cand string) float64 {
	score := matchr.JaroWinkler(ref, cand, false)
	if s := editSimilarity([]rune(ref), []rune(cand)); s < score {
		score = s
	}
	rc, cc := Metaphone{}.Code(ref), Metaphone{}.Code(cand)
	if rc != "" && cc != "" {
		if s := editSimilarity([]rune(rc), []rune(cc)); s < score {
			score = s
		}
	}
	return score
}

func editSimilarity(a, b []rune) float64 {
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 1
	}
	dist := matchr.Levenshtein(string(a), string(b))
	return max(0, 1-float64(dist)/float64(maxLen))
}

// phrasePhonemes concatenates the phonemes of every token; all tokens must be known.
func phrasePhonemes(l Lookup, phrase string) ([]string, bool) {
	var out []string
	for _, tok := range strings.Fields(phrase) {
		p, ok := l.ToPhonemes(tok)
		if !ok || len(p) == 0 {
			return nil, false
		}
		out = append(out, p...)
	}
	return out, len(out) > 0
}

// SequenceSimilarity returns 1 - editDistance/maxLen over two phoneme
// sequences, ignoring stress markers.
func SequenceSimilarity(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	symbols := map[string]rune{}
	return editSimilarity(encodeSymbols(a, symbols), encodeSymbols(b, symbols))
}

// encodeSymbols maps each distinct phoneme to one private-use rune so the
// edit distance counts whole phonemes rather than letters.
func encodeSymbols(phonemes []string, symbols map[string]rune) []rune {
	out := make([]rune, 0, len(phonemes))
	for _, p := range phonemes {
		p = StripStress(p)
		r, ok := symbols[p]
		if !ok {
			r = rune(0xE000 + len(symbols))
			symbols[p] = r
		}
		out = append(out, r)
	}
	return out
}

// StripStress removes ARPAbet stress digits ("AH0" -> "AH").
func StripStress(p string) string {
	return strings.TrimRightFunc(strings.ToUpper(p), unicode.IsDigit)
}

// Normalize lower-cases s, drops punctuation other than apostrophes and
// collapses whitespace.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '\'':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
