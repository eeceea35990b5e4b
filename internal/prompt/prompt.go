// Package prompt builds the text prompts sent to the generation service and
// parses the short answers that come back.
package prompt

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/verte-zerg/speakup/internal/model"
)

// Intent names a prompt template.
type Intent string

// Supported intents.
const (
	GenerateWord     Intent = "generate_word"
	PronunciationTip Intent = "pronunciation_tip"
	UsageExample     Intent = "usage_example"
	SimilarWord      Intent = "similar_word"
	PhoneticHints    Intent = "phonetic_hints"
	DetectObject     Intent = "detect_object"
)

var (
	// ErrUnknownIntent is returned for intents without a template.
	ErrUnknownIntent = errors.New("unknown prompt intent")
	// ErrInvalidParams is returned when an intent is missing a parameter.
	ErrInvalidParams = errors.New("invalid prompt parameters")
)

// Params carries template inputs. Each intent reads only the fields it needs.
type Params struct {
	Difficulty model.Difficulty
	Word       string
	Count      int
}

// Build renders the prompt for intent.
func Build(intent Intent, p Params) (string, error) {
	switch intent {
	case GenerateWord:
		if !p.Difficulty.Valid() {
			return "", fmt.Errorf("%w: difficulty %d", ErrInvalidParams, int(p.Difficulty))
		}
		return fmt.Sprintf(`Generate a single %s English word for pronunciation practice. The word should be able to be said by 8-10 year olds.
The word should be appropriate for the difficulty level:
- Easy: common, short words with simple pronunciation
- Medium: medium length words with more complex phonetics
- Hard: challenging words with difficult letter combinations.

Return only the word, nothing else.`, p.Difficulty), nil
	case PronunciationTip:
		word, err := requireWord(intent, p)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(`Provide a short, specific tip for pronouncing the word '%s' correctly.
Focus on the most challenging part of the pronunciation.
Keep the response under 50 words.`, word), nil
	case UsageExample:
		word, err := requireWord(intent, p)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Write a short, simple sentence using the word '%s' in context.", word), nil
	case SimilarWord:
		word, err := requireWord(intent, p)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(`Suggest a single word that has a similar pronunciation pattern to '%s'
that might help with practice. Return only the word.`, word), nil
	case PhoneticHints:
		word, err := requireWord(intent, p)
		if err != nil {
			return "", err
		}
		if p.Count <= 0 {
			return "", fmt.Errorf("%w: %s needs a positive count", ErrInvalidParams, intent)
		}
		return fmt.Sprintf("Generate %d words phonetically similar to %s. Return one word per line and nothing else.", p.Count, word), nil
	case DetectObject:
		return `Name the single most prominent physical object in this photo using one or two common English words, as a child would say it.
Return only the name in lower case, or "none" if there is no clear object.`, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownIntent, string(intent))
	}
}

func requireWord(intent Intent, p Params) (string, error) {
	word := strings.TrimSpace(p.Word)
	if word == "" {
		return "", fmt.Errorf("%w: %s needs a word", ErrInvalidParams, intent)
	}
	return word, nil
}

// CleanWord lower-cases a single-word answer and keeps only letters and digits.
func CleanWord(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanLabel normalizes a short object label: lower case, letters and single
// spaces only, no leading article, at most two words.
func CleanLabel(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if len(fields) > 1 && (fields[0] == "a" || fields[0] == "an" || fields[0] == "the") {
		fields = fields[1:]
	}
	if len(fields) > 2 {
		fields = fields[:2]
	}
	return strings.Join(fields, " ")
}

// ParseList splits a multi-line answer into items, dropping bullets,
// numbering and blank lines. At most limit items are returned when limit > 0.
func ParseList(s string, limit int) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		for _, part := range strings.Split(line, ",") {
			item := strings.TrimLeftFunc(strings.TrimSpace(part), func(r rune) bool {
				return unicode.IsDigit(r) || r == '.' || r == ')' || r == '-' || r == '*' || unicode.IsSpace(r)
			})
			item = strings.TrimSpace(strings.Trim(item, `"'.`))
			if item == "" {
				continue
			}
			out = append(out, item)
			if limit > 0 && len(out) == limit {
				return out
			}
		}
	}
	return out
}
