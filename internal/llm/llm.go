// Package llm adapts text generation backends to the practice game.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/verte-zerg/speakup/internal/model"
	"github.com/verte-zerg/speakup/internal/prompt"
)

// ErrEmptyWord is returned when a completion holds no usable word.
var ErrEmptyWord = errors.New("llm: completion contained no word")

// Completer answers a single prompt. Both providers implement it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// WordSource generates practice words with a Completer.
type WordSource struct {
	c Completer
}

// NewWordSource returns a WordSource backed by c.
func NewWordSource(c Completer) *WordSource {
	return &WordSource{c: c}
}

// GenerateWord asks for one word at difficulty d and cleans the reply.
func (w *WordSource) GenerateWord(ctx context.Context, d model.Difficulty) (string, error) {
	text, err := prompt.Build(prompt.GenerateWord, prompt.Params{Difficulty: d})
	if err != nil {
		return "", err
	}
	raw, err := w.c.Complete(ctx, text)
	if err != nil {
		return "", fmt.Errorf("llm: generate word: %w", err)
	}
	word := prompt.CleanWord(raw)
	if word == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptyWord, raw)
	}
	return word, nil
}
