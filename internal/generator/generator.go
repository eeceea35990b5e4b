// Package generator picks practice words from a local word list.
package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/verte-zerg/speakup/internal/model"
	"github.com/verte-zerg/speakup/internal/wordlist"
)

// DefaultWeakFactor is the extra weight given to a previously failed word.
const DefaultWeakFactor = 4.0

// ErrEmptyList is returned when no word is available for any difficulty.
var ErrEmptyList = errors.New("generator: word list is empty")

// Generator produces practice words banded by difficulty. It implements
// practice.WordSource.
type Generator struct {
	mu     sync.Mutex
	rnd    *rand.Rand
	bands  map[model.Difficulty][]string
	weak   map[string]struct{}
	factor float64
	last   string
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand replaces the time-seeded source.
func WithRand(rnd *rand.Rand) Option {
	return func(g *Generator) { g.rnd = rnd }
}

// WithWeakWords biases selection toward words in weak by factor.
func WithWeakWords(weak []string, factor float64) Option {
	return func(g *Generator) {
		for _, w := range weak {
			g.weak[w] = struct{}{}
		}
		if factor > 0 {
			g.factor = factor
		}
	}
}

// New returns a Generator over words.
func New(words []string, opts ...Option) (*Generator, error) {
	if len(words) == 0 {
		return nil, ErrEmptyList
	}
	g := &Generator{
		bands:  wordlist.Bands(words),
		weak:   map[string]struct{}{},
		factor: DefaultWeakFactor,
	}
	for _, o := range opts {
		o(g)
	}
	if g.rnd == nil {
		g.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return g, nil
}

// GenerateWord picks a word for difficulty, falling back to the nearest
// easier band and then any band. The previous word is not repeated when
// another candidate exists.
func (g *Generator) GenerateWord(ctx context.Context, d model.Difficulty) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	candidates := g.band(d)
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no %s words", ErrEmptyList, d)
	}
	word := g.pickWeighted(candidates)
	g.last = word
	return word, nil
}

func (g *Generator) band(d model.Difficulty) []string {
	for level := d; level >= model.Easy; level-- {
		if words := g.bands[level]; len(words) > 0 {
			return words
		}
	}
	for _, level := range model.Difficulties {
		if words := g.bands[level]; len(words) > 0 {
			return words
		}
	}
	return nil
}

// pickWeighted selects with weight 1 for ordinary words and 1+factor for weak ones.
func (g *Generator) pickWeighted(words []string) string {
	weights := make([]float64, len(words))
	total := 0.0
	for i, word := range words {
		w := 1.0
		if _, ok := g.weak[word]; ok {
			w += g.factor
		}
		if word == g.last && len(words) > 1 {
			w = 0
		}
		weights[i] = w
		total += w
	}

	r := g.rnd.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if w > 0 && r <= acc {
			return words[i]
		}
	}
	for i := len(words) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return words[i]
		}
	}
	return words[0]
}
