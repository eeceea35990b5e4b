package practice

import (
	"context"
	"time"

	"github.com/verte-zerg/speakup/internal/model"
	"github.com/verte-zerg/speakup/internal/phonetic"
)

// WordSource produces practice words.
type WordSource interface {
	GenerateWord(ctx context.Context, difficulty model.Difficulty) (string, error)
}

// Frame is one still image from a camera.
type Frame struct {
	Data       []byte
	MIMEType   string
	CapturedAt time.Time
}

// FrameSource captures still frames.
type FrameSource interface {
	Capture(ctx context.Context) (Frame, error)
}

// Detector names the most prominent object in a frame. ok is false when
// nothing recognisable was found.
type Detector interface {
	Detect(ctx context.Context, frame Frame) (label string, ok bool, err error)
}

// SpeechInput records one utterance and returns its transcript. It fails
// with ErrNoSpeechUnderstood or ErrSpeechServiceUnavailable; an empty
// transcript with a nil error means something was heard but not words.
type SpeechInput interface {
	Listen(ctx context.Context, timeout time.Duration) (string, error)
}

// TextGenerator completes a prompt.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Comparator scores a transcript against the round target.
type Comparator interface {
	Evaluate(reference, candidate string) phonetic.Result
}

// Observer receives every state transition.
type Observer interface {
	Observe(t Transition)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Transition)

// Observe implements Observer.
func (f ObserverFunc) Observe(t Transition) { f(t) }
