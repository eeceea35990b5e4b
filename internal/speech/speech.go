// Package speech turns microphone audio into text for the practice game.
package speech

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/verte-zerg/speakup/internal/audio"
	"github.com/verte-zerg/speakup/internal/practice"
)

// Recorder captures one utterance.
type Recorder interface {
	Record(ctx context.Context, timeout time.Duration) (audio.Clip, error)
}

// Transcriber converts a WAV payload into text.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte) (string, error)
}

// ErrUnavailable marks transcription backend failures.
var ErrUnavailable = errors.New("speech: service unavailable")

// Input implements practice.SpeechInput by recording and then transcribing.
type Input struct {
	rec    Recorder
	tr     Transcriber
	logger *slog.Logger
}

var _ practice.SpeechInput = (*Input)(nil)

// NewInput returns an Input. A nil logger uses slog.Default.
func NewInput(rec Recorder, tr Transcriber, logger *slog.Logger) *Input {
	if logger == nil {
		logger = slog.Default()
	}
	return &Input{rec: rec, tr: tr, logger: logger}
}

// Listen records for at most timeout and returns the cleaned transcript.
// Silence maps to NoSpeechUnderstood; device and backend failures map to
// SpeechServiceUnavailable.
func (in *Input) Listen(ctx context.Context, timeout time.Duration) (string, error) {
	clip, err := in.rec.Record(ctx, timeout)
	if err != nil {
		if errors.Is(err, audio.ErrNoSpeech) {
			return "", practice.Wrap(practice.KindNoSpeechUnderstood, "listen", err)
		}
		return "", practice.Wrap(practice.KindSpeechServiceUnavailable, "record", err)
	}
	start := time.Now()
	text, err := in.tr.Transcribe(ctx, clip.WAV())
	if err != nil {
		return "", practice.Wrap(practice.KindSpeechServiceUnavailable, "transcribe", err)
	}
	text = CleanTranscript(text)
	in.logger.Debug("speech: transcribed",
		"audio", clip.Duration().String(), "took", time.Since(start).String(), "text", text)
	return text, nil
}

var annotation = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)|\*[^*]*\*`)

// CleanTranscript removes non-speech annotations such as "[BLANK_AUDIO]" or
// "(laughs)" and collapses whitespace.
func CleanTranscript(s string) string {
	s = annotation.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}
