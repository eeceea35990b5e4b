package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

// Default endpointing values.
const (
	DefaultThreshold = 0.02
	DefaultSilence   = 800 * time.Millisecond
)

// Recorder captures utterances from the default input device.
type Recorder struct {
	mu        sync.Mutex
	threshold float64
	silence   time.Duration
	logger    *slog.Logger
	closed    bool
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithThreshold sets the RMS level treated as speech.
func WithThreshold(level float64) Option {
	return func(r *Recorder) {
		if level > 0 {
			r.threshold = level
		}
	}
}

// WithSilence sets how much trailing quiet ends an utterance.
func WithSilence(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.silence = d
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) { r.logger = l }
}

// New initializes portaudio. Failure means no usable audio subsystem.
func New(opts ...Option) (*Recorder, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("audio: initialize portaudio: %w", err)
	}
	r := &Recorder{threshold: DefaultThreshold, silence: DefaultSilence, logger: slog.Default()}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// Record captures one utterance. It stops after trailing silence, when
// timeout elapses or when ctx is done. A window with no voiced frame returns
// ErrNoSpeech.
func (r *Recorder) Record(ctx context.Context, timeout time.Duration) (Clip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return Clip{}, fmt.Errorf("audio: recorder closed")
	}

	buf := make([]int16, FramesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(Channels, 0, SampleRate, FramesPerBuffer, buf)
	if err != nil {
		return Clip{}, fmt.Errorf("audio: open input stream: %w", err)
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil {
			// Best-effort stream close.
			_ = cerr
		}
	}()
	if err := stream.Start(); err != nil {
		return Clip{}, fmt.Errorf("audio: start input stream: %w", err)
	}
	defer func() {
		if serr := stream.Stop(); serr != nil {
			// Best-effort stream stop.
			_ = serr
		}
	}()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ep := &Endpointer{Threshold: r.threshold, Silence: r.silence}
	samples := make([]int16, 0, SampleRate*5)
	for ctx.Err() == nil {
		if err := stream.Read(); err != nil {
			return Clip{}, fmt.Errorf("audio: read input stream: %w", err)
		}
		samples = append(samples, buf...)
		if ep.Feed(buf, SampleRate) {
			break
		}
	}
	r.logger.Debug("audio: capture finished",
		"samples", len(samples), "voiced", ep.Voiced(), "ctx_err", ctx.Err())
	if !ep.Voiced() {
		return Clip{}, ErrNoSpeech
	}
	if len(samples) < MinSamples {
		samples = append(samples, make([]int16, MinSamples-len(samples))...)
	}
	return Clip{Samples: samples, SampleRate: SampleRate}, nil
}

// Close releases portaudio.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return portaudio.Terminate()
}
