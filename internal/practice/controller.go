// Package practice sequences one pronunciation game: obtain a target,
// listen for the user saying it, score the attempt and hand out tips and
// hints.
//
// The Controller is a state machine:
//
//	Idle -> TargetReady -> AwaitingSpeech -> Evaluated -> {Idle | TargetReady | Finished}
//
// It owns the session.State exclusively. Operations block on their
// collaborators and must not be called concurrently; UIs render the
// Snapshot each operation returns.
package practice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/speakup/internal/model"
	"github.com/verte-zerg/speakup/internal/phonetic"
	"github.com/verte-zerg/speakup/internal/prompt"
	"github.com/verte-zerg/speakup/internal/session"
)

const (
	defaultTarget        = "hello"
	defaultListenTimeout = 5 * time.Second
	defaultHintCount     = 3
)

// State is a controller state.
type State int

// Controller states.
const (
	Idle State = iota
	TargetReady
	AwaitingSpeech
	Evaluated
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case TargetReady:
		return "target_ready"
	case AwaitingSpeech:
		return "awaiting_speech"
	case Evaluated:
		return "evaluated"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is an immutable view of the controller for rendering.
type Snapshot struct {
	Mode       model.Mode
	State      State
	Difficulty model.Difficulty
	Score      int
	Total      int
	Round      session.Round
	HasRound   bool
	Verdict    *session.Verdict
	Notices    []error
}

// Transition is delivered to observers after every state change.
type Transition struct {
	Op       string
	From     State
	To       State
	Snapshot Snapshot
}

// Controller runs the practice state machine.
type Controller struct {
	cfg     model.Config
	session *session.State
	state   State
	verdict *session.Verdict
	notices []error

	words     WordSource
	frames    FrameSource
	detector  Detector
	speech    SpeechInput
	gen       TextGenerator
	cmp       Comparator
	observers []Observer
	logger    *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithWordSource sets the word generator used in words mode.
func WithWordSource(ws WordSource) Option {
	return func(c *Controller) { c.words = ws }
}

// WithCamera sets the frame source and detector used in objects mode.
func WithCamera(frames FrameSource, detector Detector) Option {
	return func(c *Controller) {
		c.frames = frames
		c.detector = detector
	}
}

// WithSpeech sets the speech input.
func WithSpeech(in SpeechInput) Option {
	return func(c *Controller) { c.speech = in }
}

// WithGenerator sets the text generator for examples, tips and hints.
// Without one the controller skips that feedback. gen must be safe for
// concurrent use; failure feedback requests run in parallel.
func WithGenerator(gen TextGenerator) Option {
	return func(c *Controller) { c.gen = gen }
}

// WithComparator replaces the default spelling-only comparator.
func WithComparator(cmp Comparator) Option {
	return func(c *Controller) { c.cmp = cmp }
}

// WithObserver registers a transition observer.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observers = append(c.observers, o) }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New validates cfg and the collaborators for its mode.
func New(cfg model.Config, opts ...Option) (*Controller, error) {
	if cfg.Mode == "" {
		cfg.Mode = model.ModeWords
	}
	if strings.TrimSpace(cfg.DefaultTarget) == "" {
		cfg.DefaultTarget = defaultTarget
	}
	if cfg.ListenTimeout <= 0 {
		cfg.ListenTimeout = defaultListenTimeout
	}
	if cfg.HintCount <= 0 {
		cfg.HintCount = defaultHintCount
	}

	c := &Controller{cfg: cfg, state: Idle}
	for _, o := range opts {
		o(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.cmp == nil {
		c.cmp = phonetic.New()
	}
	if c.speech == nil {
		return nil, errors.New("practice: speech input is required")
	}
	switch cfg.Mode {
	case model.ModeWords:
		if c.words == nil {
			return nil, errors.New("practice: words mode needs a word source")
		}
	case model.ModeObjects:
		if c.frames == nil || c.detector == nil {
			return nil, errors.New("practice: objects mode needs a frame source and detector")
		}
	default:
		return nil, fmt.Errorf("practice: unknown mode %q", cfg.Mode)
	}
	c.session = session.New(cfg.Rounds, cfg.Difficulty)
	return c, nil
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Snapshot returns the current view.
func (c *Controller) Snapshot() Snapshot {
	snap := Snapshot{
		Mode:       c.cfg.Mode,
		State:      c.state,
		Difficulty: c.session.Difficulty(),
		Score:      c.session.Score(),
		Total:      c.session.Total(),
		Notices:    append([]error(nil), c.notices...),
	}
	snap.Round, snap.HasRound = c.session.Round()
	if c.verdict != nil {
		v := *c.verdict
		snap.Verdict = &v
	}
	return snap
}

// NewTarget starts a round with a generated word or a detected object. When
// the source yields nothing the configured default target is used and a
// NoTargetAvailable notice is attached.
func (c *Controller) NewTarget(ctx context.Context) (Snapshot, error) {
	switch c.state {
	case Idle, TargetReady, Evaluated:
	default:
		return c.Snapshot(), c.invalid("new_target")
	}
	c.notices = nil
	c.verdict = nil

	target, err := c.acquireTarget(ctx)
	if err != nil {
		c.notice(&Error{Kind: KindNoTargetAvailable, Op: "new_target", Err: err})
		target = c.cfg.DefaultTarget
	}
	c.session.StartRound(target)

	if c.cfg.Mode == model.ModeWords && c.gen != nil {
		example, err := c.generate(ctx, prompt.UsageExample, prompt.Params{Word: target})
		if err != nil {
			c.notice(err)
		} else {
			c.session.SetExample(example)
		}
	}
	c.transition("new_target", TargetReady)
	return c.Snapshot(), nil
}

func (c *Controller) acquireTarget(ctx context.Context) (string, error) {
	switch c.cfg.Mode {
	case model.ModeObjects:
		frame, err := c.frames.Capture(ctx)
		if err != nil {
			return "", fmt.Errorf("capture frame: %w", err)
		}
		label, ok, err := c.detector.Detect(ctx, frame)
		if err != nil {
			return "", fmt.Errorf("detect object: %w", err)
		}
		label = strings.TrimSpace(label)
		if !ok || label == "" {
			return "", errors.New("no object detected")
		}
		return label, nil
	default:
		word, err := c.words.GenerateWord(ctx, c.session.Difficulty())
		if err != nil {
			return "", fmt.Errorf("generate word: %w", err)
		}
		word = strings.TrimSpace(word)
		if word == "" {
			return "", errors.New("empty word")
		}
		return word, nil
	}
}

// Listen records an utterance and evaluates it. Capture failures leave the
// round untouched and return the controller to TargetReady with a notice.
func (c *Controller) Listen(ctx context.Context) (Snapshot, error) {
	if _, err := c.BeginListening(); err != nil {
		return c.Snapshot(), err
	}
	transcript, err := c.speech.Listen(ctx, c.cfg.ListenTimeout)
	if err != nil {
		return c.Abort(err)
	}
	return c.Submit(ctx, transcript)
}

// BeginListening moves TargetReady to AwaitingSpeech.
func (c *Controller) BeginListening() (Snapshot, error) {
	if c.state != TargetReady {
		return c.Snapshot(), c.invalid("listen")
	}
	if err := c.session.MarkAwaitingSpeech(); err != nil {
		return c.Snapshot(), err
	}
	c.notices = nil
	c.transition("listen", AwaitingSpeech)
	return c.Snapshot(), nil
}

// Abort reports a capture failure and returns to TargetReady without
// counting an attempt.
func (c *Controller) Abort(cause error) (Snapshot, error) {
	if c.state != AwaitingSpeech {
		return c.Snapshot(), c.invalid("abort")
	}
	kind := KindOf(cause)
	if kind != KindNoSpeechUnderstood && kind != KindSpeechServiceUnavailable {
		kind = KindSpeechServiceUnavailable
	}
	c.notice(Wrap(kind, "listen", cause))
	c.session.CancelAwaitingSpeech()
	c.transition("abort", TargetReady)
	return c.Snapshot(), nil
}

// Submit scores transcript against the current target. An empty transcript
// counts as a failed attempt.
func (c *Controller) Submit(ctx context.Context, transcript string) (Snapshot, error) {
	if c.state != AwaitingSpeech {
		return c.Snapshot(), c.invalid("submit")
	}
	round, _ := c.session.Round()
	res := c.cmp.Evaluate(round.Target, transcript)
	verdict, err := c.session.RecordAttempt(session.Attempt{
		Transcript: transcript,
		Score:      res.Score,
		Passed:     res.Passed,
		Reference:  res.Reference,
		Spoken:     res.Candidate,
	})
	if err != nil {
		return c.Snapshot(), err
	}
	c.verdict = &verdict
	c.logger.Debug("practice: attempt evaluated",
		"target", round.Target, "transcript", transcript, "score", res.Score, "passed", res.Passed)
	c.transition("submit", Evaluated)

	switch {
	case verdict.Passed && verdict.Complete:
		c.transition("complete", Finished)
	case verdict.Passed:
		c.transition("next", Idle)
	default:
		c.feedback(ctx, round.Target, verdict)
		c.transition("retry", TargetReady)
	}
	return c.Snapshot(), nil
}

// feedback fetches tip, similar word and hints in parallel. Failures only
// add notices.
func (c *Controller) feedback(ctx context.Context, target string, verdict session.Verdict) {
	if c.gen == nil {
		return
	}
	var (
		tip, similar         string
		hints                []string
		tipErr, simErr, hErr error
	)
	var g errgroup.Group
	if c.cfg.Mode == model.ModeWords {
		g.Go(func() error {
			tip, tipErr = c.generate(ctx, prompt.PronunciationTip, prompt.Params{Word: target})
			return nil
		})
		g.Go(func() error {
			var raw string
			raw, simErr = c.generate(ctx, prompt.SimilarWord, prompt.Params{Word: target})
			similar = prompt.CleanWord(raw)
			return nil
		})
	}
	if verdict.HintDue {
		g.Go(func() error {
			var raw string
			raw, hErr = c.generate(ctx, prompt.PhoneticHints, prompt.Params{Word: target, Count: c.cfg.HintCount})
			hints = prompt.ParseList(raw, c.cfg.HintCount)
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range []error{tipErr, simErr, hErr} {
		if err != nil {
			c.notice(err)
		}
	}
	if c.cfg.Mode == model.ModeWords {
		c.session.SetFeedback(tip, similar)
	}
	if verdict.HintDue && hErr == nil {
		c.session.SetHints(hints)
	}
}

func (c *Controller) generate(ctx context.Context, intent prompt.Intent, p prompt.Params) (string, error) {
	text, err := prompt.Build(intent, p)
	if err != nil {
		if errors.Is(err, prompt.ErrUnknownIntent) {
			return "", Wrap(KindUnknownIntent, string(intent), err)
		}
		return "", Wrap(KindGenerationError, string(intent), err)
	}
	out, err := c.gen.Complete(ctx, text)
	if err != nil {
		return "", Wrap(KindGenerationError, string(intent), err)
	}
	return strings.TrimSpace(out), nil
}

// SetDifficulty applies a user-selected difficulty. It is rejected while listening.
func (c *Controller) SetDifficulty(d model.Difficulty) (Snapshot, error) {
	if c.state == AwaitingSpeech {
		return c.Snapshot(), c.invalid("set_difficulty")
	}
	if err := c.session.SetDifficulty(d); err != nil {
		return c.Snapshot(), err
	}
	return c.Snapshot(), nil
}

// Reset zeroes the session and returns to Idle from any state.
func (c *Controller) Reset() Snapshot {
	c.session.Reset()
	c.notices = nil
	c.verdict = nil
	c.transition("reset", Idle)
	return c.Snapshot()
}

func (c *Controller) notice(err error) {
	c.logger.Warn("practice: recoverable failure", "kind", KindOf(err).String(), "err", err)
	c.notices = append(c.notices, err)
}

func (c *Controller) invalid(op string) error {
	return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, op, c.state)
}

func (c *Controller) transition(op string, to State) {
	from := c.state
	c.state = to
	c.logger.Debug("practice: transition", "op", op, "from", from.String(), "to", to.String())
	if len(c.observers) == 0 {
		return
	}
	t := Transition{Op: op, From: from, To: to, Snapshot: c.Snapshot()}
	for _, o := range c.observers {
		o.Observe(t)
	}
}
