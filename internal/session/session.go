// Package session holds the score, difficulty and current round of one
// practice session. It performs no I/O; the practice controller owns the
// only instance and mutates it through these methods.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/verte-zerg/speakup/internal/model"
)

const (
	// RetryThreshold is the number of failed attempts after which a round earns hints.
	RetryThreshold = 2
	// DefaultTotal is the number of successful rounds that completes a session.
	DefaultTotal = 3
)

var (
	// ErrNoRound is returned when an operation needs a current round.
	ErrNoRound = errors.New("session: no active round")
	// ErrRoundClosed is returned when recording an attempt on a round already passed.
	ErrRoundClosed = errors.New("session: round already passed")
	// ErrSessionComplete is returned when recording an attempt after score reached total.
	ErrSessionComplete = errors.New("session: session complete")
)

// Status is the lifecycle stage of a round.
type Status int

// Round statuses.
const (
	Pending Status = iota
	AwaitingSpeech
	Evaluated
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case AwaitingSpeech:
		return "awaiting_speech"
	case Evaluated:
		return "evaluated"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Attempt is one evaluated utterance.
type Attempt struct {
	Transcript string
	Score      float64
	Passed     bool
	Reference  []string
	Spoken     []string
}

// Round is the target currently being practiced.
type Round struct {
	Target    string
	Attempts  int
	Status    Status
	Example   string
	Tip       string
	Similar   string
	Hints     []string
	NeedsHint bool
	Last      *Attempt
}

// HintText joins the hint words for display.
func (r Round) HintText() string {
	return strings.Join(r.Hints, ", ")
}

// Verdict reports what RecordAttempt changed.
type Verdict struct {
	Passed    bool
	Escalated bool
	HintDue   bool
	Complete  bool
}

// State is the mutable session state.
type State struct {
	start      model.Difficulty
	difficulty model.Difficulty
	score      int
	total      int
	round      *Round
}

// New returns a session that completes after total passes. Non-positive totals use DefaultTotal.
func New(total int, start model.Difficulty) *State {
	if total <= 0 {
		total = DefaultTotal
	}
	if !start.Valid() {
		start = model.Easy
	}
	return &State{start: start, difficulty: start, total: total}
}

// Difficulty returns the current difficulty.
func (s *State) Difficulty() model.Difficulty { return s.difficulty }

// Score returns the number of passed rounds.
func (s *State) Score() int { return s.score }

// Total returns the number of passes needed to complete the session.
func (s *State) Total() int { return s.total }

// Round returns a copy of the current round.
func (s *State) Round() (Round, bool) {
	if s.round == nil {
		return Round{}, false
	}
	r := *s.round
	r.Hints = append([]string(nil), s.round.Hints...)
	if s.round.Last != nil {
		last := *s.round.Last
		r.Last = &last
	}
	return r, true
}

// StartRound replaces the current round with a fresh one for target.
func (s *State) StartRound(target string) {
	s.round = &Round{Target: target, Status: Pending}
}

// MarkAwaitingSpeech flags the round as waiting for an utterance.
func (s *State) MarkAwaitingSpeech() error {
	if s.round == nil {
		return ErrNoRound
	}
	s.round.Status = AwaitingSpeech
	return nil
}

// CancelAwaitingSpeech returns the round to its previous status after a capture failure.
func (s *State) CancelAwaitingSpeech() {
	if s.round == nil || s.round.Status != AwaitingSpeech {
		return
	}
	if s.round.Attempts > 0 {
		s.round.Status = Evaluated
		return
	}
	s.round.Status = Pending
}

// RecordAttempt counts an attempt on the current round. A pass increments the
// score and, unless the session is now complete, escalates difficulty one step.
// A failure at or beyond RetryThreshold marks the round as needing hints.
func (s *State) RecordAttempt(a Attempt) (Verdict, error) {
	if s.round == nil {
		return Verdict{}, ErrNoRound
	}
	if s.IsComplete() {
		return Verdict{}, ErrSessionComplete
	}
	if s.round.Last != nil && s.round.Last.Passed {
		return Verdict{}, ErrRoundClosed
	}

	s.round.Attempts++
	s.round.Status = Evaluated
	last := a
	s.round.Last = &last

	v := Verdict{Passed: a.Passed}
	if a.Passed {
		s.score++
		if s.score < s.total && s.difficulty < model.Hard {
			s.difficulty = s.difficulty.Next()
			v.Escalated = true
		}
		v.Complete = s.IsComplete()
		return v, nil
	}
	if s.round.Attempts >= RetryThreshold {
		s.round.NeedsHint = true
		v.HintDue = s.round.Attempts == RetryThreshold
	}
	return v, nil
}

// SetExample stores the usage sentence for the current round.
func (s *State) SetExample(example string) {
	if s.round != nil {
		s.round.Example = example
	}
}

// SetFeedback stores the tip and suggested practice word for the current round.
func (s *State) SetFeedback(tip, similar string) {
	if s.round != nil {
		s.round.Tip = tip
		s.round.Similar = similar
	}
}

// SetHints stores hint words for the current round.
func (s *State) SetHints(hints []string) {
	if s.round != nil {
		s.round.Hints = append([]string(nil), hints...)
	}
}

// SetDifficulty applies an explicit user choice.
func (s *State) SetDifficulty(d model.Difficulty) error {
	if !d.Valid() {
		return fmt.Errorf("session: invalid difficulty %d", int(d))
	}
	s.difficulty = d
	s.start = d
	return nil
}

// IsComplete reports whether score reached total.
func (s *State) IsComplete() bool {
	return s.score == s.total
}

// Reset zeroes the score, drops the round and restores the starting difficulty.
func (s *State) Reset() {
	s.score = 0
	s.round = nil
	s.difficulty = s.start
}
