package session

import (
	"errors"
	"testing"

	"github.com/verte-zerg/speakup/internal/model"
)

func TestStartRoundResetsAttempts(t *testing.T) {
	s := New(3, model.Easy)
	s.StartRound("cat")
	for i := 0; i < 3; i++ {
		if _, err := s.RecordAttempt(Attempt{Passed: false}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	r, _ := s.Round()
	if r.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", r.Attempts)
	}
	s.SetHints([]string{"cap"})
	s.SetFeedback("tip", "bat")

	s.StartRound("dog")
	r, ok := s.Round()
	if !ok {
		t.Fatalf("expected a round")
	}
	if r.Target != "dog" || r.Attempts != 0 || r.NeedsHint || r.HintText() != "" || r.Tip != "" {
		t.Fatalf("round not reset: %+v", r)
	}
}

func TestAttemptsMonotonicWithinRound(t *testing.T) {
	s := New(5, model.Easy)
	s.StartRound("cat")
	prev := 0
	for i := 0; i < 4; i++ {
		if _, err := s.RecordAttempt(Attempt{}); err != nil {
			t.Fatalf("record: %v", err)
		}
		r, _ := s.Round()
		if r.Attempts < prev {
			t.Fatalf("attempts decreased from %d to %d", prev, r.Attempts)
		}
		prev = r.Attempts
	}
}

func TestHintDueAtThreshold(t *testing.T) {
	s := New(3, model.Easy)
	s.StartRound("cup")

	v, _ := s.RecordAttempt(Attempt{})
	if v.HintDue {
		t.Fatalf("hint due after one failure")
	}
	v, _ = s.RecordAttempt(Attempt{})
	if !v.HintDue {
		t.Fatalf("expected hint due after %d failures", RetryThreshold)
	}
	r, _ := s.Round()
	if !r.NeedsHint {
		t.Fatalf("expected round to need a hint")
	}
	v, _ = s.RecordAttempt(Attempt{})
	if v.HintDue {
		t.Fatalf("hint should be due only once")
	}
	r, _ = s.Round()
	if !r.NeedsHint {
		t.Fatalf("round should keep needing a hint")
	}
}

func TestScoreNeverExceedsTotal(t *testing.T) {
	s := New(2, model.Easy)
	for i := 0; i < 2; i++ {
		s.StartRound("cat")
		v, err := s.RecordAttempt(Attempt{Passed: true})
		if err != nil {
			t.Fatalf("record: %v", err)
		}
		if v.Complete != (i == 1) {
			t.Fatalf("round %d: complete=%v", i, v.Complete)
		}
	}
	if !s.IsComplete() {
		t.Fatalf("expected completion at score == total")
	}
	s.StartRound("dog")
	if _, err := s.RecordAttempt(Attempt{Passed: true}); !errors.Is(err, ErrSessionComplete) {
		t.Fatalf("expected ErrSessionComplete, got %v", err)
	}
	if s.Score() > s.Total() {
		t.Fatalf("score %d exceeds total %d", s.Score(), s.Total())
	}
}

func TestDifficultyEscalatesForwardOnly(t *testing.T) {
	s := New(10, model.Easy)
	want := []model.Difficulty{model.Medium, model.Hard, model.Hard}
	for i, w := range want {
		s.StartRound("word")
		before := s.Difficulty()
		if _, err := s.RecordAttempt(Attempt{}); err != nil {
			t.Fatalf("record fail: %v", err)
		}
		if s.Difficulty() != before {
			t.Fatalf("failure changed difficulty from %s to %s", before, s.Difficulty())
		}
		if _, err := s.RecordAttempt(Attempt{Passed: true}); err != nil {
			t.Fatalf("record pass: %v", err)
		}
		if s.Difficulty() != w {
			t.Fatalf("after pass %d: difficulty %s, want %s", i, s.Difficulty(), w)
		}
	}
}

func TestNoEscalationOnFinalPass(t *testing.T) {
	s := New(1, model.Easy)
	s.StartRound("cat")
	v, err := s.RecordAttempt(Attempt{Passed: true})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if v.Escalated || s.Difficulty() != model.Easy {
		t.Fatalf("final pass should not escalate, got %s", s.Difficulty())
	}
}

func TestRoundClosedAfterPass(t *testing.T) {
	s := New(3, model.Easy)
	s.StartRound("cat")
	if _, err := s.RecordAttempt(Attempt{Passed: true}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := s.RecordAttempt(Attempt{Passed: true}); !errors.Is(err, ErrRoundClosed) {
		t.Fatalf("expected ErrRoundClosed, got %v", err)
	}
	if s.Score() != 1 {
		t.Fatalf("score = %d, want 1", s.Score())
	}
}

func TestRecordWithoutRound(t *testing.T) {
	s := New(3, model.Easy)
	if _, err := s.RecordAttempt(Attempt{}); !errors.Is(err, ErrNoRound) {
		t.Fatalf("expected ErrNoRound, got %v", err)
	}
	if err := s.MarkAwaitingSpeech(); !errors.Is(err, ErrNoRound) {
		t.Fatalf("expected ErrNoRound, got %v", err)
	}
}

func TestResetRestoresStart(t *testing.T) {
	s := New(3, model.Medium)
	s.StartRound("cat")
	_, _ = s.RecordAttempt(Attempt{Passed: true})
	if s.Difficulty() != model.Hard {
		t.Fatalf("expected escalation to hard")
	}
	s.Reset()
	if s.Score() != 0 || s.Difficulty() != model.Medium {
		t.Fatalf("reset left score=%d difficulty=%s", s.Score(), s.Difficulty())
	}
	if _, ok := s.Round(); ok {
		t.Fatalf("reset should drop the round")
	}
}

func TestCancelAwaitingSpeech(t *testing.T) {
	s := New(3, model.Easy)
	s.StartRound("cat")
	_ = s.MarkAwaitingSpeech()
	s.CancelAwaitingSpeech()
	r, _ := s.Round()
	if r.Status != Pending || r.Attempts != 0 {
		t.Fatalf("unexpected round after cancel: %+v", r)
	}
}

func TestNewDefaults(t *testing.T) {
	s := New(0, model.Difficulty(9))
	if s.Total() != DefaultTotal || s.Difficulty() != model.Easy {
		t.Fatalf("defaults not applied: total=%d difficulty=%s", s.Total(), s.Difficulty())
	}
}
