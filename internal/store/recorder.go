package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/speakup/internal/model"
	"github.com/verte-zerg/speakup/internal/practice"
)

const writeTimeout = 2 * time.Second

// Recorder persists sessions and attempts from controller transitions.
// A session row is created when the first target of a session is ready and
// finished on completion, reset or Close.
type Recorder struct {
	store  *Store
	mode   model.Mode
	logger *slog.Logger
	now    func() time.Time

	mu         sync.Mutex
	sessionID  string
	difficulty model.Difficulty
	last       practice.Snapshot
	closed     bool
}

var _ practice.Observer = (*Recorder)(nil)

// NewRecorder returns a recorder writing to s.
func NewRecorder(s *Store, mode model.Mode, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: s, mode: mode, logger: logger, now: time.Now}
}

// SessionID returns the id of the open session, or "".
func (r *Recorder) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionID
}

// Observe implements practice.Observer. Write failures are logged; the game
// carries on without history. Transitions after Close are dropped.
func (r *Recorder) Observe(t practice.Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	switch t.Op {
	case "new_target":
		if r.sessionID == "" {
			r.open(ctx, t.Snapshot)
		}
	case "listen":
		r.difficulty = t.Snapshot.Difficulty
	case "submit":
		r.attempt(ctx, t.Snapshot)
	case "complete":
		r.finish(ctx, t.Snapshot)
	case "reset":
		r.finish(ctx, r.last)
	}
	r.last = t.Snapshot
}

// Close finishes the open session, if any. It is safe to call more than once.
func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	r.finish(ctx, r.last)
}

func (r *Recorder) open(ctx context.Context, snap practice.Snapshot) {
	id := uuid.NewString()
	now := r.now()
	err := r.store.InsertSession(ctx, model.SessionRecord{
		ID:         id,
		Mode:       r.mode,
		StartedAt:  now,
		EndedAt:    now,
		Total:      snap.Total,
		Difficulty: snap.Difficulty,
	})
	if err != nil {
		r.logger.Error("store: open session", "err", err)
		return
	}
	r.sessionID = id
	r.difficulty = snap.Difficulty
}

func (r *Recorder) attempt(ctx context.Context, snap practice.Snapshot) {
	if r.sessionID == "" || !snap.HasRound || snap.Round.Last == nil {
		return
	}
	last := snap.Round.Last
	err := r.store.InsertAttempt(ctx, model.AttemptRecord{
		SessionID:  r.sessionID,
		Target:     snap.Round.Target,
		Transcript: last.Transcript,
		Similarity: last.Score,
		Passed:     last.Passed,
		Difficulty: r.difficulty,
		CreatedAt:  r.now(),
	})
	if err != nil {
		r.logger.Error("store: record attempt", "session", r.sessionID, "err", err)
	}
}

func (r *Recorder) finish(ctx context.Context, snap practice.Snapshot) {
	if r.sessionID == "" {
		return
	}
	id := r.sessionID
	r.sessionID = ""
	if err := r.store.FinishSession(ctx, id, r.now(), snap.Score, snap.Difficulty); err != nil {
		r.logger.Error("store: finish session", "session", id, "err", err)
	}
}
