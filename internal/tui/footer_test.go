package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/speakup/internal/model"
	"github.com/verte-zerg/speakup/internal/practice"
	"github.com/verte-zerg/speakup/internal/session"
)

type fakeGame struct {
	snap      practice.Snapshot
	setLevels []model.Difficulty
	resets    int
}

func (f *fakeGame) Snapshot() practice.Snapshot { return f.snap }

func (f *fakeGame) NewTarget(context.Context) (practice.Snapshot, error) { return f.snap, nil }

func (f *fakeGame) Listen(context.Context) (practice.Snapshot, error) { return f.snap, nil }

func (f *fakeGame) SetDifficulty(d model.Difficulty) (practice.Snapshot, error) {
	f.setLevels = append(f.setLevels, d)
	f.snap.Difficulty = d
	return f.snap, nil
}

func (f *fakeGame) Reset() practice.Snapshot {
	f.resets++
	f.snap.Score = 0
	return f.snap
}

func readySnapshot() practice.Snapshot {
	return practice.Snapshot{
		Mode:       model.ModeWords,
		State:      practice.TargetReady,
		Difficulty: model.Easy,
		Score:      1,
		Total:      3,
		HasRound:   true,
		Round:      session.Round{Target: "rabbit", Attempts: 2},
	}
}

func TestRenderFooterFormats(t *testing.T) {
	m := NewModel(context.Background(), &fakeGame{snap: readySnapshot()})
	out := m.renderFooter()
	if !containsAll(out, []string{"Score 1/3", "Difficulty easy", "Attempts 2"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestViewShowsRoundDetails(t *testing.T) {
	snap := readySnapshot()
	snap.Round.Example = "The rabbit hops."
	snap.Round.Tip = "Stress the first syllable."
	snap.Round.NeedsHint = true
	snap.Round.Hints = []string{"habit", "ribbit"}
	snap.Round.Last = &session.Attempt{Transcript: "rabid", Score: 0.62, Reference: []string{"R", "AE", "B", "AH", "T"}}
	snap.Notices = []error{&practice.Error{Kind: practice.KindGenerationError, Op: "tip"}}
	m := NewModel(context.Background(), &fakeGame{snap: snap})

	out := m.View()
	for _, want := range []string{"rabbit", "The rabbit hops.", "rabid", "62% match", "R AE B AH T", "habit, ribbit", practice.KindGenerationError.Message()} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
}

func TestViewFinished(t *testing.T) {
	snap := readySnapshot()
	snap.State = practice.Finished
	snap.Score = 3
	m := NewModel(context.Background(), &fakeGame{snap: snap})
	if !strings.Contains(m.View(), "You won! Score 3/3") {
		t.Fatalf("expected winner banner:\n%s", m.View())
	}
}

func TestKeysDriveGame(t *testing.T) {
	game := &fakeGame{snap: readySnapshot()}
	m := NewModel(context.Background(), game)

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	if len(game.setLevels) != 1 || game.setLevels[0] != model.Medium {
		t.Fatalf("difficulty key: %v", game.setLevels)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if cmd == nil || m.busy == "" {
		t.Fatal("space should start listening")
	}
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if game.resets != 0 {
		t.Fatal("keys must be ignored while busy")
	}

	done := game.snap
	done.Score = 2
	_, _ = m.Update(resultMsg{snap: done})
	if m.busy != "" || m.snap.Score != 2 {
		t.Fatalf("result not applied: busy=%q score=%d", m.busy, m.snap.Score)
	}

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if game.resets != 1 {
		t.Fatal("reset key not handled")
	}
}

func TestInvalidTransitionIsNotShown(t *testing.T) {
	m := NewModel(context.Background(), &fakeGame{snap: readySnapshot()})
	_, _ = m.Update(resultMsg{snap: readySnapshot(), err: practice.ErrInvalidTransition})
	if strings.Contains(m.View(), "error:") {
		t.Fatal("invalid transitions should not be rendered")
	}
	_, _ = m.Update(resultMsg{snap: readySnapshot(), err: errors.New("boom")})
	if !strings.Contains(m.View(), "error: boom") {
		t.Fatal("expected error line")
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
