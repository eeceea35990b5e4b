// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty is the practice word difficulty level.
type Difficulty int

// Difficulty levels in escalation order.
const (
	Easy Difficulty = iota
	Medium
	Hard
)

// Difficulties lists all levels from easiest to hardest.
var Difficulties = []Difficulty{Easy, Medium, Hard}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return fmt.Sprintf("difficulty(%d)", int(d))
	}
}

// Valid reports whether d is a known level.
func (d Difficulty) Valid() bool {
	return d >= Easy && d <= Hard
}

// Next returns the following level, staying at Hard.
func (d Difficulty) Next() Difficulty {
	if d >= Hard {
		return Hard
	}
	return d + 1
}

// Cycle returns the following level, wrapping from Hard to Easy.
func (d Difficulty) Cycle() Difficulty {
	if d >= Hard || d < Easy {
		return Easy
	}
	return d + 1
}

// ParseDifficulty parses "easy", "medium" or "hard".
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	default:
		return Easy, fmt.Errorf("unknown difficulty %q (want easy, medium or hard)", s)
	}
}

// Mode selects the game variant.
type Mode string

// Game variants.
const (
	ModeWords   Mode = "words"
	ModeObjects Mode = "objects"
)

// ParseMode parses "words" or "objects".
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeWords, ModeObjects:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want words or objects)", s)
	}
}

// Config defines practice settings.
type Config struct {
	Mode          Mode
	Difficulty    Difficulty
	Rounds        int
	DefaultTarget string
	ListenTimeout time.Duration
	HintCount     int
	FocusWeak     bool
	WeakTop       int
	WeakWindow    int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Mode        Mode
	Since       *time.Time
	Last        int
	CurveWindow int
}

// SessionRecord describes a practice session row.
type SessionRecord struct {
	ID         string
	Mode       Mode
	StartedAt  time.Time
	EndedAt    time.Time
	Total      int
	Score      int
	Difficulty Difficulty
}

// AttemptRecord captures one evaluated pronunciation attempt.
type AttemptRecord struct {
	SessionID  string
	Target     string
	Transcript string
	Similarity float64
	Passed     bool
	Difficulty Difficulty
	CreatedAt  time.Time
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID     string
	Mode          Mode
	EndedAt       time.Time
	Score         int
	Total         int
	Attempts      int
	Passed        int
	SimilaritySum float64
}

// WordAggregate aggregates attempts per target word across sessions.
type WordAggregate struct {
	Word          string
	Passed        int
	Failed        int
	SimilaritySum float64
}
