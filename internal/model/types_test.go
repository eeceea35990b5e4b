package model

import "testing"

func TestParseDifficulty(t *testing.T) {
	for in, want := range map[string]Difficulty{"easy": Easy, " Medium ": Medium, "HARD": Hard} {
		got, err := ParseDifficulty(in)
		if err != nil || got != want {
			t.Fatalf("ParseDifficulty(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseDifficulty("expert"); err == nil {
		t.Fatal("expected error")
	}
}

func TestDifficultyStepping(t *testing.T) {
	if Easy.Next() != Medium || Hard.Next() != Hard {
		t.Fatal("Next should escalate and saturate")
	}
	if Easy.Cycle() != Medium || Hard.Cycle() != Easy {
		t.Fatal("Cycle should wrap")
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("Objects"); err != nil || m != ModeObjects {
		t.Fatalf("ParseMode = %v, %v", m, err)
	}
	if _, err := ParseMode("letters"); err == nil {
		t.Fatal("expected error")
	}
}
