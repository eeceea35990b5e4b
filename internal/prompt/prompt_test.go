package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/verte-zerg/speakup/internal/model"
)

func TestBuildIntents(t *testing.T) {
	cases := []struct {
		intent Intent
		params Params
		want   []string
	}{
		{GenerateWord, Params{Difficulty: model.Medium}, []string{"single medium English word", "Return only the word"}},
		{PronunciationTip, Params{Word: "squirrel"}, []string{"'squirrel'", "under 50 words"}},
		{UsageExample, Params{Word: "squirrel"}, []string{"using the word 'squirrel'"}},
		{SimilarWord, Params{Word: "squirrel"}, []string{"similar pronunciation pattern to 'squirrel'"}},
		{PhoneticHints, Params{Word: "cup", Count: 3}, []string{"Generate 3 words phonetically similar to cup"}},
		{DetectObject, Params{}, []string{"most prominent physical object"}},
	}
	for _, tc := range cases {
		got, err := Build(tc.intent, tc.params)
		if err != nil {
			t.Fatalf("Build(%s): %v", tc.intent, err)
		}
		for _, want := range tc.want {
			if !strings.Contains(got, want) {
				t.Errorf("Build(%s) = %q, missing %q", tc.intent, got, want)
			}
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	a, _ := Build(PronunciationTip, Params{Word: "cat"})
	b, _ := Build(PronunciationTip, Params{Word: "cat"})
	if a != b {
		t.Fatalf("expected identical prompts")
	}
}

func TestBuildUnknownIntent(t *testing.T) {
	_, err := Build(Intent("summarize"), Params{Word: "cat"})
	if !errors.Is(err, ErrUnknownIntent) {
		t.Fatalf("expected ErrUnknownIntent, got %v", err)
	}
}

func TestBuildInvalidParams(t *testing.T) {
	if _, err := Build(UsageExample, Params{Word: "  "}); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams for blank word, got %v", err)
	}
	if _, err := Build(PhoneticHints, Params{Word: "cup"}); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams for zero count, got %v", err)
	}
	if _, err := Build(GenerateWord, Params{Difficulty: model.Difficulty(7)}); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams for bad difficulty, got %v", err)
	}
}

func TestCleanWord(t *testing.T) {
	if got := CleanWord("  Butterfly.\n"); got != "butterfly" {
		t.Fatalf("CleanWord = %q", got)
	}
	if got := CleanWord("**"); got != "" {
		t.Fatalf("CleanWord = %q, want empty", got)
	}
}

func TestCleanLabel(t *testing.T) {
	if got := CleanLabel("Coffee Mug!"); got != "coffee mug" {
		t.Fatalf("CleanLabel = %q", got)
	}
	if got := CleanLabel("A coffee mug."); got != "coffee mug" {
		t.Fatalf("CleanLabel = %q", got)
	}
}

func TestParseList(t *testing.T) {
	in := "1. Cap\n2) cub\n- \"cut\"\n\n* pup"
	got := ParseList(in, 3)
	want := []string{"Cap", "cub", "cut"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("ParseList = %v, want %v", got, want)
	}
	if got := ParseList("cap, cub, cut", 0); len(got) != 3 {
		t.Fatalf("ParseList comma = %v", got)
	}
}
