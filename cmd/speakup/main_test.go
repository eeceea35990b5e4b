package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/speakup/internal/config"
	"github.com/verte-zerg/speakup/internal/model"
	"github.com/verte-zerg/speakup/internal/phonetic"
	"github.com/verte-zerg/speakup/internal/store"
)

func newTestCmd(t *testing.T, args ...string) (*cobra.Command, *practiceOptions) {
	t.Helper()
	opts := &practiceOptions{}
	cmd := &cobra.Command{Use: "test"}
	bindPracticeFlags(cmd, opts)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	return cmd, opts
}

func ptr[T any](v T) *T { return &v }

func TestApplyConfigRespectsFlags(t *testing.T) {
	cmd, opts := newTestCmd(t, "--rounds", "5")
	fc := config.FileConfig{
		Practice: config.PracticeConfig{Rounds: ptr(7), Difficulty: ptr("hard"), FocusWeak: ptr(true)},
		LLM:      config.LLMConfig{Timeout: ptr("45s"), Provider: ptr("ollama")},
		Speech:   config.SpeechConfig{ListenTimeout: ptr("bogus"), Backend: ptr("whisper")},
		Objects:  config.ObjectsConfig{Rounds: ptr(9)},
	}
	opts.applyConfig(cmd, fc, model.ModeWords)

	if opts.rounds != 5 {
		t.Fatalf("flag should win, got rounds %d", opts.rounds)
	}
	if opts.difficulty != "hard" || !opts.focusWeak || opts.provider != "ollama" || opts.speechBackend != "whisper" {
		t.Fatalf("config not applied: %+v", opts)
	}
	if opts.llmTimeout != 45*time.Second {
		t.Fatalf("llm timeout = %v", opts.llmTimeout)
	}
	if opts.listenTimeout != defaultListenTimeout {
		t.Fatalf("malformed duration should keep default, got %v", opts.listenTimeout)
	}
}

func TestApplyConfigObjectsRounds(t *testing.T) {
	cmd, opts := newTestCmd(t)
	fc := config.FileConfig{
		Practice: config.PracticeConfig{Rounds: ptr(4)},
		Objects:  config.ObjectsConfig{Rounds: ptr(6)},
	}
	opts.applyConfig(cmd, fc, model.ModeObjects)
	if opts.rounds != 6 {
		t.Fatalf("objects rounds should override, got %d", opts.rounds)
	}
}

func TestModelConfigValidation(t *testing.T) {
	_, opts := newTestCmd(t, "--difficulty", "medium", "--rounds", "4", "--default-target", " apple ")
	cfg, err := opts.modelConfig(model.ModeWords)
	if err != nil {
		t.Fatalf("modelConfig: %v", err)
	}
	if cfg.Difficulty != model.Medium || cfg.Rounds != 4 || cfg.DefaultTarget != "apple" || cfg.Mode != model.ModeWords {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}

	bad := [][]string{
		{"--difficulty", "expert"},
		{"--rounds", "0"},
		{"--word-source", "web"},
		{"--speech", "siri"},
		{"--provider", "fakecloud"},
		{"--threshold", "1.5"},
	}
	for _, args := range bad {
		_, opts := newTestCmd(t, args...)
		if _, err := opts.modelConfig(model.ModeWords); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestStatsConfig(t *testing.T) {
	opts := &statsOptions{mode: "objects", since: "2026-02-01", last: 3, curveWindow: 2}
	cfg, err := opts.statsConfig()
	if err != nil {
		t.Fatalf("statsConfig: %v", err)
	}
	if cfg.Mode != model.ModeObjects || cfg.Since == nil || cfg.Last != 3 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	for _, o := range []statsOptions{
		{mode: "letters", curveWindow: 1},
		{since: "yesterday", curveWindow: 1},
		{curveWindow: 0},
	} {
		if _, err := o.statsConfig(); err == nil {
			t.Fatalf("expected error for %+v", o)
		}
	}
}

func TestPrintLookup(t *testing.T) {
	var buf bytes.Buffer
	if err := printLookup(&buf, phonetic.New(), "cat", "cat"); err != nil {
		t.Fatalf("printLookup: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "similarity 1.00") || !strings.Contains(out, "(pass)") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestBuildComparator(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	logger := discardLogger()
	if _, err := buildComparator("", logger); err != nil {
		t.Fatalf("missing default dictionary should be fine: %v", err)
	}
	if _, err := buildComparator(filepath.Join(t.TempDir(), "none.dict"), logger); err == nil {
		t.Fatal("explicit missing dictionary should fail")
	}

	path := filepath.Join(t.TempDir(), "mini.dict")
	if err := os.WriteFile(path, []byte("cat K AE1 T\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cmp, err := buildComparator(path, logger)
	if err != nil {
		t.Fatalf("buildComparator: %v", err)
	}
	if res := cmp.Evaluate("cat", "cat"); !res.Passed {
		t.Fatalf("expected pass: %+v", res)
	}
}

func TestRunDictionaryCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("cat K AE1 T\nkite K AY1 T\n"))
	}))
	defer srv.Close()
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	path := config.DefaultDictionaryPath()

	if err := runDictionaryCmd(context.Background(), srv.URL, path, false); err != nil {
		t.Fatalf("runDictionaryCmd: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(path), "CMUDICT_ATTRIBUTION.txt")); err != nil {
		t.Fatalf("attribution missing: %v", err)
	}
	cmp, err := buildComparator("", discardLogger())
	if err != nil {
		t.Fatalf("buildComparator: %v", err)
	}
	res := cmp.Evaluate("cat", "kite")
	if !res.ByPhonemes || res.Passed {
		t.Fatalf("expected failing phoneme comparison, got %+v", res)
	}
}

func TestLoadWordList(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	words, err := loadWordList(&practiceOptions{language: "en"})
	if err != nil || len(words) == 0 {
		t.Fatalf("built-in list: %d words, %v", len(words), err)
	}

	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("# mine\nApple\nbanana\napple\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	words, err = loadWordList(&practiceOptions{wordList: path, language: "en"})
	if err != nil {
		t.Fatalf("loadWordList: %v", err)
	}
	if len(words) != 2 || words[0] != "apple" {
		t.Fatalf("unexpected words: %v", words)
	}
}

func TestPrintReport(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "speakup.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = st.Close() }()
	ctx := context.Background()

	var empty bytes.Buffer
	if err := printReport(ctx, &empty, st, model.StatsConfig{CurveWindow: 1}, 80); err != nil {
		t.Fatalf("printReport: %v", err)
	}
	if !strings.Contains(empty.String(), "No sessions found.") {
		t.Fatalf("unexpected empty report: %s", empty.String())
	}

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	if err := st.InsertSession(ctx, model.SessionRecord{ID: "s1", Mode: model.ModeWords, StartedAt: start, Total: 3}); err != nil {
		t.Fatal(err)
	}
	if err := st.InsertAttempt(ctx, model.AttemptRecord{SessionID: "s1", Target: "squirrel", Transcript: "squirl", Similarity: 0.7, CreatedAt: start}); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := printReport(ctx, &buf, st, model.StatsConfig{CurveWindow: 1}, 80); err != nil {
		t.Fatalf("printReport: %v", err)
	}
	for _, want := range []string{"Sessions: 1", "Learning Curves", "squirrel"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("report missing %q:\n%s", want, buf.String())
		}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
