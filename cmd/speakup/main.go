// Package main provides the CLI entrypoint for speakup.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/speakup/internal/audio"
	"github.com/verte-zerg/speakup/internal/cmudict"
	"github.com/verte-zerg/speakup/internal/config"
	"github.com/verte-zerg/speakup/internal/detect"
	"github.com/verte-zerg/speakup/internal/generator"
	"github.com/verte-zerg/speakup/internal/llm"
	"github.com/verte-zerg/speakup/internal/llm/anyllm"
	"github.com/verte-zerg/speakup/internal/llm/openai"
	"github.com/verte-zerg/speakup/internal/model"
	"github.com/verte-zerg/speakup/internal/phonetic"
	"github.com/verte-zerg/speakup/internal/practice"
	"github.com/verte-zerg/speakup/internal/speech"
	"github.com/verte-zerg/speakup/internal/stats"
	"github.com/verte-zerg/speakup/internal/statsui"
	"github.com/verte-zerg/speakup/internal/store"
	"github.com/verte-zerg/speakup/internal/tui"
	"github.com/verte-zerg/speakup/internal/wordlist"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
)

const (
	defaultDifficulty    = "easy"
	defaultRounds        = 3
	defaultWordSource    = "llm"
	defaultWeakTop       = 10
	defaultWeakWindow    = 20
	defaultHintCount     = 3
	defaultProvider      = "openai"
	defaultLLMModel      = "gpt-4o-mini"
	defaultLLMTimeout    = 20 * time.Second
	defaultSpeechBackend = "openai"
	defaultWhisperURL    = "http://127.0.0.1:8080"
	defaultLanguage      = "en"
	defaultListenTimeout = 5 * time.Second
	defaultSilenceMs     = 800
	defaultCurveWindow   = 10
	captureTimeout       = 10 * time.Second
)

// practiceOptions holds the flags shared by the words and objects games.
type practiceOptions struct {
	difficulty    string
	rounds        int
	defaultTarget string
	wordSource    string
	wordList      string
	focusWeak     bool
	weakTop       int
	weakFactor    float64
	weakWindow    int
	hintCount     int
	dictionary    string

	provider   string
	llmModel   string
	baseURL    string
	llmTimeout time.Duration

	speechBackend string
	speechModel   string
	whisperURL    string
	language      string
	listenTimeout time.Duration
	silenceMs     int
	threshold     float64

	captureCmd  string
	visionModel string

	debug bool
}

type statsOptions struct {
	mode        string
	since       string
	last        int
	curveWindow int
	plain       bool
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &practiceOptions{}
	rootCmd := &cobra.Command{
		Use:           "speakup",
		Short:         "Pronunciation practice in the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPractice(cmd, opts, model.ModeWords)
		},
	}
	bindPracticeFlags(rootCmd, opts)

	rootCmd.AddCommand(newObjectsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLookupCmd())
	rootCmd.AddCommand(newDictionaryCmd())
	return rootCmd
}

func newObjectsCmd() *cobra.Command {
	opts := &practiceOptions{}
	cmd := &cobra.Command{
		Use:   "objects",
		Short: "Name the objects the camera sees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPractice(cmd, opts, model.ModeObjects)
		},
	}
	bindPracticeFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.captureCmd, "capture-cmd", detect.DefaultCaptureCommand, "command writing one camera frame to {out}")
	cmd.Flags().StringVar(&opts.visionModel, "vision-model", defaultLLMModel, "OpenAI model used to name objects")
	return cmd
}

func bindPracticeFlags(cmd *cobra.Command, opts *practiceOptions) {
	f := cmd.Flags()
	f.StringVar(&opts.difficulty, "difficulty", defaultDifficulty, "starting difficulty (easy, medium, hard)")
	f.IntVar(&opts.rounds, "rounds", defaultRounds, "passes needed to finish a session")
	f.StringVar(&opts.defaultTarget, "default-target", "", "target used when nothing else is available")
	f.StringVar(&opts.wordSource, "word-source", defaultWordSource, "where words come from (llm, list)")
	f.StringVar(&opts.wordList, "wordlist", "", "word list file for --word-source list")
	f.BoolVar(&opts.focusWeak, "focus-weak", false, "favour previously failed words (list source)")
	f.IntVar(&opts.weakTop, "weak-top", defaultWeakTop, "number of weak words to focus on")
	f.Float64Var(&opts.weakFactor, "weak-factor", generator.DefaultWeakFactor, "weight factor for weak words")
	f.IntVar(&opts.weakWindow, "weak-window", defaultWeakWindow, "number of recent sessions to compute weak words")
	f.IntVar(&opts.hintCount, "hint-count", defaultHintCount, "similar-sounding words offered after two misses")
	f.StringVar(&opts.dictionary, "dictionary", "", "CMU pronouncing dictionary file")

	f.StringVar(&opts.provider, "provider", defaultProvider, "text generation provider ("+strings.Join(anyllm.Providers, ", ")+")")
	f.StringVar(&opts.llmModel, "model", defaultLLMModel, "text generation model")
	f.StringVar(&opts.baseURL, "base-url", "", "override the provider endpoint")
	f.DurationVar(&opts.llmTimeout, "llm-timeout", defaultLLMTimeout, "text generation timeout")

	f.StringVar(&opts.speechBackend, "speech", defaultSpeechBackend, "speech recognition backend (openai, whisper)")
	f.StringVar(&opts.speechModel, "speech-model", speech.DefaultOpenAIModel, "OpenAI transcription model")
	f.StringVar(&opts.whisperURL, "whisper-url", defaultWhisperURL, "whisper.cpp server address")
	f.StringVar(&opts.language, "language", defaultLanguage, "spoken language")
	f.DurationVar(&opts.listenTimeout, "listen-timeout", defaultListenTimeout, "longest recording per attempt")
	f.IntVar(&opts.silenceMs, "silence-ms", defaultSilenceMs, "trailing silence that ends a recording")
	f.Float64Var(&opts.threshold, "threshold", audio.DefaultThreshold, "voice level (0-1) counted as speech")

	f.BoolVar(&opts.debug, "debug", false, "write debug records to the log file")
}

// applyConfig fills every flag the user did not set from the config file.
func (o *practiceOptions) applyConfig(cmd *cobra.Command, fc config.FileConfig, mode model.Mode) {
	p := fc.Practice
	applyStringConfig(cmd, "difficulty", &o.difficulty, p.Difficulty)
	applyIntConfig(cmd, "rounds", &o.rounds, p.Rounds)
	applyStringConfig(cmd, "default-target", &o.defaultTarget, p.DefaultTarget)
	applyStringConfig(cmd, "word-source", &o.wordSource, p.WordSource)
	applyStringConfig(cmd, "wordlist", &o.wordList, p.WordList)
	applyBoolConfig(cmd, "focus-weak", &o.focusWeak, p.FocusWeak)
	applyIntConfig(cmd, "weak-top", &o.weakTop, p.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &o.weakFactor, p.WeakFactor)
	applyIntConfig(cmd, "weak-window", &o.weakWindow, p.WeakWindow)
	applyIntConfig(cmd, "hint-count", &o.hintCount, p.HintCount)
	applyStringConfig(cmd, "dictionary", &o.dictionary, p.Dictionary)

	applyStringConfig(cmd, "provider", &o.provider, fc.LLM.Provider)
	applyStringConfig(cmd, "model", &o.llmModel, fc.LLM.Model)
	applyStringConfig(cmd, "base-url", &o.baseURL, fc.LLM.BaseURL)
	applyDurationConfig(cmd, "llm-timeout", &o.llmTimeout, fc.LLM.Timeout)

	s := fc.Speech
	applyStringConfig(cmd, "speech", &o.speechBackend, s.Backend)
	applyStringConfig(cmd, "speech-model", &o.speechModel, s.Model)
	applyStringConfig(cmd, "whisper-url", &o.whisperURL, s.WhisperURL)
	applyStringConfig(cmd, "language", &o.language, s.Language)
	applyDurationConfig(cmd, "listen-timeout", &o.listenTimeout, s.ListenTimeout)
	applyIntConfig(cmd, "silence-ms", &o.silenceMs, s.SilenceMs)
	applyFloatConfig(cmd, "threshold", &o.threshold, s.Threshold)

	if mode == model.ModeObjects {
		applyIntConfig(cmd, "rounds", &o.rounds, fc.Objects.Rounds)
		applyStringConfig(cmd, "capture-cmd", &o.captureCmd, fc.Objects.CaptureCmd)
		applyStringConfig(cmd, "vision-model", &o.visionModel, fc.Objects.VisionModel)
	}
}

// modelConfig validates the options and converts them for the controller.
func (o *practiceOptions) modelConfig(mode model.Mode) (model.Config, error) {
	difficulty, err := model.ParseDifficulty(o.difficulty)
	if err != nil {
		return model.Config{}, fmt.Errorf("--difficulty: %w", err)
	}
	switch {
	case o.rounds <= 0:
		return model.Config{}, fmt.Errorf("--rounds must be > 0")
	case o.hintCount <= 0:
		return model.Config{}, fmt.Errorf("--hint-count must be > 0")
	case o.weakTop < 0:
		return model.Config{}, fmt.Errorf("--weak-top must be >= 0")
	case o.weakFactor < 0:
		return model.Config{}, fmt.Errorf("--weak-factor must be >= 0")
	case o.weakWindow < 0:
		return model.Config{}, fmt.Errorf("--weak-window must be >= 0")
	case o.listenTimeout <= 0:
		return model.Config{}, fmt.Errorf("--listen-timeout must be > 0")
	case o.silenceMs <= 0:
		return model.Config{}, fmt.Errorf("--silence-ms must be > 0")
	case o.threshold < 0 || o.threshold > 1:
		return model.Config{}, fmt.Errorf("--threshold must be between 0 and 1")
	}
	if o.wordSource != "llm" && o.wordSource != "list" {
		return model.Config{}, fmt.Errorf("--word-source must be llm or list, got %q", o.wordSource)
	}
	if o.speechBackend != "openai" && o.speechBackend != "whisper" {
		return model.Config{}, fmt.Errorf("--speech must be openai or whisper, got %q", o.speechBackend)
	}
	if !slices.Contains(anyllm.Providers, strings.ToLower(o.provider)) {
		return model.Config{}, fmt.Errorf("--provider must be one of %s", strings.Join(anyllm.Providers, ", "))
	}
	return model.Config{
		Mode:          mode,
		Difficulty:    difficulty,
		Rounds:        o.rounds,
		DefaultTarget: strings.TrimSpace(o.defaultTarget),
		ListenTimeout: o.listenTimeout,
		HintCount:     o.hintCount,
		FocusWeak:     o.focusWeak,
		WeakTop:       o.weakTop,
		WeakWindow:    o.weakWindow,
	}, nil
}

func runPractice(cmd *cobra.Command, opts *practiceOptions, mode model.Mode) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	opts.applyConfig(cmd, fileCfg, mode)
	cfg, err := opts.modelConfig(mode)
	if err != nil {
		return err
	}

	logger, closeLog, err := openLogger(config.DefaultLogPath(), opts.debug)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer closeLog()
	for _, key := range fileCfg.Unknown {
		logger.Warn("config: unknown key", "key", key)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	controllerOpts := []practice.Option{practice.WithLogger(logger)}

	cmp, err := buildComparator(opts.dictionary, logger)
	if err != nil {
		return err
	}
	controllerOpts = append(controllerOpts, practice.WithComparator(cmp))

	completer, err := buildCompleter(opts)
	if err != nil {
		if mode == model.ModeWords && opts.wordSource == "llm" {
			return fmt.Errorf("failed to set up text generation: %w", err)
		}
		logger.Warn("llm: text generation disabled", "err", err)
	} else {
		controllerOpts = append(controllerOpts, practice.WithGenerator(completer))
	}

	switch mode {
	case model.ModeWords:
		words, err := buildWordSource(ctx, opts, completer, st, logger)
		if err != nil {
			return err
		}
		controllerOpts = append(controllerOpts, practice.WithWordSource(words))
	case model.ModeObjects:
		camera, detector, err := buildCamera(opts, logger)
		if err != nil {
			return err
		}
		controllerOpts = append(controllerOpts, practice.WithCamera(camera, detector))
	}

	recorder, err := audio.New(
		audio.WithThreshold(opts.threshold),
		audio.WithSilence(time.Duration(opts.silenceMs)*time.Millisecond),
		audio.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to open microphone: %w", err)
	}
	defer func() {
		if cerr := recorder.Close(); cerr != nil {
			logger.Warn("audio: close", "err", cerr)
		}
	}()
	transcriber, err := buildTranscriber(opts)
	if err != nil {
		return err
	}
	controllerOpts = append(controllerOpts, practice.WithSpeech(speech.NewInput(recorder, transcriber, logger)))

	history := store.NewRecorder(st, mode, logger)
	defer history.Close()
	controllerOpts = append(controllerOpts, practice.WithObserver(history))

	ctrl, err := practice.New(cfg, controllerOpts...)
	if err != nil {
		return err
	}
	logger.Info("practice: start", "mode", mode, "difficulty", cfg.Difficulty, "rounds", cfg.Rounds,
		"word_source", opts.wordSource, "speech", opts.speechBackend)

	program := tea.NewProgram(tui.NewModel(ctx, ctrl), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// buildComparator prefers a pronouncing dictionary and falls back to
// spelling for unknown words. A missing default dictionary is fine.
func buildComparator(path string, logger *slog.Logger) (*phonetic.Comparator, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = config.DefaultDictionaryPath()
	}
	dict, err := phonetic.LoadDictionaryFile(path)
	switch {
	case err == nil:
		logger.Info("phonetic: dictionary loaded", "path", path, "words", dict.Len())
		return phonetic.New(dict), nil
	case !explicit && errors.Is(err, os.ErrNotExist):
		logger.Warn("phonetic: no dictionary, scoring by spelling (run: speakup dictionary)", "path", path)
		return phonetic.New(), nil
	default:
		return nil, fmt.Errorf("failed to load dictionary: %w", err)
	}
}

// buildCompleter returns the text generation backend selected by --provider.
func buildCompleter(opts *practiceOptions) (llm.Completer, error) {
	name := strings.ToLower(opts.provider)
	if name == "openai" {
		key := openAIKey(opts.baseURL)
		if key == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
		return openai.New(key, opts.llmModel,
			openai.WithBaseURL(opts.baseURL),
			openai.WithTimeout(opts.llmTimeout),
		)
	}
	var libOpts []anyllmlib.Option
	if opts.baseURL != "" {
		libOpts = append(libOpts, anyllmlib.WithBaseURL(opts.baseURL))
	}
	p, err := anyllm.New(name, opts.llmModel, libOpts...)
	if err != nil {
		return nil, err
	}
	return timeoutCompleter{next: p, timeout: opts.llmTimeout}, nil
}

// timeoutCompleter bounds each call for backends without a client timeout.
type timeoutCompleter struct {
	next    llm.Completer
	timeout time.Duration
}

func (t timeoutCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	return t.next.Complete(ctx, prompt)
}

func buildWordSource(ctx context.Context, opts *practiceOptions, completer llm.Completer, st *store.Store, logger *slog.Logger) (practice.WordSource, error) {
	if opts.wordSource == "llm" {
		return llm.NewWordSource(completer), nil
	}
	words, err := loadWordList(opts)
	if err != nil {
		return nil, err
	}
	var genOpts []generator.Option
	if opts.focusWeak {
		aggs, err := st.GetWeakWords(ctx, opts.weakWindow, model.ModeWords)
		if err != nil {
			logger.Warn("store: weak words unavailable", "err", err)
		}
		weak := stats.SelectWeakWords(aggs, opts.weakTop)
		if len(weak) == 0 {
			logErrln("no stats available for weak-word focus yet; using the plain word list")
		}
		genOpts = append(genOpts, generator.WithWeakWords(weak, opts.weakFactor))
	}
	return generator.New(words, genOpts...)
}

func loadWordList(opts *practiceOptions) ([]string, error) {
	path := strings.TrimSpace(opts.wordList)
	if path == "" {
		path = config.DefaultWordListPath()
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return wordlist.Default(), nil
		}
	}
	words, err := wordlist.LoadWords(path, wordlist.FilterForLang(opts.language))
	if err != nil {
		return nil, fmt.Errorf("failed to load word list: %w", err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list %s has no usable words", path)
	}
	return words, nil
}

func buildCamera(opts *practiceOptions, logger *slog.Logger) (*detect.Camera, *detect.Vision, error) {
	camera, err := detect.OpenCamera(opts.captureCmd, captureTimeout, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open camera: %w", err)
	}
	key := openAIKey(opts.baseURL)
	if key == "" {
		return nil, nil, fmt.Errorf("objects mode needs OPENAI_API_KEY for object recognition")
	}
	describer, err := openai.New(key, opts.visionModel,
		openai.WithBaseURL(opts.baseURL),
		openai.WithTimeout(opts.llmTimeout),
	)
	if err != nil {
		return nil, nil, err
	}
	return camera, detect.NewVision(describer), nil
}

func buildTranscriber(opts *practiceOptions) (speech.Transcriber, error) {
	if opts.speechBackend == "whisper" {
		return speech.NewWhisper(opts.whisperURL, speech.WithLanguage(opts.language))
	}
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set (or use --speech whisper)")
	}
	reqOpts := openai.ClientOptions(key, openai.WithTimeout(opts.llmTimeout))
	return speech.NewOpenAI(opts.speechModel, opts.language, reqOpts...), nil
}

// openAIKey reads OPENAI_API_KEY. Local OpenAI-compatible servers at baseURL
// get a placeholder key.
func openAIKey(baseURL string) string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	if baseURL != "" {
		return "local"
	}
	return ""
}

// openLogger writes text records to path; the TUI owns the terminal.
func openLogger(path string, debug bool) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of the log file.
			_ = cerr
		}
	}, nil
}

func newStatsCmd() *cobra.Command {
	opts := &statsOptions{}
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show practice history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.mode, "mode", "", "game filter (words, objects)")
	cmd.Flags().StringVar(&opts.since, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&opts.last, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&opts.curveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "print a text report instead of the interactive view")
	return cmd
}

func (o *statsOptions) statsConfig() (model.StatsConfig, error) {
	cfg := model.StatsConfig{Last: o.last, CurveWindow: o.curveWindow}
	if o.mode != "" {
		mode, err := model.ParseMode(o.mode)
		if err != nil {
			return cfg, fmt.Errorf("invalid --mode value: %w", err)
		}
		cfg.Mode = mode
	}
	if o.since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", o.since, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	if cfg.Last < 0 {
		return cfg, fmt.Errorf("--last must be >= 0")
	}
	if cfg.CurveWindow < 1 {
		return cfg, fmt.Errorf("--curve-window must be >= 1")
	}
	return cfg, nil
}

func runStats(cmd *cobra.Command, opts *statsOptions) error {
	cfg, err := opts.statsConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if opts.plain {
		width := 80
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}
		return printReport(cmd.Context(), cmd.OutOrStdout(), st, cfg, width)
	}

	program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func printReport(ctx context.Context, w io.Writer, src stats.Source, cfg model.StatsConfig, width int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	report, err := stats.BuildReport(ctx, src, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if err := stats.RenderSummary(w, report.Sessions); err != nil {
		return err
	}
	if err := stats.RenderCurves(w, report.Sessions, cfg.CurveWindow, max(10, width-30)); err != nil {
		return err
	}
	if len(report.Sessions) == 0 {
		return nil
	}
	return stats.RenderWordTable(w, report.WordAggsWindow)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := config.WriteTemplate(path); err != nil && !errors.Is(err, config.ErrConfigExists) {
		return fmt.Errorf("failed to write config: %w", err)
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLookupCmd() *cobra.Command {
	var dictionary string
	cmd := &cobra.Command{
		Use:   "lookup WORD [SPOKEN]",
		Short: "Print phonemes for a word and score a spoken form against it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmp, err := buildComparator(dictionary, slog.New(slog.NewTextHandler(io.Discard, nil)))
			if err != nil {
				return err
			}
			spoken := args[0]
			if len(args) == 2 {
				spoken = args[1]
			}
			return printLookup(cmd.OutOrStdout(), cmp, args[0], spoken)
		},
	}
	cmd.Flags().StringVar(&dictionary, "dictionary", "", "CMU pronouncing dictionary file")
	return cmd
}

func newDictionaryCmd() *cobra.Command {
	var (
		url   string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "dictionary",
		Short: "Download the CMU pronouncing dictionary",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runDictionaryCmd(context.Background(), url, config.DefaultDictionaryPath(), force)
		},
	}
	cmd.Flags().StringVar(&url, "url", cmudict.DefaultURL, "dictionary download URL")
	cmd.Flags().BoolVar(&force, "force", false, "download again even if the dictionary exists")
	return cmd
}

func runDictionaryCmd(ctx context.Context, url, path string, force bool) error {
	logErrln("Fetching pronouncing dictionary...")
	dl, err := cmudict.Fetch(ctx, url, path, force)
	if err != nil {
		return fmt.Errorf("failed to download dictionary: %w", err)
	}
	if dl.Cached {
		logErrf("Using existing dictionary %s (%d words, use --force to refresh)\n", dl.Path, dl.Words)
		return nil
	}
	logErrf("Wrote %s (%d words)\n", dl.Path, dl.Words)
	if err := cmudict.WriteAttribution(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to write attribution: %w", err)
	}
	return nil
}

func printLookup(w io.Writer, cmp practice.Comparator, word, spoken string) error {
	res := cmp.Evaluate(word, spoken)
	source := "spelling"
	if res.ByPhonemes {
		source = "phonemes"
	}
	verdict := "fail"
	if res.Passed {
		verdict = "pass"
	}
	lines := []string{
		fmt.Sprintf("%s: %s", word, orDash(res.Reference)),
		fmt.Sprintf("%s: %s", spoken, orDash(res.Candidate)),
		fmt.Sprintf("similarity %.2f by %s (%s)", res.Score, source, verdict),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func orDash(phonemes []string) string {
	if len(phonemes) == 0 {
		return "-"
	}
	return strings.Join(phonemes, " ")
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || cmd.Flags().Lookup(name) == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || cmd.Flags().Lookup(name) == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil || cmd.Flags().Lookup(name) == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil || cmd.Flags().Lookup(name) == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

// applyDurationConfig parses values such as "20s"; a malformed value is
// reported and the flag default kept.
func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *string) {
	if value == nil || cmd.Flags().Lookup(name) == nil || cmd.Flags().Changed(name) {
		return
	}
	d, err := time.ParseDuration(strings.TrimSpace(*value))
	if err != nil {
		logErrf("ignoring config %s = %q: %v\n", name, *value, err)
		return
	}
	*target = d
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
