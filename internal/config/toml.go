// Package config provides configuration helpers and TOML parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	LLM      LLMConfig      `toml:"llm"`
	Speech   SpeechConfig   `toml:"speech"`
	Objects  ObjectsConfig  `toml:"objects"`

	// Unknown lists keys present in the file that no field consumed.
	Unknown []string `toml:"-"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Difficulty    *string  `toml:"difficulty"`
	Rounds        *int     `toml:"rounds"`
	DefaultTarget *string  `toml:"default-target"`
	WordSource    *string  `toml:"word-source"`
	WordList      *string  `toml:"wordlist"`
	FocusWeak     *bool    `toml:"focus-weak"`
	WeakTop       *int     `toml:"weak-top"`
	WeakFactor    *float64 `toml:"weak-factor"`
	WeakWindow    *int     `toml:"weak-window"`
	HintCount     *int     `toml:"hint-count"`
	Dictionary    *string  `toml:"dictionary"`
}

// LLMConfig selects the text generation backend.
type LLMConfig struct {
	Provider *string `toml:"provider"`
	Model    *string `toml:"model"`
	BaseURL  *string `toml:"base-url"`
	Timeout  *string `toml:"timeout"`
}

// SpeechConfig selects the transcription backend and capture parameters.
type SpeechConfig struct {
	Backend       *string  `toml:"backend"`
	Model         *string  `toml:"model"`
	WhisperURL    *string  `toml:"whisper-url"`
	Language      *string  `toml:"language"`
	ListenTimeout *string  `toml:"listen-timeout"`
	SilenceMs     *int     `toml:"silence-ms"`
	Threshold     *float64 `toml:"threshold"`
}

// ObjectsConfig maps the objects game settings.
type ObjectsConfig struct {
	CaptureCmd  *string `toml:"capture-cmd"`
	Rounds      *int    `toml:"rounds"`
	VisionModel *string `toml:"vision-model"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	for _, key := range meta.Undecoded() {
		cfg.Unknown = append(cfg.Unknown, key.String())
	}
	return cfg, nil
}

// Template is written by `speakup config` when no file exists.
const Template = `# speakup configuration. Command-line flags override these values.
# API keys are read from OPENAI_API_KEY, GEMINI_API_KEY or GOOGLE_API_KEY.

[practice]
# difficulty = "easy"        # easy, medium or hard
# rounds = 3                 # passes needed to finish a session
# default-target = "hello"   # used when no word or object is available
# word-source = "llm"        # llm or list
# wordlist = ""              # one word per line; empty uses the built-in list
# focus-weak = false         # favour words you failed before (list source)
# weak-top = 10
# weak-factor = 4.0
# weak-window = 20
# hint-count = 3
# dictionary = ""            # CMU pronouncing dictionary for phoneme scoring

[llm]
# provider = "openai"        # openai, gemini, anthropic, ollama, deepseek, mistral, groq, llamacpp, llamafile
# model = "gpt-4o-mini"
# base-url = ""
# timeout = "20s"

[speech]
# backend = "openai"         # openai or whisper
# model = "whisper-1"
# whisper-url = "http://127.0.0.1:8080"
# language = "en"
# listen-timeout = "5s"
# silence-ms = 800
# threshold = 0.02

[objects]
# capture-cmd = "ffmpeg -loglevel error -f v4l2 -i /dev/video0 -frames:v 1 -f image2 {out}"
# rounds = 3
# vision-model = "gpt-4o-mini"
`

// ErrConfigExists is returned by WriteTemplate when path already exists.
var ErrConfigExists = errors.New("config file already exists")

// WriteTemplate creates path with Template, making parent directories.
func WriteTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return ErrConfigExists
		}
		return err
	}
	if _, err := f.WriteString(Template); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
