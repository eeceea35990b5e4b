package wordlist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/speakup/internal/model"
)

func TestFilterEnglishASCII(t *testing.T) {
	filter := FilterForLang("en")
	if !filter("hello") {
		t.Fatalf("expected hello to pass english filter")
	}
	for _, word := range []string{"résumé", "naïve", "don’t", "co-op"} {
		if filter(word) {
			t.Fatalf("expected %q to be rejected", word)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]model.Difficulty{
		"cat":        model.Easy,
		"apple":      model.Easy,
		"garden":     model.Medium,
		"thumb":      model.Medium,
		"squirrel":   model.Medium,
		"thoroughly": model.Hard,
		"weather":    model.Hard,
		"psychology": model.Hard,
	}
	for word, want := range cases {
		if got := Classify(word); got != want {
			t.Errorf("Classify(%q) = %s, want %s", word, got, want)
		}
	}
}

func TestDefaultListHasEveryBand(t *testing.T) {
	bands := Bands(Default())
	for _, d := range model.Difficulties {
		if len(bands[d]) == 0 {
			t.Fatalf("no %s words in built-in list", d)
		}
	}
}

func TestParseSkipsCommentsAndDuplicates(t *testing.T) {
	words, err := Parse(strings.NewReader("# header\nCat\n\ncat\nco-op\ndog\n"), FilterForLang("en"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if strings.Join(words, ",") != "cat,dog" {
		t.Fatalf("unexpected words: %v", words)
	}
	if _, err := Parse(strings.NewReader("# nothing\n"), nil); err == nil {
		t.Fatal("expected error for empty list")
	}
}

func TestLoadWords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("rhythm\nthistle\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	words, err := LoadWords(path, nil)
	if err != nil || len(words) != 2 {
		t.Fatalf("LoadWords = %v, %v", words, err)
	}
	if _, err := LoadWords(filepath.Join(t.TempDir(), "missing.txt"), nil); err == nil {
		t.Fatal("expected error for missing file")
	}
}
