package phonetic_test

import (
	"strings"
	"testing"

	"github.com/verte-zerg/speakup/internal/phonetic"
)

const testDict = `;;; test pronouncing dictionary
A  AH0
CAT  K AE1 T
CATS  K AE1 T S
BAT  B AE1 T
TOMATO  T AH0 M EY1 T OW2
TOMATO(2)  T AH0 M AA1 T OW2
`

func loadTestDict(t *testing.T) *phonetic.Dictionary {
	t.Helper()
	d, err := phonetic.LoadDictionary(strings.NewReader(testDict))
	if err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}
	return d
}

func TestCompare_EmptyCandidate(t *testing.T) {
	c := phonetic.New(loadTestDict(t))
	for _, cand := range []string{"", "   ", "?!"} {
		score, passed := c.Compare("cat", cand)
		if score != 0 || passed {
			t.Errorf("Compare(%q, %q) = (%v, %v), want (0, false)", "cat", cand, score, passed)
		}
	}
}

func TestCompare_Identical(t *testing.T) {
	for _, c := range []*phonetic.Comparator{phonetic.New(), phonetic.New(loadTestDict(t))} {
		score, passed := c.Compare("cat", "cat")
		if score != 1.0 || !passed {
			t.Errorf("Compare(cat, cat) = (%v, %v), want (1, true)", score, passed)
		}
	}
}

func TestCompare_PhonemeDistance(t *testing.T) {
	c := phonetic.New(loadTestDict(t))
	r := c.Evaluate("cat", "bat")
	if !r.ByPhonemes {
		t.Fatal("expected phoneme comparison for known words")
	}
	if r.Passed {
		t.Errorf("cat vs bat passed with score %v", r.Score)
	}
	if want := 1 - 1.0/3.0; r.Score < want-1e-9 || r.Score > want+1e-9 {
		t.Errorf("score = %v, want %v", r.Score, want)
	}
}

func TestCompare_PassThresholdIsExclusive(t *testing.T) {
	// Five phonemes with one substitution scores exactly 0.8.
	d := phonetic.NewDictionary()
	d.Add("alpha", []string{"A", "B", "C", "D", "E"})
	d.Add("beta", []string{"A", "B", "C", "D", "F"})
	score, passed := phonetic.New(d).Compare("alpha", "beta")
	if score < 0.8-1e-9 || score > 0.8+1e-9 {
		t.Fatalf("score = %v, want 0.8", score)
	}
	if passed {
		t.Error("score equal to the threshold must not pass")
	}
}

func TestCompare_IgnoresStressAndCase(t *testing.T) {
	d := phonetic.NewDictionary()
	d.Add("record", []string{"R", "EH1", "K", "ER0", "D"})
	d.Add("rekord", []string{"R", "EH0", "K", "ER1", "D"})
	score, passed := phonetic.New(d).Compare("Record", "REKORD.")
	if score != 1 || !passed {
		t.Errorf("Compare = (%v, %v), want (1, true)", score, passed)
	}
}

func TestCompare_BestTokenOfPhrase(t *testing.T) {
	c := phonetic.New(loadTestDict(t))
	score, passed := c.Compare("cat", "A cat.")
	if score != 1 || !passed {
		t.Errorf("Compare(cat, %q) = (%v, %v), want (1, true)", "A cat.", score, passed)
	}
}

func TestCompare_FallsBackToSpelling(t *testing.T) {
	c := phonetic.New(loadTestDict(t))
	r := c.Evaluate("cat", "dog")
	if r.ByPhonemes {
		t.Fatal("dog is not in the dictionary; expected spelling comparison")
	}
	if r.Passed {
		t.Errorf("cat vs dog passed with score %v", r.Score)
	}
}

func TestCompare_SpellingRejectsNearMisses(t *testing.T) {
	c := phonetic.New()
	pairs := [][2]string{
		{"apple", "able"},
		{"cat", "kite"},
		{"cat", "cut"},
		{"ship", "shop"},
		{"bed", "bad"},
		{"hello", "hole"},
	}
	for _, p := range pairs {
		r := c.Evaluate(p[0], p[1])
		if r.ByPhonemes {
			t.Fatalf("%s/%s: no lookup configured, expected spelling comparison", p[0], p[1])
		}
		if r.Passed {
			t.Errorf("%s vs %s passed with score %v", p[0], p[1], r.Score)
		}
	}
}

func TestCompare_SpellingIgnoresCaseAndPunctuation(t *testing.T) {
	score, passed := phonetic.New().Compare("Apple", "apple!")
	if score != 1 || !passed {
		t.Errorf("Compare = (%v, %v), want (1, true)", score, passed)
	}
}

func TestCompare_UnknownWordUsesSpelling(t *testing.T) {
	c := phonetic.New(loadTestDict(t))
	r := c.Evaluate("cat", "cab")
	if r.ByPhonemes || r.Passed {
		t.Errorf("cat vs cab = %+v, want failing spelling comparison", r)
	}
	if r := c.Evaluate("cats", "cat"); strings.Join(r.Reference, " ") != "K AE1 T S" {
		t.Errorf("reference phonemes = %v, want dictionary entry", r.Reference)
	}
}

func TestCompare_ListOfGuessesFails(t *testing.T) {
	for _, c := range []*phonetic.Comparator{phonetic.New(), phonetic.New(loadTestDict(t))} {
		if score, passed := c.Compare("cat", "no not cat dog bird fish"); passed {
			t.Errorf("list containing the target passed with score %v", score)
		}
	}
}

func TestCompare_ShortAnswerAfterFiller(t *testing.T) {
	c := phonetic.New()
	for _, cand := range []string{"um the cat", "cat please", "it's a cat"} {
		if score, passed := c.Compare("cat", cand); !passed {
			t.Errorf("Compare(cat, %q) = %v, want pass", cand, score)
		}
	}
}

func TestMetaphoneCode(t *testing.T) {
	m := phonetic.Metaphone{}
	if m.Code("") != "" {
		t.Fatal("expected empty code for empty phrase")
	}
	if m.Code("knight") != m.Code("night") {
		t.Errorf("knight %q and night %q should share a code", m.Code("knight"), m.Code("night"))
	}
}

func TestLoadDictionary_Variants(t *testing.T) {
	d := loadTestDict(t)
	if d.Len() != 5 {
		t.Fatalf("Len = %d, want 5", d.Len())
	}
	if got := len(d.Variants("tomato")); got != 2 {
		t.Fatalf("tomato variants = %d, want 2", got)
	}
	p, ok := d.ToPhonemes("Tomato")
	if !ok || strings.Join(p, " ") != "T AH0 M EY1 T OW2" {
		t.Errorf("ToPhonemes(Tomato) = %v, %v", p, ok)
	}
}

func TestLoadDictionary_TrailingComments(t *testing.T) {
	d, err := phonetic.LoadDictionary(strings.NewReader("d'artagnan D AH0 T AE1 NG Y AH0 N # place, france\n"))
	if err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}
	p, ok := d.ToPhonemes("D'Artagnan")
	if !ok || len(p) != 8 {
		t.Errorf("ToPhonemes = %v, %v; want 8 phonemes", p, ok)
	}
}

func TestLoadDictionary_Malformed(t *testing.T) {
	if _, err := phonetic.LoadDictionary(strings.NewReader("CAT\n")); err == nil {
		t.Fatal("expected error for line without phonemes")
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  Hello, World! ": "hello world",
		"don't":            "don't",
		"CUP.":             "cup",
	}
	for in, want := range cases {
		if got := phonetic.Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
