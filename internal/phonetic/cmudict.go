package phonetic

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Dictionary maps words to pronunciations in CMU Pronouncing Dictionary format.
type Dictionary struct {
	entries map[string][][]string
}

// NewDictionary creates an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{entries: make(map[string][][]string)}
}

// Add appends a pronunciation variant for word.
func (d *Dictionary) Add(word string, phonemes []string) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" || len(phonemes) == 0 {
		return
	}
	d.entries[word] = append(d.entries[word], phonemes)
}

// Len returns the number of distinct words.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// ToPhonemes implements Lookup using the first pronunciation.
func (d *Dictionary) ToPhonemes(word string) ([]string, bool) {
	variants := d.entries[strings.ToLower(strings.TrimSpace(word))]
	if len(variants) == 0 {
		return nil, false
	}
	return variants[0], true
}

// Variants returns every pronunciation recorded for word.
func (d *Dictionary) Variants(word string) [][]string {
	return d.entries[strings.ToLower(strings.TrimSpace(word))]
}

// LoadDictionary reads "WORD  P1 P2 ..." lines. Alternate pronunciations are
// written "WORD(2) ...". Lines starting with ";;;" are comments, as is
// anything after "#".
func LoadDictionary(r io.Reader) (*Dictionary, error) {
	d := NewDictionary()
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ";;;") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected word followed by phonemes", lineNum)
		}
		word := fields[0]
		if i := strings.IndexByte(word, '('); i > 0 && strings.HasSuffix(word, ")") {
			word = word[:i]
		}
		d.Add(word, fields[1:])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadDictionaryFile opens path and parses it with LoadDictionary.
func LoadDictionaryFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close for read-only dictionary.
			_ = cerr
		}
	}()
	return LoadDictionary(f)
}
