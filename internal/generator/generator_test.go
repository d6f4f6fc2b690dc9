package generator

import (
	"strings"
	"testing"
	"unicode"
)

func TestGenerateCount(t *testing.T) {
	g := NewSeeded(42)
	words := g.Generate([]string{"one", "two"}, Options{Count: 10})
	if len(words) != 10 {
		t.Fatalf("expected 10 words, got %d", len(words))
	}
}

func TestGenerateAlwaysCapitalizesAtFullProbability(t *testing.T) {
	g := NewSeeded(42)
	words := g.Generate([]string{"word"}, Options{Count: 20, CapsPct: 1})
	for _, w := range words {
		if !unicode.IsUpper([]rune(w)[0]) {
			t.Fatalf("expected capitalized word, got %q", w)
		}
	}
}

func TestGenerateNeverDecoratesAtZeroProbability(t *testing.T) {
	g := NewSeeded(42)
	words := g.Generate([]string{"word"}, Options{Count: 20, CapsPct: 0, PunctPct: 0, PunctSet: []rune{'!'}})
	for _, w := range words {
		if w != "word" {
			t.Fatalf("expected bare word, got %q", w)
		}
	}
}

func TestGenerateAppendsPunctuationAtFullProbability(t *testing.T) {
	g := NewSeeded(42)
	words := g.Generate([]string{"word"}, Options{Count: 20, PunctPct: 1, PunctSet: []rune{'!'}})
	for _, w := range words {
		if !strings.HasSuffix(w, "!") {
			t.Fatalf("expected punctuation suffix, got %q", w)
		}
	}
}

func TestGenerateWeightedPrefersWeakWords(t *testing.T) {
	g := NewSeeded(7)
	words := g.GenerateWeighted(
		[]string{"zzz", "aaa"},
		Options{Count: 200, WeakFactor: 50},
		map[rune]struct{}{'z': {}},
	)
	weak := 0
	for _, w := range words {
		if w == "zzz" {
			weak++
		}
	}
	if weak < 150 {
		t.Fatalf("expected heavy bias toward weak word, got %d/200", weak)
	}
}

func TestSeededGeneratorIsDeterministic(t *testing.T) {
	a := NewSeeded(11).Generate([]string{"x", "y", "z"}, Options{Count: 10})
	b := NewSeeded(11).Generate([]string{"x", "y", "z"}, Options{Count: 10})
	if strings.Join(a, " ") != strings.Join(b, " ") {
		t.Fatalf("same seed produced different output: %v vs %v", a, b)
	}
}
