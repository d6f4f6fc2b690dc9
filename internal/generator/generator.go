// Package generator builds typing text sequences.
package generator

import (
	"math/rand"
	"time"
	"unicode"
)

// Options controls word composition.
type Options struct {
	Count      int
	CapsPct    float64
	PunctPct   float64
	PunctSet   []rune
	WeakFactor float64
}

// Generator produces randomized typing text.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeeded returns a Generator with a fixed seed, for deterministic tests.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate selects words uniformly and applies caps/punctuation rules.
func (g *Generator) Generate(words []string, opts Options) []string {
	result := make([]string, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		result = append(result, g.decorate(words[g.rnd.Intn(len(words))], opts))
	}
	return result
}

// GenerateWeighted selects words with a bias toward weak characters: each
// word weighs 1 plus WeakFactor per weak character it contains.
func (g *Generator) GenerateWeighted(words []string, opts Options, weakSet map[rune]struct{}) []string {
	weights := make([]float64, len(words))
	total := 0.0
	for i, word := range words {
		weakCount := 0
		for _, r := range word {
			if _, ok := weakSet[r]; ok {
				weakCount++
			}
		}
		w := 1.0 + float64(weakCount)*opts.WeakFactor
		weights[i] = w
		total += w
	}

	result := make([]string, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		r := g.rnd.Float64() * total
		acc := 0.0
		idx := 0
		for j, w := range weights {
			acc += w
			if r <= acc {
				idx = j
				break
			}
		}
		result = append(result, g.decorate(words[idx], opts))
	}
	return result
}

func (g *Generator) decorate(word string, opts Options) string {
	word = applyCaps(g.rnd, word, opts.CapsPct)
	return applyPunct(g.rnd, word, opts.PunctPct, opts.PunctSet)
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 {
		return word
	}
	if rnd.Float64() > capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 {
		return word
	}
	if rnd.Float64() > punctPct {
		return word
	}
	punct := punctSet[rnd.Intn(len(punctSet))]
	return word + string(punct)
}
