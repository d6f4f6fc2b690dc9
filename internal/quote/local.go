package quote

import (
	"context"
	"strings"

	"github.com/verte-zerg/qtyper/internal/generator"
	"github.com/verte-zerg/qtyper/internal/model"
)

// LocalProvider composes quotes from a word list instead of the network.
// It backs offline sessions and keeps the session driver testable without
// a remote endpoint.
type LocalProvider struct {
	gen      *generator.Generator
	words    []string
	options  generator.Options
	weakSet  map[rune]struct{}
	weighted bool
}

// NewLocal creates a provider over the loaded word list.
func NewLocal(gen *generator.Generator, words []string, options generator.Options) *LocalProvider {
	return &LocalProvider{gen: gen, words: words, options: options}
}

// FocusWeak biases word selection toward the given characters. An empty
// set restores uniform selection.
func (p *LocalProvider) FocusWeak(weakSet map[rune]struct{}) {
	p.weakSet = weakSet
	p.weighted = len(weakSet) > 0
}

// Fetch composes one quote from the word list.
func (p *LocalProvider) Fetch(_ context.Context) (model.Quote, error) {
	var words []string
	if p.weighted {
		words = p.gen.GenerateWeighted(p.words, p.options, p.weakSet)
	} else {
		words = p.gen.Generate(p.words, p.options)
	}
	content := strings.Join(words, " ")
	return model.Quote{
		Content: content,
		Author:  "wordlist",
		Length:  len([]rune(content)),
	}, nil
}
