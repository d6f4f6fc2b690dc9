// Package quote supplies the texts a session types.
package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/verte-zerg/qtyper/internal/model"
)

// DefaultAPIURL is the quotable-style endpoint used when the config names
// no other source.
const DefaultAPIURL = "https://api.quotable.io/random"

const defaultTimeout = 10 * time.Second

// Provider fetches one quote. Fetches carry no retry policy; a failure is
// fatal to the session that requested it.
type Provider interface {
	Fetch(ctx context.Context) (model.Quote, error)
}

// HTTPProvider fetches random quotes from a quotable-style JSON endpoint.
type HTTPProvider struct {
	url    string
	client *http.Client
}

// NewHTTP creates a provider for the given endpoint. An empty url selects
// DefaultAPIURL; a non-positive timeout selects the default.
func NewHTTP(url string, timeout time.Duration) *HTTPProvider {
	if url == "" {
		url = DefaultAPIURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPProvider{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch requests one random quote.
func (p *HTTPProvider) Fetch(ctx context.Context) (model.Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, http.NoBody)
	if err != nil {
		return model.Quote{}, fmt.Errorf("failed to build quote request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return model.Quote{}, fmt.Errorf("failed to fetch quote: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return model.Quote{}, fmt.Errorf("unexpected quote API status: %s", resp.Status)
	}
	var q model.Quote
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		return model.Quote{}, fmt.Errorf("failed to decode quote: %w", err)
	}
	if q.Content == "" {
		return model.Quote{}, fmt.Errorf("quote API returned empty content")
	}
	if q.Length == 0 {
		q.Length = len([]rune(q.Content))
	}
	return q, nil
}
