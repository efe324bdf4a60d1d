// Package edhrec fetches per-commander deck counts from EDHREC pages.
package edhrec

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// Lookup is the outcome of one deck-count page fetch. Decks is nil when the
// page loaded but no count could be found in it.
type Lookup struct {
	FinalURL string
	Decks    *int
}

// Client defines the EDHREC lookup operation.
type Client interface {
	// DeckCount fetches a commander's route URL, following redirects to the
	// canonical commander page, and extracts the deck count from the page.
	DeckCount(ctx context.Context, routeURL string) (*Lookup, error)
}

// decksRE matches a deck count as rendered on a commander page, e.g.
// "12,345 decks".
var decksRE = regexp.MustCompile(`(?i)(\d[\d,]*)\s+decks`)

// Option configures the EDHREC client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	userAgent string
	http      *http.Client
}

// NewClient creates a new EDHREC client. The default http.Client follows
// redirects, which the route endpoint relies on.
func NewClient(userAgent string, opts ...Option) Client {
	c := &httpClient{
		userAgent: userAgent,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) DeckCount(ctx context.Context, routeURL string) (*Lookup, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, routeURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "edhrec: create request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "edhrec: get %s", routeURL)
	}
	defer resp.Body.Close() //nolint:errcheck

	finalURL := routeURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("edhrec: unexpected status %d from %s", resp.StatusCode, finalURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "edhrec: parse page %s", finalURL)
	}

	return &Lookup{FinalURL: finalURL, Decks: extractDeckCount(doc.Text())}, nil
}

// extractDeckCount pulls the first "<n> decks" match out of page text.
// A missing match means the count is unknown, not an error.
func extractDeckCount(text string) *int {
	m := decksRE.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return nil
	}
	return &n
}
