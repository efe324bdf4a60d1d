// Package scryfall provides a client for the Scryfall card search API.
package scryfall

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/edhtail/internal/model"
)

// Client defines the Scryfall operations used by the pipeline.
type Client interface {
	// SearchAll runs a card search and follows pagination until exhausted,
	// returning every card in the result set. Any failure is fatal to the
	// caller: there is no such thing as a partially fetched pool.
	SearchAll(ctx context.Context, query string) ([]model.Card, error)
	// Printings walks all pages of a prints_search_uri and returns every
	// printing of a single card.
	Printings(ctx context.Context, uri string) ([]model.Card, error)
}

// searchPage is one page of a paginated Scryfall list response.
type searchPage struct {
	Data     []model.Card `json:"data"`
	HasMore  bool         `json:"has_more"`
	NextPage string       `json:"next_page"`
}

// Option configures the Scryfall client.
type Option func(*httpClient)

// WithBaseURL sets a custom API base URL (for testing).
func WithBaseURL(baseURL string) Option {
	return func(c *httpClient) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithPageRate sets the page request rate (requests per second).
func WithPageRate(rps int) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.pager = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

type httpClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
	pager     *rate.Limiter
}

// NewClient creates a new Scryfall client.
func NewClient(userAgent string, opts ...Option) Client {
	c := &httpClient{
		baseURL:   "https://api.scryfall.com",
		userAgent: userAgent,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		// Scryfall asks for at most ~10 requests per second; the limiter
		// doubles as the inter-page pacing delay.
		pager: rate.NewLimiter(10, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) SearchAll(ctx context.Context, query string) ([]model.Card, error) {
	params := url.Values{
		"q":      {query},
		"unique": {"cards"},
		"order":  {"name"},
		"dir":    {"asc"},
	}
	first := c.baseURL + "/cards/search?" + params.Encode()

	cards, err := c.walkPages(ctx, first)
	if err != nil {
		return nil, eris.Wrap(err, "scryfall: search")
	}
	zap.L().Debug("scryfall: search complete",
		zap.String("query", query),
		zap.Int("cards", len(cards)),
	)
	return cards, nil
}

func (c *httpClient) Printings(ctx context.Context, uri string) ([]model.Card, error) {
	printings, err := c.walkPages(ctx, uri)
	if err != nil {
		return nil, eris.Wrap(err, "scryfall: printings")
	}
	return printings, nil
}

// walkPages fetches pageURL and every next_page after it. Follow-up requests
// use the next_page URL verbatim: it already encodes the query parameters, and
// re-attaching them would desynchronize pagination.
func (c *httpClient) walkPages(ctx context.Context, pageURL string) ([]model.Card, error) {
	var cards []model.Card
	for pageURL != "" {
		if err := c.pager.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "page pacing wait")
		}

		page, err := c.getPage(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		cards = append(cards, page.Data...)

		if !page.HasMore {
			break
		}
		pageURL = page.NextPage
	}
	return cards, nil
}

func (c *httpClient) getPage(ctx context.Context, pageURL string) (*searchPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "get %s", pageURL)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, eris.Errorf("unexpected status %d from %s: %s", resp.StatusCode, pageURL, string(body))
	}

	var page searchPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, eris.Wrapf(err, "decode page %s", pageURL)
	}
	return &page, nil
}
