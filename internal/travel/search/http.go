package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	errx "github.com/zenese/server/internal/core/error"
	"github.com/zenese/server/internal/travel/model"
)

const searchPath = "/search-flights"

// Client talks to the flight-search backend over HTTP. An optional provider
// name is forwarded as a query parameter so the backend can pin the upstream
// the router selected.
type Client struct {
	baseURL  string
	provider string
	http     *http.Client
}

// NewClient creates a search client without provider pinning.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewProviderClient(baseURL, "", timeout)
}

// NewProviderClient creates a search client pinned to a named upstream provider.
func NewProviderClient(baseURL, provider string, timeout time.Duration) *Client {
	return &Client{
		baseURL:  baseURL,
		provider: provider,
		http:     &http.Client{Timeout: timeout},
	}
}

// Search implements Searcher. Transport, status, and decode failures all come
// back as errx provider failures carrying an HTTP-ish status.
func (c *Client) Search(ctx context.Context, req model.SearchRequest) ([]model.FlightOffer, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	endpoint := c.baseURL + searchPath
	if c.provider != "" {
		endpoint += "?provider=" + url.QueryEscape(c.provider)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errx.WrapProvider(err, http.StatusBadGateway)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errx.WrapProvider(fmt.Errorf("unexpected status %d", resp.StatusCode), resp.StatusCode)
	}

	var sr model.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, errx.New(err, http.StatusBadGateway, errx.ProviderDecodeMessage)
	}

	return sr.Flights, nil
}

var _ Searcher = (*Client)(nil)
