// Package remote is a Searcher backed by an HTTP endpoint that answers
// GET ?q=<query>&limit=<n> with a JSON list of results.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"typeahead/internal/domain"
	"typeahead/internal/source"
)

const name = "http"

// maxBody caps how much of a response is read before giving up on it
const maxBody = 4 << 20

// Client queries a remote suggestion endpoint
type Client struct {
	endpoint string
	limit    int
	client   *http.Client
	limiter  *rate.Limiter
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithRateLimit caps outgoing requests at perSecond with the given burst.
// perSecond <= 0 disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// New creates a client for endpoint asking for at most limit results
func New(endpoint string, limit int, opts ...Option) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid endpoint %q: scheme must be http or https", endpoint)
	}

	c := &Client{
		endpoint: endpoint,
		limit:    limit,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// response is the endpoint's wire format
type response struct {
	Results []domain.Result `json:"results"`
}

// Name identifies the HTTP source in errors
func (c *Client) Name() string { return name }

// Search asks the endpoint for query. Transport failures, non-200
// answers and unreadable bodies all come back as *source.SourceError.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Result, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, source.Wrap(name, query, fmt.Errorf("rate limit: %w", err))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(query), nil)
	if err != nil {
		return nil, source.Wrap(name, query, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("Search request for '%s' failed: %v", query, err)
		return nil, source.Wrap(name, query, fmt.Errorf("calling %s: %w", c.endpoint, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, source.Wrap(name, query, fmt.Errorf("endpoint returned status %d", resp.StatusCode))
	}

	var body response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&body); err != nil {
		return nil, source.Wrap(name, query, fmt.Errorf("decoding response: %w", err))
	}

	results := body.Results[:0]
	for _, r := range body.Results {
		if r.Kind == "" {
			r.Kind = domain.KindText
		}
		if err := r.Validate(); err != nil {
			return nil, source.Wrap(name, query, fmt.Errorf("malformed result: %w", err))
		}
		results = append(results, r)
	}
	if c.limit > 0 && len(results) > c.limit {
		results = results[:c.limit]
	}
	return results, nil
}

func (c *Client) requestURL(query string) string {
	u, _ := url.Parse(c.endpoint)
	q := u.Query()
	q.Set("q", query)
	if c.limit > 0 {
		q.Set("limit", strconv.Itoa(c.limit))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
