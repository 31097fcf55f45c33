// Package scorecard looks up published tuition figures from the U.S.
// Department of Education College Scorecard API.
package scorecard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/aidbuddy/pkg/domain"
)

const (
	// DefaultURL is the public schools endpoint.
	DefaultURL = "https://api.data.gov/ed/collegescorecard/v1/schools"
	// DefaultTimeout bounds a single lookup.
	DefaultTimeout = 15 * time.Second
	// DefaultLimit is used when Search is called with a non-positive limit.
	DefaultLimit = 5
	// MaxLimit caps a single page.
	MaxLimit = 50
)

// ErrNoAPIKey is returned by Search when the client has no api.data.gov key.
var ErrNoAPIKey = errors.New("scorecard: api key not configured")

// ErrUpstream wraps transport failures and unexpected responses.
var ErrUpstream = errors.New("scorecard: upstream error")

var fields = strings.Join([]string{
	"id",
	"school.name",
	"school.city",
	"school.state",
	"latest.cost.tuition.in_state",
	"latest.cost.tuition.out_of_state",
}, ",")

// Client queries the schools endpoint.
type Client struct {
	apiKey   string
	endpoint string
	http     *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithURL points the client at another endpoint (tests, proxies).
func WithURL(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a Client. An empty apiKey is allowed; Search then fails with
// ErrNoAPIKey.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:   apiKey,
		endpoint: DefaultURL,
		http:     &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether the client has an API key.
func (c *Client) Configured() bool { return c.apiKey != "" }

type record struct {
	ID         int      `json:"id"`
	Name       string   `json:"school.name"`
	City       string   `json:"school.city"`
	State      string   `json:"school.state"`
	InState    *float64 `json:"latest.cost.tuition.in_state"`
	OutOfState *float64 `json:"latest.cost.tuition.out_of_state"`
}

type response struct {
	Results []record `json:"results"`
}

// Search returns up to limit schools whose name matches name.
func (c *Client) Search(ctx context.Context, name string, limit int) ([]domain.School, error) {
	if !c.Configured() {
		return nil, ErrNoAPIKey
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: school name is required", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("school.name", name)
	q.Set("fields", fields)
	q.Set("per_page", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// The request URL carries the API key; keep only the cause.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return nil, fmt.Errorf("%w: request failed: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", ErrUpstream, err)
	}

	schools := make([]domain.School, 0, len(out.Results))
	for _, r := range out.Results {
		schools = append(schools, r.school())
	}
	return schools, nil
}

func (r record) school() domain.School {
	in, out := dollars(r.InState), dollars(r.OutOfState)
	return domain.School{
		ID:                r.ID,
		Name:              r.Name,
		City:              r.City,
		State:             r.State,
		TuitionInState:    in,
		TuitionOutOfState: out,
		TuitionBestGuess:  domain.BestGuessTuition(in, out),
	}
}

func dollars(v *float64) *int {
	if v == nil {
		return nil
	}
	n := int(math.Round(*v))
	return &n
}
