// Package finnhub is a client of the Finnhub.io stock API.
//
// It implements signalist.NewsProvider, and serves the symbol search, the
// company profiles and the real time quotes.
package finnhub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/signalist"
	"github.com/etnz/signalist/httpcache"
	"github.com/etnz/signalist/metrics"
	"golang.org/x/time/rate"
)

// BaseURL is the address of the Finnhub API.
const BaseURL = "https://finnhub.io/api/v1"

// Time to live of each kind of response. Quotes are never cached.
const (
	CompanyNewsTTL = 600 * time.Second
	GeneralNewsTTL = 300 * time.Second
	ProfileTTL     = time.Hour
	SearchTTL      = 30 * time.Minute
)

// DefaultRate is the free tier limit: 60 calls per minute.
const DefaultRate = rate.Limit(1)

// Client queries Finnhub. It is safe for concurrent use.
type Client struct {
	apiKey    string
	baseURL   string
	store     httpcache.Store
	transport http.RoundTripper
	limiter   *rate.Limiter
	logger    *slog.Logger

	// one http.Client per time to live.
	company, general, profile, search, quote *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides BaseURL.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") } }

// WithStore caches responses in s. Without a store nothing is cached.
func WithStore(s httpcache.Store) Option { return func(c *Client) { c.store = s } }

// WithTransport sets the transport used for the actual network calls.
func WithTransport(rt http.RoundTripper) Option { return func(c *Client) { c.transport = rt } }

// WithLimiter replaces the default rate limiter.
func WithLimiter(l *rate.Limiter) Option { return func(c *Client) { c.limiter = l } }

// WithLogger sets the logger, slog.Default() otherwise.
func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.logger = l } }

// New returns a Client authenticated by apiKey.
//
// An empty apiKey is accepted: every call then fails with a *signalist.ConfigurationError.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:    strings.TrimSpace(apiKey),
		baseURL:   BaseURL,
		transport: http.DefaultTransport,
		limiter:   rate.NewLimiter(DefaultRate, 30),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	// cache first, so that hits do not consume the rate limit.
	network := &rateLimited{base: c.transport, limiter: c.limiter}
	cached := func(ttl time.Duration) *http.Client {
		return &http.Client{
			Timeout:   30 * time.Second,
			Transport: &httpcache.Transport{Base: network, Store: c.store, TTL: ttl, Logger: c.logger},
		}
	}
	c.company = cached(CompanyNewsTTL)
	c.general = cached(GeneralNewsTTL)
	c.profile = cached(ProfileTTL)
	c.search = cached(SearchTTL)
	c.quote = &http.Client{Timeout: 30 * time.Second, Transport: network}
	return c
}

var _ signalist.NewsProvider = (*Client)(nil)

// Configured implements signalist.NewsProvider.
func (c *Client) Configured() error {
	if c.apiKey == "" {
		return &signalist.ConfigurationError{Setting: "FINNHUB_API_KEY"}
	}
	return nil
}

type rateLimited struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (r *rateLimited) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := r.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return r.base.RoundTrip(req)
}

// query is a list of query parameters, encoded in order.
type query [][2]string

// encode returns the url encoded query, followed by the token.
func (q query) encode(token string) string {
	var b strings.Builder
	for _, kv := range q {
		b.WriteString(url.QueryEscape(kv[0]))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv[1]))
		b.WriteByte('&')
	}
	b.WriteString("token=")
	b.WriteString(url.QueryEscape(token))
	return b.String()
}

// jget performs a GET on endpoint with params and decodes the JSON response into data.
func (c *Client) jget(ctx context.Context, client *http.Client, endpoint string, params query, data any) error {
	if err := c.Configured(); err != nil {
		return err
	}
	addr := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.encode(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		metrics.RecordProvider(endpoint, "error")
		// url.Error would print the token.
		return fmt.Errorf("cannot GET %s: %w", endpoint, unwrapURLError(err))
	}
	defer resp.Body.Close()
	metrics.RecordProvider(endpoint, strconv.Itoa(resp.StatusCode))
	c.logger.Debug("finnhub", "endpoint", endpoint, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &signalist.HTTPError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			URL:        c.baseURL + "/" + endpoint,
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(data); err != nil {
		return fmt.Errorf("cannot decode %s response: %w", endpoint, err)
	}
	return nil
}

func unwrapURLError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}
