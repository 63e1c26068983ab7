// Package client provides the book API HTTP client: a global concurrency
// limiter shared by every request, per-scope sessions, and JSON fetching
// that turns transport failures into nil results.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/book-scraper/pkg/cache"
	"github.com/Sternrassler/book-scraper/pkg/logging"
	"github.com/Sternrassler/book-scraper/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// Prometheus metrics for book API requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookscraper_requests_total",
		Help: "Total book API requests by session and status",
	}, []string{"session", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookscraper_request_duration_seconds",
		Help:    "Book API request duration in seconds by session",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"session"})

	fetchFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookscraper_fetch_failures_total",
		Help: "Total transport failures by session and error class",
	}, []string{"session", "class"})

	requestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bookscraper_requests_in_flight",
		Help: "Requests currently holding a concurrency slot",
	})
)

// DefaultMaxConcurrency is the capacity of the global limiter.
const DefaultMaxConcurrency = 10

// Config holds the client configuration.
type Config struct {
	// UserAgent header sent with every request
	UserAgent string

	// MaxConcurrency is the number of requests that may be in flight at once
	// across all sessions
	MaxConcurrency int

	// RequestTimeout bounds a single request; zero means no timeout
	RequestTimeout time.Duration

	// Throttle optionally limits the request start rate (nil = unlimited)
	Throttle *ratelimit.Limiter

	// Cache optionally serves fresh responses from Redis (nil = disabled)
	Cache *cache.Manager
}

// DefaultConfig returns the configuration used by the scraper binary.
func DefaultConfig(userAgent string) Config {
	return Config{
		UserAgent:      userAgent,
		MaxConcurrency: DefaultMaxConcurrency,
	}
}

// Client issues GET requests to the book API. All sessions created from one
// Client share its concurrency limiter.
type Client struct {
	limiter *semaphore.Weighted
	config  Config
	logger  zerolog.Logger
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.MaxConcurrency <= 0 {
		return nil, fmt.Errorf("max_concurrency must be > 0 (got %d)", cfg.MaxConcurrency)
	}

	if cfg.RequestTimeout < 0 {
		return nil, fmt.Errorf("request_timeout must be >= 0 (got %s)", cfg.RequestTimeout)
	}

	return &Client{
		limiter: semaphore.NewWeighted(int64(cfg.MaxConcurrency)),
		config:  cfg,
		logger:  logging.NewLogger("client"),
	}, nil
}

// MaxConcurrency returns the capacity of the shared limiter.
func (c *Client) MaxConcurrency() int {
	return c.config.MaxConcurrency
}

// FetchJSON fetches url through s and decodes the JSON body into a new T.
// A transport failure (network error or non-2xx status) has already been
// logged by the session and yields (nil, nil). Decode errors and context
// cancellation are returned.
func FetchJSON[T any](ctx context.Context, s *Session, url string) (*T, error) {
	body, err := s.Get(ctx, url)
	if err != nil {
		if IsTransportFailure(err) {
			return nil, nil
		}
		return nil, err
	}

	var v T
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}

	return &v, nil
}

// get performs one request within a session. See Session.Get.
func (c *Client) get(ctx context.Context, s *Session, url string) ([]byte, error) {
	var cacheKey cache.CacheKey
	if c.config.Cache != nil {
		key, err := cache.KeyFromURL(url)
		if err != nil {
			return nil, fmt.Errorf("cache key: %w", err)
		}
		cacheKey = key

		entry, err := c.config.Cache.Get(ctx, cacheKey)
		switch {
		case err == nil:
			requestsTotal.WithLabelValues(s.name, "cache_hit").Inc()
			c.logger.Debug().Str("url", url).Str("session", s.name).Msg("Cache hit")
			return entry.Data, nil
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("url", url).Msg("Cache get error")
		}
	}

	if err := c.limiter.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire fetch slot: %w", err)
	}
	defer c.limiter.Release(1)

	requestsInFlight.Inc()
	defer requestsInFlight.Dec()

	if err := c.config.Throttle.Wait(ctx); err != nil {
		return nil, err
	}

	c.logger.Info().Str("url", url).Str("session", s.name).Msg("Scraping")

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(s.name).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, c.fail(s, &FetchError{URL: url, Class: ErrorClassNetwork, Err: err})
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, ctx.Err())
		}
		requestsTotal.WithLabelValues(s.name, "network_error").Inc()
		return nil, c.fail(s, &FetchError{URL: url, Class: ErrorClassNetwork, Err: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, ctx.Err())
		}
		requestsTotal.WithLabelValues(s.name, "network_error").Inc()
		return nil, c.fail(s, &FetchError{URL: url, StatusCode: resp.StatusCode, Class: ErrorClassNetwork, Err: err})
	}

	requestsTotal.WithLabelValues(s.name, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.fail(s, &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Class:      classifyStatus(resp.StatusCode),
			Err:        errors.New(resp.Status),
		})
	}

	if c.config.Cache != nil {
		entry := cache.NewEntry(body, resp.StatusCode, resp.Header, c.config.Cache.DefaultTTL())
		if err := c.config.Cache.Set(ctx, cacheKey, entry); err != nil {
			c.logger.Warn().Err(err).Str("url", url).Msg("Failed to cache response")
		}
	}

	return body, nil
}

// fail logs a transport failure exactly once and records it.
func (c *Client) fail(s *Session, fe *FetchError) error {
	event := c.logger.Error().
		Str("url", fe.URL).
		Str("session", s.name).
		Str("error_class", string(fe.Class))
	if fe.StatusCode > 0 {
		event = event.Int("status_code", fe.StatusCode)
	}
	event.Err(fe.Err).Msg("Failed to scrape")

	fetchFailuresTotal.WithLabelValues(s.name, string(fe.Class)).Inc()
	return fe
}
