// Package metrics exposes the scraper's Prometheus metrics.
// All metrics are defined in their respective packages (client, cache, ratelimit)
// to maintain modularity and avoid circular dependencies.
//
// This package provides the exposition endpoint and a reference for all available metrics.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sternrassler/book-scraper/pkg/logging"
)

// Registry is the default Prometheus registry used by the scraper.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the source served by Handler.
var Gatherer = prometheus.DefaultGatherer

// shutdownTimeout bounds the graceful shutdown of the metrics server.
const shutdownTimeout = 5 * time.Second

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - bookscraper_requests_total{session, status} (Counter): Requests by session and HTTP status
//     (plus "network_error" and "cache_hit")
//   - bookscraper_request_duration_seconds{session} (Histogram): Request duration by session
//   - bookscraper_fetch_failures_total{session, class} (Counter): Transport failures by class
//     (network, client, server, unexpected)
//   - bookscraper_requests_in_flight (Gauge): Requests holding a concurrency slot
//
// Throttle Metrics (pkg/ratelimit):
//   - bookscraper_rate_limit_waits_total (Counter): Requests that passed the throttle
//   - bookscraper_rate_limit_throttles_total (Counter): Requests delayed by the throttle
//   - bookscraper_rate_limit_wait_seconds (Histogram): Time spent waiting for a token
//
// Cache Metrics (pkg/cache):
//   - bookscraper_cache_hits_total (Counter): Fresh cache hits
//   - bookscraper_cache_misses_total (Counter): Cache misses
//   - bookscraper_cache_stored_bytes_total (Counter): Bytes written to the cache
//   - bookscraper_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Detail failure ratio
//   sum(rate(bookscraper_fetch_failures_total{session="detail"}[5m])) /
//   sum(rate(bookscraper_requests_total{session="detail"}[5m]))
//
//   # Limiter saturation
//   max_over_time(bookscraper_requests_in_flight[1m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(bookscraper_request_duration_seconds_bucket[5m]))

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled. It returns once the
// listener is bound; serve errors after that are logged.
func Serve(ctx context.Context, addr string) (net.Addr, error) {
	logger := logging.NewLogger("metrics")

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("Metrics server shutdown")
		}
	}()

	logger.Info().Str("addr", ln.Addr().String()).Msg("Serving metrics")
	return ln.Addr(), nil
}
