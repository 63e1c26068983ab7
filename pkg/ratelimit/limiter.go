// Package ratelimit provides an optional client-side request throttle.
// It is layered on top of the concurrency limiter: the semaphore caps how
// many requests are in flight, the throttle caps how fast they start.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Prometheus metrics for request throttling.
var (
	throttleWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookscraper_rate_limit_waits_total",
		Help: "Total number of requests that passed through the throttle",
	})

	throttleDelaysTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookscraper_rate_limit_throttles_total",
		Help: "Total number of requests delayed by the throttle",
	})

	throttleWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bookscraper_rate_limit_wait_seconds",
		Help:    "Time spent waiting for a throttle token",
		Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
	})
)

// throttledAfter is the wait above which a request counts as delayed.
const throttledAfter = time.Millisecond

// Limiter is a token-bucket throttle. A nil *Limiter allows everything.
type Limiter struct {
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// New creates a throttle allowing requestsPerSecond with the given burst.
// It returns nil when requestsPerSecond is not positive, which disables
// throttling.
func New(requestsPerSecond float64, burst int, logger zerolog.Logger) *Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		logger:  logger,
	}
}

// Enabled reports whether the throttle limits anything.
func (l *Limiter) Enabled() bool {
	return l != nil
}

// Wait blocks until a request may start or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}

	start := time.Now()
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	waited := time.Since(start)

	throttleWaitsTotal.Inc()
	throttleWaitSeconds.Observe(waited.Seconds())
	if waited > throttledAfter {
		throttleDelaysTotal.Inc()
		l.logger.Debug().Dur("wait_duration", waited).Msg("Request throttled")
	}

	return nil
}
