package client

import (
	"context"
	"net/http"
)

// Session is a connection scope: its own transport and connection pool,
// released by Close. Sessions share the client's concurrency limiter.
type Session struct {
	name      string
	client    *Client
	transport *http.Transport
	http      *http.Client
}

// NewSession opens a connection scope. name labels its logs and metrics
// (e.g. "list", "detail").
func (c *Client) NewSession(name string) *Session {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = c.config.MaxConcurrency

	c.logger.Debug().Str("session", name).Msg("Session opened")

	return &Session{
		name:      name,
		client:    c,
		transport: transport,
		http: &http.Client{
			Transport: transport,
			Timeout:   c.config.RequestTimeout,
		},
	}
}

// Name returns the session label.
func (s *Session) Name() string {
	return s.name
}

// Get fetches url and returns the response body. It waits for a slot of the
// shared limiter (and the optional throttle) and releases the slot when the
// request completes, whatever the outcome. Transport failures are logged once
// and returned as *FetchError.
func (s *Session) Get(ctx context.Context, url string) ([]byte, error) {
	return s.client.get(ctx, s, url)
}

// Close releases the session's idle connections.
func (s *Session) Close() error {
	s.transport.CloseIdleConnections()
	s.client.logger.Debug().Str("session", s.name).Msg("Session closed")
	return nil
}
