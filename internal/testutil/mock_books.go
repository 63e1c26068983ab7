// Package testutil provides testing utilities for the book scraper.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration

	// Drop closes the connection without a response, which the client sees
	// as a network error.
	Drop bool
}

// MockBookAPI is a configurable mock of the book-listing API:
//
//	GET /api/book/?limit=L&offset=O  list page
//	GET /api/book/{id}               detail record
type MockBookAPI struct {
	server  *httptest.Server
	mu      sync.RWMutex
	lists   map[int]MockResponse
	details map[string]MockResponse
	delay   time.Duration

	requestCount int
	inFlight     int
	maxInFlight  int
	requests     []string
	userAgents   map[string]int
}

// NewMockBookAPI creates a new mock API server.
func NewMockBookAPI() *MockBookAPI {
	mock := &MockBookAPI{
		lists:      make(map[int]MockResponse),
		details:    make(map[string]MockResponse),
		userAgents: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))

	return mock
}

// URL returns the mock server URL.
func (m *MockBookAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockBookAPI) Close() {
	m.server.Close()
}

// SetDelay makes every response wait d before being written.
func (m *MockBookAPI) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// SetListPage serves a list page with the given ids at offset.
func (m *MockBookAPI) SetListPage(offset int, ids ...any) {
	m.SetListResponse(offset, NewOKResponse(ListBody(ids...)))
}

// SetListResponse configures the response for the list page at offset.
func (m *MockBookAPI) SetListResponse(offset int, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[offset] = resp
}

// SetDetail serves body as the detail record of id.
func (m *MockBookAPI) SetDetail(id string, body string) {
	m.SetDetailResponse(id, NewOKResponse(body))
}

// SetDetailResponse configures the response for the detail record of id.
func (m *MockBookAPI) SetDetailResponse(id string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.details[id] = resp
}

// RequestCount returns the number of requests made to the server.
func (m *MockBookAPI) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// MaxInFlight returns the highest number of concurrently served requests.
func (m *MockBookAPI) MaxInFlight() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.maxInFlight
}

// Requests returns the request URIs in arrival order.
func (m *MockBookAPI) Requests() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.requests))
	copy(out, m.requests)
	return out
}

// UserAgents returns how often each User-Agent header was seen.
func (m *MockBookAPI) UserAgents() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int, len(m.userAgents))
	for k, v := range m.userAgents {
		out[k] = v
	}
	return out
}

// Reset clears all tracking counters.
func (m *MockBookAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.maxInFlight = 0
	m.requests = nil
	m.userAgents = make(map[string]int)
}

func (m *MockBookAPI) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requestCount++
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	m.requests = append(m.requests, r.URL.RequestURI())
	m.userAgents[r.Header.Get("User-Agent")]++
	delay := m.delay
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if delay > 0 {
		time.Sleep(delay)
	}

	resp, ok := m.lookup(r)
	if !ok {
		writeResponse(w, NewNotFoundResponse())
		return
	}
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	if resp.Drop {
		dropConnection(w)
		return
	}
	writeResponse(w, resp)
}

func (m *MockBookAPI) lookup(r *http.Request) (MockResponse, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rest, ok := strings.CutPrefix(r.URL.Path, "/api/book/")
	if !ok {
		return MockResponse{}, false
	}

	if rest == "" {
		offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
		if err != nil {
			return MockResponse{}, false
		}
		resp, ok := m.lists[offset]
		if !ok {
			// Past the end of the listing the API returns an empty page.
			return NewOKResponse(ListBody()), true
		}
		return resp, true
	}

	resp, ok := m.details[rest]
	return resp, ok
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	w.Header().Set("Content-Type", "application/json")
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

func dropConnection(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		return
	}
	conn.Close()
}

// ListBody renders a list page body containing ids.
func ListBody(ids ...any) string {
	results := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		results = append(results, map[string]any{"id": id, "name": fmt.Sprintf("book %v", id)})
	}
	data, err := json.Marshal(map[string]any{"count": len(ids), "results": results})
	if err != nil {
		panic(err)
	}
	return string(data)
}

// NewOKResponse creates a 200 OK JSON response.
func NewOKResponse(body string) MockResponse {
	return MockResponse{StatusCode: http.StatusOK, Body: body}
}

// NewNotFoundResponse creates the API's 404 response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{StatusCode: http.StatusNotFound, Body: `{"detail": "Not found."}`}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{StatusCode: http.StatusInternalServerError, Body: `{"error": "Internal server error"}`}
}

// NewDroppedResponse closes the connection without answering.
func NewDroppedResponse() MockResponse {
	return MockResponse{Drop: true}
}
