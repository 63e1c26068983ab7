package cache

import (
	"net/http"
	"time"
)

// DefaultTTL is used when neither the response nor the caller sets one.
const DefaultTTL = 10 * time.Minute

// NewEntry builds a cache entry from a response body and headers.
// The Expires header wins over defaultTTL when present and parseable.
func NewEntry(body []byte, statusCode int, header http.Header, defaultTTL time.Duration) *CacheEntry {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}

	data := make([]byte, len(body))
	copy(data, body)

	return &CacheEntry{
		Data:       data,
		StatusCode: statusCode,
		Expires:    parseExpires(header, defaultTTL),
		CachedAt:   time.Now(),
	}
}

// parseExpires returns the Expires header time, or now + defaultTTL when the
// header is missing or malformed. A past Expires yields now, which Set skips.
func parseExpires(header http.Header, defaultTTL time.Duration) time.Time {
	expiresStr := header.Get("Expires")
	if expiresStr == "" {
		return time.Now().Add(defaultTTL)
	}

	expires, err := http.ParseTime(expiresStr)
	if err != nil {
		return time.Now().Add(defaultTTL)
	}

	if expires.Before(time.Now()) {
		return time.Now()
	}

	return expires
}
