package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// keyPrefix namespaces every key written by the scraper.
const keyPrefix = "bookscraper"

// CacheKey identifies a cached API response.
type CacheKey struct {
	// Host is the API host, including port if any.
	Host string

	// Path is the request path (e.g., "/api/book/7952978").
	Path string

	// QueryParams are the query parameters (e.g., limit and offset of a list page).
	QueryParams url.Values
}

// KeyFromURL builds the cache key of a request URL.
func KeyFromURL(rawURL string) (CacheKey, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return CacheKey{}, fmt.Errorf("parse cache url: %w", err)
	}
	return CacheKey{
		Host:        u.Host,
		Path:        u.Path,
		QueryParams: u.Query(),
	}, nil
}

// String generates a deterministic cache key string.
// Format: bookscraper:host:path:query1=val1:query2=val2
//
// Example:
//
//	bookscraper:spa5.scrape.center:api/book:limit=18:offset=0
func (k CacheKey) String() string {
	parts := []string{keyPrefix}

	if k.Host != "" {
		parts = append(parts, k.Host)
	}

	if path := strings.Trim(k.Path, "/"); path != "" {
		parts = append(parts, path)
	}

	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.QueryParams.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}
