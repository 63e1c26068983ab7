// Package cache provides an optional Redis-backed cache for book API
// responses.
//
// Entries are keyed by request URL and expire either at the response's
// Expires header or after the configured default TTL. A fresh hit lets the
// client skip the request entirely, including the concurrency limiter, so a
// repeated run against the same listing only fetches what expired.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	manager := cache.NewManager(redisClient, 10*time.Minute)
//
//	key, err := cache.KeyFromURL("https://spa5.scrape.center/api/book/1")
//	if err != nil {
//		return err
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the API, then:
//		_ = manager.Set(ctx, key, cache.NewEntry(body, resp.StatusCode, resp.Header, manager.DefaultTTL()))
//	}
//
// # Metrics
//
//   - bookscraper_cache_hits_total - Cache hits
//   - bookscraper_cache_misses_total - Cache misses (including expired entries)
//   - bookscraper_cache_stored_bytes_total - Bytes written to Redis
//   - bookscraper_cache_errors_total{operation} - Cache operation errors
package cache
