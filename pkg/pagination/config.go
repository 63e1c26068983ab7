package pagination

import (
	"fmt"
	"strings"

	"github.com/Sternrassler/book-scraper/pkg/book"
)

// Defaults matching the public book API.
const (
	DefaultBaseURL          = "https://spa5.scrape.center"
	DefaultPages            = 10
	DefaultPageSize         = 1
	DefaultLimit            = 18
	DefaultChunkSize        = 100
	DefaultChunkParallelism = 1
)

// Config holds pagination and chunking configuration
type Config struct {
	// BaseURL is the API root without trailing slash
	BaseURL string
	// Pages is the number of list pages to request
	Pages int
	// PageSize is the offset step between consecutive list pages
	PageSize int
	// Limit is the limit query parameter of every list request
	Limit int
	// ChunkSize is the number of detail ids fetched per session
	ChunkSize int
	// ChunkParallelism is the number of chunks in flight at once
	ChunkParallelism int
}

// DefaultConfig returns the configuration used against the public API
func DefaultConfig() Config {
	return Config{
		BaseURL:          DefaultBaseURL,
		Pages:            DefaultPages,
		PageSize:         DefaultPageSize,
		Limit:            DefaultLimit,
		ChunkSize:        DefaultChunkSize,
		ChunkParallelism: DefaultChunkParallelism,
	}
}

// withDefaults fills zero values so a partially populated Config is usable.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Pages <= 0 {
		c.Pages = DefaultPages
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.Limit <= 0 {
		c.Limit = DefaultLimit
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.ChunkParallelism <= 0 {
		c.ChunkParallelism = DefaultChunkParallelism
	}
	return c
}

// Offsets returns the list offsets 0, PageSize, 2*PageSize, ... for Pages pages.
func (c Config) Offsets() []int {
	offsets := make([]int, c.Pages)
	for i := range offsets {
		offsets[i] = i * c.PageSize
	}
	return offsets
}

// ListURL returns the list page URL for offset.
func (c Config) ListURL(offset int) string {
	return fmt.Sprintf("%s/api/book/?limit=%d&offset=%d", strings.TrimRight(c.BaseURL, "/"), c.Limit, offset)
}

// DetailURL returns the detail URL of id. The id is rendered verbatim.
func (c Config) DetailURL(id book.ID) string {
	return fmt.Sprintf("%s/api/book/%s", strings.TrimRight(c.BaseURL, "/"), id)
}

// Chunk splits items into contiguous slices of at most size elements.
// The result has ceil(len(items)/size) chunks; their concatenation equals items.
// A non-positive size yields a single chunk.
func Chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(items)
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}
