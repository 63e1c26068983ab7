package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/book-scraper/pkg/book"
	"github.com/Sternrassler/book-scraper/pkg/client"
	"github.com/Sternrassler/book-scraper/pkg/logging"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ListSession labels the session used for list pages.
const ListSession = "list"

// ListResult is the outcome of collecting ids from all list pages.
type ListResult struct {
	// IDs in page order, then in-page order. Duplicates are kept.
	IDs []book.ID
	// Pages is the number of list pages requested
	Pages int
	// FailedPages is the number of pages that returned no data
	FailedPages int
}

// Collector fetches list pages and flattens their ids.
type Collector struct {
	client *client.Client
	config Config
	logger zerolog.Logger
}

// NewCollector creates a list collector.
func NewCollector(c *client.Client, cfg Config) *Collector {
	return &Collector{
		client: c,
		config: cfg.withDefaults(),
		logger: logging.NewLogger("pagination"),
	}
}

// CollectIDs fetches all list pages concurrently and returns their ids.
// A page that fails to fetch contributes no ids. A result without id, a
// malformed body or context cancellation aborts the collection.
func (c *Collector) CollectIDs(ctx context.Context) (*ListResult, error) {
	start := time.Now()
	offsets := c.config.Offsets()

	c.logger.Info().
		Int("pages", len(offsets)).
		Int("limit", c.config.Limit).
		Msg("Starting list page fetch")

	session := c.client.NewSession(ListSession)
	defer session.Close()

	pages := make([]*book.ListPage, len(offsets))
	g, gctx := errgroup.WithContext(ctx)
	for i, offset := range offsets {
		g.Go(func() error {
			page, err := client.FetchJSON[book.ListPage](gctx, session, c.config.ListURL(offset))
			if err != nil {
				return fmt.Errorf("list page offset %d: %w", offset, err)
			}
			pages[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &ListResult{IDs: []book.ID{}, Pages: len(offsets)}
	for i, page := range pages {
		if page == nil {
			result.FailedPages++
			continue
		}
		ids, err := page.IDs()
		if err != nil {
			return nil, fmt.Errorf("list page offset %d: %w", offsets[i], err)
		}
		result.IDs = append(result.IDs, ids...)
	}

	level := zerolog.InfoLevel
	if result.FailedPages > 0 {
		level = zerolog.WarnLevel
	}
	c.logger.WithLevel(level).
		Int("pages", result.Pages).
		Int("failed_pages", result.FailedPages).
		Int("ids", len(result.IDs)).
		Dur("duration", time.Since(start)).
		Msg("List fetch complete")

	return result, nil
}
