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

// DetailSession labels the per-chunk sessions used for detail records.
const DetailSession = "detail"

// Progress receives one Add(1) per finished detail fetch.
// *progressbar.ProgressBar satisfies it.
type Progress interface {
	Add(num int) error
}

// DetailResult is the outcome of fetching all detail records.
type DetailResult struct {
	// Details holds one entry per input id in input order; nil marks a
	// failed fetch.
	Details []*book.Detail
	// Chunks is the number of chunks processed
	Chunks int
	// Failed is the number of nil entries in Details
	Failed int
}

// Batcher fetches detail records in chunks, one session per chunk.
type Batcher struct {
	client   *client.Client
	config   Config
	progress Progress
	logger   zerolog.Logger
}

// NewBatcher creates a detail batcher. progress may be nil.
func NewBatcher(c *client.Client, cfg Config, progress Progress) *Batcher {
	return &Batcher{
		client:   c,
		config:   cfg.withDefaults(),
		progress: progress,
		logger:   logging.NewLogger("pagination"),
	}
}

// FetchDetails fetches the detail record of every id. Chunks run
// ChunkParallelism at a time; with the default of 1 each chunk completes
// before the next one starts. The result order always matches ids.
func (b *Batcher) FetchDetails(ctx context.Context, ids []book.ID) (*DetailResult, error) {
	start := time.Now()
	chunks := Chunk(ids, b.config.ChunkSize)

	b.logger.Info().
		Int("ids", len(ids)).
		Int("chunks", len(chunks)).
		Int("chunk_size", b.config.ChunkSize).
		Int("chunk_parallelism", b.config.ChunkParallelism).
		Msg("Starting detail fetch")

	perChunk := make([][]*book.Detail, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.config.ChunkParallelism)
	for i, chunk := range chunks {
		g.Go(func() error {
			details, err := b.fetchChunk(gctx, i, chunk)
			if err != nil {
				return err
			}
			perChunk[i] = details
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &DetailResult{
		Details: make([]*book.Detail, 0, len(ids)),
		Chunks:  len(chunks),
	}
	for _, details := range perChunk {
		for _, d := range details {
			if d == nil {
				result.Failed++
			}
			result.Details = append(result.Details, d)
		}
	}

	level := zerolog.InfoLevel
	if result.Failed > 0 {
		level = zerolog.WarnLevel
	}
	b.logger.WithLevel(level).
		Int("ids", len(ids)).
		Int("failed", result.Failed).
		Int("chunks", result.Chunks).
		Dur("duration", time.Since(start)).
		Msg("Detail fetch complete")

	return result, nil
}

// fetchChunk fetches one chunk inside its own session and closes the
// session before returning.
func (b *Batcher) fetchChunk(ctx context.Context, index int, ids []book.ID) ([]*book.Detail, error) {
	start := time.Now()
	session := b.client.NewSession(DetailSession)
	defer session.Close()

	details := make([]*book.Detail, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			d, err := client.FetchJSON[book.Detail](gctx, session, b.config.DetailURL(id))
			if err != nil {
				return fmt.Errorf("detail %s: %w", id, err)
			}
			details[i] = d
			if b.progress != nil {
				_ = b.progress.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("chunk %d: %w", index, err)
	}

	b.logger.Debug().
		Int("chunk", index).
		Int("ids", len(ids)).
		Dur("duration", time.Since(start)).
		Msg("Chunk complete")

	return details, nil
}
