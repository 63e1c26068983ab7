// Package scraper runs the full pipeline: collect ids from the list pages,
// fetch detail records in chunks, extract the output records and write them
// once to disk. Stages run strictly one after another; concurrency exists
// only inside a stage.
package scraper

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"github.com/Sternrassler/book-scraper/pkg/book"
	"github.com/Sternrassler/book-scraper/pkg/client"
	"github.com/Sternrassler/book-scraper/pkg/export"
	"github.com/Sternrassler/book-scraper/pkg/logging"
	"github.com/Sternrassler/book-scraper/pkg/pagination"
)

// Uploader ships the encoded output after the local write.
// *s3.Uploader satisfies it.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte) (string, error)
}

// Options configures a Scraper.
type Options struct {
	Pagination pagination.Config

	// Output is the path of the JSON file (default data.json)
	Output string

	// Progress shows a progress bar for detail fetching on ProgressWriter
	Progress       bool
	ProgressWriter io.Writer

	// Uploader optionally receives the output under UploadKey
	Uploader  Uploader
	UploadKey string
}

// Summary describes a finished run.
type Summary struct {
	PagesRequested int
	PagesFailed    int
	IDs            int
	DetailsFetched int
	DetailsFailed  int
	Records        int
	Output         string
	UploadLocation string
	Elapsed        time.Duration
}

// Scraper runs the pipeline against one client.
type Scraper struct {
	client *client.Client
	opts   Options
	logger zerolog.Logger
}

// New creates a scraper.
func New(c *client.Client, opts Options) *Scraper {
	if opts.Output == "" {
		opts.Output = export.DefaultPath
	}
	if opts.ProgressWriter == nil {
		opts.ProgressWriter = os.Stderr
	}
	return &Scraper{
		client: c,
		opts:   opts,
		logger: logging.NewLogger("scraper"),
	}
}

// Run executes one scrape. Transport failures of single requests only reduce
// the output; every other error aborts the run before anything is written.
func (s *Scraper) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{Output: s.opts.Output}

	list, err := pagination.NewCollector(s.client, s.opts.Pagination).CollectIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect ids: %w", err)
	}
	summary.PagesRequested = list.Pages
	summary.PagesFailed = list.FailedPages
	summary.IDs = len(list.IDs)

	var bar *progressbar.ProgressBar
	var progress pagination.Progress
	if s.opts.Progress && len(list.IDs) > 0 {
		bar = s.newProgressBar(len(list.IDs))
		progress = bar
	}

	details, err := pagination.NewBatcher(s.client, s.opts.Pagination, progress).FetchDetails(ctx, list.IDs)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return nil, fmt.Errorf("fetch details: %w", err)
	}
	summary.DetailsFailed = details.Failed
	summary.DetailsFetched = len(details.Details) - details.Failed

	records := book.Extract(details.Details)
	summary.Records = len(records)

	data, err := export.Write(s.opts.Output, records)
	if err != nil {
		return nil, err
	}

	if s.opts.Uploader != nil {
		location, err := s.opts.Uploader.Upload(ctx, s.opts.UploadKey, data)
		if err != nil {
			return nil, fmt.Errorf("upload output: %w", err)
		}
		summary.UploadLocation = location
	}

	summary.Elapsed = time.Since(start)
	s.logSummary(summary)

	return summary, nil
}

func (s *Scraper) newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(s.opts.ProgressWriter),
		progressbar.OptionSetDescription("Fetching details"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("books"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(s.opts.ProgressWriter)
		}),
	)
}

func (s *Scraper) logSummary(summary *Summary) {
	event := s.logger.Info().
		Int("pages_requested", summary.PagesRequested).
		Int("pages_failed", summary.PagesFailed).
		Int("ids", summary.IDs).
		Int("details_fetched", summary.DetailsFetched).
		Int("details_failed", summary.DetailsFailed).
		Int("records", summary.Records).
		Str("output", summary.Output).
		Dur("elapsed", summary.Elapsed)
	if summary.UploadLocation != "" {
		event = event.Str("upload", summary.UploadLocation)
	}
	event.Msg("Scrape complete")
}
