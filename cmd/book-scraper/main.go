package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/book-scraper/pkg/cache"
	"github.com/Sternrassler/book-scraper/pkg/client"
	"github.com/Sternrassler/book-scraper/pkg/config"
	"github.com/Sternrassler/book-scraper/pkg/logging"
	"github.com/Sternrassler/book-scraper/pkg/metrics"
	"github.com/Sternrassler/book-scraper/pkg/ratelimit"
	"github.com/Sternrassler/book-scraper/pkg/scraper"
	"github.com/Sternrassler/book-scraper/pkg/storage/s3"
)

func main() {
	cfg := config.Load()

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		log.Error().Err(err).Msg("Scrape failed")
		stop()
		os.Exit(1)
	}
}

// run wires the configured components, executes one scrape and prints the
// elapsed time to stdout.
func run(ctx context.Context, cfg config.Config, stdout io.Writer) error {
	start := time.Now()

	if err := cfg.Validate(); err != nil {
		return err
	}

	clientCfg := client.DefaultConfig(cfg.UserAgent)
	clientCfg.MaxConcurrency = cfg.Concurrency
	clientCfg.RequestTimeout = cfg.RequestTimeout
	clientCfg.Throttle = ratelimit.New(cfg.RequestRPS, cfg.RequestBurst, logging.NewLogger("ratelimit"))

	if cfg.RedisURL != "" {
		redisClient, err := connectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		clientCfg.Cache = cache.NewManager(redisClient, cfg.CacheTTL)
	}

	apiClient, err := client.New(clientCfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	if cfg.MetricsAddr != "" {
		metricsCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if _, err := metrics.Serve(metricsCtx, cfg.MetricsAddr); err != nil {
			return err
		}
	}

	opts := scraper.Options{
		Pagination: cfg.Pagination(),
		Output:     cfg.Output,
		Progress:   cfg.Progress,
	}
	if cfg.S3Bucket != "" {
		uploader, err := s3.New(ctx, s3.Options{
			Bucket:   cfg.S3Bucket,
			Endpoint: cfg.S3Endpoint,
			Region:   cfg.S3Region,
		})
		if err != nil {
			return err
		}
		opts.Uploader = uploader
		opts.UploadKey = cfg.UploadKey()
	}

	log.Info().
		Str("base_url", cfg.BaseURL).
		Int("pages", cfg.Pages).
		Int("concurrency", cfg.Concurrency).
		Int("chunk_size", cfg.ChunkSize).
		Str("user_agent", cfg.UserAgent).
		Msg("Starting scrape")

	if _, err := scraper.New(apiClient, opts).Run(ctx); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%v seconds\n", time.Since(start).Seconds())
	return nil
}

// connectRedis accepts either a redis:// URL or a host:port address.
func connectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts := &redis.Options{Addr: redisURL}
	if strings.Contains(redisURL, "://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		opts = parsed
	}

	redisClient := redis.NewClient(opts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}
	log.Info().Str("addr", opts.Addr).Msg("Connected to Redis")

	return redisClient, nil
}
