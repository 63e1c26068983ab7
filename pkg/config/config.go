// Package config loads the scraper configuration from the environment.
//
// An optional .env file in the working directory is read first; variables
// already set in the environment take precedence over it. Every setting has a
// default, so an empty environment yields a runnable configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Sternrassler/book-scraper/pkg/cache"
	"github.com/Sternrassler/book-scraper/pkg/client"
	"github.com/Sternrassler/book-scraper/pkg/export"
	"github.com/Sternrassler/book-scraper/pkg/pagination"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// DefaultUserAgent is sent when USER_AGENT is unset.
const DefaultUserAgent = "book-scraper/0.1.0"

// Config is the complete runtime configuration.
type Config struct {
	// Book API
	BaseURL          string
	Pages            int
	PageSize         int
	Limit            int
	Concurrency      int
	ChunkSize        int
	ChunkParallelism int
	Output           string

	// HTTP
	UserAgent      string
	RequestTimeout time.Duration
	RequestRPS     float64
	RequestBurst   int

	// Optional response cache (empty RedisURL disables it)
	RedisURL string
	CacheTTL time.Duration

	// Optional Prometheus endpoint (empty disables it)
	MetricsAddr string

	// Progress bar on stderr during detail fetching
	Progress bool

	// Optional upload of the output file (empty bucket disables it)
	S3Bucket   string
	S3Endpoint string
	S3Region   string
	S3Key      string

	// Logging
	LogLevel  string
	LogPretty bool
}

// Load reads .env (if present) and the environment.
func Load() Config {
	_ = godotenv.Load(".env")

	return Config{
		BaseURL:          GetEnv("BOOK_API_BASE_URL", pagination.DefaultBaseURL),
		Pages:            ParseInt(os.Getenv("BOOK_PAGES"), pagination.DefaultPages),
		PageSize:         ParseInt(os.Getenv("BOOK_PAGE_SIZE"), pagination.DefaultPageSize),
		Limit:            ParseInt(os.Getenv("BOOK_PAGE_LIMIT"), pagination.DefaultLimit),
		Concurrency:      ParseInt(os.Getenv("BOOK_CONCURRENCY"), client.DefaultMaxConcurrency),
		ChunkSize:        ParseInt(os.Getenv("BOOK_CHUNK_SIZE"), pagination.DefaultChunkSize),
		ChunkParallelism: ParseInt(os.Getenv("BOOK_CHUNK_PARALLELISM"), pagination.DefaultChunkParallelism),
		Output:           GetEnv("BOOK_OUTPUT", export.DefaultPath),

		UserAgent:      GetEnv("USER_AGENT", DefaultUserAgent),
		RequestTimeout: ParseDuration(os.Getenv("REQUEST_TIMEOUT"), 0),
		RequestRPS:     ParseFloat(os.Getenv("REQUEST_RPS"), 0),
		RequestBurst:   ParseInt(os.Getenv("REQUEST_BURST"), 1),

		RedisURL: os.Getenv("REDIS_URL"),
		CacheTTL: ParseDuration(os.Getenv("CACHE_TTL"), cache.DefaultTTL),

		MetricsAddr: os.Getenv("METRICS_ADDR"),
		Progress:    ParseBool(os.Getenv("PROGRESS"), false),

		S3Bucket:   os.Getenv("S3_BUCKET"),
		S3Endpoint: os.Getenv("S3_ENDPOINT"),
		S3Region:   GetEnv("S3_REGION", "us-east-1"),
		S3Key:      os.Getenv("S3_KEY"),

		LogLevel:  GetEnv("LOG_LEVEL", "info"),
		LogPretty: ParseBool(os.Getenv("LOG_PRETTY"), true),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.BaseURL) == "" {
		problems = append(problems, "BOOK_API_BASE_URL must not be empty")
	}
	if strings.TrimSpace(c.Output) == "" {
		problems = append(problems, "BOOK_OUTPUT must not be empty")
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		problems = append(problems, "USER_AGENT must not be empty")
	}

	positive := []struct {
		name  string
		value int
	}{
		{"BOOK_PAGES", c.Pages},
		{"BOOK_PAGE_SIZE", c.PageSize},
		{"BOOK_PAGE_LIMIT", c.Limit},
		{"BOOK_CONCURRENCY", c.Concurrency},
		{"BOOK_CHUNK_SIZE", c.ChunkSize},
		{"BOOK_CHUNK_PARALLELISM", c.ChunkParallelism},
		{"REQUEST_BURST", c.RequestBurst},
	}
	for _, p := range positive {
		if p.value <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be > 0 (got %d)", p.name, p.value))
		}
	}

	if c.RequestTimeout < 0 {
		problems = append(problems, fmt.Sprintf("REQUEST_TIMEOUT must be >= 0 (got %s)", c.RequestTimeout))
	}
	if c.RequestRPS < 0 {
		problems = append(problems, fmt.Sprintf("REQUEST_RPS must be >= 0 (got %g)", c.RequestRPS))
	}
	if c.RedisURL != "" && c.CacheTTL <= 0 {
		problems = append(problems, fmt.Sprintf("CACHE_TTL must be > 0 (got %s)", c.CacheTTL))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// Pagination returns the list and chunk settings.
func (c Config) Pagination() pagination.Config {
	return pagination.Config{
		BaseURL:          c.BaseURL,
		Pages:            c.Pages,
		PageSize:         c.PageSize,
		Limit:            c.Limit,
		ChunkSize:        c.ChunkSize,
		ChunkParallelism: c.ChunkParallelism,
	}
}

// UploadKey returns the object key for the uploaded output, defaulting to
// the output file name.
func (c Config) UploadKey() string {
	if c.S3Key != "" {
		return c.S3Key
	}
	return c.Output[strings.LastIndex(c.Output, "/")+1:]
}

// GetEnv returns the environment variable value or a fallback if unset.
func GetEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

// ParseDuration parses a duration string with a fallback.
func ParseDuration(value string, fallback time.Duration) time.Duration {
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// ParseInt parses an int string with a fallback.
func ParseInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// ParseFloat parses a float string with a fallback.
func ParseFloat(value string, fallback float64) float64 {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

// ParseBool parses a bool string with a fallback.
func ParseBool(value string, fallback bool) bool {
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
