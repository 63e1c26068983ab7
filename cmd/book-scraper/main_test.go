package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/Sternrassler/book-scraper/internal/testutil"
	"github.com/Sternrassler/book-scraper/pkg/config"
)

func testConfig(t *testing.T, baseURL string) config.Config {
	t.Helper()

	return config.Config{
		BaseURL:          baseURL,
		Pages:            2,
		PageSize:         1,
		Limit:            18,
		Concurrency:      4,
		ChunkSize:        100,
		ChunkParallelism: 1,
		Output:           filepath.Join(t.TempDir(), "data.json"),
		UserAgent:        "book-scraper-test/1.0",
		RequestBurst:     1,
		CacheTTL:         10 * time.Minute,
	}
}

func TestRun(t *testing.T) {
	api := testutil.NewMockBookAPI()
	defer api.Close()
	api.SetListPage(0, 1)
	api.SetListPage(1, 2)
	api.SetDetail("1", `{"name":"Foo"}`)
	api.SetDetail("2", `{"name":"Bar"}`)

	cfg := testConfig(t, api.URL())
	var stdout bytes.Buffer
	if err := run(context.Background(), cfg, &stdout); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !regexp.MustCompile(`^[0-9.e+-]+ seconds\n$`).MatchString(stdout.String()) {
		t.Errorf("stdout = %q, want \"<secs> seconds\\n\"", stdout.String())
	}

	data, err := os.ReadFile(cfg.Output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Contains(data, []byte(`"书名": "Foo"`)) || !bytes.Contains(data, []byte(`"书名": "Bar"`)) {
		t.Errorf("unexpected output:\n%s", data)
	}
	if got := api.UserAgents()["book-scraper-test/1.0"]; got != 4 {
		t.Errorf("requests with configured User-Agent = %d, want 4", got)
	}
}

func TestRun_Throttled(t *testing.T) {
	api := testutil.NewMockBookAPI()
	defer api.Close()

	cfg := testConfig(t, api.URL())
	cfg.RequestRPS = 100
	cfg.RequestBurst = 2

	if err := run(context.Background(), cfg, &bytes.Buffer{}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Concurrency = 0

	var stdout bytes.Buffer
	err := run(context.Background(), cfg, &stdout)
	if !errors.Is(err, config.ErrInvalid) {
		t.Errorf("run error = %v, want ErrInvalid", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("nothing should be printed on failure, got %q", stdout.String())
	}
}

func TestRun_RedisUnavailable(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.RedisURL = "127.0.0.1:1"

	if err := run(context.Background(), cfg, &bytes.Buffer{}); err == nil {
		t.Error("expected error when Redis is unreachable")
	}
}

func TestRun_MetricsEndpoint(t *testing.T) {
	api := testutil.NewMockBookAPI()
	defer api.Close()

	cfg := testConfig(t, api.URL())
	cfg.MetricsAddr = "127.0.0.1:0"

	if err := run(context.Background(), cfg, &bytes.Buffer{}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
}
