package pagination

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/Sternrassler/book-scraper/internal/testutil"
	"github.com/Sternrassler/book-scraper/pkg/book"
	"github.com/Sternrassler/book-scraper/pkg/client"
)

func newTestClient(t *testing.T, maxConcurrency int) *client.Client {
	t.Helper()

	cfg := client.DefaultConfig("book-scraper-test/1.0")
	cfg.MaxConcurrency = maxConcurrency
	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}

func testConfig(baseURL string) Config {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	return cfg
}

func TestCollectIDs_FlattensInPageOrder(t *testing.T) {
	api := testutil.NewMockBookAPI()
	defer api.Close()
	api.SetListPage(0, 1, 2)
	api.SetListPage(1, "3", 4)
	api.SetListPage(2, 2)

	cfg := testConfig(api.URL())
	cfg.Pages = 3

	result, err := NewCollector(newTestClient(t, 10), cfg).CollectIDs(context.Background())
	if err != nil {
		t.Fatalf("CollectIDs failed: %v", err)
	}

	want := []book.ID{"1", "2", "3", "4", "2"}
	if !slices.Equal(result.IDs, want) {
		t.Errorf("IDs = %v, want %v", result.IDs, want)
	}
	if result.Pages != 3 || result.FailedPages != 0 {
		t.Errorf("Pages = %d, FailedPages = %d; want 3, 0", result.Pages, result.FailedPages)
	}

	for _, uri := range api.Requests() {
		if !strings.HasPrefix(uri, "/api/book/?limit=18&offset=") {
			t.Errorf("unexpected list request %q", uri)
		}
	}
	if api.RequestCount() != 3 {
		t.Errorf("RequestCount = %d, want 3", api.RequestCount())
	}
}

func TestCollectIDs_FailedPagesContributeNothing(t *testing.T) {
	api := testutil.NewMockBookAPI()
	defer api.Close()
	api.SetListPage(0, 1, 2)
	api.SetListResponse(1, testutil.NewServerErrorResponse())
	api.SetListResponse(2, testutil.NewDroppedResponse())
	api.SetListPage(3, 9)

	cfg := testConfig(api.URL())
	cfg.Pages = 4

	result, err := NewCollector(newTestClient(t, 10), cfg).CollectIDs(context.Background())
	if err != nil {
		t.Fatalf("CollectIDs failed: %v", err)
	}

	if want := []book.ID{"1", "2", "9"}; !slices.Equal(result.IDs, want) {
		t.Errorf("IDs = %v, want %v", result.IDs, want)
	}
	if result.FailedPages != 2 {
		t.Errorf("FailedPages = %d, want 2", result.FailedPages)
	}
}

func TestCollectIDs_AllPagesFail(t *testing.T) {
	api := testutil.NewMockBookAPI()
	defer api.Close()
	api.SetListResponse(0, testutil.NewNotFoundResponse())

	cfg := testConfig(api.URL())
	cfg.Pages = 1

	result, err := NewCollector(newTestClient(t, 10), cfg).CollectIDs(context.Background())
	if err != nil {
		t.Fatalf("CollectIDs failed: %v", err)
	}
	if result.IDs == nil || len(result.IDs) != 0 {
		t.Errorf("IDs = %#v, want empty non-nil slice", result.IDs)
	}
}

func TestCollectIDs_MissingID(t *testing.T) {
	api := testutil.NewMockBookAPI()
	defer api.Close()
	api.SetListResponse(0, testutil.NewOKResponse(`{"results": [{"id": 1}, {"name": "no id"}]}`))

	cfg := testConfig(api.URL())
	cfg.Pages = 1

	_, err := NewCollector(newTestClient(t, 10), cfg).CollectIDs(context.Background())
	if !errors.Is(err, book.ErrMissingID) {
		t.Errorf("Expected ErrMissingID, got %v", err)
	}
}

func TestCollectIDs_MalformedPage(t *testing.T) {
	api := testutil.NewMockBookAPI()
	defer api.Close()
	api.SetListResponse(0, testutil.NewOKResponse(`{"results": [`))

	cfg := testConfig(api.URL())
	cfg.Pages = 2

	_, err := NewCollector(newTestClient(t, 10), cfg).CollectIDs(context.Background())
	if err == nil {
		t.Fatal("Expected error for malformed list page")
	}
	if client.IsTransportFailure(err) {
		t.Errorf("Malformed page must not be a transport failure: %v", err)
	}
}
