package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/cardrisk/internal/cache"
	"github.com/ppiankov/cardrisk/internal/hub"
	"github.com/ppiankov/cardrisk/internal/model"
)

const testCard = `---
license: apache-2.0
datasets:
  - c4
---
# Test Model

A 7B parameter test model.
`

func newHubServer(t *testing.T, requests *int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(requests, 1)
		switch r.URL.Path {
		case "/api/models/test-org/test-model":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"id": "test-org/test-model",
				"sha": "abc123",
				"lastModified": "2024-07-23T15:42:00.000Z",
				"downloads": 4200,
				"likes": 17,
				"pipeline_tag": "text-generation",
				"library_name": "transformers"
			}`))
		case "/test-org/test-model/raw/main/README.md":
			w.Write([]byte(testCard))
		default:
			http.NotFound(w, r)
		}
	}))
}

func testConfig(endpoint string) *model.Config {
	cfg := model.DefaultConfig()
	cfg.Hub.Endpoint = endpoint
	cfg.Hub.Timeout = 5 * time.Second
	return cfg
}

func TestFetcher_FetchModel(t *testing.T) {
	var requests int64
	server := newHubServer(t, &requests)
	defer server.Close()

	f := NewFetcher(testConfig(server.URL), nil, nil)
	rec, err := f.FetchModel(context.Background(), "test-org/test-model")
	if err != nil {
		t.Fatalf("FetchModel failed: %v", err)
	}

	if rec.RepoID != "test-org/test-model" {
		t.Errorf("Expected repo id test-org/test-model, got %s", rec.RepoID)
	}
	if rec.License != "apache-2.0" {
		t.Errorf("Expected license apache-2.0, got %q", rec.License)
	}
	if rec.SHA != "abc123" {
		t.Errorf("Expected sha abc123, got %q", rec.SHA)
	}
	if rec.Downloads30d != 4200 {
		t.Errorf("Expected 4200 downloads, got %d", rec.Downloads30d)
	}
	if rec.ParamsB == nil || *rec.ParamsB != 7 {
		t.Errorf("Expected 7B parsed from card, got %v", rec.ParamsB)
	}
	if len(rec.Datasets) != 1 || rec.Datasets[0] != "c4" {
		t.Errorf("Expected datasets [c4], got %v", rec.Datasets)
	}
	if requests != 2 {
		t.Errorf("Expected 2 hub requests (info + card), got %d", requests)
	}
}

func TestFetcher_CacheMemoizes(t *testing.T) {
	var requests int64
	server := newHubServer(t, &requests)
	defer server.Close()

	mem := cache.NewMemoryCache(time.Minute, time.Minute)
	f := NewFetcher(testConfig(server.URL), mem, nil)

	first, err := f.FetchModel(context.Background(), "test-org/test-model")
	if err != nil {
		t.Fatalf("First fetch failed: %v", err)
	}
	if requests != 2 {
		t.Fatalf("Expected 2 requests after first fetch, got %d", requests)
	}

	second, err := f.FetchModel(context.Background(), "test-org/test-model")
	if err != nil {
		t.Fatalf("Second fetch failed: %v", err)
	}
	if requests != 2 {
		t.Errorf("Expected cache hit with no new requests, got %d total", requests)
	}
	if second.License != first.License || second.SHA != first.SHA {
		t.Error("Cached record differs from fresh record")
	}
}

func TestFetcher_CorruptCacheEntryRefetches(t *testing.T) {
	var requests int64
	server := newHubServer(t, &requests)
	defer server.Close()

	mem := cache.NewMemoryCache(time.Minute, time.Minute)
	mem.Set(cache.Key("test-org/test-model"), []byte("{garbage"), time.Minute)

	f := NewFetcher(testConfig(server.URL), mem, nil)
	rec, err := f.FetchModel(context.Background(), "test-org/test-model")
	if err != nil {
		t.Fatalf("FetchModel failed: %v", err)
	}
	if rec.License != "apache-2.0" {
		t.Errorf("Expected fresh fetch after corrupt entry, got license %q", rec.License)
	}
	if requests != 2 {
		t.Errorf("Expected 2 requests after dropping corrupt entry, got %d", requests)
	}
}

func TestFetcher_NotFoundPropagates(t *testing.T) {
	var requests int64
	server := newHubServer(t, &requests)
	defer server.Close()

	mem := cache.NewMemoryCache(time.Minute, time.Minute)
	f := NewFetcher(testConfig(server.URL), mem, nil)

	_, err := f.FetchModel(context.Background(), "nobody/nothing")
	if !errors.Is(err, hub.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	// Failures are never cached
	if _, found := mem.Get(cache.Key("nobody/nothing")); found {
		t.Error("Expected no cache entry for a failed fetch")
	}
}
