package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ppiankov/cardrisk/internal/cache"
	"github.com/ppiankov/cardrisk/internal/card"
	"github.com/ppiankov/cardrisk/internal/hub"
	"github.com/ppiankov/cardrisk/internal/model"
	"github.com/ppiankov/cardrisk/internal/worker"
)

// Fetcher retrieves model metadata and card text, memoizing the raw fetch
// payload per repo id. Caching the payload rather than the rendered output
// lets policy edits re-score without another hub round trip.
type Fetcher struct {
	client   *hub.Client
	cache    cache.Cache     // nil disables memoization
	limiter  *worker.Limiter // nil disables throttling
	endpoint string
	ttl      time.Duration
}

// fetchPayload is the cached unit: both hub responses for one repo.
type fetchPayload struct {
	Info     *hub.ModelInfo `json:"info"`
	CardText string         `json:"card_text"`
}

// NewFetcher creates a fetcher. Pass a nil cache or limiter to disable the
// respective behavior.
func NewFetcher(cfg *model.Config, c cache.Cache, limiter *worker.Limiter) *Fetcher {
	return &Fetcher{
		client: hub.NewClient(
			cfg.Hub.Endpoint,
			cfg.Hub.Timeout,
			cfg.Hub.UserAgent,
			cfg.Hub.Token,
			cfg.Hub.MaxBodyBytes,
		),
		cache:    c,
		limiter:  limiter,
		endpoint: cfg.Hub.Endpoint,
		ttl:      cfg.Cache.MemoryTTL,
	}
}

// FetchModel returns the normalized record for a repo id, from cache when
// possible. Fetch errors (including ErrNotFound and ErrUnauthorized)
// propagate unmodified; nothing partial is cached.
func (f *Fetcher) FetchModel(ctx context.Context, repoID string) (*model.ModelRecord, error) {
	key := cache.Key(repoID)

	if f.cache != nil {
		if data, found := f.cache.Get(key); found {
			var payload fetchPayload
			if err := json.Unmarshal(data, &payload); err == nil && payload.Info != nil {
				return card.BuildRecord(repoID, payload.Info, payload.CardText), nil
			}
			// Corrupt entry: drop it and fetch fresh.
			_ = f.cache.Delete(key)
		}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, f.endpoint); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}
	info, err := f.client.ModelInfo(ctx, repoID)
	if err != nil {
		return nil, err
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, f.endpoint); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}
	cardText, err := f.client.ModelCard(ctx, repoID)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		payload := fetchPayload{Info: info, CardText: cardText}
		if data, err := json.Marshal(payload); err == nil {
			_ = f.cache.Set(key, data, f.ttl)
		}
	}

	return card.BuildRecord(repoID, info, cardText), nil
}
