package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/cardrisk/internal/cache"
	"github.com/ppiankov/cardrisk/internal/hub"
	"github.com/ppiankov/cardrisk/internal/llm"
	"github.com/ppiankov/cardrisk/internal/model"
	"github.com/ppiankov/cardrisk/internal/policy"
	"github.com/ppiankov/cardrisk/internal/score"
	"github.com/ppiankov/cardrisk/internal/worker"
)

// Pipeline orchestrates one scan: fetch, normalize, render, score.
type Pipeline struct {
	fetcher    *Fetcher
	scorer     *score.Scorer
	policies   *policy.Store
	renderer   *Renderer
	summarizer *llm.Summarizer // nil when disabled
	config     *model.Config
}

// NewPipeline wires a pipeline from configuration.
func NewPipeline(cfg *model.Config) *Pipeline {
	var c cache.Cache
	if cfg.Cache.Enabled {
		if cfg.Cache.Dir != "" {
			c = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		} else {
			c = cache.NewMemoryCache(cfg.Cache.MemoryTTL, cfg.Cache.MemoryTTL)
		}
	}

	var limiter *worker.Limiter
	if cfg.RateLimiting.RequestsPerSecond > 0 {
		limiter = worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	}

	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize LLM provider: %v\n", err)
		} else {
			summarizer = s
		}
	}

	return &Pipeline{
		fetcher:    NewFetcher(cfg, c, limiter),
		scorer:     score.NewScorer(),
		policies:   policy.NewStore(cfg.Policy.Dir),
		renderer:   NewRenderer(cfg.Hub.Endpoint),
		summarizer: summarizer,
		config:     cfg,
	}
}

// ScanResult holds everything one scan produced.
type ScanResult struct {
	Record  *model.ModelRecord
	Summary string             // model summary Markdown
	Report  *model.ScoreReport // nil when scoring was skipped
	LLM     string             // reviewer summary Markdown, "" when disabled
}

// ScanModel fetches one model and builds its summary, plus the risk
// scorecard unless withScore is false. Fetch errors abort the scan with
// no partial output.
func (p *Pipeline) ScanModel(ctx context.Context, urlOrID string, withScore bool) (*ScanResult, error) {
	repoID := hub.ExtractRepoID(urlOrID)

	rec, err := p.fetcher.FetchModel(ctx, repoID)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", repoID, err)
	}

	result := &ScanResult{
		Record:  rec,
		Summary: p.renderer.SummaryMarkdown(rec),
	}

	if withScore {
		pol := p.policies.Load()
		report := p.scorer.Score(rec, pol)
		result.Report = &report
	}

	// Reviewer summary runs after scoring and never feeds back into it.
	if p.summarizer != nil && result.Report != nil {
		text, err := p.summarizer.Summarize(ctx, rec, result.Report)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: LLM summary failed: %v\n", err)
		} else {
			result.LLM = text
		}
	}

	return result, nil
}

// WriteOutputs writes the scan outputs under dir and reports each path on
// stderr when verbose.
func (p *Pipeline) WriteOutputs(result *ScanResult, dir string, verbose bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	path, err := p.renderer.WriteSummary(result.Record, dir)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote summary: %s\n", path)
	}

	if result.Report != nil {
		mdPath, jsonPath, err := p.renderer.WriteScorecard(result.Report, dir)
		if err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote scorecard: %s\n", mdPath)
			fmt.Fprintf(os.Stderr, "✓ Wrote scorecard JSON: %s\n", jsonPath)
		}
	}

	if result.LLM != "" {
		llmPath := filepath.Join(dir, Slug(result.Record.RepoID)+"_risk.llm.md")
		if err := os.WriteFile(llmPath, []byte(result.LLM), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to write LLM summary: %v\n", err)
		} else if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote LLM summary: %s\n", llmPath)
		}
	}

	return nil
}
