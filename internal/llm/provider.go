// Package llm generates an optional plain-language reviewer summary of a
// risk scorecard. The summary is produced after scoring and never feeds
// back into it; it lands in a separate file so the scored artifacts stay
// reproducible without any model in the loop.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/cardrisk/internal/model"
	"github.com/ppiankov/cardrisk/internal/score"
)

// Provider is one LLM backend.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Complete returns the completion for a prompt.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds provider configuration.
type Config struct {
	Provider  string // "openai", "ollama", ""
	Model     string
	APIKey    string
	BaseURL   string
	Timeout   int // seconds
	MaxTokens int
}

// ConfigFromModel converts the app-level LLM config.
func ConfigFromModel(c model.LLMConfig) Config {
	return Config{
		Provider:  c.Provider,
		Model:     c.Model,
		APIKey:    c.APIKey,
		BaseURL:   c.BaseURL,
		Timeout:   c.Timeout,
		MaxTokens: c.MaxTokens,
	}
}

// NewProvider creates a provider from configuration. An empty provider
// name means LLM summaries are disabled and yields nil, nil.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)
	case "ollama":
		return NewOllamaProvider(config)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama)", config.Provider)
	}
}

// BuildPrompt constructs the reviewer-summary prompt. The model only sees
// facts already present in the scorecard; it adds wording, not judgment.
func BuildPrompt(rec *model.ModelRecord, report *model.ScoreReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are writing a short reviewer note for a machine-learning model risk scorecard.

RULES:
1. Only restate facts from the scorecard below. Do not invent licenses, owners, sizes, or datasets.
2. Do not change or second-guess any score or the overall verdict.
3. If a dimension scored red, say plainly what a reviewer should check before adoption.

Model: %s
Overall verdict: %s (%d / %d, %.1f%%)

Dimensions:
`, rec.RepoID, report.Overall.Band, report.Overall.Score, report.Overall.Max, report.Overall.Percent)

	for _, dim := range score.Dimensions {
		if d, ok := report.Details[dim]; ok {
			fmt.Fprintf(&b, "- %s: %s — %s\n", dim, d.Band(), d.Rationale)
		}
	}

	b.WriteString("\nWrite 3-4 sentences for a reviewer deciding whether to adopt this model.")
	return b.String()
}
