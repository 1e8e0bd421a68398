package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/cardrisk/internal/model"
)

// Summarizer wraps a provider and renders its output as a standalone
// Markdown document, clearly labeled as generated text.
type Summarizer struct {
	provider Provider
}

// NewSummarizer creates a summarizer for the configured provider. Returns
// an error when the provider name is set but cannot be constructed.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, fmt.Errorf("no LLM provider configured")
	}
	return &Summarizer{provider: provider}, nil
}

// Summarize produces the reviewer-note Markdown for one scorecard.
func (s *Summarizer) Summarize(ctx context.Context, rec *model.ModelRecord, report *model.ScoreReport) (string, error) {
	text, err := s.provider.Complete(ctx, BuildPrompt(rec, report))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Reviewer Note – %s\n\n", rec.RepoID)
	fmt.Fprintf(&b, "> Generated by %s. This note paraphrases the scorecard and does not affect any score.\n\n", s.provider.Name())
	b.WriteString(text)
	b.WriteString("\n")
	return b.String(), nil
}
