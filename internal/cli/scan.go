package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/cardrisk/internal/hub"
	"github.com/ppiankov/cardrisk/internal/model"
	"github.com/ppiankov/cardrisk/internal/pipeline"
)

var (
	outDir      string
	noScore     bool
	noCache     bool
	scanTimeout time.Duration
	userAgent   string
	maxBytes    int64
	endpoint    string
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <repo-id or URL>",
	Short: "Fetch a model card, render its summary, and score its risk",
	Long: `Scan fetches one model from the Hugging Face Hub and writes:
- <owner__name>.md          Markdown summary of the card and key facts
- <owner__name>_risk.md     risk scorecard with per-dimension rationales
- <owner__name>_risk.json   the same scorecard for machine consumption

Accepts a bare repo id or a full hub URL.

Example:
  cardrisk scan meta-llama/Llama-3.1-8B
  cardrisk scan https://huggingface.co/mistralai/Mistral-7B-v0.1
  cardrisk scan TheBloke/Llama-2-7B-GGUF --no-score --out-dir ./reports
  cardrisk scan meta-llama/Llama-3.1-8B --llm --llm-provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	// Output flags
	scanCmd.Flags().StringVar(&outDir, "out-dir", ".", "output directory for reports")
	scanCmd.Flags().BoolVar(&noScore, "no-score", false, "render the summary only, skip risk scoring")

	// Hub flags
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 2*time.Minute, "overall scan timeout")
	scanCmd.Flags().StringVar(&userAgent, "ua", "cardrisk/0.1 (+https://github.com/ppiankov/cardrisk)", "HTTP User-Agent")
	scanCmd.Flags().Int64Var(&maxBytes, "max-bytes", 4_000_000, "max response bytes to read")
	scanCmd.Flags().StringVar(&endpoint, "endpoint", "", "hub endpoint override (default https://huggingface.co)")
	scanCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")

	// LLM flags
	scanCmd.Flags().BoolVar(&llmEnabled, "llm", false, "generate an LLM reviewer note for the scorecard")
	scanCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	scanCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default when empty)")
}

func runScan(cmd *cobra.Command, args []string) error {
	input := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	cfg := loadConfig()
	cfg.Hub.Timeout = scanTimeout
	cfg.Hub.UserAgent = userAgent
	cfg.Hub.MaxBodyBytes = maxBytes
	if endpoint != "" {
		cfg.Hub.Endpoint = endpoint
	}
	cfg.Cache.Enabled = !noCache

	if llmEnabled {
		if err := configureLLM(cfg); err != nil {
			return err
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Scanning: %s\n", hub.ExtractRepoID(input))
		fmt.Fprintf(os.Stderr, "Endpoint: %s\n", cfg.Hub.Endpoint)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p := pipeline.NewPipeline(cfg)

	result, err := p.ScanModel(ctx, input, !noScore)
	if err != nil {
		switch {
		case errors.Is(err, hub.ErrNotFound):
			return fmt.Errorf("model not found: %s", hub.ExtractRepoID(input))
		case errors.Is(err, hub.ErrUnauthorized):
			return fmt.Errorf("model is gated or private: %s (set HF_TOKEN to access it)", hub.ExtractRepoID(input))
		default:
			return fmt.Errorf("scan failed: %w", err)
		}
	}

	if err := p.WriteOutputs(result, outDir, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if result.Report != nil {
		fmt.Printf("%s  %s\n", result.Record.RepoID, pipeline.ConsoleVerdict(result.Report))
	} else {
		fmt.Printf("%s  summary written\n", result.Record.RepoID)
	}

	return nil
}

// configureLLM fills in provider settings and API keys from the
// environment. Keys never travel through flags or config files.
func configureLLM(cfg *model.Config) error {
	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel

	switch llmProvider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}
