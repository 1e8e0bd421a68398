package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/cardrisk/internal/hub"
	"github.com/ppiankov/cardrisk/internal/pipeline"
	"github.com/ppiankov/cardrisk/internal/worker"
)

var (
	concurrency  int
	batchOutDir  string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Score multiple models from a file in parallel",
	Long: `Batch reads repo ids or hub URLs from a file (one per line, # for
comments) and scores them concurrently. Each model gets its own summary,
scorecard, and scorecard JSON in the output directory. Models are
independent requests; a failure on one never aborts the rest.

Example:
  cardrisk batch models.txt
  cardrisk batch models.txt --concurrency 8 --out-dir ./reports
  cardrisk batch models.txt --no-score --timeout 5m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", "./cardrisk-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&noScore, "no-score", false, "render summaries only, skip risk scoring")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	batchCmd.Flags().StringVar(&endpoint, "endpoint", "", "hub endpoint override (default https://huggingface.co)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := loadConfig()
	cfg.Cache.Enabled = !noCache
	cfg.Concurrency.Workers = concurrency
	if endpoint != "" {
		cfg.Hub.Endpoint = endpoint
	}

	if err := os.MkdirAll(batchOutDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p := pipeline.NewPipeline(cfg)

	// Each worker runs the whole per-model job through this closure so the
	// worker layer stays ignorant of pipeline types. Verdicts are collected
	// under a lock; workers run concurrently.
	var mu sync.Mutex
	verdicts := make(map[string]string)

	scan := func(ctx context.Context, input string) error {
		result, err := p.ScanModel(ctx, input, !noScore)
		if err != nil {
			return err
		}
		if err := p.WriteOutputs(result, batchOutDir, false); err != nil {
			return err
		}
		if result.Report != nil {
			mu.Lock()
			verdicts[hub.ExtractRepoID(input)] = pipeline.ConsoleVerdict(result.Report)
			mu.Unlock()
		}
		return nil
	}

	processor := worker.NewBatchProcessor(scan, cfg.Concurrency.Workers)

	fmt.Fprintf(os.Stderr, "⚙️  Reading repo ids from %s...\n", file)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0
	for _, result := range results {
		if result.Err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.RepoID, result.Err)
			continue
		}
		successCount++

		repoID := hub.ExtractRepoID(result.RepoID)
		if v, ok := verdicts[repoID]; ok {
			fmt.Printf("%s  %s\n", repoID, v)
		} else {
			fmt.Printf("%s  summary written\n", repoID)
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d models\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", batchOutDir)

	return nil
}
