package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// ScanFunc scores a single repo id end to end. The batch processor stays
// decoupled from the pipeline: callers close over whatever scan they want.
type ScanFunc func(ctx context.Context, repoID string) error

// ScanJob runs one repo id through the scan function.
type ScanJob struct {
	RepoID string
	Scan   ScanFunc
}

// Execute runs the job.
func (j *ScanJob) Execute(ctx context.Context) Result {
	return &ScanResult{
		RepoID: j.RepoID,
		Err:    j.Scan(ctx, j.RepoID),
	}
}

// ScanResult is the outcome of one batch entry.
type ScanResult struct {
	RepoID string
	Err    error
}

// GetError returns the scan error, if any.
func (r *ScanResult) GetError() error {
	return r.Err
}

// BatchProcessor scores many repo ids concurrently. Each id is an
// independent request; nothing is shared between them but the fetch cache.
type BatchProcessor struct {
	scan        ScanFunc
	concurrency int
}

// NewBatchProcessor creates a batch processor.
func NewBatchProcessor(scan ScanFunc, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		scan:        scan,
		concurrency: concurrency,
	}
}

// ProcessIDs scores the given repo ids concurrently.
func (b *BatchProcessor) ProcessIDs(ctx context.Context, ids []string) []*ScanResult {
	if len(ids) == 0 {
		return []*ScanResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, id := range ids {
		pool.Submit(&ScanJob{RepoID: id, Scan: b.scan})
	}

	results := pool.Wait()

	scanResults := make([]*ScanResult, len(results))
	for i, result := range results {
		scanResults[i] = result.(*ScanResult)
	}
	return scanResults
}

// ProcessFile reads repo ids from a file (one per line) and scores them.
func (b *BatchProcessor) ProcessFile(ctx context.Context, path string) ([]*ScanResult, error) {
	ids, err := ReadRepoIDsFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("read repo ids: %w", err)
	}
	return b.ProcessIDs(ctx, ids), nil
}

// ReadRepoIDsFromFile reads repo ids or hub URLs from a file, one per
// line, skipping blanks and # comments and deduplicating.
func ReadRepoIDsFromFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var ids []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			ids = append(ids, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return ids, nil
}
