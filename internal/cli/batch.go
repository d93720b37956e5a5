package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/truthlens/internal/model"
	"github.com/ppiankov/truthlens/internal/pipeline"
	"github.com/ppiankov/truthlens/internal/worker"
)

var (
	concurrency  int
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file|->",
	Short: "Analyze many claims or URLs concurrently",
	Long: `Batch reads one input per line (blank lines and # comments are skipped,
duplicates are analyzed once). Lines starting with http:// or https:// are
fetched as pages, anything else is analyzed as text. One JSON object is
written per input, in input order.

Example:
  truthlens batch claims.txt
  cat claims.txt | truthlens batch - --concurrency 8`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

// batchLine is one JSON line of batch output
type batchLine struct {
	Input  string                 `json:"input"`
	Result *model.AggregateResult `json:"result,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	inputs, err := readBatchInputs(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no inputs in %s", args[0])
	}

	workers := concurrency
	if workers <= 0 {
		workers = cfg.Batch.Concurrency
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("batch started", "inputs", len(inputs), "workers", workers)
	failed, err := runBatchTo(ctx, cmd.OutOrStdout(), a.pipeline, inputs, workers)
	if err != nil {
		return err
	}
	logger.Info("batch complete", "inputs", len(inputs), "failed", failed)
	return nil
}

// runBatchTo analyzes inputs and writes JSON lines, returning the failure count
func runBatchTo(ctx context.Context, w io.Writer, analyzer worker.Analyzer, inputs []string, workers int) (int, error) {
	results := worker.NewBatchProcessor(analyzer, workers).Process(ctx, inputs)

	enc := json.NewEncoder(w)
	failed := 0
	for _, r := range results {
		line := batchLine{Input: r.Input, Result: r.Result}
		if r.Error != nil {
			failed++
			line.Error, _ = pipeline.PublicMessage(r.Error)
			line.Result = nil
		}
		if err := enc.Encode(line); err != nil {
			return failed, fmt.Errorf("write result: %w", err)
		}
	}
	return failed, nil
}

func readBatchInputs(name string, stdin io.Reader) (inputs []string, err error) {
	if name == "-" {
		return worker.ReadInputs(stdin)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close input file: %w", closeErr)
		}
	}()
	return worker.ReadInputs(f)
}
