package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/truthlens/internal/model"
	"github.com/ppiankov/truthlens/internal/pipeline"
	"github.com/ppiankov/truthlens/internal/worker"
)

var (
	analyzeContent string
	analyzeURL     string
	analyzeTimeout time.Duration
	compact        bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [text-or-url]",
	Short: "Assess the credibility of one claim",
	Long: `Analyze extracts the claim from text or a web page, gathers fact-checks,
web and news evidence, estimates bias, asks the verifier for an
evidence-constrained verdict and prints the aggregated result as JSON.

Example:
  truthlens analyze "The Eiffel Tower is located in Paris."
  truthlens analyze --url https://en.wikipedia.org/wiki/Laksa
  truthlens analyze --content "GDP grew 3 percent in 2023." --compact`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeContent, "content", "", "text containing the claim")
	analyzeCmd.Flags().StringVar(&analyzeURL, "url", "", "page to extract the claim from")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 2*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().BoolVar(&compact, "compact", false, "print single-line JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	req := model.AnalysisRequest{Content: analyzeContent, URL: analyzeURL}
	if len(args) == 1 && req.Empty() {
		req = worker.RequestFor(args[0])
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), analyzeTimeout)
	defer cancel()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	return analyzeTo(ctx, cmd.OutOrStdout(), a.pipeline, req, !compact)
}

// analyzeTo runs one analysis and writes the result as JSON. Only the
// public message of a failure is returned.
func analyzeTo(ctx context.Context, w io.Writer, analyzer worker.Analyzer, req model.AnalysisRequest, indent bool) error {
	result, err := analyzer.Analyze(ctx, req)
	if err != nil {
		msg, _ := pipeline.PublicMessage(err)
		return errors.New(msg)
	}

	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
