package worker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/truthlens/internal/model"
)

// Analyzer produces a credibility verdict for one request
type Analyzer interface {
	Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AggregateResult, error)
}

// AnalysisJob analyzes one batch input
type AnalysisJob struct {
	Input    string
	Request  model.AnalysisRequest
	Analyzer Analyzer
}

// Execute executes the analysis job
func (j *AnalysisJob) Execute(ctx context.Context) Result {
	result, err := j.Analyzer.Analyze(ctx, j.Request)
	return &AnalysisResult{Input: j.Input, Result: result, Error: err}
}

// AnalysisResult is the outcome of one batch input
type AnalysisResult struct {
	Input  string                 `json:"input"`
	Result *model.AggregateResult `json:"result,omitempty"`
	Error  error                  `json:"-"`
}

// GetError returns the error from the analysis
func (r *AnalysisResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes many inputs concurrently
type BatchProcessor struct {
	analyzer Analyzer
	pool     *Pool
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer: analyzer,
		pool:     NewPool(concurrency),
	}
}

// Process analyzes the inputs and returns results in input order. Lines
// starting with http:// or https:// are treated as URLs, anything else as content.
func (b *BatchProcessor) Process(ctx context.Context, inputs []string) []*AnalysisResult {
	jobs := make([]Job, len(inputs))
	for i, input := range inputs {
		jobs[i] = &AnalysisJob{
			Input:    input,
			Request:  RequestFor(input),
			Analyzer: b.analyzer,
		}
	}

	results := b.pool.Run(ctx, jobs)

	out := make([]*AnalysisResult, len(results))
	for i, r := range results {
		if ar, ok := r.(*AnalysisResult); ok {
			out[i] = ar
			continue
		}
		out[i] = &AnalysisResult{Input: inputs[i], Error: r.GetError()}
	}
	return out
}

// RequestFor maps one batch line to a request
func RequestFor(input string) model.AnalysisRequest {
	lower := strings.ToLower(input)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return model.AnalysisRequest{URL: input}
	}
	return model.AnalysisRequest{Content: input}
}

// ReadInputs reads one input per line, skipping blanks, # comments and duplicates
func ReadInputs(r io.Reader) ([]string, error) {
	var inputs []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			inputs = append(inputs, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}
	return inputs, nil
}
