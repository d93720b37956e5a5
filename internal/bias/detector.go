package bias

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ppiankov/truthlens/internal/llm"
	"github.com/ppiankov/truthlens/internal/model"
)

// DefaultMaxChars bounds the content prefix sent to the reasoner
const DefaultMaxChars = 1000

const promptTemplate = `Analyze the following text for political, ideological, or partisan bias. Rate the bias level as Low, Medium, or High.

Text: "%s"

Criteria:
- Low: Neutral, factual, balanced reporting
- Medium: Some opinion language, mild slant, but mostly factual
- High: Strong partisan language, propaganda-like, heavily opinionated

Consider:
- Use of loaded or emotional language
- One-sided presentation
- Partisan keywords
- Balance of perspectives

Rate as: Low, Medium, or High
Explain briefly why:

Rating:`

// Detector rates the rhetorical slant of submitted content
type Detector struct {
	provider    llm.Provider
	maxChars    int
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

// NewDetector creates a detector. A nil provider always yields Low.
func NewDetector(provider llm.Provider, cfg model.BiasConfig, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxChars := cfg.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 100
	}
	return &Detector{
		provider:    provider,
		maxChars:    maxChars,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		logger:      logger.With("component", "bias"),
	}
}

// Detect rates content. Provider absence or failure degrades to Low.
func (d *Detector) Detect(ctx context.Context, content string) model.BiasLevel {
	if d.provider == nil {
		return model.BiasLow
	}

	resp, err := d.provider.Complete(ctx, llm.CompletionRequest{
		Prompt:      fmt.Sprintf(promptTemplate, Truncate(content, d.maxChars)),
		MaxTokens:   d.maxTokens,
		Temperature: d.temperature,
	})
	if err != nil {
		d.logger.Warn("bias detection failed, defaulting to Low",
			"provider", d.provider.Name(), "error", err)
		return model.BiasLow
	}
	return ParseLevel(resp.Text)
}

// ParseLevel searches for "high", then "medium", and defaults to Low
func ParseLevel(answer string) model.BiasLevel {
	lower := strings.ToLower(answer)
	switch {
	case strings.Contains(lower, "high"):
		return model.BiasHigh
	case strings.Contains(lower, "medium"):
		return model.BiasMedium
	default:
		return model.BiasLow
	}
}

// Truncate returns at most n characters of s without splitting a rune
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
