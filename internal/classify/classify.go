package classify

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ppiankov/truthlens/internal/llm"
	"github.com/ppiankov/truthlens/internal/model"
)

const systemPrompt = "You classify the type of a claim. You never judge whether it is true."

const promptTemplate = `You are classifying the TYPE of a claim, not verifying it.

Claim:
%q

Choose ONE category:

FOUNDATIONAL:
- Timeless, widely accepted facts
- Stable over time

GENERAL:
- Verifiable factual claims about events, science, policy, or records

COMPLEX:
- Allegations, political, corporate, military, or causal claims
- Require investigation or multiple sources

NUMERIC:
- Claims whose substance is a figure, amount, percentage or statistic

OPINION:
- Subjective, normative, or belief-based statements

Respond with ONLY ONE WORD:
FOUNDATIONAL | GENERAL | COMPLEX | NUMERIC | OPINION`

var (
	yearRe     = regexp.MustCompile(`\b\d{4}\b`)
	quantityRe = regexp.MustCompile(`(?i)(\brs\b|₹|\$|%|\bpercent\b|\bmillion\b|\bbillion\b)`)
	copularRe  = regexp.MustCompile(`^(.*)\s(is|are|was|were)\s(.*)$`)

	opinionMarkers = []string{"i think", "i believe", "should", "is better than"}
	causalMarkers  = []string{"caused", "led to", "resulted in", "responsible for"}
)

// Classifier assigns a claim to the claim-type taxonomy
type Classifier struct {
	provider    llm.Provider
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

// New creates a classifier. A nil provider uses the structural rules only.
func New(provider llm.Provider, cfg model.LLMConfig, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 5
	}
	return &Classifier{
		provider:    provider,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		logger:      logger.With("component", "classify"),
	}
}

// Classify asks the semantic classifier first and falls back to
// Structural when it is unavailable, errors or answers off-label
func (c *Classifier) Classify(ctx context.Context, claim string) model.ClaimType {
	if c.provider != nil {
		label, err := c.semantic(ctx, claim)
		if err == nil {
			return label
		}
		c.logger.Warn("semantic classification failed, using structural rules",
			"provider", c.provider.Name(), "error", err)
	}
	return Structural(claim)
}

func (c *Classifier) semantic(ctx context.Context, claim string) (model.ClaimType, error) {
	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		System:      systemPrompt,
		Prompt:      fmt.Sprintf(promptTemplate, claim),
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", err
	}
	label, ok := model.ParseClassifierLabel(resp.Text)
	if !ok {
		return "", fmt.Errorf("unrecognized label %q", resp.Text)
	}
	return label, nil
}

// Structural applies the deterministic rules in precedence order:
// opinion markers, quantities (NUMERIC) or a bare year (COMPLEX), causal
// connectives (COMPLEX), copular form (FOUNDATIONAL), else GENERAL.
func Structural(claim string) model.ClaimType {
	lower := strings.ToLower(claim)

	for _, marker := range opinionMarkers {
		if strings.Contains(lower, marker) {
			return model.ClaimTypeOpinion
		}
	}

	if quantityRe.MatchString(claim) {
		return model.ClaimTypeNumeric
	}
	if yearRe.MatchString(claim) {
		return model.ClaimTypeComplex
	}

	for _, marker := range causalMarkers {
		if strings.Contains(lower, marker) {
			return model.ClaimTypeComplex
		}
	}

	if copularRe.MatchString(lower) {
		return model.ClaimTypeFoundational
	}

	return model.ClaimTypeGeneral
}
