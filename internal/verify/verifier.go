package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ppiankov/truthlens/internal/llm"
	"github.com/ppiankov/truthlens/internal/model"
)

// Fallback reasons reported as the verdict reasoning
const (
	ReasonUnavailable = "LLM verification unavailable (no verifier provider configured)."
	ReasonUnparseable = "LLM response could not be parsed reliably."
	ReasonFailed      = "Verification failed due to LLM error."
)

const systemPrompt = `You are a strict fact-checking assistant.
Only use the provided evidence.
If evidence is insufficient, say "Unverified".
Do not hallucinate.`

const promptTemplate = `Claim:
%q

Evidence:
%s

Return ONLY valid JSON in this format:
{
  "verdict": "Supported | Contradicted | Unverified",
  "confidence": number between 0 and 1,
  "reasoning": "short explanation"
}`

const noEvidence = "No evidence provided."

// ErrNoProvider is the degradation cause when no verifier is configured
var ErrNoProvider = errors.New("no verifier provider configured")

// Result is a verifier outcome. Verdict is always usable; Err records why
// the fallback verdict was used, if it was.
type Result struct {
	Verdict model.ModelVerdict
	Err     error
}

// Degraded reports whether the fallback verdict was applied
func (r Result) Degraded() bool {
	return r.Err != nil
}

// Verifier asks a language model for an evidence-constrained verdict
type Verifier struct {
	provider       llm.Provider
	maxTokens      int
	temperature    float64
	strictEvidence bool
	logger         *slog.Logger
}

// NewVerifier creates a verifier. A nil provider always yields the fallback verdict.
func NewVerifier(provider llm.Provider, cfg model.VerifierConfig, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 200
	}
	return &Verifier{
		provider:       provider,
		maxTokens:      maxTokens,
		temperature:    cfg.Temperature,
		strictEvidence: cfg.StrictEvidence,
		logger:         logger.With("component", "verify"),
	}
}

// Verify judges claim against the snippets of the gathered evidence
func (v *Verifier) Verify(ctx context.Context, claim string, evidence []model.EvidenceSource) Result {
	if v.provider == nil {
		return Result{
			Verdict: model.FallbackVerdict(ReasonUnavailable),
			Err:     ErrNoProvider,
		}
	}

	resp, err := v.provider.Complete(ctx, llm.CompletionRequest{
		System:      systemPrompt,
		Prompt:      BuildPrompt(claim, evidence),
		MaxTokens:   v.maxTokens,
		Temperature: v.temperature,
		JSON:        true,
	})
	if err != nil {
		v.logger.Warn("verification call failed", "provider", v.provider.Name(), "error", err)
		return Result{Verdict: model.FallbackVerdict(ReasonFailed), Err: err}
	}

	var allowed []string
	if v.strictEvidence {
		allowed = make([]string, 0, len(evidence))
		for _, src := range evidence {
			allowed = append(allowed, src.URL)
		}
	}

	verdict, err := Decode(resp.Text, allowed)
	if err != nil {
		v.logger.Warn("verification output rejected", "provider", v.provider.Name(), "error", err)
		return Result{Verdict: model.FallbackVerdict(ReasonUnparseable), Err: err}
	}

	v.logger.Debug("claim verified", "verdict", verdict.Verdict, "confidence", verdict.Confidence)
	return Result{Verdict: verdict}
}

// BuildPrompt renders the user prompt. Only sources with a snippet are
// offered as evidence, each followed by its URL.
func BuildPrompt(claim string, evidence []model.EvidenceSource) string {
	var blocks []string
	for _, src := range evidence {
		snippet := strings.TrimSpace(src.Snippet)
		if snippet == "" {
			continue
		}
		if src.URL != "" {
			snippet += "\nSource: " + src.URL
		}
		blocks = append(blocks, snippet)
	}

	text := noEvidence
	if len(blocks) > 0 {
		text = strings.Join(blocks, "\n\n")
	}
	return fmt.Sprintf(promptTemplate, claim, text)
}
