package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/truthlens/internal/bias"
	"github.com/ppiankov/truthlens/internal/classify"
	"github.com/ppiankov/truthlens/internal/evidence"
	"github.com/ppiankov/truthlens/internal/extract"
	"github.com/ppiankov/truthlens/internal/factcheck"
	"github.com/ppiankov/truthlens/internal/model"
	"github.com/ppiankov/truthlens/internal/score"
	"github.com/ppiankov/truthlens/internal/verify"
)

// NoClaimReason is the explanation when no checkable claim was found
const NoClaimReason = "No checkable claim was found in the content."

// Capability contracts consumed by the pipeline
type (
	ContentFetcher interface {
		Fetch(ctx context.Context, rawURL string) (*FetchResult, error)
	}
	ClaimClassifier interface {
		Classify(ctx context.Context, claim string) model.ClaimType
	}
	FactChecker interface {
		Check(ctx context.Context, claim string) model.FactCheckResult
	}
	EvidenceGatherer interface {
		Gather(ctx context.Context, claim string) []model.EvidenceSource
	}
	BiasDetector interface {
		Detect(ctx context.Context, content string) model.BiasLevel
	}
	ClaimVerifier interface {
		Verify(ctx context.Context, claim string, evidence []model.EvidenceSource) verify.Result
	}
)

// Deps wires the pipeline. Nil capabilities run in neutral-default mode.
type Deps struct {
	Fetcher    ContentFetcher
	Content    *extract.ContentExtractor
	Claims     *extract.ClaimExtractor
	Classifier ClaimClassifier
	FactCheck  FactChecker
	Evidence   EvidenceGatherer
	Bias       BiasDetector
	Verifier   ClaimVerifier
	Aggregator *score.Aggregator

	// Disabled names capabilities that have no credentials; each is
	// reported as a degraded provider signal
	Disabled []string

	Logger *slog.Logger
}

// Pipeline runs one request: Extracted -> Classified -> SignalsGathered
// -> ModelVerified -> Resolved
type Pipeline struct {
	fetcher    ContentFetcher
	content    *extract.ContentExtractor
	claims     *extract.ClaimExtractor
	classifier ClaimClassifier
	factCheck  FactChecker
	evidence   EvidenceGatherer
	bias       BiasDetector
	verifier   ClaimVerifier
	aggregator *score.Aggregator
	disabled   []string
	logger     *slog.Logger
}

// New creates a pipeline
func New(deps Deps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	p := &Pipeline{
		fetcher:    deps.Fetcher,
		content:    deps.Content,
		claims:     deps.Claims,
		classifier: deps.Classifier,
		factCheck:  deps.FactCheck,
		evidence:   deps.Evidence,
		bias:       deps.Bias,
		verifier:   deps.Verifier,
		aggregator: deps.Aggregator,
		disabled:   deps.Disabled,
		logger:     logger.With("component", "pipeline"),
	}

	if p.fetcher == nil {
		p.fetcher = NewFetcher(model.DefaultConfig().HTTP, logger)
	}
	if p.content == nil {
		p.content = extract.NewContentExtractor()
	}
	if p.claims == nil {
		p.claims = extract.NewClaimExtractor()
	}
	if p.classifier == nil {
		p.classifier = classify.New(nil, model.LLMConfig{}, logger)
	}
	if p.factCheck == nil {
		p.factCheck = factcheck.NewLookup(nil, factcheck.Options{}, logger)
	}
	if p.evidence == nil {
		p.evidence = evidence.NewGatherer(nil, nil, evidence.Options{}, logger)
	}
	if p.bias == nil {
		p.bias = bias.NewDetector(nil, model.BiasConfig{}, logger)
	}
	if p.verifier == nil {
		p.verifier = verify.NewVerifier(nil, model.VerifierConfig{}, logger)
	}
	if p.aggregator == nil {
		p.aggregator = score.NewAggregator(nil)
	}
	return p
}

// Analyze produces the credibility verdict of one request. Errors are
// either *InputError or *InternalError; provider failures never surface.
func (p *Pipeline) Analyze(ctx context.Context, req model.AnalysisRequest) (result *model.AggregateResult, err error) {
	requestID := uuid.NewString()
	log := p.logger.With("request_id", requestID)

	if req.Empty() {
		return nil, &InputError{Message: MsgNoInput, Err: ErrNoInput}
	}

	text, err := p.ingest(ctx, req)
	if err != nil {
		log.Info("input rejected", "error", err)
		return nil, err
	}
	log.Debug("content extracted", "chars", len(text))

	defer func() {
		if r := recover(); r != nil {
			log.Error("analysis panicked", "panic", r, "stack", string(debug.Stack()))
			result, err = nil, &InternalError{RequestID: requestID, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if p.claims.IsOpinionBased(text) {
		log.Debug("opinion content, short-circuiting")
		opinion := model.OpinionResult()
		return &opinion, nil
	}

	claim := model.Claim{Text: p.claims.Extract(text), Type: model.ClaimTypeGeneral}
	if claim.Found() {
		claim.Type = p.classifier.Classify(ctx, claim.Text)
	}
	log.Debug("claim classified", "claim", claim.Text, "type", claim.Type)

	signals := p.gather(ctx, log, claim, text)
	log.Debug("signals gathered",
		"fact_check", signals.factCheck.Status, "sources", len(signals.evidence), "bias", signals.bias)

	verdict := model.FallbackVerdict(NoClaimReason)
	if claim.Found() {
		outcome := p.verifier.Verify(ctx, claim.Text, signals.evidence)
		verdict = outcome.Verdict
		if outcome.Degraded() && !errors.Is(outcome.Err, verify.ErrNoProvider) {
			signals.degraded = append(signals.degraded, score.Degradation{Capability: "verifier", Reason: outcome.Err.Error()})
		}
	}
	log.Debug("model verified", "verdict", verdict.Verdict, "confidence", verdict.Confidence)

	degraded := make([]score.Degradation, 0, len(p.disabled)+len(signals.degraded))
	for _, name := range p.disabled {
		degraded = append(degraded, score.Degradation{Capability: name, Reason: "not configured"})
	}
	degraded = append(degraded, signals.degraded...)

	aggregate := p.aggregator.Aggregate(score.Inputs{
		Claim:     claim.Text,
		ClaimType: claim.Type,
		FactCheck: signals.factCheck,
		Evidence:  signals.evidence,
		Bias:      signals.bias,
		Model:     verdict,
		Degraded:  degraded,
	})
	log.Debug("resolved", "verdict", aggregate.Verdict, "truth_score", aggregate.TruthScore)
	return &aggregate, nil
}

// ingest returns the text to analyze. Content takes precedence over url.
func (p *Pipeline) ingest(ctx context.Context, req model.AnalysisRequest) (string, error) {
	if strings.TrimSpace(req.Content) != "" {
		return p.content.Sanitize(req.Content), nil
	}

	page, err := p.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		return "", &InputError{Message: MsgExtractionFailed, Err: err}
	}
	text, err := p.content.FromHTML(page.HTML, page.FinalURL, page.ContentType)
	if err != nil {
		return "", &InputError{Message: MsgExtractionFailed, Err: err}
	}
	return text, nil
}

type gathered struct {
	factCheck model.FactCheckResult
	evidence  []model.EvidenceSource
	bias      model.BiasLevel
	degraded  []score.Degradation
}

// gather runs fact check, evidence and bias concurrently and joins them.
// A task that panics contributes its neutral default.
func (p *Pipeline) gather(ctx context.Context, log *slog.Logger, claim model.Claim, text string) gathered {
	out := gathered{
		factCheck: model.NoFactCheck(),
		evidence:  []model.EvidenceSource{},
		bias:      model.BiasLow,
	}
	var panicked [3]string

	g, gctx := errgroup.WithContext(ctx)
	run := func(slot int, name string, task func()) {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					log.Error("signal task panicked", "task", name, "panic", r)
					panicked[slot] = name
				}
			}()
			task()
			return nil
		})
	}

	if claim.Found() {
		run(0, "fact_check", func() { out.factCheck = p.factCheck.Check(gctx, claim.Text) })
		run(1, "evidence", func() {
			if sources := p.evidence.Gather(gctx, claim.Text); sources != nil {
				out.evidence = sources
			}
		})
	}
	run(2, "bias", func() { out.bias = p.bias.Detect(gctx, text) })

	_ = g.Wait()

	for _, name := range panicked {
		if name != "" {
			out.degraded = append(out.degraded, score.Degradation{Capability: name, Reason: "internal failure"})
		}
	}
	return out
}
