package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/truthlens/internal/factcheck"
	"github.com/ppiankov/truthlens/internal/model"
	"github.com/ppiankov/truthlens/internal/verify"
)

type recorder struct {
	calls atomic.Int32
}

type fakeClassifier struct {
	recorder
	label model.ClaimType
}

func (f *fakeClassifier) Classify(context.Context, string) model.ClaimType {
	f.calls.Add(1)
	return f.label
}

type fakeFactCheck struct {
	recorder
	result model.FactCheckResult
}

func (f *fakeFactCheck) Check(context.Context, string) model.FactCheckResult {
	f.calls.Add(1)
	return f.result
}

type fakeEvidence struct {
	recorder
	sources []model.EvidenceSource
	panics  bool
}

func (f *fakeEvidence) Gather(context.Context, string) []model.EvidenceSource {
	f.calls.Add(1)
	if f.panics {
		panic("search backend exploded")
	}
	return f.sources
}

type fakeBias struct {
	recorder
	level model.BiasLevel
	input string
}

func (f *fakeBias) Detect(_ context.Context, content string) model.BiasLevel {
	f.calls.Add(1)
	f.input = content
	return f.level
}

type fakeVerifier struct {
	recorder
	result   verify.Result
	evidence []model.EvidenceSource
}

func (f *fakeVerifier) Verify(_ context.Context, _ string, evidence []model.EvidenceSource) verify.Result {
	f.calls.Add(1)
	f.evidence = evidence
	return f.result
}

type fakeFetcher struct {
	recorder
	html string
	err  error
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (*FetchResult, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &FetchResult{HTML: f.html, FinalURL: rawURL, ContentType: "text/html"}, nil
}

// barrier releases its callers once all n have arrived
type barrier struct {
	n        int32
	arrived  atomic.Int32
	returned atomic.Int32
	all      chan struct{}
}

func newBarrier(n int32) *barrier {
	return &barrier{n: n, all: make(chan struct{})}
}

func (b *barrier) wait() bool {
	if b.arrived.Add(1) == b.n {
		close(b.all)
	}
	select {
	case <-b.all:
		return true
	case <-time.After(2 * time.Second):
		return false
	}
}

type barrierFactCheck struct {
	b   *barrier
	saw atomic.Bool
}

func (f *barrierFactCheck) Check(context.Context, string) model.FactCheckResult {
	defer f.b.returned.Add(1)
	f.saw.Store(f.b.wait())
	return model.NoFactCheck()
}

type barrierEvidence struct {
	b   *barrier
	saw atomic.Bool
}

func (f *barrierEvidence) Gather(context.Context, string) []model.EvidenceSource {
	defer f.b.returned.Add(1)
	f.saw.Store(f.b.wait())
	return []model.EvidenceSource{{URL: "https://reuters.com/a", Domain: "reuters.com", Snippet: "s", TrustScore: 0.95}}
}

type barrierBias struct {
	b   *barrier
	saw atomic.Bool
}

func (f *barrierBias) Detect(context.Context, string) model.BiasLevel {
	defer f.b.returned.Add(1)
	f.saw.Store(f.b.wait())
	return model.BiasLow
}

type joinVerifier struct {
	b             *barrier
	returnedAtRun atomic.Int32
	calls         atomic.Int32
}

func (f *joinVerifier) Verify(context.Context, string, []model.EvidenceSource) verify.Result {
	f.calls.Add(1)
	f.returnedAtRun.Store(f.b.returned.Load())
	return verify.Result{Verdict: model.ModelVerdict{Verdict: model.VerdictSupported, Confidence: 0.8, Reasoning: "Evidence agrees."}}
}

type fixture struct {
	fetcher    *fakeFetcher
	classifier *fakeClassifier
	factCheck  *fakeFactCheck
	evidence   *fakeEvidence
	bias       *fakeBias
	verifier   *fakeVerifier
}

func newFixture() *fixture {
	return &fixture{
		fetcher:    &fakeFetcher{},
		classifier: &fakeClassifier{label: model.ClaimTypeGeneral},
		factCheck:  &fakeFactCheck{result: model.NoFactCheck()},
		evidence: &fakeEvidence{sources: []model.EvidenceSource{
			{URL: "https://reuters.com/a", Domain: "reuters.com", Snippet: "s", TrustScore: 0.95},
		}},
		bias: &fakeBias{level: model.BiasLow},
		verifier: &fakeVerifier{result: verify.Result{Verdict: model.ModelVerdict{
			Verdict: model.VerdictSupported, Confidence: 0.8, Reasoning: "Evidence agrees.",
		}}},
	}
}

func (f *fixture) pipeline() *Pipeline {
	return New(Deps{
		Fetcher:    f.fetcher,
		Classifier: f.classifier,
		FactCheck:  f.factCheck,
		Evidence:   f.evidence,
		Bias:       f.bias,
		Verifier:   f.verifier,
	})
}

func (f *fixture) providerCalls() int32 {
	return f.fetcher.calls.Load() + f.classifier.calls.Load() + f.factCheck.calls.Load() +
		f.evidence.calls.Load() + f.bias.calls.Load() + f.verifier.calls.Load()
}

func TestAnalyze_FullPath(t *testing.T) {
	f := newFixture()
	result, err := f.pipeline().Analyze(context.Background(), model.AnalysisRequest{
		Content: "The Eiffel Tower is located in Paris. It was built in 1889.",
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.Claim == nil || *result.Claim != "The Eiffel Tower is located in Paris" {
		t.Errorf("Unexpected claim: %v", result.Claim)
	}
	if result.Verdict != model.VerdictSupported || result.TruthScore != 99 || result.CredibilityLevel != model.CredibilityHigh {
		t.Errorf("Expected Supported/99/High, got %s/%d/%s", result.Verdict, result.TruthScore, result.CredibilityLevel)
	}
	if result.FactCheckStatus != model.FactCheckNone {
		t.Errorf("Expected no fact check, got %s", result.FactCheckStatus)
	}
	if len(result.SupportingSources) != 1 || result.SupportingSources[0] != "https://reuters.com/a" {
		t.Errorf("Unexpected sources: %v", result.SupportingSources)
	}
	if len(f.verifier.evidence) != 1 {
		t.Errorf("Expected verifier to receive gathered evidence, got %v", f.verifier.evidence)
	}
	if f.bias.input != "The Eiffel Tower is located in Paris. It was built in 1889." {
		t.Errorf("Expected bias on full content, got %q", f.bias.input)
	}
	if f.fetcher.calls.Load() != 0 {
		t.Error("Expected no fetch for submitted content")
	}
}

func TestAnalyze_SignalsFanOut(t *testing.T) {
	b := newBarrier(3)
	fc := &barrierFactCheck{b: b}
	ev := &barrierEvidence{b: b}
	bi := &barrierBias{b: b}
	verifier := &joinVerifier{b: b}

	p := New(Deps{
		Classifier: &fakeClassifier{label: model.ClaimTypeGeneral},
		FactCheck:  fc,
		Evidence:   ev,
		Bias:       bi,
		Verifier:   verifier,
	})
	result, err := p.Analyze(context.Background(), model.AnalysisRequest{Content: "The Eiffel Tower is located in Paris."})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if !fc.saw.Load() || !ev.saw.Load() || !bi.saw.Load() {
		t.Errorf("Expected signals to run concurrently: fact_check=%v evidence=%v bias=%v",
			fc.saw.Load(), ev.saw.Load(), bi.saw.Load())
	}
	if verifier.calls.Load() != 1 {
		t.Fatalf("Expected one verifier call, got %d", verifier.calls.Load())
	}
	if got := verifier.returnedAtRun.Load(); got != 3 {
		t.Errorf("Expected verifier to start after all signals returned, %d of 3 had", got)
	}
	if result.Verdict != model.VerdictSupported {
		t.Errorf("Expected Supported, got %s", result.Verdict)
	}
}

func TestAnalyze_InaccurateRatingOverridesModel(t *testing.T) {
	f := newFixture()
	f.factCheck.result = model.FactCheckResult{Status: factcheck.MapRating("Inaccurate"), Publisher: "AFP", Rating: "Inaccurate"}
	f.verifier.result.Verdict = model.ModelVerdict{Verdict: model.VerdictContradicted, Confidence: 0.9, Reasoning: "Evidence disagrees."}

	result, err := f.pipeline().Analyze(context.Background(), model.AnalysisRequest{Content: "The Eiffel Tower is located in Rome."})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Verdict != model.VerdictContradicted || result.FactCheckStatus != model.FactCheckContradicted {
		t.Errorf("Expected Contradicted, got %s (fact check %s)", result.Verdict, result.FactCheckStatus)
	}
	if result.CredibilityLevel != model.CredibilityLow {
		t.Errorf("Expected Low credibility, got %s score %d", result.CredibilityLevel, result.TruthScore)
	}
}

func TestAnalyze_OpinionShortCircuit(t *testing.T) {
	f := newFixture()
	result, err := f.pipeline().Analyze(context.Background(), model.AnalysisRequest{
		Content: "I think the new policy is the best decision ever made",
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.Verdict != model.VerdictOpinion || result.TruthScore != 50 ||
		result.CredibilityLevel != model.CredibilityMedium || result.BiasLevel != model.BiasHigh {
		t.Errorf("Unexpected opinion result: %+v", result)
	}
	if result.Claim != nil || result.ClaimType != model.ClaimTypeOpinion {
		t.Errorf("Expected null claim and OPINION type, got %v %s", result.Claim, result.ClaimType)
	}
	if result.SupportingSources == nil || len(result.SupportingSources) != 0 {
		t.Errorf("Expected empty sources, got %v", result.SupportingSources)
	}
	if calls := f.providerCalls(); calls != 0 {
		t.Errorf("Expected no provider calls, got %d", calls)
	}
}

func TestAnalyze_FactCheckOverrides(t *testing.T) {
	f := newFixture()
	f.factCheck.result = model.FactCheckResult{Status: model.FactCheckContradicted, Publisher: "Snopes"}
	f.classifier.label = model.ClaimTypeNumeric
	f.bias.level = model.BiasHigh
	f.verifier.result.Verdict.Confidence = 0.3

	result, err := f.pipeline().Analyze(context.Background(), model.AnalysisRequest{Content: "The budget was $5 million."})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Verdict != model.VerdictContradicted {
		t.Errorf("Expected Contradicted, got %s", result.Verdict)
	}
	if result.TruthScore != 13 || result.CredibilityLevel != model.CredibilityLow {
		t.Errorf("Expected 13/Low, got %d/%s", result.TruthScore, result.CredibilityLevel)
	}
}

func TestAnalyze_NoClaimFound(t *testing.T) {
	f := newFixture()
	result, err := f.pipeline().Analyze(context.Background(), model.AnalysisRequest{Content: "Hey. ok"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Claim != nil {
		t.Errorf("Expected null claim, got %q", *result.Claim)
	}
	if result.Verdict != model.VerdictUnverified || result.ClaimType != model.ClaimTypeGeneral {
		t.Errorf("Unexpected result: %s %s", result.Verdict, result.ClaimType)
	}
	if result.Explanation != NoClaimReason {
		t.Errorf("Unexpected explanation: %q", result.Explanation)
	}
	if f.classifier.calls.Load()+f.factCheck.calls.Load()+f.evidence.calls.Load()+f.verifier.calls.Load() != 0 {
		t.Error("Expected claim providers to be skipped")
	}
	if f.bias.calls.Load() != 1 {
		t.Error("Expected bias detection on the content")
	}
}

func TestAnalyze_SignalPanicDegrades(t *testing.T) {
	f := newFixture()
	f.evidence.panics = true

	result, err := f.pipeline().Analyze(context.Background(), model.AnalysisRequest{Content: "Water boils at 100 degrees at sea level."})
	if err != nil {
		t.Fatalf("Expected degraded result, got error %v", err)
	}
	if len(result.SupportingSources) != 0 {
		t.Errorf("Expected no sources, got %v", result.SupportingSources)
	}

	found := false
	for _, s := range result.Signals {
		if s.Type == model.SignalDegradedProvider && s.Data["capability"] == "evidence" {
			found = true
		}
	}
	if !found {
		t.Error("Expected degraded evidence signal")
	}
}

func TestAnalyze_URL(t *testing.T) {
	f := newFixture()
	f.fetcher.html = `<html><body><article><p>The Moon orbits the Earth. It is far.</p></article></body></html>`

	result, err := f.pipeline().Analyze(context.Background(), model.AnalysisRequest{URL: "https://example.com/moon"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Claim == nil || *result.Claim != "The Moon orbits the Earth" {
		t.Errorf("Unexpected claim: %v", result.Claim)
	}
}

func TestAnalyze_ContentTakesPrecedence(t *testing.T) {
	f := newFixture()
	_, err := f.pipeline().Analyze(context.Background(), model.AnalysisRequest{
		Content: "The Moon orbits the Earth.",
		URL:     "https://example.com/ignored",
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if f.fetcher.calls.Load() != 0 {
		t.Error("Expected url to be ignored when content is given")
	}
}

func TestAnalyze_InputErrors(t *testing.T) {
	tests := []struct {
		desc    string
		req     model.AnalysisRequest
		fetcher *fakeFetcher
		message string
	}{
		{"Missing input", model.AnalysisRequest{}, &fakeFetcher{}, MsgNoInput},
		{"Blank input", model.AnalysisRequest{Content: "  "}, &fakeFetcher{}, MsgNoInput},
		{"Fetch failure", model.AnalysisRequest{URL: "https://example.com"}, &fakeFetcher{err: errors.New("dial tcp: refused")}, MsgExtractionFailed},
		{"Empty page", model.AnalysisRequest{URL: "https://example.com"}, &fakeFetcher{html: "<html><body></body></html>"}, MsgExtractionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			f := newFixture()
			f.fetcher = tt.fetcher
			_, err := f.pipeline().Analyze(context.Background(), tt.req)

			var inputErr *InputError
			if !errors.As(err, &inputErr) {
				t.Fatalf("Expected InputError, got %v", err)
			}
			msg, isInput := PublicMessage(err)
			if !isInput || msg != tt.message {
				t.Errorf("Expected %q, got %q (%v)", tt.message, msg, isInput)
			}
		})
	}

	if !errors.Is(mustAnalyzeErr(t, model.AnalysisRequest{}), ErrNoInput) {
		t.Error("Expected ErrNoInput to be wrapped")
	}
}

func mustAnalyzeErr(t *testing.T, req model.AnalysisRequest) error {
	t.Helper()
	_, err := newFixture().pipeline().Analyze(context.Background(), req)
	if err == nil {
		t.Fatal("Expected error")
	}
	return err
}

func TestPublicMessage_Internal(t *testing.T) {
	msg, isInput := PublicMessage(&InternalError{RequestID: "r", Err: errors.New("nil map write")})
	if isInput || msg != MsgInternal {
		t.Errorf("Expected generic internal message, got %q", msg)
	}
}

func TestAnalyze_NeutralDefaults(t *testing.T) {
	result, err := New(Deps{Disabled: []string{"verifier"}}).Analyze(context.Background(), model.AnalysisRequest{
		Content: "The Moon orbits the Earth.",
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	// Unverified 0.5 -> 50, structural GENERAL +5
	if result.Verdict != model.VerdictUnverified || result.TruthScore != 55 {
		t.Errorf("Expected Unverified/55, got %s/%d", result.Verdict, result.TruthScore)
	}
	if result.Explanation != verify.ReasonUnavailable {
		t.Errorf("Unexpected explanation: %q", result.Explanation)
	}
	if result.BiasLevel != model.BiasLow || result.FactCheckStatus != model.FactCheckNone {
		t.Errorf("Expected neutral signals, got %s %s", result.BiasLevel, result.FactCheckStatus)
	}
}
