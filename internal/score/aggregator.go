package score

import (
	"fmt"
	"math"

	"github.com/ppiankov/truthlens/internal/credibility"
	"github.com/ppiankov/truthlens/internal/evidence"
	"github.com/ppiankov/truthlens/internal/model"
)

// Degradation records a capability that fell back to its neutral default
type Degradation struct {
	Capability string
	Reason     string
}

// Inputs are the gathered signals of one request
type Inputs struct {
	Claim     string // NO_CLAIM_FOUND or empty yields a null claim
	ClaimType model.ClaimType
	FactCheck model.FactCheckResult
	Evidence  []model.EvidenceSource
	Bias      model.BiasLevel
	Model     model.ModelVerdict
	Degraded  []Degradation
}

// Aggregator fuses signals into the final verdict and truth score
type Aggregator struct {
	credibility *credibility.Service
}

// NewAggregator creates an aggregator
func NewAggregator(cred *credibility.Service) *Aggregator {
	if cred == nil {
		cred = credibility.NewService(nil)
	}
	return &Aggregator{credibility: cred}
}

// Aggregate builds the result. It is a pure function of in.
func (a *Aggregator) Aggregate(in Inputs) model.AggregateResult {
	var signals []model.Signal

	verdict, verdictSignal := resolve(in.Model.Verdict, in.FactCheck.Status)
	signals = append(signals, verdictSignal)

	truthScore, scoreSignal := truthScore(verdict, in.Model.Confidence, in.ClaimType, in.Bias)
	signals = append(signals, scoreSignal)

	agreement, agreementSignal := evidenceAgreement(in.Evidence)
	signals = append(signals, agreementSignal)

	analysis := a.credibility.DetailedAnalysis(in.Evidence)
	signals = append(signals, credibilitySignal(analysis, len(in.Evidence)))

	signals = append(signals, biasSignal(in.Bias))

	confidence := EvidenceConfidence(in.ClaimType, agreement, analysis.AverageScore, in.FactCheck.Found(), in.Bias)
	confidenceLevel := ConfidenceLevel(confidence)
	signals = append(signals, model.Signal{
		Type:        model.SignalEvidenceConfidence,
		Severity:    severityForLevel(confidenceLevel),
		Description: fmt.Sprintf("Evidence confidence %d (%s)", confidence, confidenceLevel),
		Data: map[string]any{
			"claim_type":  in.ClaimType,
			"agreement":   agreement,
			"credibility": analysis.AverageScore,
			"fact_check":  in.FactCheck.Found(),
			"bias":        in.Bias,
			"score":       confidence,
			"formula":     confidenceFormula(in.ClaimType),
		},
	})

	for _, d := range in.Degraded {
		signals = append(signals, model.Signal{
			Type:        model.SignalDegradedProvider,
			Severity:    model.SeverityWarning,
			Description: fmt.Sprintf("%s unavailable, neutral default used", d.Capability),
			Data:        map[string]any{"capability": d.Capability, "reason": d.Reason},
		})
	}

	sources := make([]string, 0, len(in.Evidence))
	for _, src := range in.Evidence {
		sources = append(sources, src.URL)
	}

	result := model.AggregateResult{
		Verdict:            verdict,
		TruthScore:         truthScore,
		CredibilityLevel:   Level(truthScore),
		ClaimType:          in.ClaimType,
		BiasLevel:          in.Bias,
		FactCheckStatus:    in.FactCheck.Status.Public(),
		Explanation:        in.Model.Reasoning,
		SupportingSources:  sources,
		Disclaimer:         model.Disclaimer,
		SourceCredibility:  &analysis,
		EvidenceAgreement:  &agreement,
		EvidenceConfidence: &model.EvidenceConfidence{Score: confidence, Level: confidenceLevel},
		Signals:            signals,
	}
	if in.Claim != "" && in.Claim != model.NoClaimFound {
		claim := in.Claim
		result.Claim = &claim
	}
	if in.FactCheck.Found() {
		fc := in.FactCheck
		result.FactCheck = &fc
	}
	return result
}

// ResolveVerdict applies the fact-check override: a published Verified
// (including partial) check forces Supported, Contradicted forces Contradicted.
func ResolveVerdict(modelVerdict model.Verdict, status model.FactCheckStatus) model.Verdict {
	switch status.Public() {
	case model.FactCheckVerified:
		return model.VerdictSupported
	case model.FactCheckContradicted:
		return model.VerdictContradicted
	}
	switch modelVerdict {
	case model.VerdictSupported, model.VerdictContradicted:
		return modelVerdict
	default:
		return model.VerdictUnverified
	}
}

func resolve(modelVerdict model.Verdict, status model.FactCheckStatus) (model.Verdict, model.Signal) {
	final := ResolveVerdict(modelVerdict, status)
	public := status.Public()
	overridden := (public == model.FactCheckVerified || public == model.FactCheckContradicted) && final != modelVerdict

	severity := model.SeverityInfo
	description := fmt.Sprintf("Model verdict %s kept", final)
	if overridden {
		severity = model.SeverityWarning
		description = fmt.Sprintf("Fact check %q overrides model verdict %s with %s", status, modelVerdict, final)
	}

	return final, model.Signal{
		Type:        model.SignalVerdictResolution,
		Severity:    severity,
		Description: description,
		Data: map[string]any{
			"model_verdict":     modelVerdict,
			"fact_check_status": status,
			"final_verdict":     final,
			"fact_check_weight": status.Weight(),
			"overridden":        overridden,
		},
	}
}

// TruthScore computes the additive truth score
func TruthScore(verdict model.Verdict, confidence float64, claimType model.ClaimType, bias model.BiasLevel) int {
	score, _ := truthScore(verdict, confidence, claimType, bias)
	return score
}

func truthScore(verdict model.Verdict, confidence float64, claimType model.ClaimType, bias model.BiasLevel) (int, model.Signal) {
	var base float64
	var formula string
	switch verdict {
	case model.VerdictSupported:
		base = 70 + 30*confidence
		formula = "70 + 30 * confidence"
	case model.VerdictContradicted:
		base = (1 - confidence) * 40
		formula = "(1 - confidence) * 40"
	default:
		base = 45 + 10*confidence
		formula = "45 + 10 * confidence"
	}

	adjustment := 0.0
	switch claimType {
	case model.ClaimTypeGeneral:
		adjustment += 5
	case model.ClaimTypeNumeric:
		adjustment -= 5
	}
	if bias == model.BiasHigh {
		adjustment -= 10
	}

	score := int(math.Round(clamp(base+adjustment, 0, 100)))

	return score, model.Signal{
		Type:        model.SignalTruthScore,
		Severity:    severityForLevel(Level(score)),
		Description: fmt.Sprintf("Truth score %d (%s)", score, Level(score)),
		Data: map[string]any{
			"verdict":    verdict,
			"confidence": confidence,
			"base":       base,
			"adjustment": adjustment,
			"claim_type": claimType,
			"bias":       bias,
			"score":      score,
			"formula":    "round(clamp(" + formula + " + 5*[GENERAL] - 5*[NUMERIC] - 10*[bias High], 0, 100))",
		},
	}
}

// Level buckets the truth score: High >= 75, Medium >= 50
func Level(truthScore int) model.CredibilityLevel {
	switch {
	case truthScore >= 75:
		return model.CredibilityHigh
	case truthScore >= 50:
		return model.CredibilityMedium
	default:
		return model.CredibilityLow
	}
}

// EvidenceConfidence weighs agreement, source credibility and fact-check
// existence per claim type, scaled by bias, as an integer in [0,100].
// It is diagnostic and never feeds the truth score.
func EvidenceConfidence(claimType model.ClaimType, agreement, sourceCredibility float64, factCheckExists bool, bias model.BiasLevel) int {
	factCheck := 0.0
	if factCheckExists {
		factCheck = 1
	}

	var confidence float64
	switch claimType {
	case model.ClaimTypeFoundational:
		confidence = 0.6*agreement + 0.4*sourceCredibility
	case model.ClaimTypeGeneral, model.ClaimTypeEvent:
		confidence = 0.5*agreement + 0.35*sourceCredibility + 0.15*factCheck
	case model.ClaimTypeComplex, model.ClaimTypeNumeric:
		confidence = 0.55*agreement + 0.30*sourceCredibility + 0.15*factCheck
	}

	switch bias {
	case model.BiasHigh:
		confidence *= 0.6
	case model.BiasMedium:
		confidence *= 0.8
	}

	return int(math.Round(clamp(confidence, 0, 1) * 100))
}

// ConfidenceLevel buckets evidence confidence: High >= 75, Medium >= 45
func ConfidenceLevel(score int) model.CredibilityLevel {
	switch {
	case score >= 75:
		return model.CredibilityHigh
	case score >= 45:
		return model.CredibilityMedium
	default:
		return model.CredibilityLow
	}
}

func confidenceFormula(claimType model.ClaimType) string {
	switch claimType {
	case model.ClaimTypeFoundational:
		return "round(clamp((0.6*agreement + 0.4*credibility) * bias_factor, 0, 1) * 100)"
	case model.ClaimTypeGeneral, model.ClaimTypeEvent:
		return "round(clamp((0.5*agreement + 0.35*credibility + 0.15*fact_check) * bias_factor, 0, 1) * 100)"
	case model.ClaimTypeComplex, model.ClaimTypeNumeric:
		return "round(clamp((0.55*agreement + 0.30*credibility + 0.15*fact_check) * bias_factor, 0, 1) * 100)"
	default:
		return "0"
	}
}

func evidenceAgreement(sources []model.EvidenceSource) (float64, model.Signal) {
	agreement := evidence.CalculateAgreement(sources)

	severity := model.SeverityInfo
	if len(sources) == 0 {
		severity = model.SeverityWarning
	}

	return agreement, model.Signal{
		Type:        model.SignalEvidenceAgreement,
		Severity:    severity,
		Description: fmt.Sprintf("Evidence agreement %.2f from %d sources", agreement, len(sources)),
		Data: map[string]any{
			"sources": len(sources),
			"score":   agreement,
			"formula": "0.7 * min(sources / 5, 1) + 0.3 * unique_domains / sources; 0.5 with no sources",
		},
	}
}

func credibilitySignal(analysis model.CredibilityAnalysis, count int) model.Signal {
	severity := model.SeverityInfo
	if analysis.OverallLevel == model.CredibilityLow {
		severity = model.SeverityWarning
	}
	return model.Signal{
		Type:        model.SignalSourceCredibility,
		Severity:    severity,
		Description: fmt.Sprintf("Average source credibility %.2f (%s)", analysis.AverageScore, analysis.OverallLevel),
		Data: map[string]any{
			"sources": count,
			"average": analysis.AverageScore,
			"level":   analysis.OverallLevel,
			"formula": "mean(trust_score); 0.5 with no sources",
		},
	}
}

func biasSignal(bias model.BiasLevel) model.Signal {
	severity := model.SeverityInfo
	switch bias {
	case model.BiasHigh:
		severity = model.SeverityCritical
	case model.BiasMedium:
		severity = model.SeverityWarning
	}
	return model.Signal{
		Type:        model.SignalBiasPenalty,
		Severity:    severity,
		Description: fmt.Sprintf("Bias level %s", bias),
		Data: map[string]any{
			"level":       bias,
			"penalty":     bias.Penalty(),
			"score_delta": biasDelta(bias),
		},
	}
}

func biasDelta(bias model.BiasLevel) int {
	if bias == model.BiasHigh {
		return -10
	}
	return 0
}

func severityForLevel(level model.CredibilityLevel) model.SignalSeverity {
	switch level {
	case model.CredibilityLow:
		return model.SeverityCritical
	case model.CredibilityMedium:
		return model.SeverityWarning
	default:
		return model.SeverityInfo
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
