package model

import "strings"

// Disclaimer is attached to every result
const Disclaimer = "This system assesses credibility based on available evidence and does not assert absolute truth."

// OpinionExplanation is the fixed explanation of the opinion fast path
const OpinionExplanation = "This content expresses subjective opinions rather than verifiable factual claims."

// AggregateResult is the per-request credibility verdict.
// Built once by the aggregator, never mutated afterward.
type AggregateResult struct {
	Claim             *string          `json:"claim"` // nil when no claim was found or on the opinion path
	Verdict           Verdict          `json:"verdict"`
	TruthScore        int              `json:"truthScore"`
	CredibilityLevel  CredibilityLevel `json:"credibilityLevel"`
	ClaimType         ClaimType        `json:"claimType"`
	BiasLevel         BiasLevel        `json:"biasLevel"`
	FactCheckStatus   FactCheckStatus  `json:"factCheckStatus,omitempty"`
	Explanation       string           `json:"explanation"`
	SupportingSources []string         `json:"supportingSources"`
	Disclaimer        string           `json:"disclaimer"`

	// Diagnostics. None of these feed the truth score.
	FactCheck          *FactCheckResult     `json:"factCheck,omitempty"`
	SourceCredibility  *CredibilityAnalysis `json:"sourceCredibility,omitempty"`
	EvidenceAgreement  *float64             `json:"evidenceAgreement,omitempty"`
	EvidenceConfidence *EvidenceConfidence  `json:"evidenceConfidence,omitempty"`
	Signals            []Signal             `json:"signals,omitempty"`
}

// EvidenceConfidence is the weighted evidence strength score
type EvidenceConfidence struct {
	Score int              `json:"score"`
	Level CredibilityLevel `json:"level"`
}

// OpinionResult is the fixed opinion fast-path result
func OpinionResult() AggregateResult {
	return AggregateResult{
		Verdict:           VerdictOpinion,
		TruthScore:        50,
		CredibilityLevel:  CredibilityMedium,
		ClaimType:         ClaimTypeOpinion,
		BiasLevel:         BiasHigh,
		Explanation:       OpinionExplanation,
		SupportingSources: []string{},
		Disclaimer:        Disclaimer,
	}
}

// Signal represents a diagnostic signal with transparent scoring data
type Signal struct {
	Type        SignalType     `json:"type"`
	Severity    SignalSeverity `json:"severity"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data,omitempty"` // Formulas and inputs
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalVerdictResolution  SignalType = "verdict_resolution"  // Fact-check override of model verdict
	SignalTruthScore         SignalType = "truth_score"         // Additive score formula
	SignalEvidenceAgreement  SignalType = "evidence_agreement"  // Volume and domain diversity
	SignalSourceCredibility  SignalType = "source_credibility"  // Mean domain trust
	SignalBiasPenalty        SignalType = "bias_penalty"        // Rhetorical slant
	SignalEvidenceConfidence SignalType = "evidence_confidence" // Weighted evidence strength
	SignalDegradedProvider   SignalType = "degraded_provider"   // A capability fell back to its default
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// AnalysisRequest is one unit of input. Content takes precedence over URL.
type AnalysisRequest struct {
	Content string `json:"content,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Empty reports whether neither content nor url was supplied
func (r AnalysisRequest) Empty() bool {
	return strings.TrimSpace(r.Content) == "" && strings.TrimSpace(r.URL) == ""
}
