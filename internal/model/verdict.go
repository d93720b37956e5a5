package model

// Verdict is the final or model-level verdict label
type Verdict string

const (
	VerdictSupported    Verdict = "Supported"
	VerdictContradicted Verdict = "Contradicted"
	VerdictUnverified   Verdict = "Unverified"
	VerdictOpinion      Verdict = "Opinion" // Only produced by the opinion fast path
)

// ModelVerdict is the structured output of the claim verifier
type ModelVerdict struct {
	Verdict    Verdict `json:"verdict"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// FallbackVerdict is the neutral model verdict used whenever the verifier degrades
func FallbackVerdict(reason string) ModelVerdict {
	return ModelVerdict{
		Verdict:    VerdictUnverified,
		Confidence: 0.5,
		Reasoning:  reason,
	}
}

// FactCheckStatus is the internal outcome of a fact-check lookup
type FactCheckStatus string

const (
	FactCheckVerified          FactCheckStatus = "Verified"
	FactCheckContradicted      FactCheckStatus = "Contradicted"
	FactCheckPartiallyVerified FactCheckStatus = "Partially Verified"
	FactCheckNone              FactCheckStatus = "No Existing Check"
)

// Public returns the externally visible status. Partial matches are exposed as Verified.
func (s FactCheckStatus) Public() FactCheckStatus {
	if s == FactCheckPartiallyVerified {
		return FactCheckVerified
	}
	return s
}

// Weight is the support weight of a fact-check status
func (s FactCheckStatus) Weight() float64 {
	switch s {
	case FactCheckVerified:
		return 1.0
	case FactCheckContradicted:
		return 0.0
	case FactCheckPartiallyVerified:
		return 0.7
	default:
		return 0.5
	}
}

// FactCheckResult is the outcome of matching a claim against published fact checks
type FactCheckResult struct {
	Status    FactCheckStatus `json:"status"`
	Publisher string          `json:"publisher,omitempty"`
	SourceURL string          `json:"url,omitempty"`
	ClaimText string          `json:"claimText,omitempty"`
	Rating    string          `json:"rating,omitempty"` // Textual rating as published
}

// Found reports whether a published fact check matched
func (r FactCheckResult) Found() bool {
	return r.Status != "" && r.Status != FactCheckNone
}

// NoFactCheck is the neutral fact-check result
func NoFactCheck() FactCheckResult {
	return FactCheckResult{Status: FactCheckNone}
}

// BiasLevel is the coarse rhetorical slant of the submitted content
type BiasLevel string

const (
	BiasLow    BiasLevel = "Low"
	BiasMedium BiasLevel = "Medium"
	BiasHigh   BiasLevel = "High"
)

// Penalty is the diagnostic bias penalty
func (b BiasLevel) Penalty() float64 {
	switch b {
	case BiasHigh:
		return 0.6
	case BiasMedium:
		return 0.3
	default:
		return 0.1
	}
}

// CredibilityLevel is a three-bucket label
type CredibilityLevel string

const (
	CredibilityLow    CredibilityLevel = "Low"
	CredibilityMedium CredibilityLevel = "Medium"
	CredibilityHigh   CredibilityLevel = "High"
)
