package model

import "strings"

// NoClaimFound is returned by the extractor when no checkable sentence exists
const NoClaimFound = "NO_CLAIM_FOUND"

// Claim is the single checkable assertion taken from submitted content
type Claim struct {
	Text string    `json:"text"`
	Type ClaimType `json:"type"`
}

// Found reports whether extraction produced a real claim
func (c Claim) Found() bool {
	return c.Text != "" && c.Text != NoClaimFound
}

// ClaimType categorizes the nature of the claim
type ClaimType string

const (
	ClaimTypeFoundational ClaimType = "FOUNDATIONAL" // Timeless, widely accepted facts
	ClaimTypeGeneral      ClaimType = "GENERAL"      // Verifiable facts about events, science, policy
	ClaimTypeComplex      ClaimType = "COMPLEX"      // Causal, political or investigative claims
	ClaimTypeNumeric      ClaimType = "NUMERIC"      // Figures, money, percentages
	ClaimTypeEvent        ClaimType = "EVENT"        // A specific happening
	ClaimTypeOpinion      ClaimType = "OPINION"      // Subjective or normative statements
)

// ClassifierLabels is the label set offered to the semantic classifier
var ClassifierLabels = []ClaimType{
	ClaimTypeFoundational,
	ClaimTypeGeneral,
	ClaimTypeComplex,
	ClaimTypeNumeric,
	ClaimTypeOpinion,
}

// Valid reports whether t is one of the known claim types
func (t ClaimType) Valid() bool {
	switch t {
	case ClaimTypeFoundational, ClaimTypeGeneral, ClaimTypeComplex,
		ClaimTypeNumeric, ClaimTypeEvent, ClaimTypeOpinion:
		return true
	}
	return false
}

// ParseClassifierLabel accepts a raw classifier answer only if, upper-cased
// and trimmed, it equals one of ClassifierLabels exactly.
func ParseClassifierLabel(raw string) (ClaimType, bool) {
	candidate := ClaimType(strings.ToUpper(strings.TrimSpace(raw)))
	for _, label := range ClassifierLabels {
		if candidate == label {
			return label, true
		}
	}
	return "", false
}
