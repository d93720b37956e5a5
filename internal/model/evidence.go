package model

// EvidenceSource is a web or news search result used as supporting material
type EvidenceSource struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Snippet    string  `json:"snippet,omitempty"`
	Domain     string  `json:"domain"`      // Host without leading www., or "unknown"
	TrustScore float64 `json:"trust_score"` // Static domain reputation in [0,1]
	Provider   string  `json:"provider,omitempty"`
}

// UnknownDomain is used when a source URL cannot be parsed
const UnknownDomain = "unknown"

// DomainCredibility is one row of a credibility breakdown
type DomainCredibility struct {
	Domain     string  `json:"domain"`
	TrustScore float64 `json:"trustScore"`
	TrustLevel string  `json:"trustLevel"` // Very High .. Very Low
	Source     string  `json:"source"`     // Title of the source, or "Unknown"
}

// CredibilityAnalysis aggregates domain trust across all gathered sources
type CredibilityAnalysis struct {
	AverageScore    float64             `json:"averageScore"`
	OverallLevel    CredibilityLevel    `json:"overallLevel"`
	DomainBreakdown []DomainCredibility `json:"domainBreakdown"`
}
