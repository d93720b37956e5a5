package credibility

import (
	"github.com/ppiankov/truthlens/internal/model"
)

// Service converts source domains into trust scores and levels
type Service struct {
	table *Table
}

// NewService creates a credibility service over a trust table
func NewService(table *Table) *Service {
	if table == nil {
		table = NewTable(nil)
	}
	return &Service{table: table}
}

// TrustScore returns the trust score of a domain
func (s *Service) TrustScore(domain string) float64 {
	return s.table.Score(domain)
}

// AverageCredibility is the mean trust score of the sources, or 0.5 with none
func (s *Service) AverageCredibility(sources []model.EvidenceSource) float64 {
	if len(sources) == 0 {
		return 0.5
	}
	var sum float64
	for _, src := range sources {
		sum += s.sourceScore(src)
	}
	return sum / float64(len(sources))
}

func (s *Service) sourceScore(src model.EvidenceSource) float64 {
	if src.Domain == "" {
		return s.table.Score(src.URL)
	}
	return s.table.Score(src.Domain)
}

// Level buckets a [0,1] credibility score (0.8 / 0.6). Not the truth-score scale.
func Level(score float64) model.CredibilityLevel {
	switch {
	case score >= 0.8:
		return model.CredibilityHigh
	case score >= 0.6:
		return model.CredibilityMedium
	default:
		return model.CredibilityLow
	}
}

// TrustLabel is the five-step label of a trust score
func TrustLabel(score float64) string {
	switch {
	case score >= 0.85:
		return "Very High"
	case score >= 0.70:
		return "High"
	case score >= 0.55:
		return "Medium"
	case score >= 0.40:
		return "Low"
	default:
		return "Very Low"
	}
}

// IsReputable reports whether a domain scores at least 0.70
func (s *Service) IsReputable(domain string) bool {
	return s.table.Score(domain) >= 0.70
}

// Rating is the editorial rating of a domain
func (s *Service) Rating(domain string) string {
	score := s.table.Score(domain)
	switch {
	case score >= 0.85:
		return "Excellent"
	case score >= 0.70:
		return "Good"
	case score >= 0.55:
		return "Fair"
	case score >= 0.40:
		return "Poor"
	default:
		return "Very Poor"
	}
}

// DetailedAnalysis returns the average, its level and a per-source breakdown
func (s *Service) DetailedAnalysis(sources []model.EvidenceSource) model.CredibilityAnalysis {
	avg := s.AverageCredibility(sources)
	breakdown := make([]model.DomainCredibility, 0, len(sources))
	for _, src := range sources {
		score := s.sourceScore(src)
		title := src.Title
		if title == "" {
			title = "Unknown"
		}
		breakdown = append(breakdown, model.DomainCredibility{
			Domain:     src.Domain,
			TrustScore: score,
			TrustLevel: TrustLabel(score),
			Source:     title,
		})
	}
	return model.CredibilityAnalysis{
		AverageScore:    avg,
		OverallLevel:    Level(avg),
		DomainBreakdown: breakdown,
	}
}
