package extract

import (
	"strings"

	"github.com/ppiankov/truthlens/internal/model"
)

// minClaimLength is the shortest segment accepted as a claim
const minClaimLength = 5

// ClaimExtractor takes a single checkable claim from raw text and flags
// opinion content before any signal is gathered
type ClaimExtractor struct {
	opinionMarkers []string
}

// NewClaimExtractor creates a claim extractor with the built-in opinion lexicon
func NewClaimExtractor() *ClaimExtractor {
	return &ClaimExtractor{
		opinionMarkers: []string{
			"i think",
			"i believe",
			"in my opinion",
			"seems like",
			"probably",
			"might be",
			"could be",
			"best",
			"worst",
		},
	}
}

// Extract returns the first '.'-delimited segment, trimmed, or
// model.NoClaimFound when it is shorter than five characters
func (e *ClaimExtractor) Extract(text string) string {
	first, _, _ := strings.Cut(text, ".")
	claim := strings.TrimSpace(first)
	if len([]rune(claim)) < minClaimLength {
		return model.NoClaimFound
	}
	return claim
}

// IsOpinionBased reports whether text contains any opinion marker,
// case-insensitively. Blank text counts as opinion.
func (e *ClaimExtractor) IsOpinionBased(text string) bool {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return true
	}
	for _, marker := range e.opinionMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// OpinionMarkers returns a copy of the lexicon
func (e *ClaimExtractor) OpinionMarkers() []string {
	out := make([]string, len(e.opinionMarkers))
	copy(out, e.opinionMarkers)
	return out
}
