package credibility

import (
	"sort"
	"strings"
)

// DefaultScore is used when neither the table nor a TLD rule matches
const DefaultScore = 0.50

type entry struct {
	domain string
	score  float64
}

// builtin is ordered. Substring matching walks it top to bottom.
var builtin = []entry{
	// News
	{"bbc.com", 0.95},
	{"bbc.co.uk", 0.95},
	{"reuters.com", 0.95},
	{"apnews.com", 0.95},
	{"npr.org", 0.90},
	{"nytimes.com", 0.90},
	{"washingtonpost.com", 0.90},
	{"theguardian.com", 0.85},
	{"wsj.com", 0.85},
	{"ft.com", 0.85},
	{"cnn.com", 0.80},
	{"foxnews.com", 0.75},
	{"abcnews.go.com", 0.80},
	{"cbsnews.com", 0.80},
	{"nbcnews.com", 0.80},

	// Government
	{"gov.uk", 0.95},
	{"whitehouse.gov", 0.90},
	{"who.int", 0.90},
	{"cdc.gov", 0.90},
	{"nih.gov", 0.90},
	{"europa.eu", 0.85},

	// Academic
	{"harvard.edu", 0.90},
	{"stanford.edu", 0.90},
	{"mit.edu", 0.90},
	{"ox.ac.uk", 0.90},
	{"cam.ac.uk", 0.90},
	{"edu", 0.70},

	// Fact-checkers
	{"factcheck.org", 0.95},
	{"snopes.com", 0.90},
	{"politifact.com", 0.90},
	{"fullfact.org", 0.85},

	// Questionable
	{"breitbart.com", 0.40},
	{"dailymail.co.uk", 0.50},
	{"huffpost.com", 0.60},
	{"buzzfeed.com", 0.50},

	// Social
	{"twitter.com", 0.20},
	{"facebook.com", 0.20},
	{"reddit.com", 0.30},
	{"tiktok.com", 0.10},

	// Search engines
	{"google.com", 0.60},
	{"bing.com", 0.60},
}

var tldScores = []entry{
	{".edu", 0.70},
	{".gov", 0.85},
	{".org", 0.65},
	{".com", 0.50},
}

// Table maps domains to static trust scores in [0,1]
type Table struct {
	entries []entry
	exact   map[string]float64
}

// NewTable builds the built-in table. Overrides replace or extend it and
// are matched before built-in entries, longest domain first.
func NewTable(overrides map[string]float64) *Table {
	t := &Table{exact: make(map[string]float64, len(builtin)+len(overrides))}

	extra := make([]entry, 0, len(overrides))
	for domain, score := range overrides {
		domain = CleanDomain(domain)
		if domain == "" {
			continue
		}
		extra = append(extra, entry{domain, clamp01(score)})
	}
	sort.Slice(extra, func(i, j int) bool {
		if len(extra[i].domain) != len(extra[j].domain) {
			return len(extra[i].domain) > len(extra[j].domain)
		}
		return extra[i].domain < extra[j].domain
	})

	t.entries = append(extra, builtin...)
	for i := len(t.entries) - 1; i >= 0; i-- {
		t.exact[t.entries[i].domain] = t.entries[i].score
	}
	return t
}

// Score returns the trust score of a domain or URL. Pure and idempotent.
func (t *Table) Score(domain string) float64 {
	domain = CleanDomain(domain)
	if domain == "" {
		return DefaultScore
	}

	if score, ok := t.exact[domain]; ok {
		return score
	}

	// Subdomains, e.g. news.bbc.co.uk. Matches on a label boundary so
	// microsoft.com does not pick up ft.com.
	for _, e := range t.entries {
		if strings.HasSuffix(domain, "."+e.domain) {
			return e.score
		}
	}

	for _, tld := range tldScores {
		if strings.HasSuffix(domain, tld.domain) {
			return tld.score
		}
	}

	return DefaultScore
}

// CleanDomain lower-cases and strips scheme, leading www., path and port
func CleanDomain(raw string) string {
	d := strings.ToLower(strings.TrimSpace(raw))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	if idx := strings.IndexAny(d, "/?#"); idx >= 0 {
		d = d[:idx]
	}
	if idx := strings.LastIndex(d, ":"); idx > 0 {
		d = d[:idx]
	}
	return d
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
