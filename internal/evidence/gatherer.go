package evidence

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/ppiankov/truthlens/internal/cache"
	"github.com/ppiankov/truthlens/internal/credibility"
	"github.com/ppiankov/truthlens/internal/model"
	"github.com/ppiankov/truthlens/internal/worker"
)

const (
	cacheKind = "evidence"

	// DefaultMaxSources caps the gathered evidence list
	DefaultMaxSources = 5

	// DefaultTopUpThreshold is the result count below which the next searcher is queried
	DefaultTopUpThreshold = 3
)

// Options configures a Gatherer
type Options struct {
	MaxSources     int
	TopUpThreshold int
	Timeout        time.Duration // Per searcher call
	Limiter        *worker.Limiter
	Cache          cache.Cache
	CacheTTL       time.Duration
}

// Gatherer collects evidence for a claim from an ordered list of searchers
type Gatherer struct {
	searchers   []Searcher
	credibility *credibility.Service
	sanitizer   *bluemonday.Policy
	opts        Options
	logger      *slog.Logger
}

// NewGatherer creates a gatherer. searchers is in priority order: the
// first is always queried, each later one only while results are short.
func NewGatherer(searchers []Searcher, cred *credibility.Service, opts Options, logger *slog.Logger) *Gatherer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cred == nil {
		cred = credibility.NewService(nil)
	}
	if opts.MaxSources <= 0 {
		opts.MaxSources = DefaultMaxSources
	}
	if opts.TopUpThreshold <= 0 {
		opts.TopUpThreshold = DefaultTopUpThreshold
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	var active []Searcher
	for _, s := range searchers {
		if s != nil {
			active = append(active, s)
		}
	}

	return &Gatherer{
		searchers:   active,
		credibility: cred,
		sanitizer:   bluemonday.StrictPolicy(),
		opts:        opts,
		logger:      logger.With("component", "evidence"),
	}
}

// Providers lists the configured searcher names in query order
func (g *Gatherer) Providers() []string {
	names := make([]string, 0, len(g.searchers))
	for _, s := range g.searchers {
		names = append(names, s.Name())
	}
	return names
}

// Gather never fails and never returns more than MaxSources sources.
// Searcher errors are logged and skipped.
func (g *Gatherer) Gather(ctx context.Context, claim string) (sources []model.EvidenceSource) {
	sources = []model.EvidenceSource{}
	if len(g.searchers) == 0 {
		return sources
	}

	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("evidence gathering panicked", "panic", r)
			sources = []model.EvidenceSource{}
		}
	}()

	key := cache.CacheKey(cacheKind, claim)
	if cached, ok := cache.GetJSON[[]model.EvidenceSource](ctx, g.opts.Cache, key); ok {
		g.logger.Debug("evidence cache hit", "sources", len(cached))
		return cached
	}

	seen := make(map[string]bool)
	succeeded := false
	for i, s := range g.searchers {
		if i > 0 && len(sources) >= g.opts.TopUpThreshold {
			break
		}

		results, err := g.search(ctx, s, claim)
		if err != nil {
			g.logger.Warn("evidence search failed", "provider", s.Name(), "error", err)
			continue
		}
		succeeded = true

		for _, r := range results {
			if r.URL == "" || seen[r.URL] {
				continue
			}
			seen[r.URL] = true
			sources = append(sources, g.enrich(r))
		}
	}

	if len(sources) > g.opts.MaxSources {
		sources = sources[:g.opts.MaxSources]
	}

	if succeeded {
		if err := cache.SetJSON(ctx, g.opts.Cache, key, sources, g.opts.CacheTTL); err != nil {
			g.logger.Debug("evidence cache write failed", "error", err)
		}
	}
	return sources
}

func (g *Gatherer) search(ctx context.Context, s Searcher, claim string) ([]model.EvidenceSource, error) {
	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	if endpoint := s.Endpoint(); endpoint != "" {
		if err := g.opts.Limiter.Wait(ctx, endpoint); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}
	return s.Search(ctx, claim)
}

func (g *Gatherer) enrich(src model.EvidenceSource) model.EvidenceSource {
	src.Title = g.clean(src.Title)
	src.Snippet = g.clean(src.Snippet)
	src.Domain = ExtractDomain(src.URL)
	src.TrustScore = g.credibility.TrustScore(src.Domain)
	return src
}

func (g *Gatherer) clean(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(g.sanitizer.Sanitize(s))), " ")
}

// ExtractDomain returns the lower-cased host of rawURL with a leading
// "www." removed, or "unknown" when it has none
func ExtractDomain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return model.UnknownDomain
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// CalculateAgreement scores evidence volume and domain diversity:
// 0.7*min(n/5, 1) + 0.3*uniqueDomains/n, and 0.5 with no sources
func CalculateAgreement(sources []model.EvidenceSource) float64 {
	if len(sources) == 0 {
		return 0.5
	}
	n := float64(len(sources))

	domains := make(map[string]bool)
	for _, s := range sources {
		domains[s.Domain] = true
	}

	volume := math.Min(n/5, 1.0)
	diversity := float64(len(domains)) / n
	return volume*0.7 + diversity*0.3
}
