package factcheck

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/ppiankov/truthlens/internal/cache"
	"github.com/ppiankov/truthlens/internal/model"
	"github.com/ppiankov/truthlens/internal/worker"
)

const cacheKind = "factcheck"

// Keyword sets, matched at the start of a word so that "incorrect" never
// reads as "correct" and "untrue" never reads as "true".
var (
	contradictedKeywords = []string{
		"false", "incorrect", "wrong", "misleading", "contradicted",
		"debunked", "untrue", "fake", "fabricated", "bogus", "inaccurate",
	}
	partialKeywords = []string{
		"partly", "partial", "mixed", "somewhat", "half",
		"exaggerated", "overstated", "understated",
	}
	verifiedKeywords = []string{
		"true", "verified", "correct", "accurate", "confirmed",
		"fact", "supported", "valid", "authentic", "genuine",
	}

	contradictedRe = keywordPattern(contradictedKeywords)
	partialRe      = keywordPattern(partialKeywords)
	verifiedRe     = keywordPattern(verifiedKeywords)
)

func keywordPattern(words []string) *regexp.Regexp {
	return regexp.MustCompile(`\b(?:` + strings.Join(words, "|") + `)`)
}

// MapRating maps a published textual rating onto a status. A rating that
// names a falsehood wins over a partial one, which wins over a true one.
func MapRating(rating string) model.FactCheckStatus {
	lower := strings.ToLower(strings.TrimSpace(rating))
	switch {
	case lower == "":
		return model.FactCheckNone
	case contradictedRe.MatchString(lower):
		return model.FactCheckContradicted
	case partialRe.MatchString(lower):
		return model.FactCheckPartiallyVerified
	case verifiedRe.MatchString(lower):
		return model.FactCheckVerified
	default:
		return model.FactCheckNone
	}
}

// Lookup matches claims against published fact checks
type Lookup struct {
	searcher Searcher
	limiter  *worker.Limiter
	endpoint string
	cache    cache.Cache
	cacheTTL time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

// Options configures a Lookup
type Options struct {
	Endpoint string // Rate limited host
	Limiter  *worker.Limiter
	Cache    cache.Cache
	CacheTTL time.Duration
	Timeout  time.Duration
}

// NewLookup creates a lookup. A nil searcher always yields No Existing Check.
func NewLookup(searcher Searcher, opts Options, logger *slog.Logger) *Lookup {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Lookup{
		searcher: searcher,
		limiter:  opts.Limiter,
		endpoint: opts.Endpoint,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		timeout:  opts.Timeout,
		logger:   logger.With("component", "factcheck"),
	}
}

// Check never fails; unavailability and errors degrade to No Existing Check
func (l *Lookup) Check(ctx context.Context, claim string) model.FactCheckResult {
	if l.searcher == nil {
		return model.NoFactCheck()
	}

	key := cache.CacheKey(cacheKind, claim)
	if cached, ok := cache.GetJSON[model.FactCheckResult](ctx, l.cache, key); ok {
		l.logger.Debug("fact-check cache hit")
		return cached
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	if l.endpoint != "" {
		if err := l.limiter.Wait(ctx, l.endpoint); err != nil {
			l.logger.Warn("fact-check rate limit wait failed", "error", err)
			return model.NoFactCheck()
		}
	}

	review, err := l.searcher.Search(ctx, claim)
	if err != nil {
		l.logger.Warn("fact-check lookup failed", "error", err)
		return model.NoFactCheck()
	}

	result := model.NoFactCheck()
	if review != nil {
		result = model.FactCheckResult{
			Status:    MapRating(review.TextualRating),
			Publisher: review.Publisher,
			SourceURL: review.URL,
			ClaimText: review.ClaimText,
			Rating:    review.TextualRating,
		}
	}

	if err := cache.SetJSON(ctx, l.cache, key, result, l.cacheTTL); err != nil {
		l.logger.Debug("fact-check cache write failed", "error", err)
	}
	return result
}
