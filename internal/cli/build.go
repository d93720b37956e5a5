package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ppiankov/truthlens/internal/bias"
	"github.com/ppiankov/truthlens/internal/cache"
	"github.com/ppiankov/truthlens/internal/classify"
	"github.com/ppiankov/truthlens/internal/credibility"
	"github.com/ppiankov/truthlens/internal/evidence"
	"github.com/ppiankov/truthlens/internal/extract"
	"github.com/ppiankov/truthlens/internal/factcheck"
	"github.com/ppiankov/truthlens/internal/llm"
	"github.com/ppiankov/truthlens/internal/model"
	"github.com/ppiankov/truthlens/internal/pipeline"
	"github.com/ppiankov/truthlens/internal/score"
	"github.com/ppiankov/truthlens/internal/util"
	"github.com/ppiankov/truthlens/internal/verify"
	"github.com/ppiankov/truthlens/internal/worker"
)

// Provider preference per reasoning role when none is configured
var (
	classifierPreference = []string{"groq", "openai", "anthropic", "ollama"}
	verifierPreference   = []string{"groq", "openai", "anthropic", "ollama"}
	biasPreference       = []string{"openai", "groq", "anthropic", "ollama"}
)

// app holds the wired components shared by every entry point
type app struct {
	pipeline    *pipeline.Pipeline
	credibility *credibility.Service
	reasoners   []reasoner
	disabled    []string
}

// reasoner is the language-reasoning provider serving one role
type reasoner struct {
	role     string
	provider llm.Provider
}

// buildApp wires every capability from cfg. A capability without its
// credential is left nil and reported as disabled.
func buildApp(ctx context.Context, cfg model.Config, logger *slog.Logger) (*app, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	creds := cfg.Credentials

	cred := credibility.NewService(credibility.NewTable(cfg.Credibility.Overrides))
	limiter := newLimiter(cfg.Search)

	var store cache.Cache
	ttl := time.Duration(cfg.Cache.TTLMinutes) * time.Minute
	if cfg.Cache.Enabled {
		c, err := cache.New(ctx, cache.Options{TTL: ttl, Dir: cfg.Cache.Dir, RedisURL: cfg.Cache.RedisURL})
		if err != nil {
			return nil, fmt.Errorf("init cache: %w", err)
		}
		store = c
	}

	var disabled []string
	var reasoners []reasoner

	searchTimeout := seconds(cfg.Search.TimeoutSeconds, 10)
	searchClient := util.NewHTTPClient(cfg.HTTP, searchTimeout)
	var searchers []evidence.Searcher
	if creds.SerpAPI != "" {
		searchers = append(searchers, evidence.NewSerpAPI(searchClient, cfg.Search.SerpAPIURL, creds.SerpAPI, cfg.Search.PrimaryLimit))
	} else {
		disabled = append(disabled, "web_search")
	}
	if creds.NewsAPI != "" {
		searchers = append(searchers, evidence.NewNewsAPI(searchClient, cfg.Search.NewsAPIURL, creds.NewsAPI, cfg.Search.NewsLimit))
	} else {
		disabled = append(disabled, "news_search")
	}
	if cfg.Search.RSSURLTemplate != "" {
		searchers = append(searchers, evidence.NewRSS(searchClient, cfg.Search.RSSURLTemplate, cfg.HTTP.UserAgent, cfg.Search.NewsLimit))
	}
	gatherer := evidence.NewGatherer(searchers, cred, evidence.Options{
		MaxSources:     cfg.Search.MaxSources,
		TopUpThreshold: cfg.Search.TopUpThreshold,
		Timeout:        searchTimeout,
		Limiter:        limiter,
		Cache:          store,
		CacheTTL:       ttl,
	}, logger)

	factTimeout := seconds(cfg.FactCheck.TimeoutSeconds, 10)
	var factSearcher factcheck.Searcher
	if creds.GoogleFactCheck != "" {
		factSearcher = factcheck.NewGoogleClient(util.NewHTTPClient(cfg.HTTP, factTimeout), cfg.FactCheck.URL, creds.GoogleFactCheck, cfg.FactCheck.LanguageCode)
	} else {
		disabled = append(disabled, "fact_check")
	}
	lookup := factcheck.NewLookup(factSearcher, factcheck.Options{
		Endpoint: cfg.FactCheck.URL,
		Limiter:  limiter,
		Cache:    store,
		CacheTTL: ttl,
		Timeout:  factTimeout,
	}, logger)

	classifierLLM, err := roleProvider("classifier", cfg.Classifier, cfg, classifierPreference, &disabled, logger)
	if err != nil {
		return nil, err
	}
	biasLLM, err := roleProvider("bias", cfg.Bias.LLMConfig, cfg, biasPreference, &disabled, logger)
	if err != nil {
		return nil, err
	}
	verifierLLM, err := roleProvider("verifier", cfg.Verifier.LLMConfig, cfg, verifierPreference, &disabled, logger)
	if err != nil {
		return nil, err
	}
	for _, r := range []reasoner{{"classifier", classifierLLM}, {"bias", biasLLM}, {"verifier", verifierLLM}} {
		if r.provider != nil {
			reasoners = append(reasoners, r)
		}
	}

	p := pipeline.New(pipeline.Deps{
		Fetcher:    pipeline.NewFetcher(cfg.HTTP, logger),
		Content:    extract.NewContentExtractor(),
		Claims:     extract.NewClaimExtractor(),
		Classifier: classify.New(classifierLLM, cfg.Classifier, logger),
		FactCheck:  lookup,
		Evidence:   gatherer,
		Bias:       bias.NewDetector(biasLLM, cfg.Bias, logger),
		Verifier:   verify.NewVerifier(verifierLLM, cfg.Verifier, logger),
		Aggregator: score.NewAggregator(cred),
		Disabled:   disabled,
		Logger:     logger,
	})

	logger.Debug("components ready",
		"search_providers", gatherer.Providers(),
		"disabled", disabled,
		"cache", cfg.Cache.Enabled)

	return &app{pipeline: p, credibility: cred, reasoners: reasoners, disabled: disabled}, nil
}

// roleProvider builds the language-reasoning provider of one role, or nil
// when no credential selects one
func roleProvider(role string, roleCfg model.LLMConfig, cfg model.Config, preference []string, disabled *[]string, logger *slog.Logger) (llm.Provider, error) {
	providerCfg := llm.Resolve(roleCfg, cfg.Credentials, cfg.HTTP, preference...)
	provider, err := llm.NewProvider(providerCfg)
	if err != nil {
		return nil, fmt.Errorf("create %s provider: %w", role, err)
	}
	if provider == nil {
		*disabled = append(*disabled, role)
		return nil, nil
	}
	logger.Debug("llm provider selected", "role", role, "provider", provider.Name())
	return provider, nil
}

// newLimiter applies the global search rate and its per-host overrides
func newLimiter(cfg model.SearchConfig) *worker.Limiter {
	limiter := worker.NewLimiter(cfg.RequestsPerSecond, 0)
	for host, rps := range cfg.HostRates {
		limiter.SetHostRate(host, rps, 0)
	}
	return limiter
}

func seconds(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Second
}
