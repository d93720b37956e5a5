package model

// Config is the complete runtime configuration
type Config struct {
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Credentials Credentials       `yaml:"credentials" mapstructure:"credentials"`
	Search      SearchConfig      `yaml:"search" mapstructure:"search"`
	FactCheck   FactCheckConfig   `yaml:"fact_check" mapstructure:"fact_check"`
	Classifier  LLMConfig         `yaml:"classifier" mapstructure:"classifier"`
	Verifier    VerifierConfig    `yaml:"verifier" mapstructure:"verifier"`
	Bias        BiasConfig        `yaml:"bias" mapstructure:"bias"`
	Credibility CredibilityConfig `yaml:"credibility" mapstructure:"credibility"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Batch       BatchConfig       `yaml:"batch" mapstructure:"batch"`
}

// ServerConfig configures the HTTP entry point
type ServerConfig struct {
	Addr           string   `yaml:"addr" mapstructure:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	MaxBodyBytes   int64    `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// LogConfig configures structured logging
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text, json
}

// HTTPConfig configures outbound HTTP used for URL ingestion and providers
type HTTPConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBytes       int64  `yaml:"max_bytes" mapstructure:"max_bytes"`
	MaxRedirects   int    `yaml:"max_redirects" mapstructure:"max_redirects"`
	RespectRobots  bool   `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy      string `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy     string `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy        string `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// Credentials holds provider secrets. An empty value disables the capability.
type Credentials struct {
	GoogleFactCheck string `yaml:"google_fact_check_api_key" mapstructure:"google_fact_check_api_key"`
	SerpAPI         string `yaml:"serpapi_key" mapstructure:"serpapi_key"`
	NewsAPI         string `yaml:"newsapi_key" mapstructure:"newsapi_key"`
	OpenAI          string `yaml:"openai_api_key" mapstructure:"openai_api_key"`
	Groq            string `yaml:"groq_api_key" mapstructure:"groq_api_key"`
	Anthropic       string `yaml:"anthropic_api_key" mapstructure:"anthropic_api_key"`
	OllamaBaseURL   string `yaml:"ollama_base_url" mapstructure:"ollama_base_url"`
}

// Masked returns a copy safe to print
func (c Credentials) Masked() Credentials {
	return Credentials{
		GoogleFactCheck: mask(c.GoogleFactCheck),
		SerpAPI:         mask(c.SerpAPI),
		NewsAPI:         mask(c.NewsAPI),
		OpenAI:          mask(c.OpenAI),
		Groq:            mask(c.Groq),
		Anthropic:       mask(c.Anthropic),
		OllamaBaseURL:   c.OllamaBaseURL,
	}
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "****" + secret[len(secret)-2:]
}

// SearchConfig configures evidence gathering
type SearchConfig struct {
	SerpAPIURL        string  `yaml:"serpapi_url" mapstructure:"serpapi_url"`
	NewsAPIURL        string  `yaml:"newsapi_url" mapstructure:"newsapi_url"`
	RSSURLTemplate    string  `yaml:"rss_url_template" mapstructure:"rss_url_template"` // %s is replaced by the escaped query
	PrimaryLimit      int     `yaml:"primary_limit" mapstructure:"primary_limit"`
	NewsLimit         int     `yaml:"news_limit" mapstructure:"news_limit"`
	MaxSources        int     `yaml:"max_sources" mapstructure:"max_sources"`
	TopUpThreshold    int     `yaml:"top_up_threshold" mapstructure:"top_up_threshold"`
	TimeoutSeconds    int     `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`

	// HostRates overrides RequestsPerSecond for single provider hosts,
	// e.g. serpapi.com: 1. Zero or less means unlimited.
	HostRates map[string]float64 `yaml:"host_rates" mapstructure:"host_rates"`
}

// FactCheckConfig configures the fact-check lookup
type FactCheckConfig struct {
	URL            string `yaml:"url" mapstructure:"url"`
	LanguageCode   string `yaml:"language_code" mapstructure:"language_code"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// LLMConfig selects and tunes one language-model role.
// An empty Provider picks one from the available credentials.
type LLMConfig struct {
	Provider       string  `yaml:"provider" mapstructure:"provider"` // openai, groq, anthropic, ollama
	Model          string  `yaml:"model" mapstructure:"model"`
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSeconds int     `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	MaxTokens      int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature    float64 `yaml:"temperature" mapstructure:"temperature"`
}

// VerifierConfig configures the evidence-constrained claim verifier
type VerifierConfig struct {
	LLMConfig      `yaml:",inline" mapstructure:",squash"`
	StrictEvidence bool `yaml:"strict_evidence" mapstructure:"strict_evidence"`
}

// BiasConfig configures the bias detector
type BiasConfig struct {
	LLMConfig `yaml:",inline" mapstructure:",squash"`
	MaxChars  int `yaml:"max_chars" mapstructure:"max_chars"`
}

// CredibilityConfig extends or overrides the built-in domain trust table
type CredibilityConfig struct {
	Overrides map[string]float64 `yaml:"overrides,omitempty" mapstructure:"overrides"`
}

// CacheConfig configures per-claim signal caching
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled" mapstructure:"enabled"`
	TTLMinutes int    `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
	Dir        string `yaml:"dir" mapstructure:"dir"`             // Disk layer, empty disables
	RedisURL   string `yaml:"redis_url" mapstructure:"redis_url"` // Redis layer (redis://host:6379/0), empty disables
}

// BatchConfig configures batch analysis
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":5000",
			AllowedOrigins: []string{"*"},
			MaxBodyBytes:   1 << 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		HTTP: HTTPConfig{
			TimeoutSeconds: 10,
			UserAgent:      "TruthLens/0.1 (+https://github.com/ppiankov/truthlens)",
			MaxBytes:       2_000_000,
			MaxRedirects:   3,
			RespectRobots:  true,
		},
		Search: SearchConfig{
			SerpAPIURL:        "https://serpapi.com/search.json",
			NewsAPIURL:        "https://newsapi.org/v2/everything",
			PrimaryLimit:      3,
			NewsLimit:         5,
			MaxSources:        5,
			TopUpThreshold:    3,
			TimeoutSeconds:    10,
			RequestsPerSecond: 5,
		},
		FactCheck: FactCheckConfig{
			URL:            "https://factchecktools.googleapis.com/v1alpha1/claims:search",
			LanguageCode:   "en",
			TimeoutSeconds: 10,
		},
		Classifier: LLMConfig{
			TimeoutSeconds: 30,
			MaxTokens:      5,
			Temperature:    0,
		},
		Verifier: VerifierConfig{
			LLMConfig: LLMConfig{
				TimeoutSeconds: 30,
				MaxTokens:      200,
				Temperature:    0,
			},
			StrictEvidence: true,
		},
		Bias: BiasConfig{
			LLMConfig: LLMConfig{
				TimeoutSeconds: 30,
				MaxTokens:      100,
				Temperature:    0.1,
			},
			MaxChars: 1000,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLMinutes: 60,
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
	}
}
