package llm

import (
	"context"
	"regexp"
	"strings"
)

// Provider is a language-reasoning capability
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends one system+user exchange and returns the raw answer
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest is a single-turn prompt
type CompletionRequest struct {
	System string
	Prompt string

	// Model overrides the provider default
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	Temperature float64

	// JSON asks the provider for a JSON object response where supported
	JSON bool
}

// CompletionResponse is the provider answer
type CompletionResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "groq", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Groq/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens and Temperature are role defaults used when the request leaves them unset
	MaxTokens   int
	Temperature float64

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// Enabled reports whether the configuration selects a live provider
func (c Config) Enabled() bool {
	switch strings.ToLower(c.Provider) {
	case "":
		return false
	case "ollama":
		return c.Model != ""
	default:
		return c.APIKey != ""
	}
}

var urlPattern = regexp.MustCompile(`https?://[^\s\)\]"'<>]+`)

// ExtractURLs returns the distinct http(s) URLs in text, in order of appearance
func ExtractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)

	seen := make(map[string]bool)
	var unique []string
	for _, u := range matches {
		u = strings.TrimRight(u, ".,;:!?")
		if !seen[u] {
			seen[u] = true
			unique = append(unique, u)
		}
	}
	return unique
}

func timeoutOrDefault(seconds, fallback int) int {
	if seconds <= 0 {
		return fallback
	}
	return seconds
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
