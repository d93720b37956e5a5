package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/truthlens/internal/model"
)

// NewProvider creates a new LLM provider based on configuration.
// A disabled configuration yields a nil provider and no error.
func NewProvider(config Config) (Provider, error) {
	if !config.Enabled() {
		return nil, nil
	}

	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "groq":
		return NewGroqProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, groq, anthropic, ollama)", config.Provider)
	}
}

// Resolve builds the provider configuration of one role. An explicit
// role provider wins; otherwise the first entry of preference with a
// credential present is used. No match disables the role.
func Resolve(role model.LLMConfig, creds model.Credentials, httpCfg model.HTTPConfig, preference ...string) Config {
	cfg := Config{
		Model:       role.Model,
		BaseURL:     role.BaseURL,
		Timeout:     timeoutOrDefault(role.TimeoutSeconds, 30),
		MaxTokens:   role.MaxTokens,
		Temperature: role.Temperature,
		HTTPProxy:   httpCfg.HTTPProxy,
		HTTPSProxy:  httpCfg.HTTPSProxy,
		NoProxy:     httpCfg.NoProxy,
	}

	candidates := preference
	if role.Provider != "" {
		candidates = []string{role.Provider}
	}

	for _, name := range candidates {
		name = strings.ToLower(name)
		key := credentialFor(name, creds)
		switch name {
		case "ollama":
			if cfg.BaseURL == "" {
				cfg.BaseURL = creds.OllamaBaseURL
			}
			if cfg.BaseURL == "" && role.Provider == "" {
				continue
			}
		default:
			if key == "" {
				continue
			}
		}
		cfg.Provider = name
		cfg.APIKey = key
		return cfg
	}

	return cfg
}

func credentialFor(name string, creds model.Credentials) string {
	switch name {
	case "openai":
		return creds.OpenAI
	case "groq":
		return creds.Groq
	case "anthropic", "claude":
		return creds.Anthropic
	default:
		return ""
	}
}
