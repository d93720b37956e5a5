package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/truthlens/internal/util"
)

// maxResponseBytes bounds a provider answer read into memory
const maxResponseBytes = 4 << 20

// APIError is a non-2xx answer from a provider API
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
}

// jsonAPI posts JSON bodies to one provider endpoint
type jsonAPI struct {
	provider string
	baseURL  string
	headers  http.Header
	client   *http.Client

	// errorMessage extracts the provider's error text from a failed response body
	errorMessage func(body []byte) string
}

func newJSONAPI(provider string, config Config, defaultBaseURL string, defaultTimeout int) *jsonAPI {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy)

	return &jsonAPI{
		provider: provider,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		headers:  http.Header{"Content-Type": []string{"application/json"}},
		client: &http.Client{
			Timeout:   time.Duration(timeoutOrDefault(config.Timeout, defaultTimeout)) * time.Second,
			Transport: transport,
		},
	}
}

// post sends in to path and decodes the answer into out
func (a *jsonAPI) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return a.do(req, out)
}

// get fetches path, decoding into out when it is non-nil
func (a *jsonAPI) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return a.do(req, out)
}

func (a *jsonAPI) do(req *http.Request, out any) error {
	for k, vs := range a.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := ""
		if a.errorMessage != nil {
			msg = a.errorMessage(raw)
		}
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return &APIError{Provider: a.provider, StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
