package factcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Review is the first published review of the best matching claim
type Review struct {
	ClaimText     string
	TextualRating string
	Publisher     string
	URL           string
}

// Searcher looks a claim up in a fact-check database.
// A nil review with a nil error means no published check matched.
type Searcher interface {
	Search(ctx context.Context, query string) (*Review, error)
}

// GoogleClient queries the Google Fact Check Tools claims:search endpoint
type GoogleClient struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	languageCode string
}

type claimsResponse struct {
	Claims []struct {
		Text        string `json:"text"`
		ClaimReview []struct {
			Publisher struct {
				Name string `json:"name"`
				Site string `json:"site"`
			} `json:"publisher"`
			URL           string `json:"url"`
			Title         string `json:"title"`
			TextualRating string `json:"textualRating"`
		} `json:"claimReview"`
	} `json:"claims"`
}

// NewGoogleClient creates a client. languageCode defaults to "en".
func NewGoogleClient(httpClient *http.Client, baseURL, apiKey, languageCode string) *GoogleClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if languageCode == "" {
		languageCode = "en"
	}
	return &GoogleClient{
		httpClient:   httpClient,
		baseURL:      baseURL,
		apiKey:       apiKey,
		languageCode: languageCode,
	}
}

// Search implements Searcher
func (c *GoogleClient) Search(ctx context.Context, query string) (*Review, error) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse fact-check URL: %w", err)
	}
	params := endpoint.Query()
	params.Set("query", query)
	params.Set("key", c.apiKey)
	params.Set("languageCode", c.languageCode)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fact-check API error (status %d): %s", resp.StatusCode, body)
	}

	var decoded claimsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(decoded.Claims) == 0 || len(decoded.Claims[0].ClaimReview) == 0 {
		return nil, nil
	}

	first := decoded.Claims[0]
	review := first.ClaimReview[0]
	publisher := review.Publisher.Name
	if publisher == "" {
		publisher = "Unknown"
	}

	return &Review{
		ClaimText:     first.Text,
		TextualRating: review.TextualRating,
		Publisher:     publisher,
		URL:           review.URL,
	}, nil
}
