package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mmcdole/gofeed"

	"github.com/ppiankov/truthlens/internal/model"
)

// Searcher is one web or news search capability. Results carry Title,
// URL, Snippet and Provider; the gatherer fills Domain and TrustScore.
type Searcher interface {
	Name() string
	Endpoint() string
	Search(ctx context.Context, query string) ([]model.EvidenceSource, error)
}

// getJSON performs a GET with query params and decodes a JSON body
func getJSON(ctx context.Context, client *http.Client, baseURL string, params url.Values, out any) error {
	endpoint, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("parse search URL: %w", err)
	}
	q := endpoint.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("search API error (status %d): %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// SerpAPI searches Google through serpapi.com
type SerpAPI struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limit   int
}

// NewSerpAPI creates a web searcher keeping the first limit organic results
func NewSerpAPI(client *http.Client, baseURL, apiKey string, limit int) *SerpAPI {
	if client == nil {
		client = http.DefaultClient
	}
	if limit <= 0 {
		limit = 3
	}
	return &SerpAPI{client: client, baseURL: baseURL, apiKey: apiKey, limit: limit}
}

func (s *SerpAPI) Name() string     { return "serpapi" }
func (s *SerpAPI) Endpoint() string { return s.baseURL }

func (s *SerpAPI) Search(ctx context.Context, query string) ([]model.EvidenceSource, error) {
	var resp struct {
		OrganicResults []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic_results"`
	}
	params := url.Values{
		"q":       {query},
		"api_key": {s.apiKey},
		"engine":  {"google"},
		"num":     {"10"},
		"safe":    {"active"},
	}
	if err := getJSON(ctx, s.client, s.baseURL, params, &resp); err != nil {
		return nil, err
	}

	var sources []model.EvidenceSource
	for _, r := range resp.OrganicResults {
		if len(sources) == s.limit {
			break
		}
		sources = append(sources, model.EvidenceSource{
			Title:    r.Title,
			URL:      r.Link,
			Snippet:  r.Snippet,
			Provider: s.Name(),
		})
	}
	return sources, nil
}

// NewsAPI searches newsapi.org articles
type NewsAPI struct {
	client   *http.Client
	baseURL  string
	apiKey   string
	pageSize int
}

// NewNewsAPI creates a news searcher
func NewNewsAPI(client *http.Client, baseURL, apiKey string, pageSize int) *NewsAPI {
	if client == nil {
		client = http.DefaultClient
	}
	if pageSize <= 0 {
		pageSize = 5
	}
	return &NewsAPI{client: client, baseURL: baseURL, apiKey: apiKey, pageSize: pageSize}
}

func (n *NewsAPI) Name() string     { return "newsapi" }
func (n *NewsAPI) Endpoint() string { return n.baseURL }

func (n *NewsAPI) Search(ctx context.Context, query string) ([]model.EvidenceSource, error) {
	var resp struct {
		Status   string `json:"status"`
		Message  string `json:"message"`
		Articles []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"articles"`
	}
	params := url.Values{
		"q":        {query},
		"apiKey":   {n.apiKey},
		"language": {"en"},
		"sortBy":   {"relevancy"},
		"pageSize": {strconv.Itoa(n.pageSize)},
	}
	if err := getJSON(ctx, n.client, n.baseURL, params, &resp); err != nil {
		return nil, err
	}
	if resp.Status == "error" {
		return nil, fmt.Errorf("newsapi: %s", resp.Message)
	}

	sources := make([]model.EvidenceSource, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		sources = append(sources, model.EvidenceSource{
			Title:    a.Title,
			URL:      a.URL,
			Snippet:  a.Description,
			Provider: n.Name(),
		})
	}
	return sources, nil
}

// RSS searches a news search feed. The URL template holds one %s for the
// escaped query, e.g. https://news.google.com/rss/search?q=%s&hl=en-US
type RSS struct {
	parser   *gofeed.Parser
	template string
	limit    int
}

// NewRSS creates a feed searcher
func NewRSS(client *http.Client, template, userAgent string, limit int) *RSS {
	parser := gofeed.NewParser()
	if client != nil {
		parser.Client = client
	}
	if userAgent != "" {
		parser.UserAgent = userAgent
	}
	if limit <= 0 {
		limit = 5
	}
	return &RSS{parser: parser, template: template, limit: limit}
}

func (r *RSS) Name() string     { return "rss" }
func (r *RSS) Endpoint() string { return fmt.Sprintf(r.template, "") }

func (r *RSS) Search(ctx context.Context, query string) ([]model.EvidenceSource, error) {
	feedURL := fmt.Sprintf(r.template, url.QueryEscape(query))
	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	var sources []model.EvidenceSource
	for _, item := range feed.Items {
		if len(sources) == r.limit {
			break
		}
		if item.Link == "" {
			continue
		}
		sources = append(sources, model.EvidenceSource{
			Title:    item.Title,
			URL:      item.Link,
			Snippet:  item.Description,
			Provider: r.Name(),
		})
	}
	return sources, nil
}
