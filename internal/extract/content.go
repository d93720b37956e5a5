package extract

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	nethtml "golang.org/x/net/html"
)

// Adapter selects the main text of a page for one kind of site
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// CanHandle checks if this adapter can handle the given URL/content
	CanHandle(pageURL string, contentType string) bool

	// Text returns the readable body text of the document
	Text(doc *goquery.Document) string
}

// ContentExtractor turns fetched HTML or submitted text into plain text
type ContentExtractor struct {
	adapters  []Adapter
	generic   Adapter
	sanitizer *bluemonday.Policy
}

// NewContentExtractor creates an extractor with the built-in adapters
func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{
		adapters:  []Adapter{&wikipediaAdapter{}},
		generic:   &genericAdapter{},
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Register adds a site-specific adapter ahead of the built-in ones
func (c *ContentExtractor) Register(adapter Adapter) {
	c.adapters = append([]Adapter{adapter}, c.adapters...)
}

// FindAdapter finds the best adapter for the given URL and content type
func (c *ContentExtractor) FindAdapter(pageURL, contentType string) Adapter {
	for _, a := range c.adapters {
		if a.CanHandle(pageURL, contentType) {
			return a
		}
	}
	return c.generic
}

// FromHTML extracts readable text from an HTML page
func (c *ContentExtractor) FromHTML(body, pageURL, contentType string) (string, error) {
	root, err := nethtml.Parse(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)
	doc.Find("script, style, noscript, iframe, nav, footer, header, aside").Remove()

	text := normalizeSpace(c.FindAdapter(pageURL, contentType).Text(doc))
	if text == "" {
		return "", fmt.Errorf("no readable text in %s", pageURL)
	}
	return text, nil
}

// Sanitize strips markup from submitted text and decodes entities
func (c *ContentExtractor) Sanitize(text string) string {
	return strings.TrimSpace(html.UnescapeString(c.sanitizer.Sanitize(text)))
}

var spaceRe = regexp.MustCompile(`\s+`)

func normalizeSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// paragraphs joins the text of the matched paragraph nodes
func paragraphs(sel *goquery.Selection) string {
	var parts []string
	sel.Each(func(_ int, p *goquery.Selection) {
		if t := normalizeSpace(p.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " ")
}

type genericAdapter struct{}

func (a *genericAdapter) Name() string { return "generic" }

func (a *genericAdapter) CanHandle(string, string) bool { return true }

func (a *genericAdapter) Text(doc *goquery.Document) string {
	for _, selector := range []string{"article p", "main p", "p"} {
		if text := paragraphs(doc.Find(selector)); text != "" {
			return text
		}
	}
	return doc.Find("body").Text()
}

type wikipediaAdapter struct{}

func (a *wikipediaAdapter) Name() string { return "wikipedia" }

func (a *wikipediaAdapter) CanHandle(pageURL, _ string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "wikipedia.org" || strings.HasSuffix(host, ".wikipedia.org")
}

func (a *wikipediaAdapter) Text(doc *goquery.Document) string {
	content := doc.Find("#mw-content-text")
	content.Find("sup.reference, .mw-editsection, table, .navbox").Remove()
	return paragraphs(content.Find("p"))
}
