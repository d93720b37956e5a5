package extract

import (
	"strings"
	"testing"

	"github.com/ppiankov/truthlens/internal/model"
)

func TestClaimExtractor_Extract(t *testing.T) {
	extractor := NewClaimExtractor()

	tests := []struct {
		input    string
		expected string
		desc     string
	}{
		{"Water boils at 100 degrees. It is hot.", "Water boils at 100 degrees", "First sentence"},
		{"   The Earth orbits the Sun   ", "The Earth orbits the Sun", "No terminator, trimmed"},
		{"Hi. Longer second sentence here.", model.NoClaimFound, "Too short first segment"},
		{"", model.NoClaimFound, "Empty input"},
		{". Leading dot", model.NoClaimFound, "Empty first segment"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := extractor.Extract(tt.input); got != tt.expected {
				t.Errorf("Extract(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestClaimExtractor_IsOpinionBased(t *testing.T) {
	extractor := NewClaimExtractor()

	tests := []struct {
		input    string
		expected bool
	}{
		{"I think the new policy is the best decision ever made", true},
		{"In My Opinion taxes are too high", true},
		{"It seems like rain", true},
		{"This is the WORST outcome", true},
		{"It could be true", true},
		{"The Eiffel Tower is in Paris.", false},
		{"GDP grew 3 percent in 2023.", false},
		{"   ", true},
	}

	for _, tt := range tests {
		if got := extractor.IsOpinionBased(tt.input); got != tt.expected {
			t.Errorf("IsOpinionBased(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestContentExtractor_FromHTML_Generic(t *testing.T) {
	c := NewContentExtractor()

	page := `<html><head><title>x</title><script>var a = "I think";</script></head>
	<body>
		<nav><p>Home | About</p></nav>
		<article>
			<p>The bridge opened in 1932.</p>
			<p>It spans   the harbour.</p>
		</article>
		<footer><p>Copyright</p></footer>
	</body></html>`

	text, err := c.FromHTML(page, "https://news.example.com/story", "text/html")
	if err != nil {
		t.Fatalf("FromHTML failed: %v", err)
	}
	if text != "The bridge opened in 1932. It spans the harbour." {
		t.Errorf("Unexpected text: %q", text)
	}
}

func TestContentExtractor_FromHTML_Wikipedia(t *testing.T) {
	c := NewContentExtractor()

	page := `<html><body>
	<div id="mw-content-text">
		<p>Laksa is a spicy noodle soup.<sup class="reference">[1]</sup></p>
		<table><tr><td><p>Infobox text</p></td></tr></table>
	</div>
	<p>Sidebar paragraph</p>
	</body></html>`

	if got := c.FindAdapter("https://en.wikipedia.org/wiki/Laksa", "text/html").Name(); got != "wikipedia" {
		t.Fatalf("Expected wikipedia adapter, got %s", got)
	}

	text, err := c.FromHTML(page, "https://en.wikipedia.org/wiki/Laksa", "text/html")
	if err != nil {
		t.Fatalf("FromHTML failed: %v", err)
	}
	if text != "Laksa is a spicy noodle soup." {
		t.Errorf("Unexpected text: %q", text)
	}
}

func TestContentExtractor_FromHTML_Empty(t *testing.T) {
	c := NewContentExtractor()
	if _, err := c.FromHTML("<html><body><script>x()</script></body></html>", "https://example.com", ""); err == nil {
		t.Error("Expected error for page without text")
	}
}

func TestContentExtractor_Sanitize(t *testing.T) {
	c := NewContentExtractor()
	got := c.Sanitize(`<b>Vaccines</b> are tested &amp; approved<script>alert(1)</script>`)
	if strings.Contains(got, "<") || strings.Contains(got, "alert") {
		t.Errorf("Expected markup stripped, got %q", got)
	}
	if !strings.HasPrefix(got, "Vaccines are tested & approved") {
		t.Errorf("Unexpected sanitized text: %q", got)
	}
}
