package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/truthlens/internal/credibility"
	"github.com/ppiankov/truthlens/internal/model"
	"github.com/ppiankov/truthlens/internal/pipeline"
	"github.com/ppiankov/truthlens/internal/worker"
)

// MetadataVerifyClaim describes the verify_claim tool
var MetadataVerifyClaim = &mcp.Tool{
	Name: "verify_claim",
	Description: "Assess the credibility of a claim. Pass the text as content, or a page as url " +
		"(content wins when both are given). Returns a verdict (Supported, Contradicted, " +
		"Unverified or Opinion), a 0-100 truth score, a credibility level, the claim type, " +
		"the bias level, published fact-check status and the supporting source URLs.",
}

// MetadataDomainTrust describes the domain_trust tool
var MetadataDomainTrust = &mcp.Tool{
	Name:        "domain_trust",
	Description: "Look up the static reputation of a news or reference domain used to weight evidence.",
}

// InputVerifyClaim is the input of verify_claim
type InputVerifyClaim struct {
	Content string `json:"content,omitempty" jsonschema:"text containing the claim to check"`
	URL     string `json:"url,omitempty" jsonschema:"page to extract the claim from"`
}

// InputDomainTrust is the input of domain_trust
type InputDomainTrust struct {
	Domain string `json:"domain" jsonschema:"domain or URL, e.g. reuters.com"`
}

// OutputDomainTrust is the output of domain_trust
type OutputDomainTrust struct {
	Domain     string  `json:"domain"`
	TrustScore float64 `json:"trustScore"`
	TrustLevel string  `json:"trustLevel"`
	Rating     string  `json:"rating"`
	Reputable  bool    `json:"reputable"`
}

// Tools implements the MCP tool handlers
type Tools struct {
	analyzer    worker.Analyzer
	credibility *credibility.Service
	logger      *slog.Logger
}

// NewTools creates the handlers
func NewTools(analyzer worker.Analyzer, cred *credibility.Service, logger *slog.Logger) *Tools {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cred == nil {
		cred = credibility.NewService(nil)
	}
	return &Tools{analyzer: analyzer, credibility: cred, logger: logger.With("component", "mcp")}
}

// VerifyClaim runs the analysis pipeline
func (t *Tools) VerifyClaim(ctx context.Context, _ *mcp.CallToolRequest, input InputVerifyClaim) (*mcp.CallToolResult, model.AggregateResult, error) {
	result, err := t.analyzer.Analyze(ctx, model.AnalysisRequest{Content: input.Content, URL: input.URL})
	if err != nil {
		msg, isInput := pipeline.PublicMessage(err)
		if !isInput {
			t.logger.Error("verify_claim failed", "error", err)
		}
		return nil, model.AggregateResult{}, errors.New(msg)
	}
	return nil, *result, nil
}

// DomainTrust reports the trust score of a domain
func (t *Tools) DomainTrust(_ context.Context, _ *mcp.CallToolRequest, input InputDomainTrust) (*mcp.CallToolResult, OutputDomainTrust, error) {
	domain := credibility.CleanDomain(input.Domain)
	if strings.TrimSpace(domain) == "" {
		return nil, OutputDomainTrust{}, fmt.Errorf("domain is required")
	}
	score := t.credibility.TrustScore(domain)
	return nil, OutputDomainTrust{
		Domain:     domain,
		TrustScore: score,
		TrustLevel: credibility.TrustLabel(score),
		Rating:     t.credibility.Rating(domain),
		Reputable:  t.credibility.IsReputable(domain),
	}, nil
}

// NewServer registers the tools on a new MCP server
func NewServer(tools *Tools, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "truthlens", Version: version}, nil)
	mcp.AddTool(server, MetadataVerifyClaim, tools.VerifyClaim)
	mcp.AddTool(server, MetadataDomainTrust, tools.DomainTrust)
	return server
}

// RunStdio serves MCP over stdin/stdout until the client disconnects or ctx ends
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
