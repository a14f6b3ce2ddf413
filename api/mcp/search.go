package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/medrag/pkg/retriever"
)

const defaultTopK = 5

var (
	searchToolName    = "medical_search"
	searchDescription = "Search the medical knowledge base using semantic search. Returns the most relevant encyclopedia passages for the query, best first, with their similarity scores."
)

// SearchInput represents the input arguments for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query text to find relevant medical passages"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of results to return (default: 5)"`
}

// SearchResult represents a single search result.
type SearchResult struct {
	Rank   int     `json:"rank"`
	Score  float32 `json:"score"`
	ID     int     `json:"id"`
	Source string  `json:"source"`
	Text   string  `json:"text"`
}

// SearchOutput represents the output of the search tool.
type SearchOutput struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

// handleSearch processes a search request.
func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	logger := s.config.Logger

	if strings.TrimSpace(input.Query) == "" {
		return errorResult("query is required"), SearchOutput{}, nil
	}

	topK := input.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	logger.Debug("MCP search request",
		zap.String("query", input.Query),
		zap.Int("topK", topK),
	)

	results, err := s.config.Service.Search(ctx, input.Query, topK)
	if err != nil {
		logger.Error("failed to search knowledge base", zap.Error(err))
		return errorResult("Search failed. Please try again later."), SearchOutput{}, nil
	}

	output := SearchOutput{
		Query:   input.Query,
		Results: buildSearchResults(results),
		Count:   len(results),
	}

	// Structured output is mirrored as JSON text for clients that only read
	// content blocks.
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal search output", zap.Error(err))
		return errorResult("Failed to serialize results."), SearchOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}

func buildSearchResults(results []retriever.Result) []SearchResult {
	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, SearchResult{
			Rank:   r.Rank,
			Score:  r.Score,
			ID:     r.Passage.ID,
			Source: r.Passage.Source,
			Text:   r.Passage.Text,
		})
	}
	return out
}
