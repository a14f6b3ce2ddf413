// Package mcp provides an MCP (Model Context Protocol) server exposing the
// medical knowledge base as tools.
package mcp

import (
	"context"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/medrag/pkg/retriever"
	"github.com/papercomputeco/medrag/pkg/utils"
)

// Service is the subset of rag.Service the MCP tools call into.
type Service interface {
	Answer(ctx context.Context, query string) string
	IsInDomain(query string) bool
	Search(ctx context.Context, query string, k int) ([]retriever.Result, error)
}

type Config struct {
	// Service answers and searches
	Service Service

	// Logger is the configured zap logger
	Logger *zap.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the answer and search tools.
func NewServer(c Config) (*Server, error) {
	if c.Service == nil {
		return nil, errors.New("service is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "medrag",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        answerToolName,
		Description: answerDescription,
	}, s.handleAnswer)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        searchToolName,
		Description: searchDescription,
	}, s.handleSearch)

	s.mcpServer = mcpServer

	// Stateless: every request is served by the same server without session
	// affinity.
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}
