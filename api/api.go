package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/medrag/api/mcp"
	"github.com/papercomputeco/medrag/pkg/index"
)

// Service is the subset of rag.Service the HTTP handlers call into.
type Service interface {
	mcp.Service
	IndexStats() index.Stats
	Reprocess(ctx context.Context) (int, error)
}

// Server is the API server for querying and managing the medical knowledge base
type Server struct {
	config  Config
	service Service
	logger  *zap.Logger
	app     *fiber.App
}

// NewServer creates a new API server.
// The service is injected so the CLI can bootstrap it before serving.
func NewServer(config Config, service Service, logger *zap.Logger) (*Server, error) {
	if service == nil {
		return nil, errors.New("service is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if config.MaxMessageLength <= 0 {
		config.MaxMessageLength = DefaultMaxMessageLength
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}

	mcpServer, err := mcp.NewServer(mcp.Config{
		Service: service,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating MCP server: %w", err)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:  config,
		service: service,
		logger:  logger,
		app:     app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/health", s.handleHealth)
	app.Post("/chat", s.handleChat)
	app.Get("/v1/search", s.handleSearchEndpoint)
	app.Post("/reprocess", s.handleReprocess)
	app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// requestContext bounds a handler's work by the configured request timeout.
func (s *Server) requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), s.config.RequestTimeout)
}
