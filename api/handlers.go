package api

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/medrag/pkg/answer"
	"github.com/papercomputeco/medrag/pkg/retriever"
)

const defaultSearchTopK = 5

// HealthResponse reports service liveness and index contents.
type HealthResponse struct {
	Status      string `json:"status"`
	Model       string `json:"model"`
	Embedder    string `json:"embedder"`
	TotalChunks int    `json:"total_chunks"`
	IndexSize   int    `json:"index_size"`
	Dimension   int    `json:"dimension"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the reply to POST /chat.
type ChatResponse struct {
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}

// SearchResponse is the reply to GET /v1/search.
type SearchResponse struct {
	Query   string             `json:"query"`
	Results []retriever.Result `json:"results"`
	Count   int                `json:"count"`
}

// ReprocessResponse is the reply to POST /reprocess.
type ReprocessResponse struct {
	Message     string `json:"message"`
	TotalChunks int    `json:"total_chunks"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleHealth reports the index statistics.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	stats := s.service.IndexStats()
	return c.JSON(HealthResponse{
		Status:      "healthy",
		Model:       s.config.Model,
		Embedder:    stats.ModelName,
		TotalChunks: stats.TotalChunks,
		IndexSize:   stats.IndexSize,
		Dimension:   stats.Dimension,
	})
}

// handleChat answers one medical question.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Please enter a message"})
	}
	if utf8.RuneCountInString(message) > s.config.MaxMessageLength {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Message too long. Please keep it under " + strconv.Itoa(s.config.MaxMessageLength) + " characters.",
		})
	}

	reply := answer.OffDomainReply
	if s.service.IsInDomain(message) {
		ctx, cancel := s.requestContext(c)
		defer cancel()
		reply = s.service.Answer(ctx, message)
	} else {
		s.logger.Debug("off-domain chat message", zap.Int("length", len(message)))
	}

	return c.JSON(ChatResponse{
		Response:  reply,
		Timestamp: time.Now().Format("15:04"),
	})
}

// handleSearchEndpoint handles GET /v1/search requests.
// Query parameters:
//   - query (required): the search query text
//   - top_k (optional, default 5): number of results to return
func (s *Server) handleSearchEndpoint(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "query parameter is required",
		})
	}

	topK := defaultSearchTopK
	if topKStr := c.Query("top_k"); topKStr != "" {
		parsed, err := strconv.Atoi(topKStr)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: "top_k must be a positive integer",
			})
		}
		topK = parsed
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	results, err := s.service.Search(ctx, query, topK)
	if err != nil {
		s.logger.Error("search failed", zap.String("query", query), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "search failed",
		})
	}

	return c.JSON(SearchResponse{
		Query:   query,
		Results: results,
		Count:   len(results),
	})
}

// handleReprocess rebuilds the index from the corpus source.
func (s *Server) handleReprocess(c *fiber.Ctx) error {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	n, err := s.service.Reprocess(ctx)
	if err != nil {
		s.logger.Error("reprocess failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Failed to reprocess corpus",
		})
	}

	return c.JSON(ReprocessResponse{
		Message:     "Corpus reprocessed successfully!",
		TotalChunks: n,
	})
}
