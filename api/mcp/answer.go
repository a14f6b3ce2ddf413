package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/medrag/pkg/answer"
)

var (
	answerToolName    = "medical_answer"
	answerDescription = "Answer a medical question from the medical knowledge base. The answer is grounded in retrieved encyclopedia passages and is informational only, not medical advice."
)

// AnswerInput represents the input arguments for the answer tool.
type AnswerInput struct {
	Question string `json:"question" jsonschema:"the medical question to answer"`
}

// AnswerOutput represents the output of the answer tool.
type AnswerOutput struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	InDomain bool   `json:"in_domain"`
}

// handleAnswer processes an answer request. Off-domain questions get the
// redirect without touching the index.
func (s *Server) handleAnswer(ctx context.Context, _ *mcp.CallToolRequest, input AnswerInput) (*mcp.CallToolResult, AnswerOutput, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return errorResult("question is required"), AnswerOutput{}, nil
	}

	output := AnswerOutput{
		Question: question,
		InDomain: s.config.Service.IsInDomain(question),
	}

	if output.InDomain {
		s.config.Logger.Debug("MCP answer request", zap.String("question", question))
		output.Answer = s.config.Service.Answer(ctx, question)
	} else {
		output.Answer = answer.OffDomainReply
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: output.Answer},
		},
	}, output, nil
}
