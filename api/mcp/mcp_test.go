package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/medrag/pkg/answer"
	"github.com/papercomputeco/medrag/pkg/corpus"
	"github.com/papercomputeco/medrag/pkg/logger"
	"github.com/papercomputeco/medrag/pkg/retriever"
)

type fakeService struct {
	answer    string
	results   []retriever.Result
	searchErr error

	answered []string
	searched []int
}

func (f *fakeService) Answer(_ context.Context, query string) string {
	f.answered = append(f.answered, query)
	return f.answer
}

func (f *fakeService) IsInDomain(query string) bool {
	return answer.IsInDomain(query)
}

func (f *fakeService) Search(_ context.Context, _ string, k int) ([]retriever.Result, error) {
	f.searched = append(f.searched, k)
	return f.results, f.searchErr
}

var _ = Describe("MCP Server", func() {
	var (
		ctx    context.Context
		svc    *fakeService
		server *Server
	)

	BeforeEach(func() {
		ctx = context.Background()
		svc = &fakeService{
			answer: "Pneumonia is an infection of the air sacs in the lungs.",
			results: []retriever.Result{
				{Passage: corpus.Passage{ID: 7, Text: "Pneumonia inflames the air sacs.", Source: corpus.DefaultSource}, Score: 0.82, Rank: 1},
				{Passage: corpus.Passage{ID: 3, Text: "Bronchitis inflames the airways.", Source: corpus.DefaultSource}, Score: 0.41, Rank: 2},
			},
		}

		var err error
		server, err = NewServer(Config{Service: svc, Logger: logger.Nop()})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewServer", func() {
		It("returns an error when service is nil", func() {
			_, err := NewServer(Config{Logger: logger.Nop()})
			Expect(err).To(MatchError(ContainSubstring("service is required")))
		})

		It("returns an error when logger is nil", func() {
			_, err := NewServer(Config{Service: svc})
			Expect(err).To(MatchError(ContainSubstring("logger is required")))
		})

		It("returns an HTTP handler", func() {
			Expect(server.Handler()).NotTo(BeNil())
		})
	})

	Describe("medical_answer", func() {
		It("answers in-domain questions", func() {
			result, out, err := server.handleAnswer(ctx, nil, AnswerInput{Question: "What is pneumonia?"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(out.InDomain).To(BeTrue())
			Expect(out.Answer).To(Equal(svc.answer))
			Expect(svc.answered).To(Equal([]string{"What is pneumonia?"}))
		})

		It("redirects off-domain questions without answering", func() {
			_, out, err := server.handleAnswer(ctx, nil, AnswerInput{Question: "Who won the football match?"})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.InDomain).To(BeFalse())
			Expect(out.Answer).To(Equal(answer.OffDomainReply))
			Expect(svc.answered).To(BeEmpty())
		})

		It("rejects an empty question", func() {
			result, _, err := server.handleAnswer(ctx, nil, AnswerInput{Question: "  "})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
		})
	})

	Describe("medical_search", func() {
		It("defaults top_k to 5", func() {
			_, out, err := server.handleSearch(ctx, nil, SearchInput{Query: "pneumonia"})
			Expect(err).NotTo(HaveOccurred())
			Expect(svc.searched).To(Equal([]int{5}))
			Expect(out.Count).To(Equal(2))
			Expect(out.Results[0].ID).To(Equal(7))
			Expect(out.Results[0].Rank).To(Equal(1))
			Expect(out.Results[1].Score).To(Equal(float32(0.41)))
		})

		It("mirrors the output as JSON text", func() {
			result, _, err := server.handleSearch(ctx, nil, SearchInput{Query: "pneumonia", TopK: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(svc.searched).To(Equal([]int{2}))
			Expect(result.Content).To(HaveLen(1))

			text, ok := result.Content[0].(*mcp.TextContent)
			Expect(ok).To(BeTrue())
			Expect(text.Text).To(ContainSubstring(`"query":"pneumonia"`))
			Expect(text.Text).To(ContainSubstring(`"count":2`))
		})

		It("hides search failures behind a generic message", func() {
			svc.searchErr = errors.New("dimension mismatch at /var/lib/index")
			result, _, err := server.handleSearch(ctx, nil, SearchInput{Query: "pneumonia"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())

			text := result.Content[0].(*mcp.TextContent)
			Expect(text.Text).NotTo(ContainSubstring("/var/lib/index"))
		})

		It("rejects an empty query", func() {
			result, _, err := server.handleSearch(ctx, nil, SearchInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
			Expect(svc.searched).To(BeEmpty())
		})
	})

	Describe("over a client session", func() {
		It("lists and calls the tools", func() {
			serverTransport, clientTransport := mcp.NewInMemoryTransports()
			serverSession, err := server.mcpServer.Connect(ctx, serverTransport, nil)
			Expect(err).NotTo(HaveOccurred())
			defer serverSession.Close()

			client := mcp.NewClient(&mcp.Implementation{Name: "medrag-test", Version: "v0.0.0"}, nil)
			session, err := client.Connect(ctx, clientTransport, nil)
			Expect(err).NotTo(HaveOccurred())
			defer session.Close()

			tools, err := session.ListTools(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			names := make([]string, 0, len(tools.Tools))
			for _, t := range tools.Tools {
				names = append(names, t.Name)
			}
			Expect(names).To(ConsistOf("medical_answer", "medical_search"))

			res, err := session.CallTool(ctx, &mcp.CallToolParams{
				Name:      "medical_answer",
				Arguments: map[string]any{"question": "What is pneumonia?"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())
			Expect(res.Content[0].(*mcp.TextContent).Text).To(Equal(svc.answer))
		})
	})
})
