package answer_test

import (
	"context"
	"errors"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/medrag/pkg/answer"
	"github.com/papercomputeco/medrag/pkg/corpus"
	"github.com/papercomputeco/medrag/pkg/eventstream"
	"github.com/papercomputeco/medrag/pkg/index"
	"github.com/papercomputeco/medrag/pkg/llm"
	"github.com/papercomputeco/medrag/pkg/logger"
	"github.com/papercomputeco/medrag/pkg/retriever"
	testutils "github.com/papercomputeco/medrag/pkg/utils/test"
)

var (
	goodAnswer  = "Hypertension is persistently elevated blood pressure. It is managed with lifestyle changes and medication."
	vagueAnswer = "I'm sorry, but there is not enough context to answer this question about your condition in detail."
)

type fakeRetriever struct {
	breadths []int
	results  []retriever.Result
	err      error
	failAt   int
}

func (f *fakeRetriever) Retrieve(_ context.Context, _ string, k int) ([]retriever.Result, error) {
	f.breadths = append(f.breadths, k)
	if f.err != nil && (f.failAt == 0 || f.failAt == k) {
		return nil, f.err
	}
	return f.results, nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []*eventstream.AnswerEvent
	err    error
}

func (c *capturePublisher) PublishAnswer(_ context.Context, e *eventstream.AnswerEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return c.err
}

func (c *capturePublisher) Close() error { return nil }

var _ = Describe("Synthesizer", func() {
	var (
		ctx       context.Context
		retr      *fakeRetriever
		completer *testutils.MockCompleter
		publisher *capturePublisher
		synth     *answer.Synthesizer
	)

	build := func() {
		var err error
		synth, err = answer.New(answer.Config{
			Retriever: retr,
			Completer: completer,
			Publisher: publisher,
			Logger:    logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		ctx = context.Background()
		retr = &fakeRetriever{results: []retriever.Result{{
			Passage: corpus.Passage{Text: "High blood pressure strains the heart."},
			Score:   0.82,
			Rank:    1,
		}}}
		completer = testutils.NewMockCompleter(goodAnswer)
		publisher = &capturePublisher{}
	})

	It("requires its collaborators", func() {
		_, err := answer.New(answer.Config{Completer: completer, Logger: logger.Nop()})
		Expect(err).To(HaveOccurred())
		_, err = answer.New(answer.Config{Retriever: retr, Logger: logger.Nop()})
		Expect(err).To(HaveOccurred())
		_, err = answer.New(answer.Config{Retriever: retr, Completer: completer})
		Expect(err).To(HaveOccurred())
	})

	It("accepts a good first answer after one attempt", func() {
		build()
		out, err := synth.Synthesize(ctx, "What is hypertension?")
		Expect(err).NotTo(HaveOccurred())

		Expect(out.Answer).To(Equal(goodAnswer))
		Expect(out.Attempts).To(Equal(1))
		Expect(out.Retries).To(Equal(0))
		Expect(out.FinalBreadth).To(Equal(answer.InitialBreadth))
		Expect(out.Accepted).To(BeTrue())
		Expect(retr.breadths).To(Equal([]int{3}))
	})

	It("sends the fixed generation parameters and the built prompt", func() {
		build()
		_, err := synth.Synthesize(ctx, "What is hypertension?")
		Expect(err).NotTo(HaveOccurred())

		reqs := completer.Requests()
		Expect(reqs).To(HaveLen(1))
		Expect(reqs[0]).To(Equal(llm.CompletionRequest{
			Model:       answer.DefaultModel,
			Prompt:      answer.BuildPrompt(retriever.FormatContext(retr.results), "What is hypertension?"),
			Temperature: 0.2,
			TopP:        0.9,
			MaxTokens:   1200,
		}))
	})

	It("widens breadth by one per rejection until accepted", func() {
		completer = testutils.NewMockCompleter(vagueAnswer, "too short", goodAnswer)
		build()

		out, err := synth.Synthesize(ctx, "What is hypertension?")
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Attempts).To(Equal(3))
		Expect(out.Retries).To(Equal(2))
		Expect(out.FinalBreadth).To(Equal(5))
		Expect(out.Accepted).To(BeTrue())
		Expect(retr.breadths).To(Equal([]int{3, 4, 5}))
	})

	It("stops after ten attempts and returns the last candidate", func() {
		completer = testutils.NewMockCompleter(vagueAnswer)
		build()

		out, err := synth.Synthesize(ctx, "What is hypertension?")
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Attempts).To(Equal(10))
		Expect(out.Attempts).To(Equal(answer.MaxAttempts))
		Expect(out.Retries).To(Equal(9))
		Expect(out.FinalBreadth).To(Equal(answer.MaxBreadth))
		Expect(out.Accepted).To(BeFalse())
		Expect(out.Answer).To(Equal(vagueAnswer))
		Expect(completer.Calls()).To(Equal(10))
	})

	It("aborts with a typed error when generation fails", func() {
		completer = testutils.NewMockCompleter(vagueAnswer)
		completer.Err = errors.New("rate limited")
		completer.FailOnCall = 2
		build()

		_, err := synth.Synthesize(ctx, "What is hypertension?")
		Expect(errors.Is(err, answer.ErrGeneration)).To(BeTrue())
		Expect(errors.Is(err, answer.ErrRetrieval)).To(BeFalse())

		var genErr *answer.GenerationError
		Expect(errors.As(err, &genErr)).To(BeTrue())
		Expect(genErr.Attempt).To(Equal(2))
		Expect(err).To(MatchError(ContainSubstring("rate limited")))
		Expect(completer.Calls()).To(Equal(2))
	})

	It("aborts with a typed error when retrieval fails", func() {
		retr.err = index.ErrNotInitialized
		build()

		_, err := synth.Synthesize(ctx, "What is hypertension?")
		Expect(errors.Is(err, answer.ErrRetrieval)).To(BeTrue())
		Expect(errors.Is(err, index.ErrNotInitialized)).To(BeTrue())

		var retErr *answer.RetrievalError
		Expect(errors.As(err, &retErr)).To(BeTrue())
		Expect(retErr.Breadth).To(Equal(3))
		Expect(completer.Calls()).To(Equal(0))
	})

	It("falls back to the apology on any failure", func() {
		completer.Err = errors.New("connection refused")
		build()

		Expect(synth.Answer(ctx, "What is hypertension?")).To(Equal(answer.FallbackAnswer))
	})

	It("returns the answer text from Answer", func() {
		build()
		Expect(synth.Answer(ctx, "What is hypertension?")).To(Equal(goodAnswer))
	})

	It("appends a configured disclaimer", func() {
		var err error
		synth, err = answer.New(answer.Config{
			Retriever:  retr,
			Completer:  completer,
			Disclaimer: "\n\nConsult your physician.",
			Logger:     logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(synth.Answer(ctx, "What is hypertension?")).To(HaveSuffix("Consult your physician."))
	})

	Describe("telemetry", func() {
		It("publishes one accepted event per run", func() {
			completer = testutils.NewMockCompleter(vagueAnswer, goodAnswer)
			build()
			_, err := synth.Synthesize(ctx, "What is hypertension?")
			Expect(err).NotTo(HaveOccurred())

			Expect(publisher.events).To(HaveLen(1))
			event := publisher.events[0]
			Expect(event.Status).To(Equal(eventstream.StatusAccepted))
			Expect(event.Query).To(Equal("What is hypertension?"))
			Expect(event.Critic).To(Equal(eventstream.CriticMeta{Attempts: 2, Retries: 1, FinalBreadth: 4, Accepted: true}))
		})

		It("marks exhausted and failed runs", func() {
			completer = testutils.NewMockCompleter(vagueAnswer)
			build()
			_, _ = synth.Synthesize(ctx, "q")

			completer.Err = errors.New("boom")
			_, _ = synth.Synthesize(ctx, "q")

			Expect(publisher.events).To(HaveLen(2))
			Expect(publisher.events[0].Status).To(Equal(eventstream.StatusExhausted))
			Expect(publisher.events[1].Status).To(Equal(eventstream.StatusFailed))
		})

		It("ignores publisher failures", func() {
			publisher.err = errors.New("queue full")
			build()
			Expect(synth.Answer(ctx, "What is hypertension?")).To(Equal(goodAnswer))
		})
	})

	Describe("with an empty index", func() {
		It("still answers from general knowledge", func() {
			store, err := index.NewStore(&index.Config{
				Embedder: testutils.NewMockEmbedder(),
				Blobs:    testutils.NewMockBlobStore(),
				Logger:   logger.Nop(),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(store.Initialize(ctx)).To(Succeed())

			r, err := retriever.New(retriever.Config{Index: store, Logger: logger.Nop()})
			Expect(err).NotTo(HaveOccurred())

			completer = testutils.NewMockCompleter("A fever is a temporary rise in body temperature, often caused by an infection. Rest and fluids help.")
			synth, err = answer.New(answer.Config{Retriever: r, Completer: completer, Logger: logger.Nop()})
			Expect(err).NotTo(HaveOccurred())

			out := synth.Answer(ctx, "fever")
			Expect(out).NotTo(BeEmpty())
			Expect(out).NotTo(Equal(answer.FallbackAnswer))
			Expect(completer.Requests()[0].Prompt).To(ContainSubstring(retriever.NoContextSentinel))
		})
	})
})

var _ = Describe("State", func() {
	It("names each state", func() {
		Expect(answer.StateDrafting.String()).To(Equal("drafting"))
		Expect(answer.StateCritiquing.String()).To(Equal("critiquing"))
		Expect(answer.StateDone.String()).To(Equal("done"))
		Expect(strings.ToUpper(answer.State(9).String())).To(Equal("UNKNOWN"))
	})
})
