package chunker_test

import (
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/medrag/pkg/corpus"
	"github.com/papercomputeco/medrag/pkg/corpus/chunker"
)

// sharedBoundary returns the length of the longest suffix of a that is also a
// prefix of b.
func sharedBoundary(a, b string) int {
	for k := min(len(a), len(b)); k > 0; k-- {
		if a[len(a)-k:] == b[:k] {
			return k
		}
	}
	return 0
}

func sentences(n int) string {
	var sb strings.Builder
	for i := range n {
		fmt.Fprintf(&sb, "Sentence number %d describes a symptom of the disease. ", i)
	}
	return sb.String()
}

var _ = Describe("Chunk", func() {
	It("returns nothing for blank text", func() {
		Expect(chunker.Chunk("")).To(BeEmpty())
		Expect(chunker.Chunk("   \n\n  ")).To(BeEmpty())
	})

	It("drops text shorter than the minimum length", func() {
		Expect(chunker.Chunk("Too short to embed.")).To(BeEmpty())
	})

	It("keeps a single short document as one passage", func() {
		text := "Influenza is a contagious respiratory illness caused by influenza viruses."
		passages := chunker.Chunk(text)
		Expect(passages).To(HaveLen(1))
		Expect(passages[0].ID).To(Equal(0))
		Expect(passages[0].Text).To(Equal(text))
		Expect(passages[0].Length).To(Equal(len(text)))
		Expect(passages[0].WordCount).To(Equal(10))
		Expect(passages[0].ContainsDomainTerms).To(BeTrue())
		Expect(passages[0].Source).To(Equal(corpus.DefaultSource))
	})

	Context("with a long run of sentences", func() {
		var passages []corpus.Passage

		BeforeEach(func() {
			passages = chunker.Chunk(sentences(80))
		})

		It("produces several passages within the size bounds", func() {
			Expect(len(passages)).To(BeNumerically(">", 3))
			for _, p := range passages {
				Expect(p.Length).To(BeNumerically(">=", chunker.DefaultMinChunkLength))
				Expect(p.Length).To(BeNumerically("<=", chunker.DefaultChunkSize))
			}
		})

		It("numbers passages sequentially in input order", func() {
			for i, p := range passages {
				Expect(p.ID).To(Equal(i))
			}
			Expect(passages[0].Text).To(HavePrefix("Sentence number 0 "))
			Expect(passages[len(passages)-1].Text).To(HaveSuffix("Sentence number 79 describes a symptom of the disease."))
		})

		It("carries an overlap of at most the configured size across boundaries", func() {
			for i := 1; i < len(passages); i++ {
				shared := sharedBoundary(passages[i-1].Text, passages[i].Text)
				Expect(shared).To(BeNumerically(">", 0))
				Expect(shared).To(BeNumerically("<=", chunker.DefaultChunkOverlap))
			}
		})
	})

	It("falls back to character splits for unbroken text", func() {
		passages := chunker.Chunk(strings.Repeat("a", 2000))
		Expect(len(passages)).To(BeNumerically(">=", 3))
		for _, p := range passages {
			Expect(p.Length).To(BeNumerically("<=", chunker.DefaultChunkSize))
		}
		Expect(sharedBoundary(passages[0].Text, passages[1].Text)).To(BeNumerically(">", 0))
	})

	It("discards a short trailing fragment and renumbers", func() {
		text := strings.Repeat("word ", 158) + "\n\nShort tail."
		passages := chunker.Chunk(text)
		Expect(passages).To(HaveLen(1))
		Expect(passages[0].ID).To(Equal(0))
		Expect(passages[0].Text).NotTo(ContainSubstring("Short tail"))
	})

	It("honors custom options", func() {
		c := chunker.New(chunker.Options{ChunkSize: 120, ChunkOverlap: 30, MinChunkLength: 10, Source: "test_source"})
		passages := c.Chunk(sentences(10))
		Expect(len(passages)).To(BeNumerically(">", 1))
		for _, p := range passages {
			Expect(p.Length).To(BeNumerically("<=", 120))
			Expect(p.Source).To(Equal("test_source"))
		}
	})
})

var _ = Describe("ContainsDomainTerms", func() {
	It("matches keywords case-insensitively as substrings", func() {
		Expect(chunker.ContainsDomainTerms("The PATIENT reported a Fever")).To(BeTrue())
		Expect(chunker.ContainsDomainTerms("Cardiac tests")).To(BeTrue())
	})

	It("is false for text without medical vocabulary", func() {
		Expect(chunker.ContainsDomainTerms("The sky was blue over the bay.")).To(BeFalse())
	})
})
