package embeddingutils_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/medrag/pkg/embeddings/ollama"
	"github.com/papercomputeco/medrag/pkg/embeddings/openai"
	embeddingutils "github.com/papercomputeco/medrag/pkg/embeddings/utils"
)

var _ = Describe("NewEmbedder", func() {
	It("builds an ollama embedder with the default model", func() {
		e, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{ProviderType: "ollama"})
		Expect(err).NotTo(HaveOccurred())
		Expect(e).To(BeAssignableToTypeOf(&ollama.Embedder{}))
		Expect(e.Name()).To(Equal(ollama.DefaultEmbeddingModel))
	})

	It("reads the openai key from the named environment variable", func() {
		GinkgoT().Setenv("MEDRAG_TEST_EMBED_KEY", "sk-test")
		e, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
			ProviderType: "openai",
			Model:        "text-embedding-3-large",
			APIKeyEnv:    "MEDRAG_TEST_EMBED_KEY",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(e).To(BeAssignableToTypeOf(&openai.Embedder{}))
		Expect(e.Name()).To(Equal("text-embedding-3-large"))
	})

	It("fails when the openai key is missing", func() {
		GinkgoT().Setenv("MEDRAG_TEST_EMBED_KEY", "")
		_, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
			ProviderType: "openai",
			APIKeyEnv:    "MEDRAG_TEST_EMBED_KEY",
		})
		Expect(err).To(MatchError(ContainSubstring("MEDRAG_TEST_EMBED_KEY environment variable not set")))
	})

	It("rejects unknown providers", func() {
		_, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{ProviderType: "cohere"})
		Expect(err).To(MatchError(ContainSubstring("unsupported embedding provider")))
	})
})
