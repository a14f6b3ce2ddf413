package llmutils_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/medrag/pkg/llm/openai"
	llmutils "github.com/papercomputeco/medrag/pkg/llm/utils"
	"github.com/papercomputeco/medrag/pkg/logger"
)

var _ = Describe("NewCompleter", func() {
	It("defaults to groq and its key variable", func() {
		GinkgoT().Setenv(openai.DefaultAPIKeyEnv, "gsk-test")
		c, err := llmutils.NewCompleter(&llmutils.NewCompleterOpts{Logger: logger.Nop()})
		Expect(err).NotTo(HaveOccurred())
		Expect(c).To(BeAssignableToTypeOf(&openai.Completer{}))
	})

	It("fails without a groq key", func() {
		GinkgoT().Setenv(openai.DefaultAPIKeyEnv, "")
		_, err := llmutils.NewCompleter(&llmutils.NewCompleterOpts{ProviderType: "groq"})
		Expect(err).To(MatchError(ContainSubstring("GROQ_API_KEY environment variable not set")))
	})

	It("uses OPENAI_API_KEY for the openai provider", func() {
		GinkgoT().Setenv("OPENAI_API_KEY", "")
		_, err := llmutils.NewCompleter(&llmutils.NewCompleterOpts{ProviderType: "openai"})
		Expect(err).To(MatchError(ContainSubstring("OPENAI_API_KEY")))

		GinkgoT().Setenv("OPENAI_API_KEY", "sk-test")
		c, err := llmutils.NewCompleter(&llmutils.NewCompleterOpts{ProviderType: "openai"})
		Expect(err).NotTo(HaveOccurred())
		Expect(c).NotTo(BeNil())
	})

	It("rejects unknown providers", func() {
		_, err := llmutils.NewCompleter(&llmutils.NewCompleterOpts{ProviderType: "anthropic"})
		Expect(err).To(MatchError(ContainSubstring("unsupported completion provider")))
	})
})
