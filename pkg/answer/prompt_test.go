package answer_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/medrag/pkg/answer"
)

var _ = Describe("BuildPrompt", func() {
	It("embeds context then question", func() {
		prompt := answer.BuildPrompt("[Source 1 - Relevance: 0.90]\nFever is common.", "What is a fever?")
		Expect(prompt).To(HavePrefix("You are a highly knowledgeable and professional medical assistant."))
		Expect(prompt).To(ContainSubstring("Medical Context:\n[Source 1 - Relevance: 0.90]\nFever is common.\n\nUser Question:\nWhat is a fever?\n\nAnswer:"))
		Expect(prompt).To(HaveSuffix("Answer:"))
	})

	It("does not expand placeholders inside the question", func() {
		prompt := answer.BuildPrompt("ctx", "what is {context}?")
		Expect(prompt).To(ContainSubstring("User Question:\nwhat is {context}?"))
	})
})

var _ = Describe("PostProcess", func() {
	It("strips emphasis markers", func() {
		Expect(answer.PostProcess("**Bold** and *italic*", "")).To(Equal("Bold and italic"))
	})

	It("collapses runs of blank lines and trims", func() {
		Expect(answer.PostProcess("\n\nOne\n\n\n\nTwo\n\n\nThree\n", "")).To(Equal("One\n\nTwo\n\nThree"))
	})

	It("adds nothing for an empty disclaimer", func() {
		Expect(answer.PostProcess("Answer text", "")).To(Equal("Answer text"))
	})

	It("appends a non-empty disclaimer once", func() {
		Expect(answer.PostProcess("Answer text", "\n\nSee a doctor.")).To(Equal("Answer text\n\nSee a doctor."))
		Expect(answer.PostProcess("Answer text\n\nSee a doctor.", "\n\nSee a doctor.")).To(Equal("Answer text\n\nSee a doctor."))
	})
})
