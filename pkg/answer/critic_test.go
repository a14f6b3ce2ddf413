package answer_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/medrag/pkg/answer"
)

var _ = Describe("Critic", func() {
	critic := answer.DefaultCritic()

	It("rejects empty and short answers", func() {
		Expect(critic.Judge("")).To(BeFalse())
		Expect(critic.Judge(strings.Repeat("a", answer.MinAnswerLength-1))).To(BeFalse())
		Expect(critic.Judge(strings.Repeat("a", answer.MinAnswerLength))).To(BeTrue())
	})

	It("measures length in characters, not bytes", func() {
		bullets := strings.TrimSpace(strings.Repeat("• fever ", 9))
		Expect(len(bullets)).To(BeNumerically(">=", answer.MinAnswerLength))
		Expect(critic.Judge(bullets)).To(BeFalse())

		Expect(critic.Judge(strings.Repeat("é", answer.MinAnswerLength))).To(BeTrue())
	})

	DescribeTable("rejects vague phrases regardless of case",
		func(phrase string) {
			text := "Regarding your question about chronic kidney disease and its management, " + phrase + " here."
			Expect(critic.Judge(text)).To(BeFalse())
		},
		Entry("sorry", "I'm sorry"),
		Entry("don't know", "i don't know"),
		Entry("insufficient", "INSUFFICIENT INFORMATION"),
		Entry("context", "Not enough context"),
		Entry("cannot provide", "I cannot provide"),
		Entry("unable", "i am unable"),
	)

	It("accepts an informative answer", func() {
		Expect(critic.Judge("Pneumonia is an infection that inflames the air sacs in one or both lungs, which may fill with fluid.")).To(BeTrue())
	})
})
