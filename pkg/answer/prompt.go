package answer

import (
	"regexp"
	"strings"
)

const promptTemplate = `You are a highly knowledgeable and professional medical assistant. Use the medical context provided below, along with your general medical knowledge, to generate accurate, helpful, and easy-to-understand responses to the user's question.

Instructions:
• Prioritize information found in the medical context whenever relevant.
• If specific details are not present in the context, provide a reliable and informative response based on your broader medical knowledge, without stating that the context is lacking.
• Structure your response using clear formatting, such as bullet points (•) or numbered lists, where appropriate. Do not use +.
• Use professional yet approachable language suitable for both medical professionals and laypersons.
• Explain complex medical terms in simple language when needed.
• Do not mention the absence or presence of information in the context. Focus on delivering a complete and helpful answer.

Medical Context:
{context}

User Question:
{question}

Answer:`

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// BuildPrompt embeds the context block and question in the assistant
// instructions.
func BuildPrompt(context, question string) string {
	r := strings.NewReplacer("{context}", context, "{question}", question)
	return r.Replace(promptTemplate)
}

// PostProcess strips markdown emphasis, collapses runs of blank lines and
// trims. disclaimer is appended only when non-empty.
func PostProcess(raw, disclaimer string) string {
	out := strings.ReplaceAll(raw, "*", "")
	out = excessNewlines.ReplaceAllString(out, "\n\n")
	out = strings.TrimSpace(out)

	if disclaimer != "" && !strings.HasSuffix(out, strings.TrimSpace(disclaimer)) {
		out += disclaimer
	}
	return out
}
