package answer

import (
	"strings"
	"unicode/utf8"
)

// MinAnswerLength is the shortest answer the critic accepts, in characters.
const MinAnswerLength = 80

// VaguePhrases mark an evasive answer. Matching ignores case.
var VaguePhrases = []string{
	"I'm sorry",
	"I don't know",
	"insufficient information",
	"not enough context",
	"I cannot provide",
	"I am unable",
}

// Critic judges whether a candidate answer is adequate.
type Critic struct {
	MinLength int
	Phrases   []string
}

// DefaultCritic uses MinAnswerLength and VaguePhrases.
func DefaultCritic() Critic {
	return Critic{MinLength: MinAnswerLength, Phrases: VaguePhrases}
}

// Judge accepts answers at least MinLength characters long that contain none of the
// vague phrases.
func (c Critic) Judge(answer string) bool {
	if answer == "" || utf8.RuneCountInString(answer) < c.MinLength {
		return false
	}

	lower := strings.ToLower(answer)
	for _, phrase := range c.Phrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return false
		}
	}
	return true
}
