// Package corpus holds the passage model shared by ingestion, indexing and
// retrieval, and the text producers that feed it.
package corpus

// DefaultSource is the source label attached to passages of the bundled corpus.
const DefaultSource = "medical_encyclopedia"

// Passage is one retrievable unit of corpus text with its metadata.
// Passages are immutable once chunked.
type Passage struct {
	ID                  int    `json:"id"`
	Text                string `json:"text"`
	Source              string `json:"source"`
	Length              int    `json:"length"`
	WordCount           int    `json:"word_count"`
	ContainsDomainTerms bool   `json:"contains_domain_terms"`
}

// Texts returns the passage texts in order.
func Texts(passages []Passage) []string {
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}
	return texts
}
