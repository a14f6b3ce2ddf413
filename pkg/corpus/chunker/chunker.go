// Package chunker splits normalized corpus text into overlapping passages
// along a prioritized separator hierarchy.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/papercomputeco/medrag/pkg/corpus"
)

const (
	// DefaultChunkSize is the maximum passage length in characters.
	DefaultChunkSize = 800

	// DefaultChunkOverlap is the most characters carried from the tail of one
	// passage into the head of the next.
	DefaultChunkOverlap = 150

	// DefaultMinChunkLength is the shortest passage kept after trimming.
	DefaultMinChunkLength = 50
)

// DefaultSeparators are tried in order. The empty separator splits between
// characters and always applies.
var DefaultSeparators = []string{"\n\n", "\n", ". ", "? ", "! ", "; ", ", ", " ", ""}

// DomainTerms flag passages that carry medical vocabulary.
var DomainTerms = []string{
	"symptom", "disease", "treatment", "medicine", "diagnosis",
	"patient", "doctor", "hospital", "pain", "fever", "infection",
	"medical", "health", "illness", "condition", "therapy",
	"prescription", "medication", "surgery", "procedure", "test",
	"blood", "heart", "lung", "brain", "liver", "kidney",
}

// Options configures a Chunker. Zero values fall back to the defaults.
type Options struct {
	ChunkSize      int
	ChunkOverlap   int
	MinChunkLength int
	Separators     []string
	Source         string
}

// Chunker turns text into passages.
type Chunker struct {
	opts Options
}

// New creates a Chunker with the given options.
func New(opts Options) *Chunker {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.ChunkOverlap < 0 || opts.ChunkOverlap >= opts.ChunkSize {
		opts.ChunkOverlap = min(DefaultChunkOverlap, opts.ChunkSize/2)
	}
	if opts.MinChunkLength <= 0 {
		opts.MinChunkLength = DefaultMinChunkLength
	}
	if len(opts.Separators) == 0 {
		opts.Separators = DefaultSeparators
	}
	if opts.Source == "" {
		opts.Source = corpus.DefaultSource
	}
	return &Chunker{opts: opts}
}

// Chunk splits text with the default options.
func Chunk(text string) []corpus.Passage {
	return New(Options{}).Chunk(text)
}

// Chunk splits text into passages in input order, dropping fragments shorter
// than the minimum length and numbering the rest from 0.
func (c *Chunker) Chunk(text string) []corpus.Passage {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var passages []corpus.Passage
	for _, piece := range c.split(text, c.opts.Separators) {
		piece = strings.TrimSpace(piece)
		length := utf8.RuneCountInString(piece)
		if length < c.opts.MinChunkLength {
			continue
		}

		passages = append(passages, corpus.Passage{
			ID:                  len(passages),
			Text:                piece,
			Source:              c.opts.Source,
			Length:              length,
			WordCount:           len(strings.Fields(piece)),
			ContainsDomainTerms: ContainsDomainTerms(piece),
		})
	}

	return passages
}

// ContainsDomainTerms reports whether any domain keyword occurs in text,
// ignoring case.
func ContainsDomainTerms(text string) bool {
	lower := strings.ToLower(text)
	for _, term := range DomainTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// split picks the first separator present in text, splits on it, merges the
// small pieces and recurses into the oversized ones with the remaining
// separators.
func (c *Chunker) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var rest []string
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			rest = separators[i+1:]
			break
		}
	}

	var (
		chunks []string
		small  []string
	)
	for _, piece := range strings.SplitAfter(text, separator) {
		if piece == "" {
			continue
		}
		if utf8.RuneCountInString(piece) <= c.opts.ChunkSize {
			small = append(small, piece)
			continue
		}

		if len(small) > 0 {
			chunks = append(chunks, c.merge(small)...)
			small = nil
		}
		if len(rest) == 0 {
			chunks = append(chunks, piece)
			continue
		}
		chunks = append(chunks, c.split(piece, rest)...)
	}

	if len(small) > 0 {
		chunks = append(chunks, c.merge(small)...)
	}

	return chunks
}

// merge joins pieces into chunks of at most ChunkSize characters. When a
// chunk is emitted, its trailing pieces totalling at most ChunkOverlap
// characters start the next one.
func (c *Chunker) merge(pieces []string) []string {
	var (
		chunks  []string
		current []string
		total   int
	)

	for _, piece := range pieces {
		length := utf8.RuneCountInString(piece)

		if total+length > c.opts.ChunkSize && len(current) > 0 {
			if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
				chunks = append(chunks, chunk)
			}

			for total > c.opts.ChunkOverlap || (total+length > c.opts.ChunkSize && total > 0) {
				total -= utf8.RuneCountInString(current[0])
				current = current[1:]
			}
		}

		current = append(current, piece)
		total += length
	}

	if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
		chunks = append(chunks, chunk)
	}

	return chunks
}
