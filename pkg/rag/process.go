package rag

import (
	"strings"

	"github.com/papercomputeco/medrag/pkg/corpus"
	"github.com/papercomputeco/medrag/pkg/corpus/chunker"
	"github.com/papercomputeco/medrag/pkg/corpus/textnorm"
)

// Process normalizes raw corpus text and chunks it into passages. Blank input
// yields no passages.
func Process(raw string, opts chunker.Options) []corpus.Passage {
	if strings.TrimSpace(raw) == "" {
		return []corpus.Passage{}
	}

	passages := chunker.New(opts).Chunk(textnorm.Normalize(raw))
	if passages == nil {
		return []corpus.Passage{}
	}
	return passages
}
