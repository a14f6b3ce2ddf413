package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"
)

// ErrEmptySource is returned when a text producer yields no usable text.
var ErrEmptySource = errors.New("corpus source is empty")

// Extractor produces the raw text of a single source document.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// TextFileExtractor reads a plain UTF-8 text dump of the corpus document.
type TextFileExtractor struct{}

// NewTextFileExtractor creates a new TextFileExtractor.
func NewTextFileExtractor() *TextFileExtractor {
	return &TextFileExtractor{}
}

// Extract reads the file at path.
func (e *TextFileExtractor) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if path == "" {
		return "", errors.New("source path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading corpus source: %w", err)
	}

	if !utf8.Valid(data) {
		return "", fmt.Errorf("corpus source %s is not valid UTF-8", path)
	}

	if len(data) == 0 {
		return "", ErrEmptySource
	}

	return string(data), nil
}

var _ Extractor = (*TextFileExtractor)(nil)
