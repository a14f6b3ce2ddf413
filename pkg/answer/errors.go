package answer

import (
	"errors"
	"fmt"
)

var (
	// ErrRetrieval matches any *RetrievalError.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrGeneration matches any *GenerationError.
	ErrGeneration = errors.New("generation failed")
)

// RetrievalError reports a failed retrieval at a given breadth.
type RetrievalError struct {
	Breadth int
	Err     error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval at k=%d: %v", e.Breadth, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrRetrieval) match.
func (e *RetrievalError) Is(target error) bool { return target == ErrRetrieval }

// GenerationError reports a failed completion call on a given attempt.
type GenerationError struct {
	Attempt int
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation on attempt %d: %v", e.Attempt, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrGeneration) match.
func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }
