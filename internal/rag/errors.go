package rag

import (
	"errors"
	"fmt"
)

var (
	ErrEmptySelection    = errors.New("no sources selected")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrNoEmbeddings      = errors.New("no embeddings to aggregate")
	ErrSourceNotFound    = errors.New("source not found")
	ErrEmptyDocument     = errors.New("document has no text")
	ErrNilTokenizer      = errors.New("embedder requires a tokenizer")
)

// SourceNotFoundError names the explicitly selected source that could not be read.
type SourceNotFoundError struct {
	Type SourceType
	ID   string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Type, e.ID)
}

func (e *SourceNotFoundError) Is(target error) bool {
	return target == ErrSourceNotFound
}
