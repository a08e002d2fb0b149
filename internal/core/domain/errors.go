package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates an empty or invalid input document, query or
	// configuration. It is raised before any write and never partially applied.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicate marks a document whose content hash is already stored.
	// It is a recognised no-op outcome, reported but never surfaced as a failure.
	ErrDuplicate = errors.New("duplicate content")

	// ErrDimensionMismatch indicates an embedding whose length differs from
	// the dimension the store was created with.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Answer generation is disabled and metadata falls back to extractive mode.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Neither ingestion nor retrieval can run without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrUnsupportedType indicates an unknown provider or processor type.
	ErrUnsupportedType = errors.New("unsupported type")
)

// EmbeddingErrorKind classifies embedding gateway failures.
type EmbeddingErrorKind string

// Embedding failure kinds.
const (
	EmbeddingRateLimited  EmbeddingErrorKind = "rate_limit"
	EmbeddingNetwork      EmbeddingErrorKind = "network"
	EmbeddingInvalidInput EmbeddingErrorKind = "invalid_input"
	EmbeddingUnknown      EmbeddingErrorKind = "unknown"
)

// EmbeddingError is a typed failure from the embedding gateway.
type EmbeddingError struct {
	Kind EmbeddingErrorKind
	Err  error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding gateway (%s): %v", e.Kind, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// Transient reports whether retrying the call may succeed.
func (e *EmbeddingError) Transient() bool {
	return e.Kind == EmbeddingRateLimited || e.Kind == EmbeddingNetwork
}

// NewEmbeddingError wraps err with a failure kind.
func NewEmbeddingError(kind EmbeddingErrorKind, err error) *EmbeddingError {
	return &EmbeddingError{Kind: kind, Err: err}
}

// IsTransientEmbedding reports whether err is a retryable embedding failure.
func IsTransientEmbedding(err error) bool {
	var embErr *EmbeddingError
	if errors.As(err, &embErr) {
		return embErr.Transient()
	}
	return false
}

// GenerationErrorKind classifies answer generator failures.
type GenerationErrorKind string

// Generation failure kinds.
const (
	GenerationQuotaExceeded GenerationErrorKind = "quota_exceeded"
	GenerationNetwork       GenerationErrorKind = "network"
	GenerationUnknown       GenerationErrorKind = "unknown"
)

// GenerationError is a typed failure from the answer generator.
// No partial answer is ever returned alongside it.
type GenerationError struct {
	Kind GenerationErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("answer generation (%s): %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// NewGenerationError wraps err with a failure kind.
func NewGenerationError(kind GenerationErrorKind, err error) *GenerationError {
	return &GenerationError{Kind: kind, Err: err}
}

// IntegrityError reports a chunk whose parent video is missing.
// It is fatal: it is never retried and aborts the whole request.
type IntegrityError struct {
	ChunkID string
	VideoID string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("store integrity: chunk %s references missing video %s", e.ChunkID, e.VideoID)
}

// IngestError carries enough context to re-run a single document.
type IngestError struct {
	Filename    string
	ContentHash string
	Err         error
}

func (e *IngestError) Error() string {
	if e.ContentHash == "" {
		return fmt.Sprintf("ingest %s: %v", e.Filename, e.Err)
	}
	return fmt.Sprintf("ingest %s (hash %.12s): %v", e.Filename, e.ContentHash, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }
