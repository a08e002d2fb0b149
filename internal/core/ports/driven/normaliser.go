package driven

import (
	"context"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
)

// Normaliser cleans raw transcripts into prose and fingerprints the result.
type Normaliser interface {
	// SupportedExtensions returns the file extensions this normaliser handles.
	SupportedExtensions() []string

	// NormaliseDocument cleans doc and computes its content hash.
	// A document with no text left is rejected with domain.ErrValidation.
	NormaliseDocument(ctx context.Context, doc domain.SourceDocument) (*domain.NormalizedDocument, error)
}
