package driving

import (
	"context"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
)

// IngestService writes transcripts into the video store.
type IngestService interface {
	// IngestDocument normalises, deduplicates, chunks, embeds and commits one
	// document. The parent and its chunks are written together or not at all.
	// The result describes the outcome; the error is non-nil only for
	// rejected or failed documents and is a *domain.IngestError.
	IngestDocument(ctx context.Context, doc domain.SourceDocument) (domain.IngestResult, error)

	// IngestAll ingests documents sequentially, continuing past per-document
	// failures. Only context cancellation stops the run early.
	IngestAll(ctx context.Context, docs []domain.SourceDocument) (*domain.IngestReport, error)
}
