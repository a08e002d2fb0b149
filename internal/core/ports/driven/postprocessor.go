package driven

import (
	"context"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
)

// PostProcessor is one stage of chunk production. The first stage receives
// nil chunks and creates them; later stages rewrite what they are given.
type PostProcessor interface {
	// Name is the key used in pipeline.processors and in error messages.
	Name() string
	Process(ctx context.Context, doc *domain.NormalizedDocument, chunks []domain.TextChunk) ([]domain.TextChunk, error)
}

// PostProcessorPipeline turns a normalised transcript into indexed chunks.
type PostProcessorPipeline interface {
	Process(ctx context.Context, doc *domain.NormalizedDocument) ([]domain.TextChunk, error)
}
