package driven

import (
	"context"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
)

// TranscriptSource supplies raw transcript documents.
type TranscriptSource interface {
	// List returns every transcript currently available, in a stable order.
	List(ctx context.Context) ([]domain.SourceDocument, error)

	// Watch emits transcripts as they are created or modified until ctx is
	// cancelled. Both channels are closed when watching stops.
	Watch(ctx context.Context) (<-chan domain.SourceDocument, <-chan error)
}
