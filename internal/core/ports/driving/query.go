package driving

import (
	"context"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
)

// RetrievalService finds the chunks most similar to a query.
type RetrievalService interface {
	// Retrieve returns up to topK chunks joined to their parent videos,
	// ordered by score descending. A chunk whose parent is missing aborts
	// the request with *domain.IntegrityError.
	Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error)
}

// QueryService answers questions grounded on retrieved transcript passages.
type QueryService interface {
	// Query answers question given the client-supplied history.
	// Nothing is stored between calls.
	Query(ctx context.Context, question string, history []domain.ChatTurn) (*domain.Answer, error)
}
