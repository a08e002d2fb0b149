package driven

import "context"

// EmbeddingService turns text into vectors. Ingest and retrieval must share
// one model or similarity scores stop meaning anything.
//
// Errors are *domain.EmbeddingError; Transient tells the resilient gateway
// whether a retry can help.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the length of every vector this model produces.
	Dimensions() int
	ModelName() string

	// Ping sends a one-word embedding request.
	Ping(ctx context.Context) error
	Close() error
}
