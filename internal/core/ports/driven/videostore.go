package driven

import (
	"context"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
)

// ChunkMatch is a chunk scored against a query vector.
type ChunkMatch struct {
	Chunk domain.Chunk
	Score float64
}

// VideoStore persists parent videos and their chunks.
// Backed by SQLite; the parent_videos and video_chunks tables.
//
// Readers may run concurrently with one writer. Running two writers
// against the same store is the caller's responsibility to avoid.
type VideoStore interface {
	// HasContentHash reports whether a parent with this hash exists.
	HasContentHash(ctx context.Context, contentHash string) (bool, error)

	// EnsureEmbeddingSpace records the model and dimension on first use and
	// returns domain.ErrDimensionMismatch if a different dimension was recorded.
	EnsureEmbeddingSpace(ctx context.Context, model string, dimensions int) error

	// CommitVideo writes the parent and all its chunks atomically.
	// On any error nothing is written. A parent whose content hash already
	// exists is rejected with domain.ErrDuplicate.
	CommitVideo(ctx context.Context, video *domain.ParentVideo, chunks []domain.Chunk) error

	// GetVideo retrieves a parent by ID.
	GetVideo(ctx context.Context, id string) (*domain.ParentVideo, error)

	// GetVideos resolves a set of parent IDs. Missing IDs are absent from the map.
	GetVideos(ctx context.Context, ids []string) (map[string]*domain.ParentVideo, error)

	// ListVideos returns all parents ordered by filename.
	ListVideos(ctx context.Context) ([]domain.ParentVideo, error)

	// GetChunks retrieves all chunks for a video in index order.
	GetChunks(ctx context.Context, videoID string) ([]domain.Chunk, error)

	// SearchChunks scores every chunk by cosine similarity to embedding and
	// returns the best topK, ordered by score descending then chunk ID ascending.
	SearchChunks(ctx context.Context, embedding []float32, topK int) ([]ChunkMatch, error)

	// OrphanChunks returns chunks whose parent does not exist.
	OrphanChunks(ctx context.Context) ([]domain.Chunk, error)

	// Stats returns table counts and the recorded embedding space.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// Close releases resources.
	Close() error
}
