package driving

import (
	"context"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
)

// VideoService exposes the stored videos and store health.
type VideoService interface {
	// List returns a summary of every stored video ordered by filename.
	List(ctx context.Context) ([]domain.VideoSummary, error)

	// Get returns one video. Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.ParentVideo, error)

	// Chunks returns the chunks of one video in index order.
	Chunks(ctx context.Context, id string) ([]domain.Chunk, error)

	// Keywords counts how many videos carry each keyword.
	Keywords(ctx context.Context) ([]domain.KeywordCount, error)

	// Stats returns table counts.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// Verify checks that every chunk resolves to a parent video.
	// The first orphan found is reported as *domain.IntegrityError.
	Verify(ctx context.Context) error
}
