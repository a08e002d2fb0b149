package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driving"
)

// Ensure VideoService implements the interface.
var _ driving.VideoService = (*VideoService)(nil)

// VideoService provides read access to stored videos.
type VideoService struct {
	store driven.VideoStore
}

// NewVideoService creates a new video service.
func NewVideoService(store driven.VideoStore) *VideoService {
	return &VideoService{store: store}
}

// List returns every video's listing view.
func (s *VideoService) List(ctx context.Context) ([]domain.VideoSummary, error) {
	videos, err := s.store.ListVideos(ctx)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	summaries := make([]domain.VideoSummary, 0, len(videos))
	for i := range videos {
		summaries = append(summaries, videos[i].Summarise())
	}
	return summaries, nil
}

// Get returns a video by id.
func (s *VideoService) Get(ctx context.Context, id string) (*domain.ParentVideo, error) {
	return s.store.GetVideo(ctx, id)
}

// Chunks returns a video's chunks. Returns domain.ErrNotFound for an unknown video.
func (s *VideoService) Chunks(ctx context.Context, id string) ([]domain.Chunk, error) {
	if _, err := s.store.GetVideo(ctx, id); err != nil {
		return nil, err
	}
	return s.store.GetChunks(ctx, id)
}

// Keywords returns keyword frequencies, most common first.
func (s *VideoService) Keywords(ctx context.Context) ([]domain.KeywordCount, error) {
	videos, err := s.store.ListVideos(ctx)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}

	counts := make(map[string]int)
	for i := range videos {
		for _, kw := range videos[i].Keywords {
			counts[kw]++
		}
	}

	result := make([]domain.KeywordCount, 0, len(counts))
	for kw, n := range counts {
		result = append(result, domain.KeywordCount{Keyword: kw, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Keyword < result[j].Keyword
	})
	return result, nil
}

// Stats returns store counts.
func (s *VideoService) Stats(ctx context.Context) (domain.StoreStats, error) {
	return s.store.Stats(ctx)
}

// Verify reports the first chunk whose parent is missing.
func (s *VideoService) Verify(ctx context.Context) error {
	orphans, err := s.store.OrphanChunks(ctx)
	if err != nil {
		return fmt.Errorf("find orphan chunks: %w", err)
	}
	if len(orphans) > 0 {
		return &domain.IntegrityError{ChunkID: orphans[0].ID, VideoID: orphans[0].VideoID}
	}
	return nil
}
