package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ragtube/ragtube-cli/internal/adapters/driven/storage/similarity"
	"github.com/ragtube/ragtube-cli/internal/core/domain"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
)

// Ensure VideoStore implements the interface.
var _ driven.VideoStore = (*VideoStore)(nil)

// VideoStore is an in-memory implementation of driven.VideoStore.
// It follows the same commit and ordering rules as the SQLite store.
type VideoStore struct {
	mu         sync.RWMutex
	videos     map[string]domain.ParentVideo
	hashes     map[string]string
	chunks     map[string][]domain.Chunk
	dimensions int
	model      string
}

// NewVideoStore creates an empty in-memory video store.
func NewVideoStore() *VideoStore {
	return &VideoStore{
		videos: make(map[string]domain.ParentVideo),
		hashes: make(map[string]string),
		chunks: make(map[string][]domain.Chunk),
	}
}

// HasContentHash reports whether a parent with this hash exists.
func (s *VideoStore) HasContentHash(_ context.Context, contentHash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.hashes[contentHash]
	return ok, nil
}

// EnsureEmbeddingSpace records the model and dimension on first use.
func (s *VideoStore) EnsureEmbeddingSpace(_ context.Context, model string, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("%w: embedding dimension must be positive", domain.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimensions != 0 && s.dimensions != dimensions {
		return fmt.Errorf("%w: store holds %d-dimensional vectors, model %s produces %d",
			domain.ErrDimensionMismatch, s.dimensions, model, dimensions)
	}
	if s.dimensions == 0 {
		s.dimensions = dimensions
		s.model = model
	}
	return nil
}

// CommitVideo validates everything before mutating, so a failure writes nothing.
func (s *VideoStore) CommitVideo(_ context.Context, video *domain.ParentVideo, chunks []domain.Chunk) error {
	if video == nil || video.ID == "" || video.ContentHash == "" {
		return fmt.Errorf("%w: video id and content hash are required", domain.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.hashes[video.ContentHash]; ok {
		return fmt.Errorf("%w: content hash already stored as video %s", domain.ErrDuplicate, existing)
	}
	if _, ok := s.videos[video.ID]; ok {
		return fmt.Errorf("%w: video %s already exists", domain.ErrDuplicate, video.ID)
	}

	dims := s.dimensions
	seen := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		if c.VideoID != video.ID {
			return fmt.Errorf("%w: chunk %s belongs to %q, not %q", domain.ErrValidation, c.ID, c.VideoID, video.ID)
		}
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrValidation, c.ID)
		}
		if seen[c.ID] || s.hasChunk(c.ID) {
			return fmt.Errorf("%w: chunk %s already exists", domain.ErrDuplicate, c.ID)
		}
		seen[c.ID] = true
		if dims == 0 {
			dims = len(c.Embedding)
		}
		if len(c.Embedding) != dims {
			return fmt.Errorf("%w: chunk %s has %d dimensions, store holds %d",
				domain.ErrDimensionMismatch, c.ID, len(c.Embedding), dims)
		}
	}

	if video.CreatedAt.IsZero() {
		video.CreatedAt = time.Now()
	}
	video.CreatedAt = video.CreatedAt.UTC()
	video.ChunkCount = len(chunks)

	stored := *video
	stored.Keywords = append([]string(nil), video.Keywords...)
	s.videos[video.ID] = stored
	s.hashes[video.ContentHash] = video.ID
	s.chunks[video.ID] = append([]domain.Chunk(nil), chunks...)
	s.dimensions = dims
	return nil
}

func (s *VideoStore) hasChunk(id string) bool {
	for _, cs := range s.chunks {
		for _, c := range cs {
			if c.ID == id {
				return true
			}
		}
	}
	return false
}

// GetVideo retrieves a parent by ID.
func (s *VideoStore) GetVideo(_ context.Context, id string) (*domain.ParentVideo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.videos[id]
	if !ok {
		return nil, fmt.Errorf("video %s: %w", id, domain.ErrNotFound)
	}
	return &v, nil
}

// GetVideos resolves a set of parent IDs.
func (s *VideoStore) GetVideos(_ context.Context, ids []string) (map[string]*domain.ParentVideo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*domain.ParentVideo, len(ids))
	for _, id := range ids {
		if v, ok := s.videos[id]; ok {
			out[id] = &v
		}
	}
	return out, nil
}

// ListVideos returns all parents ordered by filename.
func (s *VideoStore) ListVideos(_ context.Context) ([]domain.ParentVideo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	videos := make([]domain.ParentVideo, 0, len(s.videos))
	for _, v := range s.videos {
		videos = append(videos, v)
	}
	sort.Slice(videos, func(i, j int) bool {
		if videos[i].Filename != videos[j].Filename {
			return videos[i].Filename < videos[j].Filename
		}
		return videos[i].ID < videos[j].ID
	})
	return videos, nil
}

// GetChunks retrieves all chunks for a video in index order.
func (s *VideoStore) GetChunks(_ context.Context, videoID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks := append([]domain.Chunk(nil), s.chunks[videoID]...)
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	return chunks, nil
}

// SearchChunks scores every stored chunk by cosine similarity.
func (s *VideoStore) SearchChunks(_ context.Context, embedding []float32, topK int) ([]driven.ChunkMatch, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: empty query embedding", domain.ErrValidation)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive", domain.ErrValidation)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []domain.Chunk
	for _, cs := range s.chunks {
		all = append(all, cs...)
	}
	return similarity.Score(embedding, all, topK)
}

// OrphanChunks returns chunks whose parent does not exist.
func (s *VideoStore) OrphanChunks(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var orphans []domain.Chunk
	for videoID, cs := range s.chunks {
		if _, ok := s.videos[videoID]; !ok {
			orphans = append(orphans, cs...)
		}
	}
	sort.Slice(orphans, func(i, j int) bool { return orphans[i].ID < orphans[j].ID })
	return orphans, nil
}

// DeleteVideo removes a parent row but keeps its chunks, leaving them
// orphaned. It exists to exercise integrity checks.
func (s *VideoStore) DeleteVideo(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.videos[id]; ok {
		delete(s.hashes, v.ContentHash)
		delete(s.videos, id)
	}
}

// Stats returns table counts and the recorded embedding space.
func (s *VideoStore) Stats(_ context.Context) (domain.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := domain.StoreStats{
		Videos:     len(s.videos),
		Dimensions: s.dimensions,
		Model:      s.model,
	}
	for _, cs := range s.chunks {
		stats.Chunks += len(cs)
	}
	return stats, nil
}

// Close is a no-op.
func (s *VideoStore) Close() error {
	return nil
}
