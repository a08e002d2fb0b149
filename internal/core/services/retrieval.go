package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driving"
	"github.com/ragtube/ragtube-cli/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService embeds a query, scans the chunk table and joins the best
// matches back to their parent videos.
type RetrievalService struct {
	store    driven.VideoStore
	embedder driven.EmbeddingService
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(store driven.VideoStore, embedder driven.EmbeddingService) *RetrievalService {
	return &RetrievalService{store: store, embedder: embedder}
}

// Retrieve returns the topK chunks most similar to query.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error) {
	logger.Section("Retrieval")

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty query: %w", domain.ErrValidation)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d: %w", topK, domain.ErrValidation)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	logger.Debug("Query: %q, topK: %d", query, topK)

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.store.SearchChunks(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	if len(matches) == 0 {
		logger.Debug("No chunks matched")
		return []domain.RetrievedChunk{}, nil
	}

	ids := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		if !seen[m.Chunk.VideoID] {
			seen[m.Chunk.VideoID] = true
			ids = append(ids, m.Chunk.VideoID)
		}
	}

	videos, err := s.store.GetVideos(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve parent videos: %w", err)
	}

	results := make([]domain.RetrievedChunk, 0, len(matches))
	for _, m := range matches {
		video, ok := videos[m.Chunk.VideoID]
		if !ok {
			return nil, &domain.IntegrityError{ChunkID: m.Chunk.ID, VideoID: m.Chunk.VideoID}
		}
		results = append(results, domain.RetrievedChunk{
			Chunk: m.Chunk,
			Score: m.Score,
			Video: *video,
		})
		logger.Debug("  %.4f %s (%s)", m.Score, m.Chunk.ID, video.Filename)
	}
	return results, nil
}
