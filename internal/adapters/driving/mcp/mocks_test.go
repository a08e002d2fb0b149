package mcp

import (
	"context"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
)

// mockVideoService is a mock implementation of driving.VideoService.
type mockVideoService struct {
	videos []domain.VideoSummary
	video  *domain.ParentVideo
	err    error
}

func (m *mockVideoService) List(_ context.Context) ([]domain.VideoSummary, error) {
	return m.videos, m.err
}

func (m *mockVideoService) Get(_ context.Context, _ string) (*domain.ParentVideo, error) {
	return m.video, m.err
}

func (m *mockVideoService) Chunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return nil, m.err
}

func (m *mockVideoService) Keywords(_ context.Context) ([]domain.KeywordCount, error) {
	return nil, m.err
}

func (m *mockVideoService) Stats(_ context.Context) (domain.StoreStats, error) {
	return domain.StoreStats{}, m.err
}

func (m *mockVideoService) Verify(_ context.Context) error {
	return m.err
}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results  []domain.RetrievedChunk
	err      error
	lastTopK int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string, topK int) ([]domain.RetrievedChunk, error) {
	m.lastTopK = topK
	return m.results, m.err
}

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	answer      *domain.Answer
	err         error
	lastHistory []domain.ChatTurn
}

func (m *mockQueryService) Query(_ context.Context, _ string, history []domain.ChatTurn) (*domain.Answer, error) {
	m.lastHistory = history
	return m.answer, m.err
}
