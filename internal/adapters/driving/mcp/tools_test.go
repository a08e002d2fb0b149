package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
)

func TestServer_handleListVideos(t *testing.T) {
	ctx := context.Background()

	t.Run("returns videos", func(t *testing.T) {
		videos := &mockVideoService{videos: []domain.VideoSummary{
			{ID: "v1", Filename: "sql.md", Title: "SQL", Summary: "Joins explained.", KeywordCount: 12, ChunkCount: 4},
		}}
		server, err := NewServer(&Ports{Videos: videos})
		require.NoError(t, err)

		_, output, err := server.handleListVideos(ctx, nil, ListVideosInput{})
		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		assert.Equal(t, VideoOutput{
			ID: "v1", Filename: "sql.md", Title: "SQL", Summary: "Joins explained.", KeywordCount: 12, ChunkCount: 4,
		}, output.Videos[0])
	})

	t.Run("propagates errors", func(t *testing.T) {
		server, err := NewServer(&Ports{Videos: &mockVideoService{err: errors.New("db locked")}})
		require.NoError(t, err)

		_, _, err = server.handleListVideos(ctx, nil, ListVideosInput{})
		assert.ErrorContains(t, err, "db locked")
	})
}

func TestServer_handleQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("answers with history", func(t *testing.T) {
		query := &mockQueryService{answer: &domain.Answer{
			Text:         "Use an index.",
			CitedSources: []domain.CitedSource{{Filename: "sql.md", ChunkText: "indexes help"}},
		}}
		server, err := NewServer(&Ports{Videos: &mockVideoService{}, Query: query})
		require.NoError(t, err)

		_, output, err := server.handleQuery(ctx, nil, QueryInput{
			Question: "How do I speed up queries?",
			History: []HistoryTurn{
				{Role: "user", Text: "hi"},
				{Role: "assistant", Text: "hello"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "Use an index.", output.Answer)
		assert.Equal(t, "sql.md", output.CitedSources[0].Filename)
		assert.Equal(t, []domain.ChatTurn{
			{Role: domain.RoleUser, Text: "hi"},
			{Role: domain.RoleAssistant, Text: "hello"},
		}, query.lastHistory)
	})

	t.Run("generation error is returned", func(t *testing.T) {
		query := &mockQueryService{err: domain.NewGenerationError(domain.GenerationQuotaExceeded, errors.New("429"))}
		server, err := NewServer(&Ports{Videos: &mockVideoService{}, Query: query})
		require.NoError(t, err)

		_, output, err := server.handleQuery(ctx, nil, QueryInput{Question: "q"})
		var genErr *domain.GenerationError
		assert.ErrorAs(t, err, &genErr)
		assert.Empty(t, output.Answer)
	})

	t.Run("no query service", func(t *testing.T) {
		server, err := NewServer(&Ports{Videos: &mockVideoService{}})
		require.NoError(t, err)

		_, _, err = server.handleQuery(ctx, nil, QueryInput{Question: "q"})
		assert.ErrorIs(t, err, ErrQueryUnavailable)
	})
}

func TestServer_handleRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("returns passages", func(t *testing.T) {
		retrieval := &mockRetrievalService{results: []domain.RetrievedChunk{{
			Chunk: domain.Chunk{ID: "v1-0002", VideoID: "v1", Text: "passage"},
			Score: 0.87,
			Video: domain.ParentVideo{ID: "v1", Filename: "sql.md", Title: "SQL"},
		}}}
		server, err := NewServer(&Ports{Videos: &mockVideoService{}, Retrieval: retrieval})
		require.NoError(t, err)

		_, output, err := server.handleRetrieve(ctx, nil, RetrieveInput{Query: "joins", TopK: 5})
		require.NoError(t, err)
		assert.Equal(t, 5, retrieval.lastTopK)
		require.Equal(t, 1, output.Count)
		assert.Equal(t, PassageOutput{
			ChunkID: "v1-0002", VideoID: "v1", Filename: "sql.md", Title: "SQL", Score: 0.87, Text: "passage",
		}, output.Results[0])
	})

	t.Run("default top k", func(t *testing.T) {
		retrieval := &mockRetrievalService{}
		server, err := NewServer(&Ports{Videos: &mockVideoService{}, Retrieval: retrieval})
		require.NoError(t, err)

		_, output, err := server.handleRetrieve(ctx, nil, RetrieveInput{Query: "joins"})
		require.NoError(t, err)
		assert.Equal(t, defaultRetrieveTopK, retrieval.lastTopK)
		assert.Zero(t, output.Count)
	})

	t.Run("integrity error is returned", func(t *testing.T) {
		retrieval := &mockRetrievalService{err: &domain.IntegrityError{ChunkID: "c", VideoID: "v"}}
		server, err := NewServer(&Ports{Videos: &mockVideoService{}, Retrieval: retrieval})
		require.NoError(t, err)

		_, _, err = server.handleRetrieve(ctx, nil, RetrieveInput{Query: "joins"})
		var integrityErr *domain.IntegrityError
		assert.ErrorAs(t, err, &integrityErr)
	})

	t.Run("no retrieval service", func(t *testing.T) {
		server, err := NewServer(&Ports{Videos: &mockVideoService{}})
		require.NoError(t, err)

		_, _, err = server.handleRetrieve(ctx, nil, RetrieveInput{Query: "joins"})
		assert.ErrorIs(t, err, ErrRetrievalUnavailable)
	})
}
