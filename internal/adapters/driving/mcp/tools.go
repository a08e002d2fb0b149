package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
)

const defaultRetrieveTopK = 3

// ListVideosInput is the input schema for the list_videos tool.
type ListVideosInput struct{}

// ListVideosOutput is the output schema for the list_videos tool.
type ListVideosOutput struct {
	Videos []VideoOutput `json:"videos"`
	Count  int           `json:"count"`
}

// VideoOutput describes one stored video.
type VideoOutput struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	Title        string `json:"title"`
	Summary      string `json:"summary"`
	KeywordCount int    `json:"keyword_count"`
	ChunkCount   int    `json:"chunk_count"`
}

// HistoryTurn is one prior message of the conversation.
type HistoryTurn struct {
	Role string `json:"role" jsonschema:"user or assistant"`
	Text string `json:"text" jsonschema:"the message text"`
}

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	Question string        `json:"question" jsonschema:"the question to answer from the video transcripts"`
	History  []HistoryTurn `json:"history,omitempty" jsonschema:"earlier turns of the conversation, oldest first"`
}

// QueryOutput is the output schema for the query tool.
type QueryOutput struct {
	Answer       string               `json:"answer"`
	CitedSources []domain.CitedSource `json:"cited_sources"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"text to find similar transcript passages for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of passages to return (default 3)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Results []PassageOutput `json:"results"`
	Count   int             `json:"count"`
}

// PassageOutput is one retrieved chunk with its parent video.
type PassageOutput struct {
	ChunkID  string  `json:"chunk_id"`
	VideoID  string  `json:"video_id"`
	Filename string  `json:"filename"`
	Title    string  `json:"title"`
	Score    float64 `json:"score"`
	Text     string  `json:"text"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_videos",
		Description: "List every ingested video with its summary",
	}, s.handleListVideos)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query",
		Description: "Answer a question from the video transcripts, citing the source files",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Find the transcript passages most similar to a query",
	}, s.handleRetrieve)
}

func (s *Server) handleListVideos(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListVideosInput,
) (*mcp.CallToolResult, ListVideosOutput, error) {
	videos, err := s.ports.Videos.List(ctx)
	if err != nil {
		return nil, ListVideosOutput{}, err
	}

	output := ListVideosOutput{
		Videos: make([]VideoOutput, len(videos)),
		Count:  len(videos),
	}
	for i, v := range videos {
		output.Videos[i] = VideoOutput{
			ID:           v.ID,
			Filename:     v.Filename,
			Title:        v.Title,
			Summary:      v.Summary,
			KeywordCount: v.KeywordCount,
			ChunkCount:   v.ChunkCount,
		}
	}
	return nil, output, nil
}

func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	if s.ports.Query == nil {
		return nil, QueryOutput{}, ErrQueryUnavailable
	}

	history := make([]domain.ChatTurn, len(input.History))
	for i, turn := range input.History {
		history[i] = domain.ChatTurn{Role: turn.Role, Text: turn.Text}
	}

	answer, err := s.ports.Query.Query(ctx, input.Question, history)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	return nil, QueryOutput{
		Answer:       answer.Text,
		CitedSources: answer.CitedSources,
	}, nil
}

func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	if s.ports.Retrieval == nil {
		return nil, RetrieveOutput{}, ErrRetrievalUnavailable
	}

	topK := input.TopK
	if topK <= 0 {
		topK = defaultRetrieveTopK
	}

	results, err := s.ports.Retrieval.Retrieve(ctx, input.Query, topK)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Results: make([]PassageOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = PassageOutput{
			ChunkID:  results[i].Chunk.ID,
			VideoID:  results[i].Video.ID,
			Filename: results[i].Video.Filename,
			Title:    results[i].Video.Title,
			Score:    results[i].Score,
			Text:     results[i].Chunk.Text,
		}
	}
	return nil, output, nil
}
