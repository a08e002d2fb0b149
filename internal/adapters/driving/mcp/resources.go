package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for ragtube resources.
	uriScheme = "ragtube://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "videos",
		Name:        "videos",
		Description: "All ingested videos with summaries",
		MIMEType:    "application/json",
	}, s.handleVideosResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "videos/{videoId}",
		Name:        "video",
		Description: "Metadata and keywords of a specific video",
		MIMEType:    "application/json",
	}, s.handleVideoResource)
}

// handleVideosResource returns the video listing.
func (s *Server) handleVideosResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	videos, err := s.ports.Videos.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing videos: %w", err)
	}

	type videoInfo struct {
		ID       string `json:"id"`
		Filename string `json:"filename"`
		Title    string `json:"title"`
		Summary  string `json:"summary"`
		URI      string `json:"uri"`
	}

	infos := make([]videoInfo, len(videos))
	for i, v := range videos {
		infos[i] = videoInfo{
			ID:       v.ID,
			Filename: v.Filename,
			Title:    v.Title,
			Summary:  v.Summary,
			URI:      uriScheme + "videos/" + v.ID,
		}
	}

	return jsonResult(req.Params.URI, infos)
}

// handleVideoResource returns one video's metadata.
func (s *Server) handleVideoResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	videoID := extractVideoID(req.Params.URI)
	if videoID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	video, err := s.ports.Videos.Get(ctx, videoID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting video: %w", err)
	}

	info := struct {
		ID         string    `json:"id"`
		Filename   string    `json:"filename"`
		Title      string    `json:"title"`
		Summary    string    `json:"summary"`
		Keywords   []string  `json:"keywords"`
		ChunkCount int       `json:"chunk_count"`
		CreatedAt  time.Time `json:"created_at"`
	}{
		ID:         video.ID,
		Filename:   video.Filename,
		Title:      video.Title,
		Summary:    video.Summary,
		Keywords:   video.Keywords,
		ChunkCount: video.ChunkCount,
		CreatedAt:  video.CreatedAt,
	}

	return jsonResult(req.Params.URI, info)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractVideoID extracts the video ID from a URI like ragtube://videos/{videoId}.
func extractVideoID(uri string) string {
	const prefix = uriScheme + "videos/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
