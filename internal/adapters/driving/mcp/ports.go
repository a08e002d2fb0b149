package mcp

import (
	"github.com/ragtube/ragtube-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Videos lists and resolves stored videos.
	Videos driving.VideoService

	// Retrieval finds passages for a query. Optional.
	Retrieval driving.RetrievalService

	// Query answers questions. Optional.
	Query driving.QueryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Videos == nil {
		return ErrMissingVideoService
	}
	return nil
}
