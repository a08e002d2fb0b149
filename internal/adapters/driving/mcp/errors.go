// Package mcp provides an MCP (Model Context Protocol) server adapter for ragtube.
// It lets AI assistants list the ingested videos, retrieve transcript passages
// and ask grounded questions.
package mcp

import "errors"

// ErrMissingVideoService is returned when the video service is not provided.
var ErrMissingVideoService = errors.New("mcp: video service is required")

// ErrQueryUnavailable is returned by the query tool when no answer generator
// is configured.
var ErrQueryUnavailable = errors.New("mcp: question answering is not configured")

// ErrRetrievalUnavailable is returned by the retrieve tool when no embedding
// provider is configured.
var ErrRetrievalUnavailable = errors.New("mcp: retrieval is not configured")
