// Package driving defines the use cases the CLI and MCP server call into:
// ingesting transcripts, retrieving passages, answering questions, browsing
// stored videos and managing settings.
//
// Implementations live in internal/core/services.
package driving
