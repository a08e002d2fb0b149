// Package driven lists what the core needs from infrastructure.
//
// Ingest and retrieval cannot run without a Normaliser, a
// PostProcessorPipeline, a VideoStore and an EmbeddingService. The rest is
// optional: with no LLMService, ask is disabled and video metadata is
// extractive; with no PromptStore the built-in prompts apply; a
// TranscriptSource is only needed by the ingest entry points.
//
// Ports depend on domain and nothing else.
package driven
