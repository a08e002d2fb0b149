package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider names a backend for embeddings or generation. Anthropic only
// serves generation.
type AIProvider string

const (
	AIProviderOllama    AIProvider = "ollama"
	AIProviderOpenAI    AIProvider = "openai" // also any OpenAI-compatible endpoint
	AIProviderAnthropic AIProvider = "anthropic"
	AIProviderGemini    AIProvider = "gemini"
)

func (p AIProvider) IsValid() bool {
	return p.IsLocal() || p.RequiresAPIKey()
}

// RequiresAPIKey reports whether the provider is a hosted API.
func (p AIProvider) RequiresAPIKey() bool {
	switch p {
	case AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	}
	return false
}

func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

func (p AIProvider) String() string {
	return string(p)
}

// Description is the label shown by the settings wizard.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// APIKeyEnv returns the environment variable consulted when no key is configured.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case AIProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// EmbeddingSettings is the [embedding] section of config.toml.
type EmbeddingSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string

	// Dimensions overrides the model's default vector size when non-zero.
	Dimensions int
}

// IsConfigured reports whether an embedding client can be built from e.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings is the [llm] section of config.toml.
type LLMSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string
}

func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// GatewaySettings controls the resilience of embedding calls.
type GatewaySettings struct {
	// Timeout bounds a single embedding request.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt
	// for transient failures.
	MaxRetries int

	// InitialBackoff is the first retry delay; later delays grow exponentially.
	InitialBackoff time.Duration

	// RequestsPerSecond throttles calls to the provider. Zero disables throttling.
	RequestsPerSecond float64
}

// IngestSettings controls the ingestion run.
type IngestSettings struct {
	// SourceDir is the default transcript directory.
	SourceDir string

	// EmbedBatchSize is the number of chunks sent per embedding request.
	EmbedBatchSize int
}

// QuerySettings controls question answering.
type QuerySettings struct {
	// TopK is the number of chunks retrieved as context.
	TopK int
}

// AppSettings mirrors config.toml, one field per table.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Gateway   GatewaySettings
	Ingest    IngestSettings
	Query     QuerySettings

	// StorePath is the directory holding ragtube.db.
	StorePath string
}

// DefaultAppSettings leaves both providers unset; the wizard or config file
// must choose them.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Gateway: GatewaySettings{
			Timeout:        30 * time.Second,
			MaxRetries:     4,
			InitialBackoff: time.Second,
		},
		Ingest: IngestSettings{
			SourceDir:      "data",
			EmbedBatchSize: 16,
		},
		Query: QuerySettings{
			TopK: 3,
		},
	}
}

// AllEmbeddingProviders lists the wizard's embedding choices in menu order.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// AllLLMProviders lists the wizard's LLM choices in menu order.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGemini,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGemini: "gemini-embedding-001",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-2.5-flash",
	}
}

// EmbeddingDimensions maps known model names to their native vector size.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"gemini-embedding-001": 3072,
		"text-embedding-004":   768,
	}
}

// PipelineConfig names the post-processors applied to normalised
// transcripts, in order, with each one's options keyed by processor name.
type PipelineConfig struct {
	Processors       []string
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns the options for one processor, or nil.
func (c PipelineConfig) GetProcessorConfig(name string) map[string]any {
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default pipeline configuration.
// The chunker produces 400-token chunks sharing 100 tokens with their neighbours.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"max_tokens":     400,
				"overlap_tokens": 100,
			},
		},
	}
}
