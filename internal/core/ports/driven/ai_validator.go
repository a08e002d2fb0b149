package driven

import "github.com/ragtube/ragtube-cli/internal/core/domain"

// AIConfigValidator checks provider settings by making a cheap call against
// the configured endpoint. An unconfigured provider passes.
type AIConfigValidator interface {
	ValidateEmbedding(config *domain.EmbeddingSettings) error
	ValidateLLM(config *domain.LLMSettings) error
}
