package driving

import "github.com/ragtube/ragtube-cli/internal/core/domain"

// SettingsService reads and edits the persisted configuration.
type SettingsService interface {
	Get() (*domain.AppSettings, error)
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider and SetLLMProvider write one provider section
	// and persist it immediately.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate reports whether ingest and retrieve can run with the
	// current settings.
	Validate() error
	GetDefaults() domain.AppSettings
	GetPipelineConfig() domain.PipelineConfig

	// ValidateEmbeddingConfig and ValidateLLMConfig ping the configured
	// provider.
	ValidateEmbeddingConfig() error
	ValidateLLMConfig() error
}
