package services

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driving"
)

var _ driving.SettingsService = (*SettingsService)(nil)

// Dotted keys in config.toml.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedDimensions   = "embedding.dimensions"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyGatewayTimeout    = "gateway.timeout"
	keyGatewayRetries    = "gateway.max_retries"
	keyGatewayBackoff    = "gateway.initial_backoff"
	keyGatewayRPS        = "gateway.requests_per_second"
	keyIngestSourceDir   = "ingest.source_dir"
	keyIngestBatchSize   = "ingest.embed_batch_size"
	keyQueryTopK         = "query.top_k"
	keyStorePath         = "store.path"
	keyPipelineProcessor = "pipeline.processors"
)

const defaultOllamaURL = "http://localhost:11434"

// SettingsService maps configuration keys to typed settings.
// API keys left empty in the config fall back to the provider's
// environment variable.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get overlays config.toml on the defaults. Unknown provider names fall back
// to the default provider.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	embedProvider := s.getProvider(keyEmbedProvider, defaults.Embedding.Provider)
	llmProvider := s.getProvider(keyLLMProvider, defaults.LLM.Provider)

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:   embedProvider,
			Model:      s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:     s.apiKey(keyEmbedAPIKey, embedProvider),
			Dimensions: s.configStore.GetInt(keyEmbedDimensions),
		},
		LLM: domain.LLMSettings{
			Provider: llmProvider,
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.apiKey(keyLLMAPIKey, llmProvider),
		},
		Gateway: domain.GatewaySettings{
			Timeout:           s.getDuration(keyGatewayTimeout, defaults.Gateway.Timeout),
			MaxRetries:        s.getIntIfSet(keyGatewayRetries, defaults.Gateway.MaxRetries),
			InitialBackoff:    s.getDuration(keyGatewayBackoff, defaults.Gateway.InitialBackoff),
			RequestsPerSecond: s.getFloatIfSet(keyGatewayRPS, defaults.Gateway.RequestsPerSecond),
		},
		Ingest: domain.IngestSettings{
			SourceDir:      s.getString(keyIngestSourceDir, defaults.Ingest.SourceDir),
			EmbedBatchSize: s.getInt(keyIngestBatchSize, defaults.Ingest.EmbedBatchSize),
		},
		Query: domain.QuerySettings{
			TopK: s.getInt(keyQueryTopK, defaults.Query.TopK),
		},
		StorePath: s.getString(keyStorePath, defaults.StorePath),
	}

	return settings, nil
}

// Save persists application settings. API keys equal to the environment
// fallback are not written to disk.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDimensions, settings.Embedding.Dimensions},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyGatewayTimeout, settings.Gateway.Timeout.String()},
		{keyGatewayRetries, settings.Gateway.MaxRetries},
		{keyGatewayBackoff, settings.Gateway.InitialBackoff.String()},
		{keyGatewayRPS, settings.Gateway.RequestsPerSecond},
		{keyIngestSourceDir, settings.Ingest.SourceDir},
		{keyIngestBatchSize, settings.Ingest.EmbedBatchSize},
		{keyQueryTopK, settings.Query.TopK},
		{keyStorePath, settings.StorePath},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if s.shouldPersistKey(settings.Embedding.APIKey, settings.Embedding.Provider) {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if s.shouldPersistKey(settings.LLM.APIKey, settings.LLM.Provider) {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	return nil
}

// SetEmbeddingProvider rejects providers without an embeddings API and
// resets Dimensions so the new model uses its native size.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if apiKey == "" {
		apiKey = s.envKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s (or set %s)", provider, provider.APIKeyEnv())
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = pickModel(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey
	settings.Embedding.Dimensions = 0

	return s.Save(settings)
}

func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if apiKey == "" {
		apiKey = s.envKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s (or set %s)", provider, provider.APIKeyEnv())
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = pickModel(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that the settings allow ingestion and retrieval.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider is not configured: %w", domain.ErrValidation)
	}
	if settings.Ingest.EmbedBatchSize <= 0 {
		return fmt.Errorf("ingest.embed_batch_size must be positive: %w", domain.ErrValidation)
	}
	if settings.Query.TopK <= 0 {
		return fmt.Errorf("query.top_k must be positive: %w", domain.ErrValidation)
	}
	if settings.Gateway.MaxRetries < 0 || settings.Gateway.Timeout <= 0 {
		return fmt.Errorf("gateway timeout must be positive and retries non-negative: %w", domain.ErrValidation)
	}

	cfg := s.GetPipelineConfig().GetProcessorConfig("chunker")
	maxTokens, _ := cfg["max_tokens"].(int)
	overlap, _ := cfg["overlap_tokens"].(int)
	if maxTokens <= 0 || overlap < 0 || overlap >= maxTokens {
		return fmt.Errorf("chunker needs max_tokens > overlap_tokens >= 0, got %d/%d: %w",
			maxTokens, overlap, domain.ErrValidation)
	}

	return nil
}

func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig pings the configured embedding provider. Without a
// validator every configuration passes.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// GetPipelineConfig returns the post-processor pipeline configuration.
// Chunker limits are read from chunker.max_tokens and chunker.overlap_tokens.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	cfg := domain.DefaultPipelineConfig()

	if processors := s.configStore.GetStringSlice(keyPipelineProcessor); len(processors) > 0 {
		cfg.Processors = processors
	}

	for _, name := range cfg.Processors {
		overrides := s.loadProcessorConfig(name + ".")
		if len(overrides) == 0 {
			continue
		}
		existing := cfg.ProcessorConfigs[name]
		if existing == nil {
			existing = make(map[string]any)
		}
		for k, v := range overrides {
			existing[k] = v
		}
		cfg.ProcessorConfigs[name] = existing
	}

	return cfg
}

// loadProcessorConfig loads the known processor keys under prefix.
func (s *SettingsService) loadProcessorConfig(prefix string) map[string]any {
	cfg := make(map[string]any)
	for _, key := range []string{"max_tokens", "overlap_tokens"} {
		if _, exists := s.configStore.Get(prefix + key); exists {
			cfg[key] = s.configStore.GetInt(prefix + key)
		}
	}
	return cfg
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getIntIfSet treats an explicit zero as a value rather than "unset".
func (s *SettingsService) getIntIfSet(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloatIfSet(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) apiKey(key string, provider domain.AIProvider) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return s.envKey(provider)
}

func (s *SettingsService) envKey(provider domain.AIProvider) string {
	if env := provider.APIKeyEnv(); env != "" {
		return s.getenv(env)
	}
	return ""
}

func (s *SettingsService) shouldPersistKey(key string, provider domain.AIProvider) bool {
	return key != "" && key != s.envKey(provider)
}

func pickModel(model, defaultModel string) string {
	if model != "" {
		return model
	}
	return defaultModel
}

// baseURLFor keeps a configured URL for local providers and clears it for
// cloud providers.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return defaultOllamaURL
	}
	return current
}
