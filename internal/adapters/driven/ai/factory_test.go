package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragtube/ragtube-cli/internal/adapters/driven/embedding/resilient"
	"github.com/ragtube/ragtube-cli/internal/core/domain"
)

type recordingPrompts struct{ loaded []string }

func (p *recordingPrompts) Load(name string) (string, error) {
	p.loaded = append(p.loaded, name)
	return "%d %s", nil
}
func (p *recordingPrompts) Reload() {}

func TestInitResult_CloseWithNilServices(t *testing.T) {
	result := &InitResult{}
	result.Close()
}

func TestCreateEmbeddingService(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantNil  bool
		wantErr  bool
		model    string
	}{
		{name: "nil settings", settings: nil, wantNil: true},
		{name: "unconfigured", settings: &domain.EmbeddingSettings{}, wantNil: true},
		{
			name:     "ollama",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "all-minilm"},
			model:    "all-minilm",
		},
		{
			name:     "openai",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, APIKey: "k", Model: "text-embedding-3-small"},
			model:    "text-embedding-3-small",
		},
		{
			name:     "gemini",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderGemini, APIKey: "k", Model: "gemini-embedding-001"},
			model:    "gemini-embedding-001",
		},
		{
			name:     "openai without key",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI},
			wantNil:  true,
		},
		{
			name:     "anthropic",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"},
			wantErr:  true,
		},
		{
			name:     "unknown provider",
			settings: &domain.EmbeddingSettings{Provider: "cohere"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(ctx, tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			assert.Equal(t, tt.model, svc.ModelName())
		})
	}
}

func TestCreateLLMService(t *testing.T) {
	ctx := context.Background()
	for _, provider := range domain.AllLLMProviders() {
		t.Run(string(provider), func(t *testing.T) {
			svc, err := CreateLLMService(ctx, &domain.LLMSettings{Provider: provider, APIKey: "k", Model: "m"})
			require.NoError(t, err)
			require.NotNil(t, svc)
			assert.Equal(t, "m", svc.ModelName())
		})
	}

	_, err := CreateLLMService(ctx, &domain.LLMSettings{Provider: "mystery"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestInitialise(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	settings := domain.DefaultAppSettings()
	settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL}
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL}

	prompts := &recordingPrompts{}
	result := Initialise(context.Background(), settings, prompts)
	defer result.Close()

	assert.Empty(t, result.Warnings)
	assert.IsType(t, &resilient.EmbeddingService{}, result.EmbeddingService)
	require.NotNil(t, result.LLMService)
}

func TestInitialise_UnreachableProvidersBecomeWarnings(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	settings := domain.DefaultAppSettings()
	settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: url}
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: url}

	result := Initialise(context.Background(), settings, nil)

	assert.Nil(t, result.EmbeddingService)
	assert.Nil(t, result.LLMService)
	assert.Len(t, result.Warnings, 2)
}
