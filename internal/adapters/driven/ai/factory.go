// Package ai builds embedding and LLM clients from settings.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	geminiembed "github.com/ragtube/ragtube-cli/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/ragtube/ragtube-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/ragtube/ragtube-cli/internal/adapters/driven/embedding/openai"
	"github.com/ragtube/ragtube-cli/internal/adapters/driven/embedding/resilient"
	anthropicllm "github.com/ragtube/ragtube-cli/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/ragtube/ragtube-cli/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/ragtube/ragtube-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/ragtube/ragtube-cli/internal/adapters/driven/llm/openai"
	"github.com/ragtube/ragtube-cli/internal/core/domain"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
)

const pingTimeout = 5 * time.Second

// InitResult holds whichever services came up. Warnings explain the ones
// left nil.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Warnings         []string
}

func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Initialise builds and pings both providers. The embedding client is
// wrapped in the resilient gateway; the LLM gets the prompt store when it
// can use one. Failures never abort startup, they become warnings.
func Initialise(ctx context.Context, settings domain.AppSettings, prompts driven.PromptStore) *InitResult {
	result := &InitResult{}
	warn := func(err error) { result.Warnings = append(result.Warnings, err.Error()) }

	emb, err := connect(ctx, domain.ErrEmbeddingUnavailable, func() (driven.EmbeddingService, error) {
		return CreateEmbeddingService(ctx, &settings.Embedding)
	})
	switch {
	case err != nil:
		warn(err)
	case emb == nil:
		warn(errors.New("embedding provider not configured"))
	default:
		result.EmbeddingService = resilient.New(emb, resilient.ConfigFromSettings(settings.Gateway))
	}

	llm, err := connect(ctx, domain.ErrLLMUnavailable, func() (driven.LLMService, error) {
		return CreateLLMService(ctx, &settings.LLM)
	})
	if err != nil {
		warn(err)
	} else if llm != nil {
		if aware, ok := llm.(driven.PromptStoreAware); ok && prompts != nil {
			aware.SetPromptStore(prompts)
		}
		result.LLMService = llm
	}

	return result
}

type pingCloser interface {
	Ping(ctx context.Context) error
	Close() error
}

// connect creates a service and pings it, closing it again on failure.
// An unconfigured provider yields a nil service and no error.
func connect[S pingCloser](ctx context.Context, unavailable error, create func() (S, error)) (S, error) {
	var none S
	svc, err := create()
	if err != nil {
		return none, fmt.Errorf("%w: %w. Run 'ragtube settings' to fix", unavailable, err)
	}
	if any(svc) == nil {
		return none, nil
	}
	if err := ping(ctx, svc); err != nil {
		svc.Close()
		return none, fmt.Errorf("%w: service unreachable (%w)", unavailable, err)
	}
	return svc, nil
}

func ping(ctx context.Context, svc pingCloser) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService returns nil, nil when settings name no provider or
// lack a required key.
func CreateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider == domain.AIProviderAnthropic {
		return nil, errors.New("anthropic does not support embeddings, use ollama, openai or gemini")
	}
	if settings.Provider != "" && !settings.Provider.IsValid() {
		return nil, fmt.Errorf("%w: embedding provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	case domain.AIProviderGemini:
		return geminiembed.NewEmbeddingService(geminiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	default:
		return nil, fmt.Errorf("%w: embedding provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
}

// CreateLLMService mirrors CreateEmbeddingService for generation.
func CreateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider != "" && !settings.Provider.IsValid() {
		return nil, fmt.Errorf("%w: LLM provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGemini:
		return geminillm.NewLLMService(geminillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("%w: LLM provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
}
