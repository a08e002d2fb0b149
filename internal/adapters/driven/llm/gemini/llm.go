// Package gemini provides an LLM service adapter using the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ragtube/ragtube-cli/internal/adapters/driven/geminiapi"
	"github.com/ragtube/ragtube-cli/internal/adapters/driven/llm/summarise"
	"github.com/ragtube/ragtube-cli/internal/core/domain"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
)

var (
	_ driven.LLMService       = (*LLMService)(nil)
	_ driven.PromptStoreAware = (*LLMService)(nil)
)

// DefaultModel is the generation model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Config configures the Gemini client. Empty fields take the package defaults.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// LLMService calls models.generateContent.
type LLMService struct {
	client      *geminiapi.Client
	model       string
	promptStore driven.PromptStore
}

func NewLLMService(cfg Config) (*LLMService, error) {
	client, err := geminiapi.NewClient(geminiapi.Config{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL})
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &LLMService{client: client, model: cfg.Model}, nil
}

// Generate sends prompt as a single user turn.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	messages := []driven.ChatMessage{{Role: driven.RoleUser, Content: prompt}}
	return s.generate(ctx, messages, opts.MaxTokens, opts.StopWords)
}

// Chat conducts a multi-turn conversation. System messages become the
// system instruction; assistant turns are sent with the "model" role.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	return s.generate(ctx, messages, opts.MaxTokens, nil)
}

type generationConfig struct {
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	Temperature     float64  `json:"temperature,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
}

type generateRequest struct {
	Contents          []geminiapi.Content `json:"contents"`
	SystemInstruction *geminiapi.Content  `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig   `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      *geminiapi.Content `json:"content"`
		FinishReason string             `json:"finishReason"`
	} `json:"candidates"`
}

func (s *LLMService) generate(ctx context.Context, messages []driven.ChatMessage, maxTokens int, stop []string) (string, error) {
	var req generateRequest
	var system []geminiapi.Part
	for _, msg := range messages {
		part := geminiapi.Part{Text: msg.Content}
		switch msg.Role {
		case driven.RoleSystem:
			system = append(system, part)
		case driven.RoleAssistant:
			req.Contents = append(req.Contents, geminiapi.Content{Role: "model", Parts: []geminiapi.Part{part}})
		default:
			req.Contents = append(req.Contents, geminiapi.Content{Role: "user", Parts: []geminiapi.Part{part}})
		}
	}
	if len(system) > 0 {
		req.SystemInstruction = &geminiapi.Content{Parts: system}
	}
	if maxTokens > 0 || len(stop) > 0 {
		req.GenerationConfig = &generationConfig{MaxOutputTokens: maxTokens, StopSequences: stop}
	}

	var resp generateResponse
	if err := s.client.Do(ctx, http.MethodPost, geminiapi.ModelPath(s.model)+":generateContent", req, &resp); err != nil {
		return "", classify(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", domain.NewGenerationError(domain.GenerationUnknown, errors.New("gemini: no candidates returned"))
	}
	var out strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		out.WriteString(p.Text)
	}
	if out.Len() == 0 {
		return "", domain.NewGenerationError(domain.GenerationUnknown,
			fmt.Errorf("gemini: empty candidate (finish reason %s)", resp.Candidates[0].FinishReason))
	}
	return out.String(), nil
}

func classify(err error) error {
	kind := domain.GenerationUnknown
	switch {
	case geminiapi.IsRateLimited(err):
		kind = domain.GenerationQuotaExceeded
	case geminiapi.IsServerError(err):
		kind = domain.GenerationNetwork
	default:
		if _, ok := geminiapi.StatusCode(err); !ok {
			kind = domain.GenerationNetwork
		}
	}
	return domain.NewGenerationError(kind, fmt.Errorf("gemini: %w", err))
}

// Summarise asks for a summary of at most maxLength words.
func (s *LLMService) Summarise(ctx context.Context, title, content string, maxLength int) (string, error) {
	return summarise.Summarise(ctx, s, s.promptStore, title, content, maxLength)
}

func (s *LLMService) ModelName() string {
	return s.model
}

// SetPromptStore lets files in the prompts directory override the built-in templates.
func (s *LLMService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Ping fetches the model resource.
func (s *LLMService) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, http.MethodGet, geminiapi.ModelPath(s.model), nil, nil); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}
