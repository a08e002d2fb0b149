package driven

import "context"

// LLMService generates answers and video descriptions. It is optional: with
// no LLM configured, ask is unavailable and metadata falls back to the
// extractive summariser.
//
// Errors are *domain.GenerationError.
type LLMService interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// Summarise keeps the result within maxLength words. A non-empty title
	// selects the video_summary prompt; otherwise the generic summarise one.
	Summarise(ctx context.Context, title, content string, maxLength int) (string, error)

	ModelName() string
	Ping(ctx context.Context) error
	Close() error
}

// GenerateOptions tunes a single completion. Zero values defer to the
// provider's defaults.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	StopWords   []string
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a conversation; Role is one of the Role
// constants.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatOptions tunes a chat completion.
type ChatOptions struct {
	MaxTokens   int
	Temperature float64
}
