package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driving"
	"github.com/ragtube/ragtube-cli/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// DefaultTopK is the number of passages retrieved per question.
const DefaultTopK = 3

const defaultAnswerSystemPrompt = `You answer questions about a collection of video transcripts.
Answer only from the passages provided. If they do not answer the question, say so.
Cite the source filename of every passage you use. Be concise.`

// QueryService answers questions from retrieved transcript passages.
// It keeps no conversation state; history travels with every call.
type QueryService struct {
	retriever driving.RetrievalService
	llm       driven.LLMService
	prompts   driven.PromptStore
	topK      int
}

// NewQueryService creates a new query service. prompts may be nil;
// topK <= 0 selects DefaultTopK.
func NewQueryService(
	retriever driving.RetrievalService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	topK int,
) *QueryService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &QueryService{
		retriever: retriever,
		llm:       llm,
		prompts:   prompts,
		topK:      topK,
	}
}

// Query retrieves context for question and asks the LLM to answer it.
func (s *QueryService) Query(ctx context.Context, question string, history []domain.ChatTurn) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("empty question: %w", domain.ErrValidation)
	}
	for i, turn := range history {
		if turn.Role != domain.RoleUser && turn.Role != domain.RoleAssistant {
			return nil, fmt.Errorf("history[%d]: unknown role %q: %w", i, turn.Role, domain.ErrValidation)
		}
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	retrieved, err := s.retriever.Retrieve(ctx, question, s.topK)
	if err != nil {
		return nil, err
	}

	messages := make([]driven.ChatMessage, 0, len(history)+2)
	messages = append(messages, driven.ChatMessage{Role: driven.RoleSystem, Content: s.systemPrompt()})
	for _, turn := range history {
		messages = append(messages, driven.ChatMessage{Role: turn.Role, Content: turn.Text})
	}
	messages = append(messages, driven.ChatMessage{
		Role:    driven.RoleUser,
		Content: buildQuestionPrompt(question, retrieved),
	})

	logger.Debug("Asking %s with %d history turns and %d passages", s.llm.ModelName(), len(history), len(retrieved))

	text, err := s.llm.Chat(ctx, messages, driven.ChatOptions{MaxTokens: 1024, Temperature: 0.2})
	if err != nil {
		var genErr *domain.GenerationError
		if errors.As(err, &genErr) {
			return nil, err
		}
		return nil, domain.NewGenerationError(domain.GenerationUnknown, err)
	}

	sources := make([]domain.CitedSource, 0, len(retrieved))
	for _, r := range retrieved {
		sources = append(sources, domain.CitedSource{
			Filename:  r.Video.Filename,
			ChunkText: r.Chunk.Text,
		})
	}

	return &domain.Answer{
		Text:         strings.TrimSpace(text),
		CitedSources: sources,
	}, nil
}

func (s *QueryService) systemPrompt() string {
	if s.prompts == nil {
		return defaultAnswerSystemPrompt
	}
	prompt, err := s.prompts.Load(driven.PromptAnswerSystem)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return defaultAnswerSystemPrompt
	}
	return prompt
}

// buildQuestionPrompt appends the retrieved passages to the question.
func buildQuestionPrompt(question string, retrieved []domain.RetrievedChunk) string {
	var b strings.Builder
	b.WriteString("Transcript passages:\n")
	if len(retrieved) == 0 {
		b.WriteString("(no passages found)\n")
	}
	for i, r := range retrieved {
		fmt.Fprintf(&b, "\n[%d] source: %s", i+1, r.Video.Filename)
		if r.Video.Title != "" {
			fmt.Fprintf(&b, " (%s)", r.Video.Title)
		}
		fmt.Fprintf(&b, "\n%s\n", r.Chunk.Text)
	}
	fmt.Fprintf(&b, "\nQuestion: %s", question)
	return b.String()
}
