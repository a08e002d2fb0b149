package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
)

// topicWords define the axes of the fake embedding space.
var topicWords = []string{"alpha", "beta", "gamma"}

// topicVector counts topic words in text. A small constant keeps vectors
// non-zero for text that mentions no topic.
func topicVector(text string) []float32 {
	lower := strings.ToLower(text)
	vec := make([]float32, len(topicWords))
	for i, w := range topicWords {
		vec[i] = float32(strings.Count(lower, w)) + 0.01
	}
	return vec
}

// mockEmbedder implements driven.EmbeddingService.
type mockEmbedder struct {
	mu        sync.Mutex
	dims      int
	failAt    int // 1-based text index that fails; 0 never fails
	err       error
	wrongDims bool
	embedded  int
	batches   []int
	queries   []string
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{dims: len(topicWords)}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, text)
	if m.err != nil && m.failAt == 0 {
		return nil, m.err
	}
	return topicVector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, len(texts))

	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		m.embedded++
		if m.failAt > 0 && m.embedded == m.failAt {
			return nil, domain.NewEmbeddingError(domain.EmbeddingNetwork, errors.New("connection reset"))
		}
		vec := topicVector(text)
		if m.wrongDims {
			vec = append(vec, 0)
		}
		out = append(out, vec)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return m.dims }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockLLM implements driven.LLMService.
type mockLLM struct {
	mu        sync.Mutex
	generated map[string]string // prompt prefix -> response
	genErr    error
	chatReply string
	chatErr   error
	messages  []driven.ChatMessage
	prompts   []string
	summaries []string // "title\ncontent" per Summarise call
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.genErr != nil {
		return "", m.genErr
	}
	for prefix, reply := range m.generated {
		if strings.HasPrefix(prompt, prefix) {
			return reply, nil
		}
	}
	return "", nil
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = messages
	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.chatReply, nil
}

// Summarise answers with the "SUMMARY" entry of generated.
func (m *mockLLM) Summarise(_ context.Context, title, content string, _ int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries = append(m.summaries, title+"\n"+content)
	if m.genErr != nil {
		return "", m.genErr
	}
	return m.generated["SUMMARY"], nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockPrompts implements driven.PromptStore.
type mockPrompts map[string]string

func (p mockPrompts) Load(name string) (string, error) {
	if tmpl, ok := p[name]; ok {
		return tmpl, nil
	}
	return "", fmt.Errorf("prompt %s not found", name)
}

func (p mockPrompts) Reload() {}

func testPrompts() mockPrompts {
	return mockPrompts{
		driven.PromptVideoKeywords: "KEYWORDS %s\n%s",
		driven.PromptAnswerSystem:  "Answer from the passages.",
	}
}

// stubPipeline splits normalised text into a fixed number of chunks.
type stubPipeline struct {
	chunks int
	err    error
}

func (p stubPipeline) Process(_ context.Context, doc *domain.NormalizedDocument) ([]domain.TextChunk, error) {
	if p.err != nil {
		return nil, p.err
	}
	out := make([]domain.TextChunk, p.chunks)
	for i := range out {
		out[i] = domain.TextChunk{
			Text:       fmt.Sprintf("%s (part %d)", doc.Text, i),
			Index:      i,
			TokenCount: 10,
		}
	}
	return out, nil
}
