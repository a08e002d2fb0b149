package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
)

type stubPrompts map[string]string

func (p stubPrompts) Load(name string) (string, error) { return p[name], nil }
func (p stubPrompts) Reload()                          {}

func newTestLLM(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewLLMService(LLMConfig{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService(t *testing.T) {
	_, err := NewLLMService(LLMConfig{})
	assert.Error(t, err)

	svc, err := NewLLMService(LLMConfig{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
}

func TestChat_SendsMessagesInOrder(t *testing.T) {
	svc := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 3)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "first", req.Messages[1].Content)
		assert.Equal(t, "assistant", req.Messages[2].Role)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hello"}}]}`))
	})

	got, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "sys"},
		{Role: driven.RoleUser, Content: "first"},
		{Role: driven.RoleAssistant, Content: "second"},
	}, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestChat_ErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   domain.GenerationErrorKind
	}{
		{"quota", http.StatusTooManyRequests, domain.GenerationQuotaExceeded},
		{"server", http.StatusInternalServerError, domain.GenerationNetwork},
		{"auth", http.StatusUnauthorized, domain.GenerationUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestLLM(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"denied"}}`))
			})

			_, err := svc.Generate(context.Background(), "q", driven.GenerateOptions{})
			var genErr *domain.GenerationError
			require.ErrorAs(t, err, &genErr)
			assert.Equal(t, tt.kind, genErr.Kind)
		})
	}
}

func TestChat_NoChoices(t *testing.T) {
	svc := newTestLLM(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := svc.Chat(context.Background(), nil, driven.ChatOptions{})
	var genErr *domain.GenerationError
	assert.ErrorAs(t, err, &genErr)
}

func TestSummarise_UsesPromptStore(t *testing.T) {
	svc := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "max 10: the text", req.Messages[0].Content)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  short  "}}]}`))
	})
	svc.SetPromptStore(stubPrompts{driven.PromptSummarise: "max %d: %s"})

	got, err := svc.Summarise(context.Background(), "", "the text", 10)
	require.NoError(t, err)
	assert.Equal(t, "short", got)
}
