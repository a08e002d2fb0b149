package anthropic

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

func newTestLLM(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewLLMService(Config{APIKey: "key", BaseURL: server.URL})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService_RequiresKey(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.Error(t, err)
}

func TestChat_LiftsSystemPrompt(t *testing.T) {
	svc := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "be brief", req.System)
		assert.Equal(t, defaultMaxTokens, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "assistant", req.Messages[1].Role)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"part one "},{"type":"text","text":"part two"}]}`))
	})

	got, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "be brief"},
		{Role: driven.RoleUser, Content: "hi"},
		{Role: driven.RoleAssistant, Content: "hello"},
	}, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "part one part two", got)
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   domain.GenerationErrorKind
	}{
		{"rate limit", http.StatusTooManyRequests, domain.GenerationQuotaExceeded},
		{"overloaded", 529, domain.GenerationNetwork},
		{"invalid", http.StatusBadRequest, domain.GenerationUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestLLM(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"type":"error","error":{"type":"x","message":"boom"}}`))
			})

			_, err := svc.Generate(context.Background(), "q", driven.GenerateOptions{})
			var genErr *domain.GenerationError
			require.ErrorAs(t, err, &genErr)
			assert.Equal(t, tt.kind, genErr.Kind)
			assert.Contains(t, err.Error(), "boom")
		})
	}
}

func TestGenerate_EmptyContent(t *testing.T) {
	svc := newTestLLM(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	})

	_, err := svc.Generate(context.Background(), "q", driven.GenerateOptions{})
	var genErr *domain.GenerationError
	assert.ErrorAs(t, err, &genErr)
}
