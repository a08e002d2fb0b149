// Package gemini provides an embedding service adapter using the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ragtube/ragtube-cli/internal/adapters/driven/geminiapi"
	"github.com/ragtube/ragtube-cli/internal/core/domain"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = "gemini-embedding-001"

// taskType tunes vectors for retrieval over stored passages.
const taskType = "RETRIEVAL_DOCUMENT"

// Config configures the Gemini embeddings client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string

	// Dimensions requests a reduced output dimensionality. Zero keeps the
	// model's native size.
	Dimensions int
}

// EmbeddingService generates embeddings with models.batchEmbedContents.
type EmbeddingService struct {
	client     *geminiapi.Client
	model      string
	dimensions int
	reduced    bool
}

// NewEmbeddingService fails without an API key or for a model whose size is
// unknown and not given.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	client, err := geminiapi.NewClient(geminiapi.Config{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL})
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	dims := domain.EmbeddingDimensions()[cfg.Model]
	reduced := false
	if cfg.Dimensions > 0 && cfg.Dimensions != dims {
		dims = cfg.Dimensions
		reduced = true
	}
	if dims == 0 {
		return nil, fmt.Errorf("gemini: unknown dimensions for model %s", cfg.Model)
	}

	return &EmbeddingService{client: client, model: cfg.Model, dimensions: dims, reduced: reduced}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch embeds all texts in one batchEmbedContents call.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	model := geminiapi.ModelPath(s.model)
	req := batchEmbedRequest{Requests: make([]embedRequest, len(texts))}
	for i, t := range texts {
		if t == "" {
			return nil, domain.NewEmbeddingError(domain.EmbeddingInvalidInput,
				fmt.Errorf("gemini: input %d is empty", i))
		}
		req.Requests[i] = embedRequest{
			Model:    model,
			TaskType: taskType,
			Content:  geminiapi.Content{Parts: []geminiapi.Part{{Text: t}}},
		}
		if s.reduced {
			req.Requests[i].OutputDimensionality = s.dimensions
		}
	}

	var resp batchEmbedResponse
	if err := s.client.Do(ctx, http.MethodPost, model+":batchEmbedContents", req, &resp); err != nil {
		return nil, classify(err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, domain.NewEmbeddingError(domain.EmbeddingUnknown,
			fmt.Errorf("gemini: got %d embeddings for %d inputs", len(resp.Embeddings), len(texts)))
	}

	out := make([][]float32, len(texts))
	for i, e := range resp.Embeddings {
		if len(e.Values) == 0 {
			return nil, domain.NewEmbeddingError(domain.EmbeddingUnknown,
				fmt.Errorf("gemini: no embedding returned for input %d", i))
		}
		out[i] = e.Values
	}
	return out, nil
}

type embedRequest struct {
	Model                string            `json:"model"`
	TaskType             string            `json:"taskType,omitempty"`
	Content              geminiapi.Content `json:"content"`
	OutputDimensionality int               `json:"outputDimensionality,omitempty"`
}

type batchEmbedRequest struct {
	Requests []embedRequest `json:"requests"`
}

type batchEmbedResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
}

func classify(err error) error {
	kind := domain.EmbeddingUnknown
	switch {
	case geminiapi.IsRateLimited(err):
		kind = domain.EmbeddingRateLimited
	case geminiapi.IsServerError(err):
		kind = domain.EmbeddingNetwork
	case geminiapi.IsBadRequest(err):
		kind = domain.EmbeddingInvalidInput
	default:
		if _, ok := geminiapi.StatusCode(err); !ok {
			kind = domain.EmbeddingNetwork
		}
	}
	return domain.NewEmbeddingError(kind, fmt.Errorf("gemini: %w", err))
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping fetches the model resource, which validates the key without inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, http.MethodGet, geminiapi.ModelPath(s.model), nil, nil); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close is a no-op.
func (s *EmbeddingService) Close() error {
	return nil
}
