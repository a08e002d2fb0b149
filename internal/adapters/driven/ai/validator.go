package ai

import (
	"context"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = ConfigValidator{}

// ConfigValidator lets the settings service test a provider before the
// wizard reports success. Each check builds a throwaway client and pings it.
type ConfigValidator struct{}

func NewConfigValidator() ConfigValidator {
	return ConfigValidator{}
}

func (ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(context.Background(), config)
	return check(svc, err)
}

func (ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	svc, err := CreateLLMService(context.Background(), config)
	return check(svc, err)
}

func check[S pingCloser](svc S, err error) error {
	if err != nil || any(svc) == nil {
		return err
	}
	defer svc.Close()
	return ping(context.Background(), svc)
}
