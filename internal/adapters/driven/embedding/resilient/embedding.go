// Package resilient wraps an embedding service with a per-call timeout,
// client-side rate limiting and exponential-backoff retries of transient failures.
package resilient

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
	"github.com/ragtube/ragtube-cli/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Config controls retry and throttling behaviour.
type Config struct {
	// Timeout bounds each individual attempt. Zero disables it.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// InitialBackoff is the first retry delay; later delays grow exponentially.
	InitialBackoff time.Duration

	// RequestsPerSecond limits outbound calls. Zero disables throttling.
	RequestsPerSecond float64
}

// ConfigFromSettings maps gateway settings onto a Config.
func ConfigFromSettings(s domain.GatewaySettings) Config {
	return Config{
		Timeout:           s.Timeout,
		MaxRetries:        s.MaxRetries,
		InitialBackoff:    s.InitialBackoff,
		RequestsPerSecond: s.RequestsPerSecond,
	}
}

// EmbeddingService decorates another EmbeddingService.
type EmbeddingService struct {
	inner   driven.EmbeddingService
	cfg     Config
	limiter *rate.Limiter
}

// New wraps inner with the given policy.
func New(inner driven.EmbeddingService, cfg Config) *EmbeddingService {
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	s := &EmbeddingService{inner: inner, cfg: cfg}
	if cfg.RequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return s
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := s.do(ctx, "embed", func(ctx context.Context) error {
		v, err := s.inner.Embed(ctx, text)
		if err == nil {
			out = v
		}
		return err
	})
	return out, err
}

// EmbedBatch generates embeddings for multiple texts. The whole batch is retried.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := s.do(ctx, "embed batch", func(ctx context.Context) error {
		v, err := s.inner.EmbedBatch(ctx, texts)
		if err == nil {
			out = v
		}
		return err
	})
	return out, err
}

func (s *EmbeddingService) do(ctx context.Context, op string, call func(context.Context) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.cfg.InitialBackoff
	policy.MaxElapsedTime = 0

	attempt := 0
	operation := func() error {
		attempt++
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		callCtx := ctx
		if s.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
			defer cancel()
		}

		err := call(callCtx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if callCtx.Err() != nil {
			err = domain.NewEmbeddingError(domain.EmbeddingNetwork,
				fmt.Errorf("attempt timed out after %s: %w", s.cfg.Timeout, err))
		}
		if !domain.IsTransientEmbedding(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		logger.Warn("%s attempt %d failed, retrying in %s: %v", op, attempt, wait.Round(time.Millisecond), err)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(s.cfg.MaxRetries)), ctx)
	return backoff.RetryNotify(operation, b, notify)
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the wrapped service's model.
func (s *EmbeddingService) ModelName() string {
	return s.inner.ModelName()
}

// Ping is passed through without retries.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close closes the wrapped service.
func (s *EmbeddingService) Close() error {
	return s.inner.Close()
}
