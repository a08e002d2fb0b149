// Package postprocessors provides chunking of normalised transcript text.
package postprocessors

import (
	"context"
	"errors"
	"fmt"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
)

var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline runs its processors in order.
type Pipeline struct {
	processors []driven.PostProcessor
}

func NewPipeline(processors ...driven.PostProcessor) *Pipeline {
	return &Pipeline{processors: processors}
}

// BuildPipeline constructs the pipeline described by cfg from the registry.
func BuildPipeline(r *Registry, cfg domain.PipelineConfig) (*Pipeline, error) {
	if len(cfg.Processors) == 0 {
		return nil, fmt.Errorf("%w: pipeline has no processors", domain.ErrValidation)
	}

	p := NewPipeline()
	for _, name := range cfg.Processors {
		processor, err := r.Build(name, cfg.GetProcessorConfig(name))
		if err != nil {
			return nil, err
		}
		p.Add(processor)
	}
	return p, nil
}

// Process threads the chunk slice through every processor and numbers the
// result from zero, so stages that merge or drop chunks need not reindex.
func (p *Pipeline) Process(ctx context.Context, doc *domain.NormalizedDocument) ([]domain.TextChunk, error) {
	if doc == nil {
		return nil, errors.New("document is nil")
	}

	var chunks []domain.TextChunk
	for _, stage := range p.processors {
		out, err := stage.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", stage.Name(), err)
		}
		chunks = out
	}

	for i := range chunks {
		chunks[i].Index = i
	}
	return chunks, nil
}

func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.processors = append(p.processors, processor)
}

// Len is the number of stages.
func (p *Pipeline) Len() int {
	return len(p.processors)
}
