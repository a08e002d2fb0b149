package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driving"
	"github.com/ragtube/ragtube-cli/internal/fingerprint"
	"github.com/ragtube/ragtube-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultEmbedBatchSize is the number of chunks per embedding request.
const DefaultEmbedBatchSize = 16

// ChunkID returns the id of the chunk at index within a video.
// Ids sort in index order within a video.
func ChunkID(videoID string, index int) string {
	return fmt.Sprintf("%s-%04d", videoID, index)
}

// IngestService writes transcripts into the store. Each document is staged
// in memory (one parent plus its embedded chunks) and committed in a single
// transaction, so a failure at any step leaves nothing behind.
//
// Ingestion is single-writer: callers must not run two ingestions against
// the same store at once.
type IngestService struct {
	store      driven.VideoStore
	normaliser driven.Normaliser
	pipeline   driven.PostProcessorPipeline
	embedder   driven.EmbeddingService
	metadata   *MetadataGenerator
	batchSize  int
	now        func() time.Time
}

// NewIngestService creates a new ingest service.
// The embedder is required; batchSize <= 0 selects DefaultEmbedBatchSize.
func NewIngestService(
	store driven.VideoStore,
	normaliser driven.Normaliser,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	metadata *MetadataGenerator,
	batchSize int,
) *IngestService {
	if batchSize <= 0 {
		batchSize = DefaultEmbedBatchSize
	}
	if metadata == nil {
		metadata = NewMetadataGenerator(nil, nil)
	}
	return &IngestService{
		store:      store,
		normaliser: normaliser,
		pipeline:   pipeline,
		embedder:   embedder,
		metadata:   metadata,
		batchSize:  batchSize,
		now:        time.Now,
	}
}

// IngestAll ingests documents in order. Per-document failures are recorded
// in the report and do not stop the run.
func (s *IngestService) IngestAll(ctx context.Context, docs []domain.SourceDocument) (*domain.IngestReport, error) {
	logger.Section("Ingestion")
	report := &domain.IngestReport{}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result, err := s.IngestDocument(ctx, doc)
		report.Add(result)
		if err != nil && ctx.Err() != nil {
			return report, ctx.Err()
		}
	}

	logger.Info("ingestion finished: %d ingested, %d duplicates, %d rejected, %d failed",
		report.Count(domain.OutcomeIngested),
		report.Count(domain.OutcomeSkippedDuplicate),
		report.Count(domain.OutcomeRejected),
		report.Count(domain.OutcomeFailed))
	return report, nil
}

// IngestDocument ingests one document.
func (s *IngestService) IngestDocument(ctx context.Context, doc domain.SourceDocument) (domain.IngestResult, error) {
	result := domain.IngestResult{Filename: doc.Filename}
	abort := func(outcome domain.IngestOutcome, err error) (domain.IngestResult, error) {
		ingestErr := &domain.IngestError{Filename: doc.Filename, ContentHash: result.ContentHash, Err: err}
		result.Outcome = outcome
		result.Err = ingestErr
		if outcome == domain.OutcomeRejected {
			logger.Warn("rejected %s: %v", doc.Filename, err)
		} else {
			logger.Error("failed %s: %v", doc.Filename, err)
		}
		return result, ingestErr
	}

	if s.embedder == nil {
		return abort(domain.OutcomeFailed, domain.ErrEmbeddingUnavailable)
	}

	norm, err := s.normaliser.NormaliseDocument(ctx, doc)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return abort(domain.OutcomeRejected, fmt.Errorf("no text after normalisation: %w", err))
		}
		return abort(domain.OutcomeFailed, fmt.Errorf("normalise: %w", err))
	}
	result.ContentHash = norm.ContentHash

	exists, err := s.store.HasContentHash(ctx, norm.ContentHash)
	if err != nil {
		return abort(domain.OutcomeFailed, fmt.Errorf("check content hash: %w", err))
	}
	if exists {
		result.Outcome = domain.OutcomeSkippedDuplicate
		logger.Info("skipping %s: duplicate content (hash %.12s)", doc.Filename, norm.ContentHash)
		return result, nil
	}

	videoID := fingerprint.VideoID(norm.ContentHash)
	result.VideoID = videoID

	textChunks, err := s.pipeline.Process(ctx, norm)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return abort(domain.OutcomeRejected, fmt.Errorf("chunk: %w", err))
		}
		return abort(domain.OutcomeFailed, fmt.Errorf("chunk: %w", err))
	}
	if len(textChunks) == 0 {
		return abort(domain.OutcomeRejected, fmt.Errorf("no chunks produced: %w", domain.ErrValidation))
	}
	logger.Debug("%s: %d chunks", doc.Filename, len(textChunks))

	if err := s.store.EnsureEmbeddingSpace(ctx, s.embedder.ModelName(), s.embedder.Dimensions()); err != nil {
		return abort(domain.OutcomeFailed, fmt.Errorf("embedding space: %w", err))
	}

	chunks, err := s.embedChunks(ctx, videoID, textChunks)
	if err != nil {
		return abort(domain.OutcomeFailed, err)
	}

	summary, keywords, err := s.metadata.Generate(ctx, norm.Source.Title, norm.Text)
	if err != nil {
		return abort(domain.OutcomeFailed, fmt.Errorf("metadata: %w", err))
	}

	video := &domain.ParentVideo{
		ID:          videoID,
		Filename:    doc.Filename,
		Title:       norm.Source.Title,
		Summary:     summary,
		Keywords:    keywords,
		ContentHash: norm.ContentHash,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.store.CommitVideo(ctx, video, chunks); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			result.Outcome = domain.OutcomeSkippedDuplicate
			logger.Info("skipping %s: duplicate content committed concurrently", doc.Filename)
			return result, nil
		}
		return abort(domain.OutcomeFailed, fmt.Errorf("commit: %w", err))
	}

	result.Outcome = domain.OutcomeIngested
	result.Chunks = len(chunks)
	logger.Info("ingested %s (%d chunks)", doc.Filename, len(chunks))
	return result, nil
}

// embedChunks assigns ids and embeds every chunk, batchSize at a time.
// Any failure discards the whole staging buffer.
func (s *IngestService) embedChunks(ctx context.Context, videoID string, textChunks []domain.TextChunk) ([]domain.Chunk, error) {
	dims := s.embedder.Dimensions()
	chunks := make([]domain.Chunk, len(textChunks))

	for start := 0; start < len(textChunks); start += s.batchSize {
		end := min(start+s.batchSize, len(textChunks))

		texts := make([]string, 0, end-start)
		for _, tc := range textChunks[start:end] {
			texts = append(texts, tc.Text)
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("embed chunks %d-%d: got %d vectors for %d texts", start, end-1, len(vectors), len(texts))
		}

		for i, vec := range vectors {
			tc := textChunks[start+i]
			if len(vec) != dims {
				return nil, fmt.Errorf("chunk %d has %d dimensions, want %d: %w",
					tc.Index, len(vec), dims, domain.ErrDimensionMismatch)
			}
			chunks[start+i] = domain.Chunk{
				ID:         ChunkID(videoID, tc.Index),
				VideoID:    videoID,
				Text:       tc.Text,
				Index:      tc.Index,
				TokenCount: tc.TokenCount,
				Embedding:  vec,
			}
		}
	}
	return chunks, nil
}
