package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
)

var testCreatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// mockIngestService records the documents it was given.
type mockIngestService struct {
	outcomes map[string]domain.IngestOutcome
	allErr   error
	docs     []domain.SourceDocument
}

func (m *mockIngestService) IngestDocument(_ context.Context, doc domain.SourceDocument) (domain.IngestResult, error) {
	m.docs = append(m.docs, doc)
	result := domain.IngestResult{Filename: doc.Filename, Outcome: domain.OutcomeIngested, Chunks: 2}
	if outcome, ok := m.outcomes[doc.Filename]; ok {
		result.Outcome = outcome
	}
	switch result.Outcome {
	case domain.OutcomeRejected, domain.OutcomeFailed:
		result.Chunks = 0
		result.Err = &domain.IngestError{Filename: doc.Filename, Err: errors.New("boom " + doc.Filename)}
		return result, result.Err
	case domain.OutcomeSkippedDuplicate:
		result.Chunks = 0
	}
	return result, nil
}

func (m *mockIngestService) IngestAll(ctx context.Context, docs []domain.SourceDocument) (*domain.IngestReport, error) {
	report := &domain.IngestReport{}
	for _, doc := range docs {
		result, _ := m.IngestDocument(ctx, doc) //nolint:errcheck // carried in result
		report.Add(result)
	}
	return report, m.allErr
}

// mockSource is an in-memory transcript source.
type mockSource struct {
	dir     string
	docs    []domain.SourceDocument
	listErr error
	watched []domain.SourceDocument
}

func (m *mockSource) List(_ context.Context) ([]domain.SourceDocument, error) {
	return m.docs, m.listErr
}

func (m *mockSource) Watch(_ context.Context) (<-chan domain.SourceDocument, <-chan error) {
	docs := make(chan domain.SourceDocument, len(m.watched))
	errs := make(chan error, 1)
	for _, doc := range m.watched {
		docs <- doc
	}
	errs <- errors.New("too many open files")
	close(docs)
	close(errs)
	return docs, errs
}

type mockRetrievalService struct {
	results  []domain.RetrievedChunk
	err      error
	lastTopK int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string, topK int) ([]domain.RetrievedChunk, error) {
	m.lastTopK = topK
	return m.results, m.err
}

type mockQueryService struct {
	answer      *domain.Answer
	err         error
	lastHistory []domain.ChatTurn
}

func (m *mockQueryService) Query(_ context.Context, _ string, history []domain.ChatTurn) (*domain.Answer, error) {
	m.lastHistory = history
	return m.answer, m.err
}

type mockVideoService struct {
	videos   []domain.ParentVideo
	chunks   []domain.Chunk
	keywords []domain.KeywordCount
	stats    domain.StoreStats
	err      error
}

func (m *mockVideoService) List(_ context.Context) ([]domain.VideoSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	summaries := make([]domain.VideoSummary, len(m.videos))
	for i := range m.videos {
		summaries[i] = m.videos[i].Summarise()
	}
	return summaries, nil
}

func (m *mockVideoService) Get(_ context.Context, id string) (*domain.ParentVideo, error) {
	for i := range m.videos {
		if m.videos[i].ID == id {
			return &m.videos[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockVideoService) Chunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return m.chunks, nil
}

func (m *mockVideoService) Keywords(_ context.Context) ([]domain.KeywordCount, error) {
	return m.keywords, m.err
}

func (m *mockVideoService) Stats(_ context.Context) (domain.StoreStats, error) {
	return m.stats, m.err
}

func (m *mockVideoService) Verify(_ context.Context) error {
	return m.err
}

// mockSettingsService keeps settings in memory.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	pingErr     error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding = domain.EmbeddingSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM = domain.LLMSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) GetPipelineConfig() domain.PipelineConfig {
	return domain.DefaultPipelineConfig()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.pingErr }

func (m *mockSettingsService) ValidateLLMConfig() error { return m.pingErr }

// testServices holds the mocks injected by setupTestServices.
type testServices struct {
	ingest    *mockIngestService
	source    *mockSource
	retrieval *mockRetrievalService
	query     *mockQueryService
	videos    *mockVideoService
	settings  *mockSettingsService
}

// setupTestServices injects mock services and returns them.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	ts := &testServices{
		ingest:    &mockIngestService{},
		source:    &mockSource{},
		retrieval: &mockRetrievalService{},
		query:     &mockQueryService{answer: &domain.Answer{}},
		videos:    &mockVideoService{},
		settings:  newMockSettingsService(),
	}
	SetServices(&Services{
		Ingest:    ts.ingest,
		Retrieval: ts.retrieval,
		Query:     ts.query,
		Videos:    ts.videos,
		Settings:  ts.settings,
		Sources: func(dir string) driven.TranscriptSource {
			ts.source.dir = dir
			return ts.source
		},
	})
	t.Cleanup(func() { SetServices(nil) })
	return ts
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeCommandWithInput(t, "", args...)
}

// executeCommandWithInput runs the root command reading input from stdin.
func executeCommandWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()

	videosJSON = false
	videoShowChunks = false
	retrieveTopK = 3
	retrieveJSON = false
	askHistoryFile = ""
	askJSON = false
	ingestWatch = false
	mcpHTTPAddr = ""

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(bytes.NewBufferString(input))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}
