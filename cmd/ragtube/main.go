// Command ragtube answers questions about YouTube transcripts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ragtube/ragtube-cli/internal/adapters/driven/ai"
	"github.com/ragtube/ragtube-cli/internal/adapters/driven/config/file"
	"github.com/ragtube/ragtube-cli/internal/adapters/driven/source/filesystem"
	"github.com/ragtube/ragtube-cli/internal/adapters/driven/storage/sqlite"
	"github.com/ragtube/ragtube-cli/internal/adapters/driving/cli"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
	"github.com/ragtube/ragtube-cli/internal/core/services"
	"github.com/ragtube/ragtube-cli/internal/logger"
	"github.com/ragtube/ragtube-cli/internal/normalisers/transcript"
	"github.com/ragtube/ragtube-cli/internal/postprocessors"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetInitializer(initialise)

	if err := cli.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// initialise wires adapters and services for one command run.
func initialise(ctx context.Context, opts cli.Options) (*cli.Services, func(), error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening config: %w", err)
	}

	promptDir := ""
	if opts.ConfigDir != "" {
		promptDir = filepath.Join(opts.ConfigDir, "prompts")
	}
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening prompts: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("loading settings: %w", err)
	}

	storePath := settings.StorePath
	if storePath == "" && opts.ConfigDir != "" {
		storePath = filepath.Join(opts.ConfigDir, "data")
	}
	store, err := sqlite.NewStore(storePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}
	logger.Debug("store: %s", store.Path())

	var aiResult *ai.InitResult
	var embedder driven.EmbeddingService
	var llm driven.LLMService
	if opts.NeedsAI {
		aiResult = ai.Initialise(ctx, *settings, prompts)
		for _, warning := range aiResult.Warnings {
			logger.Warn("%s", warning)
		}
		embedder = aiResult.EmbeddingService
		llm = aiResult.LLMService
	}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := postprocessors.BuildPipeline(registry, settingsService.GetPipelineConfig())
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("building pipeline: %w", err)
	}

	retrieval := services.NewRetrievalService(store, embedder)
	svc := &cli.Services{
		Ingest: services.NewIngestService(
			store,
			transcript.New(),
			pipeline,
			embedder,
			services.NewMetadataGenerator(llm, prompts),
			settings.Ingest.EmbedBatchSize,
		),
		Retrieval: retrieval,
		Query:     services.NewQueryService(retrieval, llm, prompts, settings.Query.TopK),
		Videos:    services.NewVideoService(store),
		Settings:  settingsService,
		Sources: func(dir string) driven.TranscriptSource {
			return filesystem.New(dir)
		},
	}

	cleanup := func() {
		if aiResult != nil {
			aiResult.Close()
		}
		if err := store.Close(); err != nil {
			logger.Warn("closing store: %v", err)
		}
	}
	return svc, cleanup, nil
}
