// Package cli implements the ragtube command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/ragtube/ragtube-cli/internal/adapters/driving/cli/styles"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driving"
	"github.com/ragtube/ragtube-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services are the ports the commands run against.
type Services struct {
	Ingest    driving.IngestService
	Retrieval driving.RetrievalService
	Query     driving.QueryService
	Videos    driving.VideoService
	Settings  driving.SettingsService

	// Sources opens the transcript source for a directory.
	Sources func(dir string) driven.TranscriptSource
}

// Options are the global flag values handed to the Initializer.
type Options struct {
	ConfigDir string
	Verbose   bool

	// NeedsAI is set for commands that embed or generate text, so the
	// initializer can skip provider connections for the rest.
	NeedsAI bool
}

// needsAI marks a command as using the embedding or LLM providers.
var needsAI = map[string]string{"needs-ai": "true"}

// Initializer builds the services once global flags are parsed.
// The returned cleanup function runs when the command finishes.
type Initializer func(ctx context.Context, opts Options) (*Services, func(), error)

var (
	ingestService    driving.IngestService
	retrievalService driving.RetrievalService
	queryService     driving.QueryService
	videoService     driving.VideoService
	settingsService  driving.SettingsService
	sourceFactory    func(dir string) driven.TranscriptSource
)

var (
	initializer Initializer
	cleanup     func()

	verbose   bool
	configDir string

	out = styles.DefaultStyles()
)

var rootCmd = &cobra.Command{
	Use:   "ragtube",
	Short: "Ask questions about YouTube transcripts",
	Long: `ragtube ingests video transcripts into a local vector store and answers
questions from the most relevant passages, citing the files they came from.

Run 'ragtube settings wizard' to configure embedding and LLM providers, then
'ragtube ingest <dir>' to load transcripts.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.ragtube)")
}

// SetInitializer registers the function that builds services before a command runs.
func SetInitializer(fn Initializer) {
	initializer = fn
}

// SetServices injects the services used by commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	ingestService = s.Ingest
	retrievalService = s.Retrieval
	queryService = s.Query
	videoService = s.Videos
	settingsService = s.Settings
	sourceFactory = s.Sources
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, releasing services afterwards.
func ExecuteContext(ctx context.Context) error {
	defer runCleanup()
	return rootCmd.ExecuteContext(ctx)
}

func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if initializer == nil || cmd == versionCmd {
		return nil
	}

	services, done, err := initializer(cmd.Context(), Options{
		ConfigDir: configDir,
		Verbose:   verbose,
		NeedsAI:   cmd.Annotations["needs-ai"] == "true",
	})
	if err != nil {
		return err
	}
	SetServices(services)
	cleanup = done
	return nil
}

func runCleanup() {
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
}

// errNotConfigured reports a service missing from the wiring.
func errNotConfigured(name string) error {
	return errors.New(name + " service not configured")
}
