package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View or change ragtube's configuration",
	Long: `Shows the providers, gateway, ingest and query options from config.toml.

The wizard and the embedding/llm subcommands edit them interactively.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Walk through provider and directory setup",
	RunE:  runSettingsWizard,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Choose the embedding provider",
	Long:  `Choose the provider that embeds transcript chunks and queries, then ping it.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runProviderStep(cmd, embeddingStep)
	},
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Choose the LLM provider",
	Long:  `Choose the provider that answers questions and writes video metadata, then ping it.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runProviderStep(cmd, llmStep)
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsWizardCmd, settingsEmbeddingCmd, settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

// providerStep is one "pick a provider, model and key" prompt.
type providerStep struct {
	label     string
	providers []domain.AIProvider
	models    map[domain.AIProvider]string
	apply     func(p domain.AIProvider, model, apiKey string) error
	ping      func() error
}

var embeddingStep = func() providerStep {
	return providerStep{
		label:     "embedding",
		providers: domain.AllEmbeddingProviders(),
		models:    domain.DefaultEmbeddingModels(),
		apply:     settingsService.SetEmbeddingProvider,
		ping:      settingsService.ValidateEmbeddingConfig,
	}
}

var llmStep = func() providerStep {
	return providerStep{
		label:     "LLM",
		providers: domain.AllLLMProviders(),
		models:    domain.DefaultLLMModels(),
		apply:     settingsService.SetLLMProvider,
		ping:      settingsService.ValidateLLMConfig,
	}
}

func runProviderStep(cmd *cobra.Command, step func() providerStep) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}
	return step().run(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func (s providerStep) run(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Printf("Select %s provider\n", s.label)
	for i, p := range s.providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nChoice [1]: ")
	provider := s.providers[parseChoice(readLine(reader), len(s.providers), 1)-1]

	model := s.models[provider]
	cmd.Printf("Model [%s]: ", model)
	if typed := readLine(reader); typed != "" {
		model = typed
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		env := provider.APIKeyEnv()
		cmd.Printf("API key (blank to use %s): ", env)
		apiKey = readPassword(cmd, reader)
		cmd.Println()
		if apiKey == "" && os.Getenv(env) == "" {
			return fmt.Errorf("%s needs an API key: enter one or set %s", provider.Description(), env)
		}
	}

	if err := s.apply(provider, model, apiKey); err != nil {
		return fmt.Errorf("saving %s provider: %w", s.label, err)
	}

	cmd.Print("Checking provider... ")
	if err := s.ping(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("%s configuration validation failed: %w", strings.ToLower(s.label), err)
	}
	cmd.Println("OK")
	cmd.Printf("%s: %s (%s)\n\n", s.label, provider.Description(), model)
	return nil
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	section := func(name string, body func()) {
		cmd.Println(out.Heading.Render("[" + name + "]"))
		body()
		cmd.Println()
	}

	cmd.Println(out.Title.Render("ragtube settings"))
	cmd.Println()

	section("Embedding", func() {
		e := settings.Embedding
		printProvider(cmd, e.Provider, e.Model, e.BaseURL, e.APIKey, e.IsConfigured())
		if e.Dimensions > 0 {
			cmd.Printf("  Dimensions: %d\n", e.Dimensions)
		}
	})
	section("LLM", func() {
		l := settings.LLM
		printProvider(cmd, l.Provider, l.Model, l.BaseURL, l.APIKey, l.IsConfigured())
	})
	section("Gateway", func() {
		g := settings.Gateway
		cmd.Printf("  Timeout: %s\n", g.Timeout)
		cmd.Printf("  Max retries: %d\n", g.MaxRetries)
		cmd.Printf("  Initial backoff: %s\n", g.InitialBackoff)
		if g.RequestsPerSecond > 0 {
			cmd.Printf("  Rate limit: %.1f req/s\n", g.RequestsPerSecond)
		} else {
			cmd.Println("  Rate limit: (none)")
		}
	})
	section("Ingest", func() {
		cmd.Printf("  Source dir: %s\n", orNotSet(settings.Ingest.SourceDir))
		cmd.Printf("  Embed batch size: %d\n", settings.Ingest.EmbedBatchSize)
	})
	section("Query", func() {
		cmd.Printf("  Top K: %d\n", settings.Query.TopK)
	})
	section("Store", func() {
		cmd.Printf("  Path: %s\n", orNotSet(settings.StorePath))
	})

	if err := settingsService.Validate(); err != nil {
		cmd.Println(out.Warning.Render(fmt.Sprintf("Warning: %v", err)))
		cmd.Println("Fix it with 'ragtube settings wizard'.")
		return nil
	}
	cmd.Println(out.Success.Render("Configuration is valid."))
	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	if provider == "" {
		cmd.Println("  Provider: (not set)")
	} else {
		cmd.Printf("  Provider: %s\n", provider.Description())
		cmd.Printf("  Model: %s\n", model)
	}
	switch {
	case provider.IsLocal():
		cmd.Printf("  Base URL: %s\n", baseURL)
	case provider.RequiresAPIKey() && apiKey != "":
		cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
	case provider.RequiresAPIKey():
		cmd.Printf("  API Key: (not set, or set %s)\n", provider.APIKeyEnv())
	}
	if configured {
		cmd.Println("  Status: configured")
	} else {
		cmd.Println("  Status: not configured")
	}
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}
	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println(out.Title.Render("ragtube setup"))
	cmd.Println()

	cmd.Println(out.Heading.Render("1/3 Embeddings"))
	cmd.Println("Needed for ingest, retrieve and ask.")
	if err := embeddingStep().run(cmd, reader); err != nil {
		return err
	}

	cmd.Println(out.Heading.Render("2/3 LLM"))
	cmd.Println("Answers questions and writes video summaries and keywords.")
	if err := llmStep().run(cmd, reader); err != nil {
		return err
	}

	cmd.Println(out.Heading.Render("3/3 Transcripts"))
	if err := configureSourceDir(cmd, reader); err != nil {
		return err
	}

	if err := settingsService.Validate(); err != nil {
		cmd.Println(out.Warning.Render(fmt.Sprintf("Warning: %v", err)))
		return nil
	}
	cmd.Println(out.Success.Render("All settings are valid and saved."))
	return nil
}

func configureSourceDir(cmd *cobra.Command, reader *bufio.Reader) error {
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	cmd.Printf("Transcript directory [%s]: ", settings.Ingest.SourceDir)
	dir := readLine(reader)
	if dir == "" {
		cmd.Println()
		return nil
	}

	settings.Ingest.SourceDir = dir
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	cmd.Printf("Transcripts will be read from %s\n\n", dir)
	return nil
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n') //nolint:errcheck // EOF yields the partial line
	return strings.TrimSpace(line)
}

// parseChoice turns a 1-based menu answer into an index, using defaultVal
// for blank or out-of-range input.
func parseChoice(input string, maxVal, defaultVal int) int {
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > maxVal {
		return defaultVal
	}
	return n
}

// readPassword reads without echo when stdin is a terminal.
func readPassword(cmd *cobra.Command, reader *bufio.Reader) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if secret, err := term.ReadPassword(int(f.Fd())); err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
