package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
)

var ingestWatch bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Ingest transcripts into the video store",
	Long: `Reads every transcript in dir (or ingest.source_dir from settings), chunks
and embeds it, and stores the video with its summary and keywords.

Transcripts already in the store are skipped by content, so re-running ingest
on the same directory changes nothing. With --watch the command keeps running
and ingests files as they are created or modified.`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: needsAI,
	RunE:        runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep watching the directory for new transcripts")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errNotConfigured("ingest")
	}
	if sourceFactory == nil {
		return errNotConfigured("transcript source")
	}

	dir, err := ingestDir(args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	source := sourceFactory(dir)

	docs, err := source.List(ctx)
	if err != nil {
		return fmt.Errorf("listing transcripts: %w", err)
	}

	cmd.Println(out.Title.Render(fmt.Sprintf("Ingesting %d transcript(s) from %s", len(docs), dir)))
	report, err := ingestService.IngestAll(ctx, docs)
	if report != nil {
		for i := range report.Results {
			printIngestResult(cmd, &report.Results[i])
		}
		printIngestTotals(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("ingest interrupted: %w", err)
	}

	if ingestWatch {
		return watchIngest(cmd, dir)
	}

	if failed := report.Count(domain.OutcomeFailed); failed > 0 {
		return fmt.Errorf("%d transcript(s) failed to ingest", failed)
	}
	return nil
}

func ingestDir(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if settingsService == nil {
		return "", errors.New("no directory given and settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return "", fmt.Errorf("failed to get settings: %w", err)
	}
	if settings.Ingest.SourceDir == "" {
		return "", errors.New("no directory given and ingest.source_dir is not set")
	}
	return settings.Ingest.SourceDir, nil
}

func watchIngest(cmd *cobra.Command, dir string) error {
	ctx := cmd.Context()
	docs, errs := sourceFactory(dir).Watch(ctx)

	cmd.Println(out.Muted.Render(fmt.Sprintf("Watching %s (Ctrl+C to stop)", dir)))
	for docs != nil || errs != nil {
		select {
		case doc, ok := <-docs:
			if !ok {
				docs = nil
				continue
			}
			result, _ := ingestService.IngestDocument(ctx, doc) //nolint:errcheck // reported via result
			printIngestResult(cmd, &result)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if errors.Is(err, context.Canceled) {
				continue
			}
			cmd.PrintErrln(out.Warning.Render("watch: " + err.Error()))
		}
	}
	return nil
}

func printIngestResult(cmd *cobra.Command, result *domain.IngestResult) {
	label := out.Outcome(result.Outcome).Render(fmt.Sprintf("%-17s", result.Outcome))
	switch result.Outcome {
	case domain.OutcomeIngested:
		cmd.Printf("  %s %s %s\n", label, result.Filename,
			out.Muted.Render(fmt.Sprintf("(%d chunks)", result.Chunks)))
	case domain.OutcomeSkippedDuplicate:
		cmd.Printf("  %s %s\n", label, result.Filename)
	default:
		cmd.Printf("  %s %s: %v\n", label, result.Filename, ingestReason(result.Err))
	}
}

// ingestReason strips the filename wrapper already shown on the line.
func ingestReason(err error) error {
	var ingestErr *domain.IngestError
	if errors.As(err, &ingestErr) {
		return ingestErr.Err
	}
	return err
}

func printIngestTotals(cmd *cobra.Command, report *domain.IngestReport) {
	cmd.Println()
	cmd.Printf("Ingested: %d  Skipped: %d  Rejected: %d  Failed: %d\n",
		report.Count(domain.OutcomeIngested),
		report.Count(domain.OutcomeSkippedDuplicate),
		report.Count(domain.OutcomeRejected),
		report.Count(domain.OutcomeFailed),
	)
}
