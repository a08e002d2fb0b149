package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show video store counts",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that every chunk belongs to a stored video",
	Args:  cobra.NoArgs,
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(verifyCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if videoService == nil {
		return errNotConfigured("video")
	}

	stats, err := videoService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	cmd.Println(out.Title.Render("Video Store"))
	cmd.Printf("  Videos:     %d\n", stats.Videos)
	cmd.Printf("  Chunks:     %d\n", stats.Chunks)
	if stats.Model != "" {
		cmd.Printf("  Embeddings: %s (%d dimensions)\n", stats.Model, stats.Dimensions)
	} else {
		cmd.Println("  Embeddings: (none yet)")
	}
	return nil
}

func runVerify(cmd *cobra.Command, _ []string) error {
	if videoService == nil {
		return errNotConfigured("video")
	}

	err := videoService.Verify(cmd.Context())
	var integrityErr *domain.IntegrityError
	switch {
	case err == nil:
		cmd.Println(out.Success.Render("OK: every chunk resolves to a video"))
		return nil
	case errors.As(err, &integrityErr):
		cmd.Println(out.Error.Render(fmt.Sprintf("FAILED: chunk %s references missing video %s",
			integrityErr.ChunkID, integrityErr.VideoID)))
		return err
	default:
		return fmt.Errorf("verify failed: %w", err)
	}
}
