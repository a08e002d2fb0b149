package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	retrieveTopK int
	retrieveJSON bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Find the transcript passages closest to a query",
	Long: `Embeds the query and returns the most similar transcript chunks, each
joined to the video it came from, highest score first.`,
	Args:        cobra.ExactArgs(1),
	Annotations: needsAI,
	RunE:        runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveTopK, "top-k", "k", 3, "number of passages to return")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output passages as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

type passageJSON struct {
	ChunkID  string  `json:"chunk_id"`
	VideoID  string  `json:"video_id"`
	Filename string  `json:"filename"`
	Title    string  `json:"title"`
	Score    float64 `json:"score"`
	Text     string  `json:"text"`
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errNotConfigured("retrieval")
	}

	results, err := retrievalService.Retrieve(cmd.Context(), args[0], retrieveTopK)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if retrieveJSON {
		passages := make([]passageJSON, len(results))
		for i := range results {
			passages[i] = passageJSON{
				ChunkID:  results[i].Chunk.ID,
				VideoID:  results[i].Video.ID,
				Filename: results[i].Video.Filename,
				Title:    results[i].Video.Title,
				Score:    results[i].Score,
				Text:     results[i].Chunk.Text,
			}
		}
		return printJSON(cmd, passages)
	}

	if len(results) == 0 {
		cmd.Println("No passages found.")
		return nil
	}

	for i := range results {
		r := &results[i]
		cmd.Printf("[%d] %s %s\n", i+1,
			out.Heading.Render(r.Video.Filename),
			out.Muted.Render(fmt.Sprintf("(%.3f, %s)", r.Score, r.Chunk.ID)))
		cmd.Printf("    %s\n\n", strings.ReplaceAll(r.Chunk.Text, "\n", "\n    "))
	}
	return nil
}
