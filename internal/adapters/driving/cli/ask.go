package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
)

var (
	askHistoryFile string
	askJSON        bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the ingested transcripts",
	Long: `Retrieves the passages most relevant to the question and asks the configured
LLM to answer from them. Nothing is remembered between calls; pass earlier turns
with --history, a JSON array of {"role": "user"|"assistant", "text": "..."}.`,
	Args:        cobra.ExactArgs(1),
	Annotations: needsAI,
	RunE:        runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askHistoryFile, "history", "", "JSON file with earlier conversation turns")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errNotConfigured("query")
	}

	history, err := loadHistory(askHistoryFile)
	if err != nil {
		return err
	}

	answer, err := queryService.Query(cmd.Context(), args[0], history)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if askJSON {
		return printJSON(cmd, answer)
	}

	cmd.Println(answer.Text)
	if len(answer.CitedSources) == 0 {
		return nil
	}

	cmd.Println()
	cmd.Println(out.Heading.Render("Sources"))
	for i, src := range answer.CitedSources {
		cmd.Printf("  [%d] %s\n", i+1, src.Filename)
	}
	return nil
}

// loadHistory reads chat turns from path. An empty path means no history.
func loadHistory(path string) ([]domain.ChatTurn, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	var history []domain.ChatTurn
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("parsing history %s: %w", path, err)
	}
	return history, nil
}
