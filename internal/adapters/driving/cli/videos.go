package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
)

var (
	videosJSON      bool
	videoShowChunks bool
)

var videosCmd = &cobra.Command{
	Use:   "videos",
	Short: "List ingested videos",
	Long:  `Lists every ingested video with its title, summary and counts.`,
	Args:  cobra.NoArgs,
	RunE:  runVideosList,
}

var videosGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one video",
	Long:  `Shows a video's metadata and keywords, and optionally its chunks.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runVideosGet,
}

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "List keywords across all videos",
	Args:  cobra.NoArgs,
	RunE:  runKeywords,
}

func init() {
	videosCmd.Flags().BoolVar(&videosJSON, "json", false, "output videos as JSON")
	videosGetCmd.Flags().BoolVar(&videoShowChunks, "chunks", false, "print the video's chunks")
	videosCmd.AddCommand(videosGetCmd)
	rootCmd.AddCommand(videosCmd)
	rootCmd.AddCommand(keywordsCmd)
}

func runVideosList(cmd *cobra.Command, _ []string) error {
	if videoService == nil {
		return errNotConfigured("video")
	}

	videos, err := videoService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list videos: %w", err)
	}

	if videosJSON {
		return printJSON(cmd, videos)
	}

	if len(videos) == 0 {
		cmd.Println("No videos ingested. Run 'ragtube ingest <dir>' to add some.")
		return nil
	}

	cmd.Println(out.Title.Render(fmt.Sprintf("Videos (%d)", len(videos))))
	cmd.Println()
	for i := range videos {
		v := &videos[i]
		cmd.Printf("  %s  %s\n", out.Heading.Render(v.Title), out.Muted.Render(v.Filename))
		cmd.Printf("      %s\n", out.Muted.Render(fmt.Sprintf("id %s  %d chunks  %d keywords", v.ID, v.ChunkCount, v.KeywordCount)))
		if v.Summary != "" {
			cmd.Printf("      %s\n", v.Summary)
		}
		cmd.Println()
	}
	return nil
}

func runVideosGet(cmd *cobra.Command, args []string) error {
	if videoService == nil {
		return errNotConfigured("video")
	}

	ctx := cmd.Context()
	video, err := videoService.Get(ctx, args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("video %q not found", args[0])
		}
		return fmt.Errorf("failed to get video: %w", err)
	}

	cmd.Println(out.Title.Render(video.Title))
	cmd.Printf("  ID:       %s\n", video.ID)
	cmd.Printf("  File:     %s\n", video.Filename)
	cmd.Printf("  Chunks:   %d\n", video.ChunkCount)
	cmd.Printf("  Ingested: %s\n", video.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Keywords: %s\n", strings.Join(video.Keywords, ", "))
	cmd.Println()
	cmd.Println(video.Summary)

	if !videoShowChunks {
		return nil
	}

	chunks, err := videoService.Chunks(ctx, video.ID)
	if err != nil {
		return fmt.Errorf("failed to get chunks: %w", err)
	}
	for i := range chunks {
		cmd.Println()
		cmd.Println(out.Heading.Render(fmt.Sprintf("[%d] %s", chunks[i].Index, chunks[i].ID)) +
			out.Muted.Render(fmt.Sprintf(" (%d tokens)", chunks[i].TokenCount)))
		cmd.Println(chunks[i].Text)
	}
	return nil
}

func runKeywords(cmd *cobra.Command, _ []string) error {
	if videoService == nil {
		return errNotConfigured("video")
	}

	keywords, err := videoService.Keywords(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list keywords: %w", err)
	}

	if len(keywords) == 0 {
		cmd.Println("No keywords found.")
		return nil
	}

	for _, kw := range keywords {
		cmd.Printf("  %4d  %s\n", kw.Count, kw.Keyword)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
