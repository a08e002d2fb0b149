// Package summarise implements LLMService.Summarise once for every provider.
package summarise

import (
	"context"
	"fmt"
	"strings"

	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
)

// Template is used for untitled content when prompts has no summarise
// prompt. It takes the word limit then the content.
const Template = `Summarise the following content in %d words or less.
Be concise and capture the key points.

Content:
%s

Summary:`

// VideoTemplate is used for titled content when prompts has no video_summary
// prompt. It takes the title then the transcript.
const VideoTemplate = `You write YouTube video descriptions.
Describe the following video in 1-3 engaging, informative sentences.
Return ONLY the description.

Video title: %s

Transcript:
%s`

// Generator is the part of an LLM client Summarise needs.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error)
}

// Summarise fills the summary template and trims the model's reply. With a
// title the video_summary prompt is used, otherwise the summarise prompt.
// prompts may be nil.
func Summarise(ctx context.Context, gen Generator, prompts driven.PromptStore, title, content string, maxWords int) (string, error) {
	var prompt string
	if title != "" {
		prompt = fmt.Sprintf(load(prompts, driven.PromptVideoSummary, VideoTemplate), title, content)
	} else {
		prompt = fmt.Sprintf(load(prompts, driven.PromptSummarise, Template), maxWords, content)
	}

	reply, err := gen.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   maxWords * 2,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("summarise: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

func load(prompts driven.PromptStore, name, fallback string) string {
	if prompts == nil {
		return fallback
	}
	if custom, err := prompts.Load(name); err == nil {
		return custom
	}
	return fallback
}
