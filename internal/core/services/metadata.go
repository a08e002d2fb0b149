package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
	"github.com/ragtube/ragtube-cli/internal/logger"
	"github.com/ragtube/ragtube-cli/internal/summariser"
)

const (
	// metadataMaxChars caps the transcript text sent to the LLM.
	metadataMaxChars = 32000

	summaryMaxWords          = 100
	fallbackSummarySentences = 3
	fallbackKeywordCount     = 25
)

var keywordBullet = regexp.MustCompile(`^(?:[-*•]\s+|\d+[.)]\s+)`)

// MetadataGenerator describes a video with a short summary and a keyword list.
// With an LLM it asks the model; without one, or when a call fails, it falls
// back to extractive frequency summarisation.
type MetadataGenerator struct {
	llm        driven.LLMService
	prompts    driven.PromptStore
	extractive *summariser.Frequency
}

// NewMetadataGenerator creates a generator. llm and prompts may be nil; the
// keyword prompt needs both.
func NewMetadataGenerator(llm driven.LLMService, prompts driven.PromptStore) *MetadataGenerator {
	return &MetadataGenerator{
		llm:        llm,
		prompts:    prompts,
		extractive: summariser.New(),
	}
}

// UsesLLM reports whether metadata is generated by a language model.
func (g *MetadataGenerator) UsesLLM() bool {
	return g.llm != nil
}

// Generate returns a summary and normalised keywords for a transcript.
// Only context cancellation is returned as an error; generation failures
// degrade to the extractive path.
func (g *MetadataGenerator) Generate(ctx context.Context, title, text string) (string, []string, error) {
	summary, keywords := "", []string(nil)

	if g.UsesLLM() {
		excerpt := truncateRunes(text, metadataMaxChars)

		s, err := g.llm.Summarise(ctx, title, excerpt, summaryMaxWords)
		if err != nil {
			if ctx.Err() != nil {
				return "", nil, ctx.Err()
			}
			logger.Warn("summary generation for %q failed, using extractive summary: %v", title, err)
		}
		summary = strings.TrimSpace(s)

		k, err := g.ask(ctx, driven.PromptVideoKeywords, title, excerpt, 300)
		if err != nil {
			if ctx.Err() != nil {
				return "", nil, ctx.Err()
			}
			logger.Warn("keyword generation for %q failed, using frequency keywords: %v", title, err)
		}
		keywords = NormaliseKeywords(k)
	}

	if summary == "" {
		summary = g.extractive.Summarise(text, fallbackSummarySentences)
	}
	if len(keywords) == 0 {
		keywords = g.extractive.Keywords(text, fallbackKeywordCount)
	}
	return summary, keywords, nil
}

func (g *MetadataGenerator) ask(ctx context.Context, promptName, title, text string, maxTokens int) (string, error) {
	if g.prompts == nil {
		return "", fmt.Errorf("load prompt %s: no prompt store", promptName)
	}
	tmpl, err := g.prompts.Load(promptName)
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", promptName, err)
	}
	return g.llm.Generate(ctx, fmt.Sprintf(tmpl, title, text), driven.GenerateOptions{
		MaxTokens:   maxTokens,
		Temperature: 0.3,
	})
}

// NormaliseKeywords turns a raw keyword list into lowercase tags. Entries are
// split on commas and newlines, bullet and number prefixes are removed and
// duplicates are dropped keeping the first occurrence.
func NormaliseKeywords(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n'
	})

	seen := make(map[string]bool, len(parts))
	var keywords []string
	for _, part := range parts {
		item := keywordBullet.ReplaceAllString(strings.TrimSpace(part), "")
		item = strings.ToLower(strings.TrimSpace(item))
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		keywords = append(keywords, item)
	}
	return keywords
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
