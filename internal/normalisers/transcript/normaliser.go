// Package transcript normalises raw video transcripts into clean prose.
//
// Transcripts arrive as Markdown exports, plain text or subtitle files
// (SRT/VTT). Normalisation strips timing artefacts, speaker labels, markup
// and spoken disfluencies while keeping paragraph structure, so the same
// talk always yields the same text regardless of the export format.
package transcript

import (
	"context"
	"regexp"
	"strings"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
	"github.com/ragtube/ragtube-cli/internal/fingerprint"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var (
	// Timing artefacts.
	bracketTimestamp = regexp.MustCompile(`\[\d{1,2}:\d{2}(?::\d{2})?(?:[.,]\d+)?\]`)
	parenTimestamp   = regexp.MustCompile(`\(\d{1,2}:\d{2}(?::\d{2})?\)`)
	lineTimestamp    = regexp.MustCompile(`(?m)^[ \t]*\d{1,2}:\d{2}(?::\d{2})?[ \t]+`)
	cueTiming        = regexp.MustCompile(`(?m)^[ \t]*(?:\d{1,2}:)?\d{2}:\d{2}[.,]\d{3}[ \t]*-->[ \t]*(?:\d{1,2}:)?\d{2}:\d{2}[.,]\d{3}.*$`)
	cueIndex         = regexp.MustCompile(`(?m)^[ \t]*\d+[ \t]*$`)
	vttHeader        = regexp.MustCompile(`(?m)^[ \t]*WEBVTT.*$`)

	strikethrough = regexp.MustCompile(`~~.*?~~`)

	// Speaker labels: "**Jane Doe-3:**", "**Host:**" and "Jane Doe-3: ..." at line
	// start. An unnumbered "Note:" is prose, not a label.
	numberedSpeaker = regexp.MustCompile(`\*\*[^*\n]{1,60}?-\d+:\*\*[ \t]*`)
	boldSpeaker     = regexp.MustCompile(`(?m)^[ \t]*\*\*[^*\n]{1,60}?:\*\*[ \t]*`)
	plainSpeaker    = regexp.MustCompile(`(?m)^[ \t]*[A-Z][A-Za-z'-]*(?:[ \t]+[A-Z][A-Za-z'-]*){0,2}-\d+:[ \t]+`)

	// Markdown structure.
	codeBlock    = regexp.MustCompile("(?s)```[^`]*```")
	inlineCode   = regexp.MustCompile("`[^`]+`")
	images       = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings     = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]+`)
	blockquote   = regexp.MustCompile(`(?m)^[ \t]*>[ \t]?`)
	hr           = regexp.MustCompile(`(?m)^[ \t]*[-*_]{3,}[ \t]*$`)
	listMarkers  = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	numberedList = regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]+`)
	htmlTags     = regexp.MustCompile(`<[^>\n]+>`)

	// Disfluencies.
	hesitations    = regexp.MustCompile(`(?i)\b(?:um+|uh+|erm+|hmm+)\b`)
	verbalFillers  = regexp.MustCompile(`(?i)\b(?:basically|actually|sort of|kind of|you know|i mean|et cetera)\b`)
	conversational = regexp.MustCompile(`(?i)\b(?:so|and|then|now)[ \t]+(?:you|we|i)[ \t]+(?:basically|actually|just|sort of|kind of)\b[ \t]*`)
	soParagraph    = regexp.MustCompile(`(?im)^[ \t]*so\b([ \t]+(?:that|as)\b)?,?[ \t]*`)
	andParagraph   = regexp.MustCompile(`(?im)^[ \t]*and\b,?[ \t]*`)
	soSentence     = regexp.MustCompile(`(?i)([.!?])[ \t]+so\b([ \t]+(?:that|as)\b)?,?`)
	andSentence    = regexp.MustCompile(`(?i)([.!?])[ \t]+and\b,?[ \t]*`)

	// Punctuation repair.
	repeatedPunct = []*regexp.Regexp{
		regexp.MustCompile(`\.(?:[ \t]*\.)+`),
		regexp.MustCompile(`,(?:[ \t]*,)+`),
		regexp.MustCompile(`!(?:[ \t]*!)+`),
		regexp.MustCompile(`\?(?:[ \t]*\?)+`),
	}
	dotComma        = regexp.MustCompile(`\.[ \t]*,[ \t]*`)
	commaDot        = regexp.MustCompile(`,[ \t]*\.[ \t]*`)
	spaceBeforePunc = regexp.MustCompile(`[ \t]+([,.!?;:])`)
	leadingPunct    = regexp.MustCompile(`(?m)^[ \t]*[.,?!;:]+[ \t]*`)

	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	paragraphBreak  = regexp.MustCompile(`\n[ \t]*\n`)
)

// Normaliser cleans transcripts. It holds no state and is safe for
// concurrent use.
type Normaliser struct{}

// New creates a new transcript normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".md", ".txt", ".srt", ".vtt"}
}

// NormaliseDocument cleans a source document and fingerprints the result.
// Documents with no remaining text are rejected with domain.ErrValidation.
func (n *Normaliser) NormaliseDocument(_ context.Context, doc domain.SourceDocument) (*domain.NormalizedDocument, error) {
	if doc.Title == "" {
		doc.Title = ExtractTitle(doc.Raw, doc.Filename)
	}

	text := n.Normalise(doc.Raw)
	if text == "" {
		return nil, domain.ErrValidation
	}

	return &domain.NormalizedDocument{
		Source:      doc,
		Text:        text,
		ContentHash: fingerprint.Hash(text),
	}, nil
}

// Normalise returns the cleaned form of raw. Whitespace-only input yields "".
func (n *Normaliser) Normalise(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	text = stripTiming(text)
	text = strikethrough.ReplaceAllString(text, " ")
	text = stripSpeakers(text)
	text = stripMarkdown(text)
	text = stripFillers(text)
	text = repairPunctuation(text)

	return joinParagraphs(text)
}

// ExtractTitle returns the first "# " heading of content, or the filename
// stem with separators turned into spaces.
func ExtractTitle(content, filename string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}

	stem := domain.SourceDocument{Filename: filename}.Stem()
	stem = strings.ReplaceAll(stem, "_", " ")
	stem = strings.ReplaceAll(stem, "-", " ")
	return strings.TrimSpace(stem)
}

func stripTiming(text string) string {
	if cueTiming.MatchString(text) {
		// Subtitle file: cue numbers only mean something next to cue timings.
		text = cueTiming.ReplaceAllString(text, "")
		text = cueIndex.ReplaceAllString(text, "")
		text = vttHeader.ReplaceAllString(text, "")
	}
	text = bracketTimestamp.ReplaceAllString(text, " ")
	text = parenTimestamp.ReplaceAllString(text, " ")
	return lineTimestamp.ReplaceAllString(text, "")
}

func stripSpeakers(text string) string {
	text = numberedSpeaker.ReplaceAllString(text, "")
	text = boldSpeaker.ReplaceAllString(text, "")
	return plainSpeaker.ReplaceAllString(text, "")
}

// stripMarkdown removes common markdown formatting for plain text content.
func stripMarkdown(content string) string {
	content = codeBlock.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "")
	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")
	content = hr.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "")
	content = numberedList.ReplaceAllString(content, "")

	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "__", "")
	content = strings.ReplaceAll(content, "*", "")

	content = blockquote.ReplaceAllString(content, "")
	return htmlTags.ReplaceAllString(content, "")
}

func stripFillers(text string) string {
	text = conversational.ReplaceAllString(text, "")
	text = hesitations.ReplaceAllString(text, "")
	text = verbalFillers.ReplaceAllString(text, "")
	text = repairPunctuation(text)

	text = replaceSubmatchFunc(soParagraph, text, func(m []string) string {
		if m[1] != "" {
			return m[0]
		}
		return ""
	})
	text = andParagraph.ReplaceAllString(text, "")

	text = replaceSubmatchFunc(soSentence, text, func(m []string) string {
		if m[2] != "" {
			return m[0]
		}
		return m[1] + " "
	})
	return andSentence.ReplaceAllString(text, "$1 ")
}

func repairPunctuation(text string) string {
	for _, re := range repeatedPunct {
		text = re.ReplaceAllStringFunc(text, func(m string) string { return m[:1] })
	}
	text = spaceBeforePunc.ReplaceAllString(text, "$1")
	text = dotComma.ReplaceAllString(text, ". ")
	text = commaDot.ReplaceAllString(text, ". ")
	for _, re := range repeatedPunct {
		text = re.ReplaceAllStringFunc(text, func(m string) string { return m[:1] })
	}
	return leadingPunct.ReplaceAllString(text, "")
}

// joinParagraphs collapses horizontal whitespace, trims every line and
// separates paragraphs with exactly one blank line.
func joinParagraphs(text string) string {
	text = horizontalSpace.ReplaceAllString(text, " ")

	var paragraphs []string
	for _, para := range paragraphBreak.Split(text, -1) {
		var lines []string
		for _, line := range strings.Split(para, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			paragraphs = append(paragraphs, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(paragraphs, "\n\n")
}

// replaceSubmatchFunc is ReplaceAllStringFunc with access to capture groups.
// Unmatched optional groups are passed as "".
func replaceSubmatchFunc(re *regexp.Regexp, text string, fn func(groups []string) string) string {
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return text
	}

	var b strings.Builder
	last := 0
	for _, loc := range matches {
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = text[loc[2*i]:loc[2*i+1]]
			}
		}
		b.WriteString(text[last:loc[0]])
		b.WriteString(fn(groups))
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String()
}
