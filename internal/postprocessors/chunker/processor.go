// Package chunker provides a token-aware text chunking processor.
//
// Chunks never exceed the maximum token count, and every chunk after the
// first begins exactly the overlap count of tokens before the end of the
// previous one. Within those bounds, chunk ends prefer paragraph and then
// sentence boundaries.
package chunker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultMaxTokens is the default maximum number of tokens per chunk.
const DefaultMaxTokens = 400

// DefaultOverlapTokens is the default number of tokens shared by consecutive chunks.
const DefaultOverlapTokens = 100

// Processor splits document text into overlapping token windows.
// It implements the PostProcessor interface and is safe for concurrent use.
type Processor struct {
	maxTokens     int
	overlapTokens int
	tokenizer     Tokenizer
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxTokens sets the hard ceiling of tokens per chunk.
func WithMaxTokens(n int) Option {
	return func(p *Processor) {
		p.maxTokens = n
	}
}

// WithOverlapTokens sets the number of tokens repeated at the start of
// each chunk after the first.
func WithOverlapTokens(n int) Option {
	return func(p *Processor) {
		p.overlapTokens = n
	}
}

// WithTokenizer replaces the default word and punctuation tokenizer.
func WithTokenizer(t Tokenizer) Option {
	return func(p *Processor) {
		if t != nil {
			p.tokenizer = t
		}
	}
}

// New creates a new chunker processor with the given options.
// It returns domain.ErrValidation unless maxTokens > 0 and
// 0 <= overlapTokens < maxTokens.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		maxTokens:     DefaultMaxTokens,
		overlapTokens: DefaultOverlapTokens,
		tokenizer:     RegexTokenizer{},
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.maxTokens <= 0 {
		return nil, fmt.Errorf("%w: max tokens must be positive, got %d", domain.ErrValidation, p.maxTokens)
	}
	if p.overlapTokens < 0 || p.overlapTokens >= p.maxTokens {
		return nil, fmt.Errorf("%w: overlap tokens must be in [0, %d), got %d",
			domain.ErrValidation, p.maxTokens, p.overlapTokens)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// MaxTokens returns the chunk size ceiling.
func (p *Processor) MaxTokens() int {
	return p.maxTokens
}

// OverlapTokens returns the overlap between consecutive chunks.
func (p *Processor) OverlapTokens() int {
	return p.overlapTokens
}

// CountTokens returns the number of tokens in text.
func (p *Processor) CountTokens(text string) int {
	return len(p.tokenizer.Tokenize(text))
}

// Process splits the document text into chunks.
// Input chunks are ignored; this processor creates new chunks from document text.
func (p *Processor) Process(ctx context.Context, doc *domain.NormalizedDocument, _ []domain.TextChunk) ([]domain.TextChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.Split(doc.Text)
}

// Split cuts text into chunks. Empty text produces no chunks.
func (p *Processor) Split(text string) ([]domain.TextChunk, error) {
	tokens := p.tokenizer.Tokenize(text)
	if len(tokens) == 0 {
		return nil, nil
	}
	if err := checkTokens(tokens, len(text)); err != nil {
		return nil, err
	}

	bounds := p.unitBounds(text, tokens)
	n := len(tokens)

	var chunks []domain.TextChunk
	start, end := 0, 0
	for {
		cur := end
		for {
			i := sort.SearchInts(bounds, cur+1)
			if i == len(bounds) || bounds[i]-start > p.maxTokens {
				break
			}
			cur = bounds[i]
		}
		// Nothing fitted after the carried overlap, or the chunk is too short
		// to carry a full overlap into the next one: fill to the ceiling.
		if cur == end || (cur < n && cur-start < p.overlapTokens) {
			cur = min(start+p.maxTokens, n)
		}

		chunks = append(chunks, domain.TextChunk{
			Text:       text[tokens[start].Start:tokens[cur-1].End],
			Index:      len(chunks),
			TokenCount: cur - start,
		})

		if cur == n {
			return chunks, nil
		}
		end = cur
		start = cur - p.overlapTokens
	}
}

// unitBounds returns the ascending token indices at which structural units
// end. Paragraphs are units when they fit; otherwise their sentences are,
// and sentences that still do not fit are cut every maxTokens tokens.
// The last bound is always len(tokens).
func (p *Processor) unitBounds(text string, tokens []Token) []int {
	var bounds []int
	for _, para := range splitAt(tokens, func(i int) bool { return paragraphBreakAfter(text, tokens, i) }, 0, len(tokens)) {
		if para[1]-para[0] <= p.maxTokens {
			bounds = append(bounds, para[1])
			continue
		}
		for _, sent := range splitAt(tokens, func(i int) bool { return sentenceBreakAfter(text, tokens, i) }, para[0], para[1]) {
			for cut := sent[0] + p.maxTokens; cut < sent[1]; cut += p.maxTokens {
				bounds = append(bounds, cut)
			}
			bounds = append(bounds, sent[1])
		}
	}
	return bounds
}

// splitAt partitions the token range [from, to) after every index for which
// breakAfter is true.
func splitAt(tokens []Token, breakAfter func(i int) bool, from, to int) [][2]int {
	var ranges [][2]int
	start := from
	for i := from; i < to-1; i++ {
		if breakAfter(i) {
			ranges = append(ranges, [2]int{start, i + 1})
			start = i + 1
		}
	}
	return append(ranges, [2]int{start, to})
}

func paragraphBreakAfter(text string, tokens []Token, i int) bool {
	return strings.Count(text[tokens[i].End:tokens[i+1].Start], "\n") >= 2
}

func sentenceBreakAfter(text string, tokens []Token, i int) bool {
	switch text[tokens[i].Start:tokens[i].End] {
	case ".", "!", "?":
		return tokens[i+1].Start > tokens[i].End
	default:
		return false
	}
}

func checkTokens(tokens []Token, size int) error {
	prev := 0
	for _, t := range tokens {
		if t.Start < prev || t.End <= t.Start || t.End > size {
			return fmt.Errorf("tokenizer returned invalid span [%d,%d)", t.Start, t.End)
		}
		prev = t.End
	}
	return nil
}
