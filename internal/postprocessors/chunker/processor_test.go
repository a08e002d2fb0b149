package chunker

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
)

func tokenStrings(text string) []string {
	var out []string
	for _, tok := range (RegexTokenizer{}).Tokenize(text) {
		out = append(out, text[tok.Start:tok.End])
	}
	return out
}

// transcript builds a multi-paragraph text with sentences of varying length.
func transcript(paragraphs int) string {
	var b strings.Builder
	for p := 0; p < paragraphs; p++ {
		if p > 0 {
			b.WriteString("\n\n")
		}
		for s := 0; s < 3+p%4; s++ {
			if s > 0 {
				b.WriteString(" ")
			}
			words := 5 + (p*7+s*3)%20
			for w := 0; w < words; w++ {
				if w > 0 {
					b.WriteString(" ")
				}
				fmt.Fprintf(&b, "word%d_%d_%d", p, s, w)
			}
			b.WriteString(".")
		}
	}
	return b.String()
}

func assertChunkInvariants(t *testing.T, text string, chunks []domain.TextChunk, maxTokens, overlap int) {
	t.Helper()

	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
		if c.TokenCount > maxTokens {
			t.Errorf("chunk %d has %d tokens, max %d", i, c.TokenCount, maxTokens)
		}
		if got := len(tokenStrings(c.Text)); got != c.TokenCount {
			t.Errorf("chunk %d recounts to %d tokens, reported %d", i, got, c.TokenCount)
		}
		if !strings.Contains(text, c.Text) {
			t.Errorf("chunk %d is not a substring of the source", i)
		}
	}

	for i := 1; i < len(chunks); i++ {
		prev := tokenStrings(chunks[i-1].Text)
		next := tokenStrings(chunks[i].Text)
		if !reflect.DeepEqual(prev[len(prev)-overlap:], next[:overlap]) {
			t.Errorf("chunks %d and %d do not share exactly %d tokens", i-1, i, overlap)
		}
	}

	all := tokenStrings(text)
	first := tokenStrings(chunks[0].Text)
	last := tokenStrings(chunks[len(chunks)-1].Text)
	if first[0] != all[0] || last[len(last)-1] != all[len(all)-1] {
		t.Error("chunks do not cover the whole text")
	}

	total := chunks[0].TokenCount
	for _, c := range chunks[1:] {
		total += c.TokenCount - overlap
	}
	if total != len(all) {
		t.Errorf("chunks cover %d tokens, text has %d", total, len(all))
	}
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p, err := New()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.MaxTokens() != DefaultMaxTokens {
			t.Errorf("expected maxTokens %d, got %d", DefaultMaxTokens, p.MaxTokens())
		}
		if p.OverlapTokens() != DefaultOverlapTokens {
			t.Errorf("expected overlap %d, got %d", DefaultOverlapTokens, p.OverlapTokens())
		}
	})

	t.Run("custom values", func(t *testing.T) {
		p, err := New(WithMaxTokens(50), WithOverlapTokens(0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.MaxTokens() != 50 || p.OverlapTokens() != 0 {
			t.Errorf("unexpected config %d/%d", p.MaxTokens(), p.OverlapTokens())
		}
	})

	invalid := []struct {
		name    string
		max     int
		overlap int
	}{
		{"zero max", 0, 0},
		{"negative max", -5, 0},
		{"negative overlap", 10, -1},
		{"overlap equals max", 10, 10},
		{"overlap exceeds max", 10, 15},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(WithMaxTokens(tt.max), WithOverlapTokens(tt.overlap))
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestProcessor_Name(t *testing.T) {
	p, _ := New()
	if p.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", p.Name())
	}
}

func TestSplit_EmptyText(t *testing.T) {
	p, _ := New()
	for _, text := range []string{"", "   \n\n  "} {
		chunks, err := p.Split(text)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(chunks) != 0 {
			t.Errorf("expected 0 chunks, got %d", len(chunks))
		}
	}
}

func TestSplit_SmallText(t *testing.T) {
	p, _ := New(WithMaxTokens(100), WithOverlapTokens(20))

	chunks, err := p.Split("Hello world.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "Hello world." {
		t.Errorf("unexpected text %q", chunks[0].Text)
	}
	if chunks[0].TokenCount != 3 {
		t.Errorf("expected 3 tokens, got %d", chunks[0].TokenCount)
	}
}

func TestSplit_PrefersParagraphBoundaries(t *testing.T) {
	p, _ := New(WithMaxTokens(10), WithOverlapTokens(2))

	chunks, err := p.Split("a b c d e.\n\nf g h i j.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "a b c d e." {
		t.Errorf("first chunk should end at the paragraph, got %q", chunks[0].Text)
	}
	if chunks[1].Text != "e.\n\nf g h i j." {
		t.Errorf("second chunk should start with the overlap, got %q", chunks[1].Text)
	}
	if chunks[1].TokenCount != 8 {
		t.Errorf("expected 8 tokens, got %d", chunks[1].TokenCount)
	}
}

func TestSplit_PrefersSentenceBoundaries(t *testing.T) {
	p, _ := New(WithMaxTokens(8), WithOverlapTokens(1))

	text := "One two three. Four five six. Seven eight nine."
	chunks, err := p.Split(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks[0].Text != "One two three. Four five six." {
		t.Errorf("first chunk should end at a sentence, got %q", chunks[0].Text)
	}
	assertChunkInvariants(t, text, chunks, 8, 1)
}

func TestSplit_LongSentenceCutAtCeiling(t *testing.T) {
	p, _ := New(WithMaxTokens(10), WithOverlapTokens(3))

	words := make([]string, 25)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	text := strings.Join(words, " ")

	chunks, err := p.Split(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks[0].TokenCount != 10 {
		t.Errorf("expected first chunk at the ceiling, got %d tokens", chunks[0].TokenCount)
	}
	assertChunkInvariants(t, text, chunks, 10, 3)
}

func TestSplit_ShortLeadingUnitStillCarriesOverlap(t *testing.T) {
	p, _ := New(WithMaxTokens(10), WithOverlapTokens(4))

	// The first paragraph is shorter than the overlap.
	text := "Hi.\n\nalpha beta gamma delta epsilon zeta eta theta iota kappa lambda mu."
	chunks, err := p.Split(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertChunkInvariants(t, text, chunks, 10, 4)
}

func TestSplit_Invariants(t *testing.T) {
	configs := []struct{ max, overlap int }{
		{400, 100},
		{50, 10},
		{20, 0},
		{12, 11},
		{7, 3},
	}
	text := transcript(30)

	for _, cfg := range configs {
		t.Run(fmt.Sprintf("max=%d overlap=%d", cfg.max, cfg.overlap), func(t *testing.T) {
			p, err := New(WithMaxTokens(cfg.max), WithOverlapTokens(cfg.overlap))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			chunks, err := p.Split(text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertChunkInvariants(t, text, chunks, cfg.max, cfg.overlap)
		})
	}
}

func TestSplit_Deterministic(t *testing.T) {
	p, _ := New(WithMaxTokens(30), WithOverlapTokens(5))
	text := transcript(10)

	first, _ := p.Split(text)
	second, _ := p.Split(text)

	if !reflect.DeepEqual(first, second) {
		t.Error("identical input produced different chunks")
	}
}

type charTokenizer struct{}

func (charTokenizer) Tokenize(text string) []Token {
	var tokens []Token
	for i, r := range text {
		if r != ' ' {
			tokens = append(tokens, Token{Start: i, End: i + 1})
		}
	}
	return tokens
}

func TestSplit_CustomTokenizer(t *testing.T) {
	p, _ := New(WithMaxTokens(4), WithOverlapTokens(1), WithTokenizer(charTokenizer{}))

	if got := p.CountTokens("ab cd"); got != 4 {
		t.Errorf("expected 4 tokens, got %d", got)
	}

	chunks, err := p.Split("abcdefg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"abcd", "defg"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i, c := range chunks {
		if c.Text != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], c.Text)
		}
	}
}

type brokenTokenizer struct{}

func (brokenTokenizer) Tokenize(string) []Token {
	return []Token{{Start: 3, End: 2}}
}

func TestSplit_InvalidTokenizerOutput(t *testing.T) {
	p, _ := New(WithTokenizer(brokenTokenizer{}))

	if _, err := p.Split("abcdef"); err == nil {
		t.Error("expected error for invalid token spans")
	}
}

func TestProcessor_Process(t *testing.T) {
	p, _ := New(WithMaxTokens(10), WithOverlapTokens(2))
	doc := &domain.NormalizedDocument{Text: "a b c d e.\n\nf g h i j."}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Errorf("expected 2 chunks, got %d", len(chunks))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Process(ctx, doc, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRegexTokenizer(t *testing.T) {
	got := tokenStrings("Don't stop, it's 3.5 GHz!")
	want := []string{"Don't", "stop", ",", "it's", "3", ".", "5", "GHz", "!"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
