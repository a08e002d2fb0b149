package transcript

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
	"github.com/ragtube/ragtube-cli/internal/fingerprint"
)

func TestNormaliser_SupportedExtensions(t *testing.T) {
	n := New()
	assert.ElementsMatch(t, []string{".md", ".txt", ".srt", ".vtt"}, n.SupportedExtensions())
}

func TestNormalise(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bracket timestamps",
			input:    "[00:00:01] Hello world.\n[00:00:05] Second line.",
			expected: "Hello world.\nSecond line.",
		},
		{
			name:     "numbered speaker label",
			input:    "**Kokchun Giang-1:** Welcome to the course.",
			expected: "Welcome to the course.",
		},
		{
			name:     "plain numbered speaker label",
			input:    "Jane Doe-2: Hello there.",
			expected: "Hello there.",
		},
		{
			name:     "colon prefixed prose kept",
			input:    "Note: the index is rebuilt nightly.\nPython: version three is required.\nStep One: install the package.",
			expected: "Note: the index is rebuilt nightly.\nPython: version three is required.\nStep One: install the package.",
		},
		{
			name:     "strikethrough",
			input:    "Keep ~~drop this~~ text.",
			expected: "Keep text.",
		},
		{
			name:     "fillers and leading conjunctions",
			input:    "Um, so we basically start here. And then we move on.",
			expected: "start here. then we move on.",
		},
		{
			name:     "so that is preserved",
			input:    "So that is why.\nSo we go.",
			expected: "So that is why.\nwe go.",
		},
		{
			name: "srt cues",
			input: "1\n00:00:01,000 --> 00:00:04,000\nHello there.\n\n" +
				"2\n00:00:04,500 --> 00:00:06,000\nUh, general Kenobi.\n",
			expected: "Hello there.\n\ngeneral Kenobi.",
		},
		{
			name:     "markdown structure",
			input:    "# My Talk\n\nSome **bold** and [a link](http://x) here.\n\n- item one\n- item two",
			expected: "My Talk\n\nSome bold and a link here.\n\nitem one\nitem two",
		},
		{
			name:     "paragraph breaks collapse to one blank line",
			input:    "First para.\n\n\n\nSecond   para.",
			expected: "First para.\n\nSecond para.",
		},
		{
			name:     "punctuation repair",
			input:    "Wait.. what?? Yes , really !",
			expected: "Wait. what? Yes, really!",
		},
		{
			name:     "whitespace only",
			input:    "  \n\t ",
			expected: "",
		},
		{
			name:     "only timestamps",
			input:    "[00:00:01]\n[00:00:02]",
			expected: "",
		},
	}

	n := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Normalise(tt.input))
		})
	}
}

func TestNormalise_Deterministic(t *testing.T) {
	n := New()
	input := "[00:01:02] **Host-2:** Um, so you know, this is it.\n\nAnd more."
	assert.Equal(t, n.Normalise(input), n.Normalise(input))
}

func TestNormaliseDocument(t *testing.T) {
	n := New()

	t.Run("hashes normalised text", func(t *testing.T) {
		doc := domain.SourceDocument{
			Filename: "go_basics.md",
			Raw:      "# Go Basics\n\n[00:00:01] Variables are declared with var.",
		}

		result, err := n.NormaliseDocument(context.Background(), doc)
		require.NoError(t, err)

		assert.Equal(t, "Go Basics\n\nVariables are declared with var.", result.Text)
		assert.Equal(t, fingerprint.Hash(result.Text), result.ContentHash)
		assert.Equal(t, "Go Basics", result.Source.Title)
		assert.Equal(t, "go_basics.md", result.Source.Filename)
	})

	t.Run("keeps explicit title", func(t *testing.T) {
		doc := domain.SourceDocument{Filename: "a.txt", Title: "Given", Raw: "Body."}

		result, err := n.NormaliseDocument(context.Background(), doc)
		require.NoError(t, err)
		assert.Equal(t, "Given", result.Source.Title)
	})

	t.Run("timestamps do not change the hash", func(t *testing.T) {
		a, err := n.NormaliseDocument(context.Background(), domain.SourceDocument{
			Filename: "a.md", Raw: "[00:00:01] Same words here.",
		})
		require.NoError(t, err)
		b, err := n.NormaliseDocument(context.Background(), domain.SourceDocument{
			Filename: "b.md", Raw: "[00:09:59]   same words   here.",
		})
		require.NoError(t, err)
		assert.Equal(t, a.ContentHash, b.ContentHash)
	})

	t.Run("empty document is rejected", func(t *testing.T) {
		_, err := n.NormaliseDocument(context.Background(), domain.SourceDocument{
			Filename: "empty.md", Raw: "\n\n  ",
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestExtractTitle(t *testing.T) {
	assert.Equal(t, "Intro", ExtractTitle("text\n# Intro\nmore", "x.md"))
	assert.Equal(t, "intro to go", ExtractTitle("no heading", "intro_to-go.md"))
	assert.Equal(t, "talk", ExtractTitle("## Sub only", "talk.srt"))
}
