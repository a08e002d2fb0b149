package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormaliseKeywords(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"comma separated", "Python, Data Engineering, api", []string{"python", "data engineering", "api"}},
		{"bullets", "- go\n* rust\n• zig", []string{"go", "rust", "zig"}},
		{"numbered", "1. sql\n2) joins", []string{"sql", "joins"}},
		{"duplicates keep first", "SQL, sql, joins, Sql", []string{"sql", "joins"}},
		{"blank entries", " , ,\n\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormaliseKeywords(tt.raw))
		})
	}
}

const metadataText = "Databases store rows. Indexes make database queries fast. " +
	"A database index is a sorted structure. Queries without an index scan every row."

func TestMetadataGenerator_Extractive(t *testing.T) {
	gen := NewMetadataGenerator(nil, nil)
	assert.False(t, gen.UsesLLM())

	summary, keywords, err := gen.Generate(context.Background(), "Indexes", metadataText)
	require.NoError(t, err)
	assert.NotEmpty(t, summary)
	assert.NotEmpty(t, keywords)
	assert.Contains(t, keywords, "index")
}

func TestMetadataGenerator_LLM(t *testing.T) {
	llm := &mockLLM{generated: map[string]string{
		"SUMMARY":  "\nHow indexes speed up queries.\n",
		"KEYWORDS": "Indexes, B-Tree, Query Planning",
	}}
	gen := NewMetadataGenerator(llm, testPrompts())
	assert.True(t, gen.UsesLLM())

	summary, keywords, err := gen.Generate(context.Background(), "Indexes", metadataText)
	require.NoError(t, err)
	assert.Equal(t, "How indexes speed up queries.", summary)
	assert.Equal(t, []string{"indexes", "b-tree", "query planning"}, keywords)

	assert.Equal(t, []string{"Indexes\n" + metadataText}, llm.summaries)
	assert.Equal(t, []string{"KEYWORDS Indexes\n" + metadataText}, llm.prompts)
}

func TestMetadataGenerator_SummaryWithoutPromptStore(t *testing.T) {
	llm := &mockLLM{generated: map[string]string{"SUMMARY": "How indexes speed up queries."}}
	gen := NewMetadataGenerator(llm, nil)
	assert.True(t, gen.UsesLLM())

	summary, keywords, err := gen.Generate(context.Background(), "Indexes", metadataText)
	require.NoError(t, err)
	assert.Equal(t, "How indexes speed up queries.", summary)
	assert.Contains(t, keywords, "index")
	assert.Empty(t, llm.prompts)
}

func TestMetadataGenerator_LLMFailureFallsBack(t *testing.T) {
	llm := &mockLLM{genErr: errors.New("quota")}
	gen := NewMetadataGenerator(llm, testPrompts())

	summary, keywords, err := gen.Generate(context.Background(), "Indexes", metadataText)
	require.NoError(t, err)
	assert.NotEmpty(t, summary)
	assert.NotEmpty(t, keywords)
}

func TestMetadataGenerator_MissingPromptFallsBack(t *testing.T) {
	llm := &mockLLM{}
	gen := NewMetadataGenerator(llm, mockPrompts{})

	summary, keywords, err := gen.Generate(context.Background(), "Indexes", metadataText)
	require.NoError(t, err)
	assert.NotEmpty(t, summary)
	assert.NotEmpty(t, keywords)
	assert.Len(t, llm.summaries, 1)
	assert.Empty(t, llm.prompts)
}

func TestMetadataGenerator_CancelledContext(t *testing.T) {
	llm := &mockLLM{genErr: context.Canceled}
	gen := NewMetadataGenerator(llm, testPrompts())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := gen.Generate(ctx, "Indexes", metadataText)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héllo", truncateRunes("héllo", 10))
	assert.Equal(t, "hé", truncateRunes("héllo", 2))
}
