package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceDocument_Stem(t *testing.T) {
	assert.Equal(t, "intro_to_go", SourceDocument{Filename: "intro_to_go.md"}.Stem())
	assert.Equal(t, "notes", SourceDocument{Filename: "notes"}.Stem())
	assert.Equal(t, "a.b", SourceDocument{Filename: "a.b.srt"}.Stem())
}

func TestParentVideo_Summarise(t *testing.T) {
	v := ParentVideo{
		ID:         "v1",
		Filename:   "talk.md",
		Title:      "Talk",
		Summary:    "About things.",
		Keywords:   []string{"go", "rag", "sqlite"},
		ChunkCount: 4,
	}

	s := v.Summarise()

	assert.Equal(t, VideoSummary{
		ID:           "v1",
		Filename:     "talk.md",
		Title:        "Talk",
		Summary:      "About things.",
		KeywordCount: 3,
		ChunkCount:   4,
	}, s)
}

func TestIngestReport(t *testing.T) {
	var report IngestReport
	report.Add(IngestResult{Filename: "a.md", Outcome: OutcomeIngested, Chunks: 3})
	report.Add(IngestResult{Filename: "b.md", Outcome: OutcomeSkippedDuplicate})
	report.Add(IngestResult{Filename: "c.md", Outcome: OutcomeFailed, Err: errors.New("boom")})
	report.Add(IngestResult{Filename: "d.md", Outcome: OutcomeIngested, Chunks: 1})

	assert.Equal(t, 2, report.Count(OutcomeIngested))
	assert.Equal(t, 1, report.Count(OutcomeSkippedDuplicate))
	assert.Equal(t, 0, report.Count(OutcomeRejected))

	failed := report.Failed()
	assert.Len(t, failed, 1)
	assert.Equal(t, "c.md", failed[0].Filename)
}
