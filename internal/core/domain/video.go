package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// SourceDocument is one raw transcript file.
// It is read once per ingestion run and never modified.
type SourceDocument struct {
	// Filename is the base name of the file including its extension.
	Filename string

	// Path is the location the file was read from.
	Path string

	// Title is the human-readable title derived from the content or filename.
	Title string

	// Raw is the unmodified file content.
	Raw string
}

// Stem returns the filename without its extension.
func (d SourceDocument) Stem() string {
	return strings.TrimSuffix(d.Filename, filepath.Ext(d.Filename))
}

// NormalizedDocument is the cleaned form of a SourceDocument.
type NormalizedDocument struct {
	// Source is the document the text was derived from.
	Source SourceDocument

	// Text is the normalised prose.
	Text string

	// ContentHash is the fingerprint of Text used for deduplication.
	ContentHash string
}

// ParentVideo is the per-video metadata record (parent_videos table).
type ParentVideo struct {
	// ID is the primary key. It is derived from ContentHash so it is
	// stable across ingestion runs.
	ID string

	// Filename is the source transcript file name.
	Filename string

	// Title is the human-readable video title.
	Title string

	// Summary is a short description of the video.
	Summary string

	// Keywords are lowercase tags describing the video.
	Keywords []string

	// ContentHash is unique across all parent records.
	ContentHash string

	// ChunkCount is the number of chunks written for this video.
	ChunkCount int

	// CreatedAt is when the video was ingested.
	CreatedAt time.Time
}

// Chunk is one retrievable span of a video transcript (video_chunks table).
// VideoID is a lookup key into parent_videos, never a live reference.
type Chunk struct {
	// ID is unique across the store.
	ID string

	// VideoID is the ParentVideo.ID this chunk belongs to.
	VideoID string

	// Text is the chunk content.
	Text string

	// Index is the ordinal position within the parent video.
	Index int

	// TokenCount is the number of tokens in Text.
	TokenCount int

	// Embedding is the fixed-dimension vector for Text.
	Embedding []float32
}

// TextChunk is a chunker output before it is assigned ids and embeddings.
type TextChunk struct {
	Text       string
	Index      int
	TokenCount int
}

// VideoSummary is the listing view of a ParentVideo.
type VideoSummary struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	Title        string `json:"title"`
	Summary      string `json:"summary"`
	KeywordCount int    `json:"keyword_count"`
	ChunkCount   int    `json:"chunk_count"`
}

// Summarise returns the listing view of the video.
func (v ParentVideo) Summarise() VideoSummary {
	return VideoSummary{
		ID:           v.ID,
		Filename:     v.Filename,
		Title:        v.Title,
		Summary:      v.Summary,
		KeywordCount: len(v.Keywords),
		ChunkCount:   v.ChunkCount,
	}
}

// KeywordCount is the number of videos tagged with a keyword.
type KeywordCount struct {
	Keyword string
	Count   int
}

// StoreStats reports row counts of the two tables.
type StoreStats struct {
	Videos     int
	Chunks     int
	Dimensions int
	Model      string
}
