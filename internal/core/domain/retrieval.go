package domain

// RetrievedChunk is a chunk joined back to its parent video.
type RetrievedChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the cosine similarity between the query and the chunk.
	Score float64

	// Video is the parent record resolved through Chunk.VideoID.
	Video ParentVideo
}

// Chat roles accepted in history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one message of client-supplied history.
type ChatTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// CitedSource is a passage the answer was grounded on.
type CitedSource struct {
	Filename  string `json:"filename"`
	ChunkText string `json:"chunk_text"`
}

// Answer is the result of a question over the transcripts.
type Answer struct {
	Text         string        `json:"answer"`
	CitedSources []CitedSource `json:"cited_sources"`
}
