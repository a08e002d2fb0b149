// Package domain holds ragtube's data model and error taxonomy.
//
// A transcript moves through three shapes: a SourceDocument read from disk,
// a NormalizedDocument with its content hash, and finally a ParentVideo row
// with one Chunk per embedded passage. Retrieval returns RetrievedChunk,
// a chunk joined back to its video with a similarity score.
//
// The package imports only the standard library; everything else in the
// module depends on it.
package domain
