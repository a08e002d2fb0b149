// Package sqlite provides the SQLite-based implementation of driven.VideoStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
//   - parent_videos: one row per distinct transcript, unique by content hash
//   - video_chunks: chunk text and float32 embedding, keyed to parent_videos.id
//   - store_meta: embedding dimension and model recorded on first write
//   - schema_migrations: applied migration versions
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.ragtube/data/ragtube.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. SQLite runs in WAL mode, so
// readers proceed alongside a single writer. A parent and its chunks are
// always written in one transaction.
package sqlite
