package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ragtube/ragtube-cli/internal/adapters/driven/storage/similarity"
	"github.com/ragtube/ragtube-cli/internal/core/domain"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
)

const videoColumns = `id, filename, title, summary, keywords, content_hash, chunk_count, created_at`

// HasContentHash reports whether a parent with this hash exists.
func (s *Store) HasContentHash(ctx context.Context, contentHash string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM parent_videos WHERE content_hash = ?", contentHash,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking content hash: %w", err)
	}
	return true, nil
}

// CommitVideo writes the parent and all of its chunks in a single transaction.
func (s *Store) CommitVideo(ctx context.Context, video *domain.ParentVideo, chunks []domain.Chunk) error {
	if video == nil || video.ID == "" || video.ContentHash == "" {
		return fmt.Errorf("%w: video id and content hash are required", domain.ErrValidation)
	}
	for _, c := range chunks {
		if c.VideoID != video.ID {
			return fmt.Errorf("%w: chunk %s belongs to %q, not %q", domain.ErrValidation, c.ID, c.VideoID, video.ID)
		}
	}

	keywords, err := json.Marshal(nonNil(video.Keywords))
	if err != nil {
		return fmt.Errorf("encoding keywords: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var existing string
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM parent_videos WHERE content_hash = ?", video.ContentHash,
	).Scan(&existing)
	switch {
	case err == nil:
		return fmt.Errorf("%w: content hash already stored as video %s", domain.ErrDuplicate, existing)
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("checking content hash: %w", err)
	}

	dims, err := readDimensions(ctx, tx)
	if err != nil {
		return err
	}
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrValidation, c.ID)
		}
		if dims == 0 {
			dims = len(c.Embedding)
			if err := writeMeta(ctx, tx, metaDimensions, fmt.Sprint(dims)); err != nil {
				return err
			}
		}
		if len(c.Embedding) != dims {
			return fmt.Errorf("%w: chunk %s has %d dimensions, store holds %d",
				domain.ErrDimensionMismatch, c.ID, len(c.Embedding), dims)
		}
	}

	createdAt := video.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	createdAt = createdAt.UTC()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO parent_videos (id, filename, title, summary, keywords, content_hash, chunk_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, video.ID, video.Filename, video.Title, video.Summary, string(keywords),
		video.ContentHash, len(chunks), createdAt)
	if err != nil {
		return fmt.Errorf("inserting video: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO video_chunks (id, video_id, chunk_index, content, token_count, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		_, err := stmt.ExecContext(ctx, c.ID, c.VideoID, c.Index, c.Text, c.TokenCount,
			encodeVector(c.Embedding))
		if err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	video.ChunkCount = len(chunks)
	video.CreatedAt = createdAt
	return nil
}

// GetVideo retrieves a parent by ID.
func (s *Store) GetVideo(ctx context.Context, id string) (*domain.ParentVideo, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+videoColumns+" FROM parent_videos WHERE id = ?", id)

	video, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("video %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting video: %w", err)
	}
	return video, nil
}

// GetVideos resolves a set of parent IDs in one query.
func (s *Store) GetVideos(ctx context.Context, ids []string) (map[string]*domain.ParentVideo, error) {
	out := make(map[string]*domain.ParentVideo, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+videoColumns+" FROM parent_videos WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("querying videos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning video: %w", err)
		}
		out[video.ID] = video
	}
	return out, rows.Err()
}

// ListVideos returns all parents ordered by filename.
func (s *Store) ListVideos(ctx context.Context) ([]domain.ParentVideo, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+videoColumns+" FROM parent_videos ORDER BY filename, id")
	if err != nil {
		return nil, fmt.Errorf("listing videos: %w", err)
	}
	defer rows.Close()

	var videos []domain.ParentVideo
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning video: %w", err)
		}
		videos = append(videos, *video)
	}
	return videos, rows.Err()
}

// GetChunks retrieves all chunks for a video in index order.
func (s *Store) GetChunks(ctx context.Context, videoID string) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, video_id, chunk_index, content, token_count, embedding
		FROM video_chunks WHERE video_id = ? ORDER BY chunk_index
	`, videoID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// SearchChunks streams every chunk through a bounded ranker.
// Chunks whose stored dimension differs from the query abort the search.
func (s *Store) SearchChunks(ctx context.Context, embedding []float32, topK int) ([]driven.ChunkMatch, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: empty query embedding", domain.ErrValidation)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive", domain.ErrValidation)
	}

	dims, err := readDimensions(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if dims != 0 && dims != len(embedding) {
		return nil, fmt.Errorf("%w: query has %d dimensions, store holds %d",
			domain.ErrDimensionMismatch, len(embedding), dims)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, video_id, chunk_index, content, token_count, embedding FROM video_chunks
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	queryNorm := similarity.Norm(embedding)
	ranker := similarity.NewRanker(topK)
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		if len(c.Embedding) != len(embedding) {
			return nil, fmt.Errorf("%w: chunk %s has %d dimensions, query has %d",
				domain.ErrDimensionMismatch, c.ID, len(c.Embedding), len(embedding))
		}
		ranker.Offer(driven.ChunkMatch{
			Chunk: c,
			Score: similarity.Cosine(embedding, queryNorm, c.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ranker.Results(), nil
}

// OrphanChunks returns chunks whose parent row is missing.
func (s *Store) OrphanChunks(ctx context.Context) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.video_id, c.chunk_index, c.content, c.token_count, c.embedding
		FROM video_chunks c
		LEFT JOIN parent_videos p ON p.id = c.video_id
		WHERE p.id IS NULL
		ORDER BY c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying orphan chunks: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanVideo(row scanner) (*domain.ParentVideo, error) {
	var (
		v        domain.ParentVideo
		keywords string
	)
	err := row.Scan(&v.ID, &v.Filename, &v.Title, &v.Summary, &keywords,
		&v.ContentHash, &v.ChunkCount, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	if keywords != "" {
		if err := json.Unmarshal([]byte(keywords), &v.Keywords); err != nil {
			return nil, fmt.Errorf("decoding keywords for %s: %w", v.ID, err)
		}
	}
	v.CreatedAt = v.CreatedAt.UTC()
	return &v, nil
}

func scanChunk(row scanner) (domain.Chunk, error) {
	var (
		c    domain.Chunk
		blob []byte
	)
	if err := row.Scan(&c.ID, &c.VideoID, &c.Index, &c.Text, &c.TokenCount, &blob); err != nil {
		return c, err
	}
	c.Embedding = decodeVector(blob)
	return c, nil
}

func scanChunks(rows *sql.Rows) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
