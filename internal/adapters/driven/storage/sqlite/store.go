package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ragtube/ragtube-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/ragtube/ragtube-cli/internal/core/domain"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
)

// DatabaseFile is the name of the database file inside the data directory.
const DatabaseFile = "ragtube.db"

const (
	metaDimensions = "embedding_dimensions"
	metaModel      = "embedding_model"
)

var _ driven.VideoStore = (*Store)(nil)

// Store keeps videos, their chunks and the embedding space in one SQLite
// file. Vectors are stored as little-endian float32 blobs.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens <dataDir>/ragtube.db, creating it and applying pending
// migrations. An empty dataDir means ~/.ragtube/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home: %w", err)
		}
		dataDir = filepath.Join(home, ".ragtube", "data")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dataDir, DatabaseFile)
	// DSN pragmas apply to every pooled connection.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(context.Background(), migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Path is the database file.
func (s *Store) Path() string {
	return s.path
}

// migrate applies every NNN_*.up.sql in fsys newer than the recorded schema
// version, one transaction per file.
func (s *Store) migrate(ctx context.Context, fsys fs.FS) error {
	const ledger = `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := s.db.ExecContext(ctx, ledger); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	var applied int
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&applied); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	files, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, name := range files {
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		version, err := strconv.Atoi(prefix)
		if err != nil || version <= applied {
			continue
		}
		script, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
		if err := s.applyMigration(ctx, version, string(script)); err != nil {
			return fmt.Errorf("applying %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) applyMigration(ctx context.Context, version int, script string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
		return err
	}
	return tx.Commit()
}

// EnsureEmbeddingSpace records the embedding model and dimension on first use.
// A later call with a different dimension fails with domain.ErrDimensionMismatch.
func (s *Store) EnsureEmbeddingSpace(ctx context.Context, model string, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("%w: embedding dimension must be positive", domain.ErrValidation)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	recorded, err := readDimensions(ctx, tx)
	if err != nil {
		return err
	}
	if recorded != 0 {
		if recorded != dimensions {
			return fmt.Errorf("%w: store holds %d-dimensional vectors, model %s produces %d",
				domain.ErrDimensionMismatch, recorded, model, dimensions)
		}
		return nil
	}

	if err := writeMeta(ctx, tx, metaDimensions, strconv.Itoa(dimensions)); err != nil {
		return err
	}
	if err := writeMeta(ctx, tx, metaModel, model); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Stats returns table counts and the recorded embedding space.
func (s *Store) Stats(ctx context.Context) (domain.StoreStats, error) {
	var stats domain.StoreStats

	row := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM parent_videos), (SELECT COUNT(*) FROM video_chunks)
	`)
	if err := row.Scan(&stats.Videos, &stats.Chunks); err != nil {
		return stats, fmt.Errorf("counting rows: %w", err)
	}

	dims, err := readDimensions(ctx, s.db)
	if err != nil {
		return stats, err
	}
	stats.Dimensions = dims

	model, err := readMeta(ctx, s.db, metaModel)
	if err != nil {
		return stats, err
	}
	stats.Model = model

	return stats, nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func readMeta(ctx context.Context, q queryer, key string) (string, error) {
	var value string
	err := q.QueryRowContext(ctx, "SELECT value FROM store_meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}
	return value, nil
}

func readDimensions(ctx context.Context, q queryer) (int, error) {
	value, err := readMeta(ctx, q, metaDimensions)
	if err != nil || value == "" {
		return 0, err
	}
	dims, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", metaDimensions, err)
	}
	return dims, nil
}

func writeMeta(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO store_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func encodeVector(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	out := make([]byte, 0, 4*len(v))
	for _, f := range v {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
	}
	return out
}

func decodeVector(blob []byte) []float32 {
	if len(blob) == 0 {
		return nil
	}
	v := make([]float32, len(blob)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return v
}
