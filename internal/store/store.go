// Package store handles SQLite persistence of snapshot history.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/cvsheet/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a snapshot id does not exist.
var ErrNotFound = errors.New("snapshot not found")

// Store wraps SQLite access for saved snapshots.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY,
			run_id TEXT NOT NULL,
			lang TEXT NOT NULL,
			created_at TEXT NOT NULL,
			validated_hours REAL NOT NULL,
			total_clips INTEGER NOT NULL,
			contributors INTEGER NOT NULL,
			needs_sentences INTEGER NOT NULL,
			payload TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_lang_created ON snapshots(lang, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_run ON snapshots(run_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// NewRunID returns a fresh identifier grouping the snapshots of one run.
func NewRunID() string {
	return uuid.NewString()
}

// InsertSnapshot stores a snapshot with its summary columns.
func (s *Store) InsertSnapshot(ctx context.Context, rec model.SnapshotRecord) (int64, error) {
	if rec.RunID == "" {
		rec.RunID = NewRunID()
	} else if _, err := uuid.Parse(rec.RunID); err != nil {
		return 0, fmt.Errorf("invalid run id %q: %w", rec.RunID, err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if rec.Lang == "" {
		rec.Lang = rec.Snapshot.Language.Code
	}
	payload, err := json.Marshal(rec.Snapshot)
	if err != nil {
		return 0, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (run_id, lang, created_at, validated_hours, total_clips, contributors, needs_sentences, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.Lang,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		rec.Snapshot.ClipStats.ValidatedHours,
		rec.Snapshot.ClipStats.TotalCount,
		rec.Contributors,
		boolToInt(rec.NeedsMoreSentences),
		string(payload),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListSnapshots returns saved snapshots matching filter, oldest first.
// Last keeps only the most recent N.
func (s *Store) ListSnapshots(ctx context.Context, filter model.HistoryFilter) ([]model.SnapshotRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Lang != "" {
		clauses = append(clauses, "lang = ?")
		args = append(args, filter.Lang)
	}
	if filter.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.Since.UTC().Format(time.RFC3339Nano))
	}
	limit := ""
	if filter.Last > 0 {
		limit = "LIMIT ?"
		args = append(args, filter.Last)
	}
	query := fmt.Sprintf(`SELECT * FROM (
		SELECT id, run_id, lang, created_at, validated_hours, total_clips, contributors, needs_sentences, payload
		FROM snapshots
		WHERE %s
		ORDER BY created_at DESC, id DESC
		%s
	) ORDER BY created_at ASC, id ASC`, strings.Join(clauses, " AND "), limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.SnapshotRecord
	for rows.Next() {
		rec, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// GetSnapshot returns one saved snapshot.
func (s *Store) GetSnapshot(ctx context.Context, id int64) (model.SnapshotRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, run_id, lang, created_at, validated_hours, total_clips, contributors, needs_sentences, payload
		 FROM snapshots WHERE id = ?`, id)
	rec, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SnapshotRecord{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return rec, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (model.SnapshotRecord, error) {
	var rec model.SnapshotRecord
	var createdAt, payload string
	var needs int
	if err := row.Scan(&rec.ID, &rec.RunID, &rec.Lang, &createdAt, &rec.ValidatedHours, &rec.TotalClips, &rec.Contributors, &needs, &payload); err != nil {
		return model.SnapshotRecord{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return model.SnapshotRecord{}, err
	}
	rec.CreatedAt = parsed
	rec.NeedsMoreSentences = needs != 0
	if err := json.Unmarshal([]byte(payload), &rec.Snapshot); err != nil {
		return model.SnapshotRecord{}, fmt.Errorf("failed to decode snapshot %d: %w", rec.ID, err)
	}
	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
