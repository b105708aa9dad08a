package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/tendersight/tender-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id               TEXT PRIMARY KEY,
	portal           TEXT NOT NULL,
	files            TEXT NOT NULL,
	strategy         TEXT NOT NULL,
	estimated_tokens INTEGER NOT NULL DEFAULT 0,
	fields_refilled  INTEGER NOT NULL DEFAULT 0,
	is_valid         INTEGER NOT NULL DEFAULT 0,
	envelope         TEXT NOT NULL,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_portal ON runs(portal);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, meta model.RunMetadata, envelope map[string]any) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	filesJSON, err := json.Marshal(meta.FilesProcessed)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal files")
	}
	envelopeJSON, err := json.Marshal(envelope)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal envelope")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, portal, files, strategy, estimated_tokens, fields_refilled, is_valid, envelope, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, meta.DocumentType, string(filesJSON), meta.Strategy,
		meta.EstimatedTokens, meta.FieldsFilledByRefill,
		boolToInt(meta.Validation.IsValid), string(envelopeJSON), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &Run{
		ID:              id,
		Portal:          meta.DocumentType,
		Files:           meta.FilesProcessed,
		Strategy:        meta.Strategy,
		EstimatedTokens: meta.EstimatedTokens,
		FieldsRefilled:  meta.FieldsFilledByRefill,
		IsValid:         meta.Validation.IsValid,
		Envelope:        envelope,
		CreatedAt:       now,
	}, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, portal, files, strategy, estimated_tokens, fields_refilled, is_valid, envelope, created_at
		 FROM runs WHERE id = ?`,
		runID,
	)

	run, err := scanRun(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Errorf("sqlite: run %s not found", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, portal, files, strategy, estimated_tokens, fields_refilled, is_valid, envelope, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		// Listings skip the envelope payload to keep responses small.
		run, err := scanRun(rows, false)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner, withEnvelope bool) (*Run, error) {
	var run Run
	var filesJSON, envelopeJSON string
	var isValid int

	if err := row.Scan(&run.ID, &run.Portal, &filesJSON, &run.Strategy,
		&run.EstimatedTokens, &run.FieldsRefilled, &isValid, &envelopeJSON, &run.CreatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(filesJSON), &run.Files); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal files")
	}
	if withEnvelope {
		if err := json.Unmarshal([]byte(envelopeJSON), &run.Envelope); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal envelope")
		}
	}
	run.IsValid = isValid != 0
	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
