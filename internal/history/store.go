// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a local SQLite ledger of completed merge runs and the
// vials each run wrote, so past uploads can be listed and exported.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/cddprep/internal/smiles"
	"github.com/pdiddy/cddprep/internal/table"
	"github.com/pdiddy/cddprep/pkg/types"
)

const dbFile = "history.db"

// Run is one completed merge.
type Run struct {
	ID           string    `json:"id" yaml:"id"`
	StartedAt    time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt   time.Time `json:"finished_at" yaml:"finished_at"`
	ScanFile     string    `json:"scan_file" yaml:"scan_file"`
	VialFile     string    `json:"vial_file" yaml:"vial_file"`
	OutputPath   string    `json:"output_path" yaml:"output_path"`
	OutputSize   int64     `json:"output_size" yaml:"output_size"`
	Rows         int       `json:"rows" yaml:"rows"`
	PublishedURL string    `json:"published_url,omitempty" yaml:"published_url,omitempty"`
}

// Vial is one merged row as recorded for a run.
type Vial struct {
	Code      string `json:"vial_qr_code" yaml:"vial_qr_code"`
	PlateWell string `json:"plate_well" yaml:"plate_well"`
	Smiles    string `json:"smiles" yaml:"smiles"`
	Formula   string `json:"formula,omitempty" yaml:"formula,omitempty"`
}

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates <cfg.Dir>/history.db and its schema.
func Open(cfg types.HistoryConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = ".cddprep"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			scan_file TEXT NOT NULL,
			vial_file TEXT NOT NULL,
			output_path TEXT NOT NULL,
			output_size INTEGER NOT NULL DEFAULT 0,
			row_count INTEGER NOT NULL,
			published_url TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS vials (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			vial_qr_code TEXT NOT NULL,
			plate_well TEXT NOT NULL,
			smiles TEXT NOT NULL,
			formula TEXT,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_vials_code ON vials(vial_qr_code)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordRun stores run and one vial row per merged row in a single
// transaction. An empty run.ID is filled with a new UUID. The stored run is
// returned.
func (s *Store) RecordRun(ctx context.Context, run Run, merged *table.Table) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	run.Rows = merged.Len()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, scan_file, vial_file, output_path, output_size, row_count, published_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, formatTime(run.StartedAt), formatTime(run.FinishedAt),
		run.ScanFile, run.VialFile, run.OutputPath, run.OutputSize, run.Rows, nullString(run.PublishedURL),
	); err != nil {
		return Run{}, fmt.Errorf("inserting run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO vials (run_id, position, vial_qr_code, plate_well, smiles, formula) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("preparing vial insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < merged.Len(); i++ {
		rec := types.MergedRecordAt(merged, i)
		if _, err := stmt.ExecContext(ctx, run.ID, i,
			rec.VialQRCode, rec.PlateWell, rec.Smiles, nullString(formula(rec.Smiles)),
		); err != nil {
			return Run{}, fmt.Errorf("inserting vial %d of run %s: %w", i, run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("committing run %s: %w", run.ID, err)
	}
	return run, nil
}

// formula returns the molecular formula, or "" when smi does not parse.
func formula(smi string) string {
	m, err := smiles.Parse(smi)
	if err != nil {
		return ""
	}
	return m.Formula()
}

// Runs returns up to limit runs, newest first. A limit <= 0 returns all runs.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, started_at, finished_at, scan_file, vial_file, output_path, output_size, row_count, published_url
		FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished string
			published         sql.NullString
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.ScanFile, &r.VialFile,
			&r.OutputPath, &r.OutputSize, &r.Rows, &published); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt = parseTime(started)
		r.FinishedAt = parseTime(finished)
		r.PublishedURL = published.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Vials returns the vials recorded for runID in output order.
func (s *Store) Vials(ctx context.Context, runID string) ([]Vial, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT vial_qr_code, plate_well, smiles, formula FROM vials WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying vials for run %s: %w", runID, err)
	}
	defer rows.Close()

	var vials []Vial
	for rows.Next() {
		var v Vial
		var f sql.NullString
		if err := rows.Scan(&v.Code, &v.PlateWell, &v.Smiles, &f); err != nil {
			return nil, fmt.Errorf("scanning vial: %w", err)
		}
		v.Formula = f.String
		vials = append(vials, v)
	}
	return vials, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
