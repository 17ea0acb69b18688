// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/crudmaker/internal/ports/secondary"
)

// JournalRepository implements secondary.JournalRepository with SQLite.
type JournalRepository struct {
	db *sql.DB
}

var _ secondary.JournalRepository = (*JournalRepository)(nil)

// NewJournalRepository creates a new SQLite journal repository.
func NewJournalRepository(db *sql.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// CreateRun persists a run and its artifacts in one transaction.
func (r *JournalRepository) CreateRun(ctx context.Context, run *secondary.RunRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	options := run.Options
	if options == "" {
		options = "{}"
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO runs (table_name, section, framework, base_path, options, status, error) VALUES (?, ?, ?, ?, ?, ?, ?)",
		run.TableName, nullString(run.Section), run.Framework, run.BasePath, options, run.Status, nullString(run.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get run id: %w", err)
	}

	for _, a := range run.Artifacts {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO artifacts (run_id, step, path, operation, bytes) VALUES (?, ?, ?, ?, ?)",
			id, a.Step, a.Path, a.Operation, a.Bytes,
		)
		if err != nil {
			return fmt.Errorf("failed to record artifact %s: %w", a.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	run.ID = id
	return nil
}

// GetRun retrieves a run with its artifacts.
func (r *JournalRepository) GetRun(ctx context.Context, id int64) (*secondary.RunRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, table_name, section, framework, base_path, options, status, error, created_at FROM runs WHERE id = ?",
		id,
	)
	record, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if record.Artifacts, err = r.artifacts(ctx, record.ID); err != nil {
		return nil, err
	}
	return record, nil
}

// ListRuns retrieves runs newest first.
func (r *JournalRepository) ListRuns(ctx context.Context, limit int) ([]*secondary.RunRecord, error) {
	query := "SELECT id, table_name, section, framework, base_path, options, status, error, created_at FROM runs ORDER BY id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*secondary.RunRecord
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	// release the connection before the artifact queries
	rows.Close()

	for _, run := range runs {
		if run.Artifacts, err = r.artifacts(ctx, run.ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (r *JournalRepository) artifacts(ctx context.Context, runID int64) ([]*secondary.ArtifactRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT step, path, operation, bytes FROM artifacts WHERE run_id = ? ORDER BY id ASC",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []*secondary.ArtifactRecord
	for rows.Next() {
		a := &secondary.ArtifactRecord{}
		if err := rows.Scan(&a.Step, &a.Path, &a.Operation, &a.Bytes); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*secondary.RunRecord, error) {
	var (
		section   sql.NullString
		errText   sql.NullString
		createdAt time.Time
	)

	record := &secondary.RunRecord{}
	err := s.Scan(&record.ID, &record.TableName, &section, &record.Framework, &record.BasePath,
		&record.Options, &record.Status, &errText, &createdAt)
	if err != nil {
		return nil, err
	}

	record.Section = section.String
	record.Error = errText.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	return record, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
