package sqlite

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

	"github.com/hylla/dayflow/internal/app"
	"github.com/hylla/dayflow/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Repository stores day documents and tag sets in sqlite.
type Repository struct {
	db *sql.DB
}

var _ app.Repository = (*Repository)(nil)

// Open opens the requested operation.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens in memory.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	db.SetMaxOpenConns(1)
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS days (
			user_id TEXT NOT NULL,
			date TEXT NOT NULL,
			id TEXT NOT NULL,
			activities_json TEXT NOT NULL DEFAULT '[]',
			commitment_level REAL,
			is_completed INTEGER NOT NULL DEFAULT 0,
			finalizado INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY(user_id, date)
		);`,
		`CREATE TABLE IF NOT EXISTS tag_sets (
			user_id TEXT PRIMARY KEY,
			tags_json TEXT NOT NULL DEFAULT '[]',
			updated_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// ListDays returns every day stored for userID ordered by date.
func (r *Repository) ListDays(ctx context.Context, userID string) ([]domain.Day, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, activities_json, commitment_level, is_completed, finalizado, created_at, updated_at
		FROM days
		WHERE user_id = ?
		ORDER BY date ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Day, 0)
	for rows.Next() {
		day, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, day)
	}
	return out, rows.Err()
}

// PutDay upserts the document keyed by (userID, date).
func (r *Repository) PutDay(ctx context.Context, userID, date string, day domain.Day) error {
	activities := day.Activities
	if activities == nil {
		activities = []domain.Activity{}
	}
	activitiesJSON, err := json.Marshal(activities)
	if err != nil {
		return fmt.Errorf("encode activities_json: %w", err)
	}
	var level any
	if day.CommitmentLevel != nil {
		level = *day.CommitmentLevel
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO days(user_id, date, id, activities_json, commitment_level, is_completed, finalizado, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			id = excluded.id,
			activities_json = excluded.activities_json,
			commitment_level = excluded.commitment_level,
			is_completed = excluded.is_completed,
			finalizado = excluded.finalizado,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, userID, date, day.ID, string(activitiesJSON), level, boolToInt(day.IsCompleted), boolToInt(day.Finalizado), ts(day.CreatedAt), ts(day.UpdatedAt))
	return err
}

// DeleteDay removes one day document.
func (r *Repository) DeleteDay(ctx context.Context, userID, date string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM days WHERE user_id = ? AND date = ?`, userID, date)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetTagSet loads the tag set of userID.
func (r *Repository) GetTagSet(ctx context.Context, userID string) ([]domain.Tag, bool, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT tags_json FROM tag_sets WHERE user_id = ?`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	tags := []domain.Tag{}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, false, fmt.Errorf("decode tags_json: %w", err)
	}
	return tags, true, nil
}

// PutTagSet replaces the tag set of userID.
func (r *Repository) PutTagSet(ctx context.Context, userID string, tags []domain.Tag) error {
	if tags == nil {
		tags = []domain.Tag{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encode tags_json: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO tag_sets(user_id, tags_json, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET tags_json = excluded.tags_json, updated_at = excluded.updated_at
	`, userID, string(raw), ts(time.Now()))
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDay(s scanner) (domain.Day, error) {
	var (
		d             domain.Day
		activitiesRaw string
		level         sql.NullFloat64
		completed     int
		finalizado    int
		createdRaw    string
		updatedRaw    string
	)
	if err := s.Scan(&d.ID, &d.Date, &activitiesRaw, &level, &completed, &finalizado, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Day{}, app.ErrNotFound
		}
		return domain.Day{}, err
	}
	if strings.TrimSpace(activitiesRaw) == "" {
		activitiesRaw = "[]"
	}
	d.Activities = []domain.Activity{}
	if err := json.Unmarshal([]byte(activitiesRaw), &d.Activities); err != nil {
		return domain.Day{}, fmt.Errorf("decode day activities_json: %w", err)
	}
	if level.Valid {
		v := level.Float64
		d.CommitmentLevel = &v
	}
	d.IsCompleted = completed != 0
	d.Finalizado = finalizado != 0
	d.CreatedAt = parseTS(createdRaw)
	d.UpdatedAt = parseTS(updatedRaw)
	return d, nil
}

// translateNoRows handles translate no rows.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses input into a normalized form.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
