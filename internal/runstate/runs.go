package runstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Run is one pipeline invocation.
type Run struct {
	ID           string
	Source       string
	MediaID      string
	Status       RunStatus
	Clips        int
	Failed       int
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const runColumns = `id, source, media_id, status, clips, failed, error_message, created_at, updated_at`

// CreateRun records a new running invocation.
func (s *Store) CreateRun(ctx context.Context, id, source string) (*Run, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("run id is required")
	}
	now := time.Now().UTC()
	err := s.exec(ctx,
		`INSERT INTO runs (id, source, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, source, RunRunning, timestamp(now), timestamp(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return &Run{ID: id, Source: source, Status: RunRunning, CreatedAt: now, UpdatedAt: now}, nil
}

// SetMediaID associates a run with the media id its artifacts are keyed by.
func (s *Store) SetMediaID(ctx context.Context, runID, mediaID string) error {
	err := s.exec(ctx,
		`UPDATE runs SET media_id = ?, updated_at = ? WHERE id = ?`,
		mediaID, timestamp(time.Now()), runID,
	)
	if err != nil {
		return fmt.Errorf("set media id: %w", err)
	}
	return nil
}

// FinishRun stores the terminal outcome of a run.
func (s *Store) FinishRun(ctx context.Context, runID string, status RunStatus, clips, failed int, message string) error {
	err := s.exec(ctx,
		`UPDATE runs SET status = ?, clips = ?, failed = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		status, clips, failed, nullableString(message), timestamp(time.Now()), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// GetRun fetches a run by id. It returns nil when no run matches.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first, at most limit when limit > 0.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run                  Run
		status               string
		mediaID, message     sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&run.ID, &run.Source, &mediaID, &status, &run.Clips, &run.Failed, &message, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	run.MediaID = mediaID.String
	run.ErrorMessage = message.String
	run.CreatedAt = parseTimestamp(createdAt)
	run.UpdatedAt = parseTimestamp(updatedAt)
	return &run, nil
}
