package runstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Key identifies one stage row.
type Key struct {
	MediaID string
	Stage   string
	Chapter int
}

// StageRecord is the persisted state of one stage.
type StageRecord struct {
	Key
	Status       Status
	RunID        string
	ErrorMessage string
	UpdatedAt    time.Time
}

// StageStatus returns the recorded status for key. The boolean is false
// when no row exists.
func (s *Store) StageStatus(ctx context.Context, key Key) (Status, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT status FROM stages WHERE media_id = ? AND stage = ? AND chapter = ?`,
		key.MediaID, key.Stage, key.Chapter,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read stage status: %w", err)
	}
	status, err := ParseStatus(raw)
	if err != nil {
		return "", false, err
	}
	return status, true, nil
}

// SetStage upserts the status row for key.
func (s *Store) SetStage(ctx context.Context, key Key, status Status, runID, message string) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}
	err := s.exec(ctx,
		`INSERT INTO stages (media_id, stage, chapter, status, run_id, error_message, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(media_id, stage, chapter) DO UPDATE SET
            status = excluded.status,
            run_id = excluded.run_id,
            error_message = excluded.error_message,
            updated_at = excluded.updated_at`,
		key.MediaID, key.Stage, key.Chapter, status, nullableString(runID), nullableString(message), timestamp(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("set stage %s: %w", key.Stage, err)
	}
	return nil
}

// Stages lists every stage row for mediaID, run-level stages first.
func (s *Store) Stages(ctx context.Context, mediaID string) ([]StageRecord, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT media_id, stage, chapter, status, run_id, error_message, updated_at
         FROM stages WHERE media_id = ? ORDER BY chapter, updated_at, stage`,
		mediaID,
	)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	defer rows.Close()

	var records []StageRecord
	for rows.Next() {
		var (
			rec            StageRecord
			status         string
			runID, message sql.NullString
			updatedAt      string
		)
		if err := rows.Scan(&rec.MediaID, &rec.Stage, &rec.Chapter, &status, &runID, &message, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		rec.Status = Status(status)
		rec.RunID = runID.String
		rec.ErrorMessage = message.String
		rec.UpdatedAt = parseTimestamp(updatedAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ResetMedia removes every stage row for mediaID so the next run starts over.
func (s *Store) ResetMedia(ctx context.Context, mediaID string) error {
	if err := s.exec(ctx, `DELETE FROM stages WHERE media_id = ?`, mediaID); err != nil {
		return fmt.Errorf("reset stages: %w", err)
	}
	return nil
}
