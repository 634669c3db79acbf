package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SaveStage records where a (user, topic) flow currently stands so an
// interrupted study attempt can resume.
func (s *Store) SaveStage(ctx context.Context, userID, topicID int, stage string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stage_resume (user_id, topic_id, stage, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, topic_id) DO UPDATE SET
			stage = excluded.stage,
			updated_at = excluded.updated_at`,
		userID, topicID, stage, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save stage: %w", err)
	}
	return nil
}

// Stage returns the saved stage for (user, topic), or "" when there is none.
func (s *Store) Stage(ctx context.Context, userID, topicID int) (string, error) {
	var stage string
	err := s.db.QueryRowContext(ctx,
		`SELECT stage FROM stage_resume WHERE user_id = ? AND topic_id = ?`,
		userID, topicID).Scan(&stage)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load stage: %w", err)
	}
	return stage, nil
}

// ClearStage removes the saved stage, called once a flow completes.
func (s *Store) ClearStage(ctx context.Context, userID, topicID int) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM stage_resume WHERE user_id = ? AND topic_id = ?`,
		userID, topicID)
	if err != nil {
		return fmt.Errorf("clear stage: %w", err)
	}
	return nil
}
