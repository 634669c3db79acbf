package store

import (
	"context"
	"fmt"
	"time"
)

// SessionEntry is one row of the local session history.
type SessionEntry struct {
	SessionID string
	UserID    int
	TopicID   int
	Outcome   string
	TotalExp  int
	CreatedAt time.Time
}

// RecordSession appends a lifecycle event to the local history. Errors are
// swallowed: history is a convenience, never worth failing a session over.
func (s *Store) RecordSession(sessionID string, userID, topicID int, outcome string, totalExp int) {
	_, _ = s.db.Exec(`
		INSERT INTO session_log (session_id, user_id, topic_id, outcome, total_exp, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, userID, topicID, outcome, totalExp, time.Now().Unix())
}

// History returns the most recent session events for a user, newest first.
func (s *Store) History(ctx context.Context, userID, limit int) ([]SessionEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, user_id, topic_id, outcome, total_exp, created_at
		FROM session_log WHERE user_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []SessionEntry
	for rows.Next() {
		var e SessionEntry
		var created int64
		if err := rows.Scan(&e.SessionID, &e.UserID, &e.TopicID, &e.Outcome, &e.TotalExp, &created); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.CreatedAt = time.Unix(created, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}
