package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pokerlog/telegram-poker-bot/internal/session"
)

// SessionStore persists conversation sessions as JSON so flows survive a
// restart. It implements session.Store.
type SessionStore struct {
	store *SQLiteStore
}

// Sessions returns a session.Store backed by this database.
func (s *SQLiteStore) Sessions() *SessionStore {
	return &SessionStore{store: s}
}

// Get returns the stored session or a fresh empty one.
func (ss *SessionStore) Get(ctx context.Context, userID int64) (*session.Session, error) {
	ss.store.mu.RLock()
	defer ss.store.mu.RUnlock()

	var state string
	err := ss.store.db.QueryRowContext(ctx,
		"SELECT state FROM sessions WHERE telegram_id = ?",
		userID,
	).Scan(&state)

	if err == sql.ErrNoRows {
		return session.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	var sess session.Session
	if err := json.Unmarshal([]byte(state), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

// Set stores the session, replacing any previous one.
func (ss *SessionStore) Set(ctx context.Context, userID int64, sess *session.Session) error {
	state, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ss.store.mu.Lock()
	defer ss.store.mu.Unlock()

	_, err = ss.store.db.ExecContext(ctx, `
		INSERT INTO sessions (telegram_id, state, last_updated)
		VALUES (?, ?, ?)
		ON CONFLICT(telegram_id) DO UPDATE SET
			state = excluded.state,
			last_updated = excluded.last_updated
	`, userID, string(state), time.Now().UTC().Format(timestampFormat))
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear removes the stored session; the next Get returns an empty one.
func (ss *SessionStore) Clear(ctx context.Context, userID int64) error {
	ss.store.mu.Lock()
	defer ss.store.mu.Unlock()

	if _, err := ss.store.db.ExecContext(ctx, "DELETE FROM sessions WHERE telegram_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// PruneStale removes sessions not updated within maxAge, which drops
// abandoned flows and drafts.
func (ss *SessionStore) PruneStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	ss.store.mu.Lock()
	defer ss.store.mu.Unlock()

	cutoff := time.Now().Add(-maxAge).UTC().Format(timestampFormat)
	res, err := ss.store.db.ExecContext(ctx, "DELETE FROM sessions WHERE last_updated < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	return res.RowsAffected()
}
