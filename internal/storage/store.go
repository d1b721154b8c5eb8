package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// timestampFormat matches SQLite's CURRENT_TIMESTAMP so stored times compare
// as strings.
const timestampFormat = "2006-01-02 15:04:05"

// SQLiteStore persists tournaments, user settings, sessions and the ticket
// recognition cache in a single SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (and creates if needed) the database at dbPath.
// Use ":memory:" for a throwaway database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Configure SQLite with WAL mode and busy timeout for better concurrency
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dbPath == ":memory:" {
		// Each connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	// Set file permissions (only works on creation)
	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		log.Debug().Err(err).Str("dbPath", dbPath).Msg("could not restrict database permissions")
	}

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	tournamentsQuery := `
	CREATE TABLE IF NOT EXISTS tournaments (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		date TEXT NOT NULL,
		venue TEXT NOT NULL,
		buyin REAL NOT NULL,
		type TEXT NOT NULL,
		structure TEXT NOT NULL DEFAULT '',
		participants INTEGER NOT NULL DEFAULT 0,
		prize_pool REAL NOT NULL DEFAULT 0,
		blind_levels TEXT NOT NULL DEFAULT '',
		starting_stack INTEGER NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		position INTEGER,
		payout REAL,
		profit REAL,
		roi REAL,
		result_notes TEXT,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tournaments_user ON tournaments(user_id, date);
	`
	if _, err := s.db.Exec(tournamentsQuery); err != nil {
		return fmt.Errorf("failed to create tournaments table: %w", err)
	}

	userSettingsQuery := `
	CREATE TABLE IF NOT EXISTS user_settings (
		telegram_id INTEGER PRIMARY KEY,
		current_venue TEXT
	);
	`
	if _, err := s.db.Exec(userSettingsQuery); err != nil {
		return fmt.Errorf("failed to create user_settings table: %w", err)
	}

	sessionsQuery := `
	CREATE TABLE IF NOT EXISTS sessions (
		telegram_id INTEGER PRIMARY KEY,
		state TEXT NOT NULL,
		last_updated DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(sessionsQuery); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}

	ticketCacheQuery := `
	CREATE TABLE IF NOT EXISTS ticket_cache (
		image_hash TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(ticketCacheQuery); err != nil {
		return fmt.Errorf("failed to create ticket_cache table: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetCurrentVenue returns the user's current venue, or "" if none is set.
func (s *SQLiteStore) GetCurrentVenue(ctx context.Context, userID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var venue sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT current_venue FROM user_settings WHERE telegram_id = ?",
		userID,
	).Scan(&venue)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query current venue: %w", err)
	}

	return venue.String, nil
}

// SetCurrentVenue stores the user's current venue. An empty venue clears it.
func (s *SQLiteStore) SetCurrentVenue(ctx context.Context, userID int64, venue string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value any
	if venue != "" {
		value = venue
	}

	query := `
	INSERT INTO user_settings (telegram_id, current_venue)
	VALUES (?, ?)
	ON CONFLICT(telegram_id) DO UPDATE SET
		current_venue = excluded.current_venue;
	`
	if _, err := s.db.ExecContext(ctx, query, userID, value); err != nil {
		return fmt.Errorf("failed to set current venue: %w", err)
	}
	return nil
}

// GetTicketCache returns a cached recognition result, or nil if absent.
func (s *SQLiteStore) GetTicketCache(ctx context.Context, imageHash string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM ticket_cache WHERE image_hash = ?",
		imageHash,
	).Scan(&data)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ticket cache: %w", err)
	}
	return []byte(data), nil
}

// SetTicketCache stores a recognition result.
func (s *SQLiteStore) SetTicketCache(ctx context.Context, imageHash string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ticket_cache (image_hash, data)
		VALUES (?, ?)
		ON CONFLICT(image_hash) DO UPDATE SET
			data = excluded.data,
			created_at = CURRENT_TIMESTAMP
	`, imageHash, string(data))
	if err != nil {
		return fmt.Errorf("failed to save ticket cache: %w", err)
	}
	return nil
}

// PruneTicketCache deletes cache entries older than maxAge.
func (s *SQLiteStore) PruneTicketCache(ctx context.Context, maxAge time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge).UTC().Format(timestampFormat)
	res, err := s.db.ExecContext(ctx, "DELETE FROM ticket_cache WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune ticket cache: %w", err)
	}
	return res.RowsAffected()
}
