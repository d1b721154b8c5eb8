// Package pg stores tournaments and venue preferences in PostgreSQL.
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pokerlog/telegram-poker-bot/internal/tournament"
)

const schema = `
CREATE TABLE IF NOT EXISTS tournaments (
	id UUID PRIMARY KEY,
	user_id BIGINT NOT NULL,
	name TEXT NOT NULL,
	date DATE NOT NULL,
	venue TEXT NOT NULL,
	buyin NUMERIC(12,2) NOT NULL,
	type TEXT NOT NULL,
	structure TEXT NOT NULL DEFAULT '',
	participants INTEGER NOT NULL DEFAULT 0,
	prize_pool NUMERIC(14,2) NOT NULL DEFAULT 0,
	blind_levels TEXT NOT NULL DEFAULT '',
	starting_stack INTEGER NOT NULL DEFAULT 0,
	notes TEXT NOT NULL DEFAULT '',
	position INTEGER,
	payout NUMERIC(14,2),
	profit NUMERIC(14,2),
	roi DOUBLE PRECISION,
	result_notes TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_tournaments_user ON tournaments(user_id, date DESC);
CREATE TABLE IF NOT EXISTS user_settings (
	telegram_id BIGINT PRIMARY KEY,
	current_venue TEXT
);
`

const columns = `id::text, user_id, name, date, venue, buyin::float8, type, structure, participants,
	prize_pool::float8, blind_levels, starting_stack, notes, position, payout::float8, profit::float8,
	roi, result_notes, created_at`

// Store is a Postgres-backed tournament and venue store.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to dsn and makes sure the schema exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse db dsn: %w", err)
	}
	cfg.ConnConfig.RuntimeParams["timezone"] = "UTC"
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 15 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) CreateTournament(ctx context.Context, userID int64, d tournament.Draft) (*tournament.Tournament, error) {
	id := uuid.New()
	row := s.pool.QueryRow(ctx, `
		INSERT INTO tournaments (id, user_id, name, date, venue, buyin, type, structure, participants,
			prize_pool, blind_levels, starting_stack, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+columns,
		id, userID, d.Name, d.Date, d.Venue, d.BuyIn, string(d.Type), d.Structure, d.Participants,
		d.PrizePool, d.BlindLevels, d.StartingStack, d.Notes,
	)
	t, err := scanTournament(row)
	if err != nil {
		return nil, fmt.Errorf("insert tournament: %w", err)
	}
	return t, nil
}

func (s *Store) GetTournament(ctx context.Context, id string) (*tournament.Tournament, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, tournament.ErrNotFound
	}
	t, err := scanTournament(s.pool.QueryRow(ctx, "SELECT "+columns+" FROM tournaments WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, tournament.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tournament: %w", err)
	}
	return t, nil
}

func (s *Store) ListTournaments(ctx context.Context, userID int64) ([]tournament.Tournament, error) {
	return s.list(ctx, "SELECT "+columns+" FROM tournaments WHERE user_id = $1 ORDER BY date DESC, created_at DESC", userID)
}

func (s *Store) ListTournamentsWithoutResult(ctx context.Context, userID int64) ([]tournament.Tournament, error) {
	return s.list(ctx, "SELECT "+columns+" FROM tournaments WHERE user_id = $1 AND position IS NULL ORDER BY date DESC, created_at DESC", userID)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]tournament.Tournament, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	defer rows.Close()

	var out []tournament.Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tournament: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (s *Store) SetTournamentResult(ctx context.Context, id string, r tournament.Result) (*tournament.Tournament, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, tournament.ErrNotFound
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE tournaments SET position = $2, payout = $3, profit = $4, roi = $5, result_notes = $6
		WHERE id = $1
		RETURNING `+columns,
		id, r.Position, r.Payout, r.Profit, r.ROI, r.Notes,
	)
	t, err := scanTournament(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, tournament.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("set tournament result: %w", err)
	}
	return t, nil
}

func (s *Store) GetCurrentVenue(ctx context.Context, userID int64) (string, error) {
	var venue *string
	err := s.pool.QueryRow(ctx, "SELECT current_venue FROM user_settings WHERE telegram_id = $1", userID).Scan(&venue)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get current venue: %w", err)
	}
	if venue == nil {
		return "", nil
	}
	return *venue, nil
}

func (s *Store) SetCurrentVenue(ctx context.Context, userID int64, venue string) error {
	var value *string
	if venue != "" {
		value = &venue
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_settings (telegram_id, current_venue) VALUES ($1, $2)
		ON CONFLICT (telegram_id) DO UPDATE SET current_venue = EXCLUDED.current_venue`,
		userID, value,
	)
	if err != nil {
		return fmt.Errorf("set current venue: %w", err)
	}
	return nil
}

func scanTournament(row pgx.Row) (*tournament.Tournament, error) {
	var (
		t           tournament.Tournament
		typ         string
		position    *int32
		payout      *float64
		profit      *float64
		roi         *float64
		resultNotes *string
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Date, &t.Venue, &t.BuyIn, &typ, &t.Structure,
		&t.Participants, &t.PrizePool, &t.BlindLevels, &t.StartingStack, &t.Notes,
		&position, &payout, &profit, &roi, &resultNotes, &t.CreatedAt)
	if err != nil {
		return nil, err
	}

	t.Type = tournament.Type(typ)
	if position != nil {
		t.Result = &tournament.Result{Position: int(*position)}
		if payout != nil {
			t.Result.Payout = *payout
		}
		if profit != nil {
			t.Result.Profit = *profit
		}
		if roi != nil {
			t.Result.ROI = *roi
		}
		if resultNotes != nil {
			t.Result.Notes = *resultNotes
		}
	}
	return &t, nil
}
