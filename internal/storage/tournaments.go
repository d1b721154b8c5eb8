package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pokerlog/telegram-poker-bot/internal/tournament"
)

const dateLayout = "2006-01-02"

const tournamentColumns = `id, user_id, name, date, venue, buyin, type, structure, participants,
	prize_pool, blind_levels, starting_stack, notes, position, payout, profit, roi, result_notes, created_at`

// CreateTournament stores a new tournament for userID.
func (s *SQLiteStore) CreateTournament(ctx context.Context, userID int64, d tournament.Draft) (*tournament.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tournament.Tournament{
		ID:            uuid.New().String(),
		UserID:        userID,
		Name:          d.Name,
		Date:          d.Date,
		Venue:         d.Venue,
		BuyIn:         d.BuyIn,
		Type:          d.Type,
		Structure:     d.Structure,
		Participants:  d.Participants,
		PrizePool:     d.PrizePool,
		BlindLevels:   d.BlindLevels,
		StartingStack: d.StartingStack,
		Notes:         d.Notes,
		CreatedAt:     time.Now(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tournaments (id, user_id, name, date, venue, buyin, type, structure, participants,
			prize_pool, blind_levels, starting_stack, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Name, t.Date.Format(dateLayout), t.Venue, t.BuyIn, string(t.Type), t.Structure,
		t.Participants, t.PrizePool, t.BlindLevels, t.StartingStack, t.Notes, t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	return t, nil
}

// GetTournament returns the tournament with id or tournament.ErrNotFound.
func (s *SQLiteStore) GetTournament(ctx context.Context, id string) (*tournament.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getTournament(ctx, id)
}

func (s *SQLiteStore) getTournament(ctx context.Context, id string) (*tournament.Tournament, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+tournamentColumns+" FROM tournaments WHERE id = ?", id)
	t, err := scanTournament(row)
	if err == sql.ErrNoRows {
		return nil, tournament.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tournament: %w", err)
	}
	return t, nil
}

// ListTournaments returns all tournaments of a user, newest first.
func (s *SQLiteStore) ListTournaments(ctx context.Context, userID int64) ([]tournament.Tournament, error) {
	return s.listTournaments(ctx,
		"SELECT "+tournamentColumns+" FROM tournaments WHERE user_id = ? ORDER BY date DESC, created_at DESC",
		userID)
}

// ListTournamentsWithoutResult returns the user's tournaments that still
// await a result, newest first.
func (s *SQLiteStore) ListTournamentsWithoutResult(ctx context.Context, userID int64) ([]tournament.Tournament, error) {
	return s.listTournaments(ctx,
		"SELECT "+tournamentColumns+" FROM tournaments WHERE user_id = ? AND position IS NULL ORDER BY date DESC, created_at DESC",
		userID)
}

func (s *SQLiteStore) listTournaments(ctx context.Context, query string, args ...any) ([]tournament.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []tournament.Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament: %w", err)
		}
		tournaments = append(tournaments, *t)
	}
	return tournaments, rows.Err()
}

// SetTournamentResult records the result of a tournament.
func (s *SQLiteStore) SetTournamentResult(ctx context.Context, id string, r tournament.Result) (*tournament.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE tournaments SET position = ?, payout = ?, profit = ?, roi = ?, result_notes = ?
		WHERE id = ?`,
		r.Position, r.Payout, r.Profit, r.ROI, r.Notes, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set tournament result: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, tournament.ErrNotFound
	}

	return s.getTournament(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTournament(row rowScanner) (*tournament.Tournament, error) {
	var (
		t           tournament.Tournament
		date, typ   string
		position    sql.NullInt64
		payout      sql.NullFloat64
		profit      sql.NullFloat64
		roi         sql.NullFloat64
		resultNotes sql.NullString
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &date, &t.Venue, &t.BuyIn, &typ, &t.Structure,
		&t.Participants, &t.PrizePool, &t.BlindLevels, &t.StartingStack, &t.Notes,
		&position, &payout, &profit, &roi, &resultNotes, &t.CreatedAt)
	if err != nil {
		return nil, err
	}

	t.Type = tournament.Type(typ)
	if t.Date, err = time.Parse(dateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid stored date %q: %w", date, err)
	}
	if position.Valid {
		t.Result = &tournament.Result{
			Position: int(position.Int64),
			Payout:   payout.Float64,
			Profit:   profit.Float64,
			ROI:      roi.Float64,
			Notes:    resultNotes.String,
		}
	}
	return &t, nil
}
