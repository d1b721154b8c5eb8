package pg

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/pokerlog/telegram-poker-bot/internal/tournament"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore connects to TEST_DATABASE_URL. Each test uses its own user id
// range so runs against a shared database do not collide.
func newTestStore(t *testing.T) *Store {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	store, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func testUserID() int64 {
	return time.Now().UnixNano()
}

func cleanupUser(t *testing.T, s *Store, userID int64) {
	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = s.pool.Exec(ctx, "DELETE FROM tournaments WHERE user_id = $1", userID)
		_, _ = s.pool.Exec(ctx, "DELETE FROM user_settings WHERE telegram_id = $1", userID)
	})
}

func TestTournamentLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := testUserID()
	cleanupUser(t, store, userID)

	created, err := store.CreateTournament(ctx, userID, tournament.Draft{
		Name:  "Sunday Special",
		Date:  time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC),
		Venue: "Aria Casino",
		BuyIn: 100,
		Type:  tournament.TypeBounty,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, tournament.TypeBounty, created.Type)

	pending, err := store.ListTournamentsWithoutResult(ctx, userID)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	updated, err := store.SetTournamentResult(ctx, created.ID, tournament.Result{
		Position: 1, Payout: 2500, Profit: 2400, ROI: 2400,
	})
	require.NoError(t, err)
	require.True(t, updated.HasResult())
	assert.Equal(t, 2400.0, updated.Result.Profit)

	pending, err = store.ListTournamentsWithoutResult(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, err := store.ListTournaments(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetTournament_NotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetTournament(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, tournament.ErrNotFound)

	_, err = store.GetTournament(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, tournament.ErrNotFound)

	_, err = store.SetTournamentResult(ctx, "00000000-0000-0000-0000-000000000000", tournament.Result{Position: 2})
	assert.ErrorIs(t, err, tournament.ErrNotFound)
}

func TestCurrentVenue(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := testUserID()
	cleanupUser(t, store, userID)

	v, err := store.GetCurrentVenue(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, store.SetCurrentVenue(ctx, userID, "Royal Casino"))
	v, err = store.GetCurrentVenue(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Royal Casino", v)

	require.NoError(t, store.SetCurrentVenue(ctx, userID, ""))
	v, err = store.GetCurrentVenue(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, v)
}
