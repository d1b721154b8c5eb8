package storage

import (
	"context"
	"testing"
	"time"

	"github.com/pokerlog/telegram-poker-bot/internal/session"
	"github.com/pokerlog/telegram-poker-bot/internal/tournament"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleDraft(name string, day int) tournament.Draft {
	return tournament.Draft{
		Name:          name,
		Date:          time.Date(2024, 12, day, 0, 0, 0, 0, time.UTC),
		Venue:         "Aria Casino",
		BuyIn:         100,
		Type:          tournament.TypeFreezeout,
		StartingStack: 20000,
	}
}

func TestCreateAndGetTournament(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateTournament(ctx, 1, sampleDraft("Sunday Special", 15))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := store.GetTournament(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sunday Special", got.Name)
	assert.Equal(t, time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC), got.Date)
	assert.Equal(t, 100.0, got.BuyIn)
	assert.Equal(t, tournament.TypeFreezeout, got.Type)
	assert.Equal(t, 20000, got.StartingStack)
	assert.False(t, got.HasResult())
}

func TestGetTournament_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetTournament(context.Background(), "missing")
	assert.ErrorIs(t, err, tournament.ErrNotFound)

	_, err = store.SetTournamentResult(context.Background(), "missing", tournament.Result{Position: 1})
	assert.ErrorIs(t, err, tournament.ErrNotFound)
}

func TestSetTournamentResult(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateTournament(ctx, 1, sampleDraft("Main", 10))
	require.NoError(t, err)

	result := tournament.ComputeResult(created.BuyIn, tournament.ResultInput{Position: 1, Payout: 2500, Notes: "heads-up deal"})
	updated, err := store.SetTournamentResult(ctx, created.ID, result)
	require.NoError(t, err)
	require.NotNil(t, updated.Result)
	assert.Equal(t, 1, updated.Result.Position)
	assert.Equal(t, 2400.0, updated.Result.Profit)
	assert.Equal(t, 2400.0, updated.Result.ROI)

	reloaded, err := store.GetTournament(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.Result)
	assert.Equal(t, "heads-up deal", reloaded.Result.Notes)
}

func TestListTournaments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older, err := store.CreateTournament(ctx, 1, sampleDraft("Older", 1))
	require.NoError(t, err)
	_, err = store.CreateTournament(ctx, 1, sampleDraft("Newer", 20))
	require.NoError(t, err)
	_, err = store.CreateTournament(ctx, 2, sampleDraft("Someone else", 5))
	require.NoError(t, err)

	_, err = store.SetTournamentResult(ctx, older.ID, tournament.Result{Position: 3, Payout: 300})
	require.NoError(t, err)

	all, err := store.ListTournaments(ctx, 1)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Newer", all[0].Name)
	assert.Equal(t, "Older", all[1].Name)

	pending, err := store.ListTournamentsWithoutResult(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Newer", pending[0].Name)
}

func TestCurrentVenue(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	venue, err := store.GetCurrentVenue(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, venue)

	require.NoError(t, store.SetCurrentVenue(ctx, 1, "Royal Casino"))
	venue, err = store.GetCurrentVenue(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Royal Casino", venue)

	require.NoError(t, store.SetCurrentVenue(ctx, 1, ""))
	venue, err = store.GetCurrentVenue(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, venue)
}

func TestTicketCache(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	data, err := store.GetTicketCache(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, store.SetTicketCache(ctx, "abc", []byte(`{"data":{}}`)))
	data, err = store.GetTicketCache(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, `{"data":{}}`, string(data))

	n, err := store.PruneTicketCache(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSessionStore_RoundTrip(t *testing.T) {
	sessions := newTestStore(t).Sessions()
	ctx := context.Background()

	empty, err := sessions.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, session.FlowNone, empty.ActiveFlow)

	s := session.New()
	s.Enter(session.FlowEditingTournamentDraft)
	d := sampleDraft("Ticket", 3)
	s.DraftTournament = &d
	s.OCRDraft = &session.OCRDraft{Draft: d, Confidence: 0.8, PreviewID: 77}
	require.NoError(t, sessions.Set(ctx, 5, s))

	got, err := sessions.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, session.FlowEditingTournamentDraft, got.ActiveFlow)
	require.NotNil(t, got.DraftTournament)
	assert.Equal(t, "Ticket", got.DraftTournament.Name)
	assert.True(t, d.Date.Equal(got.DraftTournament.Date))
	assert.Equal(t, 77, got.OCRDraft.PreviewID)

	require.NoError(t, sessions.Clear(ctx, 5))
	got, err = sessions.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, session.FlowNone, got.ActiveFlow)
	assert.Nil(t, got.OCRDraft)
}

func TestSessionStore_PruneStale(t *testing.T) {
	sessions := newTestStore(t).Sessions()
	ctx := context.Background()

	s := session.New()
	s.Enter(session.FlowAddingResult)
	require.NoError(t, sessions.Set(ctx, 1, s))

	n, err := sessions.PruneStale(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	// A negative age puts the cutoff in the future
	n, err = sessions.PruneStale(ctx, -time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := sessions.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, session.FlowNone, got.ActiveFlow)
}
