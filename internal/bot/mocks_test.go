package bot

import (
	"context"
	"sync"
	"testing"

	"github.com/pokerlog/telegram-poker-bot/internal/ocr"
	"github.com/pokerlog/telegram-poker-bot/internal/session"
	"github.com/pokerlog/telegram-poker-bot/internal/tournament"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type storeMock struct {
	mock.Mock
}

func (m *storeMock) CreateTournament(ctx context.Context, userID int64, d tournament.Draft) (*tournament.Tournament, error) {
	args := m.Called(ctx, userID, d)
	if fn, ok := args.Get(0).(func(int64, tournament.Draft) *tournament.Tournament); ok {
		return fn(userID, d), args.Error(1)
	}
	t, _ := args.Get(0).(*tournament.Tournament)
	return t, args.Error(1)
}

func (m *storeMock) GetTournament(ctx context.Context, id string) (*tournament.Tournament, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*tournament.Tournament)
	return t, args.Error(1)
}

func (m *storeMock) ListTournaments(ctx context.Context, userID int64) ([]tournament.Tournament, error) {
	args := m.Called(ctx, userID)
	ts, _ := args.Get(0).([]tournament.Tournament)
	return ts, args.Error(1)
}

func (m *storeMock) ListTournamentsWithoutResult(ctx context.Context, userID int64) ([]tournament.Tournament, error) {
	args := m.Called(ctx, userID)
	ts, _ := args.Get(0).([]tournament.Tournament)
	return ts, args.Error(1)
}

func (m *storeMock) SetTournamentResult(ctx context.Context, id string, r tournament.Result) (*tournament.Tournament, error) {
	args := m.Called(ctx, id, r)
	t, _ := args.Get(0).(*tournament.Tournament)
	return t, args.Error(1)
}

type ticketReaderMock struct {
	mock.Mock
}

func (m *ticketReaderMock) ExtractTicketData(ctx context.Context, imageURL string) (*ocr.Result, error) {
	args := m.Called(ctx, imageURL)
	res, _ := args.Get(0).(*ocr.Result)
	return res, args.Error(1)
}

type fakeVenues struct {
	mu     sync.Mutex
	venues map[int64]string
	err    error
}

func (f *fakeVenues) GetCurrentVenue(_ context.Context, userID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.venues[userID], nil
}

func (f *fakeVenues) SetCurrentVenue(_ context.Context, userID int64, venue string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.venues[userID] = venue
	return nil
}

type sentMessage struct {
	ChatID    int64
	MessageID int
	Text      string
	Opts      MessageOptions
}

// recordingDelivery records everything the engine sends. Message ids start
// at 1000 so they are distinguishable from zero.
type recordingDelivery struct {
	mu    sync.Mutex
	sent  []sentMessage
	edits []sentMessage
	acks  []string
}

func newRecordingDelivery() *recordingDelivery {
	return &recordingDelivery{}
}

func (d *recordingDelivery) SendMessage(_ context.Context, chatID int64, text string, opts MessageOptions) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := 1000 + len(d.sent)
	d.sent = append(d.sent, sentMessage{ChatID: chatID, MessageID: id, Text: text, Opts: opts})
	return id, nil
}

func (d *recordingDelivery) EditMessage(_ context.Context, chatID int64, messageID int, text string, opts MessageOptions) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.edits = append(d.edits, sentMessage{ChatID: chatID, MessageID: messageID, Text: text, Opts: opts})
	return nil
}

func (d *recordingDelivery) AcknowledgeButton(_ context.Context, callbackID, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.acks = append(d.acks, callbackID)
	return nil
}

func (d *recordingDelivery) ResolveMediaLink(_ context.Context, fileID string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return "https://files.example/" + fileID + ".jpg", nil
}

func (d *recordingDelivery) messages() []sentMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]sentMessage, len(d.sent))
	copy(out, d.sent)
	return out
}

func (d *recordingDelivery) lastText() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.sent) == 0 {
		return ""
	}
	return d.sent[len(d.sent)-1].Text
}

func (d *recordingDelivery) editsTo(messageID int) []sentMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []sentMessage
	for _, e := range d.edits {
		if e.MessageID == messageID {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	engine   *Engine
	store    *storeMock
	tickets  *ticketReaderMock
	venues   *fakeVenues
	delivery *recordingDelivery
	sessions *session.MemoryStore
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	env := &testEnv{
		store:    new(storeMock),
		tickets:  new(ticketReaderMock),
		venues:   &fakeVenues{venues: make(map[int64]string)},
		delivery: newRecordingDelivery(),
		sessions: session.NewMemoryStore(),
	}
	env.engine = New(Deps{
		Tournaments: env.store,
		Venues:      env.venues,
		Tickets:     env.tickets,
		Delivery:    env.delivery,
		Sessions:    env.sessions,
	}, opts...)
	t.Cleanup(env.engine.Shutdown)
	return env
}

func (env *testEnv) command(userID int64, text string) {
	env.engine.HandleIncomingUpdateSync(context.Background(), Update{UserID: userID, ChatID: userID, Kind: KindCommand, Payload: text})
}

func (env *testEnv) text(userID int64, text string) {
	env.engine.HandleIncomingUpdateSync(context.Background(), Update{UserID: userID, ChatID: userID, Kind: KindText, Payload: text})
}

func (env *testEnv) press(userID int64, data string) {
	env.engine.HandleIncomingUpdateSync(context.Background(), Update{
		UserID: userID, ChatID: userID, Kind: KindButton, Payload: data, CallbackID: "cb-" + data,
	})
}

func (env *testEnv) photo(userID int64, fileID string) {
	env.engine.HandleIncomingUpdateSync(context.Background(), Update{UserID: userID, ChatID: userID, Kind: KindPhoto, FileID: fileID})
}

func (env *testEnv) sessionOf(t *testing.T, userID int64) *session.Session {
	s, err := env.sessions.Get(context.Background(), userID)
	require.NoError(t, err)
	return s
}

func (env *testEnv) setSession(t *testing.T, userID int64, s *session.Session) {
	require.NoError(t, env.sessions.Set(context.Background(), userID, s))
}
