package maintenance

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type cacheMock struct {
	mock.Mock
}

func (m *cacheMock) PruneTicketCache(ctx context.Context, maxAge time.Duration) (int64, error) {
	args := m.Called(ctx, maxAge)
	return args.Get(0).(int64), args.Error(1)
}

type sessionsMock struct {
	mock.Mock
}

func (m *sessionsMock) PruneStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	args := m.Called(ctx, maxAge)
	return args.Get(0).(int64), args.Error(1)
}

func TestPrune_UsesConfiguredAges(t *testing.T) {
	cache := new(cacheMock)
	sessions := new(sessionsMock)
	cache.On("PruneTicketCache", mock.Anything, TicketCacheMaxAge).Return(int64(3), nil).Once()
	sessions.On("PruneStale", mock.Anything, SessionMaxAge).Return(int64(0), nil).Once()

	NewService(cache, sessions).prune(context.Background())

	cache.AssertExpectations(t)
	sessions.AssertExpectations(t)
}

func TestPrune_CacheFailureStillPrunesSessions(t *testing.T) {
	cache := new(cacheMock)
	sessions := new(sessionsMock)
	cache.On("PruneTicketCache", mock.Anything, mock.Anything).Return(int64(0), errors.New("db locked")).Once()
	sessions.On("PruneStale", mock.Anything, mock.Anything).Return(int64(2), nil).Once()

	NewService(cache, sessions).prune(context.Background())

	sessions.AssertExpectations(t)
}

func TestPrune_WithoutSessionStore(t *testing.T) {
	cache := new(cacheMock)
	cache.On("PruneTicketCache", mock.Anything, mock.Anything).Return(int64(0), nil).Once()

	assert.NotPanics(t, func() {
		NewService(cache, nil).prune(context.Background())
	})
	cache.AssertExpectations(t)
}

func TestRun_PrunesPeriodicallyUntilCancelled(t *testing.T) {
	var cycles atomic.Int32
	cache := new(cacheMock)
	cache.On("PruneTicketCache", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cycles.Add(1) }).
		Return(int64(0), nil)

	s := NewService(cache, nil)
	s.delay = time.Millisecond
	s.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return cycles.Load() >= 2
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_CancelledBeforeFirstCycle(t *testing.T) {
	cache := new(cacheMock)
	s := NewService(cache, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Run(ctx)

	cache.AssertNotCalled(t, "PruneTicketCache", mock.Anything, mock.Anything)
}
