// Package maintenance runs periodic housekeeping on the bot's local database.
package maintenance

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// PruneInterval is the time between cleanup cycles.
	PruneInterval = 24 * time.Hour

	// StartupDelay lets the bot start before the first cycle.
	StartupDelay = 5 * time.Second

	// TicketCacheMaxAge is how long recognized tickets stay cached.
	TicketCacheMaxAge = 30 * 24 * time.Hour

	// SessionMaxAge is how long an untouched session is kept.
	SessionMaxAge = 7 * 24 * time.Hour
)

// TicketCache is the cache of ticket recognition results.
type TicketCache interface {
	PruneTicketCache(ctx context.Context, maxAge time.Duration) (int64, error)
}

// SessionPruner removes stale conversation sessions.
type SessionPruner interface {
	PruneStale(ctx context.Context, maxAge time.Duration) (int64, error)
}

// Service prunes old cache entries and abandoned sessions.
type Service struct {
	cache    TicketCache
	sessions SessionPruner
	interval time.Duration
	delay    time.Duration
}

// NewService creates a maintenance service. sessions may be nil when
// sessions are not persisted.
func NewService(cache TicketCache, sessions SessionPruner) *Service {
	return &Service{
		cache:    cache,
		sessions: sessions,
		interval: PruneInterval,
		delay:    StartupDelay,
	}
}

// Run starts the cleanup loop. It blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) {
	log.Info().Dur("interval", s.interval).Msg("starting maintenance service")

	select {
	case <-ctx.Done():
		return
	case <-time.After(s.delay):
	}
	s.prune(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("maintenance service stopped")
			return
		case <-ticker.C:
			s.prune(ctx)
		}
	}
}

// prune executes one cleanup cycle. Failures are logged and retried on the
// next cycle.
func (s *Service) prune(ctx context.Context) {
	if s.cache != nil {
		n, err := s.cache.PruneTicketCache(ctx, TicketCacheMaxAge)
		if err != nil {
			log.Error().Err(err).Msg("failed to prune ticket cache")
		} else if n > 0 {
			log.Info().Int64("count", n).Msg("pruned ticket cache entries")
		}
	}

	if s.sessions != nil {
		n, err := s.sessions.PruneStale(ctx, SessionMaxAge)
		if err != nil {
			log.Error().Err(err).Msg("failed to prune sessions")
		} else if n > 0 {
			log.Info().Int64("count", n).Msg("pruned stale sessions")
		}
	}
}
