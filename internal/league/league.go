// Package league runs Saturday sessions on top of the fixture engine: it
// persists sessions, records results and goals, and derives standings and
// season statistics.
package league

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"saturday-league/internal/store"
)

var (
	ErrNotFound         = store.ErrNotFound
	ErrGameCompleted    = errors.New("game already completed")
	ErrSessionCompleted = errors.New("session already completed")
)

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Cache holds derived read models keyed by string. Implementations must treat
// a missing key as (false, nil).
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Archiver stores encoded session snapshots outside the database.
type Archiver interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

type Options struct {
	Cache    Cache
	Archiver Archiver
	CacheTTL time.Duration
	Logger   *slog.Logger
	Now      func() time.Time
}

type Service struct {
	store    store.Store
	cache    Cache
	archiver Archiver
	cacheTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(st store.Store, opts Options) *Service {
	svc := &Service{
		store:    st,
		cache:    opts.Cache,
		archiver: opts.Archiver,
		cacheTTL: opts.CacheTTL,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if svc.cache == nil {
		svc.cache = noCache{}
	}
	if svc.cacheTTL <= 0 {
		svc.cacheTTL = 5 * time.Minute
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

func scoreboardKey(seasonID string) string {
	return "scoreboard:" + seasonID
}

const seasonsKey = "seasons"

// invalidate drops the cached read models a write to seasonID can change.
// Cache failures are logged, never returned: the store is the source of truth.
func (s *Service) invalidate(ctx context.Context, seasonID string) {
	if err := s.cache.Delete(ctx, scoreboardKey(seasonID), seasonsKey); err != nil {
		s.logger.Warn("cache invalidate failed", "season_id", seasonID, "err", err)
	}
}

type noCache struct{}

func (noCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (noCache) Set(context.Context, string, any, time.Duration) error { return nil }
func (noCache) Delete(context.Context, ...string) error { return nil }
