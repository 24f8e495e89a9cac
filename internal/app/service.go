// Package app wires the posture pipeline together behind one facade:
// payload guarding, rate limiting, angle computation, storage, live
// fan-out, identity and durable snapshots. HTTP handlers talk to this
// package only.
package app

import (
	"context"
	"time"

	"github.com/okian/upright/internal/adapters/broadcast"
	"github.com/okian/upright/internal/adapters/repository"
	"github.com/okian/upright/internal/adapters/snapshot"
	"github.com/okian/upright/internal/auth"
	"github.com/okian/upright/internal/config"
	"github.com/okian/upright/internal/domain/payload"
	"github.com/okian/upright/internal/domain/ratelimit"
	"github.com/okian/upright/pkg/logger"
)

// Service is the application facade. Construct with New, then Start
// before serving and Stop on shutdown.
type Service struct {
	cfg     *config.Config
	store   repository.Store
	guard   *payload.Guard
	limiter *ratelimit.Limiter
	feed    *broadcast.Feed
	tokens  *auth.Manager
	writer  *snapshot.Writer
	log     logger.Logger

	cancel context.CancelFunc
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithStore injects a state store. Defaults to a fresh MemStore.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithAuthManager injects a credential manager. Tests lower the bcrypt
// cost through this.
func WithAuthManager(m *auth.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.tokens = m
		}
	}
}

// WithLimiter injects an admission limiter with a test clock.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(s *Service) {
		if l != nil {
			s.limiter = l
		}
	}
}

// New creates the service from cfg. Components not injected through
// options are built from the corresponding config fields.
func New(cfg *config.Config, opts ...Option) *Service {
	s := &Service{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("app")
	}
	if s.store == nil {
		s.store = repository.NewMemStore()
	}
	if s.guard == nil {
		s.guard = payload.NewGuard(payload.WithMaxStringLen(cfg.MaxStringLen))
	}
	if s.limiter == nil {
		s.limiter = ratelimit.NewLimiter(
			ratelimit.WithMaxPerWindow(cfg.RateLimitPerSecond),
			ratelimit.WithWindowCap(cfg.RateLimitWindowCap),
		)
	}
	if s.feed == nil {
		s.feed = broadcast.NewFeed(
			broadcast.WithHistorySize(cfg.FeedHistorySize),
			broadcast.WithReplayCount(cfg.FeedReplayCount),
			broadcast.WithSubscriberBuffer(cfg.FeedSubscriberBuffer),
		)
	}
	if s.tokens == nil {
		s.tokens = auth.NewManager(cfg.JWTSecret,
			auth.WithTokenTTL(time.Duration(cfg.TokenTTLHours)*time.Hour))
	}
	if s.writer == nil {
		s.writer = snapshot.NewWriter(s.store,
			snapshot.WithPath(cfg.DataFile),
			snapshot.WithEnabled(cfg.PersistSnapshots),
			snapshot.WithLogger(s.log.Named("snapshot")),
		)
	}
	return s
}

// Start restores persisted state and launches the snapshot flusher.
func (s *Service) Start(ctx context.Context) error {
	if err := s.writer.Load(ctx); err != nil {
		return err
	}
	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.writer.Run(runCtx)
	s.log.Info(ctx, "service started")
	return nil
}

// Stop flushes the final snapshot and drops all feed subscribers.
func (s *Service) Stop(ctx context.Context) {
	if s.cancel != nil {
		s.cancel()
		s.writer.Wait()
	}
	s.feed.Close()
	s.log.Info(ctx, "service stopped")
}

// Stats reports live service counters.
func (s *Service) Stats(ctx context.Context) map[string]any {
	users, sessions, events := s.store.Counts(ctx)
	return map[string]any{
		"users":            users,
		"sessions":         sessions,
		"events":           events,
		"feed_subscribers": s.feed.Subscribers(),
		"feed_buffered":    len(s.feed.History()),
		"limited_sessions": s.limiter.Sessions(),
	}
}

// Subscribe attaches a live feed observer.
func (s *Service) Subscribe() *broadcast.Subscription {
	return s.feed.Subscribe()
}

// Unsubscribe detaches a live feed observer.
func (s *Service) Unsubscribe(id string) {
	s.feed.Unsubscribe(id)
}
