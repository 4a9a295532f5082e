// Package app composes the messaging core with fx: one store handle, one
// bus, one identity resolver, constructed once and injected everywhere.
package app

import (
	"context"

	"github.com/sogoba/jokko/internal/bus"
	"github.com/sogoba/jokko/internal/chat"
	"github.com/sogoba/jokko/internal/identity"
	"github.com/sogoba/jokko/internal/lock"
	"github.com/sogoba/jokko/internal/logging"
	"github.com/sogoba/jokko/internal/profile"
	"github.com/sogoba/jokko/internal/store"
	"github.com/sogoba/jokko/internal/unread"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	Profile string
	UserID  string // optional override; empty = resolve from env/config
	DBPath  string // optional override for testing; empty = profile default
}

// Module returns the fx module for the client, composing all providers and
// lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("jokko",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideIdentity,
			provideLock,
			provideStore,
			provideChatService,
			provideAggregator,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(profile.LogPath(p.Profile), p.Profile)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideIdentity(p Params) identity.Resolver {
	return identity.FromConfig(p.UserID, profile.ConfigPath())
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := profile.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.Profile))
	l, err := lock.Acquire(profile.LockPath(p.Profile))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

func provideStore(p Params, logger *zap.Logger) (*store.DB, error) {
	dbPath := p.DBPath
	if dbPath == "" {
		dbPath = profile.DBPath(p.Profile)
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideChatService(db *store.DB, ids identity.Resolver, b *bus.Bus, logger *zap.Logger) *chat.Service {
	return chat.NewService(db, ids, b, logger)
}

func provideAggregator(db *store.DB, ids identity.Resolver, b *bus.Bus, logger *zap.Logger) *unread.Aggregator {
	return unread.New(db, ids, b, logger)
}

func registerLifecycle(lc fx.Lifecycle, lk *lock.Lock, db *store.DB, agg *unread.Aggregator, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// The aggregator follows every chat mutation on the bus.
			agg.Start(context.Background())
			return nil
		},
		OnStop: func(_ context.Context) error {
			agg.Stop()
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("client stopped")
			return nil
		},
	})
}
