// Package unread keeps the global unread badge in sync with the message
// collection. The count itself is never cached: every recompute runs the
// store predicate (unread, authored by someone else) and publishes the
// result.
package unread

import (
	"context"
	"time"

	"github.com/sogoba/jokko/internal/bus"
	"github.com/sogoba/jokko/internal/identity"
	"github.com/sogoba/jokko/internal/store"
	"go.uber.org/zap"
)

// Aggregator subscribes to "chat." events on the bus and recomputes the
// current user's unread total after every mutation.
type Aggregator struct {
	db     *store.DB
	ids    identity.Resolver
	bus    *bus.Bus
	logger *zap.Logger
	cancel context.CancelFunc
}

// New creates a new unread aggregator.
func New(db *store.DB, ids identity.Resolver, b *bus.Bus, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{db: db, ids: ids, bus: b, logger: logger}
}

// Start subscribes to chat mutations on the bus.
func (a *Aggregator) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)
	ch, unsub := a.bus.Subscribe("chat.", 256)

	go func() {
		defer unsub()
		for {
			select {
			case <-ch:
				if _, err := a.Recompute(); err != nil {
					a.logger.Error("unread recompute failed", zap.Error(err))
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the aggregator.
func (a *Aggregator) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
}

// Recompute queries the live unread total for the current user and publishes
// it as an unread.changed event. With no resolvable user there is nothing to
// count and nothing is published.
func (a *Aggregator) Recompute() (int, error) {
	me, err := a.ids.CurrentUserID()
	if err != nil {
		return 0, err
	}
	count, err := a.db.CountUnread(me)
	if err != nil {
		return 0, err
	}
	a.bus.Publish(bus.Event{
		Topic:      bus.TopicUnreadChanged,
		OccurredAt: time.Now(),
		Payload:    bus.UnreadChange{UserID: me, Count: count},
	})
	return count, nil
}
