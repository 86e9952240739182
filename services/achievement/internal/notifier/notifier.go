// Package notifier sends a player's full achievement state to their client.
package notifier

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/game-platform/internal/platform/analytics"
	"github.com/example/game-platform/services/achievement/internal/domain"
	"github.com/example/game-platform/services/achievement/internal/session"
	"github.com/example/game-platform/services/achievement/internal/store"
	"github.com/example/game-platform/services/achievement/internal/watch"
	"github.com/example/game-platform/services/achievement/internal/wire"
)

// Catalog looks up definitions. Unknown ids must fail with an error
// matching domain.ErrDefinitionNotFound.
type Catalog interface {
	Get(id uint32) (domain.Definition, error)
}

// Events receives one event per successful synchronization.
type Events interface {
	Publish(subject, eventName, playerID string, props map[string]any)
}

// Batch is everything one synchronization computes.
type Batch struct {
	Entries  []domain.SnapshotEntry
	Watchers *wire.WatcherAllDataNotify
	Snapshot *wire.AchievementAllDataNotify
}

// Notifier pushes a player's achievement snapshot and watcher list to
// their session. It is safe for concurrent use across players.
type Notifier struct {
	store    store.Store
	catalog  Catalog
	sessions session.Directory
	policy   watch.Policy
	log      *zap.Logger
	events   Events
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithPolicy replaces watch.ShouldDeactivate.
func WithPolicy(p watch.Policy) Option {
	return func(n *Notifier) {
		if p != nil {
			n.policy = p
		}
	}
}

// WithLogger sets the logger for send summaries.
func WithLogger(log *zap.Logger) Option {
	return func(n *Notifier) {
		if log != nil {
			n.log = log
		}
	}
}

// WithEvents sets the analytics sink; the default drops events.
func WithEvents(ev Events) Option {
	return func(n *Notifier) {
		if ev != nil {
			n.events = ev
		}
	}
}

// New returns a Notifier using watch.ShouldDeactivate unless WithPolicy
// overrides it.
func New(st store.Store, cat Catalog, sessions session.Directory, opts ...Option) *Notifier {
	n := &Notifier{
		store:    st,
		catalog:  cat,
		sessions: sessions,
		policy:   watch.ShouldDeactivate,
		log:      zap.NewNop(),
		events:   analytics.New(nil, nil),
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Build reads every record of the player, joins it with its definition and
// computes the snapshot and the watcher list. Nothing is sent.
func (n *Notifier) Build(ctx context.Context, playerID string) (*Batch, error) {
	records, err := n.store.ListAll(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("list achievements of player %s: %w", playerID, err)
	}

	b := &Batch{
		Entries:  make([]domain.SnapshotEntry, 0, len(records)),
		Watchers: &wire.WatcherAllDataNotify{WatcherList: []uint32{}},
		Snapshot: &wire.AchievementAllDataNotify{AchievementList: make([]wire.Achievement, 0, len(records))},
	}
	for _, rec := range records {
		def, err := n.catalog.Get(rec.ID)
		if err != nil {
			return nil, fmt.Errorf("player %s: %w", playerID, err)
		}
		entry := domain.NewSnapshotEntry(rec, def)
		b.Entries = append(b.Entries, entry)
		b.Snapshot.AchievementList = append(b.Snapshot.AchievementList, wire.AchievementFromEntry(entry))
		if n.policy(rec, def) {
			b.Watchers.WatcherList = append(b.Watchers.WatcherList, rec.ID)
		}
	}
	return b, nil
}

// Synchronize builds the batch and sends the watcher list followed by the
// snapshot. Both packets go out in a single Send, so a failure means the
// client received neither.
func (n *Notifier) Synchronize(ctx context.Context, playerID string) (*wire.AchievementAllDataNotify, *wire.WatcherAllDataNotify, error) {
	b, err := n.SynchronizeBatch(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}
	return b.Snapshot, b.Watchers, nil
}

// SynchronizeBatch is Synchronize returning the full Batch.
func (n *Notifier) SynchronizeBatch(ctx context.Context, playerID string) (*Batch, error) {
	b, err := n.Build(ctx, playerID)
	if err != nil {
		return nil, err
	}
	sess, err := n.sessions.Session(playerID)
	if err != nil {
		return nil, fmt.Errorf("resolve session of player %s: %w", playerID, err)
	}
	if err := sess.Send(ctx, b.Watchers, b.Snapshot); err != nil {
		return nil, err
	}

	watchers, total := len(b.Watchers.WatcherList), len(b.Entries)
	n.log.Info("achievement data sent",
		zap.String("player_id", playerID),
		zap.Int("watchers", watchers),
		zap.Int("total", total),
	)
	n.events.Publish(analytics.SubjectAchievementSynced, "achievement_synced", playerID, map[string]any{
		"watchers": watchers,
		"total":    total,
	})
	return b, nil
}
