package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/game-platform/services/achievement/internal/domain"
	"github.com/example/game-platform/services/achievement/internal/notifier"
	"github.com/example/game-platform/services/achievement/internal/session"
)

// SyncRequest asks for a full push of a player's achievements, typically
// published by the gateway on login.
type SyncRequest struct {
	EventID  string `json:"event_id"`
	PlayerID string `json:"player_id"`
}

// Syncer is implemented by *notifier.Notifier.
type Syncer interface {
	SynchronizeBatch(ctx context.Context, playerID string) (*notifier.Batch, error)
}

// StartSyncConsumer subscribes to achievement.sync.requested and runs the
// notifier for every request until ctx is cancelled.
func StartSyncConsumer(ctx context.Context, js nats.JetStreamContext, s Syncer, cfg Config, log *zap.Logger) error {
	c, err := newConsumer(js, SubjectSyncRequested, "achievement_sync", syncHandler(s, log), cfg, log)
	if err != nil {
		return err
	}
	go c.Run(ctx)
	return nil
}

func syncHandler(s Syncer, log *zap.Logger) handleFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context, data []byte) outcome {
		var req SyncRequest
		if err := json.Unmarshal(data, &req); err != nil {
			log.Warn("sync request: invalid json", zap.Error(err))
			return term
		}
		req.PlayerID = strings.TrimSpace(req.PlayerID)
		if req.PlayerID == "" {
			log.Warn("sync request: missing player_id", zap.String("event_id", req.EventID))
			return term
		}
		if _, err := s.SynchronizeBatch(ctx, req.PlayerID); err != nil {
			fields := []zap.Field{zap.String("event_id", req.EventID), zap.String("player_id", req.PlayerID), zap.Error(err)}
			switch {
			case errors.Is(err, domain.ErrDefinitionNotFound):
				log.Error("sync request: catalog out of date", fields...)
				return term
			case errors.Is(err, session.ErrInvalidPlayer):
				log.Warn("sync request: unaddressable player", fields...)
				return term
			}
			log.Warn("sync request failed", fields...)
			return nak
		}
		return ack
	}
}
