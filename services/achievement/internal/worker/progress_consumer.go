package worker

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/game-platform/internal/platform/analytics"
	"github.com/example/game-platform/services/achievement/internal/store"
)

// ProgressEvent is published by gameplay services when a player advances
// an achievement.
type ProgressEvent struct {
	EventID       string `json:"event_id"`
	PlayerID      string `json:"player_id"`
	AchievementID uint32 `json:"achievement_id"`
	Progress      uint32 `json:"progress"`
	Finished      bool   `json:"finished"`
	Rewarded      bool   `json:"rewarded,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}

// Events receives one analytics event per applied progress update.
type Events interface {
	Publish(subject, eventName, playerID string, props map[string]any)
}

// StartProgressConsumer subscribes to achievement.progress and folds every
// event into the store until ctx is cancelled.
func StartProgressConsumer(ctx context.Context, js nats.JetStreamContext, w store.Writer, ev Events, cfg Config, log *zap.Logger) error {
	c, err := newConsumer(js, SubjectProgress, "achievement_progress", progressHandler(w, ev, log), cfg, log)
	if err != nil {
		return err
	}
	go c.Run(ctx)
	return nil
}

func progressHandler(w store.Writer, ev Events, log *zap.Logger) handleFunc {
	if log == nil {
		log = zap.NewNop()
	}
	if ev == nil {
		ev = analytics.New(nil, nil)
	}
	return func(ctx context.Context, data []byte) outcome {
		var e ProgressEvent
		if err := json.Unmarshal(data, &e); err != nil {
			log.Warn("progress: invalid json", zap.Error(err))
			return term
		}
		e.PlayerID = strings.TrimSpace(e.PlayerID)
		if e.PlayerID == "" || e.AchievementID == 0 {
			log.Warn("progress: missing player_id or achievement_id", zap.String("event_id", e.EventID))
			return term
		}

		rec, err := w.Apply(ctx, e.PlayerID, store.Update{
			AchievementID: e.AchievementID,
			Progress:      e.Progress,
			Finished:      e.Finished,
			Rewarded:      e.Rewarded,
			OccurredAt:    occurredAt(e.OccurredAt),
		})
		if err != nil {
			log.Warn("progress: apply failed",
				zap.String("event_id", e.EventID),
				zap.String("player_id", e.PlayerID),
				zap.Uint32("achievement_id", e.AchievementID),
				zap.Error(err))
			return nak
		}

		ev.Publish(analytics.SubjectAchievementProgress, "achievement_progress", e.PlayerID, map[string]any{
			"achievement_id": rec.ID,
			"status":         rec.Status.String(),
			"progress":       rec.CurrentProgress,
		})
		return ack
	}
}

// occurredAt parses an RFC 3339 timestamp and falls back to now.
func occurredAt(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(s)); err == nil {
		return t.UTC()
	}
	return time.Now().UTC()
}
