package grpcapi

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/example/game-platform/services/achievement/internal/notifier"
)

// Synchronizer is implemented by *notifier.Notifier.
type Synchronizer interface {
	Build(ctx context.Context, playerID string) (*notifier.Batch, error)
	SynchronizeBatch(ctx context.Context, playerID string) (*notifier.Batch, error)
}

type AchievementService struct {
	Notifier Synchronizer
	Log      *zap.Logger
}

// SyncAchievements pushes the player's achievements to their client and
// returns what was sent.
func (s *AchievementService) SyncAchievements(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	playerID := strings.TrimSpace(req.GetValue())
	if playerID == "" {
		return nil, errInvalidArgument("MISSING_PLAYER_ID", "player_id is required", map[string]string{"value": "must not be empty"})
	}
	b, err := s.Notifier.SynchronizeBatch(ctx, playerID)
	if err != nil {
		s.logger().Error("sync achievements", zap.String("player_id", playerID), zap.Error(err))
		return nil, toStatus(err)
	}
	return batchToStruct(playerID, b)
}

// GetSnapshot returns what SyncAchievements would send without sending it.
func (s *AchievementService) GetSnapshot(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	playerID := strings.TrimSpace(req.GetValue())
	if playerID == "" {
		return nil, errInvalidArgument("MISSING_PLAYER_ID", "player_id is required", map[string]string{"value": "must not be empty"})
	}
	b, err := s.Notifier.Build(ctx, playerID)
	if err != nil {
		s.logger().Error("build snapshot", zap.String("player_id", playerID), zap.Error(err))
		return nil, toStatus(err)
	}
	return batchToStruct(playerID, b)
}

func (s *AchievementService) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func batchToStruct(playerID string, b *notifier.Batch) (*structpb.Struct, error) {
	achievements := make([]any, 0, len(b.Snapshot.AchievementList))
	for _, a := range b.Snapshot.AchievementList {
		achievements = append(achievements, map[string]any{
			"id":               a.ID,
			"status":           int32(a.Status),
			"cur_progress":     a.CurProgress,
			"total_progress":   a.TotalProgress,
			"finish_timestamp": a.FinishTimestamp,
		})
	}
	watchers := make([]any, 0, len(b.Watchers.WatcherList))
	for _, id := range b.Watchers.WatcherList {
		watchers = append(watchers, id)
	}
	out, err := structpb.NewStruct(map[string]any{
		"player_id":    playerID,
		"achievements": achievements,
		"watchers":     watchers,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return out, nil
}
