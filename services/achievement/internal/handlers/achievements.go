package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/game-platform/internal/platform/api"
	"github.com/example/game-platform/internal/platform/auth"
	"github.com/example/game-platform/internal/platform/httpserver"
	"github.com/example/game-platform/services/achievement/internal/domain"
	"github.com/example/game-platform/services/achievement/internal/notifier"
	"github.com/example/game-platform/services/achievement/internal/session"
)

// Synchronizer is implemented by *notifier.Notifier.
type Synchronizer interface {
	Build(ctx context.Context, playerID string) (*notifier.Batch, error)
	SynchronizeBatch(ctx context.Context, playerID string) (*notifier.Batch, error)
}

type achievementJSON struct {
	ID              uint32     `json:"id"`
	Status          string     `json:"status"`
	CurrentProgress uint32     `json:"current_progress"`
	TotalProgress   uint32     `json:"total_progress"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
}

type snapshotResponse struct {
	PlayerID     string            `json:"player_id"`
	Achievements []achievementJSON `json:"achievements"`
	Watchers     []uint32          `json:"watchers"`
}

// GetSnapshot returns the caller's snapshot without pushing it.
func GetSnapshot(s Synchronizer, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		playerID, ok := auth.PlayerIDFromContext(r.Context())
		if !ok || strings.TrimSpace(playerID) == "" {
			api.Unauthorized(w, "UNAUTHENTICATED", "player is required", rid)
			return
		}
		b, err := s.Build(r.Context(), playerID)
		if err != nil {
			log.Error("build snapshot", zap.String("player_id", playerID), httpserver.RequestIDField(r.Context()), zap.Error(err))
			writeSyncError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, toResponse(playerID, b))
	}
}

// SyncSelf pushes the caller's achievements to their game client.
func SyncSelf(s Synchronizer, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, _ := auth.PlayerIDFromContext(r.Context())
		pushAchievements(w, r, s, log, playerID)
	}
}

// SyncPlayer lets an admin push the achievements of any player.
func SyncPlayer(s Synchronizer, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pushAchievements(w, r, s, log, chi.URLParam(r, "player_id"))
	}
}

func pushAchievements(w http.ResponseWriter, r *http.Request, s Synchronizer, log *zap.Logger, playerID string) {
	rid := httpserver.RequestIDFromContext(r.Context())
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		api.BadRequest(w, "MISSING_PLAYER_ID", "player_id is required", rid, nil)
		return
	}
	b, err := s.SynchronizeBatch(r.Context(), playerID)
	if err != nil {
		log.Error("sync achievements", zap.String("player_id", playerID), httpserver.RequestIDField(r.Context()), zap.Error(err))
		writeSyncError(w, rid, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, toResponse(playerID, b))
}

func writeSyncError(w http.ResponseWriter, rid string, err error) {
	var dnf *domain.DefinitionNotFoundError
	var te *session.TransportError
	switch {
	case errors.As(err, &dnf):
		api.Unprocessable(w, "DEFINITION_NOT_FOUND", "achievement definition missing from catalog", rid,
			map[string]any{"achievement_id": dnf.ID})
	case errors.Is(err, session.ErrInvalidPlayer):
		api.BadRequest(w, "INVALID_PLAYER_ID", "player_id cannot be addressed", rid, nil)
	case errors.As(err, &te):
		api.Unavailable(w, "TRANSPORT_UNAVAILABLE", "player session unavailable", rid)
	default:
		api.Internal(w, rid)
	}
}

func toResponse(playerID string, b *notifier.Batch) snapshotResponse {
	resp := snapshotResponse{
		PlayerID:     playerID,
		Achievements: make([]achievementJSON, 0, len(b.Entries)),
		Watchers:     b.Watchers.WatcherList,
	}
	if resp.Watchers == nil {
		resp.Watchers = []uint32{}
	}
	for _, e := range b.Entries {
		resp.Achievements = append(resp.Achievements, achievementJSON{
			ID:              e.ID,
			Status:          e.Status.String(),
			CurrentProgress: e.CurrentProgress,
			TotalProgress:   e.TotalProgress,
			FinishedAt:      e.FinishedAt,
		})
	}
	return resp
}
