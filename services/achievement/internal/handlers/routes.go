package handlers

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/game-platform/internal/platform/auth"
)

// Mount registers the achievement routes on r. r must already carry the
// platform middlewares (httpserver.SetupRouter).
func Mount(r chi.Router, s Synchronizer, verifier auth.JWTVerifier, log *zap.Logger) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(verifier))
		r.Get("/v1/achievements", GetSnapshot(s, log))
		r.Post("/v1/achievements/sync", SyncSelf(s, log))

		r.With(auth.RequireAdmin).Post("/v1/admin/players/{player_id}/achievements/sync", SyncPlayer(s, log))
	})
}
