package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("QuizCore API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, deps.DB))

	// Player routes.
	r.Get("/api/teams/{joinToken}", handleTeamLookup(deps.Engine))
	r.Post("/api/join", handleJoin(deps.Engine, deps.Sessions, deps.Broker))
	r.Get("/api/game/state", handleGameState(deps.Engine, deps.Sessions))
	r.Post("/api/game/answer", handleAnswer(deps.Engine, deps.Sessions))
	r.Post("/api/game/powerup", handlePowerUp(deps.Engine, deps.Sessions))
	r.Get("/api/game/events", handleEvents(deps.Broker, deps.Sessions))
	r.Get("/ws/game", handleWSGame(logger, deps.Broker, deps.Sessions))

	// Admin auth.
	r.Post("/api/admin/login", handleAdminLogin(deps.Admin, deps.AdminPasswordHash))
	r.Post("/api/admin/logout", handleAdminLogout(deps.Admin))

	// Operator controls, behind the session cookie.
	r.Group(func(r chi.Router) {
		r.Use(adminAuthMiddleware(deps.Admin))
		r.Get("/api/admin/me", handleAdminMe())
		r.Get("/api/admin/game/events", handleAdminEvents(deps.Broker))
		r.Post("/api/admin/game/start", handleAdminGameStart(deps.Engine))
		r.Post("/api/admin/game/pause", handleAdminGamePause(deps.Engine))
		r.Post("/api/admin/game/resume", handleAdminGameResume(deps.Engine))
		r.Post("/api/admin/game/reset", handleAdminGameReset(deps.Engine))
		r.Get("/api/admin/rules", handleAdminListRules(deps.Engine))
		r.Put("/api/admin/rules", handleAdminToggleRules(deps.Engine))
		r.Put("/api/admin/rules/{id}", handleAdminToggleRule(deps.Engine))
	})

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
