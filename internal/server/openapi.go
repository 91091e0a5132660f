package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthCheck is one dependency's health.
type HealthCheck struct {
	Status string `json:"status"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "QuizCore API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the team quiz game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(map[string]HealthCheck{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(map[string]HealthCheck{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/teams/{joinToken}
	getTeam, _ := r.NewOperationContext(http.MethodGet, "/api/teams/{joinToken}")
	getTeam.SetSummary("Look up team")
	getTeam.SetDescription("Look up a team by its join token before joining.")
	getTeam.AddRespStructure(TeamLookupResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getTeam.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getTeam)

	// POST /api/join
	postJoin, _ := r.NewOperationContext(http.MethodPost, "/api/join")
	postJoin.SetSummary("Join a team")
	postJoin.SetDescription("Player joins a team using the join token. Returns a session token.")
	postJoin.AddReqStructure(JoinRequest{})
	postJoin.AddRespStructure(JoinResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postJoin)

	// GET /api/game/state
	getState, _ := r.NewOperationContext(http.MethodGet, "/api/game/state")
	getState.SetSummary("Get game state")
	getState.SetDescription("Returns the session snapshot for the player's team. Requires Bearer token.")
	getState.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getState.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getState)

	// POST /api/game/answer
	postAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/game/answer")
	postAnswer.SetSummary("Submit answer")
	postAnswer.SetDescription("Submit an answer for the current question. Requires Bearer token.")
	postAnswer.AddReqStructure(AnswerRequest{})
	postAnswer.AddRespStructure(AnswerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postAnswer)

	// POST /api/game/powerup
	postPowerUp, _ := r.NewOperationContext(http.MethodPost, "/api/game/powerup")
	postPowerUp.SetSummary("Activate power-up")
	postPowerUp.SetDescription("Activate a catalog power-up for the player's team. Requires Bearer token.")
	postPowerUp.AddReqStructure(PowerUpRequest{})
	postPowerUp.AddRespStructure(PowerUpResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postPowerUp.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postPowerUp.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postPowerUp)

	// GET /api/game/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/game/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of game events for the player's team. Pass token as query parameter.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /ws/game
	getWS, _ := r.NewOperationContext(http.MethodGet, "/ws/game")
	getWS.SetSummary("WebSocket event stream")
	getWS.SetDescription("Upgrades to a WebSocket that streams game events. Pass token as query parameter.")
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWS)

	// POST /api/admin/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/admin/login")
	postLogin.SetSummary("Admin login")
	postLogin.SetDescription("Authenticate with the operator password. Sets admin_session cookie.")
	postLogin.AddReqStructure(AdminLoginRequest{})
	postLogin.AddRespStructure(AdminStatusResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postLogin)

	// POST /api/admin/logout
	postLogout, _ := r.NewOperationContext(http.MethodPost, "/api/admin/logout")
	postLogout.SetSummary("Admin logout")
	postLogout.SetDescription("Clears admin session and cookie.")
	postLogout.AddRespStructure(AdminStatusResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postLogout)

	// GET /api/admin/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/admin/me")
	getMe.SetSummary("Current admin")
	getMe.SetDescription("Confirms the admin session. Requires admin_session cookie.")
	getMe.AddRespStructure(AdminStatusResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// GET /api/admin/game/events
	getAdminEvents, _ := r.NewOperationContext(http.MethodGet, "/api/admin/game/events")
	getAdminEvents.SetSummary("All-event SSE stream")
	getAdminEvents.SetDescription("Server-Sent Events stream of every game event. Requires admin_session cookie.")
	getAdminEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getAdminEvents)

	// Game lifecycle controls.
	for _, action := range []struct {
		path, summary, desc string
	}{
		{"/api/admin/game/start", "Start game", "Moves the session into play and starts the mode timers."},
		{"/api/admin/game/pause", "Pause game", "Freezes play and all timers."},
		{"/api/admin/game/resume", "Resume game", "Resumes a paused session."},
		{"/api/admin/game/reset", "Reset game", "Returns the session to setup with fresh scores and timers."},
	} {
		op, _ := r.NewOperationContext(http.MethodPost, action.path)
		op.SetSummary(action.summary)
		op.SetDescription(action.desc + " Requires admin_session cookie.")
		op.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
		op.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
		op.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
		_ = r.AddOperation(op)
	}

	// GET /api/admin/rules
	listRules, _ := r.NewOperationContext(http.MethodGet, "/api/admin/rules")
	listRules.SetSummary("List rules")
	listRules.SetDescription("Returns loaded rules with their effective enabled state. Requires admin_session cookie.")
	listRules.AddRespStructure([]AdminRuleItem{}, openapi.WithHTTPStatus(http.StatusOK))
	listRules.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(listRules)

	// PUT /api/admin/rules
	toggleRules, _ := r.NewOperationContext(http.MethodPut, "/api/admin/rules")
	toggleRules.SetSummary("Toggle rule engine")
	toggleRules.SetDescription("Enables or disables all rule processing. Requires admin_session cookie.")
	toggleRules.AddReqStructure(AdminRuleToggleRequest{})
	toggleRules.AddRespStructure(AdminStatusResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	toggleRules.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(toggleRules)

	// PUT /api/admin/rules/{id}
	toggleRule, _ := r.NewOperationContext(http.MethodPut, "/api/admin/rules/{id}")
	toggleRule.SetSummary("Toggle rule")
	toggleRule.SetDescription("Enables or disables one rule. Requires admin_session cookie.")
	toggleRule.AddReqStructure(AdminRuleToggleRequest{})
	toggleRule.AddRespStructure(AdminStatusResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	toggleRule.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	toggleRule.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(toggleRule)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
