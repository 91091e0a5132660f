package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/playperu/quizcore/internal/engine"
	"github.com/playperu/quizcore/internal/quiz"
)

// AdminLoginRequest is the request body for POST /api/admin/login. One
// shared operator password; the hash comes from configuration.
type AdminLoginRequest struct {
	Password string `json:"password"`
}

type AdminStatusResponse struct {
	Status string `json:"status"`
}

func handleAdminLogin(admin *AdminSessions, passwordHash string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminLoginRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Password == "" {
			writeError(w, http.StatusBadRequest, "password is required")
			return
		}
		if passwordHash == "" {
			writeError(w, http.StatusUnauthorized, "admin login disabled")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     adminCookieName,
			Value:    admin.Create(),
			Path:     "/",
			MaxAge:   int(7 * 24 * time.Hour / time.Second),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		writeJSON(w, http.StatusOK, AdminStatusResponse{Status: "ok"})
	}
}

func handleAdminLogout(admin *AdminSessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(adminCookieName)
		if err == nil && cookie.Value != "" {
			admin.Delete(cookie.Value)
		}

		http.SetCookie(w, &http.Cookie{
			Name:     adminCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		writeJSON(w, http.StatusOK, AdminStatusResponse{Status: "ok"})
	}
}

func handleAdminMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, AdminStatusResponse{Status: "ok"})
	}
}

// Game lifecycle controls. Each responds with the fresh snapshot so the
// dashboard can render without a second round trip.

func handleAdminGameStart(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := eng.Start(); err != nil {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, stateResponse(eng))
	}
}

func handleAdminGamePause(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eng.Pause()
		writeJSON(w, http.StatusOK, stateResponse(eng))
	}
}

func handleAdminGameResume(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eng.Resume()
		writeJSON(w, http.StatusOK, stateResponse(eng))
	}
}

func handleAdminGameReset(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := eng.Reset(); err != nil {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, stateResponse(eng))
	}
}

// Rule controls.

type AdminRuleItem struct {
	ID           string `json:"id"`
	TriggerEvent string `json:"triggerEvent"`
	Priority     int    `json:"priority"`
	Enabled      bool   `json:"enabled"`
}

type AdminRuleToggleRequest struct {
	Enabled bool `json:"enabled"`
}

func ruleItems(rules []quiz.RuleDef) []AdminRuleItem {
	items := make([]AdminRuleItem, 0, len(rules))
	for _, rule := range rules {
		items = append(items, AdminRuleItem{
			ID:           rule.ID,
			TriggerEvent: rule.TriggerEvent,
			Priority:     rule.Priority,
			Enabled:      rule.IsEnabled(),
		})
	}
	return items
}

func handleAdminListRules(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ruleItems(eng.Rules()))
	}
}

func handleAdminToggleRules(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminRuleToggleRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		eng.SetRulesEnabled(req.Enabled)
		writeJSON(w, http.StatusOK, AdminStatusResponse{Status: "ok"})
	}
}

func handleAdminToggleRule(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminRuleToggleRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if !eng.SetRuleEnabled(chi.URLParam(r, "id"), req.Enabled) {
			writeError(w, http.StatusNotFound, "rule not found")
			return
		}
		writeJSON(w, http.StatusOK, AdminStatusResponse{Status: "ok"})
	}
}
