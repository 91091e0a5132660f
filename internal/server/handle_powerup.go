package server

import (
	"errors"
	"net/http"

	"github.com/playperu/quizcore/internal/engine"
)

type PowerUpRequest struct {
	TypeID string `json:"typeId"`
}

type PowerUpResponse struct {
	InstanceID string `json:"instanceId"`
}

func handlePowerUp(eng *engine.Engine, sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := playerFromRequest(r, sessions)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		var req PowerUpRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.TypeID == "" {
			writeError(w, http.StatusBadRequest, "typeId is required")
			return
		}

		id, err := eng.ActivatePowerUp(req.TypeID, sess.TeamID)
		switch {
		case errors.Is(err, engine.ErrUnknownPowerUp):
			writeError(w, http.StatusNotFound, "unknown power-up")
			return
		case errors.Is(err, engine.ErrUnknownTeam):
			writeError(w, http.StatusUnauthorized, "team no longer in the game")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, PowerUpResponse{InstanceID: id})
	}
}
