package server

import (
	"net/http"

	"github.com/playperu/quizcore/internal/engine"
)

// GameStateResponse is the session snapshot plus the current question with
// its answer stripped.
type GameStateResponse struct {
	engine.Snapshot
	CurrentQuestion *QuestionInfo `json:"currentQuestion,omitempty"`
}

func stateResponse(eng *engine.Engine) GameStateResponse {
	snap := eng.Snapshot()
	return GameStateResponse{
		Snapshot:        snap,
		CurrentQuestion: questionInfo(snap.Question),
	}
}

func handleGameState(eng *engine.Engine, sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := playerFromRequest(r, sessions); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}
		writeJSON(w, http.StatusOK, stateResponse(eng))
	}
}
