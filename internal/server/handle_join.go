package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/quizcore/internal/engine"
	"github.com/playperu/quizcore/internal/event"
)

type JoinRequest struct {
	JoinToken  string `json:"joinToken"`
	PlayerName string `json:"playerName"`
}

type JoinResponse struct {
	Token    string `json:"token"`
	PlayerID string `json:"playerId"`
	TeamID   string `json:"teamId"`
	TeamName string `json:"teamName"`
}

// TeamLookupResponse is what a player sees before committing to join.
type TeamLookupResponse struct {
	TeamID   string `json:"teamId"`
	TeamName string `json:"teamName"`
	GameName string `json:"gameName"`
}

func handleTeamLookup(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "joinToken")
		team, ok := eng.TeamByJoinToken(token)
		if !ok {
			writeError(w, http.StatusNotFound, "team not found")
			return
		}
		writeJSON(w, http.StatusOK, TeamLookupResponse{
			TeamID:   team.ID,
			TeamName: team.Name,
			GameName: eng.Snapshot().Name,
		})
	}
}

func handleJoin(eng *engine.Engine, sessions *Sessions, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JoinRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.PlayerName = strings.TrimSpace(req.PlayerName)
		if req.PlayerName == "" || req.JoinToken == "" {
			writeError(w, http.StatusBadRequest, "joinToken and playerName are required")
			return
		}

		team, ok := eng.TeamByJoinToken(req.JoinToken)
		if !ok {
			writeError(w, http.StatusNotFound, "team not found")
			return
		}

		sess := sessions.Create(team.ID, req.PlayerName)

		broker.Publish(team.ID, Event{
			Type: "player_joined",
			Data: event.Payload{
				event.FieldTeamID: team.ID,
				"playerName":      req.PlayerName,
			},
		})

		writeJSON(w, http.StatusOK, JoinResponse{
			Token:    sess.Token,
			PlayerID: sess.PlayerID,
			TeamID:   team.ID,
			TeamName: team.Name,
		})
	}
}
