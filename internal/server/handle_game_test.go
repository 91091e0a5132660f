package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/playperu/quizcore/internal/database"
	"github.com/playperu/quizcore/internal/engine"
	"github.com/playperu/quizcore/internal/quiz"
	"github.com/playperu/quizcore/internal/storage"
)

const testAdminPassword = "changeme"

func testRouter(t *testing.T) (*chi.Mux, *engine.Engine) {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	broker := NewBroker()
	eng := engine.New(logger, storage.NewMemory(), &BrokerAudio{Broker: broker})
	broker.Bridge(eng.Bus())
	if err := eng.Init(quiz.DemoConfig()); err != nil {
		t.Fatalf("init session: %v", err)
	}
	t.Cleanup(eng.Destroy)

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	r := chi.NewRouter()
	addRoutes(r, logger, Deps{
		Engine:            eng,
		Broker:            broker,
		Sessions:          NewSessions(),
		Admin:             NewAdminSessions(),
		DB:                db,
		AdminPasswordHash: string(hash),
	})
	return r, eng
}

func joinTeam(t *testing.T, r *chi.Mux, joinToken, playerName string) JoinResponse {
	t.Helper()
	body, _ := json.Marshal(JoinRequest{JoinToken: joinToken, PlayerName: playerName})
	req := httptest.NewRequest(http.MethodPost, "/api/join", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("join: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp JoinResponse
	json.NewDecoder(w.Body).Decode(&resp)
	return resp
}

func TestTeamLookup(t *testing.T) {
	r, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/teams/incas-2025", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp TeamLookupResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.TeamID != "t1" || resp.TeamName != "Los Incas" {
		t.Errorf("unexpected team %+v", resp)
	}
}

func TestTeamLookupUnknownToken(t *testing.T) {
	r, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/teams/nope", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestJoinIssuesSession(t *testing.T) {
	r, _ := testRouter(t)

	resp := joinTeam(t, r, "incas-2025", "Ana")
	if resp.Token == "" || resp.PlayerID == "" {
		t.Errorf("expected token and player id, got %+v", resp)
	}
	if resp.TeamID != "t1" {
		t.Errorf("expected team t1, got %q", resp.TeamID)
	}
}

func TestJoinValidation(t *testing.T) {
	r, _ := testRouter(t)

	cases := []struct {
		name string
		body JoinRequest
		code int
	}{
		{"missing name", JoinRequest{JoinToken: "incas-2025"}, http.StatusBadRequest},
		{"missing token", JoinRequest{PlayerName: "Ana"}, http.StatusBadRequest},
		{"unknown token", JoinRequest{JoinToken: "nope", PlayerName: "Ana"}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.body)
			req := httptest.NewRequest(http.MethodPost, "/api/join", bytes.NewReader(body))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.code {
				t.Errorf("expected %d, got %d: %s", tc.code, w.Code, w.Body.String())
			}
		})
	}
}

func TestGameStateRequiresSession(t *testing.T) {
	r, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/game/state", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestGameStateHidesCorrectAnswer(t *testing.T) {
	r, eng := testRouter(t)
	sess := joinTeam(t, r, "incas-2025", "Ana")
	if err := eng.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/game/state", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if bytes.Contains(w.Body.Bytes(), []byte("Rimac")) {
		t.Error("state response leaked the correct answer")
	}

	var resp GameStateResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Phase != "playing" {
		t.Errorf("expected playing phase, got %q", resp.Phase)
	}
	if resp.CurrentQuestion == nil || resp.CurrentQuestion.Number != 1 {
		t.Errorf("expected question 1, got %+v", resp.CurrentQuestion)
	}
	if len(resp.Teams) != 2 {
		t.Errorf("expected 2 teams, got %d", len(resp.Teams))
	}
}

func TestAnswerFlow(t *testing.T) {
	r, eng := testRouter(t)
	sess := joinTeam(t, r, "incas-2025", "Ana")
	if err := eng.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	body, _ := json.Marshal(AnswerRequest{Answer: "rimac"})
	req := httptest.NewRequest(http.MethodPost, "/api/game/answer", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp AnswerResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if !resp.IsCorrect {
		t.Error("expected correct answer")
	}
	if resp.CorrectAnswer != "" {
		t.Error("correct answers must not echo the solution")
	}
	if resp.NextQuestion == nil || resp.NextQuestion.Number != 2 {
		t.Errorf("expected next question 2, got %+v", resp.NextQuestion)
	}

	// Demo rules score progressively, so the team must have points now.
	for _, ts := range eng.Snapshot().Teams {
		if ts.ID == "t1" && ts.Score == 0 {
			t.Error("expected score after correct answer")
		}
	}
}

func TestAnswerBeforeStartConflicts(t *testing.T) {
	r, _ := testRouter(t)
	sess := joinTeam(t, r, "incas-2025", "Ana")

	body, _ := json.Marshal(AnswerRequest{Answer: "Rimac"})
	req := httptest.NewRequest(http.MethodPost, "/api/game/answer", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAnswerRequiresSession(t *testing.T) {
	r, _ := testRouter(t)

	body, _ := json.Marshal(AnswerRequest{Answer: "Rimac"})
	req := httptest.NewRequest(http.MethodPost, "/api/game/answer", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer bogus")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestActivatePowerUp(t *testing.T) {
	r, _ := testRouter(t)
	sess := joinTeam(t, r, "incas-2025", "Ana")

	body, _ := json.Marshal(PowerUpRequest{TypeID: "double_points"})
	req := httptest.NewRequest(http.MethodPost, "/api/game/powerup", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp PowerUpResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.InstanceID == "" {
		t.Error("expected instance id")
	}
}

func TestActivateUnknownPowerUp(t *testing.T) {
	r, _ := testRouter(t)
	sess := joinTeam(t, r, "incas-2025", "Ana")

	body, _ := json.Marshal(PowerUpRequest{TypeID: "mystery"})
	req := httptest.NewRequest(http.MethodPost, "/api/game/powerup", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	r, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
