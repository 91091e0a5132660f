package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/playperu/quizcore/internal/engine"
	"github.com/playperu/quizcore/internal/quiz"
)

type AnswerRequest struct {
	Answer string `json:"answer"`
}

// QuestionInfo is a question as shown to players: no correct answer.
type QuestionInfo struct {
	Number  int      `json:"number"`
	Text    string   `json:"text"`
	Options []string `json:"options,omitempty"`
}

type AnswerResponse struct {
	IsCorrect      bool          `json:"isCorrect"`
	QuestionNumber int           `json:"questionNumber"`
	CorrectAnswer  string        `json:"correctAnswer,omitempty"`
	GameComplete   bool          `json:"gameComplete"`
	NextQuestion   *QuestionInfo `json:"nextQuestion"`
}

func questionInfo(q *quiz.Question) *QuestionInfo {
	if q == nil {
		return nil
	}
	return &QuestionInfo{
		Number:  q.Number,
		Text:    q.Text,
		Options: q.Options,
	}
}

func handleAnswer(eng *engine.Engine, sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := playerFromRequest(r, sessions)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Answer = strings.TrimSpace(req.Answer)
		if req.Answer == "" {
			writeError(w, http.StatusBadRequest, "answer is required")
			return
		}

		res, err := eng.SubmitAnswer(sess.TeamID, req.Answer)
		switch {
		case errors.Is(err, engine.ErrNotPlaying):
			writeError(w, http.StatusConflict, "game is not active")
			return
		case errors.Is(err, engine.ErrNoQuestion):
			writeError(w, http.StatusConflict, "no question to answer")
			return
		case errors.Is(err, engine.ErrUnknownTeam):
			writeError(w, http.StatusUnauthorized, "team no longer in the game")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, AnswerResponse{
			IsCorrect:      res.IsCorrect,
			QuestionNumber: res.QuestionNumber,
			CorrectAnswer:  res.CorrectAnswer,
			GameComplete:   res.GameComplete,
			NextQuestion:   questionInfo(res.NextQuestion),
		})
	}
}
