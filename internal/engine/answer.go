package engine

import (
	"strings"

	"github.com/playperu/quizcore/internal/event"
	"github.com/playperu/quizcore/internal/quiz"
)

// AnswerResult is what the judging of one answer produced.
type AnswerResult struct {
	IsCorrect      bool
	QuestionNumber int
	CorrectAnswer  string // set only for wrong answers
	GameComplete   bool
	NextQuestion   *quiz.Question
}

// SubmitAnswer judges answer for the team's current question, feeds the
// AnswerSelected input event through the rule engine, consumes
// consume-on-use power-ups, and advances the turn.
func (e *Engine) SubmitAnswer(teamID, answer string) (AnswerResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Phase() != quiz.PhasePlaying {
		return AnswerResult{}, ErrNotPlaying
	}
	if _, ok := e.state.Team(teamID); !ok {
		return AnswerResult{}, ErrUnknownTeam
	}
	q, ok := e.currentQuestion()
	if !ok {
		return AnswerResult{}, ErrNoQuestion
	}

	isCorrect := strings.EqualFold(
		strings.TrimSpace(answer),
		strings.TrimSpace(q.CorrectAnswer),
	)

	p := event.Payload{
		event.FieldTeamID:         teamID,
		event.FieldIsCorrect:      isCorrect,
		event.FieldQuestionNumber: q.Number,
	}
	if remaining, hasTimer := e.clock.Remaining(QuestionTimer); hasTimer {
		p[event.FieldRemainingMs] = remaining.Milliseconds()
	}

	// Event-carried score multiplier: the product of every active
	// multiplier power-up on the team. Consume-on-use instances are spent
	// after the event has been fully dispatched, so they are deactivated,
	// not expired.
	multiplier := 1.0
	var consumed []string
	for _, inst := range e.powerups.InstancesForTarget(teamID) {
		def, ok := e.powerups.Definition(inst.TypeID)
		if !ok {
			continue
		}
		if m, ok := paramFloat(def.EffectParams, quiz.EffectScoreMultiplier); ok {
			multiplier *= m
		}
		if consume, _ := def.EffectParams[quiz.EffectConsumeOnUse].(bool); consume {
			consumed = append(consumed, inst.ID)
		}
	}
	if multiplier != 1.0 {
		p[event.FieldScoreMultiplier] = multiplier
	}

	e.bus.Emit(event.AnswerSelected, p)

	for _, id := range consumed {
		e.powerups.Deactivate(id, false)
	}

	if !isCorrect && e.cfg.Mode.LoseLifeOnWrong {
		e.scores.RemoveLives(teamID, 1)
	}

	result := AnswerResult{
		IsCorrect:      isCorrect,
		QuestionNumber: q.Number,
	}
	if !isCorrect {
		result.CorrectAnswer = q.CorrectAnswer
	}

	if e.scores.IsAnyGameOver() {
		e.endGame()
		result.GameComplete = true
		return result, nil
	}

	e.advanceQuestion()
	if next, ok := e.currentQuestion(); ok {
		result.NextQuestion = &next
	} else {
		result.GameComplete = true
	}
	return result, nil
}

// ActivatePowerUp activates a catalog power-up for a team.
func (e *Engine) ActivatePowerUp(typeID, teamID string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.state.Team(teamID); !ok {
		return "", ErrUnknownTeam
	}
	id, ok := e.powerups.Activate(typeID, teamID)
	if !ok {
		return "", ErrUnknownPowerUp
	}
	return id, nil
}

// TeamByJoinToken resolves a roster entry from its join token.
func (e *Engine) TeamByJoinToken(token string) (quiz.Team, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, t := range e.cfg.Teams {
		if t.JoinToken == token {
			return t, true
		}
	}
	return quiz.Team{}, false
}

func paramFloat(params map[string]any, key string) (float64, bool) {
	switch v := params[key].(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
