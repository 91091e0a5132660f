package engine

import (
	"github.com/playperu/quizcore/internal/quiz"
)

// TeamSnapshot is one team's identity plus its mutable resources.
type TeamSnapshot struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Score    int      `json:"score"`
	Lives    int      `json:"lives"`
	PowerUps []string `json:"powerUps,omitempty"` // active type ids
}

// TimerSnapshot is a live read of one timer.
type TimerSnapshot struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Status      string `json:"status"`
	ElapsedMs   int64  `json:"elapsedMs"`
	RemainingMs *int64 `json:"remainingMs,omitempty"`
}

// Snapshot is the full observable state of the session, for view layers.
type Snapshot struct {
	Name           string          `json:"name"`
	Phase          string          `json:"phase"`
	ActiveTeamID   string          `json:"activeTeamId,omitempty"`
	Teams          []TeamSnapshot  `json:"teams"`
	Timers         []TimerSnapshot `json:"timers,omitempty"`
	QuestionNumber int             `json:"questionNumber,omitempty"`
	Question       *quiz.Question  `json:"-"`
	TotalQuestions int             `json:"totalQuestions"`
	RulesEnabled   bool            `json:"-"`
}

// Snapshot returns a consistent view of the session. The embedded Question
// still carries its correct answer; the transport layer decides what to
// reveal.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		Name:           e.cfg.Name,
		Phase:          string(e.state.Phase()),
		ActiveTeamID:   e.state.ActiveTeamID(),
		TotalQuestions: len(e.cfg.Questions),
	}

	for _, t := range e.state.Teams() {
		ts := TeamSnapshot{
			ID:    t.ID,
			Name:  t.Name,
			Score: e.scores.Score(t.ID),
			Lives: e.scores.Lives(t.ID),
		}
		for _, inst := range e.powerups.InstancesForTarget(t.ID) {
			ts.PowerUps = append(ts.PowerUps, inst.TypeID)
		}
		snap.Teams = append(snap.Teams, ts)
	}

	for _, t := range e.clock.Timers() {
		elapsed, _ := e.clock.Elapsed(t.ID)
		ts := TimerSnapshot{
			ID:        t.ID,
			Kind:      string(t.Kind),
			Status:    string(t.Status),
			ElapsedMs: elapsed.Milliseconds(),
		}
		if remaining, ok := e.clock.Remaining(t.ID); ok {
			ms := remaining.Milliseconds()
			ts.RemainingMs = &ms
		}
		snap.Timers = append(snap.Timers, ts)
	}

	if q, ok := e.currentQuestion(); ok {
		snap.QuestionNumber = q.Number
		snap.Question = &q
	}
	return snap
}

// Rules returns the loaded rules with their effective enabled state.
func (e *Engine) Rules() []quiz.RuleDef {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rules.Rules()
}

// SetRulesEnabled flips the rule engine's global kill switch.
func (e *Engine) SetRulesEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules.SetEnabled(enabled)
}

// SetRuleEnabled toggles one rule; reports whether the rule exists.
func (e *Engine) SetRuleEnabled(id string, enabled bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rules.SetRuleEnabled(id, enabled)
}
