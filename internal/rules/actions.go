package rules

import (
	"math"
	"time"

	"github.com/playperu/quizcore/internal/clock"
	"github.com/playperu/quizcore/internal/event"
	"github.com/playperu/quizcore/internal/quiz"
)

// runAction executes one action against its collaborator. Each action's
// failure is caught and logged independently; a bad action never blocks
// sibling actions or sibling rules.
func (e *Engine) runAction(ruleID string, idx int, a quiz.ActionDef, p event.Payload) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("action panicked", "rule_id", ruleID, "action", idx, "type", a.Type, "panic", r)
		}
	}()

	switch a.Type {
	case quiz.ActionChangePhase:
		phase, ok := quiz.ParsePhase(a.Phase)
		if !ok {
			e.logger.Warn("action references unknown phase", "rule_id", ruleID, "phase", a.Phase)
			return
		}
		e.mgrs.State.SetPhase(phase, false)

	case quiz.ActionModifyScore:
		e.modifyScore(ruleID, a, p)

	case quiz.ActionStartTimer:
		if _, exists := e.mgrs.Clock.Get(a.TimerID); !exists {
			kind := clock.Kind(a.TimerKind)
			if kind == "" {
				kind = clock.Countdown
			}
			duration := time.Duration(a.DurationMs) * time.Millisecond
			if err := e.mgrs.Clock.Create(a.TimerID, duration, kind, 1); err != nil {
				e.logger.Error("action could not create timer", "rule_id", ruleID, "timer_id", a.TimerID, "error", err)
				return
			}
		}
		e.mgrs.Clock.Start(a.TimerID)

	case quiz.ActionActivatePowerup:
		target := a.TargetID
		if a.TargetProperty != "" {
			target, _ = p[a.TargetProperty].(string)
		} else if target == "" {
			target, _ = p[event.FieldTeamID].(string)
		}
		e.mgrs.PowerUps.Activate(a.TypeID, target)

	case quiz.ActionPlaySound:
		if e.mgrs.Audio == nil {
			return
		}
		// Fire-and-forget.
		e.mgrs.Audio.Play(a.Sound)

	default:
		e.logger.Warn("unknown action type", "rule_id", ruleID, "type", a.Type)
	}
}

// modifyScore applies flat points (fixed) or points per whole second
// remaining (progressive, read from the event's remaining-time field and
// rounded up), then scales by an optional event-carried score multiplier.
func (e *Engine) modifyScore(ruleID string, a quiz.ActionDef, p event.Payload) {
	teamKey := a.TeamProperty
	if teamKey == "" {
		teamKey = event.FieldTeamID
	}
	teamID, _ := p[teamKey].(string)
	if teamID == "" {
		e.logger.Warn("modifyScore payload has no team", "rule_id", ruleID, "property", teamKey)
		return
	}

	points := a.Points
	if a.Mode == quiz.ScoreModeProgressive {
		remainingMs, ok := toFloat(p[event.FieldRemainingMs])
		if !ok {
			e.logger.Warn("progressive score needs remaining time on payload", "rule_id", ruleID)
			return
		}
		seconds := int(math.Ceil(remainingMs / 1000))
		points = a.Points * seconds
	}

	if mult, ok := toFloat(p[event.FieldScoreMultiplier]); ok {
		points = int(math.Round(float64(points) * mult))
	}

	switch {
	case points > 0:
		e.mgrs.Scores.AddScore(teamID, points)
	case points < 0:
		e.mgrs.Scores.SubtractScore(teamID, -points)
	}
}
