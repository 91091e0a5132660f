package rules

import (
	"strings"

	"github.com/playperu/quizcore/internal/event"
	"github.com/playperu/quizcore/internal/quiz"
)

// evalCondition dispatches on the condition's type tag. Anything that cannot
// be evaluated — unknown type, missing property, panicking comparison — fails
// closed: the condition is not satisfied, a log line records why, nothing is
// thrown.
func (e *Engine) evalCondition(ruleID string, c quiz.ConditionDef, p event.Payload) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("condition panicked", "rule_id", ruleID, "type", c.Type, "panic", r)
			ok = false
		}
	}()

	switch c.Type {
	case quiz.CondCompareState:
		// Evaluates against the event payload only. A broader game-state
		// lookup for properties the payload lacks is a known extension
		// point, not baseline behavior.
		value, present := p[c.Property]
		if !present {
			e.logger.Warn("condition property not on payload", "rule_id", ruleID, "property", c.Property)
			return false
		}
		return compare(c.Operator, value, c.Value)

	case quiz.CondTimerCheck:
		t, found := e.mgrs.Clock.Get(c.TimerID)
		if !found {
			e.logger.Warn("condition references unknown timer", "rule_id", ruleID, "timer_id", c.TimerID)
			return false
		}
		if c.Status != "" && string(t.Status) != c.Status {
			return false
		}
		if c.Operator != "" {
			remaining, _ := e.mgrs.Clock.Remaining(c.TimerID)
			return compare(c.Operator, remaining.Milliseconds(), c.Value)
		}
		return true

	case quiz.CondCheckPowerup:
		target := c.TargetID
		if c.TargetProperty != "" {
			target, _ = p[c.TargetProperty].(string)
		}
		return e.mgrs.PowerUps.ActiveForTarget(c.TypeID, target)

	default:
		e.logger.Warn("unknown condition type", "rule_id", ruleID, "type", c.Type)
		return false
	}
}

// compare applies one operator. eq/ne work on any comparable representation;
// the ordering operators require both operands numeric; contains is substring
// containment only. Everything else fails closed.
func compare(op string, left, right any) bool {
	switch op {
	case quiz.OpEq:
		return equal(left, right)
	case quiz.OpNe:
		return !equal(left, right)
	case quiz.OpGt, quiz.OpLt, quiz.OpGte, quiz.OpLte:
		l, lok := toFloat(left)
		r, rok := toFloat(right)
		if !lok || !rok {
			return false
		}
		switch op {
		case quiz.OpGt:
			return l > r
		case quiz.OpLt:
			return l < r
		case quiz.OpGte:
			return l >= r
		default:
			return l <= r
		}
	case quiz.OpContains:
		l, lok := left.(string)
		r, rok := right.(string)
		return lok && rok && strings.Contains(l, r)
	default:
		return false
	}
}

func equal(left, right any) bool {
	// Numbers first: config values decode as float64, payloads often carry
	// ints, and 10 must equal 10.0.
	if l, lok := toFloat(left); lok {
		if r, rok := toFloat(right); rok {
			return l == r
		}
		return false
	}
	return left == right
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}
