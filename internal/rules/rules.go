// Package rules evaluates declarative rules against events: each rule binds
// a trigger event to ordered conditions and actions, so game behavior is
// configuration, not code.
package rules

import (
	"log/slog"
	"sort"

	"github.com/playperu/quizcore/internal/clock"
	"github.com/playperu/quizcore/internal/event"
	"github.com/playperu/quizcore/internal/powerup"
	"github.com/playperu/quizcore/internal/quiz"
	"github.com/playperu/quizcore/internal/score"
	"github.com/playperu/quizcore/internal/state"
)

// AudioSink receives fire-and-forget sound cues.
type AudioSink interface {
	Play(sound string)
}

// Managers bundles the collaborators actions and conditions dispatch to.
// Every reference is explicit; there is no ambient lookup.
type Managers struct {
	State    *state.Manager
	Clock    *clock.Manager
	Scores   *score.Manager
	PowerUps *powerup.Manager
	Audio    AudioSink
}

// Engine subscribes to the bus once per distinct trigger and fans matching
// events into the loaded rules.
type Engine struct {
	logger  *slog.Logger
	bus     *event.Bus
	mgrs    Managers
	rules   []quiz.RuleDef
	toggles map[string]bool // runtime enabled overrides, keyed by rule id
	subs    []event.Subscription
	active  bool
}

func New(logger *slog.Logger, bus *event.Bus, mgrs Managers) *Engine {
	return &Engine{
		logger:  logger,
		bus:     bus,
		mgrs:    mgrs,
		toggles: make(map[string]bool),
		active:  true,
	}
}

// Load replaces the rule set: defaults are applied, rules are stable-sorted
// by priority descending (ties keep configuration order), and the engine
// subscribes once per distinct trigger event.
func (e *Engine) Load(defs []quiz.RuleDef) {
	e.unsubscribe()
	e.toggles = make(map[string]bool)

	e.rules = make([]quiz.RuleDef, len(defs))
	copy(e.rules, defs)
	sort.SliceStable(e.rules, func(i, j int) bool {
		return e.rules[i].Priority > e.rules[j].Priority
	})

	seen := make(map[string]struct{})
	for _, r := range e.rules {
		if _, ok := seen[r.TriggerEvent]; ok {
			continue
		}
		seen[r.TriggerEvent] = struct{}{}
		e.subs = append(e.subs, e.bus.On(r.TriggerEvent, e.handle))
	}
}

// Rules returns the loaded rules in evaluation order, with runtime toggles
// applied to Enabled.
func (e *Engine) Rules() []quiz.RuleDef {
	out := make([]quiz.RuleDef, len(e.rules))
	copy(out, e.rules)
	for i := range out {
		enabled := e.ruleEnabled(out[i])
		out[i].Enabled = &enabled
	}
	return out
}

// SetEnabled is the global kill switch: when false, handling short-circuits
// without unsubscribing anything.
func (e *Engine) SetEnabled(enabled bool) { e.active = enabled }

// SetRuleEnabled toggles a single rule at runtime. Reports whether the rule
// exists.
func (e *Engine) SetRuleEnabled(id string, enabled bool) bool {
	for _, r := range e.rules {
		if r.ID == id {
			e.toggles[id] = enabled
			return true
		}
	}
	return false
}

// Destroy removes exactly the engine's own subscriptions; listeners owned by
// other components are untouched.
func (e *Engine) Destroy() {
	e.unsubscribe()
	e.rules = nil
}

func (e *Engine) unsubscribe() {
	for _, sub := range e.subs {
		e.bus.Off(sub)
	}
	e.subs = nil
}

func (e *Engine) ruleEnabled(r quiz.RuleDef) bool {
	if v, ok := e.toggles[r.ID]; ok {
		return v
	}
	return r.IsEnabled()
}

// handle dispatches one event delivery: enabled rules matching the trigger
// fire in priority order; conditions are ANDed with short-circuit; a failing
// action never blocks sibling actions or sibling rules.
func (e *Engine) handle(name string, p event.Payload) {
	if !e.active {
		return
	}
	for _, r := range e.rules {
		if r.TriggerEvent != name || !e.ruleEnabled(r) {
			continue
		}
		if !e.conditionsMet(r, p) {
			continue
		}
		for i, a := range r.Actions {
			e.runAction(r.ID, i, a, p)
		}
	}
}

func (e *Engine) conditionsMet(r quiz.RuleDef, p event.Payload) bool {
	for _, c := range r.Conditions {
		if !e.evalCondition(r.ID, c, p) {
			return false
		}
	}
	return true
}
