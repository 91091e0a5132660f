package quiz

// RuleDef is one declarative rule: fire Actions when TriggerEvent occurs and
// all Conditions hold. Rules are immutable after load; higher priority fires
// first, ties keep configuration order.
type RuleDef struct {
	ID           string         `json:"id"`
	TriggerEvent string         `json:"triggerEvent"`
	Conditions   []ConditionDef `json:"conditions,omitempty"`
	Actions      []ActionDef    `json:"actions,omitempty"`
	Priority     int            `json:"priority,omitempty"`
	Enabled      *bool          `json:"enabled,omitempty"` // nil means enabled
}

// IsEnabled applies the enabled-by-default rule.
func (r RuleDef) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// Condition types. Unknown types fail closed.
const (
	CondCompareState = "compareState"
	CondTimerCheck   = "timerCheck"
	CondCheckPowerup = "checkPowerup"
)

// Comparison operators. eq/ne are always defined; gt/lt/gte/lte require both
// operands numeric; contains is substring containment only.
const (
	OpEq       = "eq"
	OpNe       = "ne"
	OpGt       = "gt"
	OpLt       = "lt"
	OpGte      = "gte"
	OpLte      = "lte"
	OpContains = "contains"
)

// ConditionDef is a tagged record; which fields matter depends on Type.
//
//   - compareState: Property (event payload key), Operator, Value.
//   - timerCheck: TimerID, plus Status and/or Operator+Value tested against
//     the timer's remaining milliseconds.
//   - checkPowerup: TypeID and either TargetID (literal) or TargetProperty
//     (payload key holding the target).
type ConditionDef struct {
	Type           string `json:"type"`
	Property       string `json:"property,omitempty"`
	Operator       string `json:"operator,omitempty"`
	Value          any    `json:"value,omitempty"`
	TimerID        string `json:"timerId,omitempty"`
	Status         string `json:"status,omitempty"`
	TypeID         string `json:"typeId,omitempty"`
	TargetID       string `json:"targetId,omitempty"`
	TargetProperty string `json:"targetProperty,omitempty"`
}

// Action types. Unknown types are logged and skipped.
const (
	ActionChangePhase     = "changePhase"
	ActionModifyScore     = "modifyScore"
	ActionStartTimer      = "startTimer"
	ActionActivatePowerup = "activatePowerup"
	ActionPlaySound       = "playSound"
)

// modifyScore sub-modes.
const (
	ScoreModeFixed       = "fixed"
	ScoreModeProgressive = "progressive"
)

// ActionDef is a tagged record; which fields matter depends on Type.
//
//   - changePhase: Phase.
//   - modifyScore: Mode (fixed/progressive), Points (flat, or per whole
//     second remaining), TeamProperty (payload key holding the team,
//     defaults to "teamId").
//   - startTimer: TimerID, DurationMs, TimerKind.
//   - activatePowerup: TypeID plus TargetID or TargetProperty.
//   - playSound: Sound.
type ActionDef struct {
	Type           string `json:"type"`
	Phase          string `json:"phase,omitempty"`
	Mode           string `json:"mode,omitempty"`
	Points         int    `json:"points,omitempty"`
	TeamProperty   string `json:"teamProperty,omitempty"`
	TimerID        string `json:"timerId,omitempty"`
	DurationMs     int64  `json:"durationMs,omitempty"`
	TimerKind      string `json:"timerKind,omitempty"`
	TypeID         string `json:"typeId,omitempty"`
	TargetID       string `json:"targetId,omitempty"`
	TargetProperty string `json:"targetProperty,omitempty"`
	Sound          string `json:"sound,omitempty"`
}
