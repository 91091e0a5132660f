package event

// Event names emitted by the core. View layers subscribe to these; the only
// events they may emit themselves are input events (AnswerSelected and
// friends).
const (
	PhaseChanged      = "phase_changed"
	ActiveTeamChanged = "active_team_changed"

	ScoreUpdated = "score_updated"
	LifeLost     = "life_lost"

	TimerStarted   = "timer_started"
	TimerTick      = "timer_tick"
	TimerPaused    = "timer_paused"
	TimerResumed   = "timer_resumed"
	TimerStopped   = "timer_stopped"
	TimerCompleted = "timer_completed"

	PowerUpActivated   = "powerup_activated"
	PowerUpDeactivated = "powerup_deactivated"
	PowerUpExpired     = "powerup_expired"

	// Input events fed into the core from outside.
	AnswerSelected  = "answer_selected"
	QuestionTimeout = "question_timeout"

	// Fire-and-forget cue for the audio collaborator.
	SoundRequested = "sound"
)

// Common payload field keys. Rule conditions reference these by name, so
// producers and configuration must agree on them.
const (
	FieldTeamID          = "teamId"
	FieldPrevious        = "previous"
	FieldCurrent         = "current"
	FieldDelta           = "delta"
	FieldPreviousScore   = "previousScore"
	FieldCurrentScore    = "currentScore"
	FieldRemainingLives  = "remainingLives"
	FieldTimerID         = "timerId"
	FieldElapsedMs       = "elapsedMs"
	FieldRemainingMs     = "remainingMs"
	FieldInstanceID      = "instanceId"
	FieldTypeID          = "typeId"
	FieldTargetID        = "targetId"
	FieldIsCorrect       = "isCorrect"
	FieldQuestionNumber  = "questionNumber"
	FieldScoreMultiplier = "scoreMultiplier"
	FieldSound           = "sound"
)
