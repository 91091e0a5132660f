// Package quiz defines the core domain types and the game configuration
// format. It has zero external dependencies — everything here is pure Go.
package quiz

// Phase is a coarse stage of the session lifecycle.
type Phase string

const (
	PhaseLoading   Phase = "loading"
	PhaseSetup     Phase = "setup"
	PhaseReady     Phase = "ready"
	PhasePlaying   Phase = "playing"
	PhasePaused    Phase = "paused"
	PhaseRoundOver Phase = "round_over"
	PhaseGameOver  Phase = "game_over"
	PhaseResults   Phase = "results"
	PhaseCleanup   Phase = "cleanup"
)

// ParsePhase maps a configured phase name to its Phase, reporting whether the
// name is known.
func ParsePhase(s string) (Phase, bool) {
	switch p := Phase(s); p {
	case PhaseLoading, PhaseSetup, PhaseReady, PhasePlaying, PhasePaused,
		PhaseRoundOver, PhaseGameOver, PhaseResults, PhaseCleanup:
		return p, true
	}
	return "", false
}

// Team identity lives here; its mutable resources (score, lives) are owned by
// the scoring manager.
type Team struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	JoinToken     string   `json:"joinToken"`
	Players       []string `json:"players,omitempty"`
	StartingScore int      `json:"startingScore"`
	StartingLives int      `json:"startingLives"`
}

// Question is one entry of the shared question sequence.
type Question struct {
	Number        int      `json:"number"`
	Text          string   `json:"text"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// PowerUpDef is a static catalog entry. DurationSeconds of zero means the
// power-up is untimed and lives until explicitly deactivated.
type PowerUpDef struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	DurationSeconds float64        `json:"durationSeconds,omitempty"`
	EffectParams    map[string]any `json:"effectParams,omitempty"`
}

// Effect parameter keys understood by the answer flow.
const (
	EffectScoreMultiplier = "scoreMultiplier"
	EffectConsumeOnUse    = "consumeOnUse"
)

// Mode carries the game-mode parameters loaded once at init.
type Mode struct {
	SessionSeconds  int  `json:"sessionSeconds"`
	QuestionSeconds int  `json:"questionSeconds"`
	LoseLifeOnWrong bool `json:"loseLifeOnWrong"`
}

// Config is the full, data-driven definition of one game session.
type Config struct {
	Name      string       `json:"name"`
	Mode      Mode         `json:"mode"`
	Teams     []Team       `json:"teams"`
	Questions []Question   `json:"questions"`
	PowerUps  []PowerUpDef `json:"powerUps"`
	Rules     []RuleDef    `json:"rules"`
}
