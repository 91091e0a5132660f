package quiz

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadConfig reads and validates a game configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading game config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing game config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the parts of a config that cannot be defaulted away.
func (c Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Teams))
	for _, t := range c.Teams {
		if t.ID == "" {
			return fmt.Errorf("team %q: missing id", t.Name)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("duplicate team id %q", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	for _, r := range c.Rules {
		if r.TriggerEvent == "" {
			return fmt.Errorf("rule %q: missing triggerEvent", r.ID)
		}
	}
	for _, p := range c.PowerUps {
		if p.ID == "" {
			return fmt.Errorf("power-up %q: missing id", p.Name)
		}
		if p.DurationSeconds < 0 {
			return fmt.Errorf("power-up %q: negative duration", p.ID)
		}
	}
	return nil
}

// DemoConfig is the seeded session used when no config file is given.
// Two teams, a short question set, a consumable double-points power-up, and
// the baseline scoring rules.
func DemoConfig() Config {
	return Config{
		Name: "Lima Trivia Night",
		Mode: Mode{
			SessionSeconds:  600,
			QuestionSeconds: 30,
			LoseLifeOnWrong: true,
		},
		Teams: []Team{
			{ID: "t1", Name: "Los Incas", JoinToken: "incas-2025", StartingLives: 3},
			{ID: "t2", Name: "Los Chasquis", JoinToken: "chasquis-2025", StartingLives: 3},
		},
		Questions: []Question{
			{Number: 1, Text: "Which river runs through the historic center of Lima?", CorrectAnswer: "Rimac"},
			{Number: 2, Text: "What is the name of Lima's main square?", CorrectAnswer: "Plaza Mayor"},
			{Number: 3, Text: "Which saint is the patron of Lima?", CorrectAnswer: "Santa Rosa"},
		},
		PowerUps: []PowerUpDef{
			{
				ID:   "double_points",
				Name: "Double Points",
				EffectParams: map[string]any{
					EffectScoreMultiplier: 2,
					EffectConsumeOnUse:    true,
				},
			},
			{
				ID:              "time_freeze",
				Name:            "Time Freeze",
				DurationSeconds: 10,
			},
		},
		Rules: []RuleDef{
			{
				ID:           "score-correct-answer",
				TriggerEvent: "answer_selected",
				Priority:     10,
				Conditions: []ConditionDef{
					{Type: CondCompareState, Property: "isCorrect", Operator: OpEq, Value: true},
				},
				Actions: []ActionDef{
					{Type: ActionModifyScore, Mode: ScoreModeProgressive, Points: 2},
					{Type: ActionPlaySound, Sound: "correct"},
				},
			},
			{
				ID:           "buzz-wrong-answer",
				TriggerEvent: "answer_selected",
				Conditions: []ConditionDef{
					{Type: CondCompareState, Property: "isCorrect", Operator: OpEq, Value: false},
				},
				Actions: []ActionDef{
					{Type: ActionPlaySound, Sound: "wrong"},
				},
			},
		},
	}
}
