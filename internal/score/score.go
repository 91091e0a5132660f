// Package score owns the per-team score and lives ledgers. Both are clamped
// at zero; every actual change is persisted and emitted.
package score

import (
	"errors"
	"log/slog"

	"github.com/playperu/quizcore/internal/event"
	"github.com/playperu/quizcore/internal/quiz"
	"github.com/playperu/quizcore/internal/storage"
)

const storageKey = "scores"

type ledgerDoc struct {
	Scores map[string]int `json:"scores"`
	Lives  map[string]int `json:"lives"`
}

type Manager struct {
	logger *slog.Logger
	bus    *event.Bus
	store  storage.Store
	scores map[string]int
	lives  map[string]int
}

func New(logger *slog.Logger, bus *event.Bus, store storage.Store) *Manager {
	return &Manager{
		logger: logger,
		bus:    bus,
		store:  store,
		scores: make(map[string]int),
		lives:  make(map[string]int),
	}
}

// Init seeds the ledgers from the roster's starting resources.
func (m *Manager) Init(teams []quiz.Team) {
	m.scores = make(map[string]int, len(teams))
	m.lives = make(map[string]int, len(teams))
	for _, t := range teams {
		m.scores[t.ID] = max(0, t.StartingScore)
		m.lives[t.ID] = max(0, t.StartingLives)
	}
	m.persist()
}

// Load overlays a previously persisted ledger, if any. Unknown teams in the
// stored data are dropped.
func (m *Manager) Load() {
	var doc ledgerDoc
	err := m.store.Get(storageKey, &doc)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		m.logger.Error("loading scores", "error", err)
		return
	}
	for id, s := range doc.Scores {
		if _, ok := m.scores[id]; ok {
			m.scores[id] = s
		}
	}
	for id, l := range doc.Lives {
		if _, ok := m.lives[id]; ok {
			m.lives[id] = l
		}
	}
}

func (m *Manager) Score(teamID string) int { return m.scores[teamID] }
func (m *Manager) Lives(teamID string) int { return m.lives[teamID] }

// AddScore credits points. Non-positive points are total no-ops: no mutation,
// no write, no event.
func (m *Manager) AddScore(teamID string, points int) {
	if points <= 0 {
		return
	}
	m.changeScore(teamID, points)
}

// SubtractScore debits points, clamped at zero. Non-positive points are total
// no-ops.
func (m *Manager) SubtractScore(teamID string, points int) {
	if points <= 0 {
		return
	}
	m.changeScore(teamID, -points)
}

func (m *Manager) changeScore(teamID string, delta int) {
	previous, ok := m.scores[teamID]
	if !ok {
		m.logger.Warn("unknown team", "team_id", teamID)
		return
	}
	current := max(0, previous+delta)
	if current == previous {
		return
	}
	m.scores[teamID] = current
	m.persist()
	m.bus.Emit(event.ScoreUpdated, event.Payload{
		event.FieldTeamID:        teamID,
		event.FieldPreviousScore: previous,
		event.FieldCurrentScore:  current,
		event.FieldDelta:         current - previous,
	})
}

// SetLives sets the team's lives, clamped at zero.
func (m *Manager) SetLives(teamID string, lives int) {
	m.changeLives(teamID, func(int) int { return lives })
}

// AddLives credits lives; non-positive n is a no-op.
func (m *Manager) AddLives(teamID string, n int) {
	if n <= 0 {
		return
	}
	m.changeLives(teamID, func(cur int) int { return cur + n })
}

// RemoveLives debits lives, clamped at zero; non-positive n is a no-op.
func (m *Manager) RemoveLives(teamID string, n int) {
	if n <= 0 {
		return
	}
	m.changeLives(teamID, func(cur int) int { return cur - n })
}

func (m *Manager) changeLives(teamID string, next func(int) int) {
	previous, ok := m.lives[teamID]
	if !ok {
		m.logger.Warn("unknown team", "team_id", teamID)
		return
	}
	current := max(0, next(previous))
	if current == previous {
		return
	}
	m.lives[teamID] = current
	m.persist()
	m.bus.Emit(event.LifeLost, event.Payload{
		event.FieldTeamID:         teamID,
		event.FieldRemainingLives: current,
	})
}

// ResetScore zeroes one team's score.
func (m *Manager) ResetScore(teamID string) {
	previous, ok := m.scores[teamID]
	if !ok {
		m.logger.Warn("unknown team", "team_id", teamID)
		return
	}
	if previous == 0 {
		return
	}
	m.changeScore(teamID, -previous)
}

// ResetAll zeroes every score.
func (m *Manager) ResetAll() {
	for id := range m.scores {
		m.ResetScore(id)
	}
}

// IsGameOver reports whether the team has run out of lives.
func (m *Manager) IsGameOver(teamID string) bool {
	lives, ok := m.lives[teamID]
	return ok && lives == 0
}

// IsAnyGameOver reports whether any team has run out of lives.
func (m *Manager) IsAnyGameOver() bool {
	for id := range m.lives {
		if m.IsGameOver(id) {
			return true
		}
	}
	return false
}

func (m *Manager) persist() {
	if err := m.store.Set(storageKey, ledgerDoc{Scores: m.scores, Lives: m.lives}); err != nil {
		m.logger.Error("persisting scores", "error", err)
	}
}
