// Package state owns the session phase and the active-team pointer.
package state

import (
	"log/slog"

	"github.com/playperu/quizcore/internal/event"
	"github.com/playperu/quizcore/internal/quiz"
)

// Validator decides whether a phase transition is allowed. The default is
// permissive.
type Validator func(from, to quiz.Phase) bool

// Manager is a small phase state machine plus the team roster.
type Manager struct {
	logger    *slog.Logger
	bus       *event.Bus
	phase     quiz.Phase
	teams     []quiz.Team
	active    string // team id, "" when none
	validator Validator
}

func New(logger *slog.Logger, bus *event.Bus) *Manager {
	return &Manager{
		logger: logger,
		bus:    bus,
		phase:  quiz.PhaseLoading,
	}
}

// Init stores the roster, points at the first team (or none for an empty
// roster) and force-transitions LOADING→SETUP.
func (m *Manager) Init(roster []quiz.Team) {
	m.teams = make([]quiz.Team, len(roster))
	copy(m.teams, roster)
	m.active = ""
	if len(m.teams) > 0 {
		m.active = m.teams[0].ID
	}
	m.SetPhase(quiz.PhaseSetup, true)
}

func (m *Manager) Phase() quiz.Phase { return m.phase }

// SetValidator installs a transition validator; nil restores the permissive
// default.
func (m *Manager) SetValidator(v Validator) { m.validator = v }

// SetPhase transitions to next and reports whether a transition happened.
// Same-phase calls are no-ops. force skips the validator.
func (m *Manager) SetPhase(next quiz.Phase, force bool) bool {
	if next == m.phase {
		return false
	}
	if !force && m.validator != nil && !m.validator(m.phase, next) {
		m.logger.Warn("phase transition rejected", "from", m.phase, "to", next)
		return false
	}
	previous := m.phase
	m.phase = next
	m.bus.Emit(event.PhaseChanged, event.Payload{
		event.FieldPrevious: string(previous),
		event.FieldCurrent:  string(next),
	})
	return true
}

func (m *Manager) ActiveTeamID() string { return m.active }

// SetActiveTeam points at id, or clears the pointer when id is empty.
// Unknown ids are warn-logged no-ops.
func (m *Manager) SetActiveTeam(id string) bool {
	if id == m.active {
		return false
	}
	if id != "" {
		if _, ok := m.Team(id); !ok {
			m.logger.Warn("unknown team", "team_id", id)
			return false
		}
	}
	previous := m.active
	m.active = id
	m.bus.Emit(event.ActiveTeamChanged, event.Payload{
		event.FieldPrevious: previous,
		event.FieldCurrent:  id,
	})
	return true
}

// AdvanceTeam rotates the active-team pointer to the next roster entry and
// returns the new active team id. No-op for rosters smaller than two.
func (m *Manager) AdvanceTeam() string {
	if len(m.teams) < 2 || m.active == "" {
		return m.active
	}
	for i, t := range m.teams {
		if t.ID == m.active {
			m.SetActiveTeam(m.teams[(i+1)%len(m.teams)].ID)
			break
		}
	}
	return m.active
}

func (m *Manager) Teams() []quiz.Team {
	out := make([]quiz.Team, len(m.teams))
	copy(out, m.teams)
	return out
}

func (m *Manager) Team(id string) (quiz.Team, bool) {
	for _, t := range m.teams {
		if t.ID == id {
			return t, true
		}
	}
	return quiz.Team{}, false
}

// Destroy force-sets the terminal CLEANUP phase and clears roster and active
// team.
func (m *Manager) Destroy() {
	m.SetPhase(quiz.PhaseCleanup, true)
	m.teams = nil
	m.active = ""
}
