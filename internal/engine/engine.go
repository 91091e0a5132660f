// Package engine composes the managers into one game session and owns its
// lifecycle. Every external entry point is serialized by a single mutex, so
// the managers and the bus stay single-owner the way the core requires; the
// ticker loop in Run is the session's only recurring suspension point.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/playperu/quizcore/internal/clock"
	"github.com/playperu/quizcore/internal/event"
	"github.com/playperu/quizcore/internal/powerup"
	"github.com/playperu/quizcore/internal/quiz"
	"github.com/playperu/quizcore/internal/rules"
	"github.com/playperu/quizcore/internal/score"
	"github.com/playperu/quizcore/internal/state"
	"github.com/playperu/quizcore/internal/storage"
)

// Well-known timer ids driven by the game mode.
const (
	SessionTimer  = "session"
	QuestionTimer = "question"
)

var (
	ErrNotPlaying     = errors.New("game is not active")
	ErrUnknownTeam    = errors.New("unknown team")
	ErrNoQuestion     = errors.New("no question to answer")
	ErrUnknownPowerUp = errors.New("unknown power-up")
)

// Engine is one game session.
type Engine struct {
	mu     sync.Mutex
	logger *slog.Logger

	bus      *event.Bus
	state    *state.Manager
	clock    *clock.Manager
	scores   *score.Manager
	powerups *powerup.Manager
	rules    *rules.Engine

	cfg         quiz.Config
	questionIdx int
	now         func() time.Time
	lastTick    time.Time
	initialized bool
	destroyed   bool
}

// New wires the managers with explicit references. audio may be nil.
func New(logger *slog.Logger, store storage.Store, audio rules.AudioSink) *Engine {
	bus := event.NewBus()
	st := state.New(logger, bus)
	ck := clock.New(logger, bus, store)
	sc := score.New(logger, bus, store)
	pu := powerup.New(logger, bus)
	re := rules.New(logger, bus, rules.Managers{
		State:    st,
		Clock:    ck,
		Scores:   sc,
		PowerUps: pu,
		Audio:    audio,
	})
	return &Engine{
		logger:   logger,
		bus:      bus,
		state:    st,
		clock:    ck,
		scores:   sc,
		powerups: pu,
		rules:    re,
		now:      time.Now,
	}
}

// Bus exposes the event surface for view-layer subscribers. Register
// listeners before Run; view layers act as pure subscribers and feed input
// back only through EmitInput and the typed entry points.
func (e *Engine) Bus() *event.Bus { return e.bus }

// SetNow overrides the time source for the engine and its managers.
func (e *Engine) SetNow(now func() time.Time) {
	e.now = now
	e.clock.SetNow(now)
	e.powerups.SetNow(now)
}

// Init bootstraps the session from its configuration: roster into state and
// scoring, catalog into power-ups, rules into the rule engine, persisted
// timers and ledgers reloaded, mode timers created.
func (e *Engine) Init(cfg quiz.Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return errors.New("session already initialized")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid game config: %w", err)
	}

	e.cfg = cfg
	e.state.Init(cfg.Teams)
	e.scores.Init(cfg.Teams)
	e.scores.Load()
	e.powerups.LoadDefinitions(cfg.PowerUps)
	e.rules.Load(cfg.Rules)
	e.clock.Load()

	if err := e.createModeTimers(); err != nil {
		return err
	}

	e.questionIdx = 0
	e.initialized = true
	e.logger.Info("session initialized",
		"game", cfg.Name,
		"teams", len(cfg.Teams),
		"questions", len(cfg.Questions),
		"rules", len(cfg.Rules),
	)
	return nil
}

func (e *Engine) createModeTimers() error {
	if e.cfg.Mode.SessionSeconds > 0 {
		if _, exists := e.clock.Get(SessionTimer); !exists {
			d := time.Duration(e.cfg.Mode.SessionSeconds) * time.Second
			if err := e.clock.Create(SessionTimer, d, clock.Countdown, 1); err != nil {
				return err
			}
		}
	}
	if e.cfg.Mode.QuestionSeconds > 0 {
		if _, exists := e.clock.Get(QuestionTimer); !exists {
			d := time.Duration(e.cfg.Mode.QuestionSeconds) * time.Second
			if err := e.clock.Create(QuestionTimer, d, clock.Countdown, 1); err != nil {
				return err
			}
		}
	}
	return nil
}

// Start moves the session into play and starts the mode timers. Only valid
// from SETUP or READY; anything else is a conflict, not a restart.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized || e.destroyed {
		return errors.New("session not initialized")
	}
	if phase := e.state.Phase(); phase != quiz.PhaseSetup && phase != quiz.PhaseReady {
		return fmt.Errorf("cannot start from %s phase", phase)
	}
	e.state.SetPhase(quiz.PhaseReady, false)
	e.state.SetPhase(quiz.PhasePlaying, false)

	if _, exists := e.clock.Get(SessionTimer); exists {
		e.clock.OnComplete(SessionTimer, func(string) { e.endGame() })
		e.clock.Start(SessionTimer)
	}
	e.armQuestionTimer()
	return nil
}

// Pause freezes play: PAUSED phase, all timers paused.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Phase() != quiz.PhasePlaying {
		return
	}
	e.state.SetPhase(quiz.PhasePaused, false)
	e.clock.PauseAll()
}

// Resume undoes Pause.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Phase() != quiz.PhasePaused {
		return
	}
	e.state.SetPhase(quiz.PhasePlaying, false)
	e.clock.ResumeAll()
}

// Reset returns an initialized session to SETUP with fresh ledgers, timers
// and question sequence.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized || e.destroyed {
		return errors.New("session not initialized")
	}
	e.clock.StopAll()
	e.powerups.Destroy()
	e.scores.Init(e.cfg.Teams)
	e.questionIdx = 0
	if len(e.cfg.Teams) > 0 {
		e.state.SetActiveTeam(e.cfg.Teams[0].ID)
	}
	e.state.SetPhase(quiz.PhaseSetup, true)
	return e.createModeTimers()
}

// Destroy tears the session down. Idempotent.
func (e *Engine) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return
	}
	e.destroyed = true
	e.rules.Destroy()
	e.clock.StopAll()
	e.powerups.Destroy()
	e.state.Destroy()
}

// EmitInput feeds an external input event into the core and reports whether
// anything was listening.
func (e *Engine) EmitInput(name string, p event.Payload) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return false
	}
	return e.bus.Emit(name, p)
}

// Tick drives one frame: timers advance, timed power-ups decay.
func (e *Engine) Tick(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return
	}
	e.clock.Tick(now)
	if !e.lastTick.IsZero() {
		e.powerups.Update(now.Sub(e.lastTick))
	}
	e.lastTick = now
}

// Run hosts the tick loop until ctx is done. Any scheduler could call Tick
// instead; this is just the default host.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			e.Tick(now)
		}
	}
}

// endGame is called with the lock held.
func (e *Engine) endGame() {
	e.state.SetPhase(quiz.PhaseGameOver, false)
	e.clock.PauseAll()
}

// armQuestionTimer recreates the per-question countdown so stale completion
// callbacks from an earlier question can never fire twice. Called with the
// lock held.
func (e *Engine) armQuestionTimer() {
	if e.cfg.Mode.QuestionSeconds <= 0 {
		return
	}
	d := time.Duration(e.cfg.Mode.QuestionSeconds) * time.Second
	if err := e.clock.Create(QuestionTimer, d, clock.Countdown, 1); err != nil {
		e.logger.Error("arming question timer", "error", err)
		return
	}
	e.clock.OnComplete(QuestionTimer, func(string) { e.questionTimedOut() })
	e.clock.Start(QuestionTimer)
}

// questionTimedOut runs from the clock's completion callback, already under
// the session lock via Tick.
func (e *Engine) questionTimedOut() {
	teamID := e.state.ActiveTeamID()
	q, ok := e.currentQuestion()
	p := event.Payload{event.FieldTeamID: teamID}
	if ok {
		p[event.FieldQuestionNumber] = q.Number
	}
	e.bus.Emit(event.QuestionTimeout, p)

	if e.state.Phase() != quiz.PhasePlaying {
		return
	}
	e.advanceQuestion()
}

func (e *Engine) currentQuestion() (quiz.Question, bool) {
	if e.questionIdx < 0 || e.questionIdx >= len(e.cfg.Questions) {
		return quiz.Question{}, false
	}
	return e.cfg.Questions[e.questionIdx], true
}

// advanceQuestion moves to the next question and team, or ends the round when
// the sequence is exhausted. Called with the lock held.
func (e *Engine) advanceQuestion() {
	e.questionIdx++
	if e.questionIdx >= len(e.cfg.Questions) {
		e.state.SetPhase(quiz.PhaseRoundOver, false)
		e.clock.PauseAll()
		return
	}
	e.state.AdvanceTeam()
	e.armQuestionTimer()
}
