// Package clock owns the session's named timers. It never schedules itself:
// the host drives it by calling Tick, so any scheduler (a time.Ticker, a test
// with a fake clock) can own the cadence.
package clock

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/playperu/quizcore/internal/event"
	"github.com/playperu/quizcore/internal/storage"
)

// ErrConfiguration marks invariant-violating timer setup. It is returned
// synchronously and never swallowed.
var ErrConfiguration = errors.New("invalid timer configuration")

type Kind string

const (
	Countdown Kind = "countdown"
	Countup   Kind = "countup"
)

type Status string

const (
	Idle      Status = "idle"
	Running   Status = "running"
	Paused    Status = "paused"
	Completed Status = "completed"
)

// Timer is a snapshot of one timer. Elapsed accrues only while RUNNING,
// scaled by the speed in effect during each interval; for countdowns it never
// exceeds Duration.
type Timer struct {
	ID       string
	Kind     Kind
	Status   Status
	Duration time.Duration
	Elapsed  time.Duration
	Speed    float64

	// anchor is the delta baseline of the current running interval. It is
	// never persisted.
	anchor time.Time
}

const storageKey = "timers"

// timerDoc is the persisted shape of one timer.
type timerDoc struct {
	ID         string  `json:"id"`
	Kind       Kind    `json:"kind"`
	Status     Status  `json:"status"`
	DurationMs int64   `json:"durationMs"`
	ElapsedMs  int64   `json:"elapsedMs"`
	Speed      float64 `json:"speed"`
}

// Manager owns the timer table. Not safe for concurrent use; the session
// owner serializes access.
type Manager struct {
	logger    *slog.Logger
	bus       *event.Bus
	store     storage.Store
	now       func() time.Time
	timers    map[string]*Timer
	callbacks map[string][]func(id string)
}

func New(logger *slog.Logger, bus *event.Bus, store storage.Store) *Manager {
	return &Manager{
		logger:    logger,
		bus:       bus,
		store:     store,
		now:       time.Now,
		timers:    make(map[string]*Timer),
		callbacks: make(map[string][]func(id string)),
	}
}

// SetNow overrides the time source.
func (m *Manager) SetNow(now func() time.Time) { m.now = now }

// Create registers a timer, fully replacing any prior timer of the same id
// including its pending completion callbacks. Countdown timers must have a
// positive duration.
func (m *Manager) Create(id string, duration time.Duration, kind Kind, speed float64) error {
	if kind == Countdown && duration <= 0 {
		return fmt.Errorf("%w: countdown %q needs a positive duration, got %v", ErrConfiguration, id, duration)
	}
	if speed < 0 {
		speed = 0
	}
	delete(m.callbacks, id)
	m.timers[id] = &Timer{
		ID:       id,
		Kind:     kind,
		Status:   Idle,
		Duration: duration,
		Speed:    speed,
	}
	m.persist()
	return nil
}

// OnComplete registers fn to run exactly once when the timer completes.
// Callbacks are cleared after firing and when the timer is removed or
// recreated.
func (m *Manager) OnComplete(id string, fn func(id string)) {
	m.callbacks[id] = append(m.callbacks[id], fn)
}

// Start sets the timer RUNNING and anchors its delta baseline to now.
// Already-running timers are left alone; completed timers must be Reset
// first.
func (m *Manager) Start(id string) {
	t, ok := m.timers[id]
	if !ok {
		m.logger.Warn("unknown timer", "timer_id", id)
		return
	}
	switch t.Status {
	case Running:
		return
	case Completed:
		m.logger.Warn("timer already completed, reset before restarting", "timer_id", id)
		return
	}
	t.Status = Running
	t.anchor = m.now()
	m.persist()
	m.bus.Emit(event.TimerStarted, m.payload(t))
}

// Pause freezes elapsed. Valid only from RUNNING.
func (m *Manager) Pause(id string) {
	t, ok := m.timers[id]
	if !ok {
		m.logger.Warn("unknown timer", "timer_id", id)
		return
	}
	if t.Status != Running {
		return
	}
	m.accrue(t, m.now())
	t.Status = Paused
	m.persist()
	m.bus.Emit(event.TimerPaused, m.payload(t))
}

// Resume rebases the anchor to now so paused wall-clock time never counts as
// progress. Valid only from PAUSED.
func (m *Manager) Resume(id string) {
	t, ok := m.timers[id]
	if !ok {
		m.logger.Warn("unknown timer", "timer_id", id)
		return
	}
	if t.Status != Paused {
		return
	}
	t.Status = Running
	t.anchor = m.now()
	m.persist()
	m.bus.Emit(event.TimerResumed, m.payload(t))
}

// Reset returns the timer to IDLE with zero elapsed. Emits TimerStopped only
// when it interrupted a running timer.
func (m *Manager) Reset(id string) {
	t, ok := m.timers[id]
	if !ok {
		m.logger.Warn("unknown timer", "timer_id", id)
		return
	}
	wasRunning := t.Status == Running
	t.Status = Idle
	t.Elapsed = 0
	m.persist()
	if wasRunning {
		m.bus.Emit(event.TimerStopped, m.payload(t))
	}
}

// Remove deletes the timer and any registered completion callbacks.
func (m *Manager) Remove(id string) {
	t, ok := m.timers[id]
	if !ok {
		m.logger.Warn("unknown timer", "timer_id", id)
		return
	}
	wasRunning := t.Status == Running
	delete(m.timers, id)
	delete(m.callbacks, id)
	m.persist()
	if wasRunning {
		m.bus.Emit(event.TimerStopped, m.payload(t))
	}
}

// SetSpeed clamps speed at zero and applies it to future accrual only: the
// current running interval is folded in at the old speed first.
func (m *Manager) SetSpeed(id string, speed float64) {
	t, ok := m.timers[id]
	if !ok {
		m.logger.Warn("unknown timer", "timer_id", id)
		return
	}
	if speed < 0 {
		speed = 0
	}
	if t.Status == Running {
		m.accrue(t, m.now())
	}
	t.Speed = speed
	m.persist()
}

// Tick advances every running timer to now, emits TimerTick per timer, fires
// completions, and persists the table once. This is the drive-one-tick entry
// point for the host scheduler.
func (m *Manager) Tick(now time.Time) {
	ids := make([]string, 0, len(m.timers))
	for id, t := range m.timers {
		if t.Status == Running {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}
	sort.Strings(ids)

	var completed []string
	for _, id := range ids {
		t := m.timers[id]
		m.accrue(t, now)
		if t.Kind == Countdown && t.Elapsed >= t.Duration {
			t.Elapsed = t.Duration
			t.Status = Completed
			completed = append(completed, id)
		}
		m.bus.Emit(event.TimerTick, m.payload(t))
	}
	m.persist()

	// Completion is terminal and one-time: emit, then drain callbacks.
	for _, id := range completed {
		t := m.timers[id]
		m.bus.Emit(event.TimerCompleted, m.payload(t))
		fns := m.callbacks[id]
		delete(m.callbacks, id)
		for _, fn := range fns {
			fn(id)
		}
	}
}

// AnyRunning reports whether at least one timer is RUNNING.
func (m *Manager) AnyRunning() bool {
	for _, t := range m.timers {
		if t.Status == Running {
			return true
		}
	}
	return false
}

// Get returns a snapshot of one timer.
func (m *Manager) Get(id string) (Timer, bool) {
	t, ok := m.timers[id]
	if !ok {
		return Timer{}, false
	}
	return *t, true
}

// Timers returns snapshots of all timers, ordered by id.
func (m *Manager) Timers() []Timer {
	out := make([]Timer, 0, len(m.timers))
	for _, t := range m.timers {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Elapsed is a pure read-through: for running timers the live delta since the
// anchor is added on top of stored elapsed without mutating state.
func (m *Manager) Elapsed(id string) (time.Duration, bool) {
	t, ok := m.timers[id]
	if !ok {
		return 0, false
	}
	elapsed := t.Elapsed
	if t.Status == Running {
		elapsed += scale(m.now().Sub(t.anchor), t.Speed)
	}
	if t.Kind == Countdown && elapsed > t.Duration {
		elapsed = t.Duration
	}
	return elapsed, true
}

// Remaining returns the live time left on a countdown, never below zero.
// The second result is false for unknown timers and countups.
func (m *Manager) Remaining(id string) (time.Duration, bool) {
	t, ok := m.timers[id]
	if !ok || t.Kind != Countdown {
		return 0, false
	}
	elapsed, _ := m.Elapsed(id)
	return t.Duration - elapsed, true
}

// PauseAll pauses every running timer.
func (m *Manager) PauseAll() {
	for _, id := range m.sortedIDs() {
		m.Pause(id)
	}
}

// ResumeAll resumes every paused timer.
func (m *Manager) ResumeAll() {
	for _, id := range m.sortedIDs() {
		m.Resume(id)
	}
}

// StopAll removes every timer, callbacks included.
func (m *Manager) StopAll() {
	for _, id := range m.sortedIDs() {
		m.Remove(id)
	}
}

func (m *Manager) sortedIDs() []string {
	ids := make([]string, 0, len(m.timers))
	for id := range m.timers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Load restores the timer table from storage. Timers found RUNNING are forced
// to PAUSED: unknown downtime must never be silently counted as progress.
func (m *Manager) Load() {
	var docs []timerDoc
	err := m.store.Get(storageKey, &docs)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		m.logger.Error("loading timers", "error", err)
		return
	}
	for _, d := range docs {
		status := d.Status
		if status == Running {
			m.logger.Warn("timer was running at shutdown, pausing", "timer_id", d.ID)
			status = Paused
		}
		m.timers[d.ID] = &Timer{
			ID:       d.ID,
			Kind:     d.Kind,
			Status:   status,
			Duration: time.Duration(d.DurationMs) * time.Millisecond,
			Elapsed:  time.Duration(d.ElapsedMs) * time.Millisecond,
			Speed:    d.Speed,
		}
	}
}

// accrue folds the running interval since the anchor into elapsed and rebases
// the anchor.
func (m *Manager) accrue(t *Timer, now time.Time) {
	t.Elapsed += scale(now.Sub(t.anchor), t.Speed)
	t.anchor = now
}

func scale(d time.Duration, speed float64) time.Duration {
	return time.Duration(float64(d) * speed)
}

func (m *Manager) payload(t *Timer) event.Payload {
	p := event.Payload{
		event.FieldTimerID:   t.ID,
		event.FieldElapsedMs: t.Elapsed.Milliseconds(),
	}
	if t.Kind == Countdown {
		remaining := t.Duration - t.Elapsed
		if remaining < 0 {
			remaining = 0
		}
		p[event.FieldRemainingMs] = remaining.Milliseconds()
	}
	return p
}

// persist writes the full table, anchors excluded. Best-effort: a failed
// write is logged and never rolled back.
func (m *Manager) persist() {
	docs := make([]timerDoc, 0, len(m.timers))
	for _, id := range m.sortedIDs() {
		t := m.timers[id]
		docs = append(docs, timerDoc{
			ID:         t.ID,
			Kind:       t.Kind,
			Status:     t.Status,
			DurationMs: t.Duration.Milliseconds(),
			ElapsedMs:  t.Elapsed.Milliseconds(),
			Speed:      t.Speed,
		})
	}
	if err := m.store.Set(storageKey, docs); err != nil {
		m.logger.Error("persisting timers", "error", err)
	}
}
