package clock

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/playperu/quizcore/internal/event"
	"github.com/playperu/quizcore/internal/storage"
)

type fakeNow struct {
	t time.Time
}

func (f *fakeNow) now() time.Time          { return f.t }
func (f *fakeNow) advance(d time.Duration) { f.t = f.t.Add(d) }

func newManager(t *testing.T) (*Manager, *event.Bus, *fakeNow, storage.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := event.NewBus()
	store := storage.NewMemory()
	m := New(logger, bus, store)
	fn := &fakeNow{t: time.Unix(1_700_000_000, 0)}
	m.SetNow(fn.now)
	return m, bus, fn, store
}

func TestCreateRejectsNonPositiveCountdown(t *testing.T) {
	m, _, _, _ := newManager(t)

	for _, d := range []time.Duration{0, -100 * time.Millisecond} {
		err := m.Create("q1", d, Countdown, 1)
		if !errors.Is(err, ErrConfiguration) {
			t.Errorf("duration %v: expected ErrConfiguration, got %v", d, err)
		}
	}

	// Countups may start from zero.
	if err := m.Create("up", 0, Countup, 1); err != nil {
		t.Errorf("countup with zero duration: unexpected error %v", err)
	}
}

func TestPauseExcludesWallClockTime(t *testing.T) {
	m, _, fn, _ := newManager(t)

	if err := m.Create("q1", 10*time.Second, Countdown, 1); err != nil {
		t.Fatalf("create: %v", err)
	}
	m.Start("q1")
	fn.advance(4 * time.Second)
	m.Pause("q1")
	fn.advance(5 * time.Second) // frozen
	m.Resume("q1")
	fn.advance(6 * time.Second)
	m.Tick(fn.now())

	timer, ok := m.Get("q1")
	if !ok {
		t.Fatal("timer gone")
	}
	if timer.Status != Completed {
		t.Errorf("expected COMPLETED, got %s", timer.Status)
	}
	if timer.Elapsed != 10*time.Second {
		t.Errorf("expected elapsed clamped to 10s, got %v", timer.Elapsed)
	}
}

func TestSpeedScalesOnlyFutureAccrual(t *testing.T) {
	m, _, fn, _ := newManager(t)

	if err := m.Create("q1", time.Minute, Countdown, 2); err != nil {
		t.Fatalf("create: %v", err)
	}
	m.Start("q1")
	fn.advance(2 * time.Second)
	m.Tick(fn.now())

	if elapsed, _ := m.Elapsed("q1"); elapsed != 4*time.Second {
		t.Errorf("expected 4s at speed 2, got %v", elapsed)
	}

	m.SetSpeed("q1", 0.5)
	fn.advance(4 * time.Second)
	m.Tick(fn.now())

	if elapsed, _ := m.Elapsed("q1"); elapsed != 6*time.Second {
		t.Errorf("expected 6s after slowdown, got %v", elapsed)
	}

	// Negative multipliers clamp to zero: no accrual at all.
	m.SetSpeed("q1", -1)
	fn.advance(10 * time.Second)
	m.Tick(fn.now())
	if elapsed, _ := m.Elapsed("q1"); elapsed != 6*time.Second {
		t.Errorf("expected frozen at 6s with speed 0, got %v", elapsed)
	}
}

func TestReadThroughDoesNotMutate(t *testing.T) {
	m, _, fn, _ := newManager(t)

	m.Create("q1", 10*time.Second, Countdown, 1)
	m.Start("q1")
	fn.advance(3 * time.Second)

	live, _ := m.Elapsed("q1")
	if live != 3*time.Second {
		t.Errorf("expected live elapsed 3s, got %v", live)
	}
	remaining, _ := m.Remaining("q1")
	if remaining != 7*time.Second {
		t.Errorf("expected remaining 7s, got %v", remaining)
	}

	// Stored elapsed only moves on Tick.
	timer, _ := m.Get("q1")
	if timer.Elapsed != 0 {
		t.Errorf("expected stored elapsed untouched, got %v", timer.Elapsed)
	}
}

func TestRemainingNeverNegative(t *testing.T) {
	m, _, fn, _ := newManager(t)

	m.Create("q1", time.Second, Countdown, 1)
	m.Start("q1")
	fn.advance(5 * time.Second)

	if remaining, _ := m.Remaining("q1"); remaining < 0 {
		t.Errorf("remaining went negative: %v", remaining)
	}
	m.Tick(fn.now())
	timer, _ := m.Get("q1")
	if timer.Elapsed != time.Second {
		t.Errorf("expected elapsed clamped to duration, got %v", timer.Elapsed)
	}
}

func TestCompletionIsTerminalAndOneTime(t *testing.T) {
	m, bus, fn, _ := newManager(t)

	completions := 0
	bus.On(event.TimerCompleted, func(string, event.Payload) { completions++ })
	callbacks := 0
	m.Create("q1", time.Second, Countdown, 1)
	m.OnComplete("q1", func(id string) {
		if id != "q1" {
			t.Errorf("callback got id %q", id)
		}
		callbacks++
	})

	m.Start("q1")
	fn.advance(2 * time.Second)
	m.Tick(fn.now())
	fn.advance(time.Second)
	m.Tick(fn.now())

	if completions != 1 {
		t.Errorf("expected 1 completed event, got %d", completions)
	}
	if callbacks != 1 {
		t.Errorf("expected 1 callback, got %d", callbacks)
	}

	// Starting a completed timer is a warn no-op until Reset.
	m.Start("q1")
	if timer, _ := m.Get("q1"); timer.Status != Completed {
		t.Errorf("expected still COMPLETED, got %s", timer.Status)
	}
	m.Reset("q1")
	m.Start("q1")
	if timer, _ := m.Get("q1"); timer.Status != Running {
		t.Errorf("expected RUNNING after reset, got %s", timer.Status)
	}
}

func TestCreateReplacesTimerAndCallbacks(t *testing.T) {
	m, _, fn, _ := newManager(t)

	stale := false
	m.Create("q1", time.Second, Countdown, 1)
	m.OnComplete("q1", func(string) { stale = true })

	// Recreate: the pending callback must not survive.
	m.Create("q1", time.Second, Countdown, 1)
	m.Start("q1")
	fn.advance(2 * time.Second)
	m.Tick(fn.now())

	if stale {
		t.Error("callback from replaced timer fired")
	}
}

func TestResetEmitsStoppedOnlyWhenRunning(t *testing.T) {
	m, bus, _, _ := newManager(t)

	stopped := 0
	bus.On(event.TimerStopped, func(string, event.Payload) { stopped++ })

	m.Create("q1", time.Second, Countdown, 1)
	m.Reset("q1")
	if stopped != 0 {
		t.Errorf("reset of idle timer emitted stop, got %d", stopped)
	}
	m.Start("q1")
	m.Reset("q1")
	if stopped != 1 {
		t.Errorf("expected 1 stop event, got %d", stopped)
	}
}

func TestLoadForcesRunningToPaused(t *testing.T) {
	m, _, fn, store := newManager(t)

	m.Create("q1", 10*time.Second, Countdown, 1)
	m.Start("q1")
	fn.advance(3 * time.Second)
	m.Tick(fn.now()) // persists with status running, elapsed 3s

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	restored := New(logger, event.NewBus(), store)
	restored.Load()

	timer, ok := restored.Get("q1")
	if !ok {
		t.Fatal("timer not restored")
	}
	if timer.Status != Paused {
		t.Errorf("expected restored timer PAUSED, got %s", timer.Status)
	}
	if timer.Elapsed != 3*time.Second {
		t.Errorf("expected restored elapsed 3s, got %v", timer.Elapsed)
	}
}

func TestBulkOpsDelegate(t *testing.T) {
	m, _, fn, _ := newManager(t)

	m.Create("a", 10*time.Second, Countdown, 1)
	m.Create("b", 10*time.Second, Countdown, 1)
	m.Start("a")
	m.Start("b")
	fn.advance(time.Second)

	m.PauseAll()
	if m.AnyRunning() {
		t.Error("expected nothing running after PauseAll")
	}
	m.ResumeAll()
	if !m.AnyRunning() {
		t.Error("expected timers running after ResumeAll")
	}
	m.StopAll()
	if len(m.Timers()) != 0 {
		t.Errorf("expected empty table after StopAll, got %d", len(m.Timers()))
	}
}

func TestTickEmitsRemainingForCountdowns(t *testing.T) {
	m, bus, fn, _ := newManager(t)

	var remaining int64 = -1
	bus.On(event.TimerTick, func(_ string, p event.Payload) {
		remaining = p[event.FieldRemainingMs].(int64)
	})

	m.Create("q1", 10*time.Second, Countdown, 1)
	m.Start("q1")
	fn.advance(4 * time.Second)
	m.Tick(fn.now())

	if remaining != 6000 {
		t.Errorf("expected remainingMs 6000, got %d", remaining)
	}
}
