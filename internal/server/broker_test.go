package server

import (
	"encoding/json"
	"testing"

	"github.com/playperu/quizcore/internal/event"
)

func recv(t *testing.T, ch chan []byte) Event {
	t.Helper()
	select {
	case data := <-ch:
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		return ev
	default:
		t.Fatal("expected an event")
		return Event{}
	}
}

func assertEmpty(t *testing.T, ch chan []byte) {
	t.Helper()
	select {
	case data := <-ch:
		t.Fatalf("unexpected event: %s", data)
	default:
	}
}

func TestBrokerPublishReachesTeamAndWatchers(t *testing.T) {
	b := NewBroker()
	team := b.Subscribe("t1")
	other := b.Subscribe("t2")
	all := b.Subscribe("")
	defer b.Unsubscribe("t1", team)
	defer b.Unsubscribe("t2", other)
	defer b.Unsubscribe("", all)

	b.Publish("t1", Event{Type: "score_updated"})

	if ev := recv(t, team); ev.Type != "score_updated" {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev := recv(t, all); ev.Type != "score_updated" {
		t.Errorf("watcher missed team event: %+v", ev)
	}
	assertEmpty(t, other)
}

func TestBrokerBroadcast(t *testing.T) {
	b := NewBroker()
	team := b.Subscribe("t1")
	all := b.Subscribe("")
	defer b.Unsubscribe("t1", team)
	defer b.Unsubscribe("", all)

	b.Broadcast(Event{Type: "phase_changed"})

	if ev := recv(t, team); ev.Type != "phase_changed" {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev := recv(t, all); ev.Type != "phase_changed" {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestBrokerDropsWhenSubscriberIsSlow(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("t1")
	defer b.Unsubscribe("t1", ch)

	// Fill the buffer past capacity; extra events must be dropped, not block.
	for i := 0; i < 40; i++ {
		b.Publish("t1", Event{Type: "timer_tick"})
	}

	if got := len(ch); got != cap(ch) {
		t.Errorf("expected a full buffer of %d, got %d", cap(ch), got)
	}
}

func TestBridgeRoutesByTeam(t *testing.T) {
	bus := event.NewBus()
	b := NewBroker()
	b.Bridge(bus)

	team := b.Subscribe("t1")
	other := b.Subscribe("t2")
	defer b.Unsubscribe("t1", team)
	defer b.Unsubscribe("t2", other)

	bus.Emit(event.ScoreUpdated, event.Payload{
		event.FieldTeamID: "t1",
		event.FieldDelta:  10,
	})

	ev := recv(t, team)
	if ev.Type != event.ScoreUpdated {
		t.Errorf("unexpected event type %q", ev.Type)
	}
	if got := ev.Data[event.FieldTeamID]; got != "t1" {
		t.Errorf("expected payload teamId t1, got %v", got)
	}
	assertEmpty(t, other)
}

func TestBridgeBroadcastsGlobalEvents(t *testing.T) {
	bus := event.NewBus()
	b := NewBroker()
	b.Bridge(bus)

	team := b.Subscribe("t1")
	defer b.Unsubscribe("t1", team)

	bus.Emit(event.PhaseChanged, event.Payload{
		event.FieldPrevious: "setup",
		event.FieldCurrent:  "ready",
	})

	if ev := recv(t, team); ev.Type != event.PhaseChanged {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestBrokerAudioBroadcastsCue(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("")
	defer b.Unsubscribe("", ch)

	audio := &BrokerAudio{Broker: b}
	audio.Play("correct")

	ev := recv(t, ch)
	if ev.Type != event.SoundRequested {
		t.Errorf("unexpected event type %q", ev.Type)
	}
	if got := ev.Data[event.FieldSound]; got != "correct" {
		t.Errorf("expected sound cue, got %v", got)
	}
}
