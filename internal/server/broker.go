package server

import (
	"encoding/json"
	"sync"

	"github.com/playperu/quizcore/internal/event"
)

// Event is the envelope published to stream subscribers.
type Event struct {
	Type string        `json:"type"`
	Data event.Payload `json:"data,omitempty"`
}

// Broker is an in-process pub/sub for outbound game events, keyed by team
// ID. Subscribers registered with an empty key receive every event
// (display screens, admin dashboards).
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the
// given team. An empty teamID subscribes to everything.
func (b *Broker) Subscribe(teamID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[teamID] == nil {
		b.subs[teamID] = make(map[chan []byte]struct{})
	}
	b.subs[teamID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the team's subscribers.
func (b *Broker) Unsubscribe(teamID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[teamID], ch)
	if len(b.subs[teamID]) == 0 {
		delete(b.subs, teamID)
	}
	b.mu.Unlock()
}

// Publish sends an event to the team's subscribers and to all-event
// subscribers.
func (b *Broker) Publish(teamID string, ev Event) {
	data, _ := json.Marshal(ev)
	b.mu.RLock()
	b.send(teamID, data)
	if teamID != "" {
		b.send("", data)
	}
	b.mu.RUnlock()
}

// Broadcast sends an event to every subscriber regardless of team.
func (b *Broker) Broadcast(ev Event) {
	data, _ := json.Marshal(ev)
	b.mu.RLock()
	for key := range b.subs {
		b.send(key, data)
	}
	b.mu.RUnlock()
}

// send must be called with the read lock held.
func (b *Broker) send(key string, data []byte) {
	for ch := range b.subs[key] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
}

// bridged are the core events forwarded to stream subscribers. Ticks and
// the rest are included; subscribers filter client-side.
var bridged = []string{
	event.PhaseChanged,
	event.ActiveTeamChanged,
	event.ScoreUpdated,
	event.LifeLost,
	event.TimerStarted,
	event.TimerTick,
	event.TimerPaused,
	event.TimerResumed,
	event.TimerStopped,
	event.TimerCompleted,
	event.PowerUpActivated,
	event.PowerUpDeactivated,
	event.PowerUpExpired,
	event.AnswerSelected,
	event.QuestionTimeout,
	event.SoundRequested,
}

// Bridge forwards core events to the broker. Team-scoped events reach that
// team's subscribers, everything else is broadcast. Register before the
// session starts running; the core's bus is not safe for concurrent
// subscription.
func (b *Broker) Bridge(bus *event.Bus) {
	for _, name := range bridged {
		bus.On(name, func(name string, p event.Payload) {
			if teamID := targetTeam(p); teamID != "" {
				b.Publish(teamID, Event{Type: name, Data: p})
				return
			}
			b.Broadcast(Event{Type: name, Data: p})
		})
	}
}

func targetTeam(p event.Payload) string {
	if id, ok := p[event.FieldTeamID].(string); ok {
		return id
	}
	if id, ok := p[event.FieldTargetID].(string); ok {
		return id
	}
	return ""
}

// BrokerAudio plays sound cues by broadcasting them to every subscriber.
type BrokerAudio struct {
	Broker *Broker
}

func (a *BrokerAudio) Play(sound string) {
	a.Broker.Broadcast(Event{
		Type: event.SoundRequested,
		Data: event.Payload{event.FieldSound: sound},
	})
}
