// Package event provides the in-process publish/subscribe hub the game core
// is built around. Delivery is synchronous and re-entrant: a listener may
// itself emit, and the nested event is fully dispatched (depth-first) before
// control returns to the outer emission.
//
// The bus is not safe for concurrent use. A session has one owner goroutine;
// everything that emits or subscribes does so through it.
package event

// Payload carries the data of one event. Its shape is keyed to the event
// name; producers use the field keys in names.go.
type Payload map[string]any

// Listener receives one event delivery.
type Listener func(name string, p Payload)

// Subscription identifies a single registration. Zero value is invalid.
type Subscription struct {
	name string
	id   uint64
}

type registration struct {
	id   uint64
	fn   Listener
	once bool
}

// Bus dispatches named events to listeners in registration order.
type Bus struct {
	nextID    uint64
	listeners map[string][]registration
}

func NewBus() *Bus {
	return &Bus{listeners: make(map[string][]registration)}
}

// On registers fn for name. Listeners for the same name are invoked in
// registration order. The returned handle removes exactly this registration
// when passed to Off.
func (b *Bus) On(name string, fn Listener) Subscription {
	b.nextID++
	b.listeners[name] = append(b.listeners[name], registration{id: b.nextID, fn: fn})
	return Subscription{name: name, id: b.nextID}
}

// Once registers fn for name and removes it after its first delivery.
func (b *Bus) Once(name string, fn Listener) Subscription {
	b.nextID++
	b.listeners[name] = append(b.listeners[name], registration{id: b.nextID, fn: fn, once: true})
	return Subscription{name: name, id: b.nextID}
}

// Off removes the registration identified by sub. Returns false if it was
// already gone.
func (b *Bus) Off(sub Subscription) bool {
	regs := b.listeners[sub.name]
	for i, r := range regs {
		if r.id == sub.id {
			b.listeners[sub.name] = append(regs[:i:i], regs[i+1:]...)
			if len(b.listeners[sub.name]) == 0 {
				delete(b.listeners, sub.name)
			}
			return true
		}
	}
	return false
}

// RemoveAll drops every listener registered for name, whoever owns them, and
// returns how many were removed. Sharp edge: only whole-session teardown
// should reach for this; components that own subscriptions use Off.
func (b *Bus) RemoveAll(name string) int {
	n := len(b.listeners[name])
	delete(b.listeners, name)
	return n
}

// Emit delivers p to every listener of name, synchronously, in registration
// order, and reports whether any listener existed. Listeners registered or
// removed during the emission do not change the current delivery set.
func (b *Bus) Emit(name string, p Payload) bool {
	regs := b.listeners[name]
	if len(regs) == 0 {
		return false
	}
	// Snapshot so re-entrant On/Off cannot shift the slice under us.
	snapshot := make([]registration, len(regs))
	copy(snapshot, regs)

	for _, r := range snapshot {
		if r.once && !b.Off(Subscription{name: name, id: r.id}) {
			// A nested emission already delivered and removed it.
			continue
		}
		r.fn(name, p)
	}
	return true
}
