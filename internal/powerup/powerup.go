// Package powerup owns the static power-up catalog and the live, time-boxed
// instances. The host decrements instance lifetimes through Update.
package powerup

import (
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/playperu/quizcore/internal/event"
	"github.com/playperu/quizcore/internal/quiz"
)

// Instance is one live power-up bound to a target. Remaining is nil for
// untimed instances, which live until explicitly deactivated.
type Instance struct {
	ID          string
	TypeID      string
	TargetID    string
	ActivatedAt time.Time
	Remaining   *time.Duration
}

type Manager struct {
	logger    *slog.Logger
	bus       *event.Bus
	defs      map[string]quiz.PowerUpDef
	instances map[string]*Instance
	now       func() time.Time
	newID     func() string
}

func New(logger *slog.Logger, bus *event.Bus) *Manager {
	return &Manager{
		logger:    logger,
		bus:       bus,
		defs:      make(map[string]quiz.PowerUpDef),
		instances: make(map[string]*Instance),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// SetNow overrides the time source.
func (m *Manager) SetNow(now func() time.Time) { m.now = now }

// LoadDefinitions replaces the static catalog. Loaded once at init.
func (m *Manager) LoadDefinitions(defs []quiz.PowerUpDef) {
	m.defs = make(map[string]quiz.PowerUpDef, len(defs))
	for _, d := range defs {
		m.defs[d.ID] = d
	}
}

// Activate creates a live instance for typeID bound to targetID and returns
// its generated id. Unknown types are warn-logged no-ops. Concurrent
// instances of the same type and target are permitted; no stacking policy is
// enforced at this layer.
func (m *Manager) Activate(typeID, targetID string) (string, bool) {
	def, ok := m.defs[typeID]
	if !ok {
		m.logger.Warn("unknown power-up type", "type_id", typeID)
		return "", false
	}
	inst := &Instance{
		ID:          m.newID(),
		TypeID:      typeID,
		TargetID:    targetID,
		ActivatedAt: m.now(),
	}
	if def.DurationSeconds > 0 {
		d := time.Duration(def.DurationSeconds * float64(time.Second))
		inst.Remaining = &d
	}
	m.instances[inst.ID] = inst
	m.bus.Emit(event.PowerUpActivated, m.payload(inst))
	return inst.ID, true
}

// Deactivate removes the instance. Idempotent: unknown ids are no-ops.
// expired selects the PowerUpExpired event instead of PowerUpDeactivated.
func (m *Manager) Deactivate(instanceID string, expired bool) bool {
	inst, ok := m.instances[instanceID]
	if !ok {
		return false
	}
	delete(m.instances, instanceID)
	name := event.PowerUpDeactivated
	if expired {
		name = event.PowerUpExpired
	}
	m.bus.Emit(name, m.payload(inst))
	return true
}

// Update decrements every timed instance by dt; instances crossing zero are
// deactivated as expired exactly once. Keys are snapshotted first so
// deactivation mid-loop is safe.
func (m *Manager) Update(dt time.Duration) {
	if dt <= 0 {
		return
	}
	ids := make([]string, 0, len(m.instances))
	for id := range m.instances {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		inst, ok := m.instances[id]
		if !ok || inst.Remaining == nil {
			continue
		}
		*inst.Remaining -= dt
		if *inst.Remaining <= 0 {
			m.Deactivate(id, true)
		}
	}
}

// ActiveForTarget reports whether any live instance of typeID is bound to
// targetID.
func (m *Manager) ActiveForTarget(typeID, targetID string) bool {
	for _, inst := range m.instances {
		if inst.TypeID == typeID && inst.TargetID == targetID {
			return true
		}
	}
	return false
}

// InstancesForTarget returns snapshots of the live instances bound to
// targetID, ordered by activation then id.
func (m *Manager) InstancesForTarget(targetID string) []Instance {
	var out []Instance
	for _, inst := range m.instances {
		if inst.TargetID != targetID {
			continue
		}
		snap := *inst
		if inst.Remaining != nil {
			r := *inst.Remaining
			snap.Remaining = &r
		}
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ActivatedAt.Equal(out[j].ActivatedAt) {
			return out[i].ActivatedAt.Before(out[j].ActivatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Definition looks up a catalog entry.
func (m *Manager) Definition(typeID string) (quiz.PowerUpDef, bool) {
	d, ok := m.defs[typeID]
	return d, ok
}

// Destroy drops all live instances without emitting per-instance events.
func (m *Manager) Destroy() {
	m.instances = make(map[string]*Instance)
}

func (m *Manager) payload(inst *Instance) event.Payload {
	p := event.Payload{
		event.FieldInstanceID: inst.ID,
		event.FieldTypeID:     inst.TypeID,
		event.FieldTargetID:   inst.TargetID,
	}
	if inst.Remaining != nil {
		remaining := *inst.Remaining
		if remaining < 0 {
			remaining = 0
		}
		p[event.FieldRemainingMs] = remaining.Milliseconds()
	}
	return p
}
