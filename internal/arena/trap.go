package arena

import (
	"fmt"
	"time"

	"trivia-arena/internal/events"
)

// TrapKind classifies how a trap is triggered.
type TrapKind uint8

const (
	TrapPressure   TrapKind = iota // Player proximity
	TrapTimed                      // Fixed interval
	TrapProjectile                 // External projectile impact notification
)

// String returns the wire name of the trap kind.
func (k TrapKind) String() string {
	switch k {
	case TrapPressure:
		return "pressure"
	case TrapTimed:
		return "timed"
	case TrapProjectile:
		return "projectile"
	default:
		return "unknown"
	}
}

// ParseTrapKind maps a config string to a trap kind.
func ParseTrapKind(s string) (TrapKind, error) {
	switch s {
	case "pressure":
		return TrapPressure, nil
	case "timed":
		return TrapTimed, nil
	case "projectile":
		return TrapProjectile, nil
	default:
		return 0, fmt.Errorf("unknown trap kind %q", s)
	}
}

// TrapEffect classifies what a trap does when it fires.
type TrapEffect uint8

const (
	EffectDamage TrapEffect = iota
	EffectStun
	EffectKnockback
)

// String returns the wire name of the trap effect.
func (e TrapEffect) String() string {
	switch e {
	case EffectDamage:
		return "damage"
	case EffectStun:
		return "stun"
	case EffectKnockback:
		return "knockback"
	default:
		return "unknown"
	}
}

// ParseTrapEffect maps a config string to a trap effect.
func ParseTrapEffect(s string) (TrapEffect, error) {
	switch s {
	case "damage":
		return EffectDamage, nil
	case "stun":
		return EffectStun, nil
	case "knockback":
		return EffectKnockback, nil
	default:
		return 0, fmt.Errorf("unknown trap effect %q", s)
	}
}

// TrapState is the 4-state trigger cycle. The only legal transitions are
// ARMED -> WARNING -> TRIGGERED -> COOLDOWN -> ARMED.
type TrapState uint8

const (
	TrapArmed TrapState = iota
	TrapWarning
	TrapTriggered
	TrapCooldown
)

// String returns the wire name of the trap state.
func (s TrapState) String() string {
	switch s {
	case TrapArmed:
		return "armed"
	case TrapWarning:
		return "warning"
	case TrapTriggered:
		return "triggered"
	case TrapCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

const (
	// TrapTelegraphDelay is how long a trap holds WARNING before its effect
	// executes, giving players a chance to react.
	TrapTelegraphDelay = 800 * time.Millisecond

	// TrapTriggeredDwell is how long the fired state stays visible before
	// the cooldown begins.
	TrapTriggeredDwell = 200 * time.Millisecond

	// TrapChainDelay is the stagger between a trap firing and a chained
	// neighbour starting its own telegraph.
	TrapChainDelay = 300 * time.Millisecond
)

// Trap is a single triggerable device.
type Trap struct {
	ID          string
	Kind        TrapKind
	Pos         Vec2
	Radius      float64
	Effect      TrapEffect
	EffectValue float64
	Cooldown    time.Duration
	Interval    *time.Duration // Timed traps only; nil otherwise
	ChainRadius *float64       // nil means the trap never chains
	DespawnAt   *time.Time     // nil means the trap never despawns

	State      TrapState
	stateSince time.Time
	nextTimed  time.Time
	chainAt    *time.Time // Pending chain telegraph, set by a neighbour firing
}

// TrapHit is one player affected by a trap firing.
type TrapHit struct {
	PlayerID string
	TrapID   string
	Effect   TrapEffect
	Value    float64
	Push     Vec2 // Normalized push direction, knockback only
}

// TrapManager owns all traps of one match.
type TrapManager struct {
	traps  map[string]*Trap
	events events.Buffer
}

// NewTrapManager creates an empty trap manager.
func NewTrapManager() *TrapManager {
	return &TrapManager{traps: make(map[string]*Trap)}
}

// Add registers a trap in the ARMED state.
func (m *TrapManager) Add(t *Trap) {
	t.State = TrapArmed
	if t.Kind == TrapTimed && t.Interval != nil {
		t.nextTimed = time.Now().Add(*t.Interval)
	}
	m.traps[t.ID] = t
}

// Remove deletes a trap by id.
func (m *TrapManager) Remove(id string) {
	delete(m.traps, id)
}

// Count returns the number of live traps.
func (m *TrapManager) Count() int {
	return len(m.traps)
}

// NotifyProjectileImpact arms the telegraph of any ARMED projectile trap
// whose radius covers the impact position. Pushed from the combat layer;
// traps do not scan the projectile list themselves.
func (m *TrapManager) NotifyProjectileImpact(now time.Time, pos Vec2) {
	for _, t := range m.traps {
		if t.Kind != TrapProjectile || t.State != TrapArmed {
			continue
		}
		if Dist(t.Pos, pos) <= t.Radius {
			m.warn(now, t)
		}
	}
}

// warn moves an ARMED trap to WARNING. Any other state is left untouched,
// which is what keeps the cycle strict.
func (m *TrapManager) warn(now time.Time, t *Trap) {
	if t.State != TrapArmed {
		return
	}
	t.State = TrapWarning
	t.stateSince = now
	t.chainAt = nil
	m.events.Emit("trap_warning", map[string]any{
		"trapId": t.ID,
		"kind":   t.Kind.String(),
	})
}

// Update advances every trap's state machine and returns the effect
// applications owed for this tick.
func (m *TrapManager) Update(now time.Time, positions map[string]Vec2) []TrapHit {
	var hits []TrapHit

	for id, t := range m.traps {
		if t.DespawnAt != nil && now.After(*t.DespawnAt) {
			m.events.Emit("trap_despawn", map[string]any{"trapId": id})
			delete(m.traps, id)
			continue
		}

		switch t.State {
		case TrapArmed:
			if t.chainAt != nil && !now.Before(*t.chainAt) {
				m.warn(now, t)
				continue
			}
			switch t.Kind {
			case TrapPressure:
				for _, pos := range positions {
					if Dist(t.Pos, pos) <= t.Radius {
						m.warn(now, t)
						break
					}
				}
			case TrapTimed:
				if t.Interval != nil && !now.Before(t.nextTimed) {
					m.warn(now, t)
				}
			}

		case TrapWarning:
			if now.Sub(t.stateSince) >= TrapTelegraphDelay {
				hits = append(hits, m.fire(now, t, positions)...)
			}

		case TrapTriggered:
			if now.Sub(t.stateSince) >= TrapTriggeredDwell {
				t.State = TrapCooldown
				t.stateSince = now
			}

		case TrapCooldown:
			if now.Sub(t.stateSince) >= t.Cooldown {
				t.State = TrapArmed
				t.stateSince = now
				if t.Kind == TrapTimed && t.Interval != nil {
					t.nextTimed = now.Add(*t.Interval)
				}
				m.events.Emit("trap_armed", map[string]any{"trapId": t.ID})
			}
		}
	}

	return hits
}

// fire executes a trap's effect against everyone in radius and queues
// chain telegraphs on ARMED neighbours.
func (m *TrapManager) fire(now time.Time, t *Trap, positions map[string]Vec2) []TrapHit {
	t.State = TrapTriggered
	t.stateSince = now

	var hits []TrapHit
	affected := make([]string, 0, len(positions))
	for playerID, pos := range positions {
		if Dist(t.Pos, pos) > t.Radius {
			continue
		}
		affected = append(affected, playerID)
		hit := TrapHit{
			PlayerID: playerID,
			TrapID:   t.ID,
			Effect:   t.Effect,
			Value:    t.EffectValue,
		}
		if t.Effect == EffectKnockback {
			hit.Push = pos.Sub(t.Pos).Normalized()
		}
		hits = append(hits, hit)
	}

	m.events.Emit("trap_triggered", map[string]any{
		"trapId":   t.ID,
		"effect":   t.Effect.String(),
		"value":    t.EffectValue,
		"affected": affected,
	})

	if t.ChainRadius != nil {
		chainAt := now.Add(TrapChainDelay)
		for _, other := range m.traps {
			if other.ID == t.ID || other.State != TrapArmed {
				continue
			}
			if Dist(t.Pos, other.Pos) <= *t.ChainRadius {
				at := chainAt
				other.chainAt = &at
			}
		}
	}

	return hits
}

// TrapSnapshot is the serializable state of one trap.
type TrapSnapshot struct {
	ID     string  `json:"id"`
	Kind   string  `json:"kind"`
	Pos    Vec2    `json:"pos"`
	Radius float64 `json:"radius"`
	Effect string  `json:"effect"`
	State  string  `json:"state"`
}

// State returns a snapshot of every live trap.
func (m *TrapManager) State() []TrapSnapshot {
	out := make([]TrapSnapshot, 0, len(m.traps))
	for _, t := range m.traps {
		out = append(out, TrapSnapshot{
			ID:     t.ID,
			Kind:   t.Kind.String(),
			Pos:    t.Pos,
			Radius: t.Radius,
			Effect: t.Effect.String(),
			State:  t.State.String(),
		})
	}
	return out
}

// Get returns a trap by id for tests and debugging.
func (m *TrapManager) Get(id string) *Trap {
	return m.traps[id]
}

// DrainEvents returns ownership of pending trap events.
func (m *TrapManager) DrainEvents() []events.Event {
	return m.events.Drain()
}

// Clear removes every trap.
func (m *TrapManager) Clear() {
	m.traps = make(map[string]*Trap)
}
