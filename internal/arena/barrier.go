package arena

import (
	"fmt"

	"trivia-arena/internal/events"
)

// BarrierKind classifies a barrier's collision behavior.
type BarrierKind uint8

const (
	BarrierSolid        BarrierKind = iota // Blocks everything
	BarrierDestructible                    // Blocks until health reaches zero
	BarrierHalfWall                        // Blocks movement, passes projectiles
	BarrierOneWay                          // Blocks approach from one side only
)

// String returns the wire name of the barrier kind.
func (k BarrierKind) String() string {
	switch k {
	case BarrierSolid:
		return "solid"
	case BarrierDestructible:
		return "destructible"
	case BarrierHalfWall:
		return "half_wall"
	case BarrierOneWay:
		return "one_way"
	default:
		return "unknown"
	}
}

// ParseBarrierKind maps a config string to a barrier kind.
func ParseBarrierKind(s string) (BarrierKind, error) {
	switch s {
	case "solid":
		return BarrierSolid, nil
	case "destructible":
		return BarrierDestructible, nil
	case "half_wall":
		return BarrierHalfWall, nil
	case "one_way":
		return BarrierOneWay, nil
	default:
		return 0, fmt.Errorf("unknown barrier kind %q", s)
	}
}

// BlockedDirection is the approach side a one-way barrier rejects.
type BlockedDirection uint8

const (
	BlockNone BlockedDirection = iota
	BlockUp                    // Blocks approach from below the center
	BlockDown                  // Blocks approach from above the center
	BlockLeft                  // Blocks approach from the right of center
	BlockRight                 // Blocks approach from the left of center
)

// ParseBlockedDirection maps a config string to a blocked direction.
func ParseBlockedDirection(s string) (BlockedDirection, error) {
	switch s {
	case "", "none":
		return BlockNone, nil
	case "up":
		return BlockUp, nil
	case "down":
		return BlockDown, nil
	case "left":
		return BlockLeft, nil
	case "right":
		return BlockRight, nil
	default:
		return 0, fmt.Errorf("unknown blocked direction %q", s)
	}
}

// Barrier is a static obstacle, optionally destructible or directional.
type Barrier struct {
	ID        string
	Bounds    Rect
	Kind      BarrierKind
	Health    int
	MaxHealth int
	Active    bool
	Blocked   BlockedDirection // One-way barriers only
}

// BarrierManager owns all barriers of one match.
type BarrierManager struct {
	barriers map[string]*Barrier
	events   events.Buffer
}

// NewBarrierManager creates an empty barrier manager.
func NewBarrierManager() *BarrierManager {
	return &BarrierManager{barriers: make(map[string]*Barrier)}
}

// Add registers a barrier. Destructible barriers start at full health.
func (m *BarrierManager) Add(b *Barrier) {
	b.Active = true
	if b.Kind == BarrierDestructible && b.Health == 0 {
		b.Health = b.MaxHealth
	}
	m.barriers[b.ID] = b
}

// Remove deletes a barrier by id.
func (m *BarrierManager) Remove(id string) {
	delete(m.barriers, id)
}

// Get returns a barrier by id for tests and debugging.
func (m *BarrierManager) Get(id string) *Barrier {
	return m.barriers[id]
}

// Damage applies damage to a destructible barrier. Damaging an inactive or
// non-destructible barrier is a no-op. Health clamps at zero, at which point
// the barrier deactivates.
func (m *BarrierManager) Damage(id string, amount int) {
	b, ok := m.barriers[id]
	if !ok || !b.Active || b.Kind != BarrierDestructible {
		return
	}

	b.Health -= amount
	if b.Health < 0 {
		b.Health = 0
	}

	m.events.Emit("barrier_damaged", map[string]any{
		"barrierId": id,
		"damage":    amount,
		"health":    b.Health,
	})

	if b.Health == 0 {
		b.Active = false
		m.events.Emit("barrier_destroyed", map[string]any{"barrierId": id})
	}
}

// BlocksMovement reports whether a move from one point to another is blocked
// by any active barrier covering the destination.
func (m *BarrierManager) BlocksMovement(from, to Vec2) bool {
	for _, b := range m.barriers {
		if !b.Active || !b.Bounds.Contains(to) {
			continue
		}
		if b.Kind == BarrierOneWay && !b.blocksApproach(from) {
			continue
		}
		return true
	}
	return false
}

// BlocksProjectile reports whether a projectile at the position is stopped.
// Half-walls pass projectiles; a stopped projectile also damages the barrier
// it hit when that barrier is destructible, so the hit barrier is returned.
func (m *BarrierManager) BlocksProjectile(pos Vec2) (*Barrier, bool) {
	for _, b := range m.barriers {
		if !b.Active || b.Kind == BarrierHalfWall {
			continue
		}
		if b.Bounds.Contains(pos) {
			return b, true
		}
	}
	return nil, false
}

// blocksApproach reports whether a one-way barrier rejects movement coming
// from the given origin, judged relative to the barrier's center.
func (b *Barrier) blocksApproach(from Vec2) bool {
	c := b.Bounds.Center()
	switch b.Blocked {
	case BlockUp:
		return from.Y > c.Y // Coming from below
	case BlockDown:
		return from.Y < c.Y // Coming from above
	case BlockLeft:
		return from.X > c.X // Coming from the right
	case BlockRight:
		return from.X < c.X // Coming from the left
	default:
		return true
	}
}

// BarrierSnapshot is the serializable state of one barrier.
type BarrierSnapshot struct {
	ID        string `json:"id"`
	Bounds    Rect   `json:"bounds"`
	Kind      string `json:"kind"`
	Health    int    `json:"health"`
	MaxHealth int    `json:"maxHealth"`
	Active    bool   `json:"active"`
}

// State returns a snapshot of every barrier.
func (m *BarrierManager) State() []BarrierSnapshot {
	out := make([]BarrierSnapshot, 0, len(m.barriers))
	for _, b := range m.barriers {
		out = append(out, BarrierSnapshot{
			ID:        b.ID,
			Bounds:    b.Bounds,
			Kind:      b.Kind.String(),
			Health:    b.Health,
			MaxHealth: b.MaxHealth,
			Active:    b.Active,
		})
	}
	return out
}

// DrainEvents returns ownership of pending barrier events.
func (m *BarrierManager) DrainEvents() []events.Event {
	return m.events.Drain()
}

// Clear removes every barrier.
func (m *BarrierManager) Clear() {
	m.barriers = make(map[string]*Barrier)
}
