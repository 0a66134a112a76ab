package arena

import (
	"fmt"
	"time"

	"trivia-arena/internal/events"
)

// HazardKind classifies an environmental hazard zone.
type HazardKind uint8

const (
	HazardDamage HazardKind = iota // Periodic damage while inside
	HazardSlow                     // Movement speed multiplier while inside
	HazardEMP                      // Power-up collection disabled while inside
)

// String returns the wire name of the hazard kind.
func (k HazardKind) String() string {
	switch k {
	case HazardDamage:
		return "damage"
	case HazardSlow:
		return "slow"
	case HazardEMP:
		return "emp"
	default:
		return "unknown"
	}
}

// ParseHazardKind maps a config string to a hazard kind.
// Unknown values are an error so bad config entries can be skipped at load.
func ParseHazardKind(s string) (HazardKind, error) {
	switch s {
	case "damage":
		return HazardDamage, nil
	case "slow":
		return HazardSlow, nil
	case "emp":
		return HazardEMP, nil
	default:
		return 0, fmt.Errorf("unknown hazard kind %q", s)
	}
}

// HazardDamageInterval is the fixed period between damage ticks while a
// player stays inside a damage hazard.
const HazardDamageInterval = 500 * time.Millisecond

// Hazard is a rectangular zone with a continuous effect on occupants.
type Hazard struct {
	ID        string
	Kind      HazardKind
	Bounds    Rect
	Intensity float64    // Damage per tick, or speed factor for slow hazards
	DespawnAt *time.Time // nil means the hazard never despawns

	occupants  map[string]bool
	lastDamage map[string]time.Time
}

// HazardDamageEvent is a damage application the orchestrator must feed into combat.
type HazardDamageEvent struct {
	PlayerID string
	HazardID string
	Damage   int
}

// HazardManager owns all hazard zones of one match.
type HazardManager struct {
	hazards map[string]*Hazard
	events  events.Buffer
}

// NewHazardManager creates an empty hazard manager.
func NewHazardManager() *HazardManager {
	return &HazardManager{hazards: make(map[string]*Hazard)}
}

// Add registers a hazard. An existing hazard with the same id is replaced.
func (m *HazardManager) Add(h *Hazard) {
	h.occupants = make(map[string]bool)
	h.lastDamage = make(map[string]time.Time)
	m.hazards[h.ID] = h
}

// Remove deletes a hazard by id.
func (m *HazardManager) Remove(id string) {
	delete(m.hazards, id)
}

// Count returns the number of live hazards.
func (m *HazardManager) Count() int {
	return len(m.hazards)
}

// Update advances occupancy tracking and despawns, returning the damage
// applications owed for this tick.
func (m *HazardManager) Update(now time.Time, positions map[string]Vec2) []HazardDamageEvent {
	var damage []HazardDamageEvent

	for id, h := range m.hazards {
		if h.DespawnAt != nil && now.After(*h.DespawnAt) {
			m.events.Emit("hazard_despawn", map[string]any{"hazardId": id})
			delete(m.hazards, id)
			continue
		}

		for playerID, pos := range positions {
			inside := h.Bounds.Contains(pos)
			was := h.occupants[playerID]

			switch {
			case inside && !was:
				h.occupants[playerID] = true
				h.lastDamage[playerID] = now
				m.events.Emit("hazard_enter", map[string]any{
					"hazardId": id,
					"playerId": playerID,
					"kind":     h.Kind.String(),
				})
			case !inside && was:
				delete(h.occupants, playerID)
				delete(h.lastDamage, playerID)
				m.events.Emit("hazard_exit", map[string]any{
					"hazardId": id,
					"playerId": playerID,
				})
			}

			if inside && h.Kind == HazardDamage {
				if now.Sub(h.lastDamage[playerID]) >= HazardDamageInterval {
					h.lastDamage[playerID] = now
					damage = append(damage, HazardDamageEvent{
						PlayerID: playerID,
						HazardID: id,
						Damage:   int(h.Intensity),
					})
					m.events.Emit("hazard_damage", map[string]any{
						"hazardId": id,
						"playerId": playerID,
						"damage":   int(h.Intensity),
					})
				}
			}
		}
	}

	return damage
}

// SpeedMultiplier returns the combined slow factor for a player, 1.0 when
// unaffected. Multiple slow hazards stack multiplicatively but never speed
// a player up.
func (m *HazardManager) SpeedMultiplier(playerID string) float64 {
	mult := 1.0
	for _, h := range m.hazards {
		if h.Kind == HazardSlow && h.occupants[playerID] {
			f := h.Intensity
			if f > 1 {
				f = 1
			}
			mult *= f
		}
	}
	return mult
}

// BlocksCollection reports whether the player is inside an EMP hazard,
// which disables power-up pickup.
func (m *HazardManager) BlocksCollection(playerID string) bool {
	for _, h := range m.hazards {
		if h.Kind == HazardEMP && h.occupants[playerID] {
			return true
		}
	}
	return false
}

// HazardState is the serializable snapshot of one hazard.
type HazardState struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"`
	Bounds    Rect    `json:"bounds"`
	Intensity float64 `json:"intensity"`
}

// State returns a snapshot of every live hazard.
func (m *HazardManager) State() []HazardState {
	out := make([]HazardState, 0, len(m.hazards))
	for _, h := range m.hazards {
		out = append(out, HazardState{
			ID:        h.ID,
			Kind:      h.Kind.String(),
			Bounds:    h.Bounds,
			Intensity: h.Intensity,
		})
	}
	return out
}

// DrainEvents returns ownership of pending hazard events.
func (m *HazardManager) DrainEvents() []events.Event {
	return m.events.Drain()
}

// Clear removes every hazard.
func (m *HazardManager) Clear() {
	m.hazards = make(map[string]*Hazard)
}
