package arena

import (
	"fmt"

	"trivia-arena/internal/events"
)

// PowerUpKind classifies a collectible power-up.
type PowerUpKind uint8

const (
	PowerUpSOS PowerUpKind = iota
	PowerUpTimeSteal
	PowerUpShield
	PowerUpDoublePoints
)

// String returns the wire name of the power-up kind.
func (k PowerUpKind) String() string {
	switch k {
	case PowerUpSOS:
		return "sos"
	case PowerUpTimeSteal:
		return "time_steal"
	case PowerUpShield:
		return "shield"
	case PowerUpDoublePoints:
		return "double_points"
	default:
		return "unknown"
	}
}

// ParsePowerUpKind maps a config string to a power-up kind.
func ParsePowerUpKind(s string) (PowerUpKind, error) {
	switch s {
	case "sos":
		return PowerUpSOS, nil
	case "time_steal":
		return PowerUpTimeSteal, nil
	case "shield":
		return PowerUpShield, nil
	case "double_points":
		return PowerUpDoublePoints, nil
	default:
		return 0, fmt.Errorf("unknown powerup kind %q", s)
	}
}

// PowerUp is a one-shot collectible.
type PowerUp struct {
	ID     string
	Pos    Vec2
	Radius float64
	Kind   PowerUpKind
	Active bool
}

// PowerUpManager owns all power-ups of one match.
type PowerUpManager struct {
	powerups map[string]*PowerUp
	events   events.Buffer
}

// NewPowerUpManager creates an empty power-up manager.
func NewPowerUpManager() *PowerUpManager {
	return &PowerUpManager{powerups: make(map[string]*PowerUp)}
}

// Add registers an active power-up.
func (m *PowerUpManager) Add(p *PowerUp) {
	p.Active = true
	m.powerups[p.ID] = p
}

// Remove deletes a power-up by id.
func (m *PowerUpManager) Remove(id string) {
	delete(m.powerups, id)
}

// Collect deactivates the first active power-up within radius of the player
// position and returns its kind. Collected power-ups never reactivate.
func (m *PowerUpManager) Collect(playerID string, pos Vec2) (PowerUpKind, bool) {
	for id, p := range m.powerups {
		if !p.Active || Dist(p.Pos, pos) > p.Radius {
			continue
		}
		p.Active = false
		m.events.Emit("powerup_collected", map[string]any{
			"powerupId": id,
			"playerId":  playerID,
			"kind":      p.Kind.String(),
		})
		return p.Kind, true
	}
	return 0, false
}

// PowerUpState is the serializable state of one power-up.
type PowerUpState struct {
	ID     string  `json:"id"`
	Pos    Vec2    `json:"pos"`
	Radius float64 `json:"radius"`
	Kind   string  `json:"kind"`
	Active bool    `json:"active"`
}

// State returns a snapshot of every power-up.
func (m *PowerUpManager) State() []PowerUpState {
	out := make([]PowerUpState, 0, len(m.powerups))
	for _, p := range m.powerups {
		out = append(out, PowerUpState{
			ID:     p.ID,
			Pos:    p.Pos,
			Radius: p.Radius,
			Kind:   p.Kind.String(),
			Active: p.Active,
		})
	}
	return out
}

// DrainEvents returns ownership of pending power-up events.
func (m *PowerUpManager) DrainEvents() []events.Event {
	return m.events.Drain()
}

// Clear removes every power-up.
func (m *PowerUpManager) Clear() {
	m.powerups = make(map[string]*PowerUp)
}
