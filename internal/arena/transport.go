package arena

import (
	"fmt"
	"log"
	"time"

	"trivia-arena/internal/events"
)

const (
	// TeleporterCooldown applies to both pads of a pair after a player
	// uses either one.
	TeleporterCooldown = 2 * time.Second

	// JumpPadCooldown is per player per pad.
	JumpPadCooldown = 1500 * time.Millisecond
)

// Teleporter is one pad of a bidirectional pair.
type Teleporter struct {
	ID     string
	Pos    Vec2
	Radius float64
	PairID string
	LinkID string // Resolved partner, set once at load

	cooldownUntil map[string]time.Time
}

// JumpPad applies a velocity impulse to players touching it.
type JumpPad struct {
	ID        string
	Pos       Vec2
	Radius    float64
	Direction Vec2 // Normalized at load
	Force     float64

	cooldownUntil map[string]time.Time
}

// ParsePadDirection converts a compass direction string to a unit vector.
// Screen coordinates: north is negative Y.
func ParsePadDirection(s string) (Vec2, error) {
	switch s {
	case "N":
		return Vec2{0, -1}, nil
	case "S":
		return Vec2{0, 1}, nil
	case "E":
		return Vec2{1, 0}, nil
	case "W":
		return Vec2{-1, 0}, nil
	case "NE":
		return Vec2{1, -1}.Normalized(), nil
	case "NW":
		return Vec2{-1, -1}.Normalized(), nil
	case "SE":
		return Vec2{1, 1}.Normalized(), nil
	case "SW":
		return Vec2{-1, 1}.Normalized(), nil
	default:
		return Vec2{}, fmt.Errorf("unknown pad direction %q", s)
	}
}

// TransportManager owns the teleporters and jump pads of one match.
type TransportManager struct {
	teleporters map[string]*Teleporter
	jumpPads    map[string]*JumpPad
	events      events.Buffer
}

// NewTransportManager creates an empty transport manager.
func NewTransportManager() *TransportManager {
	return &TransportManager{
		teleporters: make(map[string]*Teleporter),
		jumpPads:    make(map[string]*JumpPad),
	}
}

// AddTeleporter registers a teleporter pad. Links are resolved separately
// once every pad is loaded.
func (m *TransportManager) AddTeleporter(t *Teleporter) {
	t.cooldownUntil = make(map[string]time.Time)
	m.teleporters[t.ID] = t
}

// AddJumpPad registers a jump pad. The direction is normalized here so the
// impulse math can trust it.
func (m *TransportManager) AddJumpPad(p *JumpPad) {
	p.Direction = p.Direction.Normalized()
	p.cooldownUntil = make(map[string]time.Time)
	m.jumpPads[p.ID] = p
}

// ResolveLinks pairs teleporters sharing a pair id. Pads without exactly one
// partner are logged and left unlinked rather than failing the load.
func (m *TransportManager) ResolveLinks() {
	byPair := make(map[string][]*Teleporter)
	for _, t := range m.teleporters {
		byPair[t.PairID] = append(byPair[t.PairID], t)
	}
	for pairID, pads := range byPair {
		if len(pads) != 2 {
			log.Printf("⚠️ Teleporter pair %q has %d pads, expected 2; leaving unlinked", pairID, len(pads))
			continue
		}
		pads[0].LinkID = pads[1].ID
		pads[1].LinkID = pads[0].ID
	}
}

// Apply resolves teleport and jump pad effects for one player position.
// It returns the possibly-updated position and velocity and whether anything
// changed. At most one teleport and one jump pad fire per call.
func (m *TransportManager) Apply(now time.Time, playerID string, pos, vel Vec2) (Vec2, Vec2, bool) {
	changed := false

	for _, t := range m.teleporters {
		if t.LinkID == "" || Dist(t.Pos, pos) > t.Radius {
			continue
		}
		if now.Before(t.cooldownUntil[playerID]) {
			continue
		}
		dest, ok := m.teleporters[t.LinkID]
		if !ok {
			continue
		}

		// Both pads reject this player until the cooldown elapses so the
		// destination pad does not immediately bounce them back.
		until := now.Add(TeleporterCooldown)
		t.cooldownUntil[playerID] = until
		dest.cooldownUntil[playerID] = until

		m.events.Emit("teleport", map[string]any{
			"playerId": playerID,
			"fromId":   t.ID,
			"toId":     dest.ID,
			"pos":      dest.Pos,
		})
		pos = dest.Pos
		changed = true
		break
	}

	for _, p := range m.jumpPads {
		if Dist(p.Pos, pos) > p.Radius {
			continue
		}
		if now.Before(p.cooldownUntil[playerID]) {
			continue
		}
		p.cooldownUntil[playerID] = now.Add(JumpPadCooldown)

		vel = p.Direction.Scale(p.Force)
		m.events.Emit("jump_pad", map[string]any{
			"playerId": playerID,
			"padId":    p.ID,
			"velocity": vel,
		})
		changed = true
		break
	}

	return pos, vel, changed
}

// TeleporterState is the serializable state of one teleporter pad.
type TeleporterState struct {
	ID     string  `json:"id"`
	Pos    Vec2    `json:"pos"`
	Radius float64 `json:"radius"`
	PairID string  `json:"pairId"`
}

// JumpPadState is the serializable state of one jump pad.
type JumpPadState struct {
	ID        string  `json:"id"`
	Pos       Vec2    `json:"pos"`
	Radius    float64 `json:"radius"`
	Direction Vec2    `json:"direction"`
	Force     float64 `json:"force"`
}

// TransportState bundles both entity sets for snapshots.
type TransportState struct {
	Teleporters []TeleporterState `json:"teleporters"`
	JumpPads    []JumpPadState    `json:"jumpPads"`
}

// State returns a snapshot of every transport entity.
func (m *TransportManager) State() TransportState {
	st := TransportState{
		Teleporters: make([]TeleporterState, 0, len(m.teleporters)),
		JumpPads:    make([]JumpPadState, 0, len(m.jumpPads)),
	}
	for _, t := range m.teleporters {
		st.Teleporters = append(st.Teleporters, TeleporterState{
			ID: t.ID, Pos: t.Pos, Radius: t.Radius, PairID: t.PairID,
		})
	}
	for _, p := range m.jumpPads {
		st.JumpPads = append(st.JumpPads, JumpPadState{
			ID: p.ID, Pos: p.Pos, Radius: p.Radius, Direction: p.Direction, Force: p.Force,
		})
	}
	return st
}

// DrainEvents returns ownership of pending transport events.
func (m *TransportManager) DrainEvents() []events.Event {
	return m.events.Drain()
}

// Clear removes every transport entity.
func (m *TransportManager) Clear() {
	m.teleporters = make(map[string]*Teleporter)
	m.jumpPads = make(map[string]*JumpPad)
}
