// Package arena implements the environmental mechanics layered on a match
// space: hazards, traps, teleporters and jump pads, doors, moving platforms,
// barriers and power-ups. Each entity set is owned by its manager; all
// managers share the add/update/state/drain-events contract and are driven
// strictly sequentially by the match tick loop.
package arena

import "trivia-arena/internal/events"

// Arena bundles the seven peer mechanics managers of one match.
type Arena struct {
	Hazards   *HazardManager
	Traps     *TrapManager
	Transport *TransportManager
	Doors     *DoorManager
	Platforms *PlatformManager
	Barriers  *BarrierManager
	PowerUps  *PowerUpManager
}

// New creates an empty arena.
func New() *Arena {
	return &Arena{
		Hazards:   NewHazardManager(),
		Traps:     NewTrapManager(),
		Transport: NewTransportManager(),
		Doors:     NewDoorManager(),
		Platforms: NewPlatformManager(),
		Barriers:  NewBarrierManager(),
		PowerUps:  NewPowerUpManager(),
	}
}

// State is the combined serializable arena snapshot.
type State struct {
	Hazards   []HazardState      `json:"hazards"`
	Traps     []TrapSnapshot     `json:"traps"`
	Transport TransportState     `json:"transport"`
	Doors     []DoorSnapshot     `json:"doors"`
	Platforms []PlatformSnapshot `json:"platforms"`
	Barriers  []BarrierSnapshot  `json:"barriers"`
	PowerUps  []PowerUpState     `json:"powerups"`
}

// Snapshot captures the full arena state.
func (a *Arena) Snapshot() State {
	return State{
		Hazards:   a.Hazards.State(),
		Traps:     a.Traps.State(),
		Transport: a.Transport.State(),
		Doors:     a.Doors.State(),
		Platforms: a.Platforms.State(),
		Barriers:  a.Barriers.State(),
		PowerUps:  a.PowerUps.State(),
	}
}

// DrainEvents drains every manager's buffer into one batch.
func (a *Arena) DrainEvents() []events.Event {
	var out []events.Event
	out = append(out, a.Hazards.DrainEvents()...)
	out = append(out, a.Traps.DrainEvents()...)
	out = append(out, a.Transport.DrainEvents()...)
	out = append(out, a.Doors.DrainEvents()...)
	out = append(out, a.Platforms.DrainEvents()...)
	out = append(out, a.Barriers.DrainEvents()...)
	out = append(out, a.PowerUps.DrainEvents()...)
	return out
}

// Clear empties every manager.
func (a *Arena) Clear() {
	a.Hazards.Clear()
	a.Traps.Clear()
	a.Transport.Clear()
	a.Doors.Clear()
	a.Platforms.Clear()
	a.Barriers.Clear()
	a.PowerUps.Clear()
}
