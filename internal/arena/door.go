package arena

import (
	"fmt"
	"time"

	"trivia-arena/internal/events"
)

// DoorState is the 4-state door cycle CLOSED <-> OPENING <-> OPEN <-> CLOSING.
type DoorState uint8

const (
	DoorClosed DoorState = iota
	DoorOpening
	DoorOpen
	DoorClosing
)

// String returns the wire name of the door state.
func (s DoorState) String() string {
	switch s {
	case DoorClosed:
		return "closed"
	case DoorOpening:
		return "opening"
	case DoorOpen:
		return "open"
	case DoorClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// DoorTrigger classifies what opens a door.
type DoorTrigger uint8

const (
	TriggerPressurePlate DoorTrigger = iota
	TriggerTrivia
	TriggerTimer
	TriggerManual
)

// String returns the wire name of the door trigger source.
func (t DoorTrigger) String() string {
	switch t {
	case TriggerPressurePlate:
		return "pressure_plate"
	case TriggerTrivia:
		return "trivia"
	case TriggerTimer:
		return "timer"
	case TriggerManual:
		return "manual"
	default:
		return "unknown"
	}
}

// ParseDoorTrigger maps a config string to a door trigger source.
func ParseDoorTrigger(s string) (DoorTrigger, error) {
	switch s {
	case "pressure_plate":
		return TriggerPressurePlate, nil
	case "trivia":
		return TriggerTrivia, nil
	case "timer":
		return TriggerTimer, nil
	case "manual":
		return TriggerManual, nil
	default:
		return 0, fmt.Errorf("unknown door trigger %q", s)
	}
}

// Blocking thresholds: an opening door stops blocking only once it is nearly
// fully open, and a closing door starts blocking again early.
const (
	doorOpeningClearProgress = 0.8
	doorClosingBlockProgress = 0.2
)

// Door is a sliding barrier with animated open/close progress.
type Door struct {
	ID           string
	Bounds       Rect
	Orientation  string // "horizontal" or "vertical"
	Trigger      DoorTrigger
	LinkedWith   string        // External trigger id; empty means none
	OpenDuration time.Duration // Full traversal time of the progress range
	AutoClose    time.Duration // Dwell fully open before closing; 0 disables

	State    DoorState
	Progress float64 // 0 fully closed, 1 fully open
	openedAt time.Time
}

// DoorManager owns all doors of one match.
type DoorManager struct {
	doors  map[string]*Door
	events events.Buffer
}

// NewDoorManager creates an empty door manager.
func NewDoorManager() *DoorManager {
	return &DoorManager{doors: make(map[string]*Door)}
}

// Add registers a door in the CLOSED state.
func (m *DoorManager) Add(d *Door) {
	d.State = DoorClosed
	d.Progress = 0
	if d.OpenDuration <= 0 {
		d.OpenDuration = time.Second
	}
	m.doors[d.ID] = d
}

// Remove deletes a door by id.
func (m *DoorManager) Remove(id string) {
	delete(m.doors, id)
}

// Get returns a door by id for tests and debugging.
func (m *DoorManager) Get(id string) *Door {
	return m.doors[id]
}

// Open starts opening a door. No-op if already open or opening.
func (m *DoorManager) Open(id string) {
	d, ok := m.doors[id]
	if !ok || d.State == DoorOpen || d.State == DoorOpening {
		return
	}
	d.State = DoorOpening
	m.events.Emit("door_opening", map[string]any{"doorId": id})
}

// Close starts closing a door. No-op if already closed or closing.
func (m *DoorManager) Close(id string) {
	d, ok := m.doors[id]
	if !ok || d.State == DoorClosed || d.State == DoorClosing {
		return
	}
	d.State = DoorClosing
	m.events.Emit("door_closing", map[string]any{"doorId": id})
}

// Toggle flips a door between opening and closing.
func (m *DoorManager) Toggle(id string) {
	d, ok := m.doors[id]
	if !ok {
		return
	}
	switch d.State {
	case DoorClosed, DoorClosing:
		m.Open(id)
	default:
		m.Close(id)
	}
}

// TriggerLink toggles every door linked to the given external trigger id.
func (m *DoorManager) TriggerLink(triggerID string) {
	for id, d := range m.doors {
		if d.LinkedWith == triggerID {
			m.Toggle(id)
		}
	}
}

// Update advances door progress. Progress moves at 1/OpenDuration per second
// and is clamped to [0,1].
func (m *DoorManager) Update(now time.Time, dt float64) {
	for id, d := range m.doors {
		rate := dt / d.OpenDuration.Seconds()

		switch d.State {
		case DoorOpening:
			d.Progress += rate
			if d.Progress >= 1 {
				d.Progress = 1
				d.State = DoorOpen
				d.openedAt = now
				m.events.Emit("door_open", map[string]any{"doorId": id})
			}
		case DoorClosing:
			d.Progress -= rate
			if d.Progress <= 0 {
				d.Progress = 0
				d.State = DoorClosed
				m.events.Emit("door_closed", map[string]any{"doorId": id})
			}
		case DoorOpen:
			if d.AutoClose > 0 && now.Sub(d.openedAt) >= d.AutoClose {
				m.Close(id)
			}
		}
	}
}

// IsBlocking reports whether the door currently blocks movement.
func (d *Door) IsBlocking() bool {
	switch d.State {
	case DoorClosed:
		return true
	case DoorOpen:
		return false
	case DoorOpening:
		return d.Progress < doorOpeningClearProgress
	case DoorClosing:
		return d.Progress > doorClosingBlockProgress
	default:
		return true
	}
}

// BlocksPoint reports whether any blocking door covers the position.
func (m *DoorManager) BlocksPoint(p Vec2) bool {
	for _, d := range m.doors {
		if d.IsBlocking() && d.Bounds.Contains(p) {
			return true
		}
	}
	return false
}

// DoorSnapshot is the serializable state of one door.
type DoorSnapshot struct {
	ID       string  `json:"id"`
	Bounds   Rect    `json:"bounds"`
	State    string  `json:"state"`
	Progress float64 `json:"progress"`
	Blocking bool    `json:"blocking"`
}

// State returns a snapshot of every door.
func (m *DoorManager) State() []DoorSnapshot {
	out := make([]DoorSnapshot, 0, len(m.doors))
	for _, d := range m.doors {
		out = append(out, DoorSnapshot{
			ID:       d.ID,
			Bounds:   d.Bounds,
			State:    d.State.String(),
			Progress: d.Progress,
			Blocking: d.IsBlocking(),
		})
	}
	return out
}

// DrainEvents returns ownership of pending door events.
func (m *DoorManager) DrainEvents() []events.Event {
	return m.events.Drain()
}

// Clear removes every door.
func (m *DoorManager) Clear() {
	m.doors = make(map[string]*Door)
}
