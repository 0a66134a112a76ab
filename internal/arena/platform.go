package arena

import (
	"fmt"
	"math"

	"trivia-arena/internal/events"
)

// PlatformMovement selects path traversal and easing behavior.
type PlatformMovement uint8

const (
	MoveLinear   PlatformMovement = iota // Constant speed along segments
	MoveSineWave                         // Cosine easing within each segment
	MoveCircular                         // Linear easing, path always wraps
	MovePingPong                         // Reverses direction at path ends
)

// String returns the wire name of the movement kind.
func (k PlatformMovement) String() string {
	switch k {
	case MoveLinear:
		return "linear"
	case MoveSineWave:
		return "sine_wave"
	case MoveCircular:
		return "circular"
	case MovePingPong:
		return "pingpong"
	default:
		return "unknown"
	}
}

// ParsePlatformMovement maps a config string to a movement kind.
func ParsePlatformMovement(s string) (PlatformMovement, error) {
	switch s {
	case "linear":
		return MoveLinear, nil
	case "sine_wave":
		return MoveSineWave, nil
	case "circular":
		return MoveCircular, nil
	case "pingpong":
		return MovePingPong, nil
	default:
		return 0, fmt.Errorf("unknown platform movement %q", s)
	}
}

// Platform is a moving rectangle following an ordered waypoint path.
type Platform struct {
	ID        string
	Size      Vec2 // Width, height of the platform rectangle
	Waypoints []Vec2
	Speed     float64 // Pixels per second along the path
	Movement  PlatformMovement
	Loop      bool
	PauseTime float64 // Seconds to dwell at each waypoint; 0 disables

	Pos      Vec2
	Velocity Vec2
	segment  int     // Index of the segment's start waypoint
	progress float64 // [0,1] along the current segment
	dir      int     // +1 forward, -1 backward (pingpong)
	pausing  float64 // Remaining pause seconds
}

// PlatformManager owns all moving platforms of one match.
type PlatformManager struct {
	platforms map[string]*Platform
	events    events.Buffer
}

// NewPlatformManager creates an empty platform manager.
func NewPlatformManager() *PlatformManager {
	return &PlatformManager{platforms: make(map[string]*Platform)}
}

// Add registers a platform positioned at its first waypoint.
func (m *PlatformManager) Add(p *Platform) {
	p.dir = 1
	if len(p.Waypoints) > 0 {
		p.Pos = p.Waypoints[0]
	}
	if p.Movement == MoveCircular {
		p.Loop = true
	}
	m.platforms[p.ID] = p
}

// Remove deletes a platform by id.
func (m *PlatformManager) Remove(id string) {
	delete(m.platforms, id)
}

// Get returns a platform by id for tests and debugging.
func (m *PlatformManager) Get(id string) *Platform {
	return m.platforms[id]
}

// Update advances every platform along its path.
func (m *PlatformManager) Update(dt float64) {
	for _, p := range m.platforms {
		m.advance(p, dt)
	}
}

func (m *PlatformManager) advance(p *Platform, dt float64) {
	if len(p.Waypoints) < 2 || p.Speed <= 0 {
		p.Velocity = Vec2{}
		return
	}

	if p.pausing > 0 {
		p.pausing -= dt
		p.Velocity = Vec2{}
		return
	}

	// A non-looping path parks at its final waypoint.
	if !p.Loop && p.Movement != MovePingPong && p.segment == len(p.Waypoints)-1 {
		p.Velocity = Vec2{}
		return
	}

	from := p.Waypoints[p.segment]
	to := p.Waypoints[m.nextIndex(p)]
	segLen := Dist(from, to)
	if segLen == 0 {
		segLen = 1
	}

	prev := p.Pos
	p.progress += p.Speed * dt / segLen
	if p.progress >= 1 {
		p.progress = 0
		p.segment = m.nextIndex(p)
		p.Pos = to
		p.pausing = p.PauseTime
		m.events.Emit("platform_waypoint", map[string]any{
			"platformId": p.ID,
			"waypoint":   p.segment,
		})
		m.stepEnds(p)
	} else {
		t := p.progress
		if p.Movement == MoveSineWave {
			// Cosine easing: slow at the ends, fast through the middle.
			t = (1 - math.Cos(math.Pi*p.progress)) / 2
		}
		p.Pos = from.Add(to.Sub(from).Scale(t))
	}

	if dt > 0 {
		p.Velocity = p.Pos.Sub(prev).Scale(1 / dt)
	}
}

// nextIndex returns the waypoint the platform is heading toward.
func (m *PlatformManager) nextIndex(p *Platform) int {
	n := len(p.Waypoints)
	next := p.segment + p.dir
	if next >= n {
		if p.Movement == MovePingPong {
			return n - 2
		}
		return 0
	}
	if next < 0 {
		return 1
	}
	return next
}

// stepEnds handles path-end behavior after arriving at a waypoint:
// pingpong reverses, looping paths wrap and report a completed circuit.
func (m *PlatformManager) stepEnds(p *Platform) {
	n := len(p.Waypoints)

	if p.Movement == MovePingPong {
		if p.segment == n-1 && p.dir == 1 {
			p.dir = -1
			m.events.Emit("platform_loop", map[string]any{"platformId": p.ID})
		} else if p.segment == 0 && p.dir == -1 {
			p.dir = 1
		}
		return
	}

	if p.segment == 0 && p.Loop {
		m.events.Emit("platform_loop", map[string]any{"platformId": p.ID})
	}
}

// PlatformSnapshot is the serializable state of one platform.
type PlatformSnapshot struct {
	ID       string `json:"id"`
	Pos      Vec2   `json:"pos"`
	Size     Vec2   `json:"size"`
	Velocity Vec2   `json:"velocity"`
	Movement string `json:"movement"`
}

// State returns a snapshot of every platform.
func (m *PlatformManager) State() []PlatformSnapshot {
	out := make([]PlatformSnapshot, 0, len(m.platforms))
	for _, p := range m.platforms {
		out = append(out, PlatformSnapshot{
			ID:       p.ID,
			Pos:      p.Pos,
			Size:     p.Size,
			Velocity: p.Velocity,
			Movement: p.Movement.String(),
		})
	}
	return out
}

// RiderVelocity returns the velocity a player standing on a platform inherits,
// or the zero vector if the position is not on any platform.
func (m *PlatformManager) RiderVelocity(pos Vec2) Vec2 {
	for _, p := range m.platforms {
		r := Rect{X: p.Pos.X, Y: p.Pos.Y, Width: p.Size.X, Height: p.Size.Y}
		if r.Contains(pos) {
			return p.Velocity
		}
	}
	return Vec2{}
}

// DrainEvents returns ownership of pending platform events.
func (m *PlatformManager) DrainEvents() []events.Event {
	return m.events.Drain()
}

// Clear removes every platform.
func (m *PlatformManager) Clear() {
	m.platforms = make(map[string]*Platform)
}
