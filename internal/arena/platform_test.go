package arena

import (
	"math"
	"testing"
)

// TestPlatformLinear tests constant-speed traversal between two waypoints
func TestPlatformLinear(t *testing.T) {
	m := NewPlatformManager()
	m.Add(&Platform{
		ID:        "pl1",
		Size:      Vec2{X: 60, Y: 20},
		Waypoints: []Vec2{{X: 0, Y: 100}, {X: 100, Y: 100}},
		Speed:     100,
		Movement:  MoveLinear,
	})

	// One second at 100 px/s over a 100 px segment: arrives at the far end
	m.Update(0.5)
	p := m.Get("pl1")
	if math.Abs(p.Pos.X-50) > 1e-9 {
		t.Errorf("Expected X=50 at half traversal, got %f", p.Pos.X)
	}
	if math.Abs(p.Velocity.X-100) > 1e-6 {
		t.Errorf("Expected velocity 100 px/s, got %f", p.Velocity.X)
	}
}

// TestPlatformPingPong tests direction reversal at path ends
func TestPlatformPingPong(t *testing.T) {
	m := NewPlatformManager()
	m.Add(&Platform{
		ID:        "pl1",
		Size:      Vec2{X: 60, Y: 20},
		Waypoints: []Vec2{{X: 0, Y: 0}, {X: 100, Y: 0}},
		Speed:     100,
		Movement:  MovePingPong,
	})

	// Reach the far waypoint
	m.Update(1.0)
	p := m.Get("pl1")
	if p.Pos.X != 100 {
		t.Fatalf("Expected arrival at X=100, got %f", p.Pos.X)
	}

	// Continue: platform should head back toward X=0
	m.Update(0.5)
	p = m.Get("pl1")
	if p.Pos.X >= 100 {
		t.Errorf("Platform should reverse after the last waypoint, got X=%f", p.Pos.X)
	}

	found := false
	for _, ev := range m.DrainEvents() {
		if ev.Type == "platform_loop" {
			found = true
		}
	}
	if !found {
		t.Error("Expected platform_loop event at the reversal")
	}
}

// TestPlatformLoopWrap tests that a looping path wraps to the first waypoint
func TestPlatformLoopWrap(t *testing.T) {
	m := NewPlatformManager()
	m.Add(&Platform{
		ID:        "pl1",
		Size:      Vec2{X: 40, Y: 40},
		Waypoints: []Vec2{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}},
		Speed:     100,
		Movement:  MoveLinear,
		Loop:      true,
	})

	// Traverse all three segments (100 + 100 + ~141 px)
	for i := 0; i < 40; i++ {
		m.Update(0.1)
	}
	p := m.Get("pl1")

	// After wrapping the platform is back on the first segment
	if p.segment != 0 && p.segment != 1 {
		t.Errorf("Platform should have wrapped around, segment %d", p.segment)
	}
}

// TestPlatformHaltsWithoutLoop tests that a non-looping path parks at its
// final waypoint instead of wrapping back to the first
func TestPlatformHaltsWithoutLoop(t *testing.T) {
	m := NewPlatformManager()
	m.Add(&Platform{
		ID:        "pl1",
		Size:      Vec2{X: 40, Y: 40},
		Waypoints: []Vec2{{X: 0, Y: 0}, {X: 100, Y: 0}},
		Speed:     100,
		Movement:  MoveLinear,
	})

	m.Update(1.0) // arrive at the last waypoint
	p := m.Get("pl1")
	if p.Pos.X != 100 {
		t.Fatalf("Expected arrival at X=100, got %f", p.Pos.X)
	}

	// Further updates hold the platform in place
	m.Update(1.0)
	m.Update(0.5)
	if p.Pos.X != 100 || p.Pos.Y != 0 {
		t.Errorf("Expected the platform parked at (100, 0), got (%f, %f)", p.Pos.X, p.Pos.Y)
	}
	if p.Velocity.X != 0 || p.Velocity.Y != 0 {
		t.Errorf("Parked platform should report zero velocity, got (%f, %f)", p.Velocity.X, p.Velocity.Y)
	}

	for _, ev := range m.DrainEvents() {
		if ev.Type == "platform_loop" {
			t.Error("A non-looping path should never report a completed circuit")
		}
	}
}

// TestPlatformPause tests the waypoint dwell
func TestPlatformPause(t *testing.T) {
	m := NewPlatformManager()
	m.Add(&Platform{
		ID:        "pl1",
		Size:      Vec2{X: 40, Y: 40},
		Waypoints: []Vec2{{X: 0, Y: 0}, {X: 100, Y: 0}},
		Speed:     100,
		Movement:  MoveLinear,
		Loop:      true,
		PauseTime: 1.0,
	})

	m.Update(1.0) // arrive, pause starts
	p := m.Get("pl1")
	arrived := p.Pos

	m.Update(0.5) // still pausing
	if p.Pos != arrived {
		t.Error("Platform should hold position during pause")
	}
	if p.Velocity.X != 0 || p.Velocity.Y != 0 {
		t.Error("Paused platform should report zero velocity")
	}
}

// TestRiderVelocity tests the velocity a standing player inherits
func TestRiderVelocity(t *testing.T) {
	m := NewPlatformManager()
	m.Add(&Platform{
		ID:        "pl1",
		Size:      Vec2{X: 60, Y: 20},
		Waypoints: []Vec2{{X: 0, Y: 100}, {X: 200, Y: 100}},
		Speed:     100,
		Movement:  MoveLinear,
	})

	m.Update(0.5)
	p := m.Get("pl1")

	// Standing on the platform
	ride := m.RiderVelocity(Vec2{X: p.Pos.X + 10, Y: p.Pos.Y + 5})
	if math.Abs(ride.X-100) > 1e-6 {
		t.Errorf("Rider should inherit platform velocity, got %f", ride.X)
	}

	// Standing elsewhere
	ride = m.RiderVelocity(Vec2{X: 900, Y: 900})
	if ride.X != 0 || ride.Y != 0 {
		t.Error("Player off the platform should inherit nothing")
	}
}
