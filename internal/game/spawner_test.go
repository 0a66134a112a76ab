package game

import (
	"testing"
	"time"

	"trivia-arena/internal/arena"
	"trivia-arena/internal/config"
)

func testSpawnConfig() config.SpawnConfig {
	return config.SpawnConfig{
		HazardInterval:    20 * time.Second,
		TrapInterval:      30 * time.Second,
		MaxHazards:        3,
		MaxTraps:          2,
		MinLifetime:       10 * time.Second,
		MaxLifetime:       25 * time.Second,
		EdgeMargin:        80,
		MinClearance:      40,
		PlacementAttempts: 12,
	}
}

// TestSpawnerIntervals tests that nothing spawns before the first interval
// elapses and one entity spawns per due interval.
func TestSpawnerIntervals(t *testing.T) {
	s := NewSpawner(testSpawnConfig(), testWorld(), 1)
	ar := arena.New()
	players := map[string]*PlayerState{}
	now := time.Now()

	// First update arms the clocks.
	s.Update(now, ar, players)
	if ar.Hazards.Count() != 0 || ar.Traps.Count() != 0 {
		t.Errorf("Expected nothing spawned on the first update")
	}

	s.Update(now.Add(10*time.Second), ar, players)
	if ar.Hazards.Count() != 0 {
		t.Errorf("Expected no hazard before the interval, got %d", ar.Hazards.Count())
	}

	s.Update(now.Add(20*time.Second), ar, players)
	if ar.Hazards.Count() != 1 {
		t.Errorf("Expected 1 hazard at the interval, got %d", ar.Hazards.Count())
	}
	if ar.Traps.Count() != 0 {
		t.Errorf("Expected no trap before its interval, got %d", ar.Traps.Count())
	}

	s.Update(now.Add(30*time.Second), ar, players)
	if ar.Traps.Count() != 1 {
		t.Errorf("Expected 1 trap at its interval, got %d", ar.Traps.Count())
	}
}

// TestSpawnerRespectsCaps tests that the hazard and trap caps hold.
func TestSpawnerRespectsCaps(t *testing.T) {
	cfg := testSpawnConfig()
	cfg.MaxHazards = 1
	cfg.MaxTraps = 1
	s := NewSpawner(cfg, testWorld(), 1)
	ar := arena.New()
	players := map[string]*PlayerState{}
	now := time.Now()

	s.Update(now, ar, players)
	for i := 1; i <= 10; i++ {
		s.Update(now.Add(time.Duration(i)*30*time.Second), ar, players)
	}

	if ar.Hazards.Count() > 1 {
		t.Errorf("Expected at most 1 hazard, got %d", ar.Hazards.Count())
	}
	if ar.Traps.Count() > 1 {
		t.Errorf("Expected at most 1 trap, got %d", ar.Traps.Count())
	}
}

// TestSpawnerEdgeMargin tests that spawned entities stay inside the margin.
func TestSpawnerEdgeMargin(t *testing.T) {
	s := NewSpawner(testSpawnConfig(), testWorld(), 7)
	ar := arena.New()
	players := map[string]*PlayerState{}
	now := time.Now()

	s.Update(now, ar, players)
	for i := 1; i <= 6; i++ {
		s.Update(now.Add(time.Duration(i)*20*time.Second), ar, players)
	}

	world := testWorld()
	for _, h := range ar.Hazards.State() {
		cx := h.Bounds.X + h.Bounds.Width/2
		cy := h.Bounds.Y + h.Bounds.Height/2
		if cx < 80 || cx > world.Width-80 || cy < 80 || cy > world.Height-80 {
			t.Errorf("Expected hazard center inside the edge margin, got (%v, %v)", cx, cy)
		}
	}
}

// TestSpawnerClearance tests that spawns keep their distance from players.
func TestSpawnerClearance(t *testing.T) {
	s := NewSpawner(testSpawnConfig(), testWorld(), 3)
	ar := arena.New()
	world := testWorld()
	players := map[string]*PlayerState{
		"p1": NewPlayerState("p1", arena.Vec2{X: world.Width / 2, Y: world.Height / 2}, 60),
	}
	now := time.Now()

	s.Update(now, ar, players)
	for i := 1; i <= 6; i++ {
		s.Update(now.Add(time.Duration(i)*20*time.Second), ar, players)
	}

	player := arena.Vec2{X: world.Width / 2, Y: world.Height / 2}
	for _, h := range ar.Hazards.State() {
		center := arena.Vec2{X: h.Bounds.X + h.Bounds.Width/2, Y: h.Bounds.Y + h.Bounds.Height/2}
		if arena.Dist(center, player) <= h.Bounds.Width/2+40 {
			t.Errorf("Expected hazard to keep clearance from the player, center (%v, %v)", center.X, center.Y)
		}
	}
	for _, tr := range ar.Traps.State() {
		if arena.Dist(tr.Pos, player) <= tr.Radius+40 {
			t.Errorf("Expected trap to keep clearance from the player, pos (%v, %v)", tr.Pos.X, tr.Pos.Y)
		}
	}
}

// TestSpawnerLifetimes tests that spawned hazards eventually despawn.
func TestSpawnerLifetimes(t *testing.T) {
	s := NewSpawner(testSpawnConfig(), testWorld(), 9)
	ar := arena.New()
	players := map[string]*PlayerState{}
	now := time.Now()

	s.Update(now, ar, players)
	s.Update(now.Add(20*time.Second), ar, players)
	if ar.Hazards.Count() != 1 {
		t.Fatalf("Expected 1 hazard, got %d", ar.Hazards.Count())
	}

	// Max lifetime is 25s; well past it the hazard is gone.
	ar.Hazards.Update(now.Add(50*time.Second), map[string]arena.Vec2{})
	if ar.Hazards.Count() != 0 {
		t.Errorf("Expected hazard despawned after max lifetime, got %d", ar.Hazards.Count())
	}
}
