package game

import (
	"testing"
	"time"

	"trivia-arena/internal/arena"
	"trivia-arena/internal/config"
)

func testAppConfig() *config.AppConfig {
	return &config.AppConfig{
		Tick:      config.DefaultTick(),
		World:     config.DefaultWorld(),
		Movement:  config.DefaultMovement(),
		AntiCheat: config.DefaultAntiCheat(),
		LagComp:   config.DefaultLagComp(),
		Combat:    config.DefaultCombat(),
		Buffs:     config.DefaultBuffs(),
		Spawn:     config.DefaultSpawn(),
		Server:    config.DefaultServer(),
	}
}

// TestMatchAddRemovePlayer tests the player roster limits.
func TestMatchAddRemovePlayer(t *testing.T) {
	m := NewMatch("m1", testAppConfig(), nil)

	if err := m.AddPlayer("p1"); err != nil {
		t.Fatalf("Expected first join to succeed, got %v", err)
	}
	if err := m.AddPlayer("p1"); err == nil {
		t.Errorf("Expected duplicate join to fail")
	}
	if err := m.AddPlayer("p2"); err != nil {
		t.Fatalf("Expected second join to succeed, got %v", err)
	}
	if err := m.AddPlayer("p3"); err == nil {
		t.Errorf("Expected third join to fail on a full duel")
	}

	m.RemovePlayer("p2")
	if err := m.AddPlayer("p3"); err != nil {
		t.Errorf("Expected join after a leave to succeed, got %v", err)
	}
}

// TestMatchTickCount tests that each Tick advances the counter.
func TestMatchTickCount(t *testing.T) {
	m := NewMatch("m1", testAppConfig(), nil)
	now := time.Now()
	for i := 0; i < 5; i++ {
		m.Tick(now.Add(time.Duration(i)*16*time.Millisecond), 1.0/60.0)
	}
	if m.TickCount() != 5 {
		t.Errorf("Expected tick count 5, got %d", m.TickCount())
	}
}

// TestMatchAppliesQueuedMovement tests the queue-then-drain input path.
func TestMatchAppliesQueuedMovement(t *testing.T) {
	m := NewMatch("m1", testAppConfig(), nil)
	if err := m.AddPlayer("p1"); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	snap := m.Snapshot()
	start := snap.Players[0]

	m.QueueMovement(MovementInput{
		PlayerID: "p1",
		X:        start.X + 5,
		Y:        start.Y,
		DX:       5,
		Seq:      1,
	})
	m.Tick(time.Now(), 1.0/60.0)

	snap = m.Snapshot()
	if snap.Players[0].X != start.X+5 {
		t.Errorf("Expected player at X=%v, got %v", start.X+5, snap.Players[0].X)
	}
	if snap.Players[0].VX != 5 {
		t.Errorf("Expected velocity X=5, got %v", snap.Players[0].VX)
	}

	// The queue was drained; another tick moves nothing.
	m.Tick(time.Now(), 1.0/60.0)
	snap = m.Snapshot()
	if snap.Players[0].X != start.X+5 {
		t.Errorf("Expected position unchanged on an empty queue, got %v", snap.Players[0].X)
	}
}

// TestMatchDropsStunnedMovement tests that stunned players cannot move.
func TestMatchDropsStunnedMovement(t *testing.T) {
	m := NewMatch("m1", testAppConfig(), nil)
	if err := m.AddPlayer("p1"); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	now := time.Now()
	m.stateMu.Lock()
	p := m.players["p1"]
	until := now.Add(time.Second)
	p.StunnedUntil = &until
	startX := p.X
	m.stateMu.Unlock()

	m.QueueMovement(MovementInput{PlayerID: "p1", X: startX + 5, Seq: 1})
	m.Tick(now, 1.0/60.0)

	if got := m.Snapshot().Players[0].X; got != startX {
		t.Errorf("Expected stunned player to stay at %v, got %v", startX, got)
	}
}

// TestMatchMovementClampedToWorld tests the world-bounds clamp.
func TestMatchMovementClampedToWorld(t *testing.T) {
	cfg := testAppConfig()
	cfg.AntiCheat.Enabled = false
	m := NewMatch("m1", cfg, nil)
	if err := m.AddPlayer("p1"); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	m.QueueMovement(MovementInput{PlayerID: "p1", X: -500, Y: 99999, Seq: 1})
	m.Tick(time.Now(), 1.0/60.0)

	snap := m.Snapshot().Players[0]
	if snap.X != 0 || snap.Y != cfg.World.Height {
		t.Errorf("Expected clamped position (0, %v), got (%v, %v)", cfg.World.Height, snap.X, snap.Y)
	}
}

// TestMatchBroadcastCadence tests that broadcasts run on the divisor.
func TestMatchBroadcastCadence(t *testing.T) {
	var snapshots int
	broadcast := func(event string, data any) error {
		if event == "snapshot" {
			snapshots++
		}
		return nil
	}

	cfg := testAppConfig()
	m := NewMatch("m1", cfg, broadcast)

	now := time.Now()
	for i := 0; i < 12; i++ {
		m.Tick(now.Add(time.Duration(i)*16*time.Millisecond), 1.0/60.0)
	}

	// BroadcastDivisor 6 over 12 ticks means 2 snapshot sends.
	if snapshots != 2 {
		t.Errorf("Expected 2 snapshot broadcasts over 12 ticks, got %d", snapshots)
	}
}

// TestMatchBroadcastIncludesBackloggedEvents tests that events produced on
// non-broadcast ticks still reach subscribers on the next broadcast tick.
func TestMatchBroadcastIncludesBackloggedEvents(t *testing.T) {
	var sent []string
	broadcast := func(event string, data any) error {
		sent = append(sent, event)
		return nil
	}

	m := NewMatch("m1", testAppConfig(), broadcast)
	if err := m.AddPlayer("p1"); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	// The fire lands on tick 1; the first broadcast runs on tick 6.
	m.QueueFire(FireInput{PlayerID: "p1", DirX: 1})
	now := time.Now()
	for i := 0; i < 6; i++ {
		m.Tick(now.Add(time.Duration(i)*16*time.Millisecond), 1.0/60.0)
	}

	var gotFire, gotSnapshot bool
	for _, ev := range sent {
		switch ev {
		case "fire":
			gotFire = true
		case "snapshot":
			gotSnapshot = true
		}
	}
	if !gotSnapshot {
		t.Errorf("Expected a snapshot broadcast on tick 6, got %v", sent)
	}
	if !gotFire {
		t.Errorf("Expected the tick-1 fire event in the broadcast stream, got %v", sent)
	}

	// The backlog was flushed; the next broadcast carries no stale events.
	sent = nil
	for i := 6; i < 12; i++ {
		m.Tick(now.Add(time.Duration(i)*16*time.Millisecond), 1.0/60.0)
	}
	for _, ev := range sent {
		if ev == "fire" {
			t.Errorf("Expected the fire event to be delivered once, got %v", sent)
		}
	}
}

// TestMatchLoadArena tests arena replacement from a config document.
func TestMatchLoadArena(t *testing.T) {
	m := NewMatch("m1", testAppConfig(), nil)

	m.LoadArena(&arena.ConfigDocument{
		Hazards: []arena.HazardConfig{
			{ID: "hz1", Kind: "damage", Bounds: arena.Rect{X: 100, Y: 100, Width: 80, Height: 80}, Intensity: 5},
		},
	})
	if got := len(m.Snapshot().Arena.Hazards); got != 1 {
		t.Errorf("Expected 1 hazard after load, got %d", got)
	}

	// Loading again replaces rather than accumulates.
	m.LoadArena(&arena.ConfigDocument{})
	if got := len(m.Snapshot().Arena.Hazards); got != 0 {
		t.Errorf("Expected empty arena after reload, got %d hazards", got)
	}
}

// TestMatchQuizRewardPath tests that a queued quiz outcome lands as a buff.
func TestMatchQuizRewardPath(t *testing.T) {
	m := NewMatch("m1", testAppConfig(), nil)
	if err := m.AddPlayer("p1"); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	m.QueueQuizOutcome(QuizOutcome{
		PlayerID:   "p1",
		QuestionID: "q1",
		Correct:    true,
		AnswerTime: time.Second,
		Allotted:   10 * time.Second,
	})
	m.Tick(time.Now(), 1.0/60.0)

	snap := m.Snapshot().Players[0]
	if len(snap.Buffs) != 1 || snap.Buffs[0].Type != "damage_boost" {
		t.Errorf("Expected a damage_boost buff from the fast answer, got %v", snap.Buffs)
	}
}

// TestMatchSOSPowerUp tests heal collection through the tick.
func TestMatchSOSPowerUp(t *testing.T) {
	m := NewMatch("m1", testAppConfig(), nil)
	if err := m.AddPlayer("p1"); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	m.stateMu.Lock()
	p := m.players["p1"]
	p.Combat.HP = 50
	pos := p.Pos()
	m.arena.PowerUps.Add(&arena.PowerUp{ID: "pu1", Pos: pos, Radius: 20, Kind: arena.PowerUpSOS})
	m.stateMu.Unlock()

	m.Tick(time.Now(), 1.0/60.0)

	if got := m.Snapshot().Players[0].HP; got != 75 {
		t.Errorf("Expected 75 HP after the heal, got %d", got)
	}
}

// TestMatchShieldPowerUp tests shield collection and its configured lifetime.
func TestMatchShieldPowerUp(t *testing.T) {
	cfg := testAppConfig()
	cfg.Buffs.ShieldDuration = 4 * time.Second
	m := NewMatch("m1", cfg, nil)
	if err := m.AddPlayer("p1"); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	m.stateMu.Lock()
	p := m.players["p1"]
	m.arena.PowerUps.Add(&arena.PowerUp{ID: "pu1", Pos: p.Pos(), Radius: 20, Kind: arena.PowerUpShield})
	m.stateMu.Unlock()

	now := time.Now()
	m.Tick(now, 1.0/60.0)

	m.stateMu.Lock()
	shield, ok := p.Buffs.Get(BuffShield)
	m.stateMu.Unlock()
	if !ok {
		t.Fatalf("Expected a shield buff after collection")
	}
	expected := now.Add(cfg.Buffs.ShieldDuration)
	if diff := shield.ExpiresAt.Sub(expected); diff < -time.Second || diff > time.Second {
		t.Errorf("Expected shield to expire near %v, got %v", expected, shield.ExpiresAt)
	}
	if got := p.Buffs.DamageTakenMultiplier(); got != 0.5 {
		t.Errorf("Expected shielded damage multiplier 0.5, got %v", got)
	}
}

// TestMatchCheckHit tests the lag-compensated hit query surface.
func TestMatchCheckHit(t *testing.T) {
	m := NewMatch("m1", testAppConfig(), nil)
	if err := m.AddPlayer("p1"); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	now := time.Now()
	m.Tick(now, 1.0/60.0)

	m.stateMu.Lock()
	x, y := m.players["p1"].X, m.players["p1"].Y
	m.stateMu.Unlock()

	hit, _, err := m.CheckHit("p1", x, y, now)
	if err != nil {
		t.Fatalf("Expected hit check to succeed, got %v", err)
	}
	if !hit {
		t.Errorf("Expected a shot on the recorded position to hit")
	}

	if _, _, err := m.CheckHit("ghost", x, y, now); err == nil {
		t.Errorf("Expected unknown target to error")
	}
}
