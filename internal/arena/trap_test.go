package arena

import (
	"math"
	"testing"
	"time"
)

// TestTrapCycle tests the full ARMED -> WARNING -> TRIGGERED -> COOLDOWN -> ARMED cycle
func TestTrapCycle(t *testing.T) {
	m := NewTrapManager()
	m.Add(&Trap{
		ID:          "tr1",
		Kind:        TrapPressure,
		Pos:         Vec2{X: 100, Y: 100},
		Radius:      30,
		Effect:      EffectDamage,
		EffectValue: 15,
		Cooldown:    2 * time.Second,
	})

	now := time.Now()
	onTrap := map[string]Vec2{"p1": {X: 100, Y: 100}}

	// Player steps on the trap: telegraph starts
	m.Update(now, onTrap)
	if got := m.Get("tr1").State; got != TrapWarning {
		t.Fatalf("Expected WARNING after pressure trigger, got %v", got)
	}

	// Telegraph still running: no hits
	if hits := m.Update(now.Add(400*time.Millisecond), onTrap); len(hits) != 0 {
		t.Errorf("Expected no hits during telegraph, got %d", len(hits))
	}

	// Telegraph elapsed: trap fires on the player still in radius
	hits := m.Update(now.Add(TrapTelegraphDelay), onTrap)
	if len(hits) != 1 {
		t.Fatalf("Expected 1 hit after telegraph, got %d", len(hits))
	}
	if hits[0].PlayerID != "p1" || hits[0].Effect != EffectDamage || hits[0].Value != 15 {
		t.Errorf("Unexpected hit: %+v", hits[0])
	}
	if got := m.Get("tr1").State; got != TrapTriggered {
		t.Errorf("Expected TRIGGERED after firing, got %v", got)
	}

	// Dwell elapses into cooldown
	fireTime := now.Add(TrapTelegraphDelay)
	m.Update(fireTime.Add(TrapTriggeredDwell), onTrap)
	if got := m.Get("tr1").State; got != TrapCooldown {
		t.Errorf("Expected COOLDOWN after dwell, got %v", got)
	}

	// Standing on the trap during cooldown does not re-trigger
	m.Update(fireTime.Add(TrapTriggeredDwell+time.Second), onTrap)
	if got := m.Get("tr1").State; got != TrapCooldown {
		t.Errorf("Trap should stay in COOLDOWN, got %v", got)
	}

	// Cooldown elapses back to armed
	m.Update(fireTime.Add(TrapTriggeredDwell+3*time.Second), nil)
	if got := m.Get("tr1").State; got != TrapArmed {
		t.Errorf("Expected ARMED after cooldown, got %v", got)
	}
}

// TestTrapDodgeTelegraph tests that leaving the radius during the telegraph avoids the effect
func TestTrapDodgeTelegraph(t *testing.T) {
	m := NewTrapManager()
	m.Add(&Trap{
		ID:     "tr1",
		Kind:   TrapPressure,
		Pos:    Vec2{X: 100, Y: 100},
		Radius: 30,
		Effect: EffectDamage,
	})

	now := time.Now()
	m.Update(now, map[string]Vec2{"p1": {X: 100, Y: 100}})

	// Player runs away before the telegraph ends
	hits := m.Update(now.Add(TrapTelegraphDelay), map[string]Vec2{"p1": {X: 500, Y: 500}})
	if len(hits) != 0 {
		t.Errorf("Expected no hits after dodging, got %d", len(hits))
	}

	// The trap still fires into the empty radius
	if got := m.Get("tr1").State; got != TrapTriggered {
		t.Errorf("Trap should fire even with nobody in radius, got %v", got)
	}
}

// TestTrapKnockbackPush tests that knockback pushes away from the trap center
func TestTrapKnockbackPush(t *testing.T) {
	m := NewTrapManager()
	m.Add(&Trap{
		ID:          "tr1",
		Kind:        TrapPressure,
		Pos:         Vec2{X: 100, Y: 100},
		Radius:      50,
		Effect:      EffectKnockback,
		EffectValue: 300,
	})

	now := time.Now()
	// Player east of the trap center
	pos := map[string]Vec2{"p1": {X: 130, Y: 100}}
	m.Update(now, pos)
	hits := m.Update(now.Add(TrapTelegraphDelay), pos)

	if len(hits) != 1 {
		t.Fatalf("Expected 1 knockback hit, got %d", len(hits))
	}
	push := hits[0].Push
	if math.Abs(push.X-1) > 1e-9 || math.Abs(push.Y) > 1e-9 {
		t.Errorf("Expected push (1,0) away from center, got (%f,%f)", push.X, push.Y)
	}
	if math.Abs(push.Len()-1) > 1e-9 {
		t.Errorf("Push direction should be normalized, length %f", push.Len())
	}
}

// TestTrapProjectileNotification tests arming projectile traps from impacts
func TestTrapProjectileNotification(t *testing.T) {
	m := NewTrapManager()
	m.Add(&Trap{
		ID:     "tr1",
		Kind:   TrapProjectile,
		Pos:    Vec2{X: 200, Y: 200},
		Radius: 40,
		Effect: EffectDamage,
	})

	now := time.Now()

	// Impact out of radius: nothing happens
	m.NotifyProjectileImpact(now, Vec2{X: 500, Y: 500})
	if got := m.Get("tr1").State; got != TrapArmed {
		t.Errorf("Far impact should not arm the telegraph, got %v", got)
	}

	// Impact in radius: telegraph starts
	m.NotifyProjectileImpact(now, Vec2{X: 210, Y: 210})
	if got := m.Get("tr1").State; got != TrapWarning {
		t.Errorf("Expected WARNING after nearby impact, got %v", got)
	}

	// A second impact during WARNING is ignored (strict cycle)
	m.NotifyProjectileImpact(now, Vec2{X: 210, Y: 210})
	if got := m.Get("tr1").State; got != TrapWarning {
		t.Errorf("Impact during WARNING should be a no-op, got %v", got)
	}
}

// TestTrapChain tests that a firing trap telegraphs armed neighbours
func TestTrapChain(t *testing.T) {
	m := NewTrapManager()
	chain := 100.0
	m.Add(&Trap{
		ID:          "tr1",
		Kind:        TrapPressure,
		Pos:         Vec2{X: 100, Y: 100},
		Radius:      30,
		Effect:      EffectDamage,
		ChainRadius: &chain,
	})
	m.Add(&Trap{
		ID:     "tr2",
		Kind:   TrapPressure,
		Pos:    Vec2{X: 150, Y: 100},
		Radius: 20,
		Effect: EffectDamage,
	})

	now := time.Now()
	pos := map[string]Vec2{"p1": {X: 100, Y: 100}}
	m.Update(now, pos)                          // tr1 warns
	m.Update(now.Add(TrapTelegraphDelay), pos)  // tr1 fires, queues tr2 chain

	// tr2 should still be armed until the chain delay elapses
	if got := m.Get("tr2").State; got != TrapArmed {
		t.Fatalf("tr2 should be ARMED before chain delay, got %v", got)
	}

	m.Update(now.Add(TrapTelegraphDelay+TrapChainDelay), nil)
	if got := m.Get("tr2").State; got != TrapWarning {
		t.Errorf("tr2 should be WARNING after chain delay, got %v", got)
	}
}

// TestTimedTrap tests the interval trigger
func TestTimedTrap(t *testing.T) {
	m := NewTrapManager()
	interval := 2 * time.Second
	m.Add(&Trap{
		ID:       "tr1",
		Kind:     TrapTimed,
		Pos:      Vec2{X: 100, Y: 100},
		Radius:   30,
		Effect:   EffectDamage,
		Interval: &interval,
	})

	// Before the interval the trap stays armed
	m.Update(time.Now(), nil)
	if got := m.Get("tr1").State; got != TrapArmed {
		t.Errorf("Timed trap should be ARMED before interval, got %v", got)
	}

	// After the interval it telegraphs regardless of players
	m.Update(time.Now().Add(3*time.Second), nil)
	if got := m.Get("tr1").State; got != TrapWarning {
		t.Errorf("Timed trap should be WARNING after interval, got %v", got)
	}
}
