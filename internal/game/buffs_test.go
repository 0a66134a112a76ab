package game

import (
	"testing"
	"time"

	"trivia-arena/internal/arena"
	"trivia-arena/internal/config"
)

// TestBuffSetApplyReplaces tests that a same-type buff replaces instead of
// stacking.
func TestBuffSetApplyReplaces(t *testing.T) {
	now := time.Now()
	s := NewBuffSet()

	s.Apply(Buff{Type: BuffDamageBoost, Value: 0.5, ExpiresAt: now.Add(time.Second)})
	s.Apply(Buff{Type: BuffDamageBoost, Value: 0.25, ExpiresAt: now.Add(10 * time.Second)})

	if s.Len() != 1 {
		t.Errorf("Expected 1 buff after re-apply, got %d", s.Len())
	}
	b, ok := s.Get(BuffDamageBoost)
	if !ok || b.Value != 0.25 {
		t.Errorf("Expected replacement value 0.25, got %v", b.Value)
	}
	if !b.ExpiresAt.Equal(now.Add(10 * time.Second)) {
		t.Errorf("Expected replacement expiry to win")
	}
}

// TestBuffSetExpire tests that only past-expiry buffs are removed.
func TestBuffSetExpire(t *testing.T) {
	now := time.Now()
	s := NewBuffSet()
	s.Apply(Buff{Type: BuffDamageBoost, Value: 0.5, ExpiresAt: now.Add(time.Second)})
	s.Apply(Buff{Type: BuffSpeedBoost, Value: 0.3, ExpiresAt: now.Add(10 * time.Second)})

	expired := s.Expire(now.Add(2 * time.Second))
	if len(expired) != 1 || expired[0].Type != BuffDamageBoost {
		t.Errorf("Expected only the damage boost to expire, got %v", expired)
	}
	if s.Len() != 1 {
		t.Errorf("Expected 1 surviving buff, got %d", s.Len())
	}
}

// TestDamageDealtMultiplier tests the outgoing damage multiplier.
func TestDamageDealtMultiplier(t *testing.T) {
	now := time.Now()
	s := NewBuffSet()
	if s.DamageDealtMultiplier() != 1.0 {
		t.Errorf("Expected base multiplier 1.0, got %v", s.DamageDealtMultiplier())
	}

	s.Apply(Buff{Type: BuffDamageBoost, Value: 0.5, ExpiresAt: now.Add(time.Second)})
	if s.DamageDealtMultiplier() != 1.5 {
		t.Errorf("Expected boosted multiplier 1.5, got %v", s.DamageDealtMultiplier())
	}
}

// TestDamageTakenMultiplier tests the incoming damage multiplier layering.
func TestDamageTakenMultiplier(t *testing.T) {
	now := time.Now()
	s := NewBuffSet()
	if s.DamageTakenMultiplier() != 1.0 {
		t.Errorf("Expected base multiplier 1.0, got %v", s.DamageTakenMultiplier())
	}

	s.Apply(Buff{Type: BuffVulnerability, Value: 0.5, ExpiresAt: now.Add(time.Second)})
	if s.DamageTakenMultiplier() != 1.5 {
		t.Errorf("Expected vulnerable multiplier 1.5, got %v", s.DamageTakenMultiplier())
	}

	// A shield softens the vulnerable multiplier.
	s.Apply(Buff{Type: BuffShield, Value: 0.5, ExpiresAt: now.Add(time.Second)})
	if s.DamageTakenMultiplier() != 0.75 {
		t.Errorf("Expected shielded multiplier 0.75, got %v", s.DamageTakenMultiplier())
	}

	// Invulnerability zeroes everything else out.
	s.Apply(Buff{Type: BuffInvulnerable, Value: 0, ExpiresAt: now.Add(time.Second)})
	if s.DamageTakenMultiplier() != 0 {
		t.Errorf("Expected invulnerable multiplier 0, got %v", s.DamageTakenMultiplier())
	}
}

// TestSpeedMultiplier tests the movement speed multiplier.
func TestSpeedMultiplier(t *testing.T) {
	now := time.Now()
	s := NewBuffSet()
	s.Apply(Buff{Type: BuffSpeedBoost, Value: 0.3, ExpiresAt: now.Add(time.Second)})
	if s.SpeedMultiplier() != 1.3 {
		t.Errorf("Expected speed multiplier 1.3, got %v", s.SpeedMultiplier())
	}
}

// TestBuffSystemApplyAndSweep tests the system-level apply/expire cycle and
// its events.
func TestBuffSystemApplyAndSweep(t *testing.T) {
	now := time.Now()
	bs := NewBuffSystem(config.BuffConfig{})
	p := NewPlayerState("p1", arena.Vec2{X: 100, Y: 100}, 60)
	players := map[string]*PlayerState{"p1": p}

	bs.Apply(now, p, BuffSpeedBoost, 0.3, 5*time.Second, "quiz:q1")
	if p.Buffs.Len() != 1 {
		t.Errorf("Expected 1 active buff, got %d", p.Buffs.Len())
	}

	evts := bs.DrainEvents()
	if len(evts) != 1 || evts[0].Type != "buff_applied" {
		t.Errorf("Expected one buff_applied event, got %v", evts)
	}

	// Sweep before expiry keeps the buff.
	bs.Sweep(now.Add(time.Second), players)
	if p.Buffs.Len() != 1 {
		t.Errorf("Expected buff to survive early sweep")
	}

	// Sweep past expiry removes it and emits.
	bs.Sweep(now.Add(6*time.Second), players)
	if p.Buffs.Len() != 0 {
		t.Errorf("Expected buff to expire, got %d active", p.Buffs.Len())
	}
	evts = bs.DrainEvents()
	if len(evts) != 1 || evts[0].Type != "buff_expired" {
		t.Errorf("Expected one buff_expired event, got %v", evts)
	}
}
