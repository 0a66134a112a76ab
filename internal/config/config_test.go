package config

import (
	"os"
	"testing"
	"time"
)

// TestDefaults tests the baked-in default values.
func TestDefaults(t *testing.T) {
	tick := DefaultTick()
	if tick.Rate != 60 || tick.BroadcastDivisor != 6 {
		t.Errorf("Expected 60Hz with divisor 6, got %d/%d", tick.Rate, tick.BroadcastDivisor)
	}

	world := DefaultWorld()
	if world.Width != 1280 || world.Height != 720 {
		t.Errorf("Expected 1280x720 world, got %vx%v", world.Width, world.Height)
	}

	ac := DefaultAntiCheat()
	if !ac.Enabled || ac.KickThreshold != 10 {
		t.Errorf("Expected anti-cheat enabled with kick threshold 10, got %v/%d", ac.Enabled, ac.KickThreshold)
	}

	combat := DefaultCombat()
	if combat.BaseDamage != 10 || combat.FireCooldown != 250*time.Millisecond {
		t.Errorf("Expected base damage 10 and 250ms cooldown, got %d/%v", combat.BaseDamage, combat.FireCooldown)
	}

	lc := DefaultLagComp()
	if lc.MaxRewind != 200*time.Millisecond {
		t.Errorf("Expected 200ms max rewind, got %v", lc.MaxRewind)
	}

	buffs := DefaultBuffs()
	if buffs.ShieldDuration != 6*time.Second {
		t.Errorf("Expected 6s shield duration, got %v", buffs.ShieldDuration)
	}
}

// TestEnvOverrides tests that environment variables override defaults.
func TestEnvOverrides(t *testing.T) {
	os.Setenv("TICK_RATE", "30")
	os.Setenv("COMBAT_BASE_DAMAGE", "25")
	os.Setenv("ANTICHEAT_ENABLED", "false")
	os.Setenv("SPAWN_HAZARD_INTERVAL", "45s")
	os.Setenv("BUFF_SHIELD_DURATION", "9s")
	defer func() {
		os.Unsetenv("TICK_RATE")
		os.Unsetenv("COMBAT_BASE_DAMAGE")
		os.Unsetenv("ANTICHEAT_ENABLED")
		os.Unsetenv("SPAWN_HAZARD_INTERVAL")
		os.Unsetenv("BUFF_SHIELD_DURATION")
	}()

	cfg := Load()
	if cfg.Tick.Rate != 30 {
		t.Errorf("Expected tick rate 30, got %d", cfg.Tick.Rate)
	}
	if cfg.Combat.BaseDamage != 25 {
		t.Errorf("Expected base damage 25, got %d", cfg.Combat.BaseDamage)
	}
	if cfg.AntiCheat.Enabled {
		t.Errorf("Expected anti-cheat disabled")
	}
	if cfg.Spawn.HazardInterval != 45*time.Second {
		t.Errorf("Expected 45s hazard interval, got %v", cfg.Spawn.HazardInterval)
	}
	if cfg.Buffs.ShieldDuration != 9*time.Second {
		t.Errorf("Expected 9s shield duration, got %v", cfg.Buffs.ShieldDuration)
	}
}

// TestInvalidEnvValuesIgnored tests that malformed overrides keep defaults.
func TestInvalidEnvValuesIgnored(t *testing.T) {
	os.Setenv("TICK_RATE", "not-a-number")
	os.Setenv("COMBAT_FIRE_COOLDOWN", "soon")
	defer func() {
		os.Unsetenv("TICK_RATE")
		os.Unsetenv("COMBAT_FIRE_COOLDOWN")
	}()

	cfg := Load()
	if cfg.Tick.Rate != 60 {
		t.Errorf("Expected default tick rate 60, got %d", cfg.Tick.Rate)
	}
	if cfg.Combat.FireCooldown != 250*time.Millisecond {
		t.Errorf("Expected default fire cooldown, got %v", cfg.Combat.FireCooldown)
	}
}
