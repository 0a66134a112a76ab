// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all simulation and server settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
	"time"
)

// =============================================================================
// TICK LOOP CONFIGURATION
// =============================================================================

// TickConfig controls the fixed-rate simulation loop.
type TickConfig struct {
	Rate             int // Simulation ticks per second
	BroadcastDivisor int // Snapshot broadcast every Nth tick (6 at 60Hz => 10Hz)
}

// DefaultTick returns the default tick loop configuration.
func DefaultTick() TickConfig {
	return TickConfig{
		Rate:             60,
		BroadcastDivisor: 6,
	}
}

// TickFromEnv returns tick configuration with environment variable overrides.
func TickFromEnv() TickConfig {
	cfg := DefaultTick()

	if r := getEnvInt("TICK_RATE", 0); r > 0 {
		cfg.Rate = r
	}
	if d := getEnvInt("BROADCAST_DIVISOR", 0); d > 0 {
		cfg.BroadcastDivisor = d
	}

	return cfg
}

// =============================================================================
// WORLD BOUNDS
// =============================================================================

// WorldConfig holds the arena bounds in pixels.
type WorldConfig struct {
	Width  float64
	Height float64
}

// DefaultWorld returns the default arena bounds.
func DefaultWorld() WorldConfig {
	return WorldConfig{Width: 1280, Height: 720}
}

// WorldFromEnv returns world configuration with environment variable overrides.
func WorldFromEnv() WorldConfig {
	cfg := DefaultWorld()

	if w := getEnvFloat("WORLD_WIDTH", 0); w > 0 {
		cfg.Width = w
	}
	if h := getEnvFloat("WORLD_HEIGHT", 0); h > 0 {
		cfg.Height = h
	}

	return cfg
}

// =============================================================================
// MOVEMENT & ANTI-CHEAT
// =============================================================================

// MovementConfig bounds what client movement inputs are considered plausible.
type MovementConfig struct {
	MaxSpeed          float64 // Pixels per tick a player may legitimately cover
	SpeedTolerance    float64 // Multiplier of slack on top of MaxSpeed (lag bursts)
	TeleportThreshold float64 // Absolute displacement in pixels rejected outright
}

// DefaultMovement returns the default movement validation bounds.
func DefaultMovement() MovementConfig {
	return MovementConfig{
		MaxSpeed:          8.0,
		SpeedTolerance:    1.5,
		TeleportThreshold: 200.0,
	}
}

// MovementFromEnv returns movement configuration with environment variable overrides.
func MovementFromEnv() MovementConfig {
	cfg := DefaultMovement()

	if v := getEnvFloat("MOVE_MAX_SPEED", 0); v > 0 {
		cfg.MaxSpeed = v
	}
	if v := getEnvFloat("MOVE_SPEED_TOLERANCE", 0); v > 0 {
		cfg.SpeedTolerance = v
	}
	if v := getEnvFloat("MOVE_TELEPORT_THRESHOLD", 0); v > 0 {
		cfg.TeleportThreshold = v
	}

	return cfg
}

// AntiCheatConfig controls the input validator.
type AntiCheatConfig struct {
	Enabled           bool          // Master switch; when false every input is accepted
	WarnThreshold     int           // Violation count that triggers a warning log
	KickThreshold     int           // Violation count that permanently kicks
	DecayInterval     time.Duration // How often one violation is forgiven
	SequenceTolerance int           // How far behind the last accepted sequence an input may be
	MaxElapsedTicks   int           // Cap on ticks-since-last-input used by the speed check
}

// DefaultAntiCheat returns the default anti-cheat thresholds.
func DefaultAntiCheat() AntiCheatConfig {
	return AntiCheatConfig{
		Enabled:           true,
		WarnThreshold:     5,
		KickThreshold:     10,
		DecayInterval:     5 * time.Second,
		SequenceTolerance: 30,
		MaxElapsedTicks:   10,
	}
}

// AntiCheatFromEnv returns anti-cheat configuration with environment variable overrides.
func AntiCheatFromEnv() AntiCheatConfig {
	cfg := DefaultAntiCheat()

	if os.Getenv("ANTICHEAT_ENABLED") == "false" {
		cfg.Enabled = false
	}
	if v := getEnvInt("ANTICHEAT_WARN_THRESHOLD", 0); v > 0 {
		cfg.WarnThreshold = v
	}
	if v := getEnvInt("ANTICHEAT_KICK_THRESHOLD", 0); v > 0 {
		cfg.KickThreshold = v
	}
	if v := getEnvDuration("ANTICHEAT_DECAY_INTERVAL", 0); v > 0 {
		cfg.DecayInterval = v
	}
	if v := getEnvInt("ANTICHEAT_SEQUENCE_TOLERANCE", 0); v > 0 {
		cfg.SequenceTolerance = v
	}

	return cfg
}

// =============================================================================
// LAG COMPENSATION
// =============================================================================

// LagCompConfig controls position history and hit rewind.
type LagCompConfig struct {
	MaxRewind     time.Duration // Furthest back in time a shot may be rewound
	HistoryWindow time.Duration // How much position history each player keeps
}

// DefaultLagComp returns the default lag compensation windows.
func DefaultLagComp() LagCompConfig {
	return LagCompConfig{
		MaxRewind:     200 * time.Millisecond,
		HistoryWindow: 1 * time.Second,
	}
}

// LagCompFromEnv returns lag compensation configuration with environment variable overrides.
func LagCompFromEnv() LagCompConfig {
	cfg := DefaultLagComp()

	if v := getEnvInt("LAGCOMP_MAX_REWIND_MS", 0); v > 0 {
		cfg.MaxRewind = time.Duration(v) * time.Millisecond
	}
	if v := getEnvInt("LAGCOMP_HISTORY_WINDOW_S", 0); v > 0 {
		cfg.HistoryWindow = time.Duration(v) * time.Second
	}

	return cfg
}

// =============================================================================
// COMBAT
// =============================================================================

// CombatConfig holds server-authoritative combat tuning.
type CombatConfig struct {
	ProjectileSpeed float64       // Pixels per second
	ProjectileRange float64       // Max travel distance before despawn
	HitRadius       float64       // Projectile-vs-player collision radius
	BaseDamage      int           // Damage before buff multipliers
	FireCooldown    time.Duration // Minimum time between shots
	RespawnDelay    time.Duration // Death to respawn
	InvulnWindow    time.Duration // Post-respawn invulnerability
}

// DefaultCombat returns the default combat tuning.
func DefaultCombat() CombatConfig {
	return CombatConfig{
		ProjectileSpeed: 600.0,
		ProjectileRange: 800.0,
		HitRadius:       24.0,
		BaseDamage:      10,
		FireCooldown:    250 * time.Millisecond,
		RespawnDelay:    3 * time.Second,
		InvulnWindow:    2 * time.Second,
	}
}

// CombatFromEnv returns combat configuration with environment variable overrides.
func CombatFromEnv() CombatConfig {
	cfg := DefaultCombat()

	if v := getEnvFloat("COMBAT_PROJECTILE_SPEED", 0); v > 0 {
		cfg.ProjectileSpeed = v
	}
	if v := getEnvFloat("COMBAT_PROJECTILE_RANGE", 0); v > 0 {
		cfg.ProjectileRange = v
	}
	if v := getEnvFloat("COMBAT_HIT_RADIUS", 0); v > 0 {
		cfg.HitRadius = v
	}
	if v := getEnvInt("COMBAT_BASE_DAMAGE", 0); v > 0 {
		cfg.BaseDamage = v
	}
	if v := getEnvDuration("COMBAT_FIRE_COOLDOWN", 0); v > 0 {
		cfg.FireCooldown = v
	}
	if v := getEnvDuration("COMBAT_RESPAWN_DELAY", 0); v > 0 {
		cfg.RespawnDelay = v
	}
	if v := getEnvDuration("COMBAT_INVULN_WINDOW", 0); v > 0 {
		cfg.InvulnWindow = v
	}

	return cfg
}

// =============================================================================
// TRIVIA BUFFS
// =============================================================================

// BuffConfig fixes the magnitudes and durations of trivia-round rewards.
// Values are deliberately small so a quiz streak cannot run away with a match.
type BuffConfig struct {
	DamageBoostValue    float64
	DamageBoostDuration time.Duration
	SpeedBoostValue     float64
	SpeedBoostDuration  time.Duration
	VulnerabilityValue  float64
	VulnerabilityTime   time.Duration
	ShieldDuration      time.Duration
}

// DefaultBuffs returns the default buff tuning.
func DefaultBuffs() BuffConfig {
	return BuffConfig{
		DamageBoostValue:    0.25,
		DamageBoostDuration: 8 * time.Second,
		SpeedBoostValue:     0.20,
		SpeedBoostDuration:  8 * time.Second,
		VulnerabilityValue:  0.25,
		VulnerabilityTime:   6 * time.Second,
		ShieldDuration:      6 * time.Second,
	}
}

// BuffsFromEnv returns buff configuration with environment variable overrides.
func BuffsFromEnv() BuffConfig {
	cfg := DefaultBuffs()

	if v := getEnvFloat("BUFF_DAMAGE_BOOST", 0); v > 0 {
		cfg.DamageBoostValue = v
	}
	if v := getEnvFloat("BUFF_SPEED_BOOST", 0); v > 0 {
		cfg.SpeedBoostValue = v
	}
	if v := getEnvFloat("BUFF_VULNERABILITY", 0); v > 0 {
		cfg.VulnerabilityValue = v
	}
	if v := getEnvDuration("BUFF_DAMAGE_BOOST_DURATION", 0); v > 0 {
		cfg.DamageBoostDuration = v
	}
	if v := getEnvDuration("BUFF_SPEED_BOOST_DURATION", 0); v > 0 {
		cfg.SpeedBoostDuration = v
	}
	if v := getEnvDuration("BUFF_VULNERABILITY_DURATION", 0); v > 0 {
		cfg.VulnerabilityTime = v
	}
	if v := getEnvDuration("BUFF_SHIELD_DURATION", 0); v > 0 {
		cfg.ShieldDuration = v
	}

	return cfg
}

// =============================================================================
// DYNAMIC SPAWNING
// =============================================================================

// SpawnConfig controls the randomized hazard/trap spawner.
type SpawnConfig struct {
	HazardInterval    time.Duration // How often a new hazard may appear
	TrapInterval      time.Duration // How often a new trap may appear
	MaxHazards        int           // Live dynamic hazard cap
	MaxTraps          int           // Live dynamic trap cap
	MinLifetime       time.Duration // Shortest randomized entity lifetime
	MaxLifetime       time.Duration // Longest randomized entity lifetime
	EdgeMargin        float64       // Keep-out band along arena edges
	MinClearance      float64       // Required gap beyond an exclusion zone radius
	PlacementAttempts int           // Rejection sampling retry cap
}

// DefaultSpawn returns the default dynamic spawn tuning.
func DefaultSpawn() SpawnConfig {
	return SpawnConfig{
		HazardInterval:    20 * time.Second,
		TrapInterval:      30 * time.Second,
		MaxHazards:        3,
		MaxTraps:          2,
		MinLifetime:       10 * time.Second,
		MaxLifetime:       25 * time.Second,
		EdgeMargin:        80.0,
		MinClearance:      40.0,
		PlacementAttempts: 12,
	}
}

// SpawnFromEnv returns spawn configuration with environment variable overrides.
func SpawnFromEnv() SpawnConfig {
	cfg := DefaultSpawn()

	if v := getEnvDuration("SPAWN_HAZARD_INTERVAL", 0); v > 0 {
		cfg.HazardInterval = v
	}
	if v := getEnvDuration("SPAWN_TRAP_INTERVAL", 0); v > 0 {
		cfg.TrapInterval = v
	}
	if v := getEnvInt("SPAWN_MAX_HAZARDS", 0); v > 0 {
		cfg.MaxHazards = v
	}
	if v := getEnvInt("SPAWN_MAX_TRAPS", 0); v > 0 {
		cfg.MaxTraps = v
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port       int
	MaxMatches int // Hard cap on concurrently running matches
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:       3000,
		MaxMatches: 256,
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if m := getEnvInt("MAX_MATCHES", 0); m > 0 {
		cfg.MaxMatches = m
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Tick      TickConfig
	World     WorldConfig
	Movement  MovementConfig
	AntiCheat AntiCheatConfig
	LagComp   LagCompConfig
	Combat    CombatConfig
	Buffs     BuffConfig
	Spawn     SpawnConfig
	Server    ServerConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Tick:      TickFromEnv(),
		World:     WorldFromEnv(),
		Movement:  MovementFromEnv(),
		AntiCheat: AntiCheatFromEnv(),
		LagComp:   LagCompFromEnv(),
		Combat:    CombatFromEnv(),
		Buffs:     BuffsFromEnv(),
		Spawn:     SpawnFromEnv(),
		Server:    ServerFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
