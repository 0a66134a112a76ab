package game

import (
	"fmt"
	"time"

	"trivia-arena/internal/config"
	"trivia-arena/internal/events"
)

// BuffType classifies a timed combat modifier.
type BuffType uint8

const (
	BuffDamageBoost BuffType = iota
	BuffSpeedBoost
	BuffVulnerability
	BuffShield
	BuffInvulnerable
)

// String returns the wire name of the buff type.
func (t BuffType) String() string {
	switch t {
	case BuffDamageBoost:
		return "damage_boost"
	case BuffSpeedBoost:
		return "speed_boost"
	case BuffVulnerability:
		return "vulnerability"
	case BuffShield:
		return "shield"
	case BuffInvulnerable:
		return "invulnerable"
	default:
		return "unknown"
	}
}

// ParseBuffType maps a wire string to a buff type.
func ParseBuffType(s string) (BuffType, error) {
	switch s {
	case "damage_boost":
		return BuffDamageBoost, nil
	case "speed_boost":
		return BuffSpeedBoost, nil
	case "vulnerability":
		return BuffVulnerability, nil
	case "shield":
		return BuffShield, nil
	case "invulnerable":
		return BuffInvulnerable, nil
	default:
		return 0, fmt.Errorf("unknown buff type %q", s)
	}
}

// Buff is one timed multiplicative combat modifier.
type Buff struct {
	Type      BuffType  `json:"type"`
	Value     float64   `json:"value"`
	ExpiresAt time.Time `json:"expiresAt"`
	Source    string    `json:"source"`
}

// shieldDamageFactor is the damage-taken multiplier while a shield buff is
// active. A shield softens hits; only invulnerability zeroes them.
const shieldDamageFactor = 0.5

// BuffSet holds a player's active buffs, at most one per type. Applying a
// type that is already present fully replaces the prior instance.
type BuffSet struct {
	buffs map[BuffType]Buff
}

// NewBuffSet creates an empty buff set.
func NewBuffSet() *BuffSet {
	return &BuffSet{buffs: make(map[BuffType]Buff)}
}

// Apply inserts or replaces the buff of its type.
func (s *BuffSet) Apply(b Buff) {
	s.buffs[b.Type] = b
}

// Get returns the active buff of a type, if present.
func (s *BuffSet) Get(t BuffType) (Buff, bool) {
	b, ok := s.buffs[t]
	return b, ok
}

// Len returns the number of active buffs.
func (s *BuffSet) Len() int {
	return len(s.buffs)
}

// Expire removes buffs past their expiry and returns them.
func (s *BuffSet) Expire(now time.Time) []Buff {
	var expired []Buff
	for t, b := range s.buffs {
		if now.After(b.ExpiresAt) {
			expired = append(expired, b)
			delete(s.buffs, t)
		}
	}
	return expired
}

// DamageDealtMultiplier is 1 + the damage boost value.
func (s *BuffSet) DamageDealtMultiplier() float64 {
	mult := 1.0
	if b, ok := s.buffs[BuffDamageBoost]; ok {
		mult += b.Value
	}
	return mult
}

// DamageTakenMultiplier is 0 while invulnerable, otherwise 1 + vulnerability,
// softened by an active shield.
func (s *BuffSet) DamageTakenMultiplier() float64 {
	if _, ok := s.buffs[BuffInvulnerable]; ok {
		return 0
	}
	mult := 1.0
	if b, ok := s.buffs[BuffVulnerability]; ok {
		mult += b.Value
	}
	if _, ok := s.buffs[BuffShield]; ok {
		mult *= shieldDamageFactor
	}
	return mult
}

// SpeedMultiplier is 1 + the speed boost value.
func (s *BuffSet) SpeedMultiplier() float64 {
	mult := 1.0
	if b, ok := s.buffs[BuffSpeedBoost]; ok {
		mult += b.Value
	}
	return mult
}

// Active returns all active buffs for snapshots.
func (s *BuffSet) Active() []Buff {
	out := make([]Buff, 0, len(s.buffs))
	for _, b := range s.buffs {
		out = append(out, b)
	}
	return out
}

// BuffSystem applies and expires buffs across a match's players,
// producing buff events into its own buffer.
type BuffSystem struct {
	cfg    config.BuffConfig
	events events.Buffer
}

// NewBuffSystem creates a buff system with the given tuning.
func NewBuffSystem(cfg config.BuffConfig) *BuffSystem {
	return &BuffSystem{cfg: cfg}
}

// Apply attaches a buff to the player, replacing any same-type instance.
func (bs *BuffSystem) Apply(now time.Time, p *PlayerState, t BuffType, value float64, duration time.Duration, source string) {
	p.Buffs.Apply(Buff{
		Type:      t,
		Value:     value,
		ExpiresAt: now.Add(duration),
		Source:    source,
	})
	bs.events.Emit("buff_applied", map[string]any{
		"playerId": p.ID,
		"buff":     t.String(),
		"value":    value,
		"duration": duration.Seconds(),
		"source":   source,
	})
}

// Sweep expires timed-out buffs on every player.
func (bs *BuffSystem) Sweep(now time.Time, players map[string]*PlayerState) {
	for id, p := range players {
		for _, b := range p.Buffs.Expire(now) {
			bs.events.Emit("buff_expired", map[string]any{
				"playerId": id,
				"buff":     b.Type.String(),
			})
		}
	}
}

// DrainEvents returns ownership of pending buff events.
func (bs *BuffSystem) DrainEvents() []events.Event {
	return bs.events.Drain()
}
