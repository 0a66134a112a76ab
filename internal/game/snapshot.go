package game

import (
	"time"

	"trivia-arena/internal/arena"
)

// PlayerSnapshot is the broadcast view of one player.
type PlayerSnapshot struct {
	ID           string         `json:"id"`
	X            float64        `json:"x"`
	Y            float64        `json:"y"`
	VX           float64        `json:"vx"`
	VY           float64        `json:"vy"`
	HP           int            `json:"hp"`
	MaxHP        int            `json:"maxHp"`
	Dead         bool           `json:"dead"`
	Invulnerable bool           `json:"invulnerable"`
	Stunned      bool           `json:"stunned"`
	Kicked       bool           `json:"kicked"`
	Violations   int            `json:"violations"`
	Buffs        []BuffSnapshot `json:"buffs,omitempty"`
}

// BuffSnapshot is the broadcast view of one active buff.
type BuffSnapshot struct {
	Type      string    `json:"type"`
	Value     float64   `json:"value"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Snapshot is the complete broadcast state of a match at one tick.
type Snapshot struct {
	MatchID     string               `json:"matchId"`
	Tick        uint64               `json:"tick"`
	At          time.Time            `json:"at"`
	Players     []PlayerSnapshot     `json:"players"`
	Projectiles []ProjectileSnapshot `json:"projectiles"`
	Arena       arena.State          `json:"arena"`
}

// snapshotPlayer builds the broadcast view of p at time now.
func snapshotPlayer(now time.Time, p *PlayerState) PlayerSnapshot {
	snap := PlayerSnapshot{
		ID:           p.ID,
		X:            p.X,
		Y:            p.Y,
		VX:           p.VX,
		VY:           p.VY,
		HP:           p.Combat.HP,
		MaxHP:        p.Combat.MaxHP,
		Dead:         p.Combat.Dead,
		Invulnerable: p.Combat.IsInvulnerable(now),
		Stunned:      p.IsStunned(now),
		Kicked:       p.Kicked,
		Violations:   p.ViolationCount,
	}
	for _, b := range p.Buffs.Active() {
		snap.Buffs = append(snap.Buffs, BuffSnapshot{
			Type:      b.Type.String(),
			Value:     b.Value,
			ExpiresAt: b.ExpiresAt,
		})
	}
	return snap
}
