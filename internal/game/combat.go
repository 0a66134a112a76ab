package game

import (
	"fmt"
	"log"
	"math"
	"time"

	"trivia-arena/internal/arena"
	"trivia-arena/internal/config"
	"trivia-arena/internal/events"
)

// Combat owns projectile simulation, damage resolution and the death/respawn
// cycle for one match. It is driven from the tick loop and is not safe for
// concurrent use.
type Combat struct {
	cfg    config.CombatConfig
	world  config.WorldConfig
	spawns []arena.Vec2

	projectiles []*Projectile
	nextID      uint64

	events events.Buffer
}

// NewCombat creates the combat subsystem. spawns are the fixed respawn
// candidates; when empty the four inset arena corners are used.
func NewCombat(cfg config.CombatConfig, world config.WorldConfig, spawns []arena.Vec2) *Combat {
	if len(spawns) == 0 {
		inset := 100.0
		spawns = []arena.Vec2{
			{X: inset, Y: inset},
			{X: world.Width - inset, Y: inset},
			{X: inset, Y: world.Height - inset},
			{X: world.Width - inset, Y: world.Height - inset},
		}
	}
	return &Combat{
		cfg:    cfg,
		world:  world,
		spawns: spawns,
	}
}

// SpawnPoints returns the fixed respawn candidates.
func (c *Combat) SpawnPoints() []arena.Vec2 { return c.spawns }

// ProcessFire validates a fire request and spawns a projectile. Requests
// from dead players and requests inside the fire cooldown are dropped.
func (c *Combat) ProcessFire(now time.Time, p *PlayerState, in FireInput) bool {
	if p.Combat.Dead {
		return false
	}
	if !p.Combat.LastFire.IsZero() && now.Sub(p.Combat.LastFire) < c.cfg.FireCooldown {
		return false
	}

	dir := arena.Vec2{X: in.DirX, Y: in.DirY}
	if dir.Len() == 0 {
		return false
	}
	dir = dir.Normalized()

	p.Combat.LastFire = now
	c.nextID++
	proj := &Projectile{
		ID:        fmt.Sprintf("proj_%d", c.nextID),
		OwnerID:   p.ID,
		X:         p.X,
		Y:         p.Y,
		VX:        dir.X * c.cfg.ProjectileSpeed,
		VY:        dir.Y * c.cfg.ProjectileSpeed,
		SpawnX:    p.X,
		SpawnY:    p.Y,
		SpawnedAt: now,
		Damage:    c.cfg.BaseDamage,
	}
	c.projectiles = append(c.projectiles, proj)

	c.events.Emit("fire", map[string]any{
		"playerId":     p.ID,
		"projectileId": proj.ID,
		"x":            proj.X,
		"y":            proj.Y,
		"dirX":         dir.X,
		"dirY":         dir.Y,
	})
	return true
}

// Update advances every projectile by dt seconds and resolves collisions
// against barriers and players, then processes due respawns. It returns the
// positions of barrier impacts so projectile-armed traps can react.
func (c *Combat) Update(now time.Time, dt float64, players map[string]*PlayerState, barriers *arena.BarrierManager) []arena.Vec2 {
	var impacts []arena.Vec2
	maxRangeSq := c.cfg.ProjectileRange * c.cfg.ProjectileRange

	// In-place filter: projectiles that survive the tick are kept.
	kept := c.projectiles[:0]
	for _, proj := range c.projectiles {
		proj.Advance(dt)

		// Out of range or out of the arena
		if proj.Travelled() > maxRangeSq ||
			proj.X < 0 || proj.X > c.world.Width ||
			proj.Y < 0 || proj.Y > c.world.Height {
			continue
		}

		// Barrier impact. Destructible barriers take the projectile damage.
		if barriers != nil {
			if b, hit := barriers.BlocksProjectile(arena.Vec2{X: proj.X, Y: proj.Y}); hit {
				if b.Kind == arena.BarrierDestructible {
					barriers.Damage(b.ID, proj.Damage)
				}
				impacts = append(impacts, arena.Vec2{X: proj.X, Y: proj.Y})
				continue
			}
		}

		// Player hit
		if victim := c.hitTest(now, proj, players); victim != nil {
			attacker := players[proj.OwnerID]
			c.applyHit(now, attacker, victim, proj)
			continue
		}

		kept = append(kept, proj)
	}
	c.projectiles = kept

	c.resolveRespawns(now, players)
	return impacts
}

// hitTest returns the first living, vulnerable, non-owner player within the
// hit radius of the projectile, or nil.
func (c *Combat) hitTest(now time.Time, proj *Projectile, players map[string]*PlayerState) *PlayerState {
	for _, p := range players {
		if p.ID == proj.OwnerID || p.Combat.Dead || p.Kicked {
			continue
		}
		if p.Combat.IsInvulnerable(now) {
			continue
		}
		dx := proj.X - p.X
		dy := proj.Y - p.Y
		if dx*dx+dy*dy <= c.cfg.HitRadius*c.cfg.HitRadius {
			return p
		}
	}
	return nil
}

func (c *Combat) applyHit(now time.Time, attacker, victim *PlayerState, proj *Projectile) {
	dealt := 1.0
	if attacker != nil {
		dealt = attacker.Buffs.DamageDealtMultiplier()
	}
	damage := int(math.Round(float64(proj.Damage) * dealt * victim.Buffs.DamageTakenMultiplier()))
	if damage <= 0 {
		return
	}

	victim.Combat.HP -= damage
	if victim.Combat.HP < 0 {
		victim.Combat.HP = 0
	}

	c.events.Emit("hit", map[string]any{
		"attackerId":   proj.OwnerID,
		"victimId":     victim.ID,
		"projectileId": proj.ID,
		"damage":       damage,
		"hp":           victim.Combat.HP,
	})

	if victim.Combat.HP == 0 {
		c.kill(now, victim, proj.OwnerID)
	}
}

// ApplyEnvironmentalDamage damages a player from a non-projectile source
// (hazards, traps). The victim's damage-taken modifiers still apply.
func (c *Combat) ApplyEnvironmentalDamage(now time.Time, victim *PlayerState, base int, source string) {
	if victim.Combat.Dead || victim.Combat.IsInvulnerable(now) {
		return
	}
	damage := int(math.Round(float64(base) * victim.Buffs.DamageTakenMultiplier()))
	if damage <= 0 {
		return
	}

	victim.Combat.HP -= damage
	if victim.Combat.HP < 0 {
		victim.Combat.HP = 0
	}

	c.events.Emit("hit", map[string]any{
		"victimId": victim.ID,
		"source":   source,
		"damage":   damage,
		"hp":       victim.Combat.HP,
	})

	if victim.Combat.HP == 0 {
		c.kill(now, victim, source)
	}
}

func (c *Combat) kill(now time.Time, victim *PlayerState, killer string) {
	victim.Combat.Dead = true
	respawnAt := now.Add(c.cfg.RespawnDelay)
	victim.Combat.RespawnAt = &respawnAt

	log.Printf("💀 Player %s killed by %s", victim.ID, killer)
	c.events.Emit("death", map[string]any{
		"victimId":  victim.ID,
		"killerId":  killer,
		"respawnIn": c.cfg.RespawnDelay.Milliseconds(),
	})
}

// resolveRespawns respawns every dead player whose delay has elapsed at the
// spawn point farthest from all living opponents.
func (c *Combat) resolveRespawns(now time.Time, players map[string]*PlayerState) {
	for _, p := range players {
		if !p.Combat.Dead || p.Combat.RespawnAt == nil || now.Before(*p.Combat.RespawnAt) {
			continue
		}

		spawn := c.pickSpawn(p.ID, players)
		p.X = spawn.X
		p.Y = spawn.Y
		p.VX = 0
		p.VY = 0
		p.LastValidX = spawn.X
		p.LastValidY = spawn.Y
		p.Combat.HP = p.Combat.MaxHP
		p.Combat.Dead = false
		p.Combat.RespawnAt = nil
		invulnUntil := now.Add(c.cfg.InvulnWindow)
		p.Combat.InvulnUntil = &invulnUntil

		log.Printf("✅ Player %s respawned at (%.0f, %.0f)", p.ID, spawn.X, spawn.Y)
		c.events.Emit("respawn", map[string]any{
			"playerId": p.ID,
			"x":        spawn.X,
			"y":        spawn.Y,
			"invulnMs": c.cfg.InvulnWindow.Milliseconds(),
		})
	}
}

// pickSpawn chooses the candidate maximizing the minimum distance to every
// living opponent. With no living opponents the first candidate is used.
func (c *Combat) pickSpawn(respawning string, players map[string]*PlayerState) arena.Vec2 {
	best := c.spawns[0]
	bestScore := -1.0
	for _, candidate := range c.spawns {
		score := math.MaxFloat64
		for _, p := range players {
			if p.ID == respawning || p.Combat.Dead || p.Kicked {
				continue
			}
			d := arena.Dist(candidate, arena.Vec2{X: p.X, Y: p.Y})
			if d < score {
				score = d
			}
		}
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}
	return best
}

// Snapshot returns the serializable state of all live projectiles.
func (c *Combat) Snapshot() []ProjectileSnapshot {
	out := make([]ProjectileSnapshot, 0, len(c.projectiles))
	for _, p := range c.projectiles {
		out = append(out, ProjectileSnapshot{
			ID: p.ID, OwnerID: p.OwnerID,
			X: p.X, Y: p.Y, VX: p.VX, VY: p.VY,
		})
	}
	return out
}

// ProjectileCount reports the number of in-flight projectiles.
func (c *Combat) ProjectileCount() int { return len(c.projectiles) }

// DrainEvents returns and clears the combat event buffer.
func (c *Combat) DrainEvents() []events.Event { return c.events.Drain() }
