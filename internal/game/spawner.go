package game

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"trivia-arena/internal/arena"
	"trivia-arena/internal/config"
)

// Spawner periodically places hazards and traps at randomized positions
// while keeping a clearance from players and existing arena objects. Driven
// from the tick loop, not safe for concurrent use.
type Spawner struct {
	cfg   config.SpawnConfig
	world config.WorldConfig
	rng   *rand.Rand

	nextHazardAt time.Time
	nextTrapAt   time.Time
	nextID       uint64
}

// NewSpawner creates a spawner seeded from the given source. Pass a fixed
// seed in tests for deterministic placement.
func NewSpawner(cfg config.SpawnConfig, world config.WorldConfig, seed int64) *Spawner {
	return &Spawner{
		cfg:   cfg,
		world: world,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Update spawns due hazards and traps into the arena. Spawn attempts that
// cannot find a clear position are skipped until the next interval.
func (s *Spawner) Update(now time.Time, ar *arena.Arena, players map[string]*PlayerState) {
	if s.nextHazardAt.IsZero() {
		s.nextHazardAt = now.Add(s.cfg.HazardInterval)
	}
	if s.nextTrapAt.IsZero() {
		s.nextTrapAt = now.Add(s.cfg.TrapInterval)
	}

	if !now.Before(s.nextHazardAt) {
		s.nextHazardAt = now.Add(s.cfg.HazardInterval)
		if ar.Hazards.Count() < s.cfg.MaxHazards {
			s.spawnHazard(now, ar, players)
		}
	}

	if !now.Before(s.nextTrapAt) {
		s.nextTrapAt = now.Add(s.cfg.TrapInterval)
		if ar.Traps.Count() < s.cfg.MaxTraps {
			s.spawnTrap(now, ar, players)
		}
	}
}

func (s *Spawner) spawnHazard(now time.Time, ar *arena.Arena, players map[string]*PlayerState) {
	size := 80.0 + s.rng.Float64()*60.0
	pos, ok := s.findPosition(ar, players, size/2)
	if !ok {
		log.Printf("⚠️ No clear position for hazard spawn, skipping")
		return
	}

	kinds := []arena.HazardKind{arena.HazardDamage, arena.HazardSlow, arena.HazardEMP}
	kind := kinds[s.rng.Intn(len(kinds))]

	intensity := 0.0
	switch kind {
	case arena.HazardDamage:
		intensity = float64(2 + s.rng.Intn(4)) // damage per pulse
	case arena.HazardSlow:
		intensity = 0.3 + s.rng.Float64()*0.4 // speed multiplier
	}

	despawn := now.Add(s.randomLifetime())
	s.nextID++
	ar.Hazards.Add(&arena.Hazard{
		ID:        fmt.Sprintf("hz_auto_%d", s.nextID),
		Kind:      kind,
		Bounds:    arena.Rect{X: pos.X - size/2, Y: pos.Y - size/2, Width: size, Height: size},
		Intensity: intensity,
		DespawnAt: &despawn,
	})
	log.Printf("🎮 Spawned %s hazard at (%.0f, %.0f)", kind, pos.X, pos.Y)
}

func (s *Spawner) spawnTrap(now time.Time, ar *arena.Arena, players map[string]*PlayerState) {
	radius := 28.0 + s.rng.Float64()*20.0
	pos, ok := s.findPosition(ar, players, radius)
	if !ok {
		log.Printf("⚠️ No clear position for trap spawn, skipping")
		return
	}

	kinds := []arena.TrapKind{arena.TrapPressure, arena.TrapTimed, arena.TrapProjectile}
	effects := []arena.TrapEffect{arena.EffectDamage, arena.EffectStun, arena.EffectKnockback}
	kind := kinds[s.rng.Intn(len(kinds))]
	effect := effects[s.rng.Intn(len(effects))]

	value := 0.0
	switch effect {
	case arena.EffectDamage:
		value = float64(10 + s.rng.Intn(11))
	case arena.EffectStun:
		value = 0.5 + s.rng.Float64() // seconds
	case arena.EffectKnockback:
		value = 200 + s.rng.Float64()*200 // push magnitude
	}

	despawn := now.Add(s.randomLifetime())
	s.nextID++
	trap := &arena.Trap{
		ID:          fmt.Sprintf("tr_auto_%d", s.nextID),
		Kind:        kind,
		Effect:      effect,
		Pos:         pos,
		Radius:      radius,
		EffectValue: value,
		Cooldown:    5 * time.Second,
		DespawnAt:   &despawn,
	}
	if kind == arena.TrapTimed {
		interval := 4*time.Second + time.Duration(s.rng.Intn(4000))*time.Millisecond
		trap.Interval = &interval
	}
	ar.Traps.Add(trap)
	log.Printf("🎮 Spawned %s/%s trap at (%.0f, %.0f)", kind, effect, pos.X, pos.Y)
}

// findPosition rejection-samples a point inside the edge margin that keeps
// MinClearance from every player and existing hazard, trap and power-up.
func (s *Spawner) findPosition(ar *arena.Arena, players map[string]*PlayerState, radius float64) (arena.Vec2, bool) {
	margin := s.cfg.EdgeMargin
	for attempt := 0; attempt < s.cfg.PlacementAttempts; attempt++ {
		pos := arena.Vec2{
			X: margin + s.rng.Float64()*(s.world.Width-2*margin),
			Y: margin + s.rng.Float64()*(s.world.Height-2*margin),
		}
		if s.isClear(ar, players, pos, radius) {
			return pos, true
		}
	}
	return arena.Vec2{}, false
}

func (s *Spawner) isClear(ar *arena.Arena, players map[string]*PlayerState, pos arena.Vec2, radius float64) bool {
	clearance := radius + s.cfg.MinClearance

	for _, p := range players {
		if p.Kicked {
			continue
		}
		if arena.Dist(pos, arena.Vec2{X: p.X, Y: p.Y}) <= clearance {
			return false
		}
	}
	for _, h := range ar.Hazards.State() {
		center := arena.Vec2{X: h.Bounds.X + h.Bounds.Width/2, Y: h.Bounds.Y + h.Bounds.Height/2}
		if arena.Dist(pos, center) <= clearance+h.Bounds.Width/2 {
			return false
		}
	}
	for _, t := range ar.Traps.State() {
		if arena.Dist(pos, t.Pos) <= clearance+t.Radius {
			return false
		}
	}
	for _, pu := range ar.PowerUps.State() {
		if !pu.Active {
			continue
		}
		if arena.Dist(pos, pu.Pos) <= clearance+pu.Radius {
			return false
		}
	}
	return true
}

func (s *Spawner) randomLifetime() time.Duration {
	span := s.cfg.MaxLifetime - s.cfg.MinLifetime
	if span <= 0 {
		return s.cfg.MinLifetime
	}
	return s.cfg.MinLifetime + time.Duration(s.rng.Int63n(int64(span)))
}
