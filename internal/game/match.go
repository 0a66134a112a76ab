package game

import (
	"fmt"
	"log"
	"sync"
	"time"

	"trivia-arena/internal/arena"
	"trivia-arena/internal/config"
	"trivia-arena/internal/events"
)

// BroadcastFunc delivers one event to the match's subscribers. Delivery is
// at-most-once; a returned error is logged and the event is not retried.
type BroadcastFunc func(event string, data any) error

// MaxMatchPlayers is the player cap for a duel match.
const MaxMatchPlayers = 2

const powerUpHealAmount = 25

// Match is one running duel. All simulation state is owned by the tick
// goroutine; external callers interact only through the Queue* methods and
// the read snapshot, which take the input mutex or the state mutex.
type Match struct {
	ID        string
	cfg       *config.AppConfig
	startedAt time.Time

	// stateMu guards everything the tick mutates, so Snapshot and CheckHit
	// can be served from request goroutines.
	stateMu sync.Mutex
	tick    uint64
	players map[string]*PlayerState

	arena     *arena.Arena
	combat    *Combat
	validator *Validator
	lagComp   *Compensator
	buffs     *BuffSystem
	quiz      *QuizRewards
	spawner   *Spawner
	journal   *MatchJournal

	// Events drained every tick; flushed to subscribers on broadcast ticks.
	pendingEvents []events.Event

	// Optional drop observer, wired to metrics by the registry.
	onJournalDrop func()

	// Pending input queues, drained exactly once per tick.
	inputMu      sync.Mutex
	pendingMoves []MovementInput
	pendingFires []FireInput
	pendingQuiz  []QuizOutcome

	Broadcast BroadcastFunc
}

// NewMatch creates a match with an empty arena and no players.
func NewMatch(id string, cfg *config.AppConfig, broadcast BroadcastFunc) *Match {
	ar := arena.New()
	buffs := NewBuffSystem(cfg.Buffs)
	m := &Match{
		ID:        id,
		cfg:       cfg,
		startedAt: time.Now(),
		players:   make(map[string]*PlayerState),
		arena:     ar,
		combat:    NewCombat(cfg.Combat, cfg.World, nil),
		validator: NewValidator(cfg.AntiCheat, cfg.Movement),
		lagComp:   NewCompensator(cfg.LagComp),
		buffs:     buffs,
		spawner:   NewSpawner(cfg.Spawn, cfg.World, time.Now().UnixNano()),
		journal:   NewMatchJournal(),
		Broadcast: broadcast,
	}
	m.quiz = NewQuizRewards(cfg.Buffs, buffs)
	return m
}

// AddPlayer registers a player at the next free spawn point.
func (m *Match) AddPlayer(playerID string) error {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	if _, exists := m.players[playerID]; exists {
		return fmt.Errorf("player %s already in match %s", playerID, m.ID)
	}
	if len(m.players) >= MaxMatchPlayers {
		return fmt.Errorf("match %s is full", m.ID)
	}

	spawns := m.combat.SpawnPoints()
	spawn := spawns[len(m.players)%len(spawns)]
	histCap := m.lagComp.HistoryCapacity(m.cfg.Tick.Rate)
	m.players[playerID] = NewPlayerState(playerID, spawn, histCap)

	log.Printf("🎮 Player %s joined match %s at (%.0f, %.0f)", playerID, m.ID, spawn.X, spawn.Y)
	return nil
}

// RemovePlayer drops a player from the match.
func (m *Match) RemovePlayer(playerID string) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	delete(m.players, playerID)
}

// LoadArena replaces the arena contents from a parsed config document.
func (m *Match) LoadArena(doc *arena.ConfigDocument) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	m.arena.Clear()
	m.arena.Load(doc)
}

// QueueMovement buffers a movement input for the next tick. Inputs for
// unknown or kicked players are dropped silently during the tick.
func (m *Match) QueueMovement(in MovementInput) {
	m.inputMu.Lock()
	m.pendingMoves = append(m.pendingMoves, in)
	m.inputMu.Unlock()
}

// QueueFire buffers a fire input for the next tick.
func (m *Match) QueueFire(in FireInput) {
	m.inputMu.Lock()
	m.pendingFires = append(m.pendingFires, in)
	m.inputMu.Unlock()
}

// QueueQuizOutcome buffers a quiz result for the next tick.
func (m *Match) QueueQuizOutcome(out QuizOutcome) {
	m.inputMu.Lock()
	m.pendingQuiz = append(m.pendingQuiz, out)
	m.inputMu.Unlock()
}

// NotifyProjectileImpact arms projectile traps near a reported impact.
func (m *Match) NotifyProjectileImpact(pos arena.Vec2) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	m.arena.Traps.NotifyProjectileImpact(time.Now(), pos)
}

// TriggerLink toggles all doors linked with the given trigger id.
func (m *Match) TriggerLink(triggerID string) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	m.arena.Doors.TriggerLink(triggerID)
}

// CheckHit rewinds the target player to the shooter's reported timestamp
// and tests the shot position against the hit radius.
func (m *Match) CheckHit(targetID string, shotX, shotY float64, clientTS time.Time) (bool, string, error) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	target, ok := m.players[targetID]
	if !ok {
		return false, "", fmt.Errorf("unknown player %s", targetID)
	}
	hit, debug := m.lagComp.CheckHit(time.Now(), target, shotX, shotY, clientTS, m.cfg.Combat.HitRadius)
	return hit, debug, nil
}

// Tick runs one simulation step. dt is the tick duration in seconds.
func (m *Match) Tick(now time.Time, dt float64) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	m.tick++

	// 1. Violation decay
	for _, p := range m.players {
		p.DecayViolations(now, m.cfg.AntiCheat.DecayInterval)
	}

	// 2. Movement inputs
	moves, fires, quiz := m.drainInputs()
	for _, in := range moves {
		m.applyMovement(now, in)
	}

	// 3. Fire inputs and projectile simulation
	for _, in := range fires {
		p, ok := m.players[in.PlayerID]
		if !ok || p.Kicked {
			continue
		}
		m.combat.ProcessFire(now, p, in)
	}
	impacts := m.combat.Update(now, dt, m.players, m.arena.Barriers)
	for _, pos := range impacts {
		m.arena.Traps.NotifyProjectileImpact(now, pos)
	}

	// 4. Transport
	for _, p := range m.players {
		if p.Kicked || p.Combat.Dead {
			continue
		}
		pos, vel, moved := m.arena.Transport.Apply(now, p.ID, p.Pos(), arena.Vec2{X: p.VX, Y: p.VY})
		if moved {
			m.place(p, pos)
			p.VX = vel.X
			p.VY = vel.Y
		}
	}

	// 5. Hazards
	positions := m.livePositions()
	for _, ev := range m.arena.Hazards.Update(now, positions) {
		if p, ok := m.players[ev.PlayerID]; ok {
			m.combat.ApplyEnvironmentalDamage(now, p, ev.Damage, "hazard:"+ev.HazardID)
		}
	}

	// 6. Traps
	for _, hit := range m.arena.Traps.Update(now, m.livePositions()) {
		m.applyTrapHit(now, hit)
	}

	// 7. Doors and platforms
	m.arena.Doors.Update(now, dt)
	m.arena.Platforms.Update(dt)
	for _, p := range m.players {
		if p.Kicked || p.Combat.Dead {
			continue
		}
		ride := m.arena.Platforms.RiderVelocity(p.Pos())
		if ride.X != 0 || ride.Y != 0 {
			m.place(p, arena.Vec2{X: p.X + ride.X*dt, Y: p.Y + ride.Y*dt})
		}
	}

	// 8. Power-up collection, blocked inside EMP zones
	for _, p := range m.players {
		if p.Kicked || p.Combat.Dead || m.arena.Hazards.BlocksCollection(p.ID) {
			continue
		}
		if kind, ok := m.arena.PowerUps.Collect(p.ID, p.Pos()); ok {
			m.applyPowerUp(now, p, kind)
		}
	}

	// 9. Dynamic spawns, buff expiry, quiz rewards
	m.spawner.Update(now, m.arena, m.players)
	m.buffs.Sweep(now, m.players)
	for _, out := range quiz {
		if p, ok := m.players[out.PlayerID]; ok && !p.Kicked {
			m.quiz.Resolve(now, p, out)
		}
	}

	// 10. Lag compensation history
	for _, p := range m.players {
		if !p.Kicked {
			m.lagComp.Record(now, p)
		}
	}

	drained := m.drainEvents()
	m.journalEvents(drained)
	m.pendingEvents = append(m.pendingEvents, drained...)

	if m.tick%uint64(m.cfg.Tick.BroadcastDivisor) == 0 {
		m.broadcast(now, m.pendingEvents)
		m.pendingEvents = nil
	}
}

// drainInputs empties the pending queues under the input mutex.
func (m *Match) drainInputs() ([]MovementInput, []FireInput, []QuizOutcome) {
	m.inputMu.Lock()
	defer m.inputMu.Unlock()
	moves, fires, quiz := m.pendingMoves, m.pendingFires, m.pendingQuiz
	m.pendingMoves = nil
	m.pendingFires = nil
	m.pendingQuiz = nil
	return moves, fires, quiz
}

func (m *Match) applyMovement(now time.Time, in MovementInput) {
	p, ok := m.players[in.PlayerID]
	if !ok || p.Kicked || p.Combat.Dead {
		return
	}
	if p.IsStunned(now) {
		return
	}

	speedMult := p.Buffs.SpeedMultiplier() * m.arena.Hazards.SpeedMultiplier(p.ID)
	if !m.validator.Validate(now, m.tick, p, in, speedMult) {
		return
	}

	from := p.Pos()
	to := arena.Vec2{X: in.X, Y: in.Y}
	to.X = clamp(to.X, 0, m.cfg.World.Width)
	to.Y = clamp(to.Y, 0, m.cfg.World.Height)

	if m.arena.Barriers.BlocksMovement(from, to) || m.arena.Doors.BlocksPoint(to) {
		return
	}

	p.X = to.X
	p.Y = to.Y
	p.VX = in.DX
	p.VY = in.DY
	p.LastSeq = in.Seq
	p.LastInputTick = m.tick
	p.LastValidX = to.X
	p.LastValidY = to.Y
}

func (m *Match) applyTrapHit(now time.Time, hit arena.TrapHit) {
	p, ok := m.players[hit.PlayerID]
	if !ok {
		return
	}

	switch hit.Effect {
	case arena.EffectDamage:
		m.combat.ApplyEnvironmentalDamage(now, p, int(hit.Value), "trap:"+hit.TrapID)
	case arena.EffectStun:
		until := now.Add(time.Duration(hit.Value * float64(time.Second)))
		p.StunnedUntil = &until
		p.VX = 0
		p.VY = 0
	case arena.EffectKnockback:
		push := hit.Push.Scale(hit.Value)
		to := arena.Vec2{
			X: clamp(p.X+push.X*0.1, 0, m.cfg.World.Width),
			Y: clamp(p.Y+push.Y*0.1, 0, m.cfg.World.Height),
		}
		m.place(p, to)
		p.VX = push.X
		p.VY = push.Y
	}
}

func (m *Match) applyPowerUp(now time.Time, p *PlayerState, kind arena.PowerUpKind) {
	switch kind {
	case arena.PowerUpSOS:
		p.Combat.HP += powerUpHealAmount
		if p.Combat.HP > p.Combat.MaxHP {
			p.Combat.HP = p.Combat.MaxHP
		}
	case arena.PowerUpShield:
		m.buffs.Apply(now, p, BuffShield, shieldDamageFactor, m.cfg.Buffs.ShieldDuration, "powerup")
	case arena.PowerUpTimeSteal, arena.PowerUpDoublePoints:
		// Quiz-side effects, delivered to the quiz service via the event
	}
}

// place moves a player by server authority. LastValid follows so the next
// client input is measured from the server-imposed position.
func (m *Match) place(p *PlayerState, pos arena.Vec2) {
	p.X = pos.X
	p.Y = pos.Y
	p.LastValidX = pos.X
	p.LastValidY = pos.Y
}

func (m *Match) livePositions() map[string]arena.Vec2 {
	out := make(map[string]arena.Vec2, len(m.players))
	for id, p := range m.players {
		if p.Kicked || p.Combat.Dead {
			continue
		}
		out[id] = p.Pos()
	}
	return out
}

// drainEvents collects this tick's events from every subsystem.
func (m *Match) drainEvents() []events.Event {
	var out []events.Event
	out = append(out, m.combat.DrainEvents()...)
	out = append(out, m.buffs.DrainEvents()...)
	out = append(out, m.arena.DrainEvents()...)
	return out
}

func (m *Match) journalEvents(evs []events.Event) {
	for _, ev := range evs {
		playerID, _ := ev.Payload["playerId"].(string)
		ok := m.journal.Record(JournalEntry{
			MatchID:  m.ID,
			Tick:     m.tick,
			Type:     ev.Type,
			PlayerID: playerID,
			Payload:  ev.Payload,
			At:       ev.At,
		})
		if !ok && m.journal.Running() && m.onJournalDrop != nil {
			m.onJournalDrop()
		}
	}
}

// broadcast sends the snapshot and every event accumulated since the last
// broadcast tick. A failing event is logged and skipped; delivery is
// at-most-once.
func (m *Match) broadcast(now time.Time, evs []events.Event) {
	if m.Broadcast == nil {
		return
	}

	if err := m.Broadcast("snapshot", m.snapshotLocked(now)); err != nil {
		log.Printf("⚠️ Match %s snapshot broadcast failed: %v", m.ID, err)
	}
	for _, ev := range evs {
		if err := m.Broadcast(ev.Type, ev.Payload); err != nil {
			log.Printf("⚠️ Match %s event %s broadcast failed: %v", m.ID, ev.Type, err)
		}
	}
}

// Snapshot returns the broadcast state of the match.
func (m *Match) Snapshot() Snapshot {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.snapshotLocked(time.Now())
}

func (m *Match) snapshotLocked(now time.Time) Snapshot {
	snap := Snapshot{
		MatchID:     m.ID,
		Tick:        m.tick,
		At:          now,
		Players:     make([]PlayerSnapshot, 0, len(m.players)),
		Projectiles: m.combat.Snapshot(),
		Arena:       m.arena.Snapshot(),
	}
	for _, p := range m.players {
		snap.Players = append(snap.Players, snapshotPlayer(now, p))
	}
	return snap
}

// ProjectileCount reports the number of in-flight projectiles.
func (m *Match) ProjectileCount() int {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.combat.ProjectileCount()
}

// TickCount returns the number of completed ticks.
func (m *Match) TickCount() uint64 {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.tick
}

// Journal exposes the match journal for lifecycle control.
func (m *Match) Journal() *MatchJournal { return m.journal }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
