package game

import (
	"time"

	"trivia-arena/internal/arena"
)

// ViolationKind classifies a detected implausible input.
type ViolationKind uint8

const (
	ViolationTeleport ViolationKind = iota
	ViolationSpeed
	ViolationSequence
)

// String returns the wire name of the violation kind.
func (k ViolationKind) String() string {
	switch k {
	case ViolationTeleport:
		return "teleport"
	case ViolationSpeed:
		return "speed"
	case ViolationSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Violation records one anti-cheat detection on a player.
type Violation struct {
	Kind   ViolationKind `json:"kind"`
	At     time.Time     `json:"at"`
	Detail string        `json:"detail"`
}

// PositionFrame is one sample in a player's position history ring.
type PositionFrame struct {
	T   time.Time
	X   float64
	Y   float64
	Seq uint32
}

// CombatState holds a player's server-authoritative combat condition.
// Optional timestamps are pointers: nil means "not scheduled".
type CombatState struct {
	HP          int
	MaxHP       int
	Dead        bool
	RespawnAt   *time.Time
	InvulnUntil *time.Time
	LastFire    time.Time
}

// IsInvulnerable reports whether the respawn protection window is active.
func (c *CombatState) IsInvulnerable(now time.Time) bool {
	return c.InvulnUntil != nil && now.Before(*c.InvulnUntil)
}

// PlayerMaxHP is the fixed health pool for every player.
const PlayerMaxHP = 100

// PlayerState is the full per-player simulation record. It is mutated only
// by its match's tick goroutine; the single-writer discipline is what keeps
// the subsystem update order meaningful.
type PlayerState struct {
	ID string

	// Authoritative kinematics
	X, Y   float64
	VX, VY float64

	// Input bookkeeping
	LastSeq       uint32
	LastInputTick uint64

	// Last position that passed validation; teleport displacement is
	// measured against this, not against whatever the client last sent.
	LastValidX, LastValidY float64

	// Anti-cheat
	Violations     []Violation
	ViolationCount int
	Kicked         bool // One-way: once set it is never cleared
	lastDecay      time.Time

	// Trap effects
	StunnedUntil *time.Time

	// Position history ring for lag compensation
	history  []PositionFrame
	histHead int // Next write slot
	histLen  int

	Combat CombatState
	Buffs  *BuffSet

	SpawnX, SpawnY float64
}

// NewPlayerState creates a player at a spawn point with a history ring sized
// to tickRate*historyWindow samples.
func NewPlayerState(id string, spawn arena.Vec2, historyCap int) *PlayerState {
	if historyCap < 1 {
		historyCap = 1
	}
	return &PlayerState{
		ID:         id,
		X:          spawn.X,
		Y:          spawn.Y,
		LastValidX: spawn.X,
		LastValidY: spawn.Y,
		SpawnX:     spawn.X,
		SpawnY:     spawn.Y,
		history:    make([]PositionFrame, historyCap),
		Combat:     CombatState{HP: PlayerMaxHP, MaxHP: PlayerMaxHP},
		Buffs:      NewBuffSet(),
	}
}

// Pos returns the player's current position as a vector.
func (p *PlayerState) Pos() arena.Vec2 {
	return arena.Vec2{X: p.X, Y: p.Y}
}

// IsStunned reports whether a trap stun is still active.
func (p *PlayerState) IsStunned(now time.Time) bool {
	return p.StunnedUntil != nil && now.Before(*p.StunnedUntil)
}

// RecordFrame appends a position sample, evicting the oldest once full.
func (p *PlayerState) RecordFrame(f PositionFrame) {
	p.history[p.histHead] = f
	p.histHead = (p.histHead + 1) % len(p.history)
	if p.histLen < len(p.history) {
		p.histLen++
	}
}

// HistoryLen returns the number of valid history samples.
func (p *PlayerState) HistoryLen() int {
	return p.histLen
}

// frameAt returns the i-th history sample, oldest first.
func (p *PlayerState) frameAt(i int) PositionFrame {
	start := p.histHead - p.histLen
	if start < 0 {
		start += len(p.history)
	}
	return p.history[(start+i)%len(p.history)]
}

// AddViolation appends a violation and bumps the counter.
func (p *PlayerState) AddViolation(kind ViolationKind, now time.Time, detail string) {
	p.Violations = append(p.Violations, Violation{Kind: kind, At: now, Detail: detail})
	p.ViolationCount++
}

// DecayViolations forgives one violation per elapsed decay interval.
func (p *PlayerState) DecayViolations(now time.Time, interval time.Duration) {
	if interval <= 0 || p.ViolationCount == 0 {
		return
	}
	if p.lastDecay.IsZero() {
		p.lastDecay = now
		return
	}
	for now.Sub(p.lastDecay) >= interval && p.ViolationCount > 0 {
		p.ViolationCount--
		p.lastDecay = p.lastDecay.Add(interval)
	}
	if p.ViolationCount == 0 {
		p.lastDecay = now
	}
}
