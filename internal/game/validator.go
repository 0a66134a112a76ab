package game

import (
	"fmt"
	"log"
	"math"
	"time"

	"trivia-arena/internal/config"
)

// MovementInput is one client movement report, queued by the transport layer
// and drained once per tick.
type MovementInput struct {
	PlayerID string
	X, Y     float64
	DX, DY   float64
	Seq      uint32
	ClientTS time.Time
}

// FireInput is one client fire request.
type FireInput struct {
	PlayerID   string
	X, Y       float64
	DirX, DirY float64
	ClientTS   time.Time
}

// Validator is the anti-cheat gate in front of movement inputs.
//
// The checks are deliberately asymmetric: the teleport check rejects because
// a 200px jump cannot be produced by lag, while the speed check only flags
// because a laggy client legitimately delivers several ticks of movement in
// one input. Sequence staleness beyond the tolerance is rejected as replay.
type Validator struct {
	cfg  config.AntiCheatConfig
	move config.MovementConfig

	// Optional observers, wired to metrics by the registry.
	onViolation func(kind string)
	onKick      func()
}

// NewValidator creates a validator with the given thresholds.
func NewValidator(cfg config.AntiCheatConfig, move config.MovementConfig) *Validator {
	return &Validator{cfg: cfg, move: move}
}

// Enabled reports whether validation is active.
func (v *Validator) Enabled() bool {
	return v.cfg.Enabled
}

// Validate runs all checks against one movement input. It returns true when
// the input should be applied. Violations are recorded on the player and may
// flip the player's kicked flag; the caller never surfaces an error to the
// sender either way.
func (v *Validator) Validate(now time.Time, tick uint64, p *PlayerState, in MovementInput, speedMult float64) bool {
	if !v.cfg.Enabled {
		return true
	}

	// Sequence check: tolerate mild reordering, reject stale replays.
	if p.LastSeq > 0 && in.Seq+uint32(v.cfg.SequenceTolerance) < p.LastSeq {
		v.record(now, p, ViolationSequence,
			fmt.Sprintf("sequence %d is %d behind last accepted %d", in.Seq, p.LastSeq-in.Seq, p.LastSeq))
		return false
	}

	dx := in.X - p.LastValidX
	dy := in.Y - p.LastValidY
	displacement := math.Sqrt(dx*dx + dy*dy)

	// Teleport check: an absolute displacement bound nothing legitimate crosses.
	if displacement > v.move.TeleportThreshold {
		v.record(now, p, ViolationTeleport,
			fmt.Sprintf("displacement %.1fpx exceeds teleport threshold %.1fpx", displacement, v.move.TeleportThreshold))
		return false
	}

	// Speed check: scaled by how many ticks this input covers, capped so a
	// long silence cannot launder an arbitrary jump. Flags, never rejects.
	elapsed := tick - p.LastInputTick
	if elapsed < 1 {
		elapsed = 1
	}
	if elapsed > uint64(v.cfg.MaxElapsedTicks) {
		elapsed = uint64(v.cfg.MaxElapsedTicks)
	}
	allowed := v.move.MaxSpeed * speedMult * float64(elapsed) * v.move.SpeedTolerance
	if displacement > allowed {
		v.record(now, p, ViolationSpeed,
			fmt.Sprintf("displacement %.1fpx over %d ticks exceeds allowance %.1fpx", displacement, elapsed, allowed))
	}

	return true
}

// record appends the violation and enforces the warn/kick thresholds.
// Kicking is one-way: the flag is never reset.
func (v *Validator) record(now time.Time, p *PlayerState, kind ViolationKind, detail string) {
	p.AddViolation(kind, now, detail)
	log.Printf("🚫 Player %s %s violation (#%d): %s", p.ID, kind, p.ViolationCount, detail)
	if v.onViolation != nil {
		v.onViolation(kind.String())
	}

	if p.ViolationCount == v.cfg.WarnThreshold {
		log.Printf("⚠️ Player %s reached violation warning threshold (%d)", p.ID, v.cfg.WarnThreshold)
	}
	if !p.Kicked && p.ViolationCount >= v.cfg.KickThreshold {
		p.Kicked = true
		log.Printf("🥾 Player %s kicked: %d violations", p.ID, p.ViolationCount)
		if v.onKick != nil {
			v.onKick()
		}
	}
}
