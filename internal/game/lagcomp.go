package game

import (
	"fmt"
	"math"
	"time"

	"trivia-arena/internal/config"
)

// Compensator rewinds recorded player positions for fair hit judgment under
// network latency. It never extrapolates: a timestamp outside the recorded
// history resolves to the nearest recorded sample.
type Compensator struct {
	cfg config.LagCompConfig
}

// NewCompensator creates a compensator with the given rewind windows.
func NewCompensator(cfg config.LagCompConfig) *Compensator {
	return &Compensator{cfg: cfg}
}

// HistoryCapacity returns the ring size needed for the configured window.
func (c *Compensator) HistoryCapacity(tickRate int) int {
	return int(float64(tickRate) * c.cfg.HistoryWindow.Seconds())
}

// Record appends the player's current position to their history ring.
func (c *Compensator) Record(now time.Time, p *PlayerState) {
	p.RecordFrame(PositionFrame{T: now, X: p.X, Y: p.Y, Seq: p.LastSeq})
}

// PositionAt returns the player's position at the target time, clamped to
// [now - maxRewind, now], linearly interpolated between the two bracketing
// history samples. With history on only one side of the target, the nearest
// sample is returned unmodified.
func (c *Compensator) PositionAt(now time.Time, p *PlayerState, target time.Time) (float64, float64) {
	earliest := now.Add(-c.cfg.MaxRewind)
	if target.Before(earliest) {
		target = earliest
	}
	if target.After(now) {
		target = now
	}

	n := p.HistoryLen()
	if n == 0 {
		return p.X, p.Y
	}

	// Find the first sample at or after the target.
	idx := -1
	for i := 0; i < n; i++ {
		if !p.frameAt(i).T.Before(target) {
			idx = i
			break
		}
	}

	switch {
	case idx == -1:
		// All samples precede the target: newest wins, no extrapolation.
		f := p.frameAt(n - 1)
		return f.X, f.Y
	case idx == 0:
		// All samples follow the target: oldest wins.
		f := p.frameAt(0)
		return f.X, f.Y
	}

	before := p.frameAt(idx - 1)
	after := p.frameAt(idx)
	span := after.T.Sub(before.T).Seconds()
	if span <= 0 {
		return after.X, after.Y
	}
	t := target.Sub(before.T).Seconds() / span
	return before.X + (after.X-before.X)*t, before.Y + (after.Y-before.Y)*t
}

// CheckHit rewinds the target to the client timestamp and tests whether the
// shot position falls within the hitbox radius. The debug string describes
// the rewound comparison for shot audit logs.
func (c *Compensator) CheckHit(now time.Time, target *PlayerState, shotX, shotY float64, clientTS time.Time, radius float64) (bool, string) {
	rx, ry := c.PositionAt(now, target, clientTS)
	dx := shotX - rx
	dy := shotY - ry
	dist := math.Sqrt(dx*dx + dy*dy)

	hit := dist <= radius
	debug := fmt.Sprintf("target %s rewound to (%.1f, %.1f) at %s; shot (%.1f, %.1f) dist %.1f radius %.1f hit=%t",
		target.ID, rx, ry, clientTS.Format(time.RFC3339Nano), shotX, shotY, dist, radius, hit)
	return hit, debug
}
