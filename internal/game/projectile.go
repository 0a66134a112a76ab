package game

import "time"

// Projectile is a server-authoritative moving shot. It travels through space
// over multiple ticks and is collision-tested each tick; it is destroyed on
// range, arena bounds, barrier impact or player hit.
type Projectile struct {
	ID      string
	OwnerID string

	// Position and motion (velocity in pixels per second)
	X, Y   float64
	VX, VY float64

	SpawnX, SpawnY float64
	SpawnedAt      time.Time

	Damage int
}

// Advance moves the projectile by dt seconds.
func (p *Projectile) Advance(dt float64) {
	p.X += p.VX * dt
	p.Y += p.VY * dt
}

// Travelled returns the squared distance from the spawn position. Squared
// so the per-tick range check avoids the sqrt.
func (p *Projectile) Travelled() float64 {
	dx := p.X - p.SpawnX
	dy := p.Y - p.SpawnY
	return dx*dx + dy*dy
}

// ProjectileSnapshot is the serializable state of one projectile.
type ProjectileSnapshot struct {
	ID      string  `json:"id"`
	OwnerID string  `json:"ownerId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	VX      float64 `json:"vx"`
	VY      float64 `json:"vy"`
}
