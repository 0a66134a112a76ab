package arena

import (
	"encoding/json"
	"log"
	"time"
)

// ConfigDocument is the structured arena layout pushed by the session layer
// at match start: one array per entity kind.
type ConfigDocument struct {
	Hazards     []HazardConfig     `json:"hazards"`
	Traps       []TrapConfig       `json:"traps"`
	Teleporters []TeleporterConfig `json:"teleporters"`
	JumpPads    []JumpPadConfig    `json:"jumpPads"`
	Doors       []DoorConfig       `json:"doors"`
	Platforms   []PlatformConfig   `json:"platforms"`
	Barriers    []BarrierConfig    `json:"barriers"`
	PowerUps    []PowerUpConfig    `json:"powerups"`
}

// HazardConfig is one hazard entry in the arena document.
type HazardConfig struct {
	ID        string   `json:"id"`
	Kind      string   `json:"kind"`
	Bounds    Rect     `json:"bounds"`
	Intensity float64  `json:"intensity"`
	Lifetime  *float64 `json:"lifetime,omitempty"` // Seconds; nil means never despawns
}

// TrapConfig is one trap entry in the arena document.
type TrapConfig struct {
	ID          string   `json:"id"`
	Kind        string   `json:"kind"`
	Pos         Vec2     `json:"pos"`
	Radius      float64  `json:"radius"`
	Effect      string   `json:"effect"`
	EffectValue float64  `json:"effectValue"`
	Cooldown    float64  `json:"cooldown"` // Seconds
	Interval    *float64 `json:"interval,omitempty"`
	ChainRadius *float64 `json:"chainRadius,omitempty"`
	Lifetime    *float64 `json:"lifetime,omitempty"`
}

// TeleporterConfig is one teleporter pad entry in the arena document.
type TeleporterConfig struct {
	ID     string  `json:"id"`
	Pos    Vec2    `json:"pos"`
	Radius float64 `json:"radius"`
	PairID string  `json:"pairId"`
}

// JumpPadConfig is one jump pad entry in the arena document.
type JumpPadConfig struct {
	ID        string  `json:"id"`
	Pos       Vec2    `json:"pos"`
	Radius    float64 `json:"radius"`
	Direction string  `json:"direction"` // Compass: N, S, E, W, NE, ...
	Force     float64 `json:"force"`
}

// DoorConfig is one door entry in the arena document.
type DoorConfig struct {
	ID           string  `json:"id"`
	Bounds       Rect    `json:"bounds"`
	Orientation  string  `json:"orientation"`
	Trigger      string  `json:"trigger"`
	LinkedWith   string  `json:"linkedWith,omitempty"`
	OpenDuration float64 `json:"openDuration"` // Seconds
	AutoClose    float64 `json:"autoClose"`    // Seconds; 0 disables
}

// PlatformConfig is one moving platform entry in the arena document.
type PlatformConfig struct {
	ID        string  `json:"id"`
	Size      Vec2    `json:"size"`
	Waypoints []Vec2  `json:"waypoints"`
	Speed     float64 `json:"speed"`
	Movement  string  `json:"movement"`
	Loop      bool    `json:"loop"`
	PauseTime float64 `json:"pauseTime"`
}

// BarrierConfig is one barrier entry in the arena document.
type BarrierConfig struct {
	ID        string `json:"id"`
	Bounds    Rect   `json:"bounds"`
	Kind      string `json:"kind"`
	MaxHealth int    `json:"maxHealth"`
	Blocked   string `json:"blockedDirection,omitempty"`
}

// PowerUpConfig is one power-up entry in the arena document.
type PowerUpConfig struct {
	ID     string  `json:"id"`
	Pos    Vec2    `json:"pos"`
	Radius float64 `json:"radius"`
	Kind   string  `json:"kind"`
}

// ParseConfigDocument decodes a raw arena config document.
func ParseConfigDocument(raw []byte) (*ConfigDocument, error) {
	var doc ConfigDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Load instantiates every valid entry of the document into the managers.
// Entries with unknown kind strings are skipped with a log line; a partially
// initialized arena is preferred over failing the match start.
func (a *Arena) Load(doc *ConfigDocument) {
	for _, hc := range doc.Hazards {
		kind, err := ParseHazardKind(hc.Kind)
		if err != nil {
			log.Printf("⚠️ Skipping hazard %q: %v", hc.ID, err)
			continue
		}
		a.Hazards.Add(&Hazard{
			ID:        hc.ID,
			Kind:      kind,
			Bounds:    hc.Bounds,
			Intensity: hc.Intensity,
			DespawnAt: lifetimeToDeadline(hc.Lifetime),
		})
	}

	for _, tc := range doc.Traps {
		kind, err := ParseTrapKind(tc.Kind)
		if err != nil {
			log.Printf("⚠️ Skipping trap %q: %v", tc.ID, err)
			continue
		}
		effect, err := ParseTrapEffect(tc.Effect)
		if err != nil {
			log.Printf("⚠️ Skipping trap %q: %v", tc.ID, err)
			continue
		}
		t := &Trap{
			ID:          tc.ID,
			Kind:        kind,
			Pos:         tc.Pos,
			Radius:      tc.Radius,
			Effect:      effect,
			EffectValue: tc.EffectValue,
			Cooldown:    time.Duration(tc.Cooldown * float64(time.Second)),
			ChainRadius: tc.ChainRadius,
			DespawnAt:   lifetimeToDeadline(tc.Lifetime),
		}
		if tc.Interval != nil {
			iv := time.Duration(*tc.Interval * float64(time.Second))
			t.Interval = &iv
		}
		a.Traps.Add(t)
	}

	for _, tc := range doc.Teleporters {
		a.Transport.AddTeleporter(&Teleporter{
			ID:     tc.ID,
			Pos:    tc.Pos,
			Radius: tc.Radius,
			PairID: tc.PairID,
		})
	}
	for _, jc := range doc.JumpPads {
		dir, err := ParsePadDirection(jc.Direction)
		if err != nil {
			log.Printf("⚠️ Skipping jump pad %q: %v", jc.ID, err)
			continue
		}
		a.Transport.AddJumpPad(&JumpPad{
			ID:        jc.ID,
			Pos:       jc.Pos,
			Radius:    jc.Radius,
			Direction: dir,
			Force:     jc.Force,
		})
	}
	a.Transport.ResolveLinks()

	for _, dc := range doc.Doors {
		trigger, err := ParseDoorTrigger(dc.Trigger)
		if err != nil {
			log.Printf("⚠️ Skipping door %q: %v", dc.ID, err)
			continue
		}
		a.Doors.Add(&Door{
			ID:           dc.ID,
			Bounds:       dc.Bounds,
			Orientation:  dc.Orientation,
			Trigger:      trigger,
			LinkedWith:   dc.LinkedWith,
			OpenDuration: time.Duration(dc.OpenDuration * float64(time.Second)),
			AutoClose:    time.Duration(dc.AutoClose * float64(time.Second)),
		})
	}

	for _, pc := range doc.Platforms {
		movement, err := ParsePlatformMovement(pc.Movement)
		if err != nil {
			log.Printf("⚠️ Skipping platform %q: %v", pc.ID, err)
			continue
		}
		a.Platforms.Add(&Platform{
			ID:        pc.ID,
			Size:      pc.Size,
			Waypoints: pc.Waypoints,
			Speed:     pc.Speed,
			Movement:  movement,
			Loop:      pc.Loop,
			PauseTime: pc.PauseTime,
		})
	}

	for _, bc := range doc.Barriers {
		kind, err := ParseBarrierKind(bc.Kind)
		if err != nil {
			log.Printf("⚠️ Skipping barrier %q: %v", bc.ID, err)
			continue
		}
		blocked, err := ParseBlockedDirection(bc.Blocked)
		if err != nil {
			log.Printf("⚠️ Skipping barrier %q: %v", bc.ID, err)
			continue
		}
		a.Barriers.Add(&Barrier{
			ID:        bc.ID,
			Bounds:    bc.Bounds,
			Kind:      kind,
			MaxHealth: bc.MaxHealth,
			Blocked:   blocked,
		})
	}

	for _, pc := range doc.PowerUps {
		kind, err := ParsePowerUpKind(pc.Kind)
		if err != nil {
			log.Printf("⚠️ Skipping powerup %q: %v", pc.ID, err)
			continue
		}
		a.PowerUps.Add(&PowerUp{
			ID:     pc.ID,
			Pos:    pc.Pos,
			Radius: pc.Radius,
			Kind:   kind,
		})
	}
}

func lifetimeToDeadline(seconds *float64) *time.Time {
	if seconds == nil {
		return nil
	}
	t := time.Now().Add(time.Duration(*seconds * float64(time.Second)))
	return &t
}
