// Package events provides the single-owner event buffers used by every
// simulation subsystem. Producers append during their tick step; the tick
// orchestrator drains each buffer exactly once per tick, which is what
// gives events their at-most-once delivery guarantee.
package events

import "time"

// Event is a discrete named occurrence produced by a subsystem.
type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
	At      time.Time      `json:"at"`
}

// Buffer is an append-only event buffer owned by a single subsystem.
// Not safe for concurrent use; the per-match single-writer discipline
// means it never needs to be.
type Buffer struct {
	pending []Event
}

// Emit appends an event with the current timestamp.
func (b *Buffer) Emit(eventType string, payload map[string]any) {
	b.pending = append(b.pending, Event{
		Type:    eventType,
		Payload: payload,
		At:      time.Now(),
	})
}

// Drain returns ownership of all pending events and clears the buffer.
// Reading without draining is deliberately not offered.
func (b *Buffer) Drain() []Event {
	if len(b.pending) == 0 {
		return nil
	}
	out := b.pending
	b.pending = nil
	return out
}

// Len returns the number of pending events.
func (b *Buffer) Len() int {
	return len(b.pending)
}
