package game

import (
	"fmt"
	"log"
	"sync"
	"time"

	"trivia-arena/internal/arena"
	"trivia-arena/internal/config"
)

// Hooks receive simulation timings and lifecycle counts, typically wired
// to metrics by the API layer. Nil hooks are skipped.
type Hooks struct {
	OnTick        func(d time.Duration)
	OnMatchCount  func(n int)
	OnViolation   func(kind string)
	OnKick        func()
	OnJournalDrop func()
	OnProjectiles func(n int)
}

// Registry owns every match on this server. Each started match runs its own
// tick goroutine; the registry only routes inputs and lifecycle calls.
type Registry struct {
	cfg   *config.AppConfig
	hooks Hooks

	mu      sync.RWMutex
	matches map[string]*matchEntry
}

type matchEntry struct {
	match    *Match
	running  bool
	frozen   bool
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewRegistry creates an empty match registry.
func NewRegistry(cfg *config.AppConfig) *Registry {
	return &Registry{
		cfg:     cfg,
		matches: make(map[string]*matchEntry),
	}
}

// SetHooks installs metric hooks. Call before any match is started.
func (r *Registry) SetHooks(h Hooks) {
	r.hooks = h
}

// CreateMatch registers a new match. The match does not tick until started.
func (r *Registry) CreateMatch(id string, broadcast BroadcastFunc) (*Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.matches[id]; exists {
		return nil, fmt.Errorf("match %s already exists", id)
	}
	if len(r.matches) >= r.cfg.Server.MaxMatches {
		return nil, fmt.Errorf("match limit %d reached", r.cfg.Server.MaxMatches)
	}

	m := NewMatch(id, r.cfg, broadcast)
	m.validator.onViolation = r.hooks.OnViolation
	m.validator.onKick = r.hooks.OnKick
	m.onJournalDrop = r.hooks.OnJournalDrop
	r.matches[id] = &matchEntry{
		match:    m,
		stopChan: make(chan struct{}),
	}
	log.Printf("🎮 Match %s created", id)
	if r.hooks.OnMatchCount != nil {
		r.hooks.OnMatchCount(len(r.matches))
	}
	return m, nil
}

// StartMatch launches the match's tick goroutine. Starting a running match
// is a no-op.
func (r *Registry) StartMatch(id string, journalPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.matches[id]
	if !ok {
		return fmt.Errorf("unknown match %s", id)
	}
	if entry.frozen {
		return fmt.Errorf("match %s is frozen after a tick fault", id)
	}
	if entry.running {
		return nil
	}

	if err := entry.match.Journal().Start(journalPath); err != nil {
		return fmt.Errorf("start journal for match %s: %w", id, err)
	}

	entry.running = true
	go r.runLoop(entry)
	log.Printf("🎮 Match %s started at %d Hz", id, r.cfg.Tick.Rate)
	return nil
}

// StopMatch stops the match's tick goroutine and removes the match.
// Stopping an unknown or already stopped match is a no-op.
func (r *Registry) StopMatch(id string) {
	r.mu.Lock()
	entry, ok := r.matches[id]
	if ok {
		delete(r.matches, id)
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	entry.stopOnce.Do(func() { close(entry.stopChan) })
	entry.match.Journal().Stop()
	log.Printf("🎮 Match %s stopped", id)
	if r.hooks.OnMatchCount != nil {
		r.hooks.OnMatchCount(r.MatchCount())
	}
}

// runLoop is the free-running tick loop. Each iteration sleeps for whatever
// remains of the tick budget after simulation, so a slow tick is followed
// immediately by the next one instead of drifting.
func (r *Registry) runLoop(entry *matchEntry) {
	defer func() {
		if rec := recover(); rec != nil {
			// A fault freezes this match only; the rest of the server
			// keeps running. A frozen match no longer ticks and its
			// input queues drop silently.
			r.mu.Lock()
			entry.frozen = true
			entry.running = false
			r.mu.Unlock()
			log.Printf("🚫 Match %s tick loop panicked: %v", entry.match.ID, rec)
		}
	}()

	budget := time.Second / time.Duration(r.cfg.Tick.Rate)
	dt := budget.Seconds()

	// Short grace period so join traffic settles before the first tick.
	select {
	case <-entry.stopChan:
		return
	case <-time.After(budget):
	}

	for {
		select {
		case <-entry.stopChan:
			return
		default:
		}

		start := time.Now()
		entry.match.Tick(start, dt)

		elapsed := time.Since(start)
		if tickOverBudget(elapsed, budget) {
			log.Printf("⚠️ Match %s tick took %v, budget %v", entry.match.ID, elapsed, budget)
		}
		if r.hooks.OnTick != nil {
			r.hooks.OnTick(elapsed)
		}
		if r.hooks.OnProjectiles != nil {
			r.hooks.OnProjectiles(r.projectileTotal())
		}
		if sleep := budget - elapsed; sleep > 0 {
			time.Sleep(sleep)
		}
	}
}

// tickOverBudget reports whether a tick ran past 1.5x its budget.
func tickOverBudget(elapsed, budget time.Duration) bool {
	return elapsed > budget+budget/2
}

// projectileTotal sums live projectiles across every match.
func (r *Registry) projectileTotal() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, entry := range r.matches {
		total += entry.match.ProjectileCount()
	}
	return total
}

// Match returns a running or created match by id.
func (r *Registry) Match(id string) (*Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.matches[id]
	if !ok {
		return nil, false
	}
	return entry.match, true
}

// Frozen reports whether a match's tick loop has faulted.
func (r *Registry) Frozen(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.matches[id]
	return ok && entry.frozen
}

// MatchCount reports the number of registered matches.
func (r *Registry) MatchCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matches)
}

// FrozenCount reports the number of faulted matches.
func (r *Registry) FrozenCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, entry := range r.matches {
		if entry.frozen {
			count++
		}
	}
	return count
}

// liveMatch returns a match that still accepts inputs. A frozen match never
// drains its queues again, so its inputs are dropped here.
func (r *Registry) liveMatch(id string) (*Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.matches[id]
	if !ok || entry.frozen {
		return nil, false
	}
	return entry.match, true
}

// QueueMovement routes a movement input to its match. Inputs for unknown
// or frozen matches are dropped silently.
func (r *Registry) QueueMovement(matchID string, in MovementInput) {
	if m, ok := r.liveMatch(matchID); ok {
		m.QueueMovement(in)
	}
}

// QueueFire routes a fire input to its match.
func (r *Registry) QueueFire(matchID string, in FireInput) {
	if m, ok := r.liveMatch(matchID); ok {
		m.QueueFire(in)
	}
}

// SubmitQuizOutcome routes a quiz result to its match.
func (r *Registry) SubmitQuizOutcome(matchID string, out QuizOutcome) {
	if m, ok := r.liveMatch(matchID); ok {
		m.QueueQuizOutcome(out)
	}
}

// NotifyProjectileImpact reports an external projectile impact position to
// the match's traps.
func (r *Registry) NotifyProjectileImpact(matchID string, pos arena.Vec2) {
	if m, ok := r.liveMatch(matchID); ok {
		m.NotifyProjectileImpact(pos)
	}
}

// TriggerLink toggles the doors linked to a trigger in one match.
func (r *Registry) TriggerLink(matchID, triggerID string) {
	if m, ok := r.liveMatch(matchID); ok {
		m.TriggerLink(triggerID)
	}
}

// Shutdown stops every match.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.matches))
	for id := range r.matches {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.StopMatch(id)
	}
}
