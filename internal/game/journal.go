package game

import (
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	JournalBufferSize     = 1024                   // Circular buffer size
	MaxEntriesPerSec      = 10000                  // Global rate limit
	MaxEntriesPerPlayer   = 100                    // Per-player rate limit per second
	JournalFlushSize      = 64                     // Entries per batch write
	JournalFlushInterval  = 100 * time.Millisecond // How often to flush
	JournalLimiterCleanup = 5 * time.Minute        // Cleanup interval for player limiters
)

// JournalEntry is one append-only record of match activity.
type JournalEntry struct {
	Sequence uint64    `json:"seq"`
	MatchID  string    `json:"matchId"`
	Tick     uint64    `json:"tick"`
	Type     string    `json:"type"`
	PlayerID string    `json:"playerId,omitempty"`
	Payload  any       `json:"payload,omitempty"`
	At       time.Time `json:"at"`
}

// MatchJournal provides bounded, rate-limited recording of match activity
// with backpressure. Entries are batched and written to disk as
// newline-delimited JSON by an async writer.
type MatchJournal struct {
	// Circular buffer (lock-free SPSC pattern)
	buffer    [JournalBufferSize]JournalEntry
	writeHead uint64 // atomic - producer position
	readHead  uint64 // atomic - consumer position

	// Rate limiting keeps a flooding client from filling the journal
	globalLimiter  *rate.Limiter
	playerLimiters sync.Map // map[string]*journalLimiterEntry

	// Async writer
	writerWg sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	// File output
	filePath string
	file     *os.File
	fileMu   sync.Mutex

	// Stats for monitoring
	droppedCount uint64 // atomic
	totalCount   uint64 // atomic
}

// journalLimiterEntry tracks per-player rate limiting
type journalLimiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// NewMatchJournal creates a new bounded match journal
func NewMatchJournal() *MatchJournal {
	return &MatchJournal{
		globalLimiter: rate.NewLimiter(MaxEntriesPerSec, MaxEntriesPerSec/10),
		stopChan:      make(chan struct{}),
	}
}

// Start begins the async writer goroutine. Pass an empty path to journal
// in memory only.
func (j *MatchJournal) Start(filePath string) error {
	if j.running.Load() {
		return nil
	}

	j.filePath = filePath

	if filePath != "" {
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		j.file = file
	}

	j.running.Store(true)
	j.writerWg.Add(2)
	go j.writerLoop()
	go j.cleanupLoop()

	return nil
}

// Stop gracefully shuts down the journal
func (j *MatchJournal) Stop() {
	j.stopOnce.Do(func() {
		j.running.Store(false)
		close(j.stopChan)
		j.writerWg.Wait()

		j.fileMu.Lock()
		if j.file != nil {
			j.file.Close()
		}
		j.fileMu.Unlock()
	})
}

// Running reports whether the journal is accepting entries.
func (j *MatchJournal) Running() bool {
	return j.running.Load()
}

// Record adds an entry with rate limiting.
// Returns false if rate limited or buffer full.
func (j *MatchJournal) Record(entry JournalEntry) bool {
	if !j.running.Load() {
		return false
	}

	if !j.globalLimiter.Allow() {
		atomic.AddUint64(&j.droppedCount, 1)
		return false
	}

	// Per-player rate limit (prevents a single client from flooding)
	if entry.PlayerID != "" {
		limiter := j.getPlayerLimiter(entry.PlayerID)
		if !limiter.Allow() {
			atomic.AddUint64(&j.droppedCount, 1)
			return false
		}
	}

	head := atomic.AddUint64(&j.writeHead, 1)
	tail := atomic.LoadUint64(&j.readHead)

	// Buffer full: drop the oldest entry (rolling window)
	if head-tail >= JournalBufferSize {
		atomic.AddUint64(&j.readHead, 1)
		atomic.AddUint64(&j.droppedCount, 1)
	}

	entry.Sequence = head
	if entry.At.IsZero() {
		entry.At = time.Now()
	}
	idx := head % JournalBufferSize
	j.buffer[idx] = entry

	atomic.AddUint64(&j.totalCount, 1)
	return true
}

// getPlayerLimiter returns/creates a per-player rate limiter
func (j *MatchJournal) getPlayerLimiter(playerID string) *rate.Limiter {
	if entry, ok := j.playerLimiters.Load(playerID); ok {
		e := entry.(*journalLimiterEntry)
		e.lastUsed = time.Now()
		return e.limiter
	}

	entry := &journalLimiterEntry{
		limiter:  rate.NewLimiter(MaxEntriesPerPlayer, MaxEntriesPerPlayer/10),
		lastUsed: time.Now(),
	}
	actual, _ := j.playerLimiters.LoadOrStore(playerID, entry)
	return actual.(*journalLimiterEntry).limiter
}

// writerLoop batches and writes entries to disk asynchronously
func (j *MatchJournal) writerLoop() {
	defer j.writerWg.Done()

	ticker := time.NewTicker(JournalFlushInterval)
	defer ticker.Stop()

	batch := make([]JournalEntry, 0, JournalFlushSize)

	for {
		select {
		case <-j.stopChan:
			// Final flush
			batch = j.collectBatch(batch[:0])
			if len(batch) > 0 {
				j.flushBatch(batch)
			}
			return

		case <-ticker.C:
			batch = j.collectBatch(batch[:0])
			if len(batch) > 0 {
				j.flushBatch(batch)
			}
		}
	}
}

// cleanupLoop removes stale player limiters to prevent memory leak
func (j *MatchJournal) cleanupLoop() {
	defer j.writerWg.Done()

	ticker := time.NewTicker(JournalLimiterCleanup)
	defer ticker.Stop()

	for {
		select {
		case <-j.stopChan:
			return
		case <-ticker.C:
			j.cleanupPlayerLimiters()
		}
	}
}

func (j *MatchJournal) cleanupPlayerLimiters() {
	cutoff := time.Now().Add(-JournalLimiterCleanup)
	j.playerLimiters.Range(func(key, value interface{}) bool {
		entry := value.(*journalLimiterEntry)
		if entry.lastUsed.Before(cutoff) {
			j.playerLimiters.Delete(key)
		}
		return true
	})
}

// collectBatch reads available entries from the circular buffer
func (j *MatchJournal) collectBatch(batch []JournalEntry) []JournalEntry {
	head := atomic.LoadUint64(&j.writeHead)
	tail := atomic.LoadUint64(&j.readHead)

	for i := tail; i < head && len(batch) < JournalFlushSize; i++ {
		idx := i % JournalBufferSize
		batch = append(batch, j.buffer[idx])
	}

	if len(batch) > 0 {
		atomic.AddUint64(&j.readHead, uint64(len(batch)))
	}

	return batch
}

// flushBatch writes entries to disk (append-only, newline-delimited JSON)
func (j *MatchJournal) flushBatch(batch []JournalEntry) {
	j.fileMu.Lock()
	defer j.fileMu.Unlock()

	if j.file == nil {
		return
	}

	for _, entry := range batch {
		data, err := json.Marshal(entry)
		if err != nil {
			continue
		}
		j.file.Write(data)
		j.file.Write([]byte("\n"))
	}
}

// Stats returns journal counters for monitoring
func (j *MatchJournal) Stats() map[string]interface{} {
	head := atomic.LoadUint64(&j.writeHead)
	tail := atomic.LoadUint64(&j.readHead)

	return map[string]interface{}{
		"total":   atomic.LoadUint64(&j.totalCount),
		"dropped": atomic.LoadUint64(&j.droppedCount),
		"pending": head - tail,
		"running": j.running.Load(),
	}
}

// DroppedCount returns the number of dropped entries
func (j *MatchJournal) DroppedCount() uint64 {
	return atomic.LoadUint64(&j.droppedCount)
}

// TotalCount returns the total number of entries recorded
func (j *MatchJournal) TotalCount() uint64 {
	return atomic.LoadUint64(&j.totalCount)
}
