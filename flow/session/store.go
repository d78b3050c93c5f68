package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/uzjobs/receptionbot/core/logger"
)

// Store maps an applicant id to at most one live session. Last write
// wins; a single applicant is assumed to drive one turn at a time.
type Store struct {
	mu      sync.RWMutex
	entries map[int64]*entry
	ttl     time.Duration
}

type entry struct {
	sess    *Session
	touched time.Time
}

// NewStore builds a store evicting sessions idle longer than ttl.
// A non-positive ttl disables eviction.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: map[int64]*entry{},
		ttl:     ttl,
	}
}

// Get returns the applicant's session and refreshes its idle timer.
func (st *Store) Get(telegramID int64) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.entries[telegramID]
	if !ok {
		return nil, false
	}
	e.touched = time.Now()
	return e.sess, true
}

// Put overwrites the applicant's session.
func (st *Store) Put(telegramID int64, sess *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.entries[telegramID] = &entry{sess: sess, touched: time.Now()}
}

// Delete releases the applicant's session.
func (st *Store) Delete(telegramID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.entries, telegramID)
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.entries)
}

// Janitor evicts idle sessions every interval until ctx is cancelled.
// Run it in its own goroutine.
func (st *Store) Janitor(ctx context.Context, interval time.Duration) {
	if st.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.evictIdle(time.Now()); n > 0 {
				logger.FLOW.Debug("idle sessions evicted",
					slog.String("event", "session.evict"),
					slog.Int("count", n),
				)
			}
		}
	}
}

func (st *Store) evictIdle(now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	var n int
	for id, e := range st.entries {
		if now.Sub(e.touched) > st.ttl {
			delete(st.entries, id)
			n++
		}
	}
	return n
}
