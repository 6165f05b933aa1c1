package ratelimit

import (
	"sync"
	"time"
)

const (
	DefaultLimit  = 3
	DefaultWindow = time.Minute
)

// Limiter is a per-user sliding window counter. A user is admitted when fewer than
// limit admissions happened during the window ending at the time of the call.
type Limiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   map[int64][]time.Time
}

func New(limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		limit:  limit,
		window: window,
		hits:   make(map[int64][]time.Time),
	}
}

func (l *Limiter) Limit() int            { return l.limit }
func (l *Limiter) Window() time.Duration { return l.window }

// Admit records now for userID and returns true, or returns false without recording
// when the user already has limit admissions inside the window.
func (l *Limiter) Admit(userID int64, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	recent := keepNewer(l.hits[userID], now, l.window)
	if len(recent) >= l.limit {
		l.hits[userID] = recent
		return false
	}

	l.hits[userID] = append(recent, now)
	return true
}

// Prune drops admissions at least horizon old and forgets users left with none.
// horizon is never shorter than the admission window. Returns the number of users removed.
func (l *Limiter) Prune(now time.Time, horizon time.Duration) int {
	if horizon < l.window {
		horizon = l.window
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for userID, ts := range l.hits {
		recent := keepNewer(ts, now, horizon)
		if len(recent) == 0 {
			delete(l.hits, userID)
			removed++
			continue
		}
		l.hits[userID] = recent
	}
	return removed
}

// Users returns how many users currently have a window.
func (l *Limiter) Users() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}

// keepNewer filters ts in place, keeping entries younger than span.
func keepNewer(ts []time.Time, now time.Time, span time.Duration) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if now.Sub(t) < span {
			kept = append(kept, t)
		}
	}
	return kept
}
