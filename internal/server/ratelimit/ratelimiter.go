package ratelimit

import (
	"context"
	"sync"
	"time"
)

// staleAfter is how long an expired window is kept before cleanup drops it.
const staleAfter = 5 * time.Minute

// Limiter counts requests per client in fixed windows.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	period  time.Duration
	clients map[string]*window
	now     func() time.Time
}

type window struct {
	count     int
	windowEnd time.Time
}

// NewLimiter allows limit requests per client every period. A non-positive
// limit disables limiting.
func NewLimiter(limit int, period time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		period:  period,
		clients: make(map[string]*window),
		now:     time.Now,
	}
}

// Enabled reports whether the limiter rejects anything at all.
func (l *Limiter) Enabled() bool {
	return l != nil && l.limit > 0
}

// Allow records a request from client and reports whether it is within limit.
func (l *Limiter) Allow(client string) bool {
	if !l.Enabled() {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	win := l.clients[client]
	if win == nil || now.After(win.windowEnd) {
		l.clients[client] = &window{
			count:     1,
			windowEnd: now.Add(l.period),
		}
		return true
	}

	if win.count < l.limit {
		win.count++
		return true
	}
	return false
}

// StartCleanup evicts stale windows every interval until ctx is done.
func (l *Limiter) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.evictStale()
			}
		}
	}()
}

func (l *Limiter) evictStale() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for client, win := range l.clients {
		if now.After(win.windowEnd.Add(staleAfter)) {
			delete(l.clients, client)
		}
	}
}
