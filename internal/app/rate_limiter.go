package app

import (
	"strings"
	"sync"
	"time"

	"github.com/dkeye/Playroom/internal/domain"
)

// RateLimiter is a sliding-window limiter keyed by member. With limit 1
// it acts as a cooldown: anything inside the window is refused, not queued.
type RateLimiter struct {
	mu       sync.Mutex
	history  map[string][]time.Time
	limit    int
	interval time.Duration
}

func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		history:  make(map[string][]time.Time),
		limit:    limit,
		interval: interval,
	}
}

func NewCooldown(interval time.Duration) *RateLimiter {
	return NewRateLimiter(1, interval)
}

func LimiterKey(code domain.Code, id domain.MemberID) string {
	return string(code) + "/" + string(id)
}

func (rl *RateLimiter) Allow(key string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	windowStart := now.Add(-rl.interval)
	attempts := rl.history[key]

	fresh := make([]time.Time, 0, len(attempts)+1)
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}
	if len(fresh) >= rl.limit {
		rl.history[key] = fresh
		return false
	}
	rl.history[key] = append(fresh, now)
	return true
}

func (rl *RateLimiter) Forget(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.history, key)
}

// ForgetRoom drops every key belonging to code.
func (rl *RateLimiter) ForgetRoom(code domain.Code) {
	prefix := string(code) + "/"
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key := range rl.history {
		if strings.HasPrefix(key, prefix) {
			delete(rl.history, key)
		}
	}
}
