package app

import (
	"sync"
	"time"

	"github.com/dkeye/Playroom/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"
)

type TimerKind string

const (
	TimerHostGrace   TimerKind = "host_grace"
	TimerMemberGrace TimerKind = "member_grace"
)

// TimerKey identifies one timer. Member is empty for room-wide timers.
type TimerKey struct {
	Room   domain.Code
	Member domain.MemberID
	Kind   TimerKind
}

type timerEntry struct {
	id    uint64
	timer *time.Timer
}

// Timers is the single place grace timers are scheduled and cancelled.
// A key holds at most one pending timer; a callback whose entry was
// cancelled or replaced never runs.
type Timers struct {
	mu      sync.Mutex
	seq     uint64
	pending map[TimerKey]*timerEntry
}

func NewTimers() *Timers {
	return &Timers{pending: make(map[TimerKey]*timerEntry)}
}

// Schedule cancels any pending timer under key and arms a new one.
func (t *Timers) Schedule(key TimerKey, d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked(key)
	t.armLocked(key, d, fn)
}

// Arm schedules fn unless a timer under key is already pending.
func (t *Timers) Arm(key TimerKey, d time.Duration, fn func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.pending[key]; ok {
		return false
	}
	t.armLocked(key, d, fn)
	return true
}

// Cancel stops the timer under key. Cancelling a fired or unknown timer is a no-op.
func (t *Timers) Cancel(key TimerKey) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelLocked(key)
}

// CancelRoom stops every timer that belongs to code.
func (t *Timers) CancelRoom(code domain.Code) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for key := range t.pending {
		if key.Room == code && t.cancelLocked(key) {
			n++
		}
	}
	return n
}

func (t *Timers) Pending(key TimerKey) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.pending[key]
	return ok
}

func (t *Timers) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

func (t *Timers) armLocked(key TimerKey, d time.Duration, fn func()) {
	t.seq++
	id := t.seq
	e := &timerEntry{id: id}
	e.timer = time.AfterFunc(d, func() { t.fire(key, id, fn) })
	t.pending[key] = e
}

func (t *Timers) cancelLocked(key TimerKey) bool {
	e, ok := t.pending[key]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(t.pending, key)
	return true
}

func (t *Timers) fire(key TimerKey, id uint64, fn func()) {
	t.mu.Lock()
	e, ok := t.pending[key]
	if !ok || e.id != id {
		t.mu.Unlock()
		return
	}
	delete(t.pending, key)
	t.mu.Unlock()

	if r := panics.Try(fn); r != nil {
		log.Error().Str("module", "app.timers").Str("room", string(key.Room)).Str("member", string(key.Member)).
			Str("kind", string(key.Kind)).Str("panic", r.String()).Msg("timer callback panicked")
	}
}
