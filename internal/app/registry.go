package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/dkeye/Playroom/internal/core"
	"github.com/dkeye/Playroom/internal/domain"
	"github.com/dkeye/Playroom/internal/metrics"
	"github.com/rs/zerolog/log"
)

const DefaultCodeAttempts = 32

type CodeGenerator func() (domain.Code, error)

// Registry owns the code -> room map. It is the only shared state across
// rooms; everything inside a room is guarded by the room's own lock.
type Registry struct {
	mu          sync.RWMutex
	rooms       map[domain.Code]*core.Room
	gen         CodeGenerator
	maxAttempts int
}

func NewRegistry(gen CodeGenerator) *Registry {
	if gen == nil {
		gen = domain.NewCode
	}
	return &Registry{
		rooms:       make(map[domain.Code]*core.Room),
		gen:         gen,
		maxAttempts: DefaultCodeAttempts,
	}
}

// Create allocates a fresh code by rejection sampling and registers a room
// hosted by host. init runs before the room becomes visible.
func (r *Registry) Create(host *domain.Member, now time.Time, init ...func(*domain.Room)) (*core.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		code, err := r.gen()
		if err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}
		if _, taken := r.rooms[code]; taken {
			log.Warn().Str("module", "app.registry").Str("room", string(code)).Int("attempt", attempt).Msg("invite code collision, retrying")
			continue
		}
		meta := domain.NewRoom(code, host, now)
		for _, fn := range init {
			fn(meta)
		}
		room := core.NewRoom(meta)
		r.rooms[code] = room
		metrics.RoomsActive.Set(float64(len(r.rooms)))
		log.Info().Str("module", "app.registry").Str("room", string(code)).Str("host", string(host.ID)).Msg("room created")
		return room, nil
	}
	log.Error().Str("module", "app.registry").Int("attempts", r.maxAttempts).Msg("failed to generate a unique invite code")
	return nil, fmt.Errorf("after %d attempts: %w", r.maxAttempts, domain.ErrCodeExhausted)
}

func (r *Registry) Get(code domain.Code) (*core.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[code]
	return room, ok
}

// Remove deletes room only if it is still the one registered under its code.
func (r *Registry) Remove(room *core.Room) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.rooms[room.Code()]; !ok || cur != room {
		return false
	}
	delete(r.rooms, room.Code())
	metrics.RoomsActive.Set(float64(len(r.rooms)))
	log.Info().Str("module", "app.registry").Str("room", string(room.Code())).Msg("room removed")
	return true
}

func (r *Registry) Rooms() []*core.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*core.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
