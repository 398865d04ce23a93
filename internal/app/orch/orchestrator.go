package orch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dkeye/Playroom/internal/app"
	"github.com/dkeye/Playroom/internal/core"
	"github.com/dkeye/Playroom/internal/domain"
	"github.com/dkeye/Playroom/internal/metrics"
	"github.com/rs/zerolog/log"
)

// SignalValidator checks an opaque WebRTC signaling payload and reports its
// sub-kind (offer, answer, ice).
type SignalValidator interface {
	Validate(raw json.RawMessage) (string, error)
}

type Settings struct {
	HostGrace       time.Duration
	MemberGrace     time.Duration
	ChatCooldown    time.Duration
	ResyncCooldown  time.Duration
	LatencyCooldown time.Duration
	LatencyDeltaMs  int
	IdleTTL         time.Duration
	SweepInterval   time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		HostGrace:       30 * time.Second,
		MemberGrace:     60 * time.Second,
		ChatCooldown:    750 * time.Millisecond,
		ResyncCooldown:  3 * time.Second,
		LatencyCooldown: 5 * time.Second,
		LatencyDeltaMs:  15,
		IdleTTL:         30 * time.Minute,
		SweepInterval:   time.Minute,
	}
}

// Orchestrator runs every room operation: lifecycle calls, transport
// binding, the message protocol and the grace timers. Each operation holds
// the room lock for its whole validate/mutate/send sequence.
type Orchestrator struct {
	Registry *app.Registry
	Timers   *app.Timers
	Signals  SignalValidator
	Settings Settings
	Now      func() time.Time

	chat   *app.RateLimiter
	resync *app.RateLimiter
}

func New(reg *app.Registry, signals SignalValidator, s Settings) *Orchestrator {
	return &Orchestrator{
		Registry: reg,
		Timers:   app.NewTimers(),
		Signals:  signals,
		Settings: s,
		Now:      time.Now,
		chat:     app.NewCooldown(s.ChatCooldown),
		resync:   app.NewCooldown(s.ResyncCooldown),
	}
}

// Run sweeps idle rooms until ctx is done.
func (o *Orchestrator) Run(ctx context.Context) {
	if o.Settings.SweepInterval <= 0 || o.Settings.IdleTTL <= 0 {
		return
	}
	ticker := time.NewTicker(o.Settings.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "orch").Msg("sweeper stopped")
			return
		case <-ticker.C:
			if n := o.Sweep(); n > 0 {
				log.Info().Str("module", "orch").Int("closed", n).Msg("idle rooms swept")
			}
		}
	}
}

// lockRoom returns the live room for code with its lock held.
func (o *Orchestrator) lockRoom(code domain.Code) (*core.Room, error) {
	room, ok := o.Registry.Get(code)
	if !ok {
		return nil, fmt.Errorf("%s: %w", code, domain.ErrRoomNotFound)
	}
	room.Lock()
	if room.Closed() {
		room.Unlock()
		return nil, fmt.Errorf("%s: %w", code, domain.ErrRoomNotFound)
	}
	return room, nil
}

func hostGraceKey(code domain.Code) app.TimerKey {
	return app.TimerKey{Room: code, Kind: app.TimerHostGrace}
}

func memberGraceKey(code domain.Code, id domain.MemberID) app.TimerKey {
	return app.TimerKey{Room: code, Member: id, Kind: app.TimerMemberGrace}
}

// closeRoomLocked notifies every connected member, severs all transports
// and forgets the room.
func (o *Orchestrator) closeRoomLocked(room *core.Room, reason string) {
	room.Broadcast(core.ReasonMsg{Type: core.KindSessionClosed, Reason: reason})
	conns := room.MarkClosed()
	for _, c := range conns {
		c.Close()
	}
	metrics.MembersConnected.Sub(float64(len(conns)))

	code := room.Code()
	o.Timers.CancelRoom(code)
	o.chat.ForgetRoom(code)
	o.resync.ForgetRoom(code)
	o.Registry.Remove(room)
	metrics.RoomsClosed.WithLabelValues(reason).Inc()
	log.Info().Str("module", "orch").Str("room", string(code)).Str("reason", reason).Int("severed", len(conns)).Msg("room closed")
}

// removeGuestLocked frees the guest's slot and every per-member record.
func (o *Orchestrator) removeGuestLocked(room *core.Room, id domain.MemberID) bool {
	if _, ok := room.Meta().RemoveGuest(id); !ok {
		return false
	}
	code := room.Code()
	o.Timers.Cancel(memberGraceKey(code, id))
	o.chat.Forget(app.LimiterKey(code, id))
	o.resync.Forget(app.LimiterKey(code, id))
	room.ForgetMember(id)
	log.Info().Str("module", "orch").Str("room", string(code)).Str("member", string(id)).Msg("member removed")
	return true
}
