package orch

import (
	"fmt"

	"github.com/dkeye/Playroom/internal/core"
	"github.com/dkeye/Playroom/internal/domain"
	"github.com/dkeye/Playroom/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Bind attaches conn to an existing (code, member) pair. On failure no room
// is touched. A transport already bound to the member is closed.
func (o *Orchestrator) Bind(code domain.Code, id domain.MemberID, conn core.SignalConnection) error {
	room, err := o.lockRoom(code)
	if err != nil {
		return err
	}
	defer room.Unlock()

	m, ok := room.Meta().Member(id)
	if !ok {
		return fmt.Errorf("bind %s: %w", id, domain.ErrMemberNotFound)
	}

	logger := log.With().Str("module", "orch.gateway").Str("room", string(code)).Str("member", string(id)).Logger()
	switch prev := room.Attach(id, conn); {
	case prev == nil:
		metrics.MembersConnected.Inc()
	case prev != conn:
		logger.Info().Msg("reconnected from elsewhere, closing previous transport")
		prev.Close()
	}

	if o.Timers.Cancel(memberGraceKey(code, id)) {
		logger.Info().Msg("member grace cancelled")
	}
	if m.IsHost && o.Timers.Cancel(hostGraceKey(code)) {
		logger.Info().Msg("host grace cancelled")
	}
	m.Connected = true
	room.Touch(o.Now())

	room.Send(id, core.ConnectedMsg{Type: core.KindConnected, MemberID: id, Slot: m.Slot, IsHost: m.IsHost})
	room.Send(id, room.StateMsg())
	room.BroadcastState()
	logger.Info().Int("slot", m.Slot).Bool("host", m.IsHost).Msg("bound")
	return nil
}

// Unbind handles a transport going away. Closing a transport that was
// already replaced by a newer one has no effect.
func (o *Orchestrator) Unbind(code domain.Code, id domain.MemberID, conn core.SignalConnection) {
	room, err := o.lockRoom(code)
	if err != nil {
		return
	}
	defer room.Unlock()

	if !room.Detach(id, conn) {
		return
	}
	metrics.MembersConnected.Dec()

	m, ok := room.Meta().Member(id)
	if !ok {
		return
	}
	m.Connected = false
	room.Touch(o.Now())

	logger := log.With().Str("module", "orch.gateway").Str("room", string(code)).Str("member", string(id)).Logger()
	if m.IsHost {
		if o.Timers.Arm(hostGraceKey(code), o.Settings.HostGrace, func() { o.expireHost(room) }) {
			logger.Info().Dur("grace", o.Settings.HostGrace).Msg("host disconnected, grace armed")
		}
		room.BroadcastState()
		return
	}

	room.SendHost(core.InputReset(m.Slot))
	room.BroadcastState()
	o.Timers.Schedule(memberGraceKey(code, id), o.Settings.MemberGrace, func() { o.expireMember(room, id) })
	logger.Info().Dur("grace", o.Settings.MemberGrace).Msg("member disconnected, grace armed")
}
