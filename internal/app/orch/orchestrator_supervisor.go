package orch

import (
	"github.com/dkeye/Playroom/internal/core"
	"github.com/dkeye/Playroom/internal/domain"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) expireHost(room *core.Room) {
	room.Lock()
	defer room.Unlock()
	if room.Closed() {
		return
	}
	if host := room.Meta().Host(); host == nil || host.Connected {
		return
	}
	log.Info().Str("module", "orch.supervisor").Str("room", string(room.Code())).Msg("host grace expired")
	o.closeRoomLocked(room, core.ReasonHostTimeout)
}

func (o *Orchestrator) expireMember(room *core.Room, id domain.MemberID) {
	room.Lock()
	defer room.Unlock()
	if room.Closed() {
		return
	}
	m, ok := room.Meta().Member(id)
	if !ok || m.Connected {
		return
	}
	log.Info().Str("module", "orch.supervisor").Str("room", string(room.Code())).Str("member", string(id)).Msg("member grace expired")
	if o.removeGuestLocked(room, id) {
		room.BroadcastState()
	}
}

// Sweep closes rooms that have had no connected member and no activity
// for IdleTTL. It returns how many rooms were closed.
func (o *Orchestrator) Sweep() int {
	now := o.Now()
	closed := 0
	for _, room := range o.Registry.Rooms() {
		room.Lock()
		if !room.Closed() && room.ConnectedCount() == 0 && now.Sub(room.LastActivity()) >= o.Settings.IdleTTL {
			o.closeRoomLocked(room, core.ReasonIdle)
			closed++
		}
		room.Unlock()
	}
	return closed
}
