package orch

import (
	"encoding/json"

	"github.com/dkeye/Playroom/internal/core"
	"github.com/dkeye/Playroom/internal/domain"
	"github.com/rs/zerolog/log"
)

const MaxSignalBytes = 64 << 10

// handleWebRTCSignal relays an offer/answer/ICE payload to one peer. Only
// host<->guest links exist; guest<->guest signaling is dropped.
func (o *Orchestrator) handleWebRTCSignal(in *inbound) error {
	var p struct {
		TargetID domain.MemberID `json:"targetId"`
		Signal   json.RawMessage `json:"signal"`
	}
	if err := decode(in.data, &p); err != nil {
		return err
	}
	if len(p.Signal) == 0 || len(p.Signal) > MaxSignalBytes {
		return errBadPayload
	}
	target, ok := in.room.Meta().Member(p.TargetID)
	if !ok || target.ID == in.from.ID {
		return errTarget
	}
	if target.IsHost == in.from.IsHost {
		return errRole
	}
	if _, ok := in.room.Conn(target.ID); !ok {
		return errPeerAbsent
	}
	kind := "opaque"
	if o.Signals != nil {
		k, err := o.Signals.Validate(p.Signal)
		if err != nil {
			return errBadPayload
		}
		kind = k
	}

	in.room.Send(target.ID, core.SignalMsg{Type: core.KindWebRTCSignal, FromMemberID: in.from.ID, Signal: p.Signal})
	log.Debug().Str("module", "orch.router").Str("room", string(in.room.Code())).
		Str("from", string(in.from.ID)).Str("to", string(target.ID)).Str("signal", kind).Msg("signal relayed")
	return nil
}
