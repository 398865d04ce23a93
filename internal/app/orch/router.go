package orch

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/dkeye/Playroom/internal/core"
	"github.com/dkeye/Playroom/internal/domain"
	"github.com/dkeye/Playroom/internal/metrics"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"
)

// Drop reasons. None of these is ever sent back to the client.
var (
	errBadPayload    = errors.New("bad payload")
	errUnknownKind   = errors.New("unknown kind")
	errStale         = errors.New("stale transport")
	errNotHost       = errors.New("host only")
	errNotGuest      = errors.New("guest only")
	errTarget        = errors.New("invalid target")
	errRole          = errors.New("same-role signaling")
	errPeerAbsent    = errors.New("peer not connected")
	errCooldown      = errors.New("cooldown")
	errInternalPanic = errors.New("handler panic")
)

// inbound is one message being routed, with the room lock held.
type inbound struct {
	room *core.Room
	from *domain.Member
	data []byte
	now  time.Time
}

type handlerFunc func(o *Orchestrator, in *inbound) error

var routes = map[string]handlerFunc{
	core.KindPing:            (*Orchestrator).handlePing,
	core.KindHostMedia:       (*Orchestrator).handleHostMedia,
	core.KindSetReady:        (*Orchestrator).handleSetReady,
	core.KindSetJoinLock:     (*Orchestrator).handleSetJoinLock,
	core.KindSetVoiceEnabled: (*Orchestrator).handleSetVoiceEnabled,
	core.KindSetInputMute:    (*Orchestrator).handleSetInputMute,
	core.KindSetSlot:         (*Orchestrator).handleSetSlot,
	core.KindInput:           (*Orchestrator).handleInput,
	core.KindQualityHint:     (*Orchestrator).handleQualityHint,
	core.KindChat:            (*Orchestrator).handleChat,
	core.KindWebRTCSignal:    (*Orchestrator).handleWebRTCSignal,
	core.KindStreamResync:    (*Orchestrator).handleStreamResync,
}

// Handle routes one inbound frame from conn. Malformed, unauthorized or
// stale messages are dropped silently; the connection stays open.
func (o *Orchestrator) Handle(code domain.Code, id domain.MemberID, conn core.SignalConnection, data []byte) {
	var env core.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		o.dropped(code, id, "", errBadPayload)
		return
	}
	h, ok := routes[env.Type]
	if !ok {
		o.dropped(code, id, "", errUnknownKind)
		return
	}

	room, err := o.lockRoom(code)
	if err != nil {
		o.dropped(code, id, env.Type, err)
		return
	}
	defer room.Unlock()

	if !room.IsCurrent(id, conn) {
		o.dropped(code, id, env.Type, errStale)
		return
	}
	m, ok := room.Meta().Member(id)
	if !ok {
		o.dropped(code, id, env.Type, errStale)
		return
	}

	in := &inbound{room: room, from: m, data: data, now: o.Now()}
	room.Touch(in.now)

	var herr error
	if r := panics.Try(func() { herr = h(o, in) }); r != nil {
		log.Error().Str("module", "orch.router").Str("room", string(code)).Str("member", string(id)).
			Str("kind", env.Type).Str("panic", r.String()).Msg("handler panicked")
		herr = errInternalPanic
	}
	if herr != nil {
		o.dropped(code, id, env.Type, herr)
		return
	}
	metrics.MessagesInbound.WithLabelValues(env.Type, "handled").Inc()
}

func (o *Orchestrator) dropped(code domain.Code, id domain.MemberID, kind string, reason error) {
	label := kind
	if label == "" {
		label = "invalid"
	}
	metrics.MessagesInbound.WithLabelValues(label, "dropped").Inc()
	log.Debug().Str("module", "orch.router").Str("room", string(code)).Str("member", string(id)).
		Str("kind", kind).Str("reason", reason.Error()).Msg("message dropped")
}

func decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return errBadPayload
	}
	return nil
}

func requireHost(in *inbound) error {
	if !in.from.IsHost {
		return errNotHost
	}
	return nil
}

func requireGuest(in *inbound) error {
	if in.from.IsHost {
		return errNotGuest
	}
	return nil
}

// requireHostOnline guards relays addressed to the host.
func requireHostOnline(in *inbound) error {
	if _, ok := in.room.Conn(in.room.Meta().HostID); !ok {
		return errPeerAbsent
	}
	return nil
}

// guestTarget resolves a non-host member addressed by a host command.
func guestTarget(in *inbound, id domain.MemberID) (*domain.Member, error) {
	m, ok := in.room.Meta().Member(id)
	if !ok || m.IsHost {
		return nil, errTarget
	}
	return m, nil
}
