package orch

import (
	"bytes"
	"encoding/json"

	"github.com/dkeye/Playroom/internal/app"
	"github.com/dkeye/Playroom/internal/core"
	"github.com/dkeye/Playroom/internal/domain"
)

const (
	MaxInputBytes = 4 << 10
	MaxReasonLen  = 140
)

var qualityPresets = map[string]bool{
	"auto":     true,
	"low":      true,
	"balanced": true,
	"high":     true,
}

// handleInput relays guest input to the host verbatim, or reports it as
// blocked when the guest is muted.
func (o *Orchestrator) handleInput(in *inbound) error {
	if err := requireGuest(in); err != nil {
		return err
	}
	var p struct {
		Payload json.RawMessage `json:"payload"`
	}
	if err := decode(in.data, &p); err != nil {
		return err
	}
	if len(p.Payload) == 0 || len(p.Payload) > MaxInputBytes || bytes.Equal(p.Payload, []byte("null")) {
		return errBadPayload
	}
	if err := requireHostOnline(in); err != nil {
		return err
	}

	kind := core.KindRemoteInput
	if in.room.Meta().IsMuted(in.from.ID) {
		kind = core.KindInputBlocked
	}
	in.room.SendHost(core.InputMsg{Type: kind, MemberID: in.from.ID, Slot: in.from.Slot, Payload: p.Payload})
	return nil
}

func (o *Orchestrator) handleQualityHint(in *inbound) error {
	if err := requireGuest(in); err != nil {
		return err
	}
	var p struct {
		Preset string `json:"preset"`
		Reason string `json:"reason"`
	}
	if err := decode(in.data, &p); err != nil {
		return err
	}
	if !qualityPresets[p.Preset] {
		return errBadPayload
	}
	if err := requireHostOnline(in); err != nil {
		return err
	}
	in.room.SendHost(core.QualityHintMsg{
		Type:     core.KindQualityHint,
		MemberID: in.from.ID,
		Slot:     in.from.Slot,
		Preset:   p.Preset,
		Reason:   domain.Truncate(domain.CollapseSpaces(p.Reason), MaxReasonLen),
	})
	return nil
}

func (o *Orchestrator) handleStreamResync(in *inbound) error {
	if err := requireGuest(in); err != nil {
		return err
	}
	if err := requireHostOnline(in); err != nil {
		return err
	}
	if !o.resync.Allow(app.LimiterKey(in.room.Code(), in.from.ID), in.now) {
		return errCooldown
	}
	in.room.SendHost(core.ResyncMsg{Type: core.KindStreamResync, MemberID: in.from.ID, Slot: in.from.Slot})
	return nil
}
