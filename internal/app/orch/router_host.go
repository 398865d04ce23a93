package orch

import (
	"strings"

	"github.com/dkeye/Playroom/internal/core"
	"github.com/dkeye/Playroom/internal/domain"
)

func (o *Orchestrator) handleHostMedia(in *inbound) error {
	if err := requireHost(in); err != nil {
		return err
	}
	var p struct {
		MediaRef   string `json:"mediaRef"`
		MediaTitle string `json:"mediaTitle"`
	}
	if err := decode(in.data, &p); err != nil {
		return err
	}
	meta := in.room.Meta()
	meta.MediaRef = domain.Truncate(strings.TrimSpace(p.MediaRef), domain.MaxRefLen)
	meta.MediaTitle = domain.Truncate(domain.CollapseSpaces(p.MediaTitle), domain.MaxMediaTitle)
	meta.ResetReady()
	in.room.BroadcastState()
	return nil
}

func (o *Orchestrator) handleSetReady(in *inbound) error {
	var p struct {
		Ready *bool `json:"ready"`
	}
	if err := decode(in.data, &p); err != nil {
		return err
	}
	if p.Ready == nil {
		return errBadPayload
	}
	in.from.Ready = *p.Ready
	in.room.BroadcastState()
	return nil
}

func (o *Orchestrator) handleSetJoinLock(in *inbound) error {
	if err := requireHost(in); err != nil {
		return err
	}
	var p struct {
		Locked *bool `json:"locked"`
	}
	if err := decode(in.data, &p); err != nil {
		return err
	}
	if p.Locked == nil {
		return errBadPayload
	}
	in.room.Meta().JoinLocked = *p.Locked
	in.room.BroadcastState()
	return nil
}

func (o *Orchestrator) handleSetVoiceEnabled(in *inbound) error {
	if err := requireHost(in); err != nil {
		return err
	}
	var p struct {
		Enabled *bool `json:"enabled"`
	}
	if err := decode(in.data, &p); err != nil {
		return err
	}
	if p.Enabled == nil {
		return errBadPayload
	}
	in.room.Meta().MediaEnabled = *p.Enabled
	in.room.BroadcastState()
	return nil
}

// handleSetInputMute resets the target's input at the host before the
// mute takes effect, so no key stays held.
func (o *Orchestrator) handleSetInputMute(in *inbound) error {
	if err := requireHost(in); err != nil {
		return err
	}
	var p struct {
		MemberID domain.MemberID `json:"memberId"`
		Muted    *bool           `json:"muted"`
	}
	if err := decode(in.data, &p); err != nil {
		return err
	}
	if p.Muted == nil {
		return errBadPayload
	}
	target, err := guestTarget(in, p.MemberID)
	if err != nil {
		return err
	}
	meta := in.room.Meta()
	if *p.Muted && !meta.IsMuted(target.ID) {
		in.room.SendHost(core.InputReset(target.Slot))
	}
	meta.SetMuted(target.ID, *p.Muted)
	in.room.BroadcastState()
	return nil
}

func (o *Orchestrator) handleSetSlot(in *inbound) error {
	if err := requireHost(in); err != nil {
		return err
	}
	var p struct {
		MemberID domain.MemberID `json:"memberId"`
		Slot     int             `json:"slot"`
	}
	if err := decode(in.data, &p); err != nil {
		return err
	}
	if p.Slot <= domain.HostSlot || p.Slot > domain.MaxSlots {
		return errBadPayload
	}
	target, err := guestTarget(in, p.MemberID)
	if err != nil {
		return err
	}
	if target.Slot == p.Slot {
		return nil
	}

	meta := in.room.Meta()
	in.room.SendHost(core.InputReset(target.Slot))
	if occupant := meta.MemberAt(p.Slot); occupant != nil {
		in.room.SendHost(core.InputReset(occupant.Slot))
	}
	if _, _, err := meta.MoveGuest(target.ID, p.Slot); err != nil {
		return errTarget
	}
	in.room.BroadcastState()
	return nil
}
