package orch

import (
	"fmt"
	"strings"

	"github.com/dkeye/Playroom/internal/core"
	"github.com/dkeye/Playroom/internal/domain"
	"github.com/dkeye/Playroom/internal/metrics"
	"github.com/rs/zerolog/log"
)

type CreateParams struct {
	HostName   string
	AvatarRef  string
	MediaRef   string
	MediaTitle string
}

type JoinParams struct {
	DisplayName string
	AvatarRef   string
}

// Admission is the capability pair handed to a new member plus the room
// state at the moment it was issued.
type Admission struct {
	Code     domain.Code
	MemberID domain.MemberID
	Snapshot domain.Snapshot
}

func (o *Orchestrator) CreateSession(p CreateParams) (Admission, error) {
	now := o.Now()
	host, err := domain.NewMember(p.HostName, p.AvatarRef, now)
	if err != nil {
		metrics.LifecycleErrors.WithLabelValues("create").Inc()
		return Admission{}, err
	}
	room, err := o.Registry.Create(host, now, func(r *domain.Room) {
		r.MediaRef = domain.Truncate(strings.TrimSpace(p.MediaRef), domain.MaxRefLen)
		r.MediaTitle = domain.Truncate(domain.CollapseSpaces(p.MediaTitle), domain.MaxMediaTitle)
	})
	if err != nil {
		metrics.LifecycleErrors.WithLabelValues("create").Inc()
		log.Error().Err(err).Str("module", "orch").Msg("create session failed")
		return Admission{}, err
	}

	room.Lock()
	defer room.Unlock()
	return Admission{Code: room.Code(), MemberID: host.ID, Snapshot: room.Meta().Snapshot()}, nil
}

func (o *Orchestrator) JoinSession(rawCode string, p JoinParams) (Admission, error) {
	code, ok := domain.ParseCode(rawCode)
	if !ok {
		metrics.LifecycleErrors.WithLabelValues("join").Inc()
		return Admission{}, fmt.Errorf("%q: %w", rawCode, domain.ErrRoomNotFound)
	}
	m, err := domain.NewMember(p.DisplayName, p.AvatarRef, o.Now())
	if err != nil {
		metrics.LifecycleErrors.WithLabelValues("join").Inc()
		return Admission{}, err
	}

	room, err := o.lockRoom(code)
	if err != nil {
		metrics.LifecycleErrors.WithLabelValues("join").Inc()
		return Admission{}, err
	}
	defer room.Unlock()

	if err := room.Meta().AddGuest(m); err != nil {
		metrics.LifecycleErrors.WithLabelValues("join").Inc()
		log.Info().Err(err).Str("module", "orch").Str("room", string(code)).Msg("join refused")
		return Admission{}, fmt.Errorf("%s: %w", code, err)
	}
	log.Info().Str("module", "orch").Str("room", string(code)).Str("member", string(m.ID)).Int("slot", m.Slot).Msg("member joined")
	room.BroadcastState()
	return Admission{Code: code, MemberID: m.ID, Snapshot: room.Meta().Snapshot()}, nil
}

func (o *Orchestrator) CloseSession(rawCode string, caller domain.MemberID) error {
	room, err := o.lockParsed(rawCode, "close")
	if err != nil {
		return err
	}
	defer room.Unlock()

	if room.Meta().HostID != caller {
		metrics.LifecycleErrors.WithLabelValues("close").Inc()
		return fmt.Errorf("close %s: %w", room.Code(), domain.ErrForbidden)
	}
	o.closeRoomLocked(room, core.ReasonHostClosed)
	return nil
}

func (o *Orchestrator) KickMember(rawCode string, caller, target domain.MemberID) error {
	room, err := o.lockParsed(rawCode, "kick")
	if err != nil {
		return err
	}
	defer room.Unlock()

	meta := room.Meta()
	if meta.HostID != caller {
		metrics.LifecycleErrors.WithLabelValues("kick").Inc()
		return fmt.Errorf("kick in %s: %w", room.Code(), domain.ErrForbidden)
	}
	m, ok := meta.Member(target)
	if !ok {
		metrics.LifecycleErrors.WithLabelValues("kick").Inc()
		return fmt.Errorf("kick %s: %w", target, domain.ErrMemberNotFound)
	}
	if m.IsHost {
		metrics.LifecycleErrors.WithLabelValues("kick").Inc()
		return fmt.Errorf("kick host: %w", domain.ErrForbidden)
	}

	if conn, ok := room.Conn(target); ok {
		room.Send(target, core.ReasonMsg{Type: core.KindKicked, Reason: core.ReasonKicked})
		room.Detach(target, conn)
		conn.Close()
		metrics.MembersConnected.Dec()
	}
	room.SendHost(core.InputReset(m.Slot))
	o.removeGuestLocked(room, target)
	room.BroadcastState()
	log.Info().Str("module", "orch").Str("room", string(room.Code())).Str("member", string(target)).Msg("member kicked")
	return nil
}

func (o *Orchestrator) GetSession(rawCode string) (domain.Snapshot, error) {
	room, err := o.lockParsed(rawCode, "get")
	if err != nil {
		return domain.Snapshot{}, err
	}
	defer room.Unlock()
	return room.Meta().Snapshot(), nil
}

func (o *Orchestrator) lockParsed(rawCode, op string) (*core.Room, error) {
	code, ok := domain.ParseCode(rawCode)
	if !ok {
		metrics.LifecycleErrors.WithLabelValues(op).Inc()
		return nil, fmt.Errorf("%q: %w", rawCode, domain.ErrRoomNotFound)
	}
	room, err := o.lockRoom(code)
	if err != nil {
		metrics.LifecycleErrors.WithLabelValues(op).Inc()
		return nil, err
	}
	return room, nil
}
