package domain

import (
	"fmt"
	"sort"
	"time"
)

const (
	HostSlot      = 1
	MaxSlots      = 4
	MaxMediaTitle = 200
)

// Room is one session. Exactly one member is the host and it holds
// HostSlot for the room's lifetime; slots are unique among members.
type Room struct {
	Code         Code
	CreatedAt    time.Time
	HostID       MemberID
	JoinLocked   bool
	MediaEnabled bool
	MediaRef     string
	MediaTitle   string
	Muted        map[MemberID]struct{}
	Members      map[MemberID]*Member
	Chat         *ChatLog
}

func NewRoom(code Code, host *Member, now time.Time) *Room {
	host.Slot = HostSlot
	host.IsHost = true
	host.Connected = false
	return &Room{
		Code:         code,
		CreatedAt:    now,
		HostID:       host.ID,
		MediaEnabled: true,
		Muted:        make(map[MemberID]struct{}),
		Members:      map[MemberID]*Member{host.ID: host},
		Chat:         NewChatLog(ChatCapacity),
	}
}

func (r *Room) Host() *Member { return r.Members[r.HostID] }

func (r *Room) Member(id MemberID) (*Member, bool) {
	m, ok := r.Members[id]
	return m, ok
}

func (r *Room) MemberAt(slot int) *Member {
	for _, m := range r.Members {
		if m.Slot == slot {
			return m
		}
	}
	return nil
}

// FreeSlot returns the lowest unoccupied guest slot.
func (r *Room) FreeSlot() (int, bool) {
	taken := make(map[int]bool, len(r.Members))
	for _, m := range r.Members {
		taken[m.Slot] = true
	}
	for s := HostSlot + 1; s <= MaxSlots; s++ {
		if !taken[s] {
			return s, true
		}
	}
	return 0, false
}

// AddGuest seats m at the lowest free slot.
func (r *Room) AddGuest(m *Member) error {
	if r.JoinLocked {
		return ErrRoomLocked
	}
	slot, ok := r.FreeSlot()
	if !ok {
		return ErrRoomFull
	}
	m.Slot = slot
	m.IsHost = false
	m.Connected = false
	r.Members[m.ID] = m
	return nil
}

// RemoveGuest drops a non-host member and its mute flag. The host is
// never removed individually; the room closes instead.
func (r *Room) RemoveGuest(id MemberID) (*Member, bool) {
	m, ok := r.Members[id]
	if !ok || m.IsHost {
		return nil, false
	}
	delete(r.Members, id)
	delete(r.Muted, id)
	return m, true
}

func (r *Room) IsMuted(id MemberID) bool {
	_, ok := r.Muted[id]
	return ok
}

// SetMuted reports whether the flag actually changed.
func (r *Room) SetMuted(id MemberID, muted bool) bool {
	was := r.IsMuted(id)
	if muted {
		r.Muted[id] = struct{}{}
	} else {
		delete(r.Muted, id)
	}
	return was != muted
}

func (r *Room) ResetReady() {
	for _, m := range r.Members {
		m.Ready = false
	}
}

// MoveGuest places guest id at slot. When slot is held by another guest
// the two swap and that guest is returned as displaced. Both movers lose
// their ready flag. A same-slot move reports changed=false.
func (r *Room) MoveGuest(id MemberID, slot int) (displaced *Member, changed bool, err error) {
	if slot <= HostSlot || slot > MaxSlots {
		return nil, false, fmt.Errorf("slot %d out of range", slot)
	}
	m, ok := r.Members[id]
	if !ok {
		return nil, false, ErrMemberNotFound
	}
	if m.IsHost {
		return nil, false, ErrForbidden
	}
	if m.Slot == slot {
		return nil, false, nil
	}
	if other := r.MemberAt(slot); other != nil {
		if other.IsHost {
			return nil, false, ErrForbidden
		}
		other.Slot = m.Slot
		other.Ready = false
		displaced = other
	}
	m.Slot = slot
	m.Ready = false
	return displaced, true, nil
}

// Ordered returns members sorted by slot.
func (r *Room) Ordered() []*Member {
	out := make([]*Member, 0, len(r.Members))
	for _, m := range r.Members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out
}
