package domain

import "sort"

type MemberView struct {
	MemberID    MemberID `json:"memberId"`
	DisplayName string   `json:"displayName"`
	AvatarRef   string   `json:"avatarRef,omitempty"`
	Slot        int      `json:"slot"`
	IsHost      bool     `json:"isHost"`
	Connected   bool     `json:"connected"`
	Ready       bool     `json:"ready"`
	LatencyMs   *int     `json:"lastLatencyMs,omitempty"`
	JoinedAt    int64    `json:"joinedAt"`
}

// Snapshot is the externally visible state of a room.
type Snapshot struct {
	Code           Code         `json:"code"`
	CreatedAt      int64        `json:"createdAt"`
	HostMemberID   MemberID     `json:"hostMemberId"`
	JoinLocked     bool         `json:"joinLocked"`
	MediaEnabled   bool         `json:"mediaEnabled"`
	MutedMemberIDs []MemberID   `json:"mutedMemberIds"`
	MediaRef       string       `json:"mediaRef,omitempty"`
	MediaTitle     string       `json:"mediaTitle,omitempty"`
	Chat           []ChatEntry  `json:"chat"`
	Members        []MemberView `json:"members"`
}

func (r *Room) Snapshot() Snapshot {
	muted := make([]MemberID, 0, len(r.Muted))
	for id := range r.Muted {
		muted = append(muted, id)
	}
	sort.Slice(muted, func(i, j int) bool { return muted[i] < muted[j] })

	ordered := r.Ordered()
	members := make([]MemberView, 0, len(ordered))
	for _, m := range ordered {
		v := MemberView{
			MemberID:    m.ID,
			DisplayName: m.DisplayName,
			AvatarRef:   m.AvatarRef,
			Slot:        m.Slot,
			IsHost:      m.IsHost,
			Connected:   m.Connected,
			Ready:       m.Ready,
			JoinedAt:    m.JoinedAt.UnixMilli(),
		}
		if m.LatencyMs != nil {
			l := *m.LatencyMs
			v.LatencyMs = &l
		}
		members = append(members, v)
	}

	return Snapshot{
		Code:           r.Code,
		CreatedAt:      r.CreatedAt.UnixMilli(),
		HostMemberID:   r.HostID,
		JoinLocked:     r.JoinLocked,
		MediaEnabled:   r.MediaEnabled,
		MutedMemberIDs: muted,
		MediaRef:       r.MediaRef,
		MediaTitle:     r.MediaTitle,
		Chat:           r.Chat.Entries(),
		Members:        members,
	}
}

// Member finds a member view by id.
func (s Snapshot) Member(id MemberID) (MemberView, bool) {
	for _, m := range s.Members {
		if m.MemberID == id {
			return m, true
		}
	}
	return MemberView{}, false
}
