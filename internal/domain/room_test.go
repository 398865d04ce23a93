package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoom(t *testing.T) *Room {
	t.Helper()
	host, err := NewMember("Host", "", time.Now())
	require.NoError(t, err)
	return NewRoom("ABCDEF", host, time.Now())
}

func addGuest(t *testing.T, r *Room, name string) *Member {
	t.Helper()
	m, err := NewMember(name, "", time.Now())
	require.NoError(t, err)
	require.NoError(t, r.AddGuest(m))
	return m
}

func assertSlotInvariants(t *testing.T, r *Room) {
	t.Helper()
	hosts := 0
	seen := map[int]MemberID{}
	for id, m := range r.Members {
		if m.IsHost {
			hosts++
			assert.Equal(t, HostSlot, m.Slot, "host slot")
			assert.Equal(t, r.HostID, id)
		}
		if prev, dup := seen[m.Slot]; dup {
			t.Fatalf("slot %d held by %s and %s", m.Slot, prev, id)
		}
		seen[m.Slot] = id
	}
	assert.Equal(t, 1, hosts, "exactly one host")
}

func TestNewRoom_HostHoldsSlotOne(t *testing.T) {
	r := newTestRoom(t)
	host := r.Host()
	require.NotNil(t, host)
	assert.True(t, host.IsHost)
	assert.Equal(t, HostSlot, host.Slot)
	assert.False(t, host.Connected)
	assertSlotInvariants(t, r)
}

func TestAddGuest_LowestFreeSlotUntilFull(t *testing.T) {
	r := newTestRoom(t)
	for want := 2; want <= MaxSlots; want++ {
		m := addGuest(t, r, fmt.Sprintf("Guest%d", want))
		assert.Equal(t, want, m.Slot)
		assert.False(t, m.Connected)
	}
	extra, err := NewMember("Late", "", time.Now())
	require.NoError(t, err)
	assert.ErrorIs(t, r.AddGuest(extra), ErrRoomFull)
	assertSlotInvariants(t, r)
}

func TestAddGuest_ReusesFreedSlot(t *testing.T) {
	r := newTestRoom(t)
	a := addGuest(t, r, "A")
	addGuest(t, r, "B")
	_, ok := r.RemoveGuest(a.ID)
	require.True(t, ok)

	c := addGuest(t, r, "C")
	assert.Equal(t, 2, c.Slot)
	assertSlotInvariants(t, r)
}

func TestAddGuest_Locked(t *testing.T) {
	r := newTestRoom(t)
	r.JoinLocked = true
	m, err := NewMember("Guest", "", time.Now())
	require.NoError(t, err)
	assert.ErrorIs(t, r.AddGuest(m), ErrRoomLocked)
	assert.Len(t, r.Members, 1)
}

func TestRemoveGuest_NeverRemovesHostAndClearsMute(t *testing.T) {
	r := newTestRoom(t)
	_, ok := r.RemoveGuest(r.HostID)
	assert.False(t, ok)

	g := addGuest(t, r, "Guest")
	r.SetMuted(g.ID, true)
	_, ok = r.RemoveGuest(g.ID)
	require.True(t, ok)
	assert.False(t, r.IsMuted(g.ID))
}

func TestSetMuted_ReportsChange(t *testing.T) {
	r := newTestRoom(t)
	g := addGuest(t, r, "Guest")
	assert.True(t, r.SetMuted(g.ID, true))
	assert.False(t, r.SetMuted(g.ID, true))
	assert.True(t, r.SetMuted(g.ID, false))
	assert.False(t, r.SetMuted(g.ID, false))
}

func TestMoveGuest_SwapClearsReady(t *testing.T) {
	r := newTestRoom(t)
	a := addGuest(t, r, "A")
	b := addGuest(t, r, "B")
	a.Ready, b.Ready = true, true

	displaced, changed, err := r.MoveGuest(a.ID, 3)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, b, displaced)
	assert.Equal(t, 3, a.Slot)
	assert.Equal(t, 2, b.Slot)
	assert.False(t, a.Ready)
	assert.False(t, b.Ready)
	assertSlotInvariants(t, r)
}

func TestMoveGuest_Rejections(t *testing.T) {
	r := newTestRoom(t)
	a := addGuest(t, r, "A")

	_, changed, err := r.MoveGuest(a.ID, 2)
	require.NoError(t, err)
	assert.False(t, changed, "same slot is a no-op")

	_, _, err = r.MoveGuest(a.ID, HostSlot)
	assert.Error(t, err)
	_, _, err = r.MoveGuest(a.ID, MaxSlots+1)
	assert.Error(t, err)
	_, _, err = r.MoveGuest(r.HostID, 3)
	assert.ErrorIs(t, err, ErrForbidden)
	_, _, err = r.MoveGuest("nobody", 3)
	assert.ErrorIs(t, err, ErrMemberNotFound)
	assertSlotInvariants(t, r)
}

func TestSnapshot_MembersSortedBySlot(t *testing.T) {
	r := newTestRoom(t)
	a := addGuest(t, r, "A")
	b := addGuest(t, r, "B")
	_, _, err := r.MoveGuest(a.ID, 3)
	require.NoError(t, err)
	r.SetMuted(b.ID, true)

	snap := r.Snapshot()
	require.Len(t, snap.Members, 3)
	for i, m := range snap.Members {
		assert.Equal(t, i+1, m.Slot)
	}
	assert.Equal(t, []MemberID{b.ID}, snap.MutedMemberIDs)
	assert.Equal(t, r.HostID, snap.HostMemberID)
	assert.NotNil(t, snap.Chat)
}

func TestNormalizeName(t *testing.T) {
	name, err := NormalizeName("  Player   One \t")
	require.NoError(t, err)
	assert.Equal(t, "Player One", name)

	_, err = NormalizeName("   ")
	assert.ErrorIs(t, err, ErrNameEmpty)

	_, err = NormalizeName(string(make([]rune, MaxDisplayNameLen+1)))
	assert.Error(t, err)
}
