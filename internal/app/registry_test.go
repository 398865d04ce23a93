package app

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Playroom/internal/domain"
)

func newHost(t *testing.T) *domain.Member {
	t.Helper()
	m, err := domain.NewMember("Host", "", time.Now())
	require.NoError(t, err)
	return m
}

func sequence(codes ...domain.Code) CodeGenerator {
	i := 0
	return func() (domain.Code, error) {
		c := codes[i%len(codes)]
		i++
		return c, nil
	}
}

func TestRegistry_CreateAndGet(t *testing.T) {
	reg := NewRegistry(nil)
	room, err := reg.Create(newHost(t), time.Now())
	require.NoError(t, err)

	got, ok := reg.Get(room.Code())
	require.True(t, ok)
	assert.Same(t, room, got)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_RejectionSamplesCollisions(t *testing.T) {
	reg := NewRegistry(sequence("AAAAAA", "AAAAAA", "BBBBBB"))
	first, err := reg.Create(newHost(t), time.Now())
	require.NoError(t, err)
	second, err := reg.Create(newHost(t), time.Now())
	require.NoError(t, err)

	assert.Equal(t, domain.Code("AAAAAA"), first.Code())
	assert.Equal(t, domain.Code("BBBBBB"), second.Code())
}

func TestRegistry_CodeExhaustion(t *testing.T) {
	reg := NewRegistry(sequence("AAAAAA"))
	_, err := reg.Create(newHost(t), time.Now())
	require.NoError(t, err)

	_, err = reg.Create(newHost(t), time.Now())
	assert.ErrorIs(t, err, domain.ErrCodeExhausted)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_GeneratorError(t *testing.T) {
	boom := errors.New("entropy")
	reg := NewRegistry(func() (domain.Code, error) { return "", boom })
	_, err := reg.Create(newHost(t), time.Now())
	assert.ErrorIs(t, err, boom)
}

func TestRegistry_RemoveOnlyCurrentRoom(t *testing.T) {
	reg := NewRegistry(sequence("AAAAAA"))
	room, err := reg.Create(newHost(t), time.Now())
	require.NoError(t, err)

	assert.True(t, reg.Remove(room))
	assert.False(t, reg.Remove(room))
	_, ok := reg.Get(room.Code())
	assert.False(t, ok)

	// A new room under the same code must survive a stale removal.
	again, err := reg.Create(newHost(t), time.Now())
	require.NoError(t, err)
	assert.False(t, reg.Remove(room))
	got, ok := reg.Get(again.Code())
	require.True(t, ok)
	assert.Same(t, again, got)
}
