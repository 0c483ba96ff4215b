package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrivateRoomSymmetry(t *testing.T) {
	pairs := [][2]int64{{1, 2}, {5, 9}, {100, 3}, {42, 43}}
	for _, p := range pairs {
		ab, err := PrivateRoom(p[0], p[1])
		require.NoError(t, err)
		ba, err := PrivateRoom(p[1], p[0])
		require.NoError(t, err)
		assert.Equal(t, ab, ba, "room must not depend on who initiates")
	}

	room, err := PrivateRoom(9, 5)
	require.NoError(t, err)
	assert.Equal(t, "user:5_9", room.String())
}

func TestPrivateRoomInvalidTargets(t *testing.T) {
	_, err := PrivateRoom(5, 5)
	assert.ErrorIs(t, err, ErrInvalidTarget, "chatting with oneself")

	_, err = PrivateRoom(0, 5)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = PrivateRoom(5, -1)
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestGroupRoom(t *testing.T) {
	room, err := GroupRoom(7)
	require.NoError(t, err)
	assert.Equal(t, "group:7", room.String())

	_, err = GroupRoom(0)
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestTempIDNegativeAndUnique(t *testing.T) {
	now := time.Now()
	seen := make(map[int64]struct{})
	for i := 0; i < 1000; i++ {
		id := TempID(now)
		assert.Less(t, id, int64(0))
		_, dup := seen[id]
		require.False(t, dup, "temp ids must never collide")
		seen[id] = struct{}{}
	}
}
