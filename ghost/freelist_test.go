package ghost

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFreeListReusesHoles(t *testing.T) {
	var f freeList
	for i := range 4 {
		lid, err := f.alloc(10)
		require.NoError(t, err)
		require.Equal(t, LocalID(i), lid)
	}
	f.release(1)
	f.release(2)
	require.Equal(t, []LocalID{1, 2}, f.available())

	lid, err := f.alloc(10)
	require.NoError(t, err)
	require.Equal(t, LocalID(2), lid)
	lid, err = f.alloc(10)
	require.NoError(t, err)
	require.Equal(t, LocalID(1), lid)
	lid, err = f.alloc(10)
	require.NoError(t, err)
	require.Equal(t, LocalID(4), lid)
	require.Equal(t, 5, f.extent())
}

func TestFreeListExhausted(t *testing.T) {
	var f freeList
	_, err := f.alloc(1)
	require.NoError(t, err)
	_, err = f.alloc(1)
	require.ErrorIs(t, err, ErrLocalIDExhausted)
	require.ErrorIs(t, err, ErrResource)

	f.release(0)
	lid, err := f.alloc(1)
	require.NoError(t, err)
	require.Equal(t, LocalID(0), lid)
}

func TestFreeListTrim(t *testing.T) {
	f := freeList{holes: []LocalID{5, 1, 7, 3}, next: 8}
	c := f.clone()
	f.trim(4)
	require.Equal(t, []LocalID{1, 3}, f.available())
	require.Equal(t, 4, f.extent())
	require.Equal(t, 8, c.extent(), "clone is independent")
	require.Len(t, c.available(), 4)
}
