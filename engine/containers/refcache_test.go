package containers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handle struct {
	id int
}

func TestRefCacheAcquireDedup(t *testing.T) {
	builds := 0
	destroyed := []string{}
	c := NewRefCache[string, *handle]("programs", func(key string, h *handle) {
		destroyed = append(destroyed, key)
	})
	build := func() (*handle, error) {
		builds++
		return &handle{id: builds}, nil
	}

	a, err := c.Acquire("phong", build)
	require.NoError(t, err)
	b, err := c.Acquire("phong", build)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, builds)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, uint32(2), c.RefCount("phong"))

	assert.True(t, c.Release("phong"))
	assert.Equal(t, 1, c.Len())
	assert.Empty(t, destroyed)

	assert.True(t, c.Release("phong"))
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, []string{"phong"}, destroyed)

	// double release is tolerated
	assert.False(t, c.Release("phong"))
	assert.Equal(t, []string{"phong"}, destroyed)
}

func TestRefCacheFailedBuildInsertsNothing(t *testing.T) {
	c := NewRefCache[int, *handle]("textures", nil)
	boom := errors.New("boom")

	_, err := c.Acquire(7, func() (*handle, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	_, created, err := c.LoadOrCreate(7, func() (*handle, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, created)
	assert.Equal(t, 0, c.Len())
}

func TestRefCacheLoadOrCreateKeepsCount(t *testing.T) {
	c := NewRefCache[int, *handle]("materials", nil)
	build := func() (*handle, error) { return &handle{id: 1}, nil }

	v, created, err := c.LoadOrCreate(1, build)
	require.NoError(t, err)
	assert.True(t, created)
	w, created, err := c.LoadOrCreate(1, build)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, v, w)
	assert.Equal(t, uint32(1), c.RefCount(1))
}

func TestRefCacheInsertFirstWriterWins(t *testing.T) {
	c := NewRefCache[uint64, *handle]("sources", nil)
	first := &handle{id: 1}

	assert.True(t, c.Insert(42, first))
	assert.False(t, c.Insert(42, &handle{id: 2}))

	v, ok := c.Lookup(42)
	require.True(t, ok)
	assert.Same(t, first, v)
	assert.Equal(t, uint32(1), c.RefCount(42))

	_, ok = c.AcquireExisting(42)
	assert.True(t, ok)
	assert.Equal(t, uint32(2), c.RefCount(42))

	_, ok = c.AcquireExisting(43)
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestRefCacheKeySwitchLeavesNoOrphan(t *testing.T) {
	c := NewRefCache[string, *handle]("programs", nil)
	build := func() (*handle, error) { return &handle{}, nil }

	_, err := c.Acquire("basic", build)
	require.NoError(t, err)

	// a material gains a map and moves to another variant
	_, err = c.Acquire("basic+map", build)
	require.NoError(t, err)
	c.Release("basic")

	assert.Equal(t, []string{"basic+map"}, c.Keys())
	assert.Equal(t, uint32(1), c.RefCount("basic+map"))
}

func TestRefCachePurgeAndRemove(t *testing.T) {
	destroyed := 0
	c := NewRefCache[int, int]("buffers", func(int, int) { destroyed++ })
	for i := 0; i < 4; i++ {
		c.Insert(i, i)
	}
	c.AcquireExisting(0)

	assert.True(t, c.Remove(0))
	assert.False(t, c.Remove(0))
	assert.Equal(t, 1, destroyed)

	assert.Equal(t, 3, c.Purge())
	assert.Equal(t, 4, destroyed)
	assert.Equal(t, 0, c.Len())
}
