// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigstream/gigstream/cache"
)

func TestNewLRU(t *testing.T) {
	_, err := cache.NewLRU[int, string](0)
	assert.Error(t, err)

	assert.Panics(t, func() { cache.MustNewLRU[int, string](-1) })
}

func TestLRUEvict(t *testing.T) {
	c := cache.MustNewLRU[uint32, string](2)
	c.Add(1, "a")
	c.Add(2, "b")
	c.Get(1)
	c.Add(3, "c")

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(2)
	assert.False(t, ok, "least recently used is evicted")

	v, ok := c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	c.Remove(1)
	_, ok = c.Get(1)
	assert.False(t, ok)

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestGetOrLoad(t *testing.T) {
	c := cache.MustNewLRU[string, int](8)

	calls := 0
	load := func(k string) (int, error) {
		calls++
		if k == "bad" {
			return 0, errors.New("boom")
		}
		return len(k), nil
	}

	v, err := c.GetOrLoad("four", load)
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	v, err = c.GetOrLoad("four", load)
	require.NoError(t, err)
	assert.Equal(t, 4, v)
	assert.Equal(t, 1, calls)

	_, err = c.GetOrLoad("bad", load)
	assert.Error(t, err)
	_, err = c.GetOrLoad("bad", load)
	assert.Error(t, err)
	assert.Equal(t, 3, calls, "errors are not cached")
}

func TestCacheStats(t *testing.T) {
	cs := &cache.Stats{}
	cs.Hit()
	cs.Miss()
	_, hit, miss := cs.Stats()

	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(1), miss)

	changed, _, _ := cs.Stats()
	assert.False(t, changed)

	cs.Hit()
	cs.Miss()
	assert.Equal(t, int64(3), cs.Hit())

	changed, hit, miss = cs.Stats()
	assert.Equal(t, int64(3), hit)
	assert.Equal(t, int64(2), miss)
	assert.True(t, changed)

	c := cache.MustNewLRU[int, int](1)
	c.Add(1, 1)
	c.Get(1)
	c.Get(2)
	_, hit, miss = c.Stats().Stats()
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(1), miss)
}
