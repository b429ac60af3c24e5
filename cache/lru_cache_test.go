// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLRUCache(t *testing.T) {
	fetchCount := 0
	fetch := func(key string) (int, error) {
		fetchCount++
		return 42, nil
	}

	c := NewLRUCache[string, int](4)

	v, err := c.Get("a", fetch, false)
	require.NoError(t, err)
	require.Equal(t, 42, v)
	require.Equal(t, 1, fetchCount)

	// cached, no second fetch
	_, err = c.Get("a", fetch, false)
	require.NoError(t, err)
	require.Equal(t, 1, fetchCount)

	// invalidate forces a refetch
	_, err = c.Get("a", fetch, true)
	require.NoError(t, err)
	require.Equal(t, 2, fetchCount)

	c.Invalidate("a")
	_, err = c.Get("a", fetch, false)
	require.NoError(t, err)
	require.Equal(t, 3, fetchCount)
}

func TestLRUCacheFetchError(t *testing.T) {
	boom := errors.New("boom")
	c := NewLRUCache[string, int](4)

	_, err := c.Get("a", func(string) (int, error) { return 0, boom }, false)
	require.ErrorIs(t, err, boom)

	// the failed fetch must not be cached
	v, err := c.Get("a", func(string) (int, error) { return 7, nil }, false)
	require.NoError(t, err)
	require.Equal(t, 7, v)
}
