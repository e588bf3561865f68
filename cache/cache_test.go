package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velatra/photofolio/config"
)

func TestRistrettoCache_RoundTrip(t *testing.T) {
	c, err := New(&config.Config{CacheEnabled: true})
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	type payload struct {
		Names []string `json:"names"`
	}

	require.NoError(t, c.Set("k", payload{Names: []string{"a", "b"}}, time.Minute))

	var got payload
	require.NoError(t, c.Get("k", &got))
	assert.Equal(t, []string{"a", "b"}, got.Names)
}

func TestRistrettoCache_MissAfterClear(t *testing.T) {
	c, err := New(&config.Config{CacheEnabled: true})
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	require.NoError(t, c.Set("k", "v", time.Minute))
	require.NoError(t, c.Clear())

	var got string
	assert.ErrorIs(t, c.Get("k", &got), ErrCacheMiss)
}

func TestNoopCache_AlwaysMisses(t *testing.T) {
	c, err := New(&config.Config{CacheEnabled: false})
	require.NoError(t, err)

	require.NoError(t, c.Set("k", "v", time.Minute))
	var got string
	assert.ErrorIs(t, c.Get("k", &got), ErrCacheMiss)
}
