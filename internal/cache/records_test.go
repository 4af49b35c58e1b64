package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCache_SetAndGet(t *testing.T) {
	cache := NewRecordCache()

	cache.Set("nbo", 42)

	id, ok := cache.Get("nbo")
	require.True(t, ok)
	assert.Equal(t, uint(42), id)
}

func TestRecordCache_DeleteAndReset(t *testing.T) {
	cache := NewRecordCache()
	cache.Set("a", 1)
	cache.Set("b", 2)

	cache.Delete("a")
	_, ok := cache.Get("a")
	assert.False(t, ok)

	cache.Reset()
	_, ok = cache.Get("b")
	assert.False(t, ok)
}
