package kvstore

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemory_SetGetDelete(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	_, found, err := store.Get(ctx, "missing")
	assert.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, store.Set(ctx, "key", "value"))
	value, found, err := store.Get(ctx, "key")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "value", value)

	assert.NoError(t, store.Delete(ctx, "key"))
	_, found, _ = store.Get(ctx, "key")
	assert.False(t, found)
}

func TestMemory_QuotaRejectsOversizedValues(t *testing.T) {
	store := NewMemory()
	store.Quota = 10
	ctx := context.Background()

	assert.NoError(t, store.Set(ctx, "small", "tiny"))
	err := store.Set(ctx, "big", strings.Repeat("x", 11))
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	// The rejected write must not clobber anything.
	_, found, _ := store.Get(ctx, "big")
	assert.False(t, found)
}
