package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "b", "2"))
	require.NoError(t, s.Set(ctx, "a", "1"))
	v, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	require.NoError(t, s.Remove(ctx, "a", "nope"))
	keys, _ = s.Keys(ctx)
	assert.Equal(t, []string{"b"}, keys)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	type payload struct {
		Name string `json:"name"`
	}
	require.NoError(t, SetJSON(ctx, s, "p", payload{Name: "x"}))

	var got payload
	require.NoError(t, GetJSON(ctx, s, "p", &got))
	assert.Equal(t, "x", got.Name)

	require.NoError(t, s.Set(ctx, "bad", "{"))
	assert.Error(t, GetJSON(ctx, s, "bad", &got))
	assert.ErrorIs(t, GetJSON(ctx, s, "absent", &got), ErrNotFound)
}
