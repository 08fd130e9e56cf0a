package history

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"schoolapp/internal/notification/domain"
	"schoolapp/pkg/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id string) domain.Record {
	return domain.Record{ID: id, Title: "title " + id, Timestamp: time.Now(), Type: domain.TypeGeneral}
}

func TestStore_AppendNewestFirstAndCapacity(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kvstore.NewMemoryStore())

	for i := 0; i < 130; i++ {
		require.NoError(t, s.Append(ctx, record(fmt.Sprint(i))))
	}

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, Capacity)
	assert.Equal(t, "129", records[0].ID)
	assert.Equal(t, "30", records[Capacity-1].ID)
	for i := 1; i < len(records); i++ {
		assert.Equal(t, fmt.Sprint(129-i), records[i].ID)
	}
}

func TestStore_MarkRead(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kvstore.NewMemoryStore())
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Append(ctx, record(id)))
	}

	require.NoError(t, s.MarkRead(ctx, "b"))
	records, err := s.List(ctx)
	require.NoError(t, err)
	for _, r := range records {
		assert.Equal(t, r.ID == "b", r.Read, r.ID)
	}

	before, _ := s.List(ctx)
	require.NoError(t, s.MarkRead(ctx, "missing"))
	after, _ := s.List(ctx)
	assert.Equal(t, before, after)

	n, err := s.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.MarkAllRead(ctx))
	n, _ = s.UnreadCount(ctx)
	assert.Zero(t, n)
}

func TestStore_ClearAndRemoveWhere(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	s := NewStore(kv)

	a := record("a")
	a.Data = map[string]string{"student_id": "s1"}
	require.NoError(t, s.Append(ctx, a))
	require.NoError(t, s.Append(ctx, record("b")))

	removed, err := s.RemoveWhere(ctx, func(r domain.Record) bool { return r.Data["student_id"] == "s1" })
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	records, _ := s.List(ctx)
	require.Len(t, records, 1)
	assert.Equal(t, "b", records[0].ID)

	require.NoError(t, s.Clear(ctx))
	_, err = kv.Get(ctx, StorageKey)
	assert.ErrorIs(t, err, kvstore.ErrNotFound)

	records, err = s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStore_CorruptBlob(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, StorageKey, "not json"))

	s := NewStore(kv)
	_, err := s.List(ctx)
	assert.Error(t, err)
	assert.Error(t, s.Append(ctx, record("x")))
}

func TestStore_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kvstore.NewMemoryStore())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Append(ctx, record(fmt.Sprint(i)))
		}(i)
	}
	wg.Wait()

	records, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 50)
}
