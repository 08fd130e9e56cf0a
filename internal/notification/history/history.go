package history

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"schoolapp/internal/notification/domain"
	"schoolapp/pkg/kvstore"
)

const (
	// StorageKey holds the whole history as one JSON array.
	StorageKey = "notificationHistory"
	// Capacity is the number of records kept; older records are evicted.
	Capacity = 100
)

// Store is the newest-first, capacity-bounded notification history.
//
// Every mutation rewrites the full collection under StorageKey. That is fine
// up to Capacity records and is the ceiling of this design.
type Store struct {
	store kvstore.Store
	mu    sync.Mutex
}

func NewStore(store kvstore.Store) *Store {
	return &Store{store: store}
}

// List returns the history, newest first.
func (s *Store) List(ctx context.Context) ([]domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Append prepends rec and truncates the history to Capacity.
func (s *Store) Append(ctx context.Context, rec domain.Record) error {
	return s.update(ctx, func(records []domain.Record) []domain.Record {
		records = append([]domain.Record{rec}, records...)
		if len(records) > Capacity {
			records = records[:Capacity]
		}
		return records
	})
}

// MarkRead flags the record with id as read. Unknown ids are ignored.
func (s *Store) MarkRead(ctx context.Context, id string) error {
	return s.update(ctx, func(records []domain.Record) []domain.Record {
		for i := range records {
			if records[i].ID == id {
				records[i].Read = true
			}
		}
		return records
	})
}

func (s *Store) MarkAllRead(ctx context.Context) error {
	return s.update(ctx, func(records []domain.Record) []domain.Record {
		for i := range records {
			records[i].Read = true
		}
		return records
	})
}

// RemoveWhere drops every record matching pred and returns how many went.
func (s *Store) RemoveWhere(ctx context.Context, pred func(domain.Record) bool) (int, error) {
	removed := 0
	err := s.update(ctx, func(records []domain.Record) []domain.Record {
		kept := make([]domain.Record, 0, len(records))
		for _, r := range records {
			if pred(r) {
				removed++
				continue
			}
			kept = append(kept, r)
		}
		return kept
	})
	return removed, err
}

func (s *Store) UnreadCount(ctx context.Context) (int, error) {
	records, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range records {
		if !r.Read {
			n++
		}
	}
	return n, nil
}

// Clear removes the persisted history.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Remove(ctx, StorageKey)
}

func (s *Store) update(ctx context.Context, fn func([]domain.Record) []domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := kvstore.SetJSON(ctx, s.store, StorageKey, fn(records)); err != nil {
		return fmt.Errorf("failed to save notification history: %w", err)
	}
	return nil
}

func (s *Store) load(ctx context.Context) ([]domain.Record, error) {
	var records []domain.Record
	err := kvstore.GetJSON(ctx, s.store, StorageKey, &records)
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		return nil, fmt.Errorf("failed to load notification history: %w", err)
	}
	if records == nil {
		records = []domain.Record{}
	}
	return records, nil
}
