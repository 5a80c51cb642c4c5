package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemorySessionRepo keeps sessions in a bounded, expiring LRU. Records are
// stored encoded so callers never share mutable state.
type MemorySessionRepo struct {
	cache *expirable.LRU[string, []byte]
}

// NewMemorySessionRepo creates a repo holding at most capacity sessions,
// each for at most ttl.
func NewMemorySessionRepo(capacity int, ttl time.Duration) *MemorySessionRepo {
	return &MemorySessionRepo{cache: expirable.NewLRU[string, []byte](capacity, nil, ttl)}
}

func (r *MemorySessionRepo) Save(_ context.Context, rec *SessionRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	r.cache.Add(rec.Session.ID, data)
	return nil
}

func (r *MemorySessionRepo) Get(_ context.Context, id string) (*SessionRecord, error) {
	data, ok := r.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return decodeRecord(id, data)
}

func (r *MemorySessionRepo) Delete(_ context.Context, id string) error {
	r.cache.Remove(id)
	return nil
}

// Len reports how many sessions are held.
func (r *MemorySessionRepo) Len() int {
	return r.cache.Len()
}

var _ SessionRepo = (*MemorySessionRepo)(nil)
