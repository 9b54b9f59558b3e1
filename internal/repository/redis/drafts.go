package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisx "github.com/kirinyoku/tourdesk/internal/redis"
	"github.com/kirinyoku/tourdesk/internal/quote"
	"github.com/kirinyoku/tourdesk/internal/repository"
	"github.com/redis/go-redis/v9"
)

// DraftStore keeps editing sessions. Each save refreshes the TTL, so an
// abandoned draft disappears on its own.
type DraftStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDraftStore(rdb *redis.Client, ttl time.Duration) *DraftStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &DraftStore{rdb: rdb, ttl: ttl}
}

func (s *DraftStore) Save(ctx context.Context, d *quote.Draft) error {
	const op = "redis.DraftStore.Save"

	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := s.rdb.Set(ctx, redisx.KeyDraft(d.ID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// Get returns repository.ErrNotFound for unknown or expired drafts.
func (s *DraftStore) Get(ctx context.Context, id string) (*quote.Draft, error) {
	const op = "redis.DraftStore.Get"

	b, err := s.rdb.Get(ctx, redisx.KeyDraft(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	var d quote.Draft
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &d, nil
}

func (s *DraftStore) Delete(ctx context.Context, id string) error {
	const op = "redis.DraftStore.Delete"

	if err := s.rdb.Del(ctx, redisx.KeyDraft(id)).Err(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}
