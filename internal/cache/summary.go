package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const summaryKeyPrefix = "cart:summary:"

// Summary is the denormalized cart view cached per cart: how many items and
// what they cost. It is invalidated on every cart mutation and recomputed on
// the next read.
type Summary struct {
	TotalItems int64 `json:"total_items"`
	TotalCents int64 `json:"total_cents"`
}

// SummaryStore caches cart summaries in Redis.
type SummaryStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSummaryStore(client *redis.Client, ttl time.Duration) *SummaryStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SummaryStore{client: client, ttl: ttl}
}

// Fetch returns the cached summary and whether one was present.
func (s *SummaryStore) Fetch(ctx context.Context, cartID string) (Summary, bool, error) {
	raw, err := s.client.Get(ctx, summaryKeyPrefix+cartID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Summary{}, false, nil
		}
		return Summary{}, false, err
	}
	var sum Summary
	if err := json.Unmarshal(raw, &sum); err != nil {
		// A corrupt entry behaves like a miss.
		return Summary{}, false, nil
	}
	return sum, true, nil
}

func (s *SummaryStore) Store(ctx context.Context, cartID string, sum Summary) error {
	raw, err := json.Marshal(sum)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, summaryKeyPrefix+cartID, raw, s.ttl).Err()
}

func (s *SummaryStore) Invalidate(ctx context.Context, cartID string) error {
	return s.client.Del(ctx, summaryKeyPrefix+cartID).Err()
}
