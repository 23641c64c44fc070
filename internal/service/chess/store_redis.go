package chess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/park285/cheese-chess/internal/domain"
)

const defaultPreferenceTTL = 30 * 24 * time.Hour

// RedisStore keeps preferences as JSON values under "chess:pref:<player>".
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

// NewRedisStore builds a store; a non-positive ttl selects 30 days.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultPreferenceTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl, now: time.Now}
}

func (s *RedisStore) key(playerID string) string { return "chess:pref:" + strings.TrimSpace(playerID) }

func (s *RedisStore) GetPreference(ctx context.Context, playerID string) (*domain.PlayerPreference, error) {
	raw, err := s.rdb.Get(ctx, s.key(playerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chess preference: %w", err)
	}
	var pref domain.PlayerPreference
	if err := json.Unmarshal(raw, &pref); err != nil {
		return nil, fmt.Errorf("decode chess preference: %w", err)
	}
	return &pref, nil
}

func (s *RedisStore) UpsertPreference(ctx context.Context, pref *domain.PlayerPreference) error {
	if pref == nil {
		return nil
	}
	now := s.now()
	stored := *pref
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	raw, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("encode chess preference: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(pref.PlayerID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("set chess preference: %w", err)
	}
	return nil
}
