package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rinkside/pickup-api/internal/core/domain"
)

// BlacklistStore tracks invalidated session tokens in Redis.
// Key format: blacklist:<sha256(token)>. The hash keeps keys short
// and avoids storing raw tokens in the store.
//
// Entries are written with TTL equal to the token's remaining life, so
// Redis expiry doubles as the passive garbage collector: no entry ever
// outlives the token it blocks.
type BlacklistStore struct {
	client *redis.Client
}

func NewBlacklistStore(client *redis.Client) *BlacklistStore {
	return &BlacklistStore{client: client}
}

// Insert records the token with insert-if-absent semantics (SETNX), so
// two concurrent logouts of the same token cannot both succeed.
func (s *BlacklistStore) Insert(ctx context.Context, token string, ttl time.Duration) error {
	ok, err := s.client.SetNX(ctx, s.key(token), "1", ttl).Result()
	if err != nil {
		return fmt.Errorf("blacklist insert: %w", err)
	}
	if !ok {
		return domain.ErrAlreadyInvalidated
	}
	return nil
}

// Contains reports whether the token has been invalidated.
func (s *BlacklistStore) Contains(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("blacklist lookup: %w", err)
	}
	return n > 0, nil
}

func (s *BlacklistStore) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "blacklist:" + hex.EncodeToString(sum[:])
}
