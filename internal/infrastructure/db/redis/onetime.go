package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rinkside/pickup-api/internal/core/domain"
)

// consumeScript atomically compares the stored token and deletes it on
// match, making each token single-use even under concurrent submits.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// OneTimeTokenStore issues and consumes single-use tokens (email
// confirmation, password reset) in Redis.
// Key format: onetime:<purpose>:<email>. Issuing a fresh token for
// the same purpose supersedes any previous one.
type OneTimeTokenStore struct {
	client *redis.Client
}

func NewOneTimeTokenStore(client *redis.Client) *OneTimeTokenStore {
	return &OneTimeTokenStore{client: client}
}

// Issue generates an opaque token and stores it for ttl.
func (s *OneTimeTokenStore) Issue(ctx context.Context, purpose, email string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, s.key(purpose, email), token, ttl).Err(); err != nil {
		return "", fmt.Errorf("one-time token issue: %w", err)
	}
	return token, nil
}

// Consume deletes the token iff it matches the live pending entry.
// A mismatch leaves the pending entry untouched.
func (s *OneTimeTokenStore) Consume(ctx context.Context, purpose, email, token string) error {
	n, err := consumeScript.Run(ctx, s.client, []string{s.key(purpose, email)}, token).Int()
	if err != nil {
		return fmt.Errorf("one-time token consume: %w", err)
	}
	if n == 0 {
		return domain.ErrInvalidOrExpiredToken
	}
	return nil
}

func (s *OneTimeTokenStore) key(purpose, email string) string {
	return fmt.Sprintf("onetime:%s:%s", purpose, email)
}
