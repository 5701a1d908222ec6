package reset

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrTokenNotFound = errors.New("reset token not found")

const (
	tokenKeyPrefix   = "pwreset:token:"
	accountKeyPrefix = "pwreset:account:"
)

// Store keeps password-reset tokens in Redis with native TTL expiry. A
// secondary per-account key enforces at most one live token per account:
// issuing a new token deletes the prior one.
type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{redis: client, ttl: ttl}
}

func (s *Store) Save(ctx context.Context, token, accountID string) error {
	// Drop any earlier token for this account before installing the new one.
	prev, err := s.redis.Get(ctx, accountKeyPrefix+accountID).Result()
	if err == nil && prev != "" {
		if err := s.redis.Del(ctx, tokenKeyPrefix+prev).Err(); err != nil {
			return err
		}
	} else if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, tokenKeyPrefix+token, accountID, s.ttl)
	pipe.Set(ctx, accountKeyPrefix+accountID, token, s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Consume atomically looks up and deletes the token, returning the owning
// account id. GETDEL keeps two concurrent confirms from both succeeding.
func (s *Store) Consume(ctx context.Context, token string) (string, error) {
	accountID, err := s.redis.GetDel(ctx, tokenKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", err
	}
	s.redis.Del(ctx, accountKeyPrefix+accountID)
	return accountID, nil
}
