package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis serializes redemption attempts per ticket. The lock key is the token
// id, the value the scan id that owns it; only the owner may release it. The
// TTL bounds how long an abandoned scan can wedge a ticket.
type Redis struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *log.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Redis{
		Client: client,
		TTL:    ttl,
		Logger: log.Default(),
	}
}

func lockKey(tokenID int64) string {
	return fmt.Sprintf("redeem_lock:%d", tokenID)
}

// LockTicket acquires the per-ticket redemption lock for one gate scan.
func (r *Redis) LockTicket(ctx context.Context, tokenID int64, scanID string) (bool, error) {
	ok, err := r.Client.SetNX(ctx, lockKey(tokenID), scanID, r.TTL).Result()
	return ok, err
}

// UnlockTicket releases the lock if scanID still owns it. A lock that
// expired and was re-acquired by another scan is left alone.
func (r *Redis) UnlockTicket(ctx context.Context, tokenID int64, scanID string) error {
	key := lockKey(tokenID)
	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already expired
	}
	if err != nil {
		return err
	}
	if val == scanID {
		_, err := r.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}
