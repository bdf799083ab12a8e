package queue

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDispatcher is a Redis list shared by the API and worker processes
type RedisDispatcher struct {
	client *redis.Client
	key    string
}

// NewRedisDispatcher creates a dispatcher over the list at key
func NewRedisDispatcher(client *redis.Client, key string) *RedisDispatcher {
	return &RedisDispatcher{client: client, key: key}
}

func (d *RedisDispatcher) Push(ctx context.Context, taskID string) error {
	if err := d.client.LPush(ctx, d.key, taskID).Err(); err != nil {
		return fmt.Errorf("failed to push task %s: %w", taskID, err)
	}
	return nil
}

func (d *RedisDispatcher) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	res, err := d.client.BRPop(ctx, timeout, d.key).Result()
	if stdErrors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to pop task: %w", err)
	}
	// BRPOP replies [key, value]
	if len(res) != 2 {
		return "", fmt.Errorf("unexpected BRPOP reply %v", res)
	}
	return res[1], nil
}
