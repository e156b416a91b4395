package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQueue is a minimal FIFO job queue over a Redis list. Producers push
// task ids on the left, workers block-pop from the right.
type RedisQueue struct {
	Client *redis.Client
	Key    string
}

func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = "vrp:tasks"
	}
	return &RedisQueue{Client: client, Key: key}
}

func (q *RedisQueue) Enqueue(ctx context.Context, taskID string) error {
	if err := q.Client.LPush(ctx, q.Key, taskID).Err(); err != nil {
		return fmt.Errorf("enqueue task %s: %w", taskID, err)
	}
	return nil
}

// Dequeue blocks up to the poll timeout and returns ok=false when the queue
// stayed empty, so callers can re-check their context between polls.
func (q *RedisQueue) Dequeue(ctx context.Context) (string, bool, error) {
	res, err := q.Client.BRPop(ctx, 2*time.Second, q.Key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("dequeue: %w", err)
	}
	if len(res) != 2 {
		return "", false, fmt.Errorf("dequeue: unexpected reply length %d", len(res))
	}
	return res[1], true, nil
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.Client.LLen(ctx, q.Key).Result()
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return n, nil
}
