package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_enqueuer.go skillbridge/internal/notify Enqueuer

// DefaultQueueKey is the redis list holding pending notification tasks.
const DefaultQueueKey = "skillbridge:notifications"

const enqueueTimeout = 2 * time.Second

// Enqueuer schedules a notification task for asynchronous delivery.
// Callers treat failures as log-only; a lost notification never unwinds
// committed state.
type Enqueuer interface {
	Enqueue(ctx context.Context, task Task) error
}

// Queue is a redis list backed task queue.
type Queue struct {
	client *redis.Client
	key    string
}

// NewQueue returns a queue on the given redis list key.
func NewQueue(client *redis.Client, key string) *Queue {
	if key == "" {
		key = DefaultQueueKey
	}
	return &Queue{client: client, key: key}
}

// Enqueue pushes a task onto the list. The short timeout keeps a slow redis
// from blocking the caller's response.
func (q *Queue) Enqueue(ctx context.Context, task Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, enqueueTimeout)
	defer cancel()

	return q.client.LPush(ctx, q.key, payload).Err()
}

// Dequeue blocks up to timeout waiting for the next task. It returns
// redis.Nil when the wait elapses with an empty queue.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Task, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		return nil, err
	}
	// BRPOP returns [key, value].
	var task Task
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		return nil, err
	}
	return &task, nil
}
