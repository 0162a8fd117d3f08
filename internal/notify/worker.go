package notify

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const popTimeout = 5 * time.Second

// Worker drains the notification queue and hands tasks to the Notifier.
// Delivery is best-effort: a failed task is logged and dropped, never retried
// into the caller's path.
type Worker struct {
	queue    *Queue
	notifier Notifier
	logger   *zap.Logger
}

// NewWorker builds worker.
func NewWorker(queue *Queue, notifier Notifier, logger *zap.Logger) *Worker {
	return &Worker{
		queue:    queue,
		notifier: notifier,
		logger:   logger,
	}
}

// Run consumes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("notification worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("notification worker stopping")
			return ctx.Err()
		default:
		}

		task, err := w.queue.Dequeue(ctx, popTimeout)
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Warn("failed to dequeue notification task", zap.Error(err))
			continue
		}

		if err := Dispatch(ctx, w.notifier, *task); err != nil {
			w.logger.Warn("notification delivery failed",
				zap.String("kind", string(task.Kind)),
				zap.String("session_id", task.SessionID),
				zap.Error(err),
			)
		}
	}
}
