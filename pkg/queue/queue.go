// Package queue is the background task dispatcher: a Redis-list-backed
// queue with a polling worker, plus a synchronous in-process fallback for
// deployments without Redis.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	tasksKey      = "teamgate:tasks"
	eventsChannel = "teamgate:task_events"
)

// Task is one unit of background work.
type Task struct {
	ID         string            `json:"id"`
	Kind       string            `json:"kind"`
	Payload    map[string]string `json:"payload,omitempty"`
	EnqueuedAt time.Time         `json:"enqueued_at"`
}

// Handler executes one task kind.
type Handler func(ctx context.Context, task Task) error

// Dispatcher hands tasks over for background execution and returns the
// task ID.
type Dispatcher interface {
	Dispatch(ctx context.Context, kind string, payload map[string]string) (string, error)
}

// Queue is the Redis-backed dispatcher. Tasks are pushed onto a list and
// an event is published for observers.
type Queue struct {
	rdb *redis.Client
	log *zap.Logger
}

// NewQueue connects to Redis and verifies connectivity.
func NewQueue(ctx context.Context, url string, log *zap.Logger) (*Queue, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis unreachable: %w", err)
	}

	return &Queue{rdb: rdb, log: log}, nil
}

// Dispatch enqueues a task and publishes a task event.
func (q *Queue) Dispatch(ctx context.Context, kind string, payload map[string]string) (string, error) {
	if kind == "" {
		return "", errors.New("task kind cannot be empty")
	}

	task := Task{
		ID:         uuid.NewString(),
		Kind:       kind,
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(task)
	if err != nil {
		return "", fmt.Errorf("failed to serialize task: %w", err)
	}

	if err := q.rdb.LPush(ctx, tasksKey, data).Err(); err != nil {
		return "", fmt.Errorf("failed to enqueue task: %w", err)
	}
	if err := q.rdb.Publish(ctx, eventsChannel, data).Err(); err != nil {
		q.log.Warn("failed to publish task event", zap.Error(err))
	}

	q.log.Info("task enqueued", zap.String("id", task.ID), zap.String("kind", kind))
	return task.ID, nil
}

// Close closes the Redis connection. Implements io.Closer.
func (q *Queue) Close() error {
	return q.rdb.Close()
}

// Worker consumes tasks from a Queue and dispatches them to registered
// handlers. Unknown kinds and handler errors are logged, never fatal.
type Worker struct {
	queue    *Queue
	handlers map[string]Handler
	timeout  time.Duration
	log      *zap.Logger
}

// NewWorker creates a worker with a per-task timeout.
func NewWorker(q *Queue, timeout time.Duration, log *zap.Logger) *Worker {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Worker{
		queue:    q,
		handlers: make(map[string]Handler),
		timeout:  timeout,
		log:      log,
	}
}

// Register installs the handler for a task kind.
func (w *Worker) Register(kind string, h Handler) {
	w.handlers[kind] = h
}

// Run blocks consuming tasks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("worker started")
	for {
		if err := ctx.Err(); err != nil {
			w.log.Info("worker stopped")
			return err
		}

		result, err := w.queue.rdb.BRPop(ctx, time.Second, tasksKey).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				w.log.Info("worker stopped")
				return ctx.Err()
			}
			w.log.Warn("failed to pop task", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if len(result) != 2 {
			continue
		}

		var task Task
		if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
			w.log.Warn("discarding malformed task", zap.Error(err))
			continue
		}
		w.process(ctx, task)
	}
}

func (w *Worker) process(ctx context.Context, task Task) {
	handler, ok := w.handlers[task.Kind]
	if !ok {
		w.log.Warn("no handler for task kind", zap.String("kind", task.Kind))
		return
	}

	taskCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if err := handler(taskCtx, task); err != nil {
		w.log.Error("task failed",
			zap.String("id", task.ID), zap.String("kind", task.Kind), zap.Error(err))
		return
	}
	w.log.Info("task completed", zap.String("id", task.ID), zap.String("kind", task.Kind))
}

// Inline executes handlers synchronously at dispatch time. Used when Redis
// is not configured.
type Inline struct {
	handlers map[string]Handler
	log      *zap.Logger
}

// NewInline creates an in-process dispatcher.
func NewInline(log *zap.Logger) *Inline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Inline{handlers: make(map[string]Handler), log: log}
}

// Register installs the handler for a task kind.
func (d *Inline) Register(kind string, h Handler) {
	d.handlers[kind] = h
}

// Dispatch runs the handler immediately.
func (d *Inline) Dispatch(ctx context.Context, kind string, payload map[string]string) (string, error) {
	handler, ok := d.handlers[kind]
	if !ok {
		return "", fmt.Errorf("no handler for task kind %q", kind)
	}

	task := Task{
		ID:         uuid.NewString(),
		Kind:       kind,
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := handler(ctx, task); err != nil {
		return "", fmt.Errorf("task %s failed: %w", kind, err)
	}
	d.log.Info("task completed inline", zap.String("id", task.ID), zap.String("kind", kind))
	return task.ID, nil
}
