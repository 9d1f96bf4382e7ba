package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrQueueClosed is returned by Submit once the queue stopped accepting work.
var ErrQueueClosed = errors.New("queue closed")

// Handler processes one item.
type Handler[T any] func(context.Context, T) error

// Config tunes a Queue.
type Config struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Queue fans items out to a fixed set of goroutines, retrying failed items.
type Queue[T any] struct {
	name    string
	handler Handler[T]
	cfg     Config

	items  chan T
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// New builds and starts a queue. Workers run until Close.
func New[T any](name string, handler Handler[T], cfg Config) *Queue[T] {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 16
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 200 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	q := &Queue[T]{name: name, handler: handler, cfg: cfg, items: make(chan T, cfg.BufferSize)}
	for i := 0; i < cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	cfg.Logger.Debug("queue started", zap.String("queue", name), zap.Int("workers", cfg.Workers))
	return q
}

// Submit hands item to the workers without waiting for it to be processed. A
// full buffer is reported rather than blocking the caller.
func (q *Queue[T]) Submit(item T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.items <- item:
		return nil
	default:
		return errors.New("queue " + q.name + " is full")
	}
}

// Close stops intake and waits for queued items to drain, or for ctx to end.
func (q *Queue[T]) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.items)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cfg.Logger.Debug("queue drained", zap.String("queue", q.name))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue[T]) worker() {
	defer q.wg.Done()
	for item := range q.items {
		q.process(item)
	}
}

func (q *Queue[T]) process(item T) {
	ctx := context.Background()
	var err error
	for attempt := 0; attempt <= q.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			q.cfg.Logger.Warn("queue item failed, retrying",
				zap.String("queue", q.name), zap.Int("attempt", attempt), zap.Error(err))
			time.Sleep(q.cfg.RetryDelay)
		}
		if err = q.handler(ctx, item); err == nil {
			return
		}
	}
	q.cfg.Logger.Error("queue item dropped after retries", zap.String("queue", q.name), zap.Error(err))
}
