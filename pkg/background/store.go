package background

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Task is a unit of deferred async work. The context is the store's
// lifecycle context; it is canceled when the store closes.
type Task func(ctx context.Context) error

// ErrStoreClosed is returned by Sweep after Close.
var ErrStoreClosed = errors.New("background.store_closed")

// capsule tracks one started task until a sweep observes its completion.
type capsule struct {
	run        Task
	reschedule bool
	onComplete func(error)
	done       chan struct{}
	err        error
}

// Store is a concurrent queue of in-flight background tasks plus the sweep
// logic that reaps them.
type Store struct {
	mu     sync.Mutex
	queue  []*capsule
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	log    *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used by Run to report sweep failures.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// New creates an empty Store ready to accept tasks.
func New(opts ...Option) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		ctx:    ctx,
		cancel: cancel,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TaskOption configures a single Add call.
type TaskOption func(*capsule)

// WithReschedule re-enqueues the same task after each observed completion,
// turning it into periodic work.
func WithReschedule() TaskOption {
	return func(c *capsule) {
		c.reschedule = true
	}
}

// WithOnComplete registers a callback invoked by the sweep that observes the
// task's completion, receiving the task's error (nil on success).
func WithOnComplete(fn func(error)) TaskOption {
	return func(c *capsule) {
		c.onComplete = fn
	}
}

// Add starts task in its own goroutine and enqueues it for reaping.
// It reports false, without starting anything, once the store is closed.
func (s *Store) Add(task Task, opts ...TaskOption) bool {
	if task == nil {
		return false
	}

	c := &capsule{run: task, done: make(chan struct{})}
	for _, opt := range opts {
		opt(c)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.queue = append(s.queue, c)
	s.mu.Unlock()

	go func() {
		defer close(c.done)
		defer func() {
			if r := recover(); r != nil {
				c.err = errors.Join(errors.New("background.task_panic"), toError(r))
			}
		}()
		c.err = c.run(s.ctx)
	}()

	return true
}

// Sweep performs a single cooperative drain: every completed task is reaped
// (its error collected, its completion callback run, and, for rescheduled
// tasks, a fresh run started), every still-pending task is put back on the
// queue. It never waits on an incomplete task. Collected failures are
// returned joined together after the whole pass finishes.
func (s *Store) Sweep() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	pass := s.queue
	s.queue = nil
	s.mu.Unlock()

	var errs []error
	for _, c := range pass {
		select {
		case <-c.done:
			if c.err != nil {
				errs = append(errs, c.err)
			}
			if c.onComplete != nil {
				c.onComplete(c.err)
			}
			if c.reschedule {
				s.Add(c.run, s.taskOptions(c)...)
			}
		default:
			s.requeue(c)
		}
	}

	return errors.Join(errs...)
}

// Run drives Sweep every interval until ctx is canceled, then closes the
// store. Sweep failures are logged and the loop keeps going; one bad chore
// must not stop the sweeper.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Sweep(); err != nil {
				s.log.ErrorContext(ctx, "background sweep failed", slog.Any("error", err))
			}
		case <-ctx.Done():
			s.Close()
			return
		}
	}
}

// Sweeper is a cache or store with periodic eviction work.
type Sweeper interface {
	Sweep() int
}

// SweeperFunc adapts a plain eviction function to the Sweeper interface.
type SweeperFunc func() int

func (f SweeperFunc) Sweep() int { return f() }

// AddSweeper registers target's eviction pass as a rescheduled task, so
// every sweep interval drives one Sweep on it.
func (s *Store) AddSweeper(target Sweeper) bool {
	return s.Add(func(context.Context) error {
		target.Sweep()
		return nil
	}, WithReschedule())
}

// Len returns the number of tracked tasks, completed or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Close stops accepting tasks and cancels the lifecycle context handed to
// running ones. Already-started tasks are left to wind down on their own.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.queue = nil
	s.mu.Unlock()
	s.cancel()
}

func (s *Store) requeue(c *capsule) {
	s.mu.Lock()
	if !s.closed {
		s.queue = append(s.queue, c)
	}
	s.mu.Unlock()
}

func (s *Store) taskOptions(c *capsule) []TaskOption {
	opts := []TaskOption{WithReschedule()}
	if c.onComplete != nil {
		opts = append(opts, WithOnComplete(c.onComplete))
	}
	return opts
}

func toError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}
