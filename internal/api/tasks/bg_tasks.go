package tasks

import (
	"context"
	"log/slog"
	"sync"
)

type Task = func()

// BackgroundTasks runs queued tasks on a fixed number of workers.
type BackgroundTasks struct {
	log        *slog.Logger
	tasks      chan Task
	maxWorkers int
	wg         sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func New(log *slog.Logger, maxWorkers int, maxTasksQueueSize int) *BackgroundTasks {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &BackgroundTasks{
		log:        log,
		maxWorkers: maxWorkers,
		tasks:      make(chan Task, maxTasksQueueSize),
	}
}

func (t *BackgroundTasks) Run() {
	t.wg.Add(t.maxWorkers)
	for i := 0; i < t.maxWorkers; i++ {
		go func(worker int) {
			defer t.wg.Done()
			log := t.log.With("worker", worker)
			for task := range t.tasks {
				t.execute(log, task)
			}
		}(i)
	}
}

// execute keeps a panicking task from taking its worker down.
func (t *BackgroundTasks) execute(log *slog.Logger, task Task) {
	defer func() {
		if err := recover(); err != nil {
			log.Error("task panicked", "err", err)
		}
	}()
	task()
}

// Add queues a task. Tasks added after Shutdown are dropped.
func (t *BackgroundTasks) Add(task Task) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		t.log.Warn("task dropped, background tasks are shut down")
		return
	}
	t.tasks <- task
}

func (t *BackgroundTasks) IsEmpty() bool {
	return len(t.tasks) == 0
}

// Shutdown stops accepting tasks and waits for queued ones to finish.
func (t *BackgroundTasks) Shutdown(ctx context.Context) error {
	const op = "tasks.BackgroundTasks.Shutdown"
	log := t.log.With("op", op)
	log.Info("shutting down background tasks")

	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.tasks)
	}
	t.mu.Unlock()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		log.Warn("graceful shutdown timed out.. forcing exit", "timeout", ctx.Err())
		return ctx.Err()
	case <-done:
		log.Info("background tasks successfully stopped")
		return nil
	}
}
