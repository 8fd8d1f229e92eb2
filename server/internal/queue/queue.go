package queue

import (
	"context"
	"errors"
	"log/slog"
)

// Task is one unit of work for the pool.
type Task interface {
	Id() string
	Run(ctx context.Context)
}

// MessageQueue fans queued tasks out to a bounded set of workers.
// Submission never blocks the caller beyond channel capacity; the
// submitting request returns as soon as the task is enqueued.
type MessageQueue struct {
	concurrency int
	tasks       chan Task
	ctx         context.Context
	cancel      context.CancelFunc
}

func NewMessageQueue(size int) (*MessageQueue, error) {
	if size <= 0 {
		return nil, errors.New("invalid queue size")
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &MessageQueue{
		concurrency: size,
		tasks:       make(chan Task, size*2),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Publish a task for execution
func (m *MessageQueue) Publish(t Task) {
	select {
	case m.tasks <- t:
		slog.Info("published download", slog.String("id", t.Id()))
	case <-m.ctx.Done():
		slog.Warn("queue stopped, dropping download", slog.String("id", t.Id()))
	}
}

// SetupConsumers spawns the worker goroutines
func (m *MessageQueue) SetupConsumers() {
	for i := 0; i < m.concurrency; i++ {
		go m.worker(i)
	}
}

func (m *MessageQueue) worker(workerId int) {
	for {
		select {
		case <-m.ctx.Done():
			return
		case t := <-m.tasks:
			if t == nil {
				continue
			}

			slog.Info("download worker started",
				slog.Int("worker", workerId),
				slog.String("id", t.Id()),
			)

			t.Run(m.ctx)
		}
	}
}

// Stop cancels the workers. The task channel stays open so that a
// late Publish is dropped instead of panicking.
func (m *MessageQueue) Stop() {
	m.cancel()
}
