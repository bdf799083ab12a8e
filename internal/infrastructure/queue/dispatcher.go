package queue

import (
	"context"
	"sync"
	"time"
)

// Dispatcher carries task ids from the API to the workers
type Dispatcher interface {
	Push(ctx context.Context, taskID string) error
	// Pop waits up to timeout for a task id; an empty id means nothing arrived
	Pop(ctx context.Context, timeout time.Duration) (string, error)
}

// MemoryDispatcher is an in-process FIFO used in sync mode and tests
type MemoryDispatcher struct {
	mu     sync.Mutex
	items  []string
	signal chan struct{}
}

// NewMemoryDispatcher creates an empty in-process queue
func NewMemoryDispatcher() *MemoryDispatcher {
	return &MemoryDispatcher{signal: make(chan struct{}, 1)}
}

func (d *MemoryDispatcher) Push(ctx context.Context, taskID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	d.items = append(d.items, taskID)
	d.mu.Unlock()
	d.notify()
	return nil
}

func (d *MemoryDispatcher) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		d.mu.Lock()
		if len(d.items) > 0 {
			id := d.items[0]
			d.items = d.items[1:]
			more := len(d.items) > 0
			d.mu.Unlock()
			if more {
				d.notify()
			}
			return id, nil
		}
		d.mu.Unlock()

		select {
		case <-d.signal:
		case <-timer.C:
			return "", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// Len returns the number of queued ids
func (d *MemoryDispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items)
}

func (d *MemoryDispatcher) notify() {
	select {
	case d.signal <- struct{}{}:
	default:
	}
}
