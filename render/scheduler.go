/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package render

import (
	"context"
	"time"

	"github.com/sasha-s/go-deadlock"
)

// FrameRate is the default redraw rate of a FrameQueue driven by Run.
const FrameRate = 60

// Scheduler runs fn on the next frame. The returned function cancels fn if
// it has not run yet.
type Scheduler interface {
	Schedule(fn func()) (cancel func())
}

type frameTask struct {
	fn        func()
	cancelled bool
}

// FrameQueue collects callbacks and runs them together on Flush. A display
// loop calls Flush once per refresh; headless callers use Run.
type FrameQueue struct {
	mu      deadlock.Mutex
	pending []*frameTask
}

func NewFrameQueue() *FrameQueue {
	return &FrameQueue{}
}

func (q *FrameQueue) Schedule(fn func()) func() {
	task := &frameTask{fn: fn}

	q.mu.Lock()
	q.pending = append(q.pending, task)
	q.mu.Unlock()

	return func() {
		q.mu.Lock()
		task.cancelled = true
		q.mu.Unlock()
	}
}

// Pending is the number of callbacks waiting for the next frame.
func (q *FrameQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for _, task := range q.pending {
		if !task.cancelled {
			n++
		}
	}
	return n
}

// Flush runs every callback scheduled before the call. Callbacks scheduled
// while flushing wait for the next frame.
func (q *FrameQueue) Flush() {
	q.mu.Lock()
	tasks := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, task := range tasks {
		q.mu.Lock()
		cancelled := task.cancelled
		q.mu.Unlock()

		if !cancelled {
			task.fn()
		}
	}
}

// Run flushes the queue every interval until ctx is cancelled.
func (q *FrameQueue) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second / FrameRate
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.Flush()
		}
	}
}
