// Package replay defers work until the event that triggered it has
// been presented. Backfilled joins must appear after the message that
// revealed the user, so handlers enqueue the replay and the client
// drains the queue once it has rendered its own line.
package replay

import "sync"

type Queue struct {
	mu    sync.Mutex
	items []func()
}

func New() *Queue {
	return &Queue{}
}

// Push enqueues fn. Safe to call while Drain is running; the new item
// runs in the same drain pass.
func (q *Queue) Push(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, fn)
}

// Drain runs queued items in FIFO order until the queue is empty.
func (q *Queue) Drain() {
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.mu.Unlock()
			return
		}
		fn := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		fn()
	}
}

// Len reports how many items are queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
