package hotkeys

import "sync"

// event is one queued trigger line, or the stop sentinel.
type event struct {
	line string
	stop bool
}

// queue is an unbounded FIFO between the listener and the dispatcher.
type queue struct {
	mu    sync.Mutex
	cond  *sync.Cond
	items []event
}

func newQueue() *queue {
	q := &queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *queue) push(e event) {
	q.mu.Lock()
	q.items = append(q.items, e)
	q.cond.Signal()
	q.mu.Unlock()
}

// pop blocks until an event is available.
func (q *queue) pop() event {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 {
		q.cond.Wait()
	}
	e := q.items[0]
	q.items[0] = event{}
	q.items = q.items[1:]
	return e
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
