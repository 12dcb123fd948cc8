package router

import "sync"

// queuedMessage preserves everything needed to replay a failed publish
// exactly as it was first attempted: original payload bytes and the
// publish directives that went with them.
type queuedMessage struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// retryQueue is an unbounded in-process FIFO of publishes that failed
// while the broker was unreachable. Messages replay in original order;
// a replay that fails goes back to the head so order is never lost.
type retryQueue struct {
	mu    sync.Mutex
	items []queuedMessage
}

func (q *retryQueue) push(m queuedMessage) {
	q.mu.Lock()
	q.items = append(q.items, m)
	q.mu.Unlock()
}

func (q *retryQueue) pushFront(m queuedMessage) {
	q.mu.Lock()
	q.items = append([]queuedMessage{m}, q.items...)
	q.mu.Unlock()
}

func (q *retryQueue) pop() (queuedMessage, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return queuedMessage{}, false
	}
	m := q.items[0]
	q.items = q.items[1:]
	return m, true
}

func (q *retryQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
