package netsvc

import (
	"sync"

	"github.com/Zombieliu/coinpusher/internal/protocol"
)

// InboundQueue is the unbounded MPSC the spec calls for (§5): any number
// of connection goroutines push onto it, and the single tick goroutine
// drains it non-blockingly once per tick. It never rejects a Push; callers
// (operators) are responsible for monitoring its size if producers
// consistently outrun the tick rate.
type InboundQueue struct {
	mu    sync.Mutex
	items []protocol.FromNode
}

// NewInboundQueue returns an empty queue.
func NewInboundQueue() *InboundQueue {
	return &InboundQueue{}
}

// Push enqueues msg. Always succeeds; the backing slice grows as needed.
func (q *InboundQueue) Push(msg protocol.FromNode) {
	q.mu.Lock()
	q.items = append(q.items, msg)
	q.mu.Unlock()
}

// DrainNonBlocking removes and returns every message currently queued, in
// arrival order. It never waits for new messages to arrive.
func (q *InboundQueue) DrainNonBlocking() []protocol.FromNode {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}
	drained := q.items
	q.items = nil
	return drained
}
