package conversation

import (
	"context"
	"sync"

	"github.com/C4AI/blab-chatbot-bot-client/pkg/message"
)

// Queue is an unbounded FIFO of outgoing messages. Push never blocks; Pop
// blocks until a message is available, the context ends, or the queue is
// closed. It supports any number of producers and a single consumer.
type Queue struct {
	mu     sync.Mutex
	items  []message.OutgoingMessage
	closed bool

	notify chan struct{} // capacity 1, signals "items may be available"
	done   chan struct{}
}

// NewQueue creates an empty, open queue.
func NewQueue() *Queue {
	return &Queue{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Push appends msg. It reports false, dropping msg, if the queue is closed.
func (q *Queue) Push(msg message.OutgoingMessage) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, msg)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// Pop removes and returns the oldest message, blocking while the queue is
// empty. It returns ErrQueueClosed once the queue is closed, even if messages
// remain, and ctx.Err() once ctx is done, without consuming a message.
func (q *Queue) Pop(ctx context.Context) (message.OutgoingMessage, error) {
	for {
		if err := ctx.Err(); err != nil {
			return message.OutgoingMessage{}, err
		}
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return message.OutgoingMessage{}, ErrQueueClosed
		}
		if len(q.items) > 0 {
			msg := q.items[0]
			q.items[0] = message.OutgoingMessage{}
			q.items = q.items[1:]
			q.mu.Unlock()
			return msg, nil
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
		case <-q.done:
		case <-ctx.Done():
			return message.OutgoingMessage{}, ctx.Err()
		}
	}
}

// Len returns the number of queued messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops the queue and returns the messages that were never popped.
// Subsequent calls return nil.
func (q *Queue) Close() []message.OutgoingMessage {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.done)

	left := q.items
	q.items = nil
	return left
}
