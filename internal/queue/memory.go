package queue

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned when publishing to a closed MemoryQueue
var ErrClosed = errors.New("queue closed")

// MemoryQueue fans messages out to in-process subscribers. Messages published
// with no subscriber are counted and dropped; a subscriber whose buffer is
// full misses the message.
type MemoryQueue struct {
	mu          sync.RWMutex
	subscribers map[string]map[int]chan []byte
	nextID      int
	published   map[string]int
	closed      bool
}

// newMemoryQueue creates a new in-memory queue instance
func newMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		subscribers: make(map[string]map[int]chan []byte),
		published:   make(map[string]int),
	}
}

// Publish copies data to every subscriber of subject
func (q *MemoryQueue) Publish(ctx context.Context, subject string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}

	q.published[subject]++
	for _, ch := range q.subscribers[subject] {
		dataCopy := make([]byte, len(data))
		copy(dataCopy, data)
		select {
		case ch <- dataCopy:
		default:
		}
	}
	return nil
}

// Subscribe registers handler until ctx is cancelled or the queue closes
func (q *MemoryQueue) Subscribe(ctx context.Context, subject string, handler MessageHandler) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	if q.subscribers[subject] == nil {
		q.subscribers[subject] = make(map[int]chan []byte)
	}
	id := q.nextID
	q.nextID++
	ch := make(chan []byte, 1000)
	q.subscribers[subject][id] = ch
	q.mu.Unlock()

	go func() {
		defer q.remove(subject, id)
		for {
			select {
			case <-ctx.Done():
				return
			case data, ok := <-ch:
				if !ok {
					return
				}
				_ = handler(data)
			}
		}
	}()
	return nil
}

func (q *MemoryQueue) remove(subject string, id int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if ch, ok := q.subscribers[subject][id]; ok {
		delete(q.subscribers[subject], id)
		close(ch)
	}
}

// Close ends every subscription
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	for subject, subs := range q.subscribers {
		for id, ch := range subs {
			close(ch)
			delete(subs, id)
		}
		delete(q.subscribers, subject)
	}
	return nil
}

// PublishedCount returns how many messages were published to subject
func (q *MemoryQueue) PublishedCount(subject string) int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.published[subject]
}
