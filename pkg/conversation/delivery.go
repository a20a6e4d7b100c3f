package conversation

import (
	"container/list"
	"sync"
	"time"
)

const (
	defaultDeliveryTTL     = 10 * time.Minute
	defaultDeliveryMaxSize = 1024
)

type pendingEntry struct {
	sentAt  time.Time
	element *list.Element
}

// deliveryTracker remembers local ids of enqueued messages until the
// controller echoes them back. Entries expire after ttl and the oldest entry
// is evicted once maxSize is reached, so an echo that never comes cannot grow
// it without bound. Expiry is lazy; there is no background goroutine.
type deliveryTracker struct {
	mu        sync.Mutex
	pending   map[string]*pendingEntry
	order     *list.List // local ids, oldest at front
	delivered map[string]struct{}
	doneOrder *list.List
	ttl       time.Duration
	maxSize   int
	now       func() time.Time
}

func newDeliveryTracker(ttl time.Duration, maxSize int) *deliveryTracker {
	return &deliveryTracker{
		pending:   make(map[string]*pendingEntry),
		order:     list.New(),
		delivered: make(map[string]struct{}),
		doneOrder: list.New(),
		ttl:       ttl,
		maxSize:   maxSize,
		now:       time.Now,
	}
}

// mark records localID as sent and awaiting confirmation.
func (d *deliveryTracker) mark(localID string) {
	if localID == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.expireLocked()
	if e, ok := d.pending[localID]; ok {
		e.sentAt = d.now()
		d.order.MoveToBack(e.element)
		return
	}
	if len(d.pending) >= d.maxSize {
		d.evictOldestLocked()
	}
	d.pending[localID] = &pendingEntry{sentAt: d.now(), element: d.order.PushBack(localID)}
}

// confirm reports whether localID was pending, moving it to the delivered set.
func (d *deliveryTracker) confirm(localID string) bool {
	if localID == "" {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.expireLocked()
	e, ok := d.pending[localID]
	if !ok {
		return false
	}
	d.order.Remove(e.element)
	delete(d.pending, localID)

	if len(d.delivered) >= d.maxSize {
		if front := d.doneOrder.Front(); front != nil {
			id, _ := front.Value.(string)
			d.doneOrder.Remove(front)
			delete(d.delivered, id)
		}
	}
	d.delivered[localID] = struct{}{}
	d.doneOrder.PushBack(localID)
	return true
}

func (d *deliveryTracker) isDelivered(localID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.delivered[localID]
	return ok
}

func (d *deliveryTracker) pendingLen() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.expireLocked()
	return len(d.pending)
}

// expireLocked drops pending entries older than ttl. Must be called with mu held.
func (d *deliveryTracker) expireLocked() {
	cutoff := d.now().Add(-d.ttl)
	for front := d.order.Front(); front != nil; front = d.order.Front() {
		id, _ := front.Value.(string)
		if d.pending[id].sentAt.After(cutoff) {
			return
		}
		d.order.Remove(front)
		delete(d.pending, id)
	}
}

// evictOldestLocked removes the oldest pending entry. Must be called with mu held.
func (d *deliveryTracker) evictOldestLocked() {
	front := d.order.Front()
	if front == nil {
		return
	}
	id, _ := front.Value.(string)
	d.order.Remove(front)
	delete(d.pending, id)
}
