package osal

import (
	"container/list"
	"sync"
	"time"

	"github.com/benhaub/abstractionlayer/pkg/alerr"
)

// queueRecord is a fixed-capacity FIFO of opaque items. A plain Go
// channel cannot express toFront injection, so the queue is backed by
// a container/list guarded by a mutex and condvar instead.
type queueRecord struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	capacity int
	items    *list.List
}

type queueTable struct {
	mu     sync.RWMutex
	byName map[[16]byte]*queueRecord
}

func newQueueTable() *queueTable {
	return &queueTable{byName: make(map[[16]byte]*queueRecord)}
}

// CreateQueue registers a bounded FIFO of the given item capacity
// under name. itemSize is accepted for parity with the platform
// contract but is not enforced: Go items are typed values, not raw
// byte buffers.
func (s *Service) CreateQueue(name string, itemSize, capacity int) *alerr.Error {
	if len(name) == 0 || len(name) > 15 {
		return alerr.New(alerr.InvalidParameter, "osal: queue name %q exceeds 15 bytes", name)
	}
	if capacity <= 0 {
		return alerr.New(alerr.InvalidParameter, "osal: queue capacity must be positive")
	}
	_ = itemSize
	key := nameBytes(name)
	t := s.queues

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.byName[key]; exists {
		return alerr.New(alerr.InvalidParameter, "osal: queue %q already exists", name)
	}
	rec := &queueRecord{capacity: capacity, items: list.New()}
	rec.notEmpty = sync.NewCond(&rec.mu)
	rec.notFull = sync.NewCond(&rec.mu)
	t.byName[key] = rec
	return nil
}

func (t *queueTable) lookup(name string) (*queueRecord, *alerr.Error) {
	key := nameBytes(name)
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.byName[key]
	if !ok {
		return nil, alerr.New(alerr.NoData, "osal: unknown queue %q", name)
	}
	return rec, nil
}

// Send places item on name's queue, at the back unless toFront is
// set. It blocks up to timeout if the queue is full. fromIsr is
// accepted for parity with platforms that dispatch ISR-context sends
// differently; this implementation treats it identically since there
// is no interrupt context on a hosted build.
func (s *Service) Send(name string, item any, timeout time.Duration, toFront, fromIsr bool) *alerr.Error {
	_ = fromIsr
	rec, err := s.queues.lookup(name)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	deadline := time.Now().Add(timeout)
	for rec.items.Len() >= rec.capacity {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return alerr.New(alerr.Timeout, "osal: queue %q full", name)
		}
		waitWithTimeout(rec, rec.notFull, remaining)
	}

	if toFront {
		rec.items.PushFront(item)
	} else {
		rec.items.PushBack(item)
	}
	rec.notEmpty.Signal()
	return nil
}

// Receive removes and returns the front item of name's queue, blocking
// up to timeout if the queue is empty.
func (s *Service) Receive(name string, timeout time.Duration) (any, *alerr.Error) {
	rec, err := s.queues.lookup(name)
	if err != nil {
		return nil, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	deadline := time.Now().Add(timeout)
	for rec.items.Len() == 0 {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, alerr.New(alerr.Timeout, "osal: queue %q empty", name)
		}
		waitWithTimeout(rec, rec.notEmpty, remaining)
	}

	front := rec.items.Front()
	rec.items.Remove(front)
	rec.notFull.Signal()
	return front.Value, nil
}

// Peek returns the front item of name's queue without removing it.
// NoData if the queue is currently empty.
func (s *Service) Peek(name string) (any, *alerr.Error) {
	rec, err := s.queues.lookup(name)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	front := rec.items.Front()
	if front == nil {
		return nil, alerr.New(alerr.NoData, "osal: queue %q empty", name)
	}
	return front.Value, nil
}

// waitWithTimeout parks the calling goroutine on cond, which releases
// rec.mu for the duration of the wait and reacquires it before
// returning, per sync.Cond's contract. sync.Cond has no native timed
// wait, so a timer goroutine takes rec.mu and broadcasts after
// timeout to force a spurious wakeup; the caller's loop re-checks its
// predicate regardless of why it woke.
func waitWithTimeout(rec *queueRecord, cond *sync.Cond, timeout time.Duration) {
	timer := time.AfterFunc(timeout, func() {
		rec.mu.Lock()
		cond.Broadcast()
		rec.mu.Unlock()
	})
	cond.Wait()
	timer.Stop()
}

func (t *queueTable) count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byName)
}
