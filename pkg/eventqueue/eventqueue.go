// Package eventqueue implements a bounded, per-owner-thread FIFO of
// deferred work, with the reentrancy optimisation that submissions
// made from the owner thread run inline instead of being queued.
package eventqueue

import (
	"container/list"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/benhaub/abstractionlayer/internal/logger"
	"github.com/benhaub/abstractionlayer/pkg/alerr"
	"github.com/benhaub/abstractionlayer/pkg/osal"
)

// Capacity is the fixed maximum number of queued (not inline) events
// an EventQueue holds at once.
const Capacity = 10

// Event is a type-erased unit of deferred work.
type Event func() *alerr.Error

// nameCounter generates unique semaphore names across all EventQueue
// instances in the process, mirroring the EventQueue record's "running
// semaphore counter" field.
var nameCounter atomic.Uint64

// EventQueue is a FIFO of Events owned by a single logical thread. All
// mutation is serialised through a dedicated binary semaphore obtained
// from the process osal.Service rather than a bare Go mutex, so that
// AddEvent's "contention is reported, not waited on" behavior falls out
// of the same zero-timeout semaphore wait the IPC paths use.
type EventQueue struct {
	owner       osal.Id
	os          *osal.Service
	semaphore   string
	items       *list.List
	metrics     Metrics
}

// New creates an EventQueue owned by the given logical thread Id.
// Metrics may be nil, in which case no metrics are recorded.
func New(os *osal.Service, owner osal.Id, metrics Metrics) (*EventQueue, *alerr.Error) {
	name := fmt.Sprintf("eventQSem%d", nameCounter.Add(1))
	if err := os.CreateSemaphore(name, 1, 1); err != nil {
		return nil, err
	}
	return &EventQueue{
		owner:     owner,
		os:        os,
		semaphore: name,
		items:     list.New(),
		metrics:   metrics,
	}, nil
}

// Owner returns the logical thread Id that owns this queue.
func (q *EventQueue) Owner() osal.Id { return q.owner }

// AddEvent submits ev for dispatch. If the calling thread is the
// queue's owner, ev runs inline (synchronously, after releasing the
// mutation semaphore) and AddEvent does not return until it has run.
// Otherwise ev is appended to the back of the FIFO and Success is
// returned without running it. Contention on the mutation semaphore
// (another submitter mid-mutation) returns Timeout, not a block —
// AddEvent never waits.
func (q *EventQueue) AddEvent(caller osal.Id, ev Event) *alerr.Error {
	if err := q.os.WaitSemaphore(q.semaphore, 0); err != nil {
		return err
	}

	inline := caller == q.owner
	var queueErr *alerr.Error
	if inline {
		if err := q.os.IncrementSemaphore(q.semaphore); err != nil {
			return err
		}
		start := time.Now()
		queueErr = ev()
		if q.metrics != nil {
			q.metrics.ObserveDispatch(time.Since(start), true)
		}
		logger.Debug("eventqueue: ran event inline", logger.OwnerID(uint32(q.owner)), logger.Inline(true))
		return queueErr
	}

	if q.items.Len() >= Capacity {
		_ = q.os.IncrementSemaphore(q.semaphore)
		return alerr.New(alerr.LimitReached, "eventqueue: queue owned by %d is full", q.owner)
	}
	q.items.PushBack(ev)
	depth := q.items.Len()
	if err := q.os.IncrementSemaphore(q.semaphore); err != nil {
		return err
	}

	if q.metrics != nil {
		q.metrics.SetBacklog(depth)
	}
	logger.Debug("eventqueue: queued event", logger.OwnerID(uint32(q.owner)), logger.QueueDepth(depth), logger.Inline(false))
	return nil
}

// RunNextEvent pops and runs the front event, if any, outside the
// mutation semaphore. NoData means the queue was empty.
func (q *EventQueue) RunNextEvent() *alerr.Error {
	if err := q.os.WaitSemaphore(q.semaphore, 0); err != nil {
		return err
	}

	front := q.items.Front()
	if front == nil {
		_ = q.os.IncrementSemaphore(q.semaphore)
		return alerr.New(alerr.NoData, "eventqueue: queue owned by %d is empty", q.owner)
	}
	q.items.Remove(front)
	depth := q.items.Len()
	if err := q.os.IncrementSemaphore(q.semaphore); err != nil {
		return err
	}
	if q.metrics != nil {
		q.metrics.SetBacklog(depth)
	}

	ev := front.Value.(Event)
	start := time.Now()
	err := ev()
	if q.metrics != nil {
		q.metrics.ObserveDispatch(time.Since(start), false)
	}
	return err
}

// MainLoop repeatedly calls RunNextEvent until stop is closed,
// sleeping briefly between empty polls so an idle owner thread does
// not spin.
func (q *EventQueue) MainLoop(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		err := q.RunNextEvent()
		if err != nil && err.Code == alerr.NoData {
			time.Sleep(time.Millisecond)
			continue
		}
		if err != nil {
			logger.Warn("eventqueue: event returned error", logger.OwnerID(uint32(q.owner)), logger.Err(err))
		}
	}
}

// Depth returns the number of events currently queued (not counting
// one that may be executing inline).
func (q *EventQueue) Depth() int {
	if err := q.os.WaitSemaphore(q.semaphore, time.Second); err != nil {
		return -1
	}
	defer func() { _ = q.os.IncrementSemaphore(q.semaphore) }()
	return q.items.Len()
}
