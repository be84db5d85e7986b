package osal

import "github.com/benhaub/abstractionlayer/pkg/alerr"

// Completion is the single-shot result cell at the heart of the
// serialise-and-wait pattern: a caller builds one, submits a closure
// that stores into it and calls Signal, then loops Wait on its own
// blocking thread Id until the closure has run.
//
// It is deliberately not reusable: a new Completion is built per call.
type Completion[T any] struct {
	owner  *Service
	waiter Id
	done   bool
	value  T
	err    *alerr.Error
}

// NewCompletion creates a Completion that will unblock the thread
// identified by waiter when Signal is called.
func NewCompletion[T any](owner *Service, waiter Id) *Completion[T] {
	return &Completion[T]{owner: owner, waiter: waiter}
}

// Signal stores the result and wakes the waiting thread. It runs on
// the event queue's owner goroutine, never on the waiter's.
func (c *Completion[T]) Signal(value T, err *alerr.Error) {
	c.value = value
	c.err = err
	c.done = true
	_ = c.owner.Unblock(c.waiter)
}

// Wait blocks the calling thread until Signal has run, retrying on
// the LimitReached race per the Block/Unblock contract, then returns
// the stored result. done/value/err are written under Signal before
// Unblock is called and read here only after Block has returned (or
// raced and returned LimitReached), so the thread record's own mutex
// inside Block/Unblock is what makes these reads safe without a
// separate lock.
func (c *Completion[T]) Wait() (T, *alerr.Error) {
	for !c.done {
		err := c.owner.Block(c.waiter)
		if err != nil && err.Code != alerr.LimitReached {
			var zero T
			return zero, err
		}
	}
	return c.value, c.err
}
