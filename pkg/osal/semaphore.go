package osal

import (
	"sync"
	"time"

	"github.com/benhaub/abstractionlayer/pkg/alerr"
)

// semaphoreRecord is a named counting semaphore. count is guarded by
// mu; Wait polls rather than parking on a condvar so that timeout is
// exact without relying on spurious-wakeup bookkeeping.
type semaphoreRecord struct {
	mu    sync.Mutex
	max   int
	count int
}

type semaphoreTable struct {
	mu    sync.RWMutex
	byName map[[16]byte]*semaphoreRecord
}

func newSemaphoreTable() *semaphoreTable {
	return &semaphoreTable{byName: make(map[[16]byte]*semaphoreRecord)}
}

// CreateSemaphore registers a counting semaphore with the given
// maximum and initial count under name.
func (s *Service) CreateSemaphore(name string, max, initial int) *alerr.Error {
	if len(name) == 0 || len(name) > 15 {
		return alerr.New(alerr.InvalidParameter, "osal: semaphore name %q exceeds 15 bytes", name)
	}
	if initial < 0 || initial > max {
		return alerr.New(alerr.InvalidParameter, "osal: semaphore initial count %d out of [0,%d]", initial, max)
	}
	key := nameBytes(name)
	t := s.semaphores

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.byName[key]; exists {
		return alerr.New(alerr.InvalidParameter, "osal: semaphore %q already exists", name)
	}
	t.byName[key] = &semaphoreRecord{max: max, count: initial}
	return nil
}

func (t *semaphoreTable) lookup(name string) (*semaphoreRecord, *alerr.Error) {
	key := nameBytes(name)
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.byName[key]
	if !ok {
		return nil, alerr.New(alerr.NoData, "osal: unknown semaphore %q", name)
	}
	return rec, nil
}

// WaitSemaphore decrements name's count, blocking up to timeout if it
// is currently zero. Underlying contention is polled at 1ms intervals,
// mirroring a platform EAGAIN retry loop.
func (s *Service) WaitSemaphore(name string, timeout time.Duration) *alerr.Error {
	rec, err := s.semaphores.lookup(name)
	if err != nil {
		return err
	}
	deadline := time.Now().Add(timeout)
	for {
		rec.mu.Lock()
		if rec.count > 0 {
			rec.count--
			rec.mu.Unlock()
			return nil
		}
		rec.mu.Unlock()

		if time.Now().After(deadline) {
			return alerr.New(alerr.Timeout, "osal: semaphore %q wait timed out", name)
		}
		time.Sleep(time.Millisecond)
	}
}

// IncrementSemaphore raises name's count by one, capped at its max.
func (s *Service) IncrementSemaphore(name string) *alerr.Error {
	rec, err := s.semaphores.lookup(name)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.count < rec.max {
		rec.count++
	}
	return nil
}

// DecrementSemaphore is a non-blocking tryWait: it decrements if the
// count is positive and otherwise returns immediately without error.
func (s *Service) DecrementSemaphore(name string) *alerr.Error {
	rec, err := s.semaphores.lookup(name)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.count > 0 {
		rec.count--
	}
	return nil
}

// DeleteSemaphore removes name's record.
func (s *Service) DeleteSemaphore(name string) *alerr.Error {
	key := nameBytes(name)
	t := s.semaphores
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byName[key]; !ok {
		return alerr.New(alerr.NoData, "osal: unknown semaphore %q", name)
	}
	delete(t.byName, key)
	return nil
}
