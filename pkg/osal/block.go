package osal

import "github.com/benhaub/abstractionlayer/pkg/alerr"

// Block performs a cooperative self-block for the thread identified
// by id: the calling goroutine parks on the thread's condvar until
// another goroutine calls Unblock(id).
//
// If Unblock(id) was called before this Block, the isBlocked guard is
// already set and Block returns LimitReached immediately instead of
// parking — the caller must retry. This mirrors the platform
// contract verbatim and is the one non-obvious failure mode in the
// whole service: LimitReached here means "try again", not "give up".
func (s *Service) Block(id Id) *alerr.Error {
	t := s.threadByID(id)
	if t == nil {
		return alerr.New(alerr.NoData, "osal: block: unknown thread id %d", id)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.isBlocked {
		t.isBlocked = false
		return alerr.New(alerr.LimitReached, "osal: unblock(%d) raced block(%d); retry", id, id)
	}

	t.isBlocked = true
	t.status = ThreadBlocked
	s.recordIdleSample(true)
	for t.isBlocked {
		t.cond.Wait()
	}
	t.status = ThreadActive
	s.recordIdleSample(false)
	return nil
}

// Unblock wakes the thread identified by id out of Block. If called
// before the thread enters Block, it sets the guard so the next Block
// call returns LimitReached instead of parking.
func (s *Service) Unblock(id Id) *alerr.Error {
	t := s.threadByID(id)
	if t == nil {
		return alerr.New(alerr.NoData, "osal: unblock: unknown thread id %d", id)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.isBlocked {
		t.isBlocked = false
		t.cond.Broadcast()
	} else {
		t.isBlocked = true
	}
	return nil
}
