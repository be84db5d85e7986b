package osal

import (
	"sync"
	"testing"
	"time"

	"github.com/benhaub/abstractionlayer/pkg/alerr"
)

func freshService() *Service {
	return &Service{
		startTime:   time.Now(),
		threadsByID: make(map[Id]*thread),
		threadsByNm: make(map[[16]byte]*thread),
		semaphores:  newSemaphoreTable(),
		timers:      newTimerTable(),
		queues:      newQueueTable(),
	}
}

// TestThreadIdInStart is scenario S1: a thread body calling
// CurrentThreadId immediately must see the id handed back by
// CreateThread, repeated to shake out any ordering hazard.
func TestThreadIdInStart(t *testing.T) {
	s := freshService()
	for i := 0; i < 64; i++ {
		var gotID Id
		var wg sync.WaitGroup
		wg.Add(1)

		id, err := s.CreateThread(PriorityNormal, "worker", nil, 0, func(threadID Id, arg any) {
			defer wg.Done()
			gotID, _ = s.CurrentThreadId(threadID)
		})
		if err != nil {
			t.Fatalf("CreateThread: %v", err)
		}
		wg.Wait()
		if gotID != id {
			t.Fatalf("iteration %d: thread saw id %d, want %d", i, gotID, id)
		}
		if err := s.JoinThread("worker"); err != nil {
			t.Fatalf("JoinThread: %v", err)
		}
		if err := s.DeleteThread("worker"); err != nil {
			t.Fatalf("DeleteThread: %v", err)
		}
	}
}

// TestThreadCountInvariant covers invariant 2: thread_count tracks
// |threads| exactly as threads are created and deleted.
func TestThreadCountInvariant(t *testing.T) {
	s := freshService()
	if s.threadCount() != 0 {
		t.Fatalf("expected 0 threads initially, got %d", s.threadCount())
	}

	var wg sync.WaitGroup
	wg.Add(1)
	_, err := s.CreateThread(PriorityNormal, "t1", nil, 0, func(Id, any) { wg.Wait() })
	if err != nil {
		t.Fatalf("CreateThread: %v", err)
	}
	if s.threadCount() != 1 {
		t.Fatalf("expected 1 thread, got %d", s.threadCount())
	}
	wg.Done()
	if err := s.JoinThread("t1"); err != nil {
		t.Fatalf("JoinThread: %v", err)
	}
	if err := s.DeleteThread("t1"); err != nil {
		t.Fatalf("DeleteThread: %v", err)
	}
	if s.threadCount() != 0 {
		t.Fatalf("expected 0 threads after delete, got %d", s.threadCount())
	}
}

func TestCreateThreadLimitReached(t *testing.T) {
	s := freshService()
	s.mu.Lock()
	s.nextID = MaxThreads
	for i := 0; i < MaxThreads; i++ {
		key := nameBytes("filler")
		key[15] = byte(i)
		key[14] = byte(i >> 8)
		s.threadsByNm[key] = &thread{id: Id(i + 1)}
		s.threadsByID[Id(i+1)] = &thread{id: Id(i + 1)}
	}
	s.mu.Unlock()

	_, err := s.CreateThread(PriorityNormal, "overflow", nil, 0, func(Id, any) {})
	if err == nil || err.Code != alerr.LimitReached {
		t.Fatalf("expected LimitReached, got %v", err)
	}
}

func TestJoinUnknownThread(t *testing.T) {
	s := freshService()
	err := s.JoinThread("nobody")
	if err == nil || err.Code != alerr.NoData {
		t.Fatalf("expected NoData, got %v", err)
	}
}

// TestSemaphoreBounds covers invariant 6: counts stay within [0, max]
// and Wait only succeeds when it actually decremented.
func TestSemaphoreBounds(t *testing.T) {
	s := freshService()
	if err := s.CreateSemaphore("sem", 2, 0); err != nil {
		t.Fatalf("CreateSemaphore: %v", err)
	}

	if err := s.WaitSemaphore("sem", 10*time.Millisecond); err == nil || err.Code != alerr.Timeout {
		t.Fatalf("expected Timeout waiting on empty semaphore, got %v", err)
	}

	if err := s.IncrementSemaphore("sem"); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if err := s.IncrementSemaphore("sem"); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	// Already at max (2); another increment must not exceed it.
	if err := s.IncrementSemaphore("sem"); err != nil {
		t.Fatalf("Increment: %v", err)
	}

	if err := s.WaitSemaphore("sem", time.Second); err != nil {
		t.Fatalf("Wait after increment: %v", err)
	}
	if err := s.WaitSemaphore("sem", time.Second); err != nil {
		t.Fatalf("Wait after increment: %v", err)
	}
	// Count should now be back to 0; a third wait must time out, not
	// succeed spuriously (clamped at max, never overshot above it).
	if err := s.WaitSemaphore("sem", 10*time.Millisecond); err == nil || err.Code != alerr.Timeout {
		t.Fatalf("expected Timeout after draining semaphore, got %v", err)
	}
}

func TestSemaphoreDecrementNeverBlocks(t *testing.T) {
	s := freshService()
	if err := s.CreateSemaphore("sem", 1, 0); err != nil {
		t.Fatalf("CreateSemaphore: %v", err)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.DecrementSemaphore("sem")
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("DecrementSemaphore blocked")
	}
}

// TestBlockUnblockRace covers invariant 7: an Unblock that races ahead
// of Block sets the guard so the next Block returns LimitReached
// immediately, and the caller's retry then blocks normally.
func TestBlockUnblockRace(t *testing.T) {
	s := freshService()
	release := make(chan struct{})

	id, err := s.CreateThread(PriorityNormal, "blocker", nil, 0, func(Id, any) {
		<-release
	})
	if err != nil {
		t.Fatalf("CreateThread: %v", err)
	}
	defer close(release)

	// Unblock before Block: the next Block must return LimitReached
	// immediately rather than parking.
	if err := s.Unblock(id); err != nil {
		t.Fatalf("Unblock: %v", err)
	}

	blockErr := s.Block(id)
	if blockErr == nil || blockErr.Code != alerr.LimitReached {
		t.Fatalf("expected LimitReached on raced block, got %v", blockErr)
	}

	// Retry: now that the guard has been consumed, Block must park
	// until a subsequent Unblock wakes it.
	unblocked := make(chan struct{})
	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = s.Unblock(id)
	}()
	go func() {
		_ = s.Block(id)
		close(unblocked)
	}()

	select {
	case <-unblocked:
	case <-time.After(time.Second):
		t.Fatal("Block did not return after Unblock")
	}
}

// TestRunningAverageOfIdenticalValues covers invariant 9: a
// running_average of k identical values equals that value, applied
// here to the idle percent Status reports from repeated idle-vs-busy
// samples.
func TestRunningAverageOfIdenticalValues(t *testing.T) {
	s := freshService()

	for i := 0; i < 10; i++ {
		s.recordIdleSample(true)
	}
	if got := s.idlePercent(); got != 100 {
		t.Fatalf("expected idle percent 100 after all-idle samples, got %v", got)
	}

	s2 := freshService()
	for i := 0; i < 10; i++ {
		s2.recordIdleSample(false)
	}
	if got := s2.idlePercent(); got != 0 {
		t.Fatalf("expected idle percent 0 after all-busy samples, got %v", got)
	}
}

// TestStatusIdlePercentFromBlockUnblock covers the Block/Unblock
// wiring for invariant 9: a thread that blocks and is then unblocked
// contributes idle and busy samples to Status's IdlePercent.
func TestStatusIdlePercentFromBlockUnblock(t *testing.T) {
	s := freshService()
	release := make(chan struct{})
	blocked := make(chan struct{})

	id, err := s.CreateThread(PriorityNormal, "waiter", nil, 0, func(id Id, arg any) {
		close(blocked)
		_ = s.Block(id)
		<-release
	})
	if err != nil {
		t.Fatalf("CreateThread: %v", err)
	}
	defer close(release)

	<-blocked
	time.Sleep(10 * time.Millisecond)
	if err := s.Unblock(id); err != nil {
		t.Fatalf("Unblock: %v", err)
	}

	status := s.Status(false)
	if status.IdlePercent < 0 || status.IdlePercent > 100 {
		t.Fatalf("expected IdlePercent in [0, 100], got %v", status.IdlePercent)
	}
}

func TestBlockUnknownThread(t *testing.T) {
	s := freshService()
	if err := s.Block(999); err == nil || err.Code != alerr.NoData {
		t.Fatalf("expected NoData, got %v", err)
	}
}

func TestTimerAutoDelete(t *testing.T) {
	s := freshService()
	fired := make(chan struct{})
	id, err := s.CreateTimer(0, false, func() { close(fired) })
	if err != nil {
		t.Fatalf("CreateTimer: %v", err)
	}
	if err := s.StartTimer(id, 20*time.Millisecond); err != nil {
		t.Fatalf("StartTimer: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("one-shot timer did not fire")
	}

	// Give the callback's self-delete a moment to run, then confirm
	// the timer id is no longer valid (S5).
	time.Sleep(20 * time.Millisecond)
	if err := s.StopTimer(id); err == nil || err.Code != alerr.NoData {
		t.Fatalf("expected NoData for self-deleted timer, got %v", err)
	}
}

func TestQueueSendReceiveOrderAndToFront(t *testing.T) {
	s := freshService()
	if err := s.CreateQueue("q", 8, 2); err != nil {
		t.Fatalf("CreateQueue: %v", err)
	}
	if err := s.Send("q", "a", time.Second, false, false); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := s.Send("q", "b", time.Second, true, false); err != nil {
		t.Fatalf("Send toFront: %v", err)
	}

	got, err := s.Receive("q", time.Second)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if got != "b" {
		t.Fatalf("expected toFront item 'b' first, got %v", got)
	}

	got, err = s.Receive("q", time.Second)
	if err != nil || got != "a" {
		t.Fatalf("expected 'a' second, got %v, %v", got, err)
	}
}

func TestQueueSendTimeoutWhenFull(t *testing.T) {
	s := freshService()
	if err := s.CreateQueue("q", 8, 1); err != nil {
		t.Fatalf("CreateQueue: %v", err)
	}
	if err := s.Send("q", 1, time.Second, false, false); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := s.Send("q", 2, 20*time.Millisecond, false, false); err == nil || err.Code != alerr.Timeout {
		t.Fatalf("expected Timeout on full queue, got %v", err)
	}
}

func TestInterruptsNotAvailableOnHosted(t *testing.T) {
	s := freshService()
	if err := s.DisableAllInterrupts(); err == nil || err.Code != alerr.NotAvailable {
		t.Fatalf("expected NotAvailable, got %v", err)
	}
	if err := s.EnableAllInterrupts(); err == nil || err.Code != alerr.NotAvailable {
		t.Fatalf("expected NotAvailable, got %v", err)
	}
}

func TestStatusReflectsCounts(t *testing.T) {
	s := freshService()
	_ = s.CreateSemaphore("sem", 1, 0)
	_ = s.CreateQueue("q", 1, 1)
	st := s.Status(true)
	if st.SemaphoreCount != 1 || st.QueueCount != 1 {
		t.Fatalf("unexpected status: %+v", st)
	}
}
