package eventqueue

import (
	"sync"
	"testing"
	"time"

	"github.com/benhaub/abstractionlayer/pkg/alerr"
	"github.com/benhaub/abstractionlayer/pkg/osal"
)

// TestInlineCompletesBeforeReturn covers invariant 5's first half: an
// event submitted from the owner thread completes before AddEvent
// returns.
func TestInlineCompletesBeforeReturn(t *testing.T) {
	os := osal.Get()
	owner := osal.Id(1)

	q, err := New(os, owner, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ran := false
	addErr := q.AddEvent(owner, func() *alerr.Error {
		ran = true
		return nil
	})
	if addErr != nil {
		t.Fatalf("AddEvent: %v", addErr)
	}
	if !ran {
		t.Fatal("inline event had not run by the time AddEvent returned")
	}
}

// TestOwnerOrdering is scenario S2: the owner submits E1 which appends
// 'a', then drains. A concurrent non-owner submission of E2 appending
// 'b' must not appear before 'a' in the drained order, since E1 ran
// inline strictly before E2 could even be queued.
func TestOwnerOrdering(t *testing.T) {
	os := osal.Get()
	owner := osal.Id(2)

	q, err := New(os, owner, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var out []byte
	var mu sync.Mutex

	if err := q.AddEvent(owner, func() *alerr.Error {
		mu.Lock()
		out = append(out, 'a')
		mu.Unlock()
		return nil
	}); err != nil {
		t.Fatalf("AddEvent owner: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = q.AddEvent(osal.Id(99), func() *alerr.Error {
			mu.Lock()
			out = append(out, 'b')
			mu.Unlock()
			return nil
		})
	}()
	wg.Wait()

	for {
		drainErr := q.RunNextEvent()
		if drainErr != nil {
			break
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(out) == 0 || out[0] != 'a' {
		t.Fatalf("expected 'a' first, got %v", out)
	}
}

func TestAddEventQueuedWhenNotOwner(t *testing.T) {
	os := osal.Get()
	owner := osal.Id(3)

	q, err := New(os, owner, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ran := make(chan struct{})
	if err := q.AddEvent(osal.Id(4), func() *alerr.Error {
		close(ran)
		return nil
	}); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}

	select {
	case <-ran:
		t.Fatal("non-owner event ran before RunNextEvent dispatched it")
	default:
	}

	if err := q.RunNextEvent(); err != nil {
		t.Fatalf("RunNextEvent: %v", err)
	}
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("event never ran after RunNextEvent")
	}
}

func TestRunNextEventEmptyIsNoData(t *testing.T) {
	os := osal.Get()
	q, err := New(os, osal.Id(5), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := q.RunNextEvent(); err == nil || err.Code != alerr.NoData {
		t.Fatalf("expected NoData on empty queue, got %v", err)
	}
}

func TestAddEventLimitReachedWhenFull(t *testing.T) {
	os := osal.Get()
	q, err := New(os, osal.Id(6), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < Capacity; i++ {
		if err := q.AddEvent(osal.Id(7), func() *alerr.Error { return nil }); err != nil {
			t.Fatalf("AddEvent %d: %v", i, err)
		}
	}
	if err := q.AddEvent(osal.Id(7), func() *alerr.Error { return nil }); err == nil || err.Code != alerr.LimitReached {
		t.Fatalf("expected LimitReached on full queue, got %v", err)
	}
}
