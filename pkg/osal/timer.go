package osal

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benhaub/abstractionlayer/internal/logger"
	"github.com/benhaub/abstractionlayer/pkg/alerr"
)

// TimerCallback runs in a platform timer context. It must not block
// or call any osal operation that can suspend the calling goroutine.
type TimerCallback func()

type timerRecord struct {
	mu         sync.Mutex
	id         Id
	period     time.Duration
	autoReload bool
	callback   TimerCallback
	timer      *time.Timer
	running    bool
}

type timerTable struct {
	mu     sync.RWMutex
	nextID uint32
	byID   map[Id]*timerRecord
}

func newTimerTable() *timerTable {
	return &timerTable{byID: make(map[Id]*timerRecord)}
}

// CreateTimer registers a new software timer with the given period,
// reload behavior and callback, returning its stable Id. The timer is
// created stopped; Start arms it.
func (s *Service) CreateTimer(period time.Duration, autoReload bool, callback TimerCallback) (Id, *alerr.Error) {
	if callback == nil {
		return 0, alerr.New(alerr.InvalidParameter, "osal: timer callback must not be nil")
	}
	t := s.timers
	t.mu.Lock()
	defer t.mu.Unlock()
	id := Id(atomic.AddUint32(&t.nextID, 1))
	t.byID[id] = &timerRecord{
		id:         id,
		period:     period,
		autoReload: autoReload,
		callback:   callback,
	}
	return id, nil
}

func (t *timerTable) lookup(id Id) (*timerRecord, *alerr.Error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.byID[id]
	if !ok {
		return nil, alerr.New(alerr.NoData, "osal: unknown timer %d", id)
	}
	return rec, nil
}

// StartTimer arms id to fire once after timeout (one-shot semantics
// use timeout directly; auto-reload timers use their configured
// period after the first fire). A one-shot timer deletes its own
// record from inside the fired callback.
func (s *Service) StartTimer(id Id, timeout time.Duration) *alerr.Error {
	rec, err := s.timers.lookup(id)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	if rec.timer != nil {
		rec.timer.Stop()
	}
	rec.running = true
	cb := rec.callback
	autoReload := rec.autoReload
	period := rec.period
	rec.mu.Unlock()

	var fire func()
	fire = func() {
		cb()
		rec.mu.Lock()
		still := rec.running
		rec.mu.Unlock()
		if !still {
			return
		}
		if autoReload {
			rec.mu.Lock()
			rec.timer = time.AfterFunc(period, fire)
			rec.mu.Unlock()
		} else {
			s.timers.mu.Lock()
			delete(s.timers.byID, id)
			s.timers.mu.Unlock()
			logger.Debug("osal: one-shot timer self-deleted", logger.TimerID(uint32(id)))
		}
	}

	rec.mu.Lock()
	rec.timer = time.AfterFunc(timeout, fire)
	rec.mu.Unlock()
	return nil
}

// StopTimer cancels id without deleting its record.
func (s *Service) StopTimer(id Id) *alerr.Error {
	rec, err := s.timers.lookup(id)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.running = false
	if rec.timer != nil {
		rec.timer.Stop()
	}
	return nil
}

func (t *timerTable) count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byID)
}
