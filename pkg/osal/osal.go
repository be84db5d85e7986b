// Package osal implements the process-wide OS capability service:
// threads, counting semaphores, software timers, bounded queues,
// cooperative block/unblock, interrupt masking and time services.
//
// A single instance serves the whole process. It is reached through
// Get, which lazily constructs it on first use so no package-level
// constructor runs before main. All operations are safe for
// concurrent use from any goroutine.
package osal

import (
	"sync"
	"time"

	"github.com/benhaub/abstractionlayer/internal/logger"
	"github.com/benhaub/abstractionlayer/pkg/alerr"
	"github.com/benhaub/abstractionlayer/pkg/altime"
)

// MaxThreads bounds the number of threads the service will track at
// once. CreateThread fails with LimitReached beyond this.
const MaxThreads = 256

// Priority is a logical scheduling priority band. The service maps it
// onto the host platform's native priority range; on platforms with
// no such concept it is retained only for introspection.
type Priority int

const (
	PriorityLowest Priority = iota
	PriorityLow
	PriorityNormal
	PriorityHigh
	PriorityHighest
)

func (p Priority) String() string {
	switch p {
	case PriorityLowest:
		return "Lowest"
	case PriorityLow:
		return "Low"
	case PriorityNormal:
		return "Normal"
	case PriorityHigh:
		return "High"
	case PriorityHighest:
		return "Highest"
	default:
		return "Unknown"
	}
}

// ThreadStatus is the lifecycle tag of a thread record.
type ThreadStatus int

const (
	ThreadUnknown ThreadStatus = iota
	ThreadActive
	ThreadBlocked
	ThreadTerminated
)

func (s ThreadStatus) String() string {
	switch s {
	case ThreadActive:
		return "Active"
	case ThreadBlocked:
		return "Blocked"
	case ThreadTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// Id is the stable logical identifier assigned to a thread or timer
// record. Zero is never assigned; callers use it as a sentinel for
// "none".
type Id uint32

// thread is the internal record for one logical thread. name is
// compared by value, never by pointer, per the naming contract.
type thread struct {
	mu        sync.Mutex
	cond      *sync.Cond
	id        Id
	name      [16]byte
	priority  Priority
	status    ThreadStatus
	ready     chan struct{}
	done      chan struct{}
	isBlocked bool
}

// Service is the OS capability singleton. Obtain it with Get.
type Service struct {
	startTime time.Time

	mu          sync.RWMutex
	threadsByID map[Id]*thread
	threadsByNm map[[16]byte]*thread
	nextID      uint32

	semaphores *semaphoreTable
	timers     *timerTable
	queues     *queueTable

	lastTick     uint64
	rolloverSecs uint64

	idleMu      sync.Mutex
	idleAverage float64
	idleSamples float64
}

var (
	once     sync.Once
	instance *Service
)

// Get returns the process-wide OS capability service, constructing it
// on first call. Construction happens here rather than in an init
// function or package-level var so that no global-constructor
// ordering hazard exists between osal and its callers.
func Get() *Service {
	once.Do(func() {
		instance = &Service{
			startTime:   time.Now(),
			threadsByID: make(map[Id]*thread),
			threadsByNm: make(map[[16]byte]*thread),
			semaphores:  newSemaphoreTable(),
			timers:      newTimerTable(),
			queues:      newQueueTable(),
		}
	})
	return instance
}

// nameBytes copies s into a fixed 16-byte buffer, dropping any bytes
// past the 16th. The create calls (CreateThread, CreateSemaphore,
// CreateQueue) reject names over 15 bytes before using it, so every
// registered key keeps a trailing NUL; lookups by name pass the
// caller's string through it unchecked.
func nameBytes(s string) [16]byte {
	var b [16]byte
	copy(b[:], s)
	return b
}

// CreateThread starts fn in a new goroutine under the given name and
// priority and returns its logical Id. The name must be unique and at
// most 15 bytes. fn receives its own Id as its first argument, so the
// thread body can call CurrentThreadId(id) from its very first
// statement and always get back a record that is already published —
// the entry is inserted into the registry before the goroutine is
// even started, closing the window a scheduler-ordering-only
// approach would leave open.
func (s *Service) CreateThread(priority Priority, name string, arg any, stackSize int, fn func(id Id, arg any)) (Id, *alerr.Error) {
	if len(name) == 0 || len(name) > 15 {
		return 0, alerr.New(alerr.InvalidParameter, "osal: thread name %q exceeds 15 bytes", name)
	}
	key := nameBytes(name)

	s.mu.Lock()
	if _, exists := s.threadsByNm[key]; exists {
		s.mu.Unlock()
		return 0, alerr.New(alerr.InvalidParameter, "osal: thread name %q already in use", name)
	}
	if len(s.threadsByID) >= MaxThreads {
		s.mu.Unlock()
		return 0, alerr.New(alerr.LimitReached, "osal: MaxThreads (%d) reached", MaxThreads)
	}
	s.nextID++
	id := Id(s.nextID)

	t := &thread{
		id:       id,
		name:     key,
		priority: priority,
		status:   ThreadActive,
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
	}
	t.cond = sync.NewCond(&t.mu)
	s.threadsByID[id] = t
	s.threadsByNm[key] = t
	s.mu.Unlock()

	close(t.ready)

	logger.Debug("osal: thread created", logger.ThreadName(name), logger.ThreadID(uint32(id)))

	go func() {
		defer func() {
			s.mu.Lock()
			t.status = ThreadTerminated
			s.mu.Unlock()
			close(t.done)
		}()
		<-t.ready
		applyPlatformPriority(priority)
		fn(id, arg)
	}()

	return id, nil
}

// JoinThread blocks until the named thread's start function returns.
func (s *Service) JoinThread(name string) *alerr.Error {
	key := nameBytes(name)
	s.mu.RLock()
	t, ok := s.threadsByNm[key]
	s.mu.RUnlock()
	if !ok {
		return alerr.New(alerr.NoData, "osal: unknown thread %q", name)
	}
	<-t.done
	return nil
}

// DeleteThread removes a terminated thread's record. It is an error
// to delete a thread that has not yet terminated.
func (s *Service) DeleteThread(name string) *alerr.Error {
	key := nameBytes(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threadsByNm[key]
	if !ok {
		return alerr.New(alerr.NoData, "osal: unknown thread %q", name)
	}
	select {
	case <-t.done:
	default:
		return alerr.New(alerr.PrerequisitesNotMet, "osal: thread %q has not terminated", name)
	}
	delete(s.threadsByNm, key)
	delete(s.threadsByID, t.id)
	return nil
}

// CurrentThreadId returns the logical Id tracked for id, confirming
// the record still exists. Call sites that run inside a goroutine
// started by CreateThread know their own Id from the closure and use
// this only to validate it is still registered.
func (s *Service) CurrentThreadId(id Id) (Id, *alerr.Error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.threadsByID[id]; !ok {
		return 0, alerr.New(alerr.NoData, "osal: id %d not created by this service", id)
	}
	return id, nil
}

// ThreadStatusOf reports the lifecycle status of the named thread.
func (s *Service) ThreadStatusOf(name string) (ThreadStatus, *alerr.Error) {
	key := nameBytes(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.threadsByNm[key]
	if !ok {
		return ThreadUnknown, alerr.New(alerr.NoData, "osal: unknown thread %q", name)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status, nil
}

func (s *Service) threadByID(id Id) *thread {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threadsByID[id]
}

func (s *Service) threadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.threadsByID)
}

// recordIdleSample folds one idle/busy observation (100 for idle, 0
// for busy) into the service-wide idle running average reported by
// Status, per invariant 9: a running_average of k identical samples
// equals that sample.
func (s *Service) recordIdleSample(idle bool) {
	value := 0.0
	if idle {
		value = 100.0
	}

	s.idleMu.Lock()
	defer s.idleMu.Unlock()
	s.idleSamples++
	s.idleAverage = altime.RunningAverage(s.idleAverage, value, s.idleSamples)
}

// idlePercent returns the current idle running average.
func (s *Service) idlePercent() float64 {
	s.idleMu.Lock()
	defer s.idleMu.Unlock()
	return s.idleAverage
}
