package osal

import (
	"runtime"
	"time"

	"github.com/benhaub/abstractionlayer/pkg/altime"
)

// OperatingSystemStatus is a point-in-time snapshot of the service's
// introspectable state.
type OperatingSystemStatus struct {
	ThreadCount   int
	SemaphoreCount int
	QueueCount    int
	TimerCount    int
	IdlePercent   float64
	UpTime        altime.Milliseconds
	MemoryRegions []MemoryRegion
	SystemTime    altime.UnixTime
}

// MemoryRegion reports one heap/stack region. On a hosted Go build
// the only region that corresponds to anything real is the runtime
// heap; it stands in for the platform's memoryRegion[] table.
type MemoryRegion struct {
	Name      string
	UsedBytes uint64
}

// Status returns a snapshot of the service's current state. refresh
// is accepted for parity with the platform contract, where a caller
// may ask for a cached value instead; this implementation always
// computes a fresh snapshot since doing so is cheap on a hosted build.
func (s *Service) Status(refresh bool) OperatingSystemStatus {
	_ = refresh

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return OperatingSystemStatus{
		ThreadCount:    s.threadCount(),
		SemaphoreCount: s.semaphores.count(),
		QueueCount:     s.queues.count(),
		TimerCount:     s.timers.count(),
		IdlePercent:    s.idlePercent(),
		UpTime:         altime.Milliseconds(time.Since(s.startTime).Milliseconds()),
		MemoryRegions: []MemoryRegion{
			{Name: "heap", UsedBytes: mem.HeapAlloc},
			{Name: "stack", UsedBytes: mem.StackInuse},
		},
		SystemTime: s.GetSystemTime(),
	}
}

func (t *semaphoreTable) count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byName)
}
