package osal

// ThreadInfo is a read-only snapshot of one registered thread, for
// introspection callers (pkg/osal/api) that must never mutate OS
// state.
type ThreadInfo struct {
	Id       Id
	Name     string
	Priority Priority
	Status   ThreadStatus
}

// Threads returns a snapshot of every currently registered thread.
func (s *Service) Threads() []ThreadInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ThreadInfo, 0, len(s.threadsByID))
	for _, t := range s.threadsByID {
		t.mu.Lock()
		out = append(out, ThreadInfo{
			Id:       t.id,
			Name:     nameBytesToString(t.name),
			Priority: t.priority,
			Status:   t.status,
		})
		t.mu.Unlock()
	}
	return out
}

// SemaphoreInfo is a read-only snapshot of one registered semaphore.
type SemaphoreInfo struct {
	Name  string
	Max   int
	Count int
}

// Semaphores returns a snapshot of every currently registered
// semaphore.
func (s *Service) Semaphores() []SemaphoreInfo {
	s.semaphores.mu.RLock()
	defer s.semaphores.mu.RUnlock()

	out := make([]SemaphoreInfo, 0, len(s.semaphores.byName))
	for name, rec := range s.semaphores.byName {
		rec.mu.Lock()
		out = append(out, SemaphoreInfo{
			Name:  nameBytesToString(name),
			Max:   rec.max,
			Count: rec.count,
		})
		rec.mu.Unlock()
	}
	return out
}

// QueueInfo is a read-only snapshot of one registered queue.
type QueueInfo struct {
	Name     string
	Capacity int
	Depth    int
}

// Queues returns a snapshot of every currently registered queue.
func (s *Service) Queues() []QueueInfo {
	s.queues.mu.RLock()
	defer s.queues.mu.RUnlock()

	out := make([]QueueInfo, 0, len(s.queues.byName))
	for name, rec := range s.queues.byName {
		rec.mu.Lock()
		out = append(out, QueueInfo{
			Name:     nameBytesToString(name),
			Capacity: rec.capacity,
			Depth:    rec.items.Len(),
		})
		rec.mu.Unlock()
	}
	return out
}

// TimerInfo is a read-only snapshot of one registered timer.
type TimerInfo struct {
	Id         Id
	Period     string
	AutoReload bool
	Running    bool
}

// Timers returns a snapshot of every currently registered timer.
func (s *Service) Timers() []TimerInfo {
	s.timers.mu.RLock()
	defer s.timers.mu.RUnlock()

	out := make([]TimerInfo, 0, len(s.timers.byID))
	for id, rec := range s.timers.byID {
		rec.mu.Lock()
		out = append(out, TimerInfo{
			Id:         id,
			Period:     rec.period.String(),
			AutoReload: rec.autoReload,
			Running:    rec.running,
		})
		rec.mu.Unlock()
	}
	return out
}

func nameBytesToString(b [16]byte) string {
	i := 0
	for i < len(b) && b[i] != 0 {
		i++
	}
	return string(b[:i])
}
