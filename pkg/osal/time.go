package osal

import (
	"sync"
	"time"

	"github.com/benhaub/abstractionlayer/pkg/altime"
)

// TickRateHz is the simulated platform tick rate used to convert
// between ticks and milliseconds.
const TickRateHz = 1000

var tickMu sync.Mutex

// GetSystemTime returns the current wall-clock time as UnixTime.
func (s *Service) GetSystemTime() altime.UnixTime {
	return altime.UnixTime(time.Now().Unix())
}

// GetSystemTick returns a monotonic tick count derived from the
// service's start time, at TickRateHz ticks per second.
func (s *Service) GetSystemTick() altime.Ticks {
	elapsed := time.Since(s.startTime)
	return altime.Ticks(elapsed.Milliseconds() * int64(TickRateHz) / 1000)
}

// TicksToMilliseconds converts t using the service's tick rate.
func (s *Service) TicksToMilliseconds(t altime.Ticks) altime.Milliseconds {
	return altime.TicksToMilliseconds(t, TickRateHz)
}

// MillisecondsToTicks converts ms using the service's tick rate.
func (s *Service) MillisecondsToTicks(ms altime.Milliseconds) altime.Ticks {
	return altime.MillisecondsToTicks(ms, TickRateHz)
}

// Uptime returns the milliseconds elapsed since the service was
// constructed, read from the wall clock. It also tracks the tick
// counter's last observed value across calls and adds each tick delta,
// taken with DifferenceBetween so that a wraparound of the tick type
// does not go negative, to a whole-seconds rollover counter; the
// returned value is not derived from that counter.
func (s *Service) Uptime() altime.Milliseconds {
	tickMu.Lock()
	defer tickMu.Unlock()

	current := s.GetSystemTick()
	delta := altime.DifferenceBetween(current, altime.Ticks(s.lastTick), 64)
	s.lastTick = uint64(current)
	s.rolloverSecs += uint64(altime.TicksToMilliseconds(delta, TickRateHz)) / 1000
	return altime.Milliseconds(time.Since(s.startTime).Milliseconds())
}
