//go:build posix

package osal

import (
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/benhaub/abstractionlayer/internal/logger"
)

// niceFor maps a logical priority band onto a POSIX nice value. Lower
// nice is higher priority; the range is widened to occupy at least
// five distinct, evenly spaced steps as required by the band table.
func niceFor(p Priority) int {
	switch p {
	case PriorityHighest:
		return -10
	case PriorityHigh:
		return -5
	case PriorityNormal:
		return 0
	case PriorityLow:
		return 5
	case PriorityLowest:
		return 10
	default:
		return 0
	}
}

// applyPlatformPriority best-effort pins the calling goroutine to its
// own OS thread and requests a nice value for it. Failure is logged,
// not propagated: a missed priority hint must never abort startup.
func applyPlatformPriority(p Priority) {
	runtime.LockOSThread()
	if err := unix.Setpriority(unix.PRIO_PROCESS, 0, niceFor(p)); err != nil {
		logger.Debug("osal: setpriority failed", logger.Priority(p.String()), logger.Err(err))
	}
}
