package alerr

import (
	"syscall"

	"github.com/benhaub/abstractionlayer/internal/logger"
)

// posixTable maps POSIX errno values onto the taxonomy. It is the Go
// analogue of the per-platform tables the original abstraction layer
// keeps for ESP-IDF, FreeRTOS, and raw POSIX builds: one mapping per
// platform, all converging on the same closed Code set.
var posixTable = map[syscall.Errno]Code{
	syscall.Errno(0):  Success,
	syscall.ENOMEM:    NoMemory,
	syscall.ETIMEDOUT: Timeout,
	syscall.EAGAIN:    Timeout,
	syscall.ENOSYS:    NotImplemented,
	syscall.EOPNOTSUPP: NotSupported,
	syscall.ECONNRESET: PrerequisitesNotMet,
	syscall.EPIPE:       PrerequisitesNotMet,
	syscall.ENOTCONN:    PrerequisitesNotMet,
	syscall.EINVAL:      InvalidParameter,
	syscall.ENOENT:      FileNotFound,
	syscall.EEXIST:      FileExists,
	syscall.EMFILE:      LimitReached,
	syscall.ENFILE:      LimitReached,
}

// FromPlatform maps a raw platform error code (POSIX errno on hosted
// builds) onto the closed Error taxonomy. Unknown codes map to Failure
// and are logged so an unmapped platform errno doesn't silently vanish
// into a generic failure without a trace.
func FromPlatform(code int) *Error {
	errno := syscall.Errno(code)
	if c, ok := posixTable[errno]; ok {
		if c == Success {
			return nil
		}
		return Wrap(c, errno, "platform error %d", code)
	}
	logger.Warn("alerr: unmapped platform error code", "code", code, "errno", errno.Error())
	return Wrap(Failure, errno, "unmapped platform error %d", code)
}
