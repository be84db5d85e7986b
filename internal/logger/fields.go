package logger

import (
	"log/slog"
)

// Standard field keys for structured logging across the abstraction
// layer. Use these keys consistently so dashboards and log queries
// stay stable across osal, eventqueue, network, ipclient, and ipserver.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Component & Operation
	// ========================================================================
	KeyComponent = "component" // osal, eventqueue, network, ipclient, ipserver
	KeyOperation = "operation" // ConnectTo, Transmit, AddEvent, Block, ...
	KeyErrorCode = "error_code"
	KeyError     = "error"

	// ========================================================================
	// OS capability service
	// ========================================================================
	KeyThreadName = "thread_name"
	KeyThreadID   = "thread_id"
	KeyPriority   = "priority"
	KeySemaphore  = "semaphore"
	KeyTimerID    = "timer_id"
	KeyQueueName  = "queue_name"

	// ========================================================================
	// Event queue
	// ========================================================================
	KeyQueueDepth = "queue_depth"
	KeyOwnerID    = "owner_id"
	KeyInline     = "inline"

	// ========================================================================
	// Network / sockets
	// ========================================================================
	KeySocket      = "socket"
	KeyListener    = "listener_socket"
	KeyHostname    = "hostname"
	KeyPort        = "port"
	KeyProtocol    = "protocol"
	KeyIPVersion   = "ip_version"
	KeyBytesRead   = "bytes_read"
	KeyBytesWrite  = "bytes_written"
	KeyConnections = "connections"

	// ========================================================================
	// Timing
	// ========================================================================
	KeyDurationMs = "duration_ms"
	KeyTimeoutMs  = "timeout_ms"
)

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr { return slog.String(KeySpanID, id) }

// Component returns a slog.Attr for the emitting component.
func Component(name string) slog.Attr { return slog.String(KeyComponent, name) }

// Operation returns a slog.Attr for the operation name.
func Operation(op string) slog.Attr { return slog.String(KeyOperation, op) }

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for the numeric taxonomy code.
func ErrorCode(code int) slog.Attr { return slog.Int(KeyErrorCode, code) }

// ThreadName returns a slog.Attr for a thread's fixed-capacity name.
func ThreadName(name string) slog.Attr { return slog.String(KeyThreadName, name) }

// ThreadID returns a slog.Attr for a thread's logical Id.
func ThreadID(id uint32) slog.Attr { return slog.Any(KeyThreadID, id) }

// Priority returns a slog.Attr for a thread priority band.
func Priority(p string) slog.Attr { return slog.String(KeyPriority, p) }

// Semaphore returns a slog.Attr for a semaphore name.
func Semaphore(name string) slog.Attr { return slog.String(KeySemaphore, name) }

// TimerID returns a slog.Attr for a timer's logical Id.
func TimerID(id uint32) slog.Attr { return slog.Any(KeyTimerID, id) }

// QueueName returns a slog.Attr for a bounded queue's name.
func QueueName(name string) slog.Attr { return slog.String(KeyQueueName, name) }

// QueueDepth returns a slog.Attr for the current event-queue backlog.
func QueueDepth(n int) slog.Attr { return slog.Int(KeyQueueDepth, n) }

// OwnerID returns a slog.Attr for an event queue's owner thread Id.
func OwnerID(id uint32) slog.Attr { return slog.Any(KeyOwnerID, id) }

// Inline returns a slog.Attr reporting whether an event ran inline.
func Inline(inline bool) slog.Attr { return slog.Bool(KeyInline, inline) }

// Socket returns a slog.Attr for a socket handle.
func Socket(s int32) slog.Attr { return slog.Any(KeySocket, s) }

// Listener returns a slog.Attr for a listener socket handle.
func Listener(s int32) slog.Attr { return slog.Any(KeyListener, s) }

// Hostname returns a slog.Attr for a DNS hostname.
func Hostname(h string) slog.Attr { return slog.String(KeyHostname, h) }

// Port returns a slog.Attr for a TCP/UDP port.
func Port(p uint16) slog.Attr { return slog.Any(KeyPort, p) }

// Protocol returns a slog.Attr for Tcp/Udp.
func Protocol(proto string) slog.Attr { return slog.String(KeyProtocol, proto) }

// IPVersion returns a slog.Attr for IPv4/IPv6/IPv4v6.
func IPVersion(v string) slog.Attr { return slog.String(KeyIPVersion, v) }

// BytesRead returns a slog.Attr for bytes actually read.
func BytesRead(n int) slog.Attr { return slog.Int(KeyBytesRead, n) }

// BytesWritten returns a slog.Attr for bytes actually written.
func BytesWritten(n int) slog.Attr { return slog.Int(KeyBytesWrite, n) }

// Connections returns a slog.Attr for an accepted-connection count.
func Connections(n int) slog.Attr { return slog.Int(KeyConnections, n) }

// DurationMs returns a slog.Attr for an operation duration.
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// TimeoutMs returns a slog.Attr for a caller-specified deadline.
func TimeoutMs(ms int64) slog.Attr { return slog.Int64(KeyTimeoutMs, ms) }
