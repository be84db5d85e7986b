package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context for a single
// serialise-and-wait call travelling from an IpClient/IpServer method
// through a network's event queue and back.
type LogContext struct {
	TraceID   string    // OpenTelemetry trace ID
	SpanID    string    // OpenTelemetry span ID
	Component string    // osal, eventqueue, network, ipclient, ipserver
	Operation string    // ConnectTo, Transmit, Receive, AddEvent, ...
	Socket    int32     // socket handle involved, if any (-1 if none)
	ThreadID  uint32    // logical osal.Id of the calling thread
	StartTime time.Time // for duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext for the given component.
func NewLogContext(component string) *LogContext {
	return &LogContext{
		Component: component,
		Socket:    -1,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithOperation returns a copy with the operation set
func (lc *LogContext) WithOperation(operation string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Operation = operation
	}
	return clone
}

// WithSocket returns a copy with the socket handle set
func (lc *LogContext) WithSocket(socket int32) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Socket = socket
	}
	return clone
}

// WithThread returns a copy with the logical thread id set
func (lc *LogContext) WithThread(threadID uint32) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.ThreadID = threadID
	}
	return clone
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
