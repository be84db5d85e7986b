package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for spans around the network/IP client/server
// serialise-and-wait path and the OS capability service.
const (
	AttrProtocol  = "net.protocol"   // ipclient, ipserver, network
	AttrOperation = "net.operation"  // ConnectTo, SendBlocking, AcceptConnection, ...
	AttrHost      = "net.host"       // remote hostname for a client connectTo
	AttrPort      = "net.port"       // remote or listening port
	AttrSocket = "net.socket" // signed socket handle, -1 = unbound
	AttrBytes  = "net.bytes"  // bytes transmitted or received

	AttrThreadID   = "osal.thread_id"
	AttrQueueDepth = "eventqueue.depth"
)

// Protocol returns an attribute for the network component name
// (ipclient, ipserver, network).
func Protocol(name string) attribute.KeyValue {
	return attribute.String(AttrProtocol, name)
}

// FSOperation returns an attribute for the operation name within a
// network component span (ConnectTo, ReceiveBlocking, ...).
func FSOperation(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

// Host returns an attribute for a remote hostname.
func Host(host string) attribute.KeyValue {
	return attribute.String(AttrHost, host)
}

// Port returns an attribute for a port number.
func Port(port int) attribute.KeyValue {
	return attribute.Int(AttrPort, port)
}

// Socket returns an attribute for a socket handle.
func Socket(socket int) attribute.KeyValue {
	return attribute.Int(AttrSocket, socket)
}

// Bytes returns an attribute for a byte count transmitted or received.
func Bytes(n int) attribute.KeyValue {
	return attribute.Int(AttrBytes, n)
}

// ThreadID returns an attribute for a logical osal thread id.
func ThreadID(id uint32) attribute.KeyValue {
	return attribute.Int64(AttrThreadID, int64(id))
}

// QueueDepth returns an attribute for the current event queue depth.
func QueueDepth(depth int) attribute.KeyValue {
	return attribute.Int(AttrQueueDepth, depth)
}

// StartProtocolSpan starts a span named "<protocol>.<operation>" with
// the protocol and operation attributes pre-set, for use around the
// network/ipclient/ipserver serialise-and-wait calls.
func StartProtocolSpan(ctx context.Context, protocol, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		Protocol(protocol),
		FSOperation(operation),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, protocol+"."+operation, trace.WithAttributes(allAttrs...))
}
