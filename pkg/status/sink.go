package status

import "context"

// Sink durably archives Snapshots for crash diagnostics or historical
// review. It sits off the serialise-and-wait hot path entirely --
// nothing in pkg/ipclient or pkg/ipserver ever calls a Sink directly.
// A caller (typically cmd/alhost's status command, or a periodic
// ticker) pulls a Snapshot from an Aggregator and pushes it here.
type Sink interface {
	// Record persists one snapshot. Implementations should not block
	// the caller indefinitely; ctx carries whatever deadline the
	// caller wants to enforce.
	Record(ctx context.Context, snap Snapshot) error
	// Close releases any resources (file handles, connections) held
	// by the sink.
	Close() error
}
