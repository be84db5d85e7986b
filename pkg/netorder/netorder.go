// Package netorder provides host<->network byte-order conversion for
// the fixed-width integers the wire protocols in this module exchange.
//
// The original abstraction layer detects endianness at runtime (or
// compile time) and swaps bytes accordingly, because C has no portable
// notion of "the wire is always big-endian". Go's encoding/binary
// already encapsulates that: network byte order is always big-endian,
// so HostToNetwork/NetworkToHost here are a thin, allocation-free
// restatement built on binary.BigEndian rather than a runtime
// endianness probe. See DESIGN.md for why the runtime-detection note
// in spec.md is deliberately not carried over.
package netorder

import "encoding/binary"

// HostToNetwork16 converts a host-order uint16 to network (big-endian)
// byte order: identity on big-endian hosts, byte-swapped on
// little-endian ones.
func HostToNetwork16(v uint16) uint16 {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], v)
	return binary.BigEndian.Uint16(b[:])
}

// NetworkToHost16 converts a network-order uint16 to host order. The
// swap is its own inverse, so this is the same transform as
// HostToNetwork16.
func NetworkToHost16(v uint16) uint16 {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return binary.NativeEndian.Uint16(b[:])
}

// HostToNetwork32 converts a host-order uint32 to network byte order.
func HostToNetwork32(v uint32) uint32 {
	var b [4]byte
	binary.NativeEndian.PutUint32(b[:], v)
	return binary.BigEndian.Uint32(b[:])
}

// NetworkToHost32 converts a network-order uint32 to host order.
func NetworkToHost32(v uint32) uint32 {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return binary.NativeEndian.Uint32(b[:])
}

// HostToNetwork64 converts a host-order uint64 to network byte order.
func HostToNetwork64(v uint64) uint64 {
	var b [8]byte
	binary.NativeEndian.PutUint64(b[:], v)
	return binary.BigEndian.Uint64(b[:])
}

// NetworkToHost64 converts a network-order uint64 to host order.
func NetworkToHost64(v uint64) uint64 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return binary.NativeEndian.Uint64(b[:])
}

// PutUint16 encodes v into b in network byte order.
func PutUint16(b []byte, v uint16) { binary.BigEndian.PutUint16(b, v) }

// Uint16 decodes a network-byte-order uint16 from b.
func Uint16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }

// PutUint32 encodes v into b in network byte order.
func PutUint32(b []byte, v uint32) { binary.BigEndian.PutUint32(b, v) }

// Uint32 decodes a network-byte-order uint32 from b.
func Uint32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }

// PutUint64 encodes v into b in network byte order.
func PutUint64(b []byte, v uint64) { binary.BigEndian.PutUint64(b, v) }

// Uint64 decodes a network-byte-order uint64 from b.
func Uint64(b []byte) uint64 { return binary.BigEndian.Uint64(b) }
