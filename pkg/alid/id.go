// Package alid defines the small value types shared across the
// abstraction layer: stable logical identifiers, fixed-capacity names,
// socket handles, port numbers, and peripheral enumeration. None of
// these carry behavior beyond validation -- they exist so every
// component speaks the same vocabulary at its interface boundary.
package alid

import (
	"fmt"
	"sync/atomic"

	"github.com/benhaub/abstractionlayer/pkg/alerr"
)

// Id is a stable, process-wide logical identifier of the kind the OS
// capability service assigns to threads and timers. It is independent of any underlying platform handle and is never
// zero for a live object; zero is reserved for "unassigned".
type Id uint32

// Invalid is the zero value, meaning "no id assigned".
const Invalid Id = 0

// Counter is a monotonically increasing Id generator, starting at 1.
// It never reuses a freed id, so a stale Id from one Counter can never
// alias a live object numbered by the same Counter.
type Counter struct {
	next atomic.Uint32
}

// Next returns the next Id in sequence, starting at 1.
func (c *Counter) Next() Id {
	return Id(c.next.Add(1))
}

// NameCapacity is the fixed size of a Name buffer, matching the
// original abstraction layer's 16-byte thread/semaphore/queue/memory
// region name fields.
const NameCapacity = 16

// Name is a fixed-capacity, NUL-padded byte buffer used for thread,
// semaphore, queue, and memory-region names. It is comparable by value
// (==), never by pointer, matching the spec's naming discipline.
type Name [NameCapacity]byte

// NewName validates s fits in NameCapacity-1 bytes (one byte reserved
// so the buffer always contains a terminating NUL even when full) and
// returns the padded Name. Exceeding the capacity is a caller error,
// not a platform failure: it returns InvalidParameter rather than
// silently truncating.
func NewName(s string) (Name, *alerr.Error) {
	var n Name
	if len(s) > NameCapacity-1 {
		return n, alerr.New(alerr.InvalidParameter, "name %q exceeds %d bytes", s, NameCapacity-1)
	}
	copy(n[:], s)
	return n, nil
}

// MustName panics if s does not fit; intended for literal names known
// at compile time (e.g. internal semaphore names), never for
// user-supplied input.
func MustName(s string) Name {
	n, err := NewName(s)
	if err != nil {
		panic(err)
	}
	return n
}

// String returns the name with trailing NUL bytes trimmed.
func (n Name) String() string {
	i := 0
	for i < len(n) && n[i] != 0 {
		i++
	}
	return string(n[:i])
}

func (n Name) GoString() string {
	return fmt.Sprintf("alid.Name(%q)", n.String())
}

// Socket is a signed platform socket handle. -1 means "no socket".
type Socket int32

// Unbound is the sentinel value for a socket that has not been opened.
const Unbound Socket = -1

// IsBound reports whether s refers to an open socket.
func (s Socket) IsBound() bool {
	return s >= 0
}

// Port is a TCP/UDP port number.
type Port uint16

// PeripheralNumber is a closed enumeration of on-board peripheral
// slots. It carries no host-specific meaning by itself -- drivers
// (out of scope for this module) map it to a platform identifier, see
// pkg/peripheral.
type PeripheralNumber int

const (
	PeripheralZero PeripheralNumber = iota
	PeripheralOne
	PeripheralTwo
	PeripheralThree
	PeripheralFour
	PeripheralFive
	PeripheralSix
	PeripheralSeven
	PeripheralEight
	PeripheralNine
	PeripheralTen
	PeripheralUnknown
)

func (p PeripheralNumber) String() string {
	if p >= PeripheralZero && p <= PeripheralTen {
		return fmt.Sprintf("Peripheral%d", int(p))
	}
	return "PeripheralUnknown"
}
