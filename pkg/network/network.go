// Package network defines the abstract network-interface contract
// consumed by pkg/ipclient and pkg/ipserver, plus the two concrete
// implementations (posixnet, simnet) that satisfy it.
package network

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/benhaub/abstractionlayer/pkg/alerr"
	"github.com/benhaub/abstractionlayer/pkg/alid"
	"github.com/benhaub/abstractionlayer/pkg/eventqueue"
)

// Protocol is the transport protocol an interface or connection uses.
type Protocol int

const (
	ProtocolTCP Protocol = iota
	ProtocolUDP
)

func (p Protocol) String() string {
	if p == ProtocolUDP {
		return "UDP"
	}
	return "TCP"
}

// IPVersion selects the address family a connect/listen call uses.
type IPVersion int

const (
	IPv4 IPVersion = iota
	IPv6
	IPv4v6
)

func (v IPVersion) String() string {
	switch v {
	case IPv6:
		return "IPv6"
	case IPv4v6:
		return "IPv4v6"
	default:
		return "IPv4"
	}
}

// Technology is the physical/link-layer technology a NetworkStatus
// reports, per spec.md §3's NetworkInterface data model.
type Technology int

const (
	TechnologyUnknown Technology = iota
	TechnologyWiFi
	TechnologyZigbee
	TechnologyEthernet
	TechnologyCellular
)

func (t Technology) String() string {
	switch t {
	case TechnologyWiFi:
		return "WiFi"
	case TechnologyZigbee:
		return "Zigbee"
	case TechnologyEthernet:
		return "Ethernet"
	case TechnologyCellular:
		return "Cellular"
	default:
		return "Unknown"
	}
}

// Status is the point-in-time state of a NetworkInterface.
type Status struct {
	IsUp       bool
	Technology Technology
}

// Params configures a NetworkInterface before Init. Fields beyond
// Name are implementation-specific and may be ignored by a given
// concrete interface (e.g. simnet ignores MTU).
type Params struct {
	Name alid.Name
	MTU  int
}

// NetworkInterface is the abstract contract every concrete transport
// (posixnet, simnet) satisfies. An implementation embeds exactly one
// *eventqueue.EventQueue whose owner thread is the only goroutine that
// may ever touch the implementation's underlying sockets; every method
// here is expected to be called either from that owner thread directly
// (by MainLoop-driven dispatch) or indirectly via AddEvent from
// pkg/ipclient/pkg/ipserver.
type NetworkInterface interface {
	// Configure sets parameters that must be applied before Init.
	Configure(params Params) *alerr.Error
	// Init prepares the interface for use. Must precede Up.
	Init() *alerr.Error
	// Up brings the interface online.
	Up() *alerr.Error
	// Down takes the interface offline, closing any sockets it owns.
	Down() *alerr.Error

	// ConnectTo performs a blocking DNS resolve and connect, returning
	// the new socket. NotSupported for IPv6 on builds lacking it.
	ConnectTo(ctx context.Context, hostname string, port alid.Port, protocol Protocol, version IPVersion, timeout time.Duration) (alid.Socket, *alerr.Error)
	// Disconnect closes socket. Idempotent on alid.Unbound.
	Disconnect(socket alid.Socket) *alerr.Error
	// ListenTo opens a listening socket for the given protocol/version/port.
	ListenTo(protocol Protocol, version IPVersion, port alid.Port) (alid.Socket, *alerr.Error)
	// AcceptConnection blocks up to timeout for a new connection on listener.
	AcceptConnection(listener alid.Socket, timeout time.Duration) (alid.Socket, *alerr.Error)
	// CloseConnection closes and forgets socket.
	CloseConnection(socket alid.Socket) *alerr.Error

	// Transmit writes frame to socket, blocking up to timeout.
	Transmit(socket alid.Socket, frame []byte, timeout time.Duration) (int, *alerr.Error)
	// Receive reads into buf from socket, blocking up to timeout, and
	// returns buf resized to the number of bytes actually read.
	Receive(socket alid.Socket, buf []byte, timeout time.Duration) ([]byte, *alerr.Error)

	// GetMacAddress returns the interface's hardware address, if any.
	GetMacAddress() (string, *alerr.Error)
	// GetSignalStrength returns signal strength in dBm. Negative is
	// permitted as a sentinel when the technology has no RSSI concept.
	GetSignalStrength() (int, *alerr.Error)

	// EventQueue returns the interface's owning event queue, used by
	// ipclient/ipserver to submit serialise-and-wait closures.
	EventQueue() *eventqueue.EventQueue

	// Status reports the interface's current up/down state and
	// technology.
	Status() Status

	// ID returns the interface's stable opaque identifier, minted once
	// at construction. Two interfaces configured with the same Params
	// remain distinguishable across restarts of the process that
	// created them (e.g. in status snapshots and sinks), since alid.Name
	// alone is not guaranteed unique across interface instances.
	ID() uuid.UUID
}
