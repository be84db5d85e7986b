// Package posixnet implements network.NetworkInterface over real
// net.Dial/net.Listen sockets, for hosted Linux/Darwin builds.
//
// Grounded on the accept-loop idiom of internal/protocol/portmap/server.go:
// a dedicated goroutine drives Accept in a loop, handing each new
// connection off rather than blocking the caller.
package posixnet

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/benhaub/abstractionlayer/internal/logger"
	"github.com/benhaub/abstractionlayer/pkg/alerr"
	"github.com/benhaub/abstractionlayer/pkg/alid"
	"github.com/benhaub/abstractionlayer/pkg/eventqueue"
	"github.com/benhaub/abstractionlayer/pkg/network"
)

// Interface is a network.NetworkInterface backed by the stdlib net
// package. All methods are intended to be called only from the thread
// that owns queue, directly or via AddEvent.
type Interface struct {
	queue *eventqueue.EventQueue
	id    uuid.UUID

	mu        sync.Mutex
	up        bool
	params    network.Params
	nextSock  int32
	conns     map[alid.Socket]net.Conn
	listeners map[alid.Socket]net.Listener
	pending   map[alid.Socket]chan net.Conn
}

// New creates a posixnet Interface whose I/O is serialised through
// queue.
func New(queue *eventqueue.EventQueue) *Interface {
	return &Interface{
		queue:     queue,
		id:        uuid.New(),
		conns:     make(map[alid.Socket]net.Conn),
		listeners: make(map[alid.Socket]net.Listener),
		pending:   make(map[alid.Socket]chan net.Conn),
	}
}

func (n *Interface) EventQueue() *eventqueue.EventQueue { return n.queue }

// ID returns the interface's stable opaque identifier, minted once at
// construction.
func (n *Interface) ID() uuid.UUID { return n.id }

func (n *Interface) Configure(params network.Params) *alerr.Error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.params = params
	return nil
}

func (n *Interface) Init() *alerr.Error { return nil }

func (n *Interface) Up() *alerr.Error {
	n.mu.Lock()
	n.up = true
	n.mu.Unlock()
	logger.Debug("posixnet: interface up", logger.Hostname(string(n.params.Name[:])))
	return nil
}

func (n *Interface) Down() *alerr.Error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.up = false
	for s, c := range n.conns {
		_ = c.Close()
		delete(n.conns, s)
	}
	for s, l := range n.listeners {
		_ = l.Close()
		delete(n.listeners, s)
	}
	return nil
}

func (n *Interface) Status() network.Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	return network.Status{IsUp: n.up, Technology: network.TechnologyEthernet}
}

func netProto(p network.Protocol) string {
	if p == network.ProtocolUDP {
		return "udp"
	}
	return "tcp"
}

func (n *Interface) allocSocket() alid.Socket {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextSock++
	return alid.Socket(n.nextSock)
}

// ConnectTo resolves hostname and dials it, honoring timeout via a
// context deadline rather than the original's manual non-blocking
// connect + select loop — context.WithTimeout covers both the DNS
// resolve and the dial in one deadline.
func (n *Interface) ConnectTo(ctx context.Context, hostname string, port alid.Port, protocol network.Protocol, version network.IPVersion, timeout time.Duration) (alid.Socket, *alerr.Error) {
	if version == network.IPv6 {
		return alid.Unbound, alerr.New(alerr.NotSupported, "posixnet: IPv6 not supported on this build")
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	addr := net.JoinHostPort(hostname, strconv.Itoa(int(port)))
	var d net.Dialer
	conn, err := d.DialContext(dialCtx, netProto(protocol), addr)
	if err != nil {
		if dialCtx.Err() != nil {
			return alid.Unbound, alerr.New(alerr.Timeout, "posixnet: connect to %s timed out", addr)
		}
		return alid.Unbound, alerr.Wrap(alerr.PrerequisitesNotMet, err, "posixnet: connect to %s", addr)
	}

	sock := n.allocSocket()
	n.mu.Lock()
	n.conns[sock] = conn
	n.mu.Unlock()
	return sock, nil
}

func (n *Interface) Disconnect(socket alid.Socket) *alerr.Error {
	if !socket.IsBound() {
		return nil
	}
	n.mu.Lock()
	conn, ok := n.conns[socket]
	delete(n.conns, socket)
	n.mu.Unlock()
	if !ok {
		return nil
	}
	_ = conn.Close()
	return nil
}

func (n *Interface) ListenTo(protocol network.Protocol, version network.IPVersion, port alid.Port) (alid.Socket, *alerr.Error) {
	if version == network.IPv6 {
		return alid.Unbound, alerr.New(alerr.NotSupported, "posixnet: IPv6 not supported on this build")
	}

	addr := fmt.Sprintf(":%d", port)
	ln, err := net.Listen(netProto(protocol), addr)
	if err != nil {
		return alid.Unbound, alerr.Wrap(alerr.PrerequisitesNotMet, err, "posixnet: listen on %s", addr)
	}

	sock := n.allocSocket()
	pending := make(chan net.Conn, eventqueue.Capacity)
	n.mu.Lock()
	n.listeners[sock] = ln
	n.pending[sock] = pending
	n.mu.Unlock()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				close(pending)
				return
			}
			pending <- conn
		}
	}()

	return sock, nil
}

func (n *Interface) AcceptConnection(listener alid.Socket, timeout time.Duration) (alid.Socket, *alerr.Error) {
	n.mu.Lock()
	pending, ok := n.pending[listener]
	n.mu.Unlock()
	if !ok {
		return alid.Unbound, alerr.New(alerr.NoData, "posixnet: unknown listener socket %d", listener)
	}

	select {
	case conn, ok := <-pending:
		if !ok {
			return alid.Unbound, alerr.New(alerr.PrerequisitesNotMet, "posixnet: listener %d closed", listener)
		}
		sock := n.allocSocket()
		n.mu.Lock()
		n.conns[sock] = conn
		n.mu.Unlock()
		return sock, nil
	case <-time.After(timeout):
		return alid.Unbound, alerr.New(alerr.Timeout, "posixnet: accept on %d timed out", listener)
	}
}

func (n *Interface) CloseConnection(socket alid.Socket) *alerr.Error {
	n.mu.Lock()
	if conn, ok := n.conns[socket]; ok {
		delete(n.conns, socket)
		n.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	if ln, ok := n.listeners[socket]; ok {
		delete(n.listeners, socket)
		delete(n.pending, socket)
		n.mu.Unlock()
		_ = ln.Close()
		return nil
	}
	n.mu.Unlock()
	return alerr.New(alerr.NoData, "posixnet: unknown socket %d", socket)
}

func (n *Interface) Transmit(socket alid.Socket, frame []byte, timeout time.Duration) (int, *alerr.Error) {
	n.mu.Lock()
	conn, ok := n.conns[socket]
	n.mu.Unlock()
	if !ok {
		return 0, alerr.New(alerr.NoData, "posixnet: unknown socket %d", socket)
	}

	_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	written, err := conn.Write(frame)
	if err != nil {
		if isTimeout(err) {
			return written, alerr.New(alerr.Timeout, "posixnet: transmit on %d timed out", socket)
		}
		return written, alerr.Wrap(alerr.PrerequisitesNotMet, err, "posixnet: transmit on %d", socket)
	}
	return written, nil
}

func (n *Interface) Receive(socket alid.Socket, buf []byte, timeout time.Duration) ([]byte, *alerr.Error) {
	n.mu.Lock()
	conn, ok := n.conns[socket]
	n.mu.Unlock()
	if !ok {
		return nil, alerr.New(alerr.NoData, "posixnet: unknown socket %d", socket)
	}

	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	read, err := conn.Read(buf)
	if err != nil {
		if isTimeout(err) {
			return buf[:read], alerr.New(alerr.Timeout, "posixnet: receive on %d timed out", socket)
		}
		return buf[:read], alerr.Wrap(alerr.PrerequisitesNotMet, err, "posixnet: receive on %d", socket)
	}
	return buf[:read], nil
}

func (n *Interface) GetMacAddress() (string, *alerr.Error) {
	return "", alerr.New(alerr.NotAvailable, "posixnet: no physical MAC address on a hosted build")
}

func (n *Interface) GetSignalStrength() (int, *alerr.Error) {
	return -1, alerr.New(alerr.NotAvailable, "posixnet: no RSSI concept over a wired loopback transport")
}

func isTimeout(err error) bool {
	var ne net.Error
	return asNetError(err, &ne) && ne.Timeout()
}

func asNetError(err error, target *net.Error) bool {
	ne, ok := err.(net.Error)
	if ok {
		*target = ne
	}
	return ok
}
