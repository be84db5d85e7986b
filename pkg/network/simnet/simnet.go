// Package simnet implements network.NetworkInterface over in-process
// net.Pipe connections, for unit tests that want ConnectTo/ListenTo/
// Transmit/Receive semantics without opening real sockets.
//
// Grounded on the teacher's preference for small in-process fakes over
// real backends in unit tests (pkg/cache/testing's suite of fakes);
// simnet plays the same role for network.NetworkInterface.
package simnet

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/benhaub/abstractionlayer/internal/logger"
	"github.com/benhaub/abstractionlayer/pkg/alerr"
	"github.com/benhaub/abstractionlayer/pkg/alid"
	"github.com/benhaub/abstractionlayer/pkg/eventqueue"
	"github.com/benhaub/abstractionlayer/pkg/network"
)

// registry is a process-wide directory of listening ports, letting one
// Interface's ConnectTo find another Interface's ListenTo within the
// same test binary the way real DNS + a real kernel socket table would
// outside of it.
var registry = struct {
	mu        sync.Mutex
	listeners map[alid.Port]chan connPair
}{listeners: make(map[alid.Port]chan connPair)}

type connPair struct {
	a, b *pipeConn
}

// Interface is a network.NetworkInterface backed entirely by
// in-process pipes.
type Interface struct {
	queue *eventqueue.EventQueue
	id    uuid.UUID

	mu       sync.Mutex
	up       bool
	nextSock int32
	conns    map[alid.Socket]*pipeConn
	accept   map[alid.Socket]chan *pipeConn
	ports    map[alid.Socket]alid.Port
}

// New creates a simnet Interface whose I/O is serialised through queue.
func New(queue *eventqueue.EventQueue) *Interface {
	return &Interface{
		queue:  queue,
		id:     uuid.New(),
		conns:  make(map[alid.Socket]*pipeConn),
		accept: make(map[alid.Socket]chan *pipeConn),
		ports:  make(map[alid.Socket]alid.Port),
	}
}

func (n *Interface) EventQueue() *eventqueue.EventQueue { return n.queue }

// ID returns the interface's stable opaque identifier, minted once at
// construction.
func (n *Interface) ID() uuid.UUID { return n.id }

func (n *Interface) Configure(network.Params) *alerr.Error { return nil }
func (n *Interface) Init() *alerr.Error                    { return nil }

func (n *Interface) Up() *alerr.Error {
	n.mu.Lock()
	n.up = true
	n.mu.Unlock()
	return nil
}

func (n *Interface) Down() *alerr.Error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.up = false
	for s, c := range n.conns {
		c.Close()
		delete(n.conns, s)
	}
	for s, port := range n.ports {
		registry.mu.Lock()
		delete(registry.listeners, port)
		registry.mu.Unlock()
		delete(n.accept, s)
		delete(n.ports, s)
	}
	return nil
}

func (n *Interface) Status() network.Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	return network.Status{IsUp: n.up, Technology: network.TechnologyUnknown}
}

func (n *Interface) allocSocket() alid.Socket {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextSock++
	return alid.Socket(n.nextSock)
}

// ConnectTo dials the in-process listener registered for port,
// ignoring hostname and protocol/version (there is exactly one
// address space: the test binary).
func (n *Interface) ConnectTo(ctx context.Context, hostname string, port alid.Port, protocol network.Protocol, version network.IPVersion, timeout time.Duration) (alid.Socket, *alerr.Error) {
	registry.mu.Lock()
	ch, ok := registry.listeners[port]
	registry.mu.Unlock()
	if !ok {
		return alid.Unbound, alerr.New(alerr.PrerequisitesNotMet, "simnet: nothing listening on port %d", port)
	}

	client, server := newPipe()

	select {
	case ch <- connPair{a: client, b: server}:
	case <-time.After(timeout):
		return alid.Unbound, alerr.New(alerr.Timeout, "simnet: connect to port %d timed out", port)
	}

	sock := n.allocSocket()
	n.mu.Lock()
	n.conns[sock] = client
	n.mu.Unlock()
	logger.Debug("simnet: connected", logger.Socket(int32(sock)), logger.Port(uint16(port)))
	return sock, nil
}

func (n *Interface) Disconnect(socket alid.Socket) *alerr.Error {
	if !socket.IsBound() {
		return nil
	}
	n.mu.Lock()
	c, ok := n.conns[socket]
	delete(n.conns, socket)
	n.mu.Unlock()
	if ok {
		c.Close()
	}
	return nil
}

func (n *Interface) ListenTo(protocol network.Protocol, version network.IPVersion, port alid.Port) (alid.Socket, *alerr.Error) {
	ch := make(chan connPair, eventqueue.Capacity)
	registry.mu.Lock()
	if _, exists := registry.listeners[port]; exists {
		registry.mu.Unlock()
		return alid.Unbound, alerr.New(alerr.InvalidParameter, "simnet: port %d already listening", port)
	}
	registry.listeners[port] = ch
	registry.mu.Unlock()

	sock := n.allocSocket()
	accept := make(chan *pipeConn, eventqueue.Capacity)
	n.mu.Lock()
	n.accept[sock] = accept
	n.ports[sock] = port
	n.mu.Unlock()

	go func() {
		for pair := range ch {
			accept <- pair.b
		}
	}()

	return sock, nil
}

func (n *Interface) AcceptConnection(listener alid.Socket, timeout time.Duration) (alid.Socket, *alerr.Error) {
	n.mu.Lock()
	accept, ok := n.accept[listener]
	n.mu.Unlock()
	if !ok {
		return alid.Unbound, alerr.New(alerr.NoData, "simnet: unknown listener %d", listener)
	}

	select {
	case conn := <-accept:
		sock := n.allocSocket()
		n.mu.Lock()
		n.conns[sock] = conn
		n.mu.Unlock()
		return sock, nil
	case <-time.After(timeout):
		return alid.Unbound, alerr.New(alerr.Timeout, "simnet: accept on %d timed out", listener)
	}
}

func (n *Interface) CloseConnection(socket alid.Socket) *alerr.Error {
	n.mu.Lock()
	if c, ok := n.conns[socket]; ok {
		delete(n.conns, socket)
		n.mu.Unlock()
		c.Close()
		return nil
	}
	if port, ok := n.ports[socket]; ok {
		registry.mu.Lock()
		if ch, exists := registry.listeners[port]; exists {
			close(ch)
			delete(registry.listeners, port)
		}
		registry.mu.Unlock()
		delete(n.accept, socket)
		delete(n.ports, socket)
		n.mu.Unlock()
		return nil
	}
	n.mu.Unlock()
	return alerr.New(alerr.NoData, "simnet: unknown socket %d", socket)
}

func (n *Interface) Transmit(socket alid.Socket, frame []byte, timeout time.Duration) (int, *alerr.Error) {
	n.mu.Lock()
	c, ok := n.conns[socket]
	n.mu.Unlock()
	if !ok {
		return 0, alerr.New(alerr.NoData, "simnet: unknown socket %d", socket)
	}
	return c.Write(frame, timeout)
}

func (n *Interface) Receive(socket alid.Socket, buf []byte, timeout time.Duration) ([]byte, *alerr.Error) {
	n.mu.Lock()
	c, ok := n.conns[socket]
	n.mu.Unlock()
	if !ok {
		return nil, alerr.New(alerr.NoData, "simnet: unknown socket %d", socket)
	}
	return c.Read(buf, timeout)
}

func (n *Interface) GetMacAddress() (string, *alerr.Error) {
	return "", alerr.New(alerr.NotAvailable, "simnet: no MAC address for an in-process pipe")
}

func (n *Interface) GetSignalStrength() (int, *alerr.Error) {
	return -1, alerr.New(alerr.NotAvailable, "simnet: no RSSI for an in-process pipe")
}
