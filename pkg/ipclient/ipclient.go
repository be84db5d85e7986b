// Package ipclient implements the serialise-and-wait IP client: every
// public operation submits a closure onto its network's event queue
// and blocks the caller until that closure has run on the network's
// owner thread, turning the network worker into a single-threaded
// executor shared by every client against that interface.
package ipclient

import (
	"context"
	"time"

	"github.com/benhaub/abstractionlayer/internal/telemetry"
	"github.com/benhaub/abstractionlayer/pkg/alerr"
	"github.com/benhaub/abstractionlayer/pkg/alid"
	"github.com/benhaub/abstractionlayer/pkg/network"
	"github.com/benhaub/abstractionlayer/pkg/osal"
)

// SendResult is delivered to a SendNonBlocking callback.
type SendResult struct {
	Err          *alerr.Error
	BytesWritten int
}

// ReceiveResult is delivered to a ReceiveNonBlocking callback.
type ReceiveResult struct {
	Err    *alerr.Error
	Buffer []byte
}

// Client is an IP client bound to one network.NetworkInterface. It
// holds a non-owning reference to the interface: the interface's
// lifetime must exceed the client's.
type Client struct {
	os   *osal.Service
	net  network.NetworkInterface
	self osal.Id

	socket    alid.Socket
	connected bool
}

// New creates a Client driven by self's logical thread Id (the caller
// that will block in each method) against net.
func New(os *osal.Service, net network.NetworkInterface, self osal.Id) *Client {
	return &Client{os: os, net: net, self: self, socket: alid.Unbound}
}

// Connected reports whether the client currently believes it holds a
// live connection.
func (c *Client) Connected() bool { return c.connected }

// Socket returns the client's current socket, or alid.Unbound.
func (c *Client) Socket() alid.Socket { return c.socket }

// ConnectTo first disconnects any existing socket, then connects to
// hostname:port, setting Connected true on success.
func (c *Client) ConnectTo(ctx context.Context, hostname string, port alid.Port, protocol network.Protocol, version network.IPVersion, timeout time.Duration) *alerr.Error {
	ctx, span := telemetry.StartProtocolSpan(ctx, "ipclient", "ConnectTo",
		telemetry.Host(hostname), telemetry.Port(int(port)))
	defer span.End()

	if err := c.Disconnect(ctx); err != nil {
		return err
	}

	completion := osal.NewCompletion[alid.Socket](c.os, c.self)
	err := c.net.EventQueue().AddEvent(c.self, func() *alerr.Error {
		sock, err := c.net.ConnectTo(ctx, hostname, port, protocol, version, timeout)
		completion.Signal(sock, err)
		return nil
	})
	if err != nil {
		return err
	}

	sock, connErr := completion.Wait()
	if connErr != nil {
		return connErr
	}
	c.socket = sock
	c.connected = true
	return nil
}

// Disconnect closes the current socket, if any. With no socket held it
// is an idempotent no-op that reports Success; otherwise it returns the
// network's close result, and the socket is reset to Unbound either way.
func (c *Client) Disconnect(ctx context.Context) *alerr.Error {
	_, span := telemetry.StartProtocolSpan(ctx, "ipclient", "Disconnect", telemetry.Socket(int(c.socket)))
	defer span.End()

	if !c.socket.IsBound() {
		c.connected = false
		return nil
	}

	socket := c.socket
	completion := osal.NewCompletion[struct{}](c.os, c.self)
	err := c.net.EventQueue().AddEvent(c.self, func() *alerr.Error {
		err := c.net.Disconnect(socket)
		completion.Signal(struct{}{}, err)
		return nil
	})
	if err != nil {
		return err
	}
	_, discErr := completion.Wait()

	c.socket = alid.Unbound
	c.connected = false
	return discErr
}

// SendBlocking transmits data on the current socket. Any failure
// other than Timeout clears Connected, since the link is considered
// gone.
func (c *Client) SendBlocking(ctx context.Context, data []byte, timeout time.Duration) (int, *alerr.Error) {
	_, span := telemetry.StartProtocolSpan(ctx, "ipclient", "SendBlocking", telemetry.Socket(int(c.socket)))
	defer span.End()

	socket := c.socket
	completion := osal.NewCompletion[int](c.os, c.self)
	err := c.net.EventQueue().AddEvent(c.self, func() *alerr.Error {
		n, err := c.net.Transmit(socket, data, timeout)
		completion.Signal(n, err)
		return nil
	})
	if err != nil {
		return 0, err
	}

	n, sendErr := completion.Wait()
	if sendErr != nil && sendErr.Code != alerr.Timeout {
		c.connected = false
	}
	span.SetAttributes(telemetry.Bytes(n))
	return n, sendErr
}

// ReceiveBlocking reads into buf from the current socket. Any failure
// other than Timeout clears Connected.
func (c *Client) ReceiveBlocking(ctx context.Context, buf []byte, timeout time.Duration) ([]byte, *alerr.Error) {
	_, span := telemetry.StartProtocolSpan(ctx, "ipclient", "ReceiveBlocking", telemetry.Socket(int(c.socket)))
	defer span.End()

	socket := c.socket
	completion := osal.NewCompletion[[]byte](c.os, c.self)
	err := c.net.EventQueue().AddEvent(c.self, func() *alerr.Error {
		got, err := c.net.Receive(socket, buf, timeout)
		completion.Signal(got, err)
		return nil
	})
	if err != nil {
		return nil, err
	}

	got, recvErr := completion.Wait()
	if recvErr != nil && recvErr.Code != alerr.Timeout {
		c.connected = false
	}
	span.SetAttributes(telemetry.Bytes(len(got)))
	return got, recvErr
}

// SendNonBlocking submits a send as an event and returns immediately;
// cb is invoked from the network's worker thread once it completes.
// LimitReached if the event queue is full.
func (c *Client) SendNonBlocking(ctx context.Context, data []byte, timeout time.Duration, cb func(SendResult)) *alerr.Error {
	_, span := telemetry.StartProtocolSpan(ctx, "ipclient", "SendNonBlocking", telemetry.Socket(int(c.socket)))
	defer span.End()

	socket := c.socket
	return c.net.EventQueue().AddEvent(c.self, func() *alerr.Error {
		n, err := c.net.Transmit(socket, data, timeout)
		if err != nil && err.Code != alerr.Timeout {
			c.connected = false
		}
		cb(SendResult{Err: err, BytesWritten: n})
		return nil
	})
}

// ReceiveNonBlocking submits a receive as an event and returns
// immediately; cb is invoked from the network's worker thread once it
// completes.
func (c *Client) ReceiveNonBlocking(ctx context.Context, buf []byte, timeout time.Duration, cb func(ReceiveResult)) *alerr.Error {
	_, span := telemetry.StartProtocolSpan(ctx, "ipclient", "ReceiveNonBlocking", telemetry.Socket(int(c.socket)))
	defer span.End()

	socket := c.socket
	return c.net.EventQueue().AddEvent(c.self, func() *alerr.Error {
		got, err := c.net.Receive(socket, buf, timeout)
		if err != nil && err.Code != alerr.Timeout {
			c.connected = false
		}
		cb(ReceiveResult{Err: err, Buffer: got})
		return nil
	})
}
