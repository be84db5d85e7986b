// Package ipserver implements the serialise-and-wait IP server: it
// mirrors pkg/ipclient but owns a listener plus a slice of accepted
// sockets instead of a single connection, and can receive from
// whichever accepted socket has data first.
package ipserver

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

// ReceiveResult is delivered to a ReceiveNonBlocking callback, naming
// the accepted socket the data came from.
type ReceiveResult struct {
	Err    *alerr.Error
	Socket alid.Socket
	Buffer []byte
}

// Server is an IP server bound to one network.NetworkInterface. Like
// Client, it holds a non-owning reference to the interface.
type Server struct {
	os   *osal.Service
	net  network.NetworkInterface
	self osal.Id

	listener alid.Socket
	accepted []alid.Socket
}

// New creates a Server driven by self's logical thread Id against net.
func New(os *osal.Service, net network.NetworkInterface, self osal.Id) *Server {
	return &Server{os: os, net: net, self: self, listener: alid.Unbound}
}

// Listening reports whether the server currently owns a listener.
func (s *Server) Listening() bool { return s.listener.IsBound() }

// Accepted returns a copy of the currently accepted sockets, in
// insertion order.
func (s *Server) Accepted() []alid.Socket {
	out := make([]alid.Socket, len(s.accepted))
	copy(out, s.accepted)
	return out
}

// ListenTo closes any prior listener, then opens a new one.
func (s *Server) ListenTo(ctx context.Context, protocol network.Protocol, version network.IPVersion, port alid.Port) *alerr.Error {
	_, span := telemetry.StartProtocolSpan(ctx, "ipserver", "ListenTo", telemetry.Port(int(port)))
	defer span.End()

	if s.listener.IsBound() {
		if err := s.CloseConnection(context.Background(), s.listener); err != nil {
			return err
		}
	}

	completion := osal.NewCompletion[alid.Socket](s.os, s.self)
	err := s.net.EventQueue().AddEvent(s.self, func() *alerr.Error {
		sock, err := s.net.ListenTo(protocol, version, port)
		completion.Signal(sock, err)
		return nil
	})
	if err != nil {
		return err
	}

	sock, listenErr := completion.Wait()
	if listenErr != nil {
		return listenErr
	}
	s.listener = sock
	return nil
}

// AcceptConnection blocks until a new connection arrives on the
// listener or timeout elapses, appending the accepted socket to the
// server's accepted slice. Appending happens on the network's worker
// goroutine, never on the caller's.
func (s *Server) AcceptConnection(ctx context.Context, timeout time.Duration) (alid.Socket, *alerr.Error) {
	_, span := telemetry.StartProtocolSpan(ctx, "ipserver", "AcceptConnection", telemetry.Socket(int(s.listener)))
	defer span.End()

	if !s.listener.IsBound() {
		return alid.Unbound, alerr.New(alerr.PrerequisitesNotMet, "ipserver: not listening")
	}

	listener := s.listener
	completion := osal.NewCompletion[alid.Socket](s.os, s.self)
	err := s.net.EventQueue().AddEvent(s.self, func() *alerr.Error {
		sock, err := s.net.AcceptConnection(listener, timeout)
		if err == nil {
			s.accepted = append(s.accepted, sock)
		}
		completion.Signal(sock, err)
		return nil
	})
	if err != nil {
		return alid.Unbound, err
	}
	return completion.Wait()
}

// CloseConnection closes socket, whether it is the listener or one of
// the accepted connections, and erases it from the server's
// bookkeeping. NoData if socket is not known to this server.
func (s *Server) CloseConnection(ctx context.Context, socket alid.Socket) *alerr.Error {
	_, span := telemetry.StartProtocolSpan(ctx, "ipserver", "CloseConnection", telemetry.Socket(int(socket)))
	defer span.End()

	known := socket.IsBound() && socket == s.listener
	for _, sock := range s.accepted {
		if sock == socket {
			known = true
			break
		}
	}
	if !known {
		return alerr.New(alerr.NoData, "ipserver: socket %d is not known to this server", socket)
	}

	completion := osal.NewCompletion[struct{}](s.os, s.self)
	err := s.net.EventQueue().AddEvent(s.self, func() *alerr.Error {
		err := s.net.CloseConnection(socket)
		completion.Signal(struct{}{}, err)
		return nil
	})
	if err != nil {
		return err
	}
	_, closeErr := completion.Wait()

	if socket == s.listener {
		s.listener = alid.Unbound
	}
	for i, sock := range s.accepted {
		if sock == socket {
			s.accepted = append(s.accepted[:i], s.accepted[i+1:]...)
			break
		}
	}
	return closeErr
}

// SendBlocking transmits data on socket, one of the server's accepted
// connections.
func (s *Server) SendBlocking(ctx context.Context, socket alid.Socket, data []byte, timeout time.Duration) (int, *alerr.Error) {
	_, span := telemetry.StartProtocolSpan(ctx, "ipserver", "SendBlocking", telemetry.Socket(int(socket)))
	defer span.End()

	completion := osal.NewCompletion[int](s.os, s.self)
	err := s.net.EventQueue().AddEvent(s.self, func() *alerr.Error {
		n, err := s.net.Transmit(socket, data, timeout)
		completion.Signal(n, err)
		return nil
	})
	if err != nil {
		return 0, err
	}
	n, sendErr := completion.Wait()
	span.SetAttributes(telemetry.Bytes(n))
	return n, sendErr
}

// receiveResult pairs a read with the socket it came from.
type receiveResult struct {
	socket alid.Socket
	buf    []byte
}

// ReceiveBlocking polls the server's accepted sockets in insertion
// order for the first one with data available within timeout,
// matching the C original's socket=-1 "receive from anything" mode.
func (s *Server) ReceiveBlocking(ctx context.Context, buf []byte, timeout time.Duration) (alid.Socket, []byte, *alerr.Error) {
	_, span := telemetry.StartProtocolSpan(ctx, "ipserver", "ReceiveBlocking")
	defer span.End()

	deadline := time.Now().Add(timeout)
	for {
		sockets := s.Accepted()
		for _, sock := range sockets {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return alid.Unbound, nil, alerr.New(alerr.Timeout, "ipserver: receive timed out")
			}
			completion := osal.NewCompletion[receiveResult](s.os, s.self)
			err := s.net.EventQueue().AddEvent(s.self, func() *alerr.Error {
				got, err := s.net.Receive(sock, buf, time.Millisecond)
				completion.Signal(receiveResult{socket: sock, buf: got}, err)
				return nil
			})
			if err != nil {
				return alid.Unbound, nil, err
			}
			result, recvErr := completion.Wait()
			if recvErr == nil {
				return result.socket, result.buf, nil
			}
			if recvErr.Code != alerr.Timeout {
				return alid.Unbound, nil, recvErr
			}
		}
		if len(sockets) == 0 || time.Now().After(deadline) {
			return alid.Unbound, nil, alerr.New(alerr.Timeout, "ipserver: receive timed out")
		}
	}
}

// SendNonBlocking submits a send on socket as an event and returns
// immediately.
func (s *Server) SendNonBlocking(ctx context.Context, socket alid.Socket, data []byte, timeout time.Duration, cb func(SendResult)) *alerr.Error {
	_, span := telemetry.StartProtocolSpan(ctx, "ipserver", "SendNonBlocking", telemetry.Socket(int(socket)))
	defer span.End()

	return s.net.EventQueue().AddEvent(s.self, func() *alerr.Error {
		n, err := s.net.Transmit(socket, data, timeout)
		cb(SendResult{Err: err, BytesWritten: n})
		return nil
	})
}

// ReceiveNonBlocking submits a receive on socket as an event and
// returns immediately; cb receives the producing socket.
func (s *Server) ReceiveNonBlocking(ctx context.Context, socket alid.Socket, buf []byte, timeout time.Duration, cb func(ReceiveResult)) *alerr.Error {
	_, span := telemetry.StartProtocolSpan(ctx, "ipserver", "ReceiveNonBlocking", telemetry.Socket(int(socket)))
	defer span.End()

	return s.net.EventQueue().AddEvent(s.self, func() *alerr.Error {
		got, err := s.net.Receive(socket, buf, timeout)
		cb(ReceiveResult{Err: err, Socket: socket, Buffer: got})
		return nil
	})
}
