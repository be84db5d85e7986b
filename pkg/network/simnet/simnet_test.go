package simnet

import (
	"context"
	"testing"
	"time"

	"github.com/benhaub/abstractionlayer/pkg/alid"
	"github.com/benhaub/abstractionlayer/pkg/eventqueue"
	"github.com/benhaub/abstractionlayer/pkg/network"
	"github.com/benhaub/abstractionlayer/pkg/osal"
)

func newTestInterface(t *testing.T, owner osal.Id) *Interface {
	t.Helper()
	os := osal.Get()
	q, err := eventqueue.New(os, owner, nil)
	if err != nil {
		t.Fatalf("eventqueue.New: %v", err)
	}
	return New(q)
}

func TestConnectAcceptEcho(t *testing.T) {
	server := newTestInterface(t, osal.Id(100))
	client := newTestInterface(t, osal.Id(101))

	port := alid.Port(45001)
	listener, err := server.ListenTo(network.ProtocolTCP, network.IPv4, port)
	if err != nil {
		t.Fatalf("ListenTo: %v", err)
	}
	defer func() { _ = server.CloseConnection(listener) }()

	clientDone := make(chan alid.Socket, 1)
	go func() {
		sock, err := client.ConnectTo(context.Background(), "localhost", port, network.ProtocolTCP, network.IPv4, time.Second)
		if err != nil {
			t.Errorf("ConnectTo: %v", err)
			return
		}
		clientDone <- sock
	}()

	serverSock, err := server.AcceptConnection(listener, time.Second)
	if err != nil {
		t.Fatalf("AcceptConnection: %v", err)
	}

	clientSock := <-clientDone

	if _, err := client.Transmit(clientSock, []byte("hello"), time.Second); err != nil {
		t.Fatalf("Transmit: %v", err)
	}

	buf := make([]byte, 16)
	got, err := server.Receive(serverSock, buf, time.Second)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("expected 'hello', got %q", got)
	}
}

func TestConnectToUnknownPortFails(t *testing.T) {
	client := newTestInterface(t, osal.Id(102))
	_, err := client.ConnectTo(context.Background(), "localhost", alid.Port(1), network.ProtocolTCP, network.IPv4, 20*time.Millisecond)
	if err == nil {
		t.Fatal("expected error connecting to a port with no listener")
	}
}

func TestDisconnectIdempotentOnUnbound(t *testing.T) {
	client := newTestInterface(t, osal.Id(103))
	if err := client.Disconnect(alid.Unbound); err != nil {
		t.Fatalf("expected Success disconnecting unbound socket, got %v", err)
	}
}
