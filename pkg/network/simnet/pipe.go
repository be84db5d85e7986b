package simnet

import (
	"net"
	"sync"
	"time"

	"github.com/benhaub/abstractionlayer/pkg/alerr"
)

// pipeConn wraps one end of a net.Pipe with the Timeout/
// PrerequisitesNotMet mapping Transmit/Receive need, and a one-time
// Close so CloseConnection/Disconnect racing each other is harmless.
type pipeConn struct {
	conn     net.Conn
	closeOnce sync.Once
}

func newPipe() (*pipeConn, *pipeConn) {
	a, b := net.Pipe()
	return &pipeConn{conn: a}, &pipeConn{conn: b}
}

func (p *pipeConn) Close() {
	p.closeOnce.Do(func() { _ = p.conn.Close() })
}

func (p *pipeConn) Write(frame []byte, timeout time.Duration) (int, *alerr.Error) {
	_ = p.conn.SetWriteDeadline(time.Now().Add(timeout))
	n, err := p.conn.Write(frame)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return n, alerr.New(alerr.Timeout, "simnet: write timed out")
		}
		return n, alerr.Wrap(alerr.PrerequisitesNotMet, err, "simnet: write")
	}
	return n, nil
}

func (p *pipeConn) Read(buf []byte, timeout time.Duration) ([]byte, *alerr.Error) {
	_ = p.conn.SetReadDeadline(time.Now().Add(timeout))
	n, err := p.conn.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return buf[:n], alerr.New(alerr.Timeout, "simnet: read timed out")
		}
		return buf[:n], alerr.Wrap(alerr.PrerequisitesNotMet, err, "simnet: read")
	}
	return buf[:n], nil
}
