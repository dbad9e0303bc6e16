package simplehttp

import (
	"io"
	"net"
	"time"

	"github.com/pkg/errors"
)

// Transport is the blocking byte-stream abstraction the core requires of
// the runtime (spec.md §4.1, §6). It is deliberately narrow: one
// connection, one direction of flow control at a time, no partial-send
// visibility.
type Transport interface {
	// Read performs a blocking receive into dst. n == 0 with a nil error
	// signals the peer closed its side (FIN observed).
	Read(dst []byte) (n int, err error)

	// Send blocks until the entire src has been handed to the kernel, or
	// returns a non-nil error.
	Send(src []byte) error

	// SetTimeout applies the same timeout to both future reads and sends.
	// Zero means "no deadline" (inherit whatever the platform default is).
	SetTimeout(timeout time.Duration) error

	// Close is idempotent; every call after the first is a no-op.
	Close() error

	// IsClosed reports whether Close has already run to completion.
	IsClosed() bool
}

// connTransport adapts a net.Conn (as handed out by net.Listener.Accept)
// to the Transport interface. It is the only Transport implementation this
// package ships; callers embedding simplehttp over a different socket
// layer supply their own.
type connTransport struct {
	conn   net.Conn
	closed bool
}

// NewTransport wraps conn as a Transport.
func NewTransport(conn net.Conn) Transport {
	return &connTransport{conn: conn}
}

func (t *connTransport) Read(dst []byte) (int, error) {
	n, err := t.conn.Read(dst)
	if err != nil {
		if isTimeout(err) {
			return n, ErrTimeout
		}
		if isEOF(err) {
			return n, nil
		}
		return n, ErrConnectionClosed
	}
	return n, nil
}

func (t *connTransport) Send(src []byte) error {
	for len(src) > 0 {
		n, err := t.conn.Write(src)
		if err != nil {
			if isTimeout(err) {
				return ErrTimeout
			}
			return ErrConnectionClosed
		}
		src = src[n:]
	}
	return nil
}

func (t *connTransport) SetTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return t.conn.SetDeadline(time.Time{})
	}
	return t.conn.SetDeadline(time.Now().Add(timeout))
}

func (t *connTransport) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	return t.conn.Close()
}

func (t *connTransport) IsClosed() bool {
	return t.closed
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	te, ok := err.(timeouter)
	return ok && te.Timeout()
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
