package xmpp

import (
	"crypto/tls"
	"io"
)

// Conn wraps the io.ReadWriter backing a Session so that stream features
// (STARTTLS, SASL) can inspect or swap out the underlying transport without
// the rest of the session needing to know whether it is looking at a raw TCP
// socket, a *tls.Conn, or a test double.
type Conn struct {
	rw io.ReadWriter
}

func newConn(rw io.ReadWriter) *Conn {
	if c, ok := rw.(*Conn); ok {
		return c
	}
	return &Conn{rw: rw}
}

// Read implements io.Reader.
func (c *Conn) Read(p []byte) (int, error) {
	return c.rw.Read(p)
}

// Write implements io.Writer.
func (c *Conn) Write(p []byte) (int, error) {
	return c.rw.Write(p)
}

// ConnectionState returns the TLS connection state of the underlying
// transport and reports whether the transport is actually secured with TLS.
func (c *Conn) ConnectionState() (tls.ConnectionState, bool) {
	tlsConn, ok := c.rw.(interface {
		ConnectionState() tls.ConnectionState
	})
	if !ok {
		return tls.ConnectionState{}, false
	}
	return tlsConn.ConnectionState(), true
}

// Raw returns the underlying transport so that a stream feature (eg.
// STARTTLS) can type-assert it to something more specific, such as
// net.Conn, in order to wrap it in a new layer.
func (c *Conn) Raw() io.ReadWriter {
	return c.rw
}
