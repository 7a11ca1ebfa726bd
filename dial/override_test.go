package dial_test

import (
	"context"
	"errors"
	"net"
	"strconv"
	"testing"

	"wireglass.im/xmpp/dial"
	"wireglass.im/xmpp/jid"
)

func TestDialOverridePeer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listening: %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("splitting listener address: %v", err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		t.Fatalf("parsing listener port: %v", err)
	}

	d := dial.Dialer{
		NoTLS: true,
		OverridePeer: []dial.Endpoint{
			{Host: host, Port: uint16(port)},
		},
	}
	conn, err := d.DialServer(context.Background(), "tcp", *jid.MustParse("user@example.org"), "example.org")
	if err != nil {
		t.Fatalf("DialServer with OverridePeer: %v", err)
	}
	conn.Close()
}

func TestDialOverridePeerSkipsAllUnreachable(t *testing.T) {
	d := dial.Dialer{
		NoTLS: true,
		OverridePeer: []dial.Endpoint{
			{Host: "127.0.0.1", Port: 1}, // nothing listens here
		},
	}
	_, err := d.DialServer(context.Background(), "tcp", *jid.MustParse("user@example.org"), "example.org")
	if err == nil {
		t.Fatal("expected an error dialing an unreachable OverridePeer endpoint")
	}
}

func TestTLSErrorUnwraps(t *testing.T) {
	inner := errors.New("boom")
	err := &dial.TLSError{Endpoint: "example.org:5223", Err: inner}
	if !errors.Is(err, inner) {
		t.Fatal("TLSError should unwrap to its underlying error")
	}
}
