package xmpptest

import (
	"context"
	"encoding/xml"
	"io"
	"net"

	"mellium.im/xmlstream"
	"wireglass.im/xmpp"
	"wireglass.im/xmpp/jid"
)

// ServerHandlerFunc wraps a function as an xmpp.Handler that runs on the
// server end of a ClientServer pipe.
type ServerHandlerFunc = xmpp.HandlerFunc

// ClientHandlerFunc wraps a function as an xmpp.Handler that runs on the
// client end of a ClientServer pipe.
type ClientHandlerFunc = xmpp.HandlerFunc

// ClientServer is a pair of in-memory connected XMPP sessions suitable for
// exercising stanza-level behavior without a network or a real server.
type ClientServer struct {
	Client *xmpp.Session
	Server *xmpp.Session

	done chan error
}

func discardHandler(t xmlstream.TokenReadEncoder, start *xml.StartElement) error {
	_, err := xmlstream.Copy(xmlstream.Discard(), xmlstream.Inner(t))
	return err
}

// NewClientServer creates a connected client/server session pair backed by a
// net.Pipe. The server handler is run immediately in the background; if a
// client handler is provided it is also served in the background, otherwise
// incoming client-side elements are discarded.
func NewClientServer(serverHandler xmpp.Handler, clientHandler ...xmpp.Handler) *ClientServer {
	clientConn, serverConn := net.Pipe()

	origin := jid.MustParse("test@example.net")
	location := jid.MustParse("example.net")

	client, err := xmpp.NegotiateSession(
		context.Background(), origin.Domain(), origin, clientConn,
		readySessionNegotiator(0),
	)
	if err != nil {
		panic(err)
	}
	server, err := xmpp.NegotiateSession(
		context.Background(), location, origin, serverConn,
		readySessionNegotiator(xmpp.Received),
	)
	if err != nil {
		panic(err)
	}

	ch := discardHandler
	if len(clientHandler) > 0 && clientHandler[0] != nil {
		ch = clientHandler[0].HandleXMPP
	}

	done := make(chan error, 2)
	go func() { done <- server.Serve(serverHandler) }()
	go func() { done <- client.Serve(xmpp.HandlerFunc(ch)) }()

	return &ClientServer{Client: client, Server: server, done: done}
}

// Close shuts down both ends of the pipe and waits for their Serve loops to
// return.
func (cs *ClientServer) Close() error {
	if err := cs.Client.Close(); err != nil {
		return err
	}
	if err := cs.Server.Close(); err != nil {
		return err
	}
	<-cs.done
	<-cs.done
	return nil
}

func readySessionNegotiator(state xmpp.SessionState) xmpp.Negotiator {
	return func(_ context.Context, _ *xmpp.Session, _ interface{}) (xmpp.SessionState, io.ReadWriter, interface{}, error) {
		return state | xmpp.Ready, nil, nil, nil
	}
}
