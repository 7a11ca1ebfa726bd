package xmpp

import (
	"encoding/xml"

	"mellium.im/xmlstream"
)

// A Handler responds to an individual top-level stanza or nonza read from a
// session's input stream. HandleXMPP is called with a reader positioned
// just after the element's start token (so that it may read the element's
// children) and a token writer for sending a reply on the same stream.
type Handler interface {
	HandleXMPP(t xmlstream.TokenReadEncoder, start *xml.StartElement) error
}

// HandlerFunc is an adapter to allow the use of ordinary functions as
// Handlers. If f is a function with the appropriate signature,
// HandlerFunc(f) is a Handler that calls f.
type HandlerFunc func(t xmlstream.TokenReadEncoder, start *xml.StartElement) error

// HandleXMPP calls f(t, start).
func (f HandlerFunc) HandleXMPP(t xmlstream.TokenReadEncoder, start *xml.StartElement) error {
	return f(t, start)
}
