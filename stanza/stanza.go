// Package stanza contains functionality for interacting with the basic
// building blocks of most XMPP communication: the message, presence, and
// info/query (IQ) stanzas.
package stanza // import "wireglass.im/xmpp/stanza"

import (
	"encoding/xml"
	"fmt"
)

func errStanzaStartElement(want, got string) error {
	return fmt.Errorf("stanza: expected start element for <%s/>, got <%s/>", want, got)
}

// WrapIQ wraps payload in the IQ stanza iq.
//
// It exists as a convenience for constructing an IQ and wrapping a payload
// in it in a single expression; iq.Wrap does the same thing given an
// already constructed IQ.
func WrapIQ(iq IQ, payload xml.TokenReader) xml.TokenReader {
	return iq.Wrap(payload)
}

// WrapMessage wraps payload in the message stanza msg.
func WrapMessage(msg Message, payload xml.TokenReader) xml.TokenReader {
	return msg.Wrap(payload)
}

// WrapPresence wraps payload in the presence stanza p.
func WrapPresence(p Presence, payload xml.TokenReader) xml.TokenReader {
	return p.Wrap(payload)
}
