package stanza

import (
	"encoding/xml"

	"mellium.im/xmlstream"
	"wireglass.im/xmpp/internal/attr"
	"wireglass.im/xmpp/jid"
)

const (
	// NSClient is the stanza namespace used over a client-to-server
	// connection.
	NSClient = "jabber:client"

	// NSServer is the stanza namespace used over a server-to-server
	// connection.
	NSServer = "jabber:server"

	// NSSID is the namespace used by XEP-0359: Unique and Stable Stanza IDs.
	NSSID = "urn:xmpp:sid:0"

	// NSDelay is the namespace used by XEP-0203: Delayed Delivery.
	NSDelay = "urn:xmpp:delay"
)

func isRootStanza(start xml.StartElement, ns string) bool {
	if start.Name.Space != ns {
		return false
	}
	switch start.Name.Local {
	case "message", "iq", "presence":
		return true
	}
	return false
}

// AddOriginID returns a token stream that inserts an origin-id as defined by
// XEP-0359 into the first top-level stanza read from r, if that stanza's
// namespace matches ns. If the root element is not a message, iq, or
// presence stanza in the given namespace, r is passed through unmodified.
func AddOriginID(r xml.TokenReader, ns string) xml.TokenReader {
	return &idInserter{
		r:     r,
		ns:    ns,
		local: "origin-id",
		attrs: []xml.Attr{{Name: xml.Name{Local: "id"}, Value: attr.RandomID()}},
	}
}

// AddID returns a transformer that inserts a stanza-id as defined by
// XEP-0359 into the first top-level stanza read from its input, stamped
// with by, if that stanza's namespace matches ns.
func AddID(by *jid.JID, ns string) xmlstream.Transformer {
	return func(r xml.TokenReader) xml.TokenReader {
		return &idInserter{
			r:     r,
			ns:    ns,
			local: "stanza-id",
			attrs: []xml.Attr{
				{Name: xml.Name{Local: "id"}, Value: attr.RandomID()},
				{Name: xml.Name{Local: "by"}, Value: by.String()},
			},
		}
	}
}

// idInserter inserts a single child element as the last child of the root
// stanza in a token stream, provided that stanza matches a given namespace.
type idInserter struct {
	r     xml.TokenReader
	ns    string
	local string
	attrs []xml.Attr

	started bool
	match   bool
	depth   int
	queue   []xml.Token
}

func (ins *idInserter) Token() (xml.Token, error) {
	if len(ins.queue) > 0 {
		tok := ins.queue[0]
		ins.queue = ins.queue[1:]
		return tok, nil
	}

	tok, err := ins.r.Token()
	if err != nil {
		return tok, err
	}

	if !ins.started {
		ins.started = true
		if start, ok := tok.(xml.StartElement); ok && isRootStanza(start, ins.ns) {
			ins.match = true
			ins.depth = 1
		}
		return tok, nil
	}
	if !ins.match {
		return tok, nil
	}

	switch t := tok.(type) {
	case xml.StartElement:
		ins.depth++
	case xml.EndElement:
		ins.depth--
		if ins.depth == 0 {
			ins.match = false
			name := xml.Name{Space: NSSID, Local: ins.local}
			ins.queue = []xml.Token{
				xml.StartElement{Name: name, Attr: ins.attrs},
				xml.EndElement{Name: name},
				t,
			}
			return ins.Token()
		}
	}
	return tok, nil
}
