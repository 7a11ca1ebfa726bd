package stanza

import (
	"encoding/xml"

	"mellium.im/xmlstream"
	"wireglass.im/xmpp/internal/ns"
	"wireglass.im/xmpp/jid"
)

// Presence is an XMPP stanza that is used as an indication that an entity is
// available for communication. It is used to set a status message, broadcast
// availability, and advertise entity capabilities. It can be directed
// (one-to-one), or used as a broadcast mechanism (one-to-many).
type Presence struct {
	XMLName xml.Name     `xml:"presence"`
	ID      string       `xml:"id,attr"`
	To      *jid.JID     `xml:"to,attr"`
	From    *jid.JID     `xml:"from,attr"`
	Lang    string       `xml:"http://www.w3.org/XML/1998/namespace lang,attr,omitempty"`
	Type    PresenceType `xml:"type,attr,omitempty"`
}

// PresenceType is the type of a presence stanza.
// It should normally be one of the constants defined in this package.
type PresenceType string

// presenceType is an unexported alias used internally so that the package can
// refer to the type without stuttering on PresenceType in doc comments and
// tests.
type presenceType = PresenceType

// String satisfies the fmt.Stringer interface.
func (t PresenceType) String() string {
	return string(t)
}

const (
	// AvailablePresence is the zero value of PresenceType and represents
	// ordinary availability, the most common type of presence broadcast.
	AvailablePresence PresenceType = ""

	// ErrorPresence indicates that an error has occurred regarding processing of
	// a previously sent presence stanza; if the presence stanza is of type
	// "error", it MUST include an <error/> child element
	ErrorPresence PresenceType = "error"

	// ProbePresence is a request for an entity's current presence. It should
	// generally only be generated and sent by servers on behalf of a user.
	ProbePresence PresenceType = "probe"

	// SubscribePresence is sent when the sender wishes to subscribe to the
	// recipient's presence.
	SubscribePresence PresenceType = "subscribe"

	// SubscribedPresence indicates that the sender has allowed the recipient to
	// receive future presence broadcasts.
	SubscribedPresence PresenceType = "subscribed"

	// UnavailablePresence indicates that the sender is no longer available for
	// communication.
	UnavailablePresence PresenceType = "unavailable"

	// UnsubscribePresence indicates that the sender is unsubscribing from the
	// receiver's presence.
	UnsubscribePresence PresenceType = "unsubscribe"

	// UnsubscribedPresence indicates that the subscription request has been
	// denied, or a previously granted subscription has been revoked.
	UnsubscribedPresence PresenceType = "unsubscribed"
)

// NewPresence unmarshals a presence stanza's start element into a Presence,
// preserving its name and namespace. It returns an error if start does not
// represent a presence stanza.
func NewPresence(start xml.StartElement) (Presence, error) {
	p := Presence{
		XMLName: start.Name,
	}
	if start.Name.Local != "presence" {
		return p, errStanzaStartElement("presence", start.Name.Local)
	}
	for _, a := range start.Attr {
		switch {
		case a.Name.Local == "id":
			p.ID = a.Value
		case a.Name.Local == "to":
			j, err := jid.Parse(a.Value)
			if err != nil {
				return p, err
			}
			p.To = j
		case a.Name.Local == "from":
			j, err := jid.Parse(a.Value)
			if err != nil {
				return p, err
			}
			p.From = j
		case a.Name.Local == "lang" && a.Name.Space == ns.XML:
			p.Lang = a.Value
		case a.Name.Local == "type":
			p.Type = PresenceType(a.Value)
		}
	}
	return p, nil
}

// StartElement returns a start element representing p, preserving its
// namespace but normalizing its local name to "presence".
func (p Presence) StartElement() xml.StartElement {
	attrs := []xml.Attr{}
	if p.Type != "" {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "type"}, Value: string(p.Type)})
	}
	if p.To != nil {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "to"}, Value: p.To.String()})
	}
	if p.From != nil {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "from"}, Value: p.From.String()})
	}
	if p.ID != "" {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "id"}, Value: p.ID})
	}
	if p.Lang != "" {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Space: ns.XML, Local: "lang"}, Value: p.Lang})
	}
	return xml.StartElement{
		Name: xml.Name{Space: p.XMLName.Space, Local: "presence"},
		Attr: attrs,
	}
}

// Wrap wraps payload in a presence stanza using p as the presence's
// attributes.
func (p Presence) Wrap(payload xml.TokenReader) xml.TokenReader {
	return xmlstream.Wrap(payload, p.StartElement())
}
