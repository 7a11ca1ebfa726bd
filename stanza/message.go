package stanza

import (
	"encoding/xml"

	"mellium.im/xmlstream"
	"wireglass.im/xmpp/internal/ns"
	"wireglass.im/xmpp/jid"
)

// Message is an XMPP stanza that is used for one-to-one and one-to-many
// exchange of information, most often to support the delivery of text
// messages between live entities.
type Message struct {
	XMLName xml.Name    `xml:"message"`
	ID      string      `xml:"id,attr"`
	To      *jid.JID    `xml:"to,attr"`
	From    *jid.JID    `xml:"from,attr"`
	Lang    string      `xml:"http://www.w3.org/XML/1998/namespace lang,attr,omitempty"`
	Type    MessageType `xml:"type,attr,omitempty"`
}

// MessageType is the type of a message stanza.
// It should normally be one of the constants defined in this package.
type MessageType string

const (
	// NormalMessage is a standalone message sent outside the context of a
	// one-to-one conversation or groupchat, and the most common default when a
	// message is sent without a type.
	NormalMessage MessageType = "normal"

	// ChatMessage is sent in the context of a one-to-one chat session.
	ChatMessage MessageType = "chat"

	// GroupChatMessage is sent in the context of a multi-user chat
	// environment.
	GroupChatMessage MessageType = "groupchat"

	// HeadlineMessage is sent in the context of a "headline" alerting
	// mechanism such as news or sports updates, stock quotes, or syndicated
	// content.
	HeadlineMessage MessageType = "headline"

	// ErrorMessage indicates that an error has occurred regarding processing
	// of a previously sent message stanza; if the message is of type "error",
	// it MUST include an <error/> child element.
	ErrorMessage MessageType = "error"
)

// NewMessage unmarshals a message stanza's start element into a Message,
// preserving its name and namespace. It returns an error if start does not
// represent a message.
func NewMessage(start xml.StartElement) (Message, error) {
	msg := Message{
		XMLName: start.Name,
	}
	if start.Name.Local != "message" {
		return msg, errStanzaStartElement("message", start.Name.Local)
	}
	for _, a := range start.Attr {
		switch {
		case a.Name.Local == "id":
			msg.ID = a.Value
		case a.Name.Local == "to":
			j, err := jid.Parse(a.Value)
			if err != nil {
				return msg, err
			}
			msg.To = j
		case a.Name.Local == "from":
			j, err := jid.Parse(a.Value)
			if err != nil {
				return msg, err
			}
			msg.From = j
		case a.Name.Local == "lang" && a.Name.Space == ns.XML:
			msg.Lang = a.Value
		case a.Name.Local == "type":
			msg.Type = MessageType(a.Value)
		}
	}
	return msg, nil
}

// StartElement returns a start element representing msg, preserving its
// namespace but normalizing its local name to "message".
func (msg Message) StartElement() xml.StartElement {
	attrs := []xml.Attr{}
	if msg.Type != "" {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "type"}, Value: string(msg.Type)})
	}
	if msg.To != nil {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "to"}, Value: msg.To.String()})
	}
	if msg.From != nil {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "from"}, Value: msg.From.String()})
	}
	if msg.ID != "" {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "id"}, Value: msg.ID})
	}
	if msg.Lang != "" {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Space: ns.XML, Local: "lang"}, Value: msg.Lang})
	}
	return xml.StartElement{
		Name: xml.Name{Space: msg.XMLName.Space, Local: "message"},
		Attr: attrs,
	}
}

// Wrap wraps payload in a message stanza using msg as the message's
// attributes.
func (msg Message) Wrap(payload xml.TokenReader) xml.TokenReader {
	return xmlstream.Wrap(payload, msg.StartElement())
}
