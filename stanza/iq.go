package stanza

import (
	"encoding/xml"
	"errors"

	"mellium.im/xmlstream"
	"wireglass.im/xmpp/internal/ns"
	"wireglass.im/xmpp/jid"
)

// Errors returned by the stanza package.
var (
	ErrEmptyIQType = errors.New("stanza: empty IQ type")
)

// IQ ("Information Query") is used as a general request response mechanism.
// IQ's are one-to-one, provide get and set semantics, and always require a
// response in the form of a result or an error.
type IQ struct {
	XMLName xml.Name `xml:"iq"`
	ID      string   `xml:"id,attr"`
	To      *jid.JID `xml:"to,attr"`
	From    *jid.JID `xml:"from,attr"`
	Lang    string   `xml:"http://www.w3.org/XML/1998/namespace lang,attr,omitempty"`
	Type    IQType   `xml:"type,attr"`
}

// IQType is the type of an IQ stanza.
// It should normally be one of the constants defined in this package.
type IQType string

const (
	// GetIQ is used to query another entity for information.
	GetIQ IQType = "get"

	// SetIQ is used to provide data to another entity, set new values, and
	// replace existing values.
	SetIQ IQType = "set"

	// ResultIQ is sent in response to a successful get or set IQ.
	ResultIQ IQType = "result"

	// ErrorIQ is sent to report that an error occurred during the delivery or
	// processing of a get or set IQ.
	ErrorIQ IQType = "error"
)

// MarshalXMLAttr satisfies the xml.MarshalerAttr interface for IQType.
// It returns ErrEmptyIQType when trying to marshal a IQ stanza with an empty
// type attribute.
func (t IQType) MarshalXMLAttr(name xml.Name) (attr xml.Attr, err error) {
	s := string(t)
	if s == "" {
		return attr, ErrEmptyIQType
	}
	attr.Name = name
	attr.Value = s
	return attr, nil
}

// NewIQ unmarshals an IQ stanza's start element into an IQ, preserving its
// name and namespace. Unlike Unmarshal, it does not require that the start
// element's local name be "iq"; this lets callers read an IQ out of an
// element that was only known to be an IQ by context, such as a <forwarded/>
// payload.
func NewIQ(start xml.StartElement) (IQ, error) {
	iq := IQ{
		XMLName: start.Name,
	}
	for _, a := range start.Attr {
		switch {
		case a.Name.Local == "id":
			iq.ID = a.Value
		case a.Name.Local == "to":
			j, err := jid.Parse(a.Value)
			if err != nil {
				return iq, err
			}
			iq.To = j
		case a.Name.Local == "from":
			j, err := jid.Parse(a.Value)
			if err != nil {
				return iq, err
			}
			iq.From = j
		case a.Name.Local == "lang" && a.Name.Space == ns.XML:
			iq.Lang = a.Value
		case a.Name.Local == "type":
			iq.Type = IQType(a.Value)
		}
	}
	return iq, nil
}

// StartElement returns a start element representing iq, preserving its
// namespace but normalizing its local name to "iq".
func (iq IQ) StartElement() xml.StartElement {
	attrs := []xml.Attr{}
	if iq.Type != "" {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "type"}, Value: string(iq.Type)})
	}
	if iq.To != nil {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "to"}, Value: iq.To.String()})
	}
	if iq.From != nil {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "from"}, Value: iq.From.String()})
	}
	if iq.ID != "" {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "id"}, Value: iq.ID})
	}
	if iq.Lang != "" {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Space: ns.XML, Local: "lang"}, Value: iq.Lang})
	}
	return xml.StartElement{
		Name: xml.Name{Space: iq.XMLName.Space, Local: "iq"},
		Attr: attrs,
	}
}

// Wrap wraps payload in an IQ stanza using iq as the IQ's attributes.
func (iq IQ) Wrap(payload xml.TokenReader) xml.TokenReader {
	return xmlstream.Wrap(payload, iq.StartElement())
}

// Result returns a new IQ that is a valid response to iq: its to and from
// are swapped and its type is set to "result", wrapping payload as its
// contents.
func (iq IQ) Result(payload xml.TokenReader) xml.TokenReader {
	iq.To, iq.From = iq.From, iq.To
	iq.Type = ResultIQ
	return iq.Wrap(payload)
}
