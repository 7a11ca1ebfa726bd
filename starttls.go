package xmpp

import (
	"context"
	"crypto/tls"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net"

	"mellium.im/xmlstream"
	"wireglass.im/xmpp/internal/ns"
	"wireglass.im/xmpp/stream"
)

// BUG(ssw): STARTTLS feature does not have security layer byte precision.

// ErrTLSUpgradeFailed is returned when the underlying connection cannot be
// upgraded to TLS (eg. because it is not a net.Conn).
var ErrTLSUpgradeFailed = errors.New("xmpp: the underlying connection cannot be upgraded to TLS")

// StartTLS returns a stream feature that negotiates TLS on the underlying
// connection as described in RFC 6120 §5. If required is true the feature
// is advertised as mandatory-to-negotiate. For StartTLS to work, the
// underlying connection must implement net.Conn.
//
// A nil tlsConfig causes a minimal configuration to be constructed using the
// session's remote address as the server name.
func StartTLS(required bool, tlsConfig *tls.Config) StreamFeature {
	return StreamFeature{
		Name:       xml.Name{Local: "starttls", Space: ns.StartTLS},
		Prohibited: Secure,
		List: func(ctx context.Context, e *xml.Encoder, start xml.StartElement) (req bool, err error) {
			if err = e.EncodeToken(start); err != nil {
				return required, err
			}
			if required {
				startRequired := xml.StartElement{Name: xml.Name{Local: "required"}}
				if err = e.EncodeToken(startRequired); err != nil {
					return required, err
				}
				if err = e.EncodeToken(startRequired.End()); err != nil {
					return required, err
				}
			}
			return required, e.EncodeToken(start.End())
		},
		Parse: func(ctx context.Context, r xmlstream.TokenReader, start *xml.StartElement) (bool, interface{}, error) {
			parsed := struct {
				XMLName  xml.Name `xml:"urn:ietf:params:xml:ns:xmpp-tls starttls"`
				Required struct {
					XMLName xml.Name `xml:"urn:ietf:params:xml:ns:xmpp-tls required"`
				}
			}{}
			err := xml.NewTokenDecoder(r).DecodeElement(&parsed, start)
			return parsed.Required.XMLName.Local == "required", nil, err
		},
		Negotiate: func(ctx context.Context, session *Session, data interface{}) (mask SessionState, rw io.ReadWriter, err error) {
			conn := session.Conn()
			netConn, ok := conn.Raw().(net.Conn)
			if !ok {
				return mask, nil, ErrTLSUpgradeFailed
			}

			conf := tlsConfig
			if conf == nil {
				conf = &tls.Config{ServerName: session.RemoteAddr().Domainpart()}
			}

			if (session.State() & Received) == Received {
				if _, err = fmt.Fprint(conn, `<proceed xmlns='urn:ietf:params:xml:ns:xmpp-tls'/>`); err != nil {
					return mask, nil, err
				}
				return Secure, tls.Server(netConn, conf), nil
			}

			if _, err = fmt.Fprint(conn, `<starttls xmlns='urn:ietf:params:xml:ns:xmpp-tls'/>`); err != nil {
				return mask, nil, err
			}

			tok, err := session.Token()
			if err != nil {
				return mask, nil, err
			}
			start, ok := tok.(xml.StartElement)
			if !ok {
				return mask, nil, stream.RestrictedXML
			}
			switch {
			case start.Name.Space != ns.StartTLS:
				return mask, nil, stream.UnsupportedStanzaType
			case start.Name.Local == "proceed":
				d := xml.NewTokenDecoder(session)
				if err = d.Skip(); err != nil {
					return mask, nil, stream.InvalidXML
				}
				return Secure, tls.Client(netConn, conf), nil
			case start.Name.Local == "failure":
				d := xml.NewTokenDecoder(session)
				if err = d.Skip(); err != nil {
					return mask, nil, stream.InvalidXML
				}
				// The server closes the stream immediately after <failure/>; this is
				// not itself an error condition that callers need to act on here.
				return mask, nil, nil
			default:
				return mask, nil, stream.UnsupportedStanzaType
			}
		},
	}
}
