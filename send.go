package xmpp

import (
	"context"
	"encoding/xml"
	"errors"

	"mellium.im/xmlstream"
	"wireglass.im/xmpp/internal/attr"
	"wireglass.im/xmpp/internal/marshal"
	"wireglass.im/xmpp/stanza"
)

// ErrNotStart is returned when a token stream that was expected to begin with
// a start element does not.
var ErrNotStart = errors.New("xmpp: expected a start element")

// isIQEmptySpace reports whether name is an IQ in the default c2s or s2s
// namespace, or with no namespace at all (as will be the case for most
// stanzas read off the wire by a client, where the namespace is inherited
// from the enclosing stream and not repeated on the stanza itself).
func isIQEmptySpace(name xml.Name) bool {
	return name.Local == "iq" && (name.Space == "" || name.Space == stanza.NSClient || name.Space == stanza.NSServer)
}

// getIDTyp extracts the index and value of the "id" attribute and the value
// of the "type" attribute from a stanza's start element attributes. idIdx is
// -1 if no "id" attribute is present.
func getIDTyp(attrs []xml.Attr) (idIdx int, typIdx int, id, typ string) {
	idIdx, id = attr.Get(attrs, "id")
	typIdx, typ = attr.Get(attrs, "type")
	return idIdx, typIdx, id, typ
}

// isRequestIQ reports whether typ is the type attribute of an IQ that
// demands a response (ie. "get" or "set").
func isRequestIQ(typ string) bool {
	return typ == string(stanza.GetIQ) || typ == string(stanza.SetIQ)
}

// responseID returns the "id" of start if it represents a stanza that could
// be the response to something we previously sent—that is, any message or
// presence, or an IQ of type "result" or "error"—and the empty string
// otherwise.
func responseID(start xml.StartElement) string {
	switch {
	case isIQEmptySpace(start.Name):
		_, _, id, typ := getIDTyp(start.Attr)
		if isRequestIQ(typ) {
			return ""
		}
		return id
	case isMessageEmptySpace(start.Name), isPresenceEmptySpace(start.Name):
		_, id := attr.Get(start.Attr, "id")
		return id
	default:
		return ""
	}
}

// ensureID makes sure that start carries a non-empty "id" attribute,
// generating a random one if necessary, for any element that is a message,
// presence, or IQ stanza.
func ensureID(start *xml.StartElement) {
	switch {
	case isIQEmptySpace(start.Name), isMessageEmptySpace(start.Name), isPresenceEmptySpace(start.Name):
	default:
		return
	}
	idx, _, id, _ := getIDTyp(start.Attr)
	if idx == -1 {
		idx = len(start.Attr)
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "id"}})
	}
	if id == "" {
		start.Attr[idx].Value = attr.RandomID()
	}
}

// Encode writes the XML encoding of v to the stream.
//
// See the documentation for "encoding/xml".Marshal for details about the
// conversion of Go values to XML.
//
// Encode is safe for concurrent use by multiple goroutines.
func (s *Session) Encode(ctx context.Context, v interface{}) error {
	s.outMu.Lock()
	defer s.outMu.Unlock()

	return marshal.EncodeXML(s, v)
}

// EncodeElement writes the XML encoding of v to the stream, using start as
// the outermost tag in the encoding.
//
// EncodeElement is safe for concurrent use by multiple goroutines.
func (s *Session) EncodeElement(ctx context.Context, v interface{}, start xml.StartElement) error {
	s.outMu.Lock()
	defer s.outMu.Unlock()

	return marshal.EncodeXMLElement(s, v, start)
}

// Send transmits the first element read from r along with the rest of the
// token stream.
//
// If the element is a message, presence, or IQ stanza with no "id"
// attribute, one is generated before the stanza is sent.
//
// Send is safe for concurrent use by multiple goroutines.
func (s *Session) Send(ctx context.Context, r xml.TokenReader) error {
	tok, err := r.Token()
	if err != nil {
		return err
	}
	start, ok := tok.(xml.StartElement)
	if !ok {
		return ErrNotStart
	}
	ensureID(&start)
	return s.SendElement(ctx, xmlstream.Inner(r), start)
}

// SendElement is like Send except that it uses start as the outermost tag in
// the encoding and the entirety of r as the payload.
//
// SendElement is safe for concurrent use by multiple goroutines.
func (s *Session) SendElement(ctx context.Context, r xml.TokenReader, start xml.StartElement) error {
	s.outMu.Lock()
	defer s.outMu.Unlock()

	if err := s.EncodeToken(start); err != nil {
		return err
	}
	if _, err := xmlstream.Copy(s, r); err != nil {
		return err
	}
	if err := s.EncodeToken(start.End()); err != nil {
		return err
	}
	return s.Flush()
}

// sendResp registers a pending response for the stanza identified by id,
// sends it, and then blocks until a correlated response is read off the
// input stream by handleInputStream or ctx is canceled.
//
// The returned xmlstream.TokenReadCloser must be closed to allow stream
// processing to resume; until it is closed, handleInputStream will not read
// past the response stanza.
func (s *Session) sendResp(ctx context.Context, id string, r xml.TokenReader, start xml.StartElement) (xmlstream.TokenReadCloser, error) {
	c := make(chan xmlstream.TokenReadCloser, 1)

	s.respMu.Lock()
	if s.resp == nil {
		s.resp = make(map[string]chan xmlstream.TokenReadCloser)
	}
	s.resp[id] = c
	s.respMu.Unlock()

	cleanup := func() {
		s.respMu.Lock()
		delete(s.resp, id)
		s.respMu.Unlock()
	}

	if err := s.SendElement(ctx, r, start); err != nil {
		cleanup()
		return nil, err
	}

	select {
	case <-ctx.Done():
		cleanup()
		return nil, ctx.Err()
	case resp := <-c:
		return resp, nil
	}
}

// sessionResp is the xmlstream.TokenReadCloser handed back to a blocked
// sendResp call by handleInputStream when a correlated response arrives.
// Closing it unblocks handleInputStream so that it may resume reading the
// input stream.
type sessionResp struct {
	r    xml.TokenReader
	done chan struct{}
}

func (r *sessionResp) Token() (xml.Token, error) {
	return r.r.Token()
}

func (r *sessionResp) Close() error {
	select {
	case <-r.done:
	default:
		close(r.done)
	}
	return nil
}
