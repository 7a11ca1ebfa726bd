package sm

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"mellium.im/xmlstream"
	"wireglass.im/xmpp"
	"wireglass.im/xmpp/internal/attr"
	"wireglass.im/xmpp/internal/ns"
	"wireglass.im/xmpp/stanza"
)

const (
	enableRequestRP = `<enable xmlns='` + ns.SM + `' resume='true'/>`
	resumeRequestFmt = `<resume xmlns='` + ns.SM + `' h='%d' previd='%s'/>`
	ackRequestRP    = `<r xmlns='` + ns.SM + `'/>`
	ackResponseFmt  = `<a xmlns='` + ns.SM + `' h='%d'/>`
)

// Stream layers XEP-0198 acknowledgement and resumption over an already
// established *xmpp.Session. The zero value is not usable; create one with
// New.
//
// A Stream must be enabled (or resumed) before the session it wraps is
// handed to Serve: Enable and Resume read the peer's enabled/resumed/failed
// reply directly off the session, the same way stream feature negotiation
// does, and so cannot run concurrently with a Serve loop already reading
// from the same session.
type Stream struct {
	mu sync.Mutex

	session *xmpp.Session

	state State

	resumeID  string
	location  string
	resumable bool
	max       time.Duration

	inbound  uint32
	outbound uint32

	unacked []*Token

	pendingIQ map[string]*IQRequest

	inFilters  []Filter
	outFilters []Filter

	softTimeout time.Duration
	hardTimeout time.Duration
	softTimer   *time.Timer
	hardTimer   *time.Timer

	onSuspended  func(error)
	onResumed    func()
	onTerminated func(error)
}

// Option configures a Stream constructed with New.
type Option func(*Stream)

// SoftTimeout sets the idle duration after which the Stream requests an
// acknowledgement from the peer to check liveness. The default is 30s. A
// value of 0 disables liveness probing.
func SoftTimeout(d time.Duration) Option {
	return func(s *Stream) { s.softTimeout = d }
}

// HardTimeout sets the duration, after a soft timeout fires, within which an
// <a/> must be received before the stream is considered dead and moved to
// Suspended. The default is 15s.
func HardTimeout(d time.Duration) Option {
	return func(s *Stream) { s.hardTimeout = d }
}

// OnSuspended registers a callback invoked when the stream moves to
// Suspended, either because the hard liveness timeout lapsed or because
// Suspend was called after the underlying connection failed.
func OnSuspended(f func(error)) Option {
	return func(s *Stream) { s.onSuspended = f }
}

// OnResumed registers a callback invoked after a call to Resume completes
// successfully and any unacknowledged stanzas have been replayed.
func OnResumed(f func()) Option {
	return func(s *Stream) { s.onResumed = f }
}

// OnTerminated registers a callback invoked when the stream moves to
// Terminated, meaning it can no longer be resumed.
func OnTerminated(f func(error)) Option {
	return func(s *Stream) { s.onTerminated = f }
}

// New creates a Stream that manages acknowledgement and resumption for
// session. The returned Stream starts in the Disconnected state; call
// Enable or Resume before using Send, SendIQ, or Wrap.
func New(session *xmpp.Session, opts ...Option) *Stream {
	s := &Stream{
		session:     session,
		state:       Disconnected,
		pendingIQ:   make(map[string]*IQRequest),
		softTimeout: 30 * time.Second,
		hardTimeout: 15 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// State returns the stream's current lifecycle state.
func (s *Stream) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ResumeID returns the resumption identifier handed out by the peer when
// Enable succeeded with resumption support, or the empty string if none is
// set.
func (s *Stream) ResumeID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resumeID
}

// InboundCount returns the number of inbound stanzas counted so far, mod
// 2^32, as reported to the peer in the h attribute of <a/> and <r/> replies.
func (s *Stream) InboundCount() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inbound
}

// OutboundCount returns the number of outbound stanzas sent so far, mod
// 2^32.
func (s *Stream) OutboundCount() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outbound
}

// Unacked returns a snapshot of the tokens still awaiting acknowledgement.
func (s *Stream) Unacked() []*Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Token(nil), s.unacked...)
}

// InboundFilter appends f to the chain run, in registration order, over
// every stanza read from the stream before it reaches the Handler passed to
// Wrap.
func (s *Stream) InboundFilter(f Filter) {
	s.mu.Lock()
	s.inFilters = append(s.inFilters, f)
	s.mu.Unlock()
}

// OutboundFilter appends f to the chain run, in registration order, over
// every stanza written through Send or SendElement before it is put on the
// wire.
func (s *Stream) OutboundFilter(f Filter) {
	s.mu.Lock()
	s.outFilters = append(s.outFilters, f)
	s.mu.Unlock()
}

// Enable asks the peer to turn stream management on for the session,
// requesting resumption support, and blocks for the enabled/failed reply.
// It must be called after the session has reached its Ready state (after
// resource binding) and before Serve is called on the session.
func (s *Stream) Enable(ctx context.Context) error {
	s.mu.Lock()
	s.state = Connecting
	s.mu.Unlock()

	conn := s.session.Conn()
	if _, err := io.WriteString(conn, enableRequestRP); err != nil {
		return err
	}
	return s.readEnableReply()
}

func (s *Stream) readEnableReply() error {
	tok, err := s.session.Token()
	if err != nil {
		return err
	}
	start, ok := tok.(xml.StartElement)
	if !ok || start.Name.Space != ns.SM {
		return ProtocolError{Msg: "expected an enabled or failed nonza"}
	}
	d := xml.NewTokenDecoder(s.session)

	switch start.Name.Local {
	case "enabled":
		parsed := struct {
			ID       string `xml:"id,attr"`
			Resume   bool   `xml:"resume,attr"`
			Max      int    `xml:"max,attr"`
			Location string `xml:"location,attr"`
		}{}
		if err := d.DecodeElement(&parsed, &start); err != nil {
			return err
		}
		s.mu.Lock()
		s.resumeID = parsed.ID
		s.resumable = parsed.Resume
		s.location = parsed.Location
		if parsed.Max > 0 {
			s.max = time.Duration(parsed.Max) * time.Second
		}
		s.state = Running
		s.mu.Unlock()
		s.resetSoftTimer()
		return nil
	case "failed":
		if err := d.Skip(); err != nil {
			return err
		}
		s.mu.Lock()
		s.state = Terminated
		s.mu.Unlock()
		return ProtocolError{Msg: "peer declined to enable stream management"}
	default:
		if err := d.Skip(); err != nil {
			return err
		}
		return ProtocolError{Msg: "unexpected nonza " + start.Name.Local}
	}
}

// Resume attempts to resume a previous stream management session on a newly
// established connection, using id (the previous ResumeID) and h (the
// number of inbound stanzas already acknowledged from that previous
// stream). On success every still-unacknowledged stanza is resent in order
// and the Stream moves to Running; on failure it moves to Terminated and
// the caller must fall back to establishing a fresh session.
func (s *Stream) Resume(ctx context.Context, id string, h uint32) error {
	s.mu.Lock()
	s.state = Connecting
	s.mu.Unlock()

	conn := s.session.Conn()
	if _, err := fmt.Fprintf(conn, resumeRequestFmt, h, id); err != nil {
		return err
	}

	tok, err := s.session.Token()
	if err != nil {
		return err
	}
	start, ok := tok.(xml.StartElement)
	if !ok || start.Name.Space != ns.SM {
		return ProtocolError{Msg: "expected a resumed or failed nonza"}
	}
	d := xml.NewTokenDecoder(s.session)

	switch start.Name.Local {
	case "resumed":
		parsed := struct {
			H uint32 `xml:"h,attr"`
		}{}
		if err := d.DecodeElement(&parsed, &start); err != nil {
			return err
		}
		s.ackThrough(parsed.H)

		s.mu.Lock()
		s.resumeID = id
		s.state = Running
		unacked := append([]*Token(nil), s.unacked...)
		s.mu.Unlock()

		for _, t := range unacked {
			if err := s.resend(ctx, t); err != nil {
				return err
			}
		}
		if s.onResumed != nil {
			s.onResumed()
		}
		s.resetSoftTimer()
		return nil
	case "failed":
		if err := d.Skip(); err != nil {
			return err
		}
		s.mu.Lock()
		s.state = Terminated
		for _, t := range s.unacked {
			t.setState(TokenFailed)
		}
		s.unacked = nil
		cb := s.onTerminated
		s.mu.Unlock()
		perr := ProtocolError{Msg: "peer rejected stream resumption"}
		if cb != nil {
			cb(perr)
		}
		return perr
	default:
		if err := d.Skip(); err != nil {
			return err
		}
		return ProtocolError{Msg: "unexpected nonza " + start.Name.Local}
	}
}

func (s *Stream) resend(ctx context.Context, t *Token) error {
	t.setState(TokenSent)
	return s.session.SendElement(ctx, t.reader(), t.start)
}

// Suspend moves the stream to Suspended, marking any still-unacknowledged
// stanzas as TokenDisconnected pending a future Resume. Call this when the
// underlying connection is known to have failed.
func (s *Stream) Suspend(err error) {
	s.mu.Lock()
	if s.state != Running && s.state != Connecting {
		s.mu.Unlock()
		return
	}
	if !s.resumable {
		s.state = Terminated
		for _, t := range s.unacked {
			t.setState(TokenFailed)
		}
		cb := s.onTerminated
		s.mu.Unlock()
		if cb != nil {
			cb(err)
		}
		return
	}
	s.state = Suspended
	for _, t := range s.unacked {
		t.setState(TokenDisconnected)
	}
	s.stopTimersLocked()
	cb := s.onSuspended
	s.mu.Unlock()
	if cb != nil {
		cb(err)
	}
}

// Terminate ends stream management bookkeeping unconditionally, marking any
// still-unacknowledged stanzas as dropped. A terminated Stream cannot be
// resumed.
func (s *Stream) Terminate() {
	s.mu.Lock()
	s.state = Terminated
	for _, t := range s.unacked {
		t.setState(TokenDropped)
	}
	s.unacked = nil
	s.stopTimersLocked()
	s.mu.Unlock()
}

// Send writes the stanza read from r to the underlying session, running the
// outbound filter chain first and tracking the stanza for acknowledgement
// until it is acked, dropped, or the stream terminates.
func (s *Stream) Send(ctx context.Context, r xml.TokenReader) (*Token, error) {
	tok, err := r.Token()
	if err != nil {
		return nil, err
	}
	start, ok := tok.(xml.StartElement)
	if !ok {
		return nil, xmpp.ErrNotStart
	}
	return s.SendElement(ctx, xmlstream.Inner(r), start)
}

// SendElement is like Send except that start is used as the outermost tag
// in the encoding.
func (s *Stream) SendElement(ctx context.Context, r xml.TokenReader, start xml.StartElement) (*Token, error) {
	filtered, fr, err := runFilters(s.outFilters, start, r)
	if err != nil {
		if err == ErrDrop {
			t := &Token{start: start}
			t.setState(TokenDropped)
			return t, nil
		}
		return nil, err
	}

	rec := &recordingReader{r: fr}
	t := &Token{start: filtered}

	s.mu.Lock()
	running := s.state == Running
	if running {
		s.outbound++
		t.seq = s.outbound
	}
	s.mu.Unlock()

	if err := s.session.SendElement(ctx, rec, filtered); err != nil {
		t.setState(TokenFailed)
		return t, err
	}
	t.body = rec.recorded

	if !running {
		t.setState(TokenSentWithoutSM)
		return t, nil
	}

	t.setState(TokenSent)
	s.mu.Lock()
	s.unacked = append(s.unacked, t)
	s.mu.Unlock()
	return t, nil
}

// SendIQ is like (*xmpp.Session).SendIQ—it blocks for a correlated
// response—while also tracking the outstanding request as an IQRequest, and
// the IQ itself as an acknowledgement-tracked Token, for the lifetime of the
// Stream.
func (s *Stream) SendIQ(ctx context.Context, r xml.TokenReader) (xmlstream.TokenReadCloser, error) {
	tok, err := r.Token()
	if err != nil {
		return nil, err
	}
	start, ok := tok.(xml.StartElement)
	if !ok {
		return nil, xmpp.ErrNotStart
	}

	id, typ, to := ensureIQAttrs(&start)
	isRequest := typ == string(stanza.GetIQ) || typ == string(stanza.SetIQ)
	if isRequest {
		req := &IQRequest{ID: id, From: to, Type: stanza.IQType(typ), Deadline: deadline(ctx)}
		s.mu.Lock()
		s.pendingIQ[id] = req
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			delete(s.pendingIQ, id)
			s.mu.Unlock()
		}()
	}

	inner := xmlstream.Inner(r)
	filtered, fr, err := runFilters(s.outFilters, start, inner)
	if err != nil {
		if err == ErrDrop {
			return nil, nil
		}
		return nil, err
	}

	rec := &recordingReader{r: fr}
	t := &Token{start: filtered}
	s.mu.Lock()
	running := s.state == Running
	if running {
		s.outbound++
		t.seq = s.outbound
	}
	s.mu.Unlock()

	resp, err := s.session.SendIQ(ctx, xmlstream.Wrap(rec, filtered))
	if err != nil {
		t.setState(TokenFailed)
		return resp, err
	}
	t.body = rec.recorded
	if running {
		t.setState(TokenSent)
		s.mu.Lock()
		s.unacked = append(s.unacked, t)
		s.mu.Unlock()
	} else {
		t.setState(TokenSentWithoutSM)
	}
	return resp, nil
}

func ensureIQAttrs(start *xml.StartElement) (id, typ, to string) {
	idIdx := -1
	for i, a := range start.Attr {
		switch a.Name.Local {
		case "id":
			idIdx = i
			id = a.Value
		case "type":
			typ = a.Value
		case "to":
			to = a.Value
		}
	}
	if idIdx == -1 {
		id = attr.RandomID()
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "id"}, Value: id})
	} else if id == "" {
		id = attr.RandomID()
		start.Attr[idIdx].Value = id
	}
	return id, typ, to
}

func deadline(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		return dl
	}
	return time.Time{}
}

// Wrap returns an xmpp.Handler that runs the Stream's inbound filter chain
// and acknowledgement bookkeeping over every stanza before delegating to h.
// Nonzas in the XEP-0198 namespace (<r/> and <a/>) are handled directly and
// never reach h.
func (s *Stream) Wrap(h xmpp.Handler) xmpp.Handler {
	return xmpp.HandlerFunc(func(t xmlstream.TokenReadEncoder, start *xml.StartElement) error {
		if start.Name.Space == ns.SM {
			return s.handleNonza(*start)
		}

		s.mu.Lock()
		s.inbound++
		s.mu.Unlock()
		s.resetSoftTimer()

		filtered, r, err := runFilters(s.inFilters, *start, xmlstream.Inner(t))
		if err != nil {
			if err == ErrDrop {
				_, derr := xmlstream.Copy(xmlstream.Discard(), r)
				return derr
			}
			return err
		}
		*start = filtered

		if h == nil {
			_, err := xmlstream.Copy(xmlstream.Discard(), r)
			return err
		}

		wrapped := struct {
			xml.TokenReader
			xmlstream.Encoder
		}{TokenReader: r, Encoder: t}
		return h.HandleXMPP(wrapped, start)
	})
}

func (s *Stream) handleNonza(start xml.StartElement) error {
	switch start.Name.Local {
	case "r":
		s.mu.Lock()
		h := s.inbound
		s.mu.Unlock()
		conn := s.session.Conn()
		_, err := fmt.Fprintf(conn, ackResponseFmt, h)
		return err
	case "a":
		var h uint32
		for _, a := range start.Attr {
			if a.Name.Local == "h" {
				n, _ := strconv.ParseUint(a.Value, 10, 32)
				h = uint32(n)
			}
		}
		s.ackThrough(h)
		return nil
	default:
		return nil
	}
}

// ackThrough marks every unacknowledged token through sequence number h as
// acked and stops the hard liveness timer, since the peer has just proven
// it is alive.
func (s *Stream) ackThrough(h uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := s.unacked[:0:0]
	for _, t := range s.unacked {
		if seqAcked(t.seq, h) {
			t.setState(TokenAcked)
		} else {
			remaining = append(remaining, t)
		}
	}
	s.unacked = remaining
	s.stopHardTimerLocked()
}

// seqAcked reports whether seq is covered by an acknowledgement of h
// stanzas, accounting for uint32 wraparound by treating seq as acked if the
// forward distance from seq to h is less than half the counter's range.
func seqAcked(seq, h uint32) bool {
	return h-seq < 1<<31
}

func (s *Stream) resetSoftTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetSoftTimerLocked()
}

func (s *Stream) resetSoftTimerLocked() {
	if s.softTimer != nil {
		s.softTimer.Stop()
	}
	if s.state != Running || s.softTimeout <= 0 {
		return
	}
	s.softTimer = time.AfterFunc(s.softTimeout, s.requestAck)
}

func (s *Stream) requestAck() {
	s.mu.Lock()
	running := s.state == Running
	s.mu.Unlock()
	if !running {
		return
	}

	conn := s.session.Conn()
	if _, err := io.WriteString(conn, ackRequestRP); err != nil {
		s.Suspend(err)
		return
	}

	s.mu.Lock()
	if s.hardTimer != nil {
		s.hardTimer.Stop()
	}
	s.hardTimer = time.AfterFunc(s.hardTimeout, s.hardTimeoutFired)
	s.mu.Unlock()
}

func (s *Stream) hardTimeoutFired() {
	s.Suspend(ProtocolError{Msg: "peer did not acknowledge the stream within the hard timeout"})
}

func (s *Stream) stopTimersLocked() {
	if s.softTimer != nil {
		s.softTimer.Stop()
		s.softTimer = nil
	}
	s.stopHardTimerLocked()
}

func (s *Stream) stopHardTimerLocked() {
	if s.hardTimer != nil {
		s.hardTimer.Stop()
		s.hardTimer = nil
	}
}
