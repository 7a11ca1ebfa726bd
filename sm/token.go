package sm

import (
	"encoding/xml"
	"io"
	"sync"
)

// TokenState is the delivery state of a single stanza tracked by a Stream
// between the moment it is handed to Send/SendElement and the moment the
// peer acknowledges, or definitively fails to acknowledge, it.
type TokenState uint8

const (
	// TokenActive is the state of a Token that has been accepted by Send but
	// not yet written to the connection.
	TokenActive TokenState = iota

	// TokenSent is the state of a Token whose stanza has been written to the
	// connection and is awaiting acknowledgement.
	TokenSent

	// TokenSentWithoutSM is the state of a Token sent while the Stream was
	// not Running (stream management was never enabled, or the connection
	// had already been suspended); it will never be acknowledged.
	TokenSentWithoutSM

	// TokenDeliveredToServer is the state of a Token the peer has
	// acknowledged receipt of via the h attribute of an <a/> nonza, but
	// which predates resumption and so cannot be distinguished from final
	// delivery to the intended recipient.
	TokenDeliveredToServer

	// TokenAcked is the terminal state of a Token once the peer has
	// acknowledged it.
	TokenAcked

	// TokenFailed is the terminal state of a Token whose delivery is known
	// to have failed, for instance because stream resumption itself failed.
	TokenFailed

	// TokenDropped is the terminal state of a Token discarded by an
	// outbound Filter before it was ever written to the connection, or still
	// unacknowledged when Terminate is called.
	TokenDropped

	// TokenAborted is the terminal state of a Token whose delivery was
	// explicitly canceled by the application.
	TokenAborted

	// TokenDisconnected is the state of a Token still unacknowledged when
	// the underlying connection was lost; it moves to TokenAcked on
	// successful resumption and replay, or to TokenFailed if resumption
	// fails.
	TokenDisconnected
)

func (t TokenState) String() string {
	switch t {
	case TokenActive:
		return "active"
	case TokenSent:
		return "sent"
	case TokenSentWithoutSM:
		return "sent-without-sm"
	case TokenDeliveredToServer:
		return "delivered-to-server"
	case TokenAcked:
		return "acked"
	case TokenFailed:
		return "failed"
	case TokenDropped:
		return "dropped"
	case TokenAborted:
		return "aborted"
	case TokenDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Terminal reports whether t is one of the terminal token states (ACKED,
// ABORTED, FAILED, or DROPPED). A token in a terminal state never changes
// state again.
func (t TokenState) Terminal() bool {
	switch t {
	case TokenAcked, TokenAborted, TokenFailed, TokenDropped:
		return true
	}
	return false
}

// A Token tracks the delivery of a single outbound stanza through the
// acknowledgement window described by XEP-0198. It is returned by
// (*Stream).Send and (*Stream).SendElement and remains valid (and safe for
// concurrent use) for the lifetime of the Stream.
type Token struct {
	mu    sync.Mutex
	seq   uint32
	state TokenState
	start xml.StartElement
	body  []xml.Token
}

// Seq returns the token's position in the Stream's outbound sequence, as
// used when the peer's h attribute reports how many stanzas it has seen.
// It is only meaningful once the Stream is Running.
func (t *Token) Seq() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seq
}

// State returns the token's current delivery state.
func (t *Token) State() TokenState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Token) setState(s TokenState) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

// reader returns a fresh token reader over the stanza's recorded payload,
// used to resend the stanza after a successful Resume.
func (t *Token) reader() xml.TokenReader {
	return &tokenSliceReader{toks: t.body}
}

type tokenSliceReader struct {
	toks []xml.Token
	pos  int
}

func (r *tokenSliceReader) Token() (xml.Token, error) {
	if r.pos >= len(r.toks) {
		return nil, io.EOF
	}
	tok := r.toks[r.pos]
	r.pos++
	return tok, nil
}

// recordingReader wraps a token reader, copying every token it yields so
// that the stanza can be replayed later without re-reading the original
// (likely now-exhausted) source.
type recordingReader struct {
	r        xml.TokenReader
	recorded []xml.Token
}

func (r *recordingReader) Token() (xml.Token, error) {
	tok, err := r.r.Token()
	if err != nil {
		return tok, err
	}
	r.recorded = append(r.recorded, xml.CopyToken(tok))
	return tok, nil
}
