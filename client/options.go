package client

import (
	"crypto/tls"
	"time"

	"mellium.im/sasl"
	"wireglass.im/xmpp"
	"wireglass.im/xmpp/dial"
	"wireglass.im/xmpp/jid"
)

// Option's can be used to configure the client.
type Option func(*options)

type options struct {
	user *jid.JID
	pass string
	lang string

	dialer    dial.Dialer
	tlsConfig *tls.Config
	mechanisms []sasl.Mechanism
	features  []xmpp.StreamFeature

	resume bool

	maxInitialAttempts int
	initialBackoff      time.Duration
	maxBackoff          time.Duration
	negotiationTimeout  time.Duration
	resumptionTimeout   time.Duration

	services []Service
	handler  xmpp.Handler

	onStreamEstablished func(*Client)
	onStreamSuspended   func(*Client, error)
	onStreamResumed     func(*Client)
	onStreamDestroyed   func(*Client, error)
	onFailure           func(*Client, error)
	onStopped           func(*Client)
}

func getOpts(o ...Option) (res options) {
	res.lang = "en"
	res.maxInitialAttempts = 3
	res.initialBackoff = 1 * time.Second
	res.maxBackoff = 2 * time.Minute
	res.negotiationTimeout = 30 * time.Second
	res.resumptionTimeout = 5 * time.Minute
	for _, f := range o {
		f(&res)
	}
	return
}

// User sets the bare JID that the client authenticates as.
func User(j *jid.JID) Option {
	return func(o *options) { o.user = j.Bare() }
}

// Password sets the password used for SASL authentication.
func Password(pass string) Option {
	return func(o *options) { o.pass = pass }
}

// Lang sets the xml:lang attribute advertised on the stream. The default is
// "en".
func Lang(lang string) Option {
	return func(o *options) { o.lang = lang }
}

// Dialer overrides the dial.Dialer used to establish the underlying
// connection, eg. to disable SRV lookups or force a particular network.
func Dialer(d dial.Dialer) Option {
	return func(o *options) { o.dialer = d }
}

// TLSConfig sets the TLS configuration used both for implicit TLS dialing
// and for STARTTLS negotiation.
func TLSConfig(cfg *tls.Config) Option {
	return func(o *options) { o.tlsConfig = cfg }
}

// SASLMechanisms sets the SASL mechanisms offered during authentication, in
// preference order. If unset, the client negotiates with
// sasl.ScramSha1Plus, sasl.ScramSha1, and sasl.Plain, in that order.
func SASLMechanisms(mechanisms ...sasl.Mechanism) Option {
	return func(o *options) { o.mechanisms = mechanisms }
}

// Features appends additional stream features to negotiate alongside
// STARTTLS, SASL, and resource binding, eg. for extensions negotiated
// in-band as part of stream setup.
func Features(features ...xmpp.StreamFeature) Option {
	return func(o *options) { o.features = append(o.features, features...) }
}

// Resumable enables XEP-0198 stream management with resumption for the
// client's session: when the underlying connection is lost, the client
// attempts to resume the interrupted stream before falling back to
// establishing a fresh one.
func Resumable() Option {
	return func(o *options) { o.resume = true }
}

// MaxInitialAttempts sets how many consecutive connection attempts the
// Client makes before any session has ever been established successfully;
// when that many have failed, Run gives up and returns the last error, so
// that persistent misconfiguration fails fast. The default is 3. Retries
// back off in the same way before and after the first success; once a
// session has been established at least once, this limit no longer applies.
func MaxInitialAttempts(n int) Option {
	return func(o *options) { o.maxInitialAttempts = n }
}

// Backoff sets the initial and maximum delay used by the Client's
// exponential reconnect backoff. The defaults are 1s and 2m.
func Backoff(initial, max time.Duration) Option {
	return func(o *options) {
		o.initialBackoff = initial
		o.maxBackoff = max
	}
}

// NegotiationTimeout bounds how long session establishment (dial through
// resource binding) may take before it is abandoned as a failed attempt.
// The default is 30s.
func NegotiationTimeout(d time.Duration) Option {
	return func(o *options) { o.negotiationTimeout = d }
}

// ResumptionTimeout bounds how long the Client will keep trying to resume a
// suspended stream management session before giving up and establishing a
// fresh one. The default is 5m.
func ResumptionTimeout(d time.Duration) Option {
	return func(o *options) { o.resumptionTimeout = d }
}

// Handler sets the application-level handler used to process top-level
// stanzas once a session is established. If unset, inbound stanzas are
// silently discarded after passing through stream management bookkeeping.
func Handler(h xmpp.Handler) Option {
	return func(o *options) { o.handler = h }
}

// Services registers the given services with the client. Services are
// summoned lazily, in dependency order, the first time Summon is called for
// them or for a service that depends on them.
func Services(services ...Service) Option {
	return func(o *options) { o.services = append(o.services, services...) }
}

// OnStreamEstablished registers a callback invoked every time a session is
// successfully negotiated (including after a reconnect).
func OnStreamEstablished(f func(*Client)) Option {
	return func(o *options) { o.onStreamEstablished = f }
}

// OnStreamSuspended registers a callback invoked when the underlying
// connection is lost but the stream may still be resumable.
func OnStreamSuspended(f func(*Client, error)) Option {
	return func(o *options) { o.onStreamSuspended = f }
}

// OnStreamResumed registers a callback invoked after a lost stream is
// successfully resumed.
func OnStreamResumed(f func(*Client)) Option {
	return func(o *options) { o.onStreamResumed = f }
}

// OnStreamDestroyed registers a callback invoked when a session ends and
// cannot be resumed (resumption failed, was not enabled, or the error was
// unrecoverable), just before the Client attempts to establish a fresh one.
func OnStreamDestroyed(f func(*Client, error)) Option {
	return func(o *options) { o.onStreamDestroyed = f }
}

// OnFailure registers a callback invoked whenever a connection or
// negotiation attempt fails, including attempts made while backing off.
func OnFailure(f func(*Client, error)) Option {
	return func(o *options) { o.onFailure = f }
}

// OnStopped registers a callback invoked once Run returns, after the
// Client's services have been torn down.
func OnStopped(f func(*Client)) Option {
	return func(o *options) { o.onStopped = f }
}
