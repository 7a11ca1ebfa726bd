// Package sm implements XEP-0198: Stream Management.
//
// It layers acknowledged delivery and stream resumption on top of an
// already negotiated *xmpp.Session: Enable (or Resume, after a connection
// is lost and re-established) turns stream management on, Send/SendIQ
// track outbound stanzas until the peer acknowledges them, and Wrap installs
// the bookkeeping needed on the inbound side around an existing
// xmpp.Handler.
package sm // import "wireglass.im/xmpp/sm"
