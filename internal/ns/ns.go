// Package ns provides namespace constants that are used by the xmpp package and
// other internal packages.
package ns // import "wireglass.im/xmpp/internal/ns"

// List of commonly used namespaces.
const (
	Bind     = "urn:ietf:params:xml:ns:xmpp-bind"
	SASL     = "urn:ietf:params:xml:ns:xmpp-sasl"
	StartTLS = "urn:ietf:params:xml:ns:xmpp-tls"
	XML      = "http://www.w3.org/XML/1998/namespace"

	// Client and Server are the default stanza namespaces for c2s and s2s
	// streams, respectively.
	Client = "jabber:client"
	Server = "jabber:server"

	// Stream is the namespace of the wrapping <stream:stream> element.
	// Streams is the namespace used by stream-level error conditions.
	Stream  = "http://etherx.jabber.org/streams"
	Streams = "urn:ietf:params:xml:ns:xmpp-streams"

	// SM is the XEP-0198: Stream Management namespace.
	SM = "urn:xmpp:sm:3"

	// Stanza is the namespace of stanza-level error conditions.
	Stanza = "urn:ietf:params:xml:ns:xmpp-stanzas"
)
