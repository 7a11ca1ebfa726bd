// Package pubsub implements data storage using a publish–subscribe pattern.
package pubsub // import "wireglass.im/xmpp/pubsub"

// Various namespaces used by this package, provided as a convenience.
const (
	NS       = `http://jabber.org/protocol/pubsub`
	NSOwner  = `http://jabber.org/protocol/pubsub#owner`
	NSPaging = `http://jabber.org/protocol/pubsub#rsm`
)
