//go:generate go run ../internal/genfeature -vars "Feature:NS,FeatureNotify:NSNotify"

// Package bookmarks implements storing bookmarks to chat rooms.
package bookmarks // import "wireglass.im/xmpp/bookmarks"

// Namespaces used by this package.
const (
	NS       = "urn:xmpp:bookmarks:1"
	NSNotify = "urn:xmpp:bookmarks:1+notify"
	NSCompat = "urn:xmpp:bookmarks:1#compat"
)
