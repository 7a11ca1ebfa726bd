// Package history iimplements fetching messages from an archive.
package history // import "wireglass.im/xmpp/history"

// The namespace used by this package, provided as a convenience.
const NS = `urn:xmpp:mam:2`
