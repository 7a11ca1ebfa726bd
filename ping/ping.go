// Package ping implements XEP-0199: XMPP Ping.
package ping

import (
	"wireglass.im/xmpp"
)

// BUG(ssw): This package does not currently provide a means of registering a
//           disco#info feature or a response handler.

const ns = `urn:xmpp:ping`

type Ping struct {
	xmpp.IQ

	Ping struct{} `xml:"urn:xmpp:ping ping"`
}
