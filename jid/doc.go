// Package jid implements XMPP addresses (historically called "Jabber ID's" or
// "JID's") as described in RFC 7622 and functions for the escaping mechanism
// defined in XEP-0106: JID Escaping.
//
// Be advised: This API is still unstable and is subject to change.
package jid // import "wireglass.im/xmpp/jid"
