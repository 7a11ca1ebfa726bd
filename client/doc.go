// Package client provides a higher level, supervising API for creating and
// maintaining a single XMPP client-to-server session: it dials, negotiates,
// and (when the connection drops) reconnects or resumes automatically,
// summons a set of interdependent application services once a session is
// established, and reports lifecycle changes through a handful of plain
// callback fields rather than an event bus.
//
// Be advised: this API is still unstable and is subject to change.
package client // import "wireglass.im/xmpp/client"
