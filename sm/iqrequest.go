package sm

import (
	"time"

	"wireglass.im/xmpp/stanza"
)

// IQRequest records an outstanding IQ sent through a Stream's SendIQ, so
// that it can be recovered (or timed out) across a suspend/resume cycle
// independently of the lower-level response correlation already performed
// by the underlying *xmpp.Session.
type IQRequest struct {
	// ID is the "id" attribute of the outstanding IQ.
	ID string

	// From is the bare or full JID string the request was addressed to, or
	// the empty string if the IQ had no "to" attribute.
	From string

	// Type is the IQ's request type, "get" or "set".
	Type stanza.IQType

	// Deadline is the time after which the request is abandoned, or the zero
	// Time if the request has no deadline.
	Deadline time.Time
}

// Expired reports whether the request's deadline has passed as of now.
func (r IQRequest) Expired(now time.Time) bool {
	return !r.Deadline.IsZero() && now.After(r.Deadline)
}
