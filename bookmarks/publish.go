package bookmarks

import (
	"context"

	"wireglass.im/xmpp"
	"wireglass.im/xmpp/jid"
	"wireglass.im/xmpp/pubsub"
	"wireglass.im/xmpp/stanza"
)

// Publish creates or updates the bookmark.
func Publish(ctx context.Context, s *xmpp.Session, b Channel) error {
	return PublishIQ(ctx, s, stanza.IQ{}, b)
}

// PublishIQ is like Publish except that it allows modifying the IQ.
// Changes to the IQ type will have no effect.
func PublishIQ(ctx context.Context, s *xmpp.Session, iq stanza.IQ, b Channel) error {
	iq.Type = stanza.SetIQ
	_, err := pubsub.PublishIQ(ctx, s, iq, NS, b.JID.String(), b.TokenReader())
	return err
}

// DeleteIQ removes the bookmark for the channel j, notifying subscribers.
// Changes to the IQ type will have no effect.
func DeleteIQ(ctx context.Context, s *xmpp.Session, iq stanza.IQ, j jid.JID) error {
	return pubsub.DeleteIQ(ctx, s, iq, NS, j.String(), true)
}
