package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"

	"mellium.im/sasl"
	"wireglass.im/xmpp"
	"wireglass.im/xmpp/jid"
	"wireglass.im/xmpp/sm"
)

// dial establishes the underlying connection for the configured user,
// returning the bare JID being connected as (to save the caller a second
// lookup).
func (c *Client) dial(ctx context.Context) (*jid.JID, net.Conn, error) {
	if c.user == nil {
		return nil, nil, errors.New("client: no user configured, see the User option")
	}
	conn, err := c.dialer.Dial(ctx, "tcp", *c.user)
	if err != nil {
		return nil, nil, fmt.Errorf("client: dial: %w", err)
	}
	return c.user, conn, nil
}

// featureList builds the stream features negotiated while establishing a
// session: STARTTLS and SASL always, resource binding only when bind is
// true. Omitting BindResource is how resumeSession lets negotiation stop at
// Ready without binding a new resource—see the note in resumeSession.
func (c *Client) featureList(bind bool) []xmpp.StreamFeature {
	tlsConfig := c.tlsConfig
	if tlsConfig == nil {
		tlsConfig = &tls.Config{
			ServerName: c.user.Domainpart(),
			MinVersion: tls.VersionTLS12,
		}
	}
	mechanisms := c.mechanisms
	if len(mechanisms) == 0 {
		mechanisms = []sasl.Mechanism{sasl.ScramSha1Plus, sasl.ScramSha1, sasl.Plain}
	}

	features := []xmpp.StreamFeature{
		xmpp.StartTLS(true, tlsConfig),
		xmpp.SASL(c.user.Localpart(), c.pass, mechanisms...),
	}
	if bind {
		features = append(features, xmpp.BindResource())
	}
	return append(features, c.features...)
}

// freshSession dials a new connection and negotiates a brand new session
// (STARTTLS, SASL, resource binding), enabling stream management on it if
// Resumable was set.
func (c *Client) freshSession(ctx context.Context) (*xmpp.Session, *sm.Stream, error) {
	origin, conn, err := c.dial(ctx)
	if err != nil {
		return nil, nil, err
	}

	session, err := xmpp.NewClientSession(ctx, origin, c.lang, conn, c.featureList(true)...)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("client: negotiating session: %w", err)
	}

	if !c.resume {
		return session, nil, nil
	}

	stream := sm.New(session)
	if err := stream.Enable(ctx); err != nil {
		// The peer doesn't support stream management (or declined it); carry
		// on without acknowledgement/resumption rather than failing outright.
		return session, nil, nil
	}
	return session, stream, nil
}

// resumeSession dials a new connection, negotiates only as far as
// authentication, and attempts to resume the stream management session
// identified by prevID/prevInbound instead of binding a fresh resource.
//
// Resource binding is deliberately left out of the feature list: once SASL
// sets the Authn bit, the next <stream:features/> pass advertises only
// <bind/>, which this feature list doesn't include, so negotiateFeatures
// finds no matching feature and returns with the Ready bit set directly
// (see the empty-matches branch in negotiateFeatures). That leaves the
// session established but unbound, which is what XEP-0198 resumption
// expects—resume takes the place of binding, not the other way around.
func (c *Client) resumeSession(ctx context.Context) (*xmpp.Session, *sm.Stream, error) {
	c.mu.Lock()
	var prevID string
	var prevInbound uint32
	if c.stream != nil {
		prevID = c.stream.ResumeID()
		prevInbound = c.stream.InboundCount()
	}
	c.mu.Unlock()
	if prevID == "" {
		return nil, nil, errors.New("client: no resumable stream")
	}

	origin, conn, err := c.dial(ctx)
	if err != nil {
		return nil, nil, err
	}

	session, err := xmpp.NewClientSession(ctx, origin, c.lang, conn, c.featureList(false)...)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("client: negotiating session: %w", err)
	}

	stream := sm.New(session)
	if err := stream.Resume(ctx, prevID, prevInbound); err != nil {
		session.Close()
		return nil, nil, fmt.Errorf("client: resuming stream: %w", err)
	}
	return session, stream, nil
}
