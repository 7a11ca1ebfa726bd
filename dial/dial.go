// Package dial contains methods and types for dialing XMPP connections.
package dial // import "wireglass.im/xmpp/dial"

import (
	"context"
	"crypto/tls"
	cryptox509 "crypto/x509"
	"fmt"
	"log"
	"net"
	"strconv"
	"sync"

	"wireglass.im/xmpp/internal/discover"
	"wireglass.im/xmpp/jid"
	"wireglass.im/xmpp/x509"
)

// Client discovers and connects to the address on the named network with a
// client-to-server (c2s) connection.
//
// For more information see the Dialer type.
func Client(ctx context.Context, network string, addr jid.JID) (net.Conn, error) {
	var d Dialer
	return d.Dial(ctx, network, addr)
}

// Server discovers and connects to the address on the named network with a
// server-to-server connection (s2s).
//
// For more info see the Dialer type.
func Server(ctx context.Context, network string, addr jid.JID) (net.Conn, error) {
	d := Dialer{
		S2S: true,
	}
	return d.Dial(ctx, network, addr)
}

// An Endpoint is an explicit network address to dial, bypassing SRV
// discovery entirely. It is how Dialer.OverridePeer lets a caller name the
// exact host a connection should go to (eg. because the SRV records lie, or
// because discovery isn't reachable from the caller's network).
type Endpoint struct {
	Host string
	Port uint16

	// DirectTLS indicates this endpoint speaks implicit TLS, the same as an
	// xmpps-(client|server) SRV target would. When false, the endpoint is
	// dialed in the clear and STARTTLS is expected to happen in-stream.
	DirectTLS bool
}

func (e Endpoint) addr() string {
	return net.JoinHostPort(e.Host, strconv.FormatUint(uint64(e.Port), 10))
}

// A Dialer contains options for connecting to an XMPP address.
// After a connection is established the Dial method does not attempt to create
// an XMPP session on the connection, the various session establishment
// functions in the main xmpp package should be passed the resulting connection.
//
// The zero value for each field is equivalent to dialing without that option.
// Dialing with the zero value of Dialer is equivalent to calling the Client
// function.
type Dialer struct {
	net.Dialer

	// NoLookup stops the dialer from looking up SRV records for the given domain.
	// It also prevents fetching of the host metadata file. Instead, it will try
	// to connect to the domain directly.
	NoLookup bool

	// S2S causes the server to attempt to dial a server-to-server connection.
	S2S bool

	// Disable implicit TLS entirely (eg. when using opportunistic TLS on a server
	// that does not support implicit TLS).
	NoTLS bool

	// The configuration to use when dialing with implicit TLS support.
	// Setting TLSConfig has no effect if NoTLS is true.
	// The default value is interpreted as a tls.Config with the expected host set
	// to that of the connection addresses domain part.
	TLSConfig *tls.Config

	// OverridePeer, if non-empty, replaces SRV discovery with an explicit,
	// ordered list of candidates to try. NoLookup is ignored when this is
	// set.
	OverridePeer []Endpoint

	// PinStore, if set, is consulted in addition to ordinary PKIX
	// certificate verification: if it holds any pins for the dialed host,
	// the presented chain must match one of them or the handshake fails,
	// even if PKIX verification would otherwise have accepted it.
	PinStore *x509.PinStore

	// AllowSelfSigned disables PKIX chain verification for hosts that have
	// no PinStore entry, the "accept self-signed" bypass a local trust
	// store may grant per spec.md §4.3. It has no effect on hosts that do
	// have PinStore entries: those are always checked against their pins.
	AllowSelfSigned bool

	// Logger receives diagnostic messages, including partial SRV lookup
	// failures that did not abort the dial. The default discards messages,
	// matching the teacher's own "log to /dev/null unless told otherwise"
	// convention.
	Logger *log.Logger
}

func (d *Dialer) logger() *log.Logger {
	if d.Logger == nil {
		return log.New(discardWriter{}, "", 0)
	}
	return d.Logger
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// Dial discovers and connects to the address on the named network.
// If the context expires before the connection is complete, an error is
// returned. Once successfully connected, any expiration of the context will not
// affect the connection.
//
// Network may be any of the network types supported by net.Dial, but you most
// likely want to use one of the tcp connection types ("tcp", "tcp4", or
// "tcp6").
func (d *Dialer) Dial(ctx context.Context, network string, addr jid.JID) (net.Conn, error) {
	return d.dial(ctx, network, addr, addr.Domainpart())
}

// DialServer behaves exactly the same as Dial, besides that the server it tries
// to connect to is given as argument instead of using the domainpart of the JID.
//
// Changing the server does not affect the server name expected by the default
// TLSConfig which remains the addresses domainpart.
func (d *Dialer) DialServer(ctx context.Context, network string, addr jid.JID, server string) (net.Conn, error) {
	return d.dial(ctx, network, addr, server)
}

func (d *Dialer) dial(ctx context.Context, network string, addr jid.JID, server string) (net.Conn, error) {
	cfg := d.tlsConfigFor(addr.Domainpart())

	if len(d.OverridePeer) > 0 {
		return d.dialEndpoints(ctx, network, d.OverridePeer, cfg)
	}

	// If we're not looking up SRV records, use the A/AAAA fallback.
	if d.NoLookup {
		return d.legacy(ctx, network, server, cfg)
	}

	var xmppAddrs, xmppsAddrs []*net.SRV
	var xmppErr, xmppsErr error
	var wg sync.WaitGroup
	wg.Add(1)
	if !d.NoTLS {
		wg.Add(1)
		go func() {
			// Lookup xmpps-(client|server)
			defer wg.Done()
			xmppsService := connType(true, d.S2S)
			addrs, e := discover.LookupServiceByDomain(ctx, d.Resolver, xmppsService, server)
			if e != nil {
				xmppsErr = e
				return
			}
			xmppsAddrs = addrs
		}()
	}
	go func() {
		// Lookup xmpp-(client|server)
		defer wg.Done()
		xmppService := connType(false, d.S2S)
		addrs, e := discover.LookupServiceByDomain(ctx, d.Resolver, xmppService, server)
		if e != nil {
			xmppErr = e
			return
		}
		xmppAddrs = addrs
	}()
	wg.Wait()

	// If both lookups failed, return one of the errors.
	if xmppsErr != nil && xmppErr != nil {
		return nil, xmppsErr
	}
	// One of the two queries failing isn't fatal (many deployments only
	// publish one of xmpp(s)-client); log it and carry on with whichever
	// records did resolve.
	if xmppsErr != nil {
		d.logger().Printf("dial: xmpps lookup for %s failed, continuing with plain xmpp records: %v", server, xmppsErr)
	}
	if xmppErr != nil {
		d.logger().Printf("dial: xmpp lookup for %s failed, continuing with xmpps records: %v", server, xmppErr)
	}
	addrs := make([]*net.SRV, 0, len(xmppAddrs)+len(xmppsAddrs))
	addrs = append(addrs, xmppsAddrs...)
	addrs = append(addrs, xmppAddrs...)
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no xmpp service found at address %s", server)
	}

	// Try dialing all of the SRV records we know about, breaking as soon as the
	// connection is established.
	var err error
	for i, a := range addrs {
		addr := net.JoinHostPort(a.Target, strconv.FormatUint(uint64(a.Port), 10))
		var c net.Conn
		var e error
		// Do not dial expecting a TLS connection if we're trying addreses that we
		// expect starttls on or if we have implicit TLS disabled.
		if d.NoTLS || i >= len(xmppsAddrs) {
			c, e = d.Dialer.DialContext(ctx, network, addr)
		} else {
			c, e = d.dialTLS(ctx, network, addr, cfg)
		}
		if e != nil {
			err = e
			continue
		}

		return c, nil
	}
	return nil, err
}

func (d *Dialer) dialEndpoints(ctx context.Context, network string, endpoints []Endpoint, cfg *tls.Config) (net.Conn, error) {
	var err error
	for _, ep := range endpoints {
		var c net.Conn
		var e error
		if ep.DirectTLS && !d.NoTLS {
			c, e = d.dialTLS(ctx, network, ep.addr(), cfg)
		} else {
			c, e = d.Dialer.DialContext(ctx, network, ep.addr())
		}
		if e != nil {
			err = e
			continue
		}
		return c, nil
	}
	return nil, err
}

func (d *Dialer) legacy(ctx context.Context, network string, domain string, cfg *tls.Config) (net.Conn, error) {
	if !d.NoTLS {
		conn, err := d.dialTLS(ctx, network, net.JoinHostPort(domain, "5223"), cfg)
		if err == nil {
			return conn, nil
		}
	}

	return d.Dialer.DialContext(ctx, network, net.JoinHostPort(domain, "5222"))
}

// dialTLS dials the TCP connection itself rather than delegating to
// tls.Dialer so that a handshake failure can be told apart from a transport
// failure and wrapped in a TLSError; callers (the reconnect loop in the
// client package in particular) use that distinction to decide whether
// retrying the same address is worth it.
func (d *Dialer) dialTLS(ctx context.Context, network, addr string, cfg *tls.Config) (net.Conn, error) {
	rawConn, err := d.Dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	tlsConn := tls.Client(rawConn, cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, &TLSError{Endpoint: addr, Err: err}
	}
	return tlsConn, nil
}

func (d *Dialer) tlsConfigFor(domain string) *tls.Config {
	cfg := d.TLSConfig
	if cfg == nil {
		cfg = &tls.Config{
			ServerName: domain,
			MinVersion: tls.VersionTLS12,
		}
		// XEP-0368
		if d.S2S {
			cfg.NextProtos = []string{"xmpp-server"}
		} else {
			cfg.NextProtos = []string{"xmpp-client"}
		}
	} else {
		cfg = cfg.Clone()
	}

	if d.PinStore == nil && !d.AllowSelfSigned {
		return cfg
	}

	host := domain
	if d.AllowSelfSigned && len(d.PinStore.Pins(host)) == 0 {
		cfg.InsecureSkipVerify = true
	}
	pinStore := d.PinStore
	cfg.VerifyPeerCertificate = func(rawCerts [][]byte, _ [][]*cryptox509.Certificate) error {
		if pinStore == nil || len(pinStore.Pins(host)) == 0 {
			return nil
		}
		certs := make([]*cryptox509.Certificate, len(rawCerts))
		for i, raw := range rawCerts {
			cert, err := cryptox509.ParseCertificate(raw)
			if err != nil {
				return err
			}
			certs[i] = cert
		}
		return pinStore.Verify(host, certs)
	}
	return cfg
}

func connType(useTLS, s2s bool) string {
	switch {
	case useTLS && s2s:
		return "xmpps-server"
	case !useTLS && s2s:
		return "xmpp-server"
	case useTLS && !s2s:
		return "xmpps-client"
	}
	return "xmpp-client"
}
