package client

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"mellium.im/xmlstream"
	"wireglass.im/xmpp"
	"wireglass.im/xmpp/sm"
)

// A Service is a unit of application functionality that a Client summons
// once, in dependency order, the first time it (or something that depends
// on it) is needed through Summon.
type Service struct {
	// Name identifies the service. It must be unique among the services
	// registered with a single Client.
	Name string

	// Init builds the service instance. It may call Client.Summon to obtain
	// already-registered dependencies, and Client.Session to reach the
	// currently established session.
	Init func(*Client) (interface{}, error)

	// Teardown, if non-nil, is called with the service instance when the
	// Client stops, in the reverse of summon order.
	Teardown func(interface{})

	before []string
	after  []string
}

// Before declares that svc must be summoned before each of the named
// services.
func (svc Service) Before(names ...string) Service {
	svc.before = append(append([]string(nil), svc.before...), names...)
	return svc
}

// After declares that svc must be summoned after each of the named
// services.
func (svc Service) After(names ...string) Service {
	svc.after = append(append([]string(nil), svc.after...), names...)
	return svc
}

var errStopped = errors.New("client: stopped")

// A Client represents an XMPP client capable of maintaining a single
// client-to-server (C2S) connection on behalf of the configured user,
// reconnecting (and, if Resumable was set, resuming) automatically when the
// connection is lost.
type Client struct {
	options

	registry map[string]Service

	mu        sync.Mutex
	session   *xmpp.Session
	stream    *sm.Stream
	suspended time.Time

	instances map[string]interface{}
	order     []string // summon order, for reverse-order teardown

	stopCh chan struct{}
}

// New creates a new XMPP client with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		options:   getOpts(opts...),
		instances: make(map[string]interface{}),
	}
	c.registry = make(map[string]Service, len(c.services))
	for _, svc := range c.services {
		c.registry[svc.Name] = svc
	}
	// A Before edge on svc is the same constraint as an After edge on its
	// target, just declared from the other side; fold it in once up front so
	// Summon only ever has to walk After edges.
	for _, svc := range c.services {
		for _, target := range svc.before {
			if t, ok := c.registry[target]; ok {
				t.after = append(t.after, svc.Name)
				c.registry[target] = t
			}
		}
	}
	return c
}

// Session returns the currently established session, or nil if the client
// is not currently connected.
func (c *Client) Session() *xmpp.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Stream returns the stream management wrapper of the most recent session, or
// nil if Resumable was not set or no session has been established. It is not
// cleared when the connection is lost, so it may belong to a stream that is
// suspended and waiting to be resumed.
func (c *Client) Stream() *sm.Stream {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream
}

// Summon returns the named service, building it (and, in dependency order,
// anything it depends on) if this is the first time it has been requested.
// Summoning a service that is not registered, or that participates in a
// dependency cycle, returns an error.
func (c *Client) Summon(name string) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summonLocked(name, nil)
}

func (c *Client) summonLocked(name string, stack []string) (interface{}, error) {
	if inst, ok := c.instances[name]; ok {
		return inst, nil
	}
	for _, n := range stack {
		if n == name {
			return nil, fmt.Errorf("client: service-dependency-cycle: %s -> %s", strings.Join(stack, " -> "), name)
		}
	}
	svc, ok := c.registry[name]
	if !ok {
		return nil, fmt.Errorf("client: no such service %q", name)
	}
	stack = append(stack, name)
	for _, dep := range svc.after {
		if _, err := c.summonLocked(dep, stack); err != nil {
			return nil, err
		}
	}
	if svc.Init == nil {
		return nil, fmt.Errorf("client: service %q has no Init function", name)
	}
	inst, err := svc.Init(c)
	if err != nil {
		return nil, fmt.Errorf("client: summoning %q: %w", name, err)
	}
	c.instances[name] = inst
	c.order = append(c.order, name)
	return inst, nil
}

func (c *Client) teardownServices() {
	c.mu.Lock()
	order := c.order
	c.order = nil
	instances := c.instances
	c.instances = make(map[string]interface{})
	c.mu.Unlock()

	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]
		svc, ok := c.registry[name]
		if !ok || svc.Teardown == nil {
			continue
		}
		svc.Teardown(instances[name])
	}
}

// Stop asks Run to shut down and returns at once; it does not wait for Run
// to tear down services and return. Calling Stop before Run is called or
// after it has returned has no effect.
func (c *Client) Stop() {
	c.mu.Lock()
	ch := c.stopCh
	c.mu.Unlock()
	if ch == nil {
		return
	}
	select {
	case <-ch:
	default:
		close(ch)
	}
}

// Run dials, negotiates, and maintains the client's session until ctx is
// canceled or Stop is called, reconnecting (or, if Resumable was set,
// resuming) whenever the connection is lost. It returns nil on a clean
// Stop, ctx.Err() if ctx was canceled, or the final connection error once
// MaxInitialAttempts consecutive attempts have failed without ever
// establishing a session.
func (c *Client) Run(ctx context.Context) error {
	c.mu.Lock()
	c.stopCh = make(chan struct{})
	c.mu.Unlock()

	defer func() {
		c.teardownServices()
		if c.onStopped != nil {
			c.onStopped(c)
		}
	}()

	attempts := 0
	backoff := c.initialBackoff
	establishedOnce := false

	for {
		if stopped := c.stopRequested(); stopped {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		established, err := c.connectAndServe(ctx)
		if established {
			establishedOnce = true
			attempts = 0
			backoff = c.initialBackoff
		}
		if err == nil {
			return nil
		}
		if errors.Is(err, errStopped) {
			return nil
		}
		if c.onFailure != nil {
			c.onFailure(c, err)
		}

		if !establishedOnce {
			attempts++
			if attempts >= c.maxInitialAttempts {
				return fmt.Errorf("client: giving up after %d initial connection attempts: %w", attempts, err)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > c.maxBackoff {
			backoff = c.maxBackoff
		}
	}
}

func (c *Client) stopRequested() bool {
	c.mu.Lock()
	ch := c.stopCh
	c.mu.Unlock()
	if ch == nil {
		return false
	}
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// connectAndServe performs one connection attempt: it either resumes a
// suspended stream management session or establishes a fresh one, then
// serves the session until the connection is lost or an unrecoverable error
// occurs. established reports whether a session (resumed or fresh) was
// actually negotiated, so that Run knows whether to reset its backoff.
func (c *Client) connectAndServe(ctx context.Context) (established bool, err error) {
	negCtx, cancel := context.WithTimeout(ctx, c.negotiationTimeout)
	defer cancel()

	var session *xmpp.Session
	var stream *sm.Stream
	var resumed bool

	if c.canAttemptResume() {
		session, stream, err = c.resumeSession(negCtx)
		if err == nil {
			resumed = true
		}
	}
	if session == nil {
		session, stream, err = c.freshSession(negCtx)
		if err != nil {
			return false, err
		}
	}

	c.mu.Lock()
	c.session = session
	c.stream = stream
	c.mu.Unlock()

	if resumed {
		if c.onStreamResumed != nil {
			c.onStreamResumed(c)
		}
	} else if c.onStreamEstablished != nil {
		c.onStreamEstablished(c)
	}

	var handler xmpp.Handler = c.handler
	if handler == nil {
		handler = discardHandler{}
	}
	if stream != nil {
		handler = stream.Wrap(handler)
	}

	serveErr := session.Serve(handler)

	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()

	if c.stopRequested() {
		return true, errStopped
	}

	if stream != nil && c.resume {
		stream.Suspend(serveErr)
		if stream.State() == sm.Suspended {
			c.mu.Lock()
			c.suspended = time.Now()
			c.mu.Unlock()
			if c.onStreamSuspended != nil {
				c.onStreamSuspended(c, serveErr)
			}
			return true, serveErr
		}
	}

	if c.onStreamDestroyed != nil {
		c.onStreamDestroyed(c, serveErr)
	}
	return true, serveErr
}

func (c *Client) canAttemptResume() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.resume || c.stream == nil {
		return false
	}
	if c.stream.State() != sm.Suspended || c.stream.ResumeID() == "" {
		return false
	}
	return time.Since(c.suspended) < c.resumptionTimeout
}

// discardHandler is the default application handler used while no real one
// is wired up: it silently drains whatever the stream management wrapper
// passes through.
type discardHandler struct{}

func (discardHandler) HandleXMPP(t xmlstream.TokenReadEncoder, _ *xml.StartElement) error {
	_, err := xmlstream.Copy(xmlstream.Discard(), xmlstream.Inner(t))
	return err
}
