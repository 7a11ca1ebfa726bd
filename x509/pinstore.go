package x509

import (
	"bytes"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"fmt"
)

// PinSelector identifies what a Pin's Base64-encoded Value represents.
type PinSelector int

const (
	// PinPublicKey pins the certificate's SubjectPublicKeyInfo, DER-encoded.
	PinPublicKey PinSelector = 0
	// PinCertificate pins the full certificate, DER-encoded.
	PinCertificate PinSelector = 1
)

// A Pin is a single pinned value for a host, as described in spec.md §4.3:
// a Base64-encoded public key or certificate with a type selector.
type Pin struct {
	Selector PinSelector
	Value    []byte // decoded DER bytes
}

// A PinStore holds the set of pinned certificates and public keys that
// Verify checks a peer's chain against, keyed by host name. A zero-value
// PinStore has no pins and Verify always returns an error for it, the same
// as for any host with no entries.
type PinStore struct {
	hosts map[string][]Pin
}

// NewPinStore returns an empty PinStore.
func NewPinStore() *PinStore {
	return &PinStore{hosts: make(map[string][]Pin)}
}

// AddPin registers a Base64-encoded pin for host. b64 is decoded as
// standard Base64; selector chooses whether it is interpreted as a DER
// public key (PinPublicKey) or a DER certificate (PinCertificate).
func (s *PinStore) AddPin(host string, selector PinSelector, b64 string) error {
	der, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return fmt.Errorf("x509: decoding pin for %s: %w", host, err)
	}
	if s.hosts == nil {
		s.hosts = make(map[string][]Pin)
	}
	s.hosts[host] = append(s.hosts[host], Pin{Selector: selector, Value: der})
	return nil
}

// Pins returns the pins registered for host.
func (s *PinStore) Pins(host string) []Pin {
	if s == nil {
		return nil
	}
	return s.hosts[host]
}

// Verify reports whether any certificate in chain matches a pin registered
// for host. chain is the verified certificate chain as presented by the
// peer (leaf first), the same shape tls.Config.VerifyPeerCertificate
// receives after its own parsing step. An empty (or nil) set of pins for
// host is treated as "nothing pinned, reject"—callers that want pinning to
// be optional should only consult Verify when Pins(host) is non-empty.
func (s *PinStore) Verify(host string, chain []*x509.Certificate) error {
	pins := s.Pins(host)
	if len(pins) == 0 {
		return fmt.Errorf("x509: no pins registered for %s", host)
	}
	for _, cert := range chain {
		for _, p := range pins {
			switch p.Selector {
			case PinCertificate:
				if bytes.Equal(cert.Raw, p.Value) {
					return nil
				}
			case PinPublicKey:
				sum := sha256.Sum256(cert.RawSubjectPublicKeyInfo)
				pinSum := sha256.Sum256(p.Value)
				if bytes.Equal(sum[:], pinSum[:]) || bytes.Equal(cert.RawSubjectPublicKeyInfo, p.Value) {
					return nil
				}
			}
		}
	}
	return fmt.Errorf("x509: no pin for %s matched the presented certificate chain", host)
}
